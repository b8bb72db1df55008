package dispatcher

import (
	"errors"
	"fmt"
)

// Sentinel errors a Client.Submit caller can match with errors.Is, per
// spec §7's dispatcher-side taxonomy.
var (
	// ErrBrokerUnavailable indicates the broker connection failed or was
	// lost before a terminal status could be observed.
	ErrBrokerUnavailable = errors.New("broker unavailable")

	// ErrJobTimeout indicates the caller-supplied timeout elapsed before
	// the job reached a terminal status.
	ErrJobTimeout = errors.New("job timeout")

	// ErrJobCancelled indicates the caller's context was cancelled before
	// the job reached a terminal status.
	ErrJobCancelled = errors.New("job cancelled")

	// ErrJobFailed indicates the worker reached a terminal "failed"
	// status; JobFailedError carries the worker's error text.
	ErrJobFailed = errors.New("job failed")
)

// JobFailedError wraps ErrJobFailed with the error text a worker recorded
// for the job, grounded on RedisQueue.get's re-raise of the stored error
// message in original_source/interface/dispatcher.py.
type JobFailedError struct {
	JobID  string
	Detail string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Detail)
}

func (e *JobFailedError) Unwrap() error {
	return ErrJobFailed
}
