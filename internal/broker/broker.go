package broker

import (
	"context"
	"time"
)

// Broker is the minimal contract internal/dispatcher and internal/worker
// depend on: push/pop the job queue, read/write a job's status record, and
// publish/subscribe its notification channel. Redis (see redis.go) is the
// production implementation; Memory (see memory.go) is an in-process fake
// used by tests so neither package needs a live Redis instance to exercise
// its protocol logic.
type Broker interface {
	// Push atomically RPUSHes raw onto the job queue and writes the
	// record's initial fields (status=queued, timestamp.queued=now), as a
	// single transaction so a worker can never observe the queue entry
	// without its record.
	Push(ctx context.Context, jobID string, raw []byte) error

	// Pop blocks until a job is available or ctx is done, returning the
	// raw envelope bytes popped from the front of the queue.
	Pop(ctx context.Context) ([]byte, error)

	// UpdateStatus transitions jobID to a non-terminal status (queued,
	// running), recording "timestamp.<status>" atomically alongside the
	// status field. Terminal transitions must go through CompleteJob
	// instead, since they also need to publish the notification.
	UpdateStatus(ctx context.Context, jobID string, status Status, contentType, errText string) error

	// CompleteJob atomically transitions jobID to a terminal status
	// (succeed or failed), writes "timestamp.<status>" plus contentType/
	// errText/duration, and publishes payload to jobID's notification
	// channel, all as a single operation (spec §6: "transactional pipeline
	// for the group of writes in step (f/g)"). duration is only persisted
	// when status is StatusSucceed (spec §8: "duration is written iff
	// terminal status is succeed"). Doing the status write and the publish
	// as one operation closes the race where a subscriber could observe the
	// notification before the terminal status has landed.
	CompleteJob(ctx context.Context, jobID string, status Status, contentType, errText string, duration time.Duration, payload []byte) error

	// GetRecord reads the current hash record for jobID. It returns
	// ok=false if the record no longer exists (already deleted by a prior
	// terminal read).
	GetRecord(ctx context.Context, jobID string) (rec Record, ok bool, err error)

	// DeleteRecord removes jobID's hash record, called once the
	// dispatcher has consumed a terminal status.
	DeleteRecord(ctx context.Context, jobID string) error

	// Publish sends payload to jobID's notification channel.
	Publish(ctx context.Context, jobID string, payload []byte) error

	// Subscribe returns a channel of raw notification payloads for jobID
	// and a cancel func the caller must invoke to release subscription
	// resources once done.
	Subscribe(ctx context.Context, jobID string) (msgs <-chan []byte, cancel func(), err error)
}
