// Package broker implements the job queue and per-job status record defined
// by spec §4: a FIFO queue of pending job envelopes, a hash record per
// in-flight job tracking its status and timing, and a pub/sub notification
// channel the dispatcher waits on.
//
// Grounded on original_source/interface/dispatcher.py's RedisQueue (queue
// name "jobs", hash fields status/timestamp/timestamp.<status>/duration/
// content_type/error, channel "notifications:{id}") and
// original_source/worker/redis.py's RedisEngine (the writer side of the
// same contract).
//
// Called by: internal/dispatcher, internal/worker
// Calls: github.com/redis/go-redis/v9 (see redis.go)
package broker

import "time"

// Status is a job's position in the queued -> running -> {succeed,
// failed} state machine (spec §3, "Job Status").
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusSucceed Status = "succeed"
	StatusFailed  Status = "failed"
)

// Queue is the name of the list every envelope is RPUSH'd to and every
// worker BLPOP's from.
const Queue = "jobs"

// Record is the per-job hash stored alongside the queue entry, keyed by the
// envelope's id. It is written by the dispatcher on submit (status=queued)
// and updated by the worker as it transitions the job through its
// lifecycle; the terminal write (CompleteJob) also populates Duration (only
// on succeed), ContentType and Error.
type Record struct {
	Status      Status        `redis:"status"`
	ContentType string        `redis:"content_type,omitempty"`
	Error       string        `redis:"error,omitempty"`
	Duration    time.Duration `redis:"duration,omitempty"`

	// Timestamps maps a status name to the time the job entered it, stored
	// as individual "timestamp.<status>" hash fields so a partial read
	// (HGETALL) can recover the full history without a separate key per
	// event.
	Timestamps map[Status]time.Time `redis:"-"`
}

// NotificationChannel is the pub/sub channel the dispatcher subscribes to
// before (re-)checking a job's status, and the worker publishes to once the
// job reaches a terminal state.
func NotificationChannel(jobID string) string {
	return "notifications:" + jobID
}
