// Package dispatcher implements the Dispatcher Client described in spec
// §4.2: it turns a typed job into a JobResult (or a typed failure) while
// hiding the broker queue/record/pub-sub plumbing from callers.
//
// Grounded on original_source/interface/dispatcher.py's RedisQueue.post
// (pipeline rpush+hset, subscribe, re-read-status-after-subscribe ordering
// fix). The connection-holding client struct follows the same shape as a
// channel-correlated RPC client, generalized here to a broker.Broker
// client instead of a raw connection.
//
// Called by: cmd/submit, any caller wanting to run a job and wait for its
// result.
// Calls: internal/broker, internal/envelope, go.uber.org/zap
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/geostrata/jobfabric/internal/broker"
	"github.com/geostrata/jobfabric/internal/envelope"
)

// Client submits jobs to a Broker and waits for their terminal result.
type Client struct {
	broker broker.Broker
	log    *zap.SugaredLogger
}

// New constructs a Client bound to b. log may be nil, in which case a
// no-op logger is used.
func New(b broker.Broker, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{broker: b, log: log}
}

// Submit wraps job in an envelope of the given kind, enqueues it, and
// blocks until the job reaches a terminal state, ctx is cancelled, or
// timeout elapses — whichever comes first. It implements spec §4.2 steps
// 1-8, adopting remediation (b) from the ordering note: after subscribing,
// it re-reads the record's status before waiting. A job that already failed
// is resolved from that re-read. A job that already succeeded is not: its
// JobResult travels only in the notification, so if that notification was
// published before the subscription was live, Submit waits until timeout
// and returns ErrJobTimeout.
func (c *Client) Submit(ctx context.Context, kind envelope.Kind, job interface{}, timeout time.Duration) (*envelope.JobResult, error) {
	env, err := envelope.NewEnvelope(kind, job)
	if err != nil {
		return nil, err
	}
	raw, err := env.Encode()
	if err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.broker.Push(waitCtx, env.ID, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	c.log.Debugw("submitted job", "job_id", env.ID, "kind", kind)

	msgs, unsubscribe, err := c.broker.Subscribe(waitCtx, env.ID)
	if err != nil {
		_ = c.broker.DeleteRecord(ctx, env.ID)
		return nil, fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	defer unsubscribe()

	// Ordering note remediation (b): the record may already be terminal
	// by the time the subscription is live.
	if rec, ok, err := c.broker.GetRecord(waitCtx, env.ID); err == nil && ok {
		if result, done, handleErr := c.handleTerminal(ctx, env.ID, rec); done {
			return result, handleErr
		}
	}

	select {
	case payload := <-msgs:
		rec, ok, err := c.broker.GetRecord(ctx, env.ID)
		if err != nil || !ok {
			_ = c.broker.DeleteRecord(ctx, env.ID)
			return nil, fmt.Errorf("%w: record missing after notification", ErrBrokerUnavailable)
		}
		result, done, handleErr := c.handleTerminalPayload(ctx, env.ID, rec, payload)
		if done {
			return result, handleErr
		}
		return nil, fmt.Errorf("%w: non-terminal status %q after notification", ErrBrokerUnavailable, rec.Status)

	case <-waitCtx.Done():
		_ = c.broker.DeleteRecord(ctx, env.ID)
		if ctx.Err() != nil {
			return nil, ErrJobCancelled
		}
		return nil, ErrJobTimeout
	}
}

// handleTerminal inspects rec's status without a notification payload in
// hand (used for the post-subscribe re-read); it only resolves the failed
// branch, since the succeed branch needs the payload carrying the encoded
// JobResult.
func (c *Client) handleTerminal(ctx context.Context, jobID string, rec broker.Record) (*envelope.JobResult, bool, error) {
	switch rec.Status {
	case broker.StatusFailed:
		_ = c.broker.DeleteRecord(ctx, jobID)
		return nil, true, &JobFailedError{JobID: jobID, Detail: rec.Error}
	case broker.StatusSucceed:
		// Terminal but we have no payload yet; fall through to the
		// normal wait path so the notification delivers the result.
		return nil, false, nil
	default:
		return nil, false, nil
	}
}

func (c *Client) handleTerminalPayload(ctx context.Context, jobID string, rec broker.Record, payload []byte) (*envelope.JobResult, bool, error) {
	switch rec.Status {
	case broker.StatusSucceed:
		defer func() { _ = c.broker.DeleteRecord(ctx, jobID) }()
		result, err := decodeResult(payload, rec.ContentType)
		if err != nil {
			return nil, true, fmt.Errorf("decode job result: %w", err)
		}
		return result, true, nil
	case broker.StatusFailed:
		_ = c.broker.DeleteRecord(ctx, jobID)
		return nil, true, &JobFailedError{JobID: jobID, Detail: rec.Error}
	default:
		return nil, false, nil
	}
}
