// Package worker implements the Worker Loop described in spec §4.3: a
// long-lived consumer that pops envelopes in FIFO order, drives each to a
// terminal state exactly once, and shuts down gracefully on signals.
//
// The connect-with-retry, message loop, and signal-driven shutdown
// (signal.Notify(syscall.SIGINT, syscall.SIGTERM)) follow the same
// lifecycle shape as original_source/worker/redis.py's RedisEngine.run
// (ping-retry loop, BLPOP, textual-probe dispatch, transactional status
// writes, exponential backoff starting at 10ms and doubling).
//
// Called by: cmd/worker
// Calls: internal/broker, internal/envelope, internal/executor,
// internal/metrics, go.uber.org/zap
package worker

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/geostrata/jobfabric/internal/broker"
	"github.com/geostrata/jobfabric/internal/envelope"
	"github.com/geostrata/jobfabric/internal/executor"
	"github.com/geostrata/jobfabric/internal/metrics"
)

// Pinger is implemented by brokers that can check connectivity before the
// pop loop starts. broker.Redis implements it; broker.Memory does not need
// to, since it has no connection to establish.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config tunes the retry/backoff behavior spec §4.3 leaves as
// implementation-defined constants, pinned here to the values
// original_source/worker/redis.py uses.
type Config struct {
	// ConnectRetryInterval is the delay between connection attempts
	// (spec §4.3 step 2: "retry with a 1-second backoff").
	ConnectRetryInterval time.Duration

	// InitialBackoff and MaxBackoff bound the exponential backoff on
	// transient pop errors (spec §4.3 step h: "starting at 10ms
	// and doubling"), mirroring math.pow(2, retry_count) * 0.01 in
	// RedisEngine.run.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultConfig returns the spec-mandated retry/backoff constants.
func DefaultConfig() Config {
	return Config{
		ConnectRetryInterval: time.Second,
		InitialBackoff:       10 * time.Millisecond,
		MaxBackoff:           5 * time.Second,
	}
}

// Worker consumes jobs from a Broker and drives them through
// JobExecutor.Process.
type Worker struct {
	broker   broker.Broker
	executor executor.JobExecutor
	cfg      Config
	log      *zap.SugaredLogger
	cache    *LayerCache
	metrics  *metrics.Registry
}

// New constructs a Worker. log may be nil, in which case a no-op logger is
// used. metrics may be nil, in which case the worker runs unmetered.
func New(b broker.Broker, exec executor.JobExecutor, cfg Config, log *zap.SugaredLogger, reg *metrics.Registry) *Worker {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Worker{
		broker:   b,
		executor: exec,
		cfg:      cfg,
		log:      log,
		cache:    NewLayerCache(),
		metrics:  reg,
	}
}

// Cache returns the worker's in-process layer cache, so a JobExecutor
// implementation constructed alongside the worker can share it.
func (w *Worker) Cache() *LayerCache {
	return w.cache
}

// Run blocks until ctx is cancelled or a termination signal (SIGINT,
// SIGTERM) is received, implementing spec §4.3 steps 1-3. A signal only
// interrupts the loop between iterations: a job already popped is driven
// to a terminal state before Run returns, per the "Graceful shutdown"
// testable property in spec §8. Cancelling ctx also stops the loop, and
// the in-flight job's broker and executor calls receive that same ctx, so
// such a job can be left without a terminal status.
func (w *Worker) Run(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	shutdownCtx, stopShutdown := context.WithCancel(ctx)
	defer stopShutdown()
	go func() {
		select {
		case sig := <-sigCh:
			w.log.Infow("received shutdown signal", "signal", sig.String())
			stopShutdown()
		case <-ctx.Done():
		}
	}()

	if err := w.connect(ctx); err != nil {
		return err
	}

	backoff := w.cfg.InitialBackoff
	for {
		select {
		case <-shutdownCtx.Done():
			w.log.Infow("worker loop exiting")
			return nil
		default:
		}

		raw, err := w.broker.Pop(shutdownCtx)
		if err != nil {
			if shutdownCtx.Err() != nil {
				return nil
			}
			w.log.Warnw("pop failed, backing off", "error", err, "backoff", backoff)
			if !sleepOrDone(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, w.cfg.MaxBackoff)
			continue
		}
		backoff = w.cfg.InitialBackoff

		w.handleEnvelope(ctx, raw)
	}
}

func (w *Worker) connect(ctx context.Context) error {
	pinger, ok := w.broker.(Pinger)
	if !ok {
		return nil
	}
	for {
		if err := pinger.Ping(ctx); err == nil {
			return nil
		} else {
			w.log.Warnw("broker connection failed, retrying", "error", err, "retry_in", w.cfg.ConnectRetryInterval)
		}
		if !sleepOrDone(ctx, w.cfg.ConnectRetryInterval) {
			return ctx.Err()
		}
	}
}

// handleEnvelope drives one popped envelope from probe through terminal
// status, per spec §4.3 steps b-g. Errors here are logged and absorbed;
// the loop always continues to the next envelope.
func (w *Worker) handleEnvelope(ctx context.Context, raw []byte) {
	kind, probed := envelope.ProbeKind(raw)
	if !probed {
		w.log.Errorw("unsupported job kind: no textual type marker matched", "raw_len", len(raw))
		return
	}

	env, err := envelope.Decode(raw)
	if err != nil {
		w.log.Errorw("failed to decode envelope", "kind", kind, "error", err)
		if env != nil && env.ID != "" {
			w.fail(ctx, env.ID, kind, err)
		} else {
			w.log.Warnw("dropping envelope with no parseable id", "kind", kind)
		}
		return
	}

	if err := w.broker.UpdateStatus(ctx, env.ID, broker.StatusRunning, "", ""); err != nil {
		w.log.Errorw("failed to mark job running", "job_id", env.ID, "error", err)
		return
	}

	job, err := env.DecodeJob()
	if err != nil {
		w.fail(ctx, env.ID, kind, err)
		return
	}

	start := time.Now()
	result, err := w.executor.Process(ctx, env.Type, job)
	duration := time.Since(start)
	if err != nil {
		w.fail(ctx, env.ID, kind, err)
		return
	}

	w.succeed(ctx, env.ID, kind, result, duration)
}

// sentinelPayload is published on notifications:{id} when a job fails, per
// spec §4.3 step g ("publish a sentinel value"); the dispatcher client
// never decodes it as a JobResult since it always re-reads status first.
var sentinelPayload = []byte(`{"status":"failed"}`)

// fail and succeed both write the terminal status and publish the
// notification through CompleteJob's single atomic broker operation (spec
// §6), rather than two separate calls: a subscriber reading the
// notification is guaranteed to observe the terminal status already
// written, closing the race a split publish/update would leave open.

func (w *Worker) fail(ctx context.Context, jobID string, kind envelope.Kind, cause error) {
	w.log.Warnw("job failed", "job_id", jobID, "error", cause)
	if err := w.broker.CompleteJob(ctx, jobID, broker.StatusFailed, "", cause.Error(), 0, sentinelPayload); err != nil {
		w.log.Errorw("failed to record failure", "job_id", jobID, "error", err)
	}
	if w.metrics != nil {
		w.metrics.ObserveJob(string(kind), string(broker.StatusFailed), 0)
	}
}

func (w *Worker) succeed(ctx context.Context, jobID string, kind envelope.Kind, result envelope.JobResult, duration time.Duration) {
	payload, err := marshalResult(result)
	if err != nil {
		w.fail(ctx, jobID, kind, err)
		return
	}
	if err := w.broker.CompleteJob(ctx, jobID, broker.StatusSucceed, result.ContentType, "", duration, payload); err != nil {
		w.log.Errorw("failed to record success", "job_id", jobID, "error", err)
	}
	if w.metrics != nil {
		w.metrics.ObserveJob(string(kind), string(broker.StatusSucceed), duration.Seconds())
	}
	w.log.Infow("job succeeded", "job_id", jobID, "content_type", result.ContentType, "duration", duration)
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}
