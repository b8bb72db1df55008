package broker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the production Broker, backed by a single *redis.Client.
// Grounded on original_source/interface/dispatcher.py's RedisQueue
// (pipeline rpush+hset, subscribe-then-re-read ordering) and
// original_source/worker/redis.py's RedisEngine (blpop loop, transactional
// status writes); the Go-side client idioms (BLPop, TxPipelined, Subscribe)
// follow other_examples/...Dutt23-agentic-orchestrator's coordinator use of
// github.com/redis/go-redis/v9.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an already-constructed *redis.Client. Callers own the
// client's lifecycle (construction from a URL, Close on shutdown).
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Ping checks connectivity, used by the worker's connect-with-retry loop
// (spec §4.3) before entering the pop loop.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (r *Redis) Push(ctx context.Context, jobID string, raw []byte) error {
	now := nowField()
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, Queue, raw)
		pipe.HSet(ctx, jobID, map[string]interface{}{
			"status":           string(StatusQueued),
			"timestamp":        now,
			"timestamp.queued": now,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("push job %s: %w", jobID, err)
	}
	return nil
}

func (r *Redis) Pop(ctx context.Context) ([]byte, error) {
	// BLPop's timeout arg is a Redis-protocol block duration; 0 blocks
	// indefinitely, so cancellation is driven entirely by ctx, matching
	// RedisEngine.run's unbounded blpop loop.
	result, err := r.client.BLPop(ctx, 0, Queue).Result()
	if err != nil {
		return nil, fmt.Errorf("pop job: %w", err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("pop job: unexpected BLPOP reply shape")
	}
	return []byte(result[1]), nil
}

func (r *Redis) UpdateStatus(ctx context.Context, jobID string, status Status, contentType, errText string) error {
	fields := statusFields(status, contentType, errText, 0)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, jobID, fields)
		return nil
	})
	if err != nil {
		return fmt.Errorf("update status job %s: %w", jobID, err)
	}
	return nil
}

func (r *Redis) CompleteJob(ctx context.Context, jobID string, status Status, contentType, errText string, duration time.Duration, payload []byte) error {
	fields := statusFields(status, contentType, errText, duration)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, jobID, fields)
		pipe.Publish(ctx, NotificationChannel(jobID), payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("complete job %s: %w", jobID, err)
	}
	return nil
}

func statusFields(status Status, contentType, errText string, duration time.Duration) map[string]interface{} {
	fields := map[string]interface{}{
		"status":                      string(status),
		"timestamp":                   nowField(),
		"timestamp." + string(status): nowField(),
	}
	if contentType != "" {
		fields["content_type"] = contentType
	}
	if errText != "" {
		fields["error"] = errText
	}
	if status == StatusSucceed {
		fields["duration"] = strconv.FormatFloat(duration.Seconds(), 'f', 6, 64)
	}
	return fields
}

func (r *Redis) GetRecord(ctx context.Context, jobID string) (Record, bool, error) {
	raw, err := r.client.HGetAll(ctx, jobID).Result()
	if err != nil {
		return Record{}, false, fmt.Errorf("get record job %s: %w", jobID, err)
	}
	if len(raw) == 0 {
		return Record{}, false, nil
	}
	rec := Record{
		Status:      Status(raw["status"]),
		ContentType: raw["content_type"],
		Error:       raw["error"],
		Timestamps:  make(map[Status]time.Time),
	}
	if d, ok := raw["duration"]; ok {
		if sec, err := strconv.ParseFloat(d, 64); err == nil {
			rec.Duration = time.Duration(sec * float64(time.Second))
		}
	}
	const prefix = "timestamp."
	for k, v := range raw {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			if ts, err := time.Parse(timestampLayout, v); err == nil {
				rec.Timestamps[Status(k[len(prefix):])] = ts
			}
		}
	}
	return rec, true, nil
}

func (r *Redis) DeleteRecord(ctx context.Context, jobID string) error {
	if err := r.client.Del(ctx, jobID).Err(); err != nil {
		return fmt.Errorf("delete record job %s: %w", jobID, err)
	}
	return nil
}

func (r *Redis) Publish(ctx context.Context, jobID string, payload []byte) error {
	if err := r.client.Publish(ctx, NotificationChannel(jobID), payload).Err(); err != nil {
		return fmt.Errorf("publish job %s: %w", jobID, err)
	}
	return nil
}

func (r *Redis) Subscribe(ctx context.Context, jobID string) (<-chan []byte, func(), error) {
	sub := r.client.Subscribe(ctx, NotificationChannel(jobID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("subscribe job %s: %w", jobID, err)
	}

	out := make(chan []byte, 1)
	redisCh := sub.Channel()
	done := make(chan struct{})
	go func() {
		defer close(out)
		for {
			select {
			case msg, ok := <-redisCh:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-done:
					return
				}
			case <-done:
				return
			}
		}
	}()

	cancel := func() {
		close(done)
		sub.Close()
	}
	return out, cancel, nil
}

// timestampLayout matches Python's datetime.now().isoformat() (no timezone
// suffix, microsecond precision), grounded on
// original_source/worker/redis.py's `datetime.datetime.now().isoformat()`
// hash field writes (spec §3 documents timestamp/timestamp.<status> as
// ISO-8601).
const timestampLayout = "2006-01-02T15:04:05.000000"

func nowField() string {
	return timeNow().Format(timestampLayout)
}

// timeNow is a var so tests could override it if needed; production always
// uses time.Now.
var timeNow = time.Now
