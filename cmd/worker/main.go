// Command worker runs the long-lived job consumer described in spec §4.3:
// it connects to Redis, pops job envelopes off the "jobs" queue, drives
// each through a JobExecutor, and publishes the terminal result.
//
// Flags match original_source/worker/redis.py's argparse surface
// one-for-one (spec §6): --redis-url, --log-level, --data-root,
// --svg-path.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/geostrata/jobfabric/internal/broker"
	"github.com/geostrata/jobfabric/internal/config"
	"github.com/geostrata/jobfabric/internal/executor"
	"github.com/geostrata/jobfabric/internal/metrics"
	"github.com/geostrata/jobfabric/internal/worker"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.ParseWorkerFlags(args)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()
	sugar := log.Sugar()

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse --redis-url: %w", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	b := broker.NewRedis(client)
	reg := metrics.New()

	go func() {
		sugar.Infow("serving metrics", "addr", ":9102")
		_ = http.ListenAndServe(":9102", reg.Handler())
	}()

	// No real rendering backend ships with this module (spec §1,
	// §4.4): executor.Null fails every job with a clear message until a
	// caller wires a concrete JobExecutor into this binary.
	w := worker.New(b, executor.Null{}, worker.DefaultConfig(), sugar, reg)
	return w.Run(context.Background())
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parse --log-level: %w", err)
	}
	return cfg.Build()
}
