// Command submit is a convenience wrapper around the Dispatcher Client
// (spec §4.2) for manual testing and integration against a running worker.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/geostrata/jobfabric/internal/broker"
	"github.com/geostrata/jobfabric/internal/dispatcher"
	"github.com/geostrata/jobfabric/internal/envelope"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var redisURL string
	var timeout time.Duration

	root := &cobra.Command{Use: "submit"}
	root.PersistentFlags().StringVar(&redisURL, "redis-url", "redis://localhost:6379/0", "Redis connection URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second, "maximum time to wait for a result")

	root.AddCommand(newGetMapCmd(&redisURL, &timeout))
	return root
}

func newGetMapCmd(redisURL *string, timeout *time.Duration) *cobra.Command {
	var jobFile string

	cmd := &cobra.Command{
		Use:   "getmap",
		Short: "Submit a GetMap job read from a JSON file and print its JobResult",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(jobFile)
			if err != nil {
				return fmt.Errorf("read --job %s: %w", jobFile, err)
			}
			var job envelope.GetMapJob
			if err := json.Unmarshal(data, &job); err != nil {
				return fmt.Errorf("parse --job %s: %w", jobFile, err)
			}

			opts, err := redis.ParseURL(*redisURL)
			if err != nil {
				return fmt.Errorf("parse --redis-url: %w", err)
			}
			client := redis.NewClient(opts)
			defer client.Close()

			d := dispatcher.New(broker.NewRedis(client), nil)
			result, err := d.Submit(context.Background(), envelope.KindGetMap, &job, *timeout)
			if err != nil {
				return err
			}

			fmt.Printf("content_type=%s bytes=%d\n", result.ContentType, len(result.Data))
			return nil
		},
	}
	cmd.Flags().StringVar(&jobFile, "job", "", "path to a JSON-encoded GetMapJob")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}
