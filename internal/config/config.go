// Package config holds the two configuration surfaces this module
// exposes: the worker's flag-only surface (no config file, matching
// original_source/worker/redis.py's argparse) and the exporter's YAML
// configuration document for default export parameters.
package config

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WorkerConfig is the worker binary's complete externally documented
// surface (spec §6): a Redis URL, a log level, and the two filesystem
// roots the original QGIS runner resolves relative paths against.
type WorkerConfig struct {
	RedisURL string
	LogLevel string
	DataRoot string
	SVGPath  string
}

// ParseWorkerFlags parses args with the standard library flag package,
// matching the one-for-one surface of original_source/worker/redis.py's
// argparse: --redis-url (required), --log-level (default "info"),
// --data-root (default "/io/data"), --svg-path (colon-separated, default
// "/io/svg").
func ParseWorkerFlags(args []string) (WorkerConfig, error) {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)
	redisURL := fs.String("redis-url", "", "Redis connection URL (required)")
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	dataRoot := fs.String("data-root", "/io/data", "root directory for local raster/vector datasets")
	svgPath := fs.String("svg-path", "/io/svg", "colon-separated SVG search path")

	if err := fs.Parse(args); err != nil {
		return WorkerConfig{}, err
	}
	if *redisURL == "" {
		return WorkerConfig{}, fmt.Errorf("--redis-url is required")
	}

	return WorkerConfig{
		RedisURL: *redisURL,
		LogLevel: *logLevel,
		DataRoot: *dataRoot,
		SVGPath:  *svgPath,
	}, nil
}

// ExporterConfig is the optional YAML document cmd/exporter can load via
// --config to supply defaults for flags the caller omits.
type ExporterConfig struct {
	Mandant                string `yaml:"mandant"`
	Project                string `yaml:"project"`
	Source                 string `yaml:"source"`
	Output                 string `yaml:"output"`
	Format                 string `yaml:"format"`
	UnifyLayerNamesByGroup bool   `yaml:"unify_layer_names_by_group"`
}

// LoadExporterConfig reads and parses filename, applying the same
// "format" default ("json") the prior GOX config loader applied to its
// broker/protocol fields.
func LoadExporterConfig(filename string) (*ExporterConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read exporter config %s: %w", filename, err)
	}

	var cfg ExporterConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse exporter config %s: %w", filename, err)
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	return &cfg, nil
}
