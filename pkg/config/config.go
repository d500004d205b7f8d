package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/gridcore/pkg/log"
)

// RestartPolicy controls what happens to a partition worker whose goroutine
// dies from a fatal-classified panic.
type RestartPolicy string

const (
	// RestartPolicyRespawn replaces the dead worker with a fresh goroutine
	// bound to the same partition, so no partition is ever permanently stuck.
	RestartPolicyRespawn RestartPolicy = "respawn"
	// RestartPolicyEscalate leaves the partition without a worker; the
	// dispatcher logs the fault and publishes events.EventWorkerEscalated.
	// The dispatcher itself keeps running.
	RestartPolicyEscalate RestartPolicy = "escalate"
)

// ExecutorConfig configures one named executor pool.
type ExecutorConfig struct {
	Name        string `yaml:"name"`
	Concurrency int    `yaml:"concurrency"`
}

// Config holds gridcore scheduler configuration, loaded from a YAML file and
// overridable by CLI flags.
type Config struct {
	PartitionWorkers    int              `yaml:"partitionWorkers"`
	GenericWorkers      int              `yaml:"genericWorkers"`
	TerminationTimeout  int              `yaml:"terminationTimeoutSeconds"`
	WorkerRestartPolicy RestartPolicy    `yaml:"workerRestartPolicy"`
	QueueSoftLimit      int              `yaml:"queueSoftLimit"`
	Executors           []ExecutorConfig `yaml:"executors"`

	HTTPAddr string `yaml:"httpAddr"`
	GRPCAddr string `yaml:"grpcAddr"`

	LogLevel string `yaml:"logLevel"`
	LogJSON  bool   `yaml:"logJSON"`
}

// Default returns a Config with the dispatcher's default sizing: G = max(2,
// NumCPU/2), P = max(2, NumCPU).
func Default() Config {
	return Config{
		PartitionWorkers:    maxInt(2, runtime.NumCPU()),
		GenericWorkers:      maxInt(2, runtime.NumCPU()/2),
		TerminationTimeout:  3,
		WorkerRestartPolicy: RestartPolicyRespawn,
		QueueSoftLimit:      0,
		HTTPAddr:            ":8081",
		GRPCAddr:            ":8082",
		LogLevel:            string(log.InfoLevel),
		LogJSON:             true,
	}
}

// Load reads a YAML config file and merges it onto the defaults. A missing
// path is not an error - the caller gets pure defaults, treating the config
// file as optional input.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations that would leave the dispatcher unable to
// route tasks at all.
func (c Config) Validate() error {
	if c.PartitionWorkers < 1 {
		return fmt.Errorf("partitionWorkers must be >= 1, got %d", c.PartitionWorkers)
	}
	if c.GenericWorkers < 1 {
		return fmt.Errorf("genericWorkers must be >= 1, got %d", c.GenericWorkers)
	}
	if c.WorkerRestartPolicy != RestartPolicyRespawn && c.WorkerRestartPolicy != RestartPolicyEscalate {
		return fmt.Errorf("workerRestartPolicy must be %q or %q, got %q",
			RestartPolicyRespawn, RestartPolicyEscalate, c.WorkerRestartPolicy)
	}
	for _, ex := range c.Executors {
		if ex.Name == "" {
			return fmt.Errorf("executor entry missing name")
		}
		if ex.Concurrency < 1 {
			return fmt.Errorf("executor %q concurrency must be >= 1, got %d", ex.Name, ex.Concurrency)
		}
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
