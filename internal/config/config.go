// Package config carries the executor's tuning knobs: the few numbers that
// change behavior across deployments (task timeout, local-activity budget
// and concurrency, executor cache size and TTL) without touching code. The
// HistoryPageRetry* fields and MaxHistorySize are validated and loaded, but
// nothing else in this module reads them.
package config

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is deliberately flat: every field is a single tuning knob with a
// sane default, not a nested policy object. Nesting belongs to the
// components that consume these values (retry.Policy, localactivity.Runner).
type Config struct {
	WorkflowTaskTimeout time.Duration `yaml:"workflow_task_timeout"`

	HistoryPageRetryInitialInterval time.Duration `yaml:"history_page_retry_initial_interval"`
	HistoryPageRetryMaxInterval     time.Duration `yaml:"history_page_retry_max_interval"`
	HistoryPageRetryMaxElapsed      time.Duration `yaml:"history_page_retry_max_elapsed"`

	// LocalActivityBudgetFraction is the portion of WorkflowTaskTimeout a
	// live local-activity round may spend before forcing a new task.
	LocalActivityBudgetFraction float64 `yaml:"local_activity_budget_fraction"`

	// MaxConcurrentLocalActivityExecutionSize bounds how many local
	// activities a single live round dispatches at once, mirroring the
	// worker option of the same name.
	MaxConcurrentLocalActivityExecutionSize int `yaml:"max_concurrent_local_activity_execution_size"`

	MaxHistorySize int `yaml:"max_history_size"`

	ExecutorCacheSize int           `yaml:"executor_cache_size"`
	ExecutorCacheTTL  time.Duration `yaml:"executor_cache_ttl"`
}

// Default matches the teacher's own hardcoded defaults where one exists
// (workflow task timeout, local-activity budget fraction) and otherwise
// picks values consistent with spec.md §4.5/§4.6.
func Default() Config {
	return Config{
		WorkflowTaskTimeout: 10 * time.Second,

		HistoryPageRetryInitialInterval: 200 * time.Millisecond,
		HistoryPageRetryMaxInterval:     4 * time.Second,
		HistoryPageRetryMaxElapsed:      30 * time.Second,

		LocalActivityBudgetFraction:             0.8,
		MaxConcurrentLocalActivityExecutionSize: 2,

		MaxHistorySize: 50_000,

		ExecutorCacheSize: 1_000,
		ExecutorCacheTTL:  10 * time.Minute,
	}
}

func (c Config) Validate() error {
	if c.WorkflowTaskTimeout <= 0 {
		return fmt.Errorf("workflow_task_timeout must be positive")
	}
	if c.HistoryPageRetryInitialInterval <= 0 {
		return fmt.Errorf("history_page_retry_initial_interval must be positive")
	}
	if c.HistoryPageRetryMaxInterval < c.HistoryPageRetryInitialInterval {
		return fmt.Errorf("history_page_retry_max_interval must be >= initial interval")
	}
	if c.LocalActivityBudgetFraction <= 0 || c.LocalActivityBudgetFraction > 1 {
		return fmt.Errorf("local_activity_budget_fraction must be in (0, 1]")
	}
	if c.MaxConcurrentLocalActivityExecutionSize <= 0 {
		return fmt.Errorf("max_concurrent_local_activity_execution_size must be positive")
	}
	if c.MaxHistorySize <= 0 {
		return fmt.Errorf("max_history_size must be positive")
	}
	if c.ExecutorCacheSize <= 0 {
		return fmt.Errorf("executor_cache_size must be positive")
	}
	return nil
}

// LoadYAML reads a Config from r, filling unset fields from Default.
func LoadYAML(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LocalActivityBudget returns the soft deadline a live local-activity round
// gets before the executor forces a new workflow task.
func (c Config) LocalActivityBudget() time.Duration {
	return time.Duration(float64(c.WorkflowTaskTimeout) * c.LocalActivityBudgetFraction)
}
