// Package metrics defines the narrow metrics sink contract the executor
// emits counters and timings through. Concrete sinks (statsd, Prometheus,
// whatever) are external per the ambient-stack boundary; this package only
// ships the interface and a no-op implementation for tests and callers that
// don't wire a real one.
package metrics

import "time"

type Tags map[string]string

type Client interface {
	Counter(name string, tags Tags, value float64)
	Distribution(name string, tags Tags, value float64)
	Timing(name string, tags Tags, duration time.Duration)
	WithTags(tags Tags) Client
}

type noopClient struct{}

func NewNoopClient() Client { return &noopClient{} }

func (*noopClient) Counter(name string, tags Tags, value float64)      {}
func (*noopClient) Distribution(name string, tags Tags, value float64) {}
func (*noopClient) Timing(name string, tags Tags, duration time.Duration) {}
func (n *noopClient) WithTags(tags Tags) Client                        { return n }
