package metrics

import "time"

// Timer measures and reports the elapsed time of a scoped operation (e.g. a
// workflow task or history page fetch) as a distribution metric.
type Timer struct {
	client Client
	start  time.Time
	name   string
	tags   Tags
}

func NewTimer(client Client, name string, tags Tags) *Timer {
	return &Timer{client: client, start: time.Now(), name: name, tags: tags}
}

func (t *Timer) Stop() {
	elapsed := time.Since(t.start)
	t.client.Distribution(t.name, t.tags, float64(elapsed/time.Millisecond))
}
