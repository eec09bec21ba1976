// Package cache keeps at most one in-memory ReplayExecutor per workflow
// run, so consecutive workflow tasks for the same run reuse the same
// program instance instead of replaying its entire history from scratch
// every time.
package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/flowdeck/replaycore/internal/core"
)

// Entry is anything the cache can evict; closing releases whatever
// resources the cached run's workflow program holds.
type Entry interface {
	Close() error
}

// ExecutorCache maps a workflow run to its cached Entry.
type ExecutorCache interface {
	Get(ctx context.Context, instance *core.WorkflowInstance) (Entry, bool, error)
	Store(ctx context.Context, instance *core.WorkflowInstance, entry Entry) error
	Evict(ctx context.Context, instance *core.WorkflowInstance) error
	StartEviction(ctx context.Context)
}

type lruCache struct {
	c *ttlcache.Cache[string, Entry]
}

// New builds a capacity- and TTL-bounded cache. Evicted entries are closed
// automatically, which is the only place a run's executor gets torn down
// outside of explicit completion.
func New(size int, expiration time.Duration) ExecutorCache {
	c := ttlcache.New(
		ttlcache.WithCapacity[string, Entry](uint64(size)),
		ttlcache.WithTTL[string, Entry](expiration),
	)

	c.OnEviction(func(ctx context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, Entry]) {
		_ = item.Value().Close()
	})

	return &lruCache{c: c}
}

func (lc *lruCache) Get(ctx context.Context, instance *core.WorkflowInstance) (Entry, bool, error) {
	item := lc.c.Get(key(instance))
	if item == nil {
		return nil, false, nil
	}
	return item.Value(), true, nil
}

func (lc *lruCache) Store(ctx context.Context, instance *core.WorkflowInstance, entry Entry) error {
	lc.c.Set(key(instance), entry, ttlcache.DefaultTTL)
	return nil
}

func (lc *lruCache) Evict(ctx context.Context, instance *core.WorkflowInstance) error {
	lc.c.Delete(key(instance))
	return nil
}

func (lc *lruCache) StartEviction(ctx context.Context) {
	go lc.c.Start()
	<-ctx.Done()
	lc.c.Stop()
}

// key identifies a run by instance+execution id: a continue-as-new run of
// the same instance id must not reuse a stale cached executor.
func key(instance *core.WorkflowInstance) string {
	return instance.InstanceID + "/" + instance.ExecutionID
}
