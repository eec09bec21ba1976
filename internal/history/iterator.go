package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"

	"github.com/flowdeck/replaycore/internal/core"
)

// ErrPaginationDeadlineExceeded is returned when the workflow-task deadline
// is reached before the full history page set could be fetched.
var ErrPaginationDeadlineExceeded = errors.New("history: pagination deadline exceeded")

type PageToken []byte

type Page struct {
	Events    []Event
	NextToken PageToken
	HasMore   bool
}

// PageFetcher is the single RPC the iterator needs from the service: fetch
// the next page of a workflow instance's history. Implementations talk the
// real wire protocol; that protocol is out of scope here.
type PageFetcher interface {
	FetchPage(ctx context.Context, instance core.WorkflowInstance, token PageToken) (Page, error)
}

// Iterator pulls as much history as is available for one workflow task,
// paginating under a bounded retry policy, and groups it into task batches.
type Iterator struct {
	fetcher  PageFetcher
	instance core.WorkflowInstance
	clock    clock.Clock
}

func NewIterator(fetcher PageFetcher, instance core.WorkflowInstance, clk clock.Clock) *Iterator {
	if clk == nil {
		clk = clock.New()
	}
	return &Iterator{fetcher: fetcher, instance: instance, clock: clk}
}

// Batches fetches every page for the current poll (the first page is
// assumed already in firstPageEvents), paginating until the server reports
// no more pages, and groups the result into task batches. deadline bounds
// total pagination time; exceeding it returns ErrPaginationDeadlineExceeded.
func (it *Iterator) Batches(ctx context.Context, firstPage Page, previousStartedEventID int64, deadline time.Time) ([]TaskBatch, error) {
	events, err := it.FetchEvents(ctx, firstPage, deadline)
	if err != nil {
		return nil, err
	}
	return GroupIntoBatches(events, previousStartedEventID), nil
}

// FetchEvents paginates through every remaining page for the current poll
// and returns the flat, in-order event slice, without grouping it into task
// batches. Callers that drive an executor directly from flat events (rather
// than from pre-grouped batches) use this instead of Batches.
func (it *Iterator) FetchEvents(ctx context.Context, firstPage Page, deadline time.Time) ([]Event, error) {
	events := append([]Event{}, firstPage.Events...)

	token := firstPage.NextToken
	hasMore := firstPage.HasMore

	for hasMore {
		page, err := it.fetchPageWithRetry(ctx, token, deadline)
		if err != nil {
			return nil, err
		}

		events = append(events, page.Events...)
		token = page.NextToken
		hasMore = page.HasMore
	}

	return events, nil
}

func (it *Iterator) fetchPageWithRetry(ctx context.Context, token PageToken, deadline time.Time) (Page, error) {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return Page{}, ErrPaginationDeadlineExceeded
	}

	b := &backoff.ExponentialBackOff{
		InitialInterval:     200 * time.Millisecond,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         4 * time.Second,
		MaxElapsedTime:      remaining,
		Stop:                backoff.Stop,
		Clock:               it.clock,
	}
	b.Reset()

	var page Page

	op := func() error {
		p, err := it.fetcher.FetchPage(ctx, it.instance, token)
		if err != nil {
			return err
		}
		page = p
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Page{}, ErrPaginationDeadlineExceeded
		}
		if b.GetElapsedTime() >= remaining {
			return Page{}, fmt.Errorf("%w: %v", ErrPaginationDeadlineExceeded, err)
		}
		return Page{}, fmt.Errorf("fetching history page: %w", err)
	}

	return page, nil
}
