package executor

import (
	"context"
	"log/slog"

	"github.com/flowdeck/replaycore/internal/replayclock"
)

// replayHandler suppresses log records produced while a run is replaying
// history it has already logged once live, so restarting a cached run's
// executor doesn't re-emit every log line the first pass already wrote.
type replayHandler struct {
	clk     *replayclock.Clock
	wrapped slog.Handler
}

func (rh *replayHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return rh.wrapped.Enabled(ctx, level)
}

func (rh *replayHandler) Handle(ctx context.Context, r slog.Record) error {
	if rh.clk.IsReplaying() {
		return nil
	}
	return rh.wrapped.Handle(ctx, r)
}

func (rh *replayHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &replayHandler{clk: rh.clk, wrapped: rh.wrapped.WithAttrs(attrs)}
}

func (rh *replayHandler) WithGroup(name string) slog.Handler {
	return &replayHandler{clk: rh.clk, wrapped: rh.wrapped.WithGroup(name)}
}

var _ slog.Handler = (*replayHandler)(nil)

// NewReplayLogger wraps logger so that records logged while clk reports the
// run is replaying are dropped instead of written twice.
func NewReplayLogger(clk *replayclock.Clock, logger *slog.Logger) *slog.Logger {
	return slog.New(&replayHandler{clk: clk, wrapped: logger.Handler()})
}
