package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level; failures are
// logged as warnings. It implements all four hooks interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through l, prefixed "hooks".
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

func (h *LogHooks) done(msg string, err error, kv ...any) {
	if err != nil {
		h.logger.Warn(msg, append(kv, "err", err)...)
		return
	}
	h.logger.Debug(msg, kv...)
}

func (h *LogHooks) OnEditStart(kind, subject string) {
	h.logger.Debug("edit", "kind", kind, "subject", subject)
}

func (h *LogHooks) OnEditComplete(kind, subject string, actions int, d time.Duration, err error) {
	h.done("edit done", err, "kind", kind, "subject", subject, "actions", actions, "took", d)
}

func (h *LogHooks) OnPushCycle(vertex, mover string) {
	h.logger.Debug("push skipped", "vertex", vertex, "mover", mover)
}

func (h *LogHooks) OnReplayStart(_ context.Context, edits int) {
	h.logger.Debug("replay", "edits", edits)
}

func (h *LogHooks) OnReplayComplete(_ context.Context, edits, actions int, d time.Duration, err error) {
	h.done("replay done", err, "edits", edits, "actions", actions, "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render", "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	h.done("render done", err, "format", format, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "key", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "key", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, method, route string, err error) {
	h.done("request failed", err, "method", method, "route", route)
}
