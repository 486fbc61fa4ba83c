package events

import (
	"context"
	"log/slog"
)

var Emit = func(ctx context.Context, name string, evt DraftEvent) {}

// EnableLogEmitter routes every event to logger.
func EnableLogEmitter(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	SetCustomEmitter(func(ctx context.Context, name string, evt DraftEvent) {
		logEvent(ctx, logger, name, evt)
	})
}

func SetCustomEmitter(f func(ctx context.Context, name string, evt DraftEvent)) {
	if f == nil {
		Emit = func(context.Context, string, DraftEvent) {}
		return
	}
	Emit = func(ctx context.Context, name string, evt DraftEvent) {
		if evt.SessionKey == "" {
			if session := SessionFromContext(ctx); session != "" {
				evt.SessionKey = session
			}
		}
		f(ctx, name, evt)
	}
}

func logEvent(ctx context.Context, logger *slog.Logger, name string, evt DraftEvent) {
	attrs := []any{"event", name, "id", evt.ID}
	if evt.SessionKey != "" {
		attrs = append(attrs, "session", evt.SessionKey)
	}
	for k, v := range evt.Metadata {
		attrs = append(attrs, k, v)
	}

	switch evt.Type {
	case EventError:
		logger.ErrorContext(ctx, evt.Message, attrs...)
	case EventWarn:
		logger.WarnContext(ctx, evt.Message, attrs...)
	default:
		logger.InfoContext(ctx, evt.Message, attrs...)
	}
}
