package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInfo    EventType = "info"
	EventWarn    EventType = "warn"
	EventSuccess EventType = "success"
	EventError   EventType = "error"
)

const (
	DraftGenerated = "event:ai_writer:generated"
	DraftUpdated   = "event:ai_writer:updated"
	DraftApplied   = "event:ai_writer:applied"
	DraftFailed    = "event:ai_writer:failed"
)

// DraftEvent describes something that happened to a draft.
type DraftEvent struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	Message    string            `json:"message"`
	Timestamp  time.Time         `json:"timestamp"`
	SessionKey string            `json:"sessionKey,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type contextKey string

const sessionContextKey contextKey = "aiwriter/events/session"

// WithSession returns a derived context annotated with the given session key
// so emitters can scope payloads to the acting user.
func WithSession(ctx context.Context, sessionKey string) context.Context {
	if strings.TrimSpace(sessionKey) == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionContextKey, sessionKey)
}

// SessionFromContext extracts the session key associated with ctx.
func SessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(sessionContextKey).(string); ok {
		return v
	}
	return ""
}

func CreateDraftEvent(eventType EventType, message string) DraftEvent {
	return DraftEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewInfo creates an info DraftEvent.
func NewInfo(message string) DraftEvent {
	return CreateDraftEvent(EventInfo, message)
}

// NewError creates an error DraftEvent.
func NewError(message string) DraftEvent {
	return CreateDraftEvent(EventError, message)
}

// NewSuccess creates a success DraftEvent.
func NewSuccess(message string) DraftEvent {
	return CreateDraftEvent(EventSuccess, message)
}

// With returns a copy of e with key set in its metadata.
func (e DraftEvent) With(key, value string) DraftEvent {
	md := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		md[k] = v
	}
	md[key] = value
	e.Metadata = md
	return e
}
