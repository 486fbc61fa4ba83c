package events

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCustomEmitter_FillsSessionFromContext(t *testing.T) {
	var got DraftEvent
	SetCustomEmitter(func(_ context.Context, _ string, evt DraftEvent) { got = evt })
	t.Cleanup(func() { SetCustomEmitter(nil) })

	ctx := WithSession(context.Background(), "user:3")
	Emit(ctx, DraftGenerated, NewSuccess("draft generated").With("draft_id", "7"))

	assert.Equal(t, "user:3", got.SessionKey)
	assert.Equal(t, "7", got.Metadata["draft_id"])
	assert.NotEmpty(t, got.ID)
}

func TestEnableLogEmitter(t *testing.T) {
	var buf bytes.Buffer
	EnableLogEmitter(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { SetCustomEmitter(nil) })

	Emit(context.Background(), DraftFailed, NewError("generate failed").With("issue_id", "42"))

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "event=event:ai_writer:failed")
	assert.Contains(t, out, "issue_id=42")
}

func TestWithSession_IgnoresBlank(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithSession(ctx, "  "))
	assert.Empty(t, SessionFromContext(ctx))
}
