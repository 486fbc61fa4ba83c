package tui

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiwriter/internal/lifecycle"
)

func testConfig() lifecycle.Config {
	return lifecycle.Config{
		ButtonID:          "ai-writer-generate-btn",
		ResultContainerID: "ai-writer-result",
		PromptFieldID:     "issue_custom_field_values_7",
		PageTitleSelector: "div.subject h3",
		GenerateURL:       "/issues/1/ai_writer/generate",
		UpdateURLTemplate: "/ai_writer_contents/" + lifecycle.IDPlaceholder,
		ApplyURLTemplate:  "/issues/1/ai_writer/apply/" + lifecycle.IDPlaceholder,
		Text:              lifecycle.DefaultText(),
	}
}

type memoryWriter struct {
	generated []lifecycle.GenerateRequest
	updates   map[lifecycle.DraftID]string
	applied   []lifecycle.DraftID
	genErr    error
}

func (m *memoryWriter) Generate(ctx context.Context, req lifecycle.GenerateRequest) (lifecycle.GenerateResponse, error) {
	if m.genErr != nil {
		err := m.genErr
		m.genErr = nil
		return lifecycle.GenerateResponse{}, err
	}
	m.generated = append(m.generated, req)
	return lifecycle.GenerateResponse{Content: "draft for " + req.UserPrompt, ContentID: "1"}, nil
}

func (m *memoryWriter) Update(ctx context.Context, id lifecycle.DraftID, content string) (lifecycle.Result, error) {
	if m.updates == nil {
		m.updates = map[lifecycle.DraftID]string{}
	}
	m.updates[id] = content
	return lifecycle.Result{Success: true}, nil
}

func (m *memoryWriter) Apply(ctx context.Context, id lifecycle.DraftID) (lifecycle.Result, error) {
	m.applied = append(m.applied, id)
	return lifecycle.Result{Success: true}, nil
}

// scripted answers prompts from queues; an empty queue quits.
type scripted struct {
	asks    [][2]string
	choices []lifecycle.ActionKind
	edits   []string
	seen    []lifecycle.ViewModel
}

func (s *scripted) Ask(ctx context.Context, title, prompt string) (string, string, error) {
	if len(s.asks) == 0 {
		return "", "", ErrQuit
	}
	a := s.asks[0]
	s.asks = s.asks[1:]
	return a[0], a[1], nil
}

func (s *scripted) Choose(ctx context.Context, vm lifecycle.ViewModel) (lifecycle.ActionKind, error) {
	s.seen = append(s.seen, vm)
	if len(s.choices) == 0 {
		return ChoiceQuit, nil
	}
	c := s.choices[0]
	s.choices = s.choices[1:]
	return c, nil
}

func (s *scripted) Edit(ctx context.Context, text string) (string, error) {
	if len(s.edits) == 0 {
		return "", ErrQuit
	}
	e := s.edits[0]
	s.edits = s.edits[1:]
	return e, nil
}

func newSession(t *testing.T, w *memoryWriter, p *scripted) (*Session, *Page, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	page := NewPage(testConfig(), &out, PlainStyles())
	ctrl, err := lifecycle.New(testConfig(), w, w, page)
	require.NoError(t, err)
	return NewSession(ctrl, page, p), page, &out
}

func TestSession_GenerateEditApply(t *testing.T) {
	w := &memoryWriter{}
	p := &scripted{
		asks:    [][2]string{{"Launch", "Announce the launch"}},
		choices: []lifecycle.ActionKind{lifecycle.ActionEdit, lifecycle.ActionAgree},
		edits:   []string{"Edited launch post"},
	}
	s, page, out := newSession(t, w, p)

	require.NoError(t, s.Run(context.Background()))
	require.Len(t, w.generated, 1)
	assert.Equal(t, "Launch", w.generated[0].IssueTitle)
	assert.Equal(t, "Announce the launch", w.generated[0].UserPrompt)
	assert.Equal(t, "Edited launch post", w.updates["1"])
	assert.Equal(t, []lifecycle.DraftID{"1"}, w.applied)
	assert.True(t, page.Reloaded())
	assert.Contains(t, out.String(), "draft for Announce the launch")
	assert.Contains(t, out.String(), "Issue description updated.")
}

func TestSession_RetryReopensPrompt(t *testing.T) {
	w := &memoryWriter{}
	p := &scripted{
		asks:    [][2]string{{"T", "first"}, {"T", "second"}},
		choices: []lifecycle.ActionKind{lifecycle.ActionRetry, lifecycle.ActionAgree},
	}
	s, _, _ := newSession(t, w, p)

	require.NoError(t, s.Run(context.Background()))
	require.Len(t, w.generated, 2)
	assert.Equal(t, "second", w.generated[1].UserPrompt)
	assert.Len(t, w.applied, 1)
}

func TestSession_GenerateFailureIsShownAndLoopContinues(t *testing.T) {
	w := &memoryWriter{genErr: &lifecycle.ResponseError{Status: 500, Message: "model offline"}}
	p := &scripted{asks: [][2]string{{"T", "p"}, {"T", "p"}}}
	s, page, out := newSession(t, w, p)

	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "Error generating content: model offline")
	assert.Len(t, w.generated, 1)
	assert.False(t, page.Reloaded())
}

func TestSession_QuitFromReview(t *testing.T) {
	w := &memoryWriter{}
	p := &scripted{asks: [][2]string{{"T", "p"}}}
	s, _, _ := newSession(t, w, p)

	require.NoError(t, s.Run(context.Background()))
	assert.Empty(t, w.applied)
	require.Len(t, p.seen, 1)
	agree, ok := p.seen[0].Action(lifecycle.ActionAgree)
	require.True(t, ok)
	assert.True(t, agree.Enabled)
}

func TestSession_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, _, _ := newSession(t, &memoryWriter{}, &scripted{})
	assert.True(t, errors.Is(s.Run(ctx), context.Canceled))
}

func TestPage_RenderSkipsUnchangedFrames(t *testing.T) {
	var out bytes.Buffer
	page := NewPage(testConfig(), &out, PlainStyles())
	vm := lifecycle.ViewModel{State: lifecycle.StateIdle, TriggerLabel: "Generate Content", TriggerEnabled: true}

	page.Render(vm)
	page.Render(vm)
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("AI Writer")))

	assert.True(t, page.Exists("ai-writer-result"))
	assert.False(t, page.Exists("issue_custom_field_values_7"))
	_, ok := page.Value("issue_custom_field_values_7")
	assert.False(t, ok)
}
