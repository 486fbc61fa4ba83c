package lifecycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	anchorButton = "ai-writer-generate-btn"
	anchorResult = "ai-writer-result"
	anchorPrompt = "issue_custom_field_values_7"
	anchorTitle  = "div.subject h3"
)

func testConfig() Config {
	return Config{
		ButtonID:          anchorButton,
		ResultContainerID: anchorResult,
		PromptFieldID:     anchorPrompt,
		PageTitleSelector: anchorTitle,
		GenerateURL:       "/issues/42/ai_writer/generate",
		UpdateURLTemplate: "/ai_writer_contents/" + IDPlaceholder,
		ApplyURLTemplate:  "/issues/42/ai_writer/apply/" + IDPlaceholder,
		CSRFToken:         "token",
		IssueRef:          "42",
	}
}

type fakeHost struct {
	mu      sync.Mutex
	anchors map[string]bool
	values  map[string]string
	renders []ViewModel
	notices []Notice
	reloads int
	edit    func()
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		anchors: map[string]bool{anchorButton: true, anchorResult: true},
		values:  map[string]string{anchorPrompt: "  Write a tagline  ", anchorTitle: "Issue #42"},
	}
}

func (h *fakeHost) Exists(anchor string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.anchors[anchor]
}

func (h *fakeHost) Value(anchor string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.values[anchor]
	return v, ok
}

func (h *fakeHost) Render(vm ViewModel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders = append(h.renders, vm)
}

func (h *fakeHost) Notify(n Notice) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notices = append(h.notices, n)
}

func (h *fakeHost) Reload() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloads++
}

func (h *fakeHost) EditAffordance() (func(), bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.edit, h.edit != nil
}

func (h *fakeHost) lastNotice() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.notices) == 0 {
		return ""
	}
	return h.notices[len(h.notices)-1].Message
}

type fakeGateway struct {
	calls    int32
	last     GenerateRequest
	generate func(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}

func (g *fakeGateway) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	atomic.AddInt32(&g.calls, 1)
	g.last = req
	return g.generate(ctx, req)
}

type fakeStore struct {
	mu      sync.Mutex
	updates []string
	applies int
	update  func(id DraftID, content string) (Result, error)
	apply   func(id DraftID) (Result, error)
}

func (s *fakeStore) Update(_ context.Context, id DraftID, content string) (Result, error) {
	s.mu.Lock()
	s.updates = append(s.updates, content)
	s.mu.Unlock()
	if s.update == nil {
		return Result{Success: true}, nil
	}
	return s.update(id, content)
}

func (s *fakeStore) Apply(_ context.Context, id DraftID) (Result, error) {
	s.mu.Lock()
	s.applies++
	s.mu.Unlock()
	if s.apply == nil {
		return Result{Success: true}, nil
	}
	return s.apply(id)
}

func taglineGateway() *fakeGateway {
	return &fakeGateway{generate: func(context.Context, GenerateRequest) (GenerateResponse, error) {
		return GenerateResponse{Content: "Buy now!", ContentID: "7"}, nil
	}}
}

func newController(t *testing.T, gw Gateway, store Store, host Host) *Controller {
	t.Helper()
	c, err := New(testConfig(), gw, store, host)
	require.NoError(t, err)
	return c
}

func reviewing(t *testing.T, c *Controller) {
	t.Helper()
	_, err := c.RequestGeneration(context.Background(), "Issue #42", "Write a tagline")
	require.NoError(t, err)
	require.Equal(t, StateReviewing, c.State())
}

func TestNew_RejectsIncompleteConfig(t *testing.T) {
	cfg := testConfig()
	cfg.PromptFieldID = ""
	_, err := New(cfg, taglineGateway(), &fakeStore{}, newFakeHost())
	assert.ErrorContains(t, err, "promptFieldId")

	cfg = testConfig()
	cfg.ApplyURLTemplate = "/issues/42/ai_writer/apply"
	_, err = New(cfg, taglineGateway(), &fakeStore{}, newFakeHost())
	assert.ErrorContains(t, err, IDPlaceholder)
}

func TestRequestGeneration_ShowsReview(t *testing.T) {
	host := newFakeHost()
	gw := taglineGateway()
	c := newController(t, gw, &fakeStore{}, host)

	require.NoError(t, c.OnGenerate(context.Background()))

	assert.Equal(t, int32(1), atomic.LoadInt32(&gw.calls))
	assert.Equal(t, GenerateRequest{IssueTitle: "Issue #42", UserPrompt: "Write a tagline"}, gw.last)
	assert.Equal(t, StateReviewing, c.State())

	vm := c.View()
	assert.True(t, vm.ResultVisible)
	assert.Equal(t, DraftID("7"), vm.DraftID)
	assert.Equal(t, "Buy now!", vm.Content)
	assert.Contains(t, string(vm.ContentHTML), "Buy now!")
	require.Len(t, vm.Actions, 3)
	for i, kind := range []ActionKind{ActionAgree, ActionRetry, ActionEdit} {
		assert.Equal(t, kind, vm.Actions[i].Kind)
		assert.True(t, vm.Actions[i].Enabled)
	}
	assert.Equal(t, "Generate Content", vm.TriggerLabel)
	assert.True(t, vm.TriggerEnabled)
	assert.False(t, c.Disabled(ControlGenerate))
}

func TestRequestGeneration_GatewayErrorIsSurfaced(t *testing.T) {
	host := newFakeHost()
	gw := &fakeGateway{generate: func(context.Context, GenerateRequest) (GenerateResponse, error) {
		return GenerateResponse{}, &ResponseError{Status: 429, Message: "rate limited"}
	}}
	c := newController(t, gw, &fakeStore{}, host)

	_, err := c.RequestGeneration(context.Background(), "Issue #42", "Write a tagline")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTransport))
	assert.Equal(t, "Error generating content: rate limited", host.lastNotice())
	assert.Equal(t, StateIdle, c.State())
	assert.Nil(t, c.Draft())

	vm := c.View()
	assert.True(t, vm.TriggerEnabled)
	assert.Equal(t, "Generate Content", vm.TriggerLabel)
	assert.False(t, vm.ResultVisible)
}

func TestRequestGeneration_UnknownErrorFallback(t *testing.T) {
	host := newFakeHost()
	gw := &fakeGateway{generate: func(context.Context, GenerateRequest) (GenerateResponse, error) {
		return GenerateResponse{}, &ResponseError{Status: 500}
	}}
	c := newController(t, gw, &fakeStore{}, host)

	_, err := c.RequestGeneration(context.Background(), "t", "p")
	require.Error(t, err)
	assert.Equal(t, "Error generating content: Unknown error occurred.", host.lastNotice())
}

func TestRequestGeneration_MissingContentIDFails(t *testing.T) {
	host := newFakeHost()
	gw := &fakeGateway{generate: func(context.Context, GenerateRequest) (GenerateResponse, error) {
		return GenerateResponse{Content: "text"}, nil
	}}
	c := newController(t, gw, &fakeStore{}, host)

	_, err := c.RequestGeneration(context.Background(), "t", "p")
	require.Error(t, err)
	assert.Equal(t, StateIdle, c.State())
	assert.Nil(t, c.Draft())
}

func TestRequestGeneration_EmptyPromptMakesNoCall(t *testing.T) {
	host := newFakeHost()
	gw := taglineGateway()
	c := newController(t, gw, &fakeStore{}, host)

	_, err := c.RequestGeneration(context.Background(), "Issue #42", " \n\t ")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	assert.Equal(t, "Please enter a prompt.", host.lastNotice())
	assert.Equal(t, int32(0), atomic.LoadInt32(&gw.calls))
	assert.Equal(t, StateIdle, c.State())
}

func TestOnGenerate_MissingPromptField(t *testing.T) {
	host := newFakeHost()
	delete(host.values, anchorPrompt)
	gw := taglineGateway()
	c := newController(t, gw, &fakeStore{}, host)

	err := c.OnGenerate(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	assert.Equal(t, "Prompt custom field not found.", host.lastNotice())
	assert.Equal(t, int32(0), atomic.LoadInt32(&gw.calls))
}

func TestRequestGeneration_AtMostOneInFlight(t *testing.T) {
	host := newFakeHost()
	entered := make(chan struct{})
	unblock := make(chan struct{})
	gw := &fakeGateway{generate: func(context.Context, GenerateRequest) (GenerateResponse, error) {
		close(entered)
		<-unblock
		return GenerateResponse{Content: "Buy now!", ContentID: "7"}, nil
	}}
	c := newController(t, gw, &fakeStore{}, host)

	done := make(chan error, 1)
	go func() {
		_, err := c.RequestGeneration(context.Background(), "Issue #42", "Write a tagline")
		done <- err
	}()
	<-entered

	vm := c.View()
	assert.Equal(t, StateRequesting, vm.State)
	assert.Equal(t, "Generating...", vm.TriggerLabel)
	assert.False(t, vm.TriggerEnabled)

	_, err := c.RequestGeneration(context.Background(), "Issue #42", "again")
	assert.True(t, IsKind(err, KindBusy))
	assert.Equal(t, int32(1), atomic.LoadInt32(&gw.calls))

	close(unblock)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("generation did not finish")
	}
	assert.Equal(t, StateReviewing, c.State())
	assert.False(t, c.Disabled(ControlGenerate))
}

func TestRequestGeneration_AbandonsPriorDraft(t *testing.T) {
	host := newFakeHost()
	n := 0
	gw := &fakeGateway{generate: func(context.Context, GenerateRequest) (GenerateResponse, error) {
		n++
		if n == 1 {
			return GenerateResponse{Content: "first", ContentID: "1"}, nil
		}
		return GenerateResponse{Content: "second", ContentID: "2"}, nil
	}}
	store := &fakeStore{}
	c := newController(t, gw, store, host)

	reviewing(t, c)
	require.NoError(t, c.OnEdit(context.Background()))
	_, err := c.RequestGeneration(context.Background(), "Issue #42", "Write a tagline")
	require.NoError(t, err)

	d := c.Draft()
	require.NotNil(t, d)
	assert.Equal(t, DraftID("2"), d.ID)
	assert.Equal(t, "42", d.IssueRef)
	assert.Equal(t, "second", d.Content)
	assert.Empty(t, store.updates)
}

func TestEdit_ExposesOnlySave(t *testing.T) {
	c := newController(t, taglineGateway(), &fakeStore{}, newFakeHost())
	reviewing(t, c)

	require.NoError(t, c.OnEdit(context.Background()))
	vm := c.View()
	assert.Equal(t, StateEditing, vm.State)
	assert.True(t, vm.Editing)
	assert.Equal(t, "Buy now!", vm.EditText)
	require.Len(t, vm.Actions, 1)
	assert.Equal(t, ActionSave, vm.Actions[0].Kind)
	assert.True(t, vm.Actions[0].Enabled)
}

func TestSaveEdit_FailureKeepsTypedText(t *testing.T) {
	host := newFakeHost()
	store := &fakeStore{update: func(DraftID, string) (Result, error) {
		return Result{Success: false, Error: "conflict"}, nil
	}}
	c := newController(t, taglineGateway(), store, host)
	reviewing(t, c)
	require.NoError(t, c.OnEdit(context.Background()))

	err := c.OnSave(context.Background(), "New text")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindLogical))
	assert.Equal(t, "Error saving content: conflict", host.lastNotice())

	vm := c.View()
	assert.Equal(t, StateEditing, vm.State)
	assert.Equal(t, "New text", vm.EditText)
	save, ok := vm.Action(ActionSave)
	require.True(t, ok)
	assert.True(t, save.Enabled)
	assert.Equal(t, "Buy now!", c.Draft().Content)
}

func TestSaveEdit_SuccessFlagMustBeTrue(t *testing.T) {
	host := newFakeHost()
	store := &fakeStore{update: func(DraftID, string) (Result, error) {
		return Result{}, nil
	}}
	c := newController(t, taglineGateway(), store, host)
	reviewing(t, c)

	_, err := c.SaveEdit(context.Background(), "New text")
	require.Error(t, err)
	assert.Equal(t, "Error saving content: Failed to save content.", host.lastNotice())
}

func TestSaveEdit_TransportError(t *testing.T) {
	host := newFakeHost()
	store := &fakeStore{update: func(DraftID, string) (Result, error) {
		return Result{}, errors.New("connection refused")
	}}
	c := newController(t, taglineGateway(), store, host)
	reviewing(t, c)

	_, err := c.SaveEdit(context.Background(), "New text")
	assert.True(t, IsKind(err, KindTransport))
	assert.Equal(t, "Error saving content: connection refused", host.lastNotice())
	assert.False(t, c.Disabled(ControlSave))
}

func TestSaveEdit_SuccessReturnsToReview(t *testing.T) {
	store := &fakeStore{}
	c := newController(t, taglineGateway(), store, newFakeHost())
	reviewing(t, c)
	require.NoError(t, c.OnEdit(context.Background()))

	d, err := c.SaveEdit(context.Background(), "New text")
	require.NoError(t, err)
	assert.Equal(t, "New text", d.Content)

	vm := c.View()
	assert.Equal(t, StateReviewing, vm.State)
	assert.Equal(t, "New text", vm.Content)
	assert.False(t, vm.Editing)
	assert.Len(t, vm.Actions, 3)
}

func TestSaveEdit_Idempotent(t *testing.T) {
	c := newController(t, taglineGateway(), &fakeStore{}, newFakeHost())
	reviewing(t, c)

	_, err := c.SaveEdit(context.Background(), "New text")
	require.NoError(t, err)
	once := c.View()

	_, err = c.SaveEdit(context.Background(), "New text")
	require.NoError(t, err)
	assert.Equal(t, once, c.View())
}

func TestApplyDraft_ReloadsHostAndBecomesTerminal(t *testing.T) {
	host := newFakeHost()
	store := &fakeStore{}
	c := newController(t, taglineGateway(), store, host)
	reviewing(t, c)

	require.NoError(t, c.OnAgree(context.Background()))
	assert.Equal(t, 1, host.reloads)
	assert.Equal(t, StateApplied, c.State())
	assert.Equal(t, StatusApplied, c.Draft().Status)
	assert.Empty(t, c.View().Actions)

	err := c.ApplyDraft(context.Background())
	assert.True(t, IsKind(err, KindTerminal))
	_, err = c.SaveEdit(context.Background(), "late edit")
	assert.True(t, IsKind(err, KindTerminal))
	_, err = c.RequestGeneration(context.Background(), "Issue #42", "again")
	assert.True(t, IsKind(err, KindTerminal))

	assert.Equal(t, 1, store.applies)
	assert.Empty(t, store.updates)
	assert.Equal(t, 1, host.reloads)
}

func TestApplyDraft_FailureReturnsToReview(t *testing.T) {
	host := newFakeHost()
	store := &fakeStore{apply: func(DraftID) (Result, error) {
		return Result{Success: false, Error: "Content has already been applied."}, nil
	}}
	c := newController(t, taglineGateway(), store, host)
	reviewing(t, c)

	err := c.ApplyDraft(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Error applying content: Content has already been applied.", host.lastNotice())
	assert.Equal(t, StateReviewing, c.State())
	assert.Equal(t, 0, host.reloads)

	agree, ok := c.View().Action(ActionAgree)
	require.True(t, ok)
	assert.True(t, agree.Enabled)
	assert.Equal(t, StatusPending, c.Draft().Status)
}

func TestApplyDraft_DisablesAgreeWhileInFlight(t *testing.T) {
	host := newFakeHost()
	entered := make(chan struct{})
	unblock := make(chan struct{})
	store := &fakeStore{apply: func(DraftID) (Result, error) {
		close(entered)
		<-unblock
		return Result{Success: true}, nil
	}}
	c := newController(t, taglineGateway(), store, host)
	reviewing(t, c)

	done := make(chan error, 1)
	go func() { done <- c.ApplyDraft(context.Background()) }()
	<-entered

	vm := c.View()
	agree, _ := vm.Action(ActionAgree)
	assert.False(t, agree.Enabled)
	assert.False(t, vm.TriggerEnabled)
	assert.True(t, IsKind(c.ApplyDraft(context.Background()), KindBusy))
	_, err := c.RequestGeneration(context.Background(), "Issue #42", "again")
	assert.True(t, IsKind(err, KindState))

	close(unblock)
	require.NoError(t, <-done)
	assert.Equal(t, 1, store.applies)
}

func TestRetry_MissingEditAffordance(t *testing.T) {
	host := newFakeHost()
	c := newController(t, taglineGateway(), &fakeStore{}, host)
	reviewing(t, c)

	err := c.OnRetry(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
	assert.Equal(t, `Could not find the main "Edit" button.`, host.lastNotice())
	assert.Equal(t, StateReviewing, c.State())
}

func TestRetry_InvokesEditAffordance(t *testing.T) {
	host := newFakeHost()
	clicked := 0
	host.edit = func() { clicked++ }
	store := &fakeStore{}
	c := newController(t, taglineGateway(), store, host)
	reviewing(t, c)

	require.NoError(t, c.Retry(context.Background()))
	assert.Equal(t, 1, clicked)
	assert.Equal(t, StateIdle, c.State())
	assert.Nil(t, c.Draft())
	assert.Empty(t, store.updates)
	assert.Zero(t, store.applies)
}

func TestAttach_WaitsForAnchors(t *testing.T) {
	host := newFakeHost()
	delete(host.anchors, anchorResult)
	c, err := New(testConfig(), taglineGateway(), &fakeStore{}, host,
		WithAttachWait(WithInterval(time.Millisecond), WithTimeout(10*time.Millisecond)))
	require.NoError(t, err)

	err = c.Attach(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
	assert.Contains(t, err.Error(), anchorResult)

	host.mu.Lock()
	host.anchors[anchorResult] = true
	host.mu.Unlock()
	require.NoError(t, c.Attach(context.Background()))
	host.mu.Lock()
	defer host.mu.Unlock()
	require.NotEmpty(t, host.renders)
	assert.Equal(t, StateIdle, host.renders[len(host.renders)-1].State)
}

func TestTransitions_NeverStuckInRequesting(t *testing.T) {
	outcomes := []func(context.Context, GenerateRequest) (GenerateResponse, error){
		func(context.Context, GenerateRequest) (GenerateResponse, error) {
			return GenerateResponse{Content: "ok", ContentID: "1"}, nil
		},
		func(context.Context, GenerateRequest) (GenerateResponse, error) {
			return GenerateResponse{}, errors.New("dial tcp: connection refused")
		},
		func(context.Context, GenerateRequest) (GenerateResponse, error) {
			return GenerateResponse{}, &ResponseError{Status: 502}
		},
	}
	for _, gen := range outcomes {
		gw := &fakeGateway{generate: gen}
		c := newController(t, gw, &fakeStore{}, newFakeHost())
		_, _ = c.RequestGeneration(context.Background(), "title", "prompt")
		assert.Contains(t, []State{StateReviewing, StateIdle}, c.State())
		assert.Equal(t, int32(1), atomic.LoadInt32(&gw.calls))
		assert.False(t, c.Disabled(ControlGenerate))
	}
}
