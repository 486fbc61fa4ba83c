package server

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiwriter/internal/lifecycle"
)

// issuePage stands in for a rendered issue view.
type issuePage struct {
	mu      sync.Mutex
	values  map[string]string
	notices []lifecycle.Notice
	reloads int
}

func (p *issuePage) Exists(anchor string) bool {
	return anchor == ButtonID || anchor == ResultContainerID
}

func (p *issuePage) Value(anchor string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[anchor]
	return v, ok
}

func (p *issuePage) Render(lifecycle.ViewModel) {}

func (p *issuePage) Notify(n lifecycle.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, n)
}

func (p *issuePage) Reload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reloads++
}

func (p *issuePage) EditAffordance() (func(), bool) { return nil, false }

func TestControllerAgainstServer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := strconv.FormatUint(uint64(f.member.ID), 10)

	h := http.Header{}
	h.Set(UserHeader, userID)
	configURL := f.ts.URL + "/issues/" + strconv.FormatUint(uint64(f.issue.ID), 10) + "/ai_writer/config"
	cfg, err := lifecycle.FetchConfig(ctx, f.ts.Client(), configURL, h)
	require.NoError(t, err)

	page := &issuePage{values: map[string]string{
		cfg.PromptFieldID:     "Write a tagline",
		cfg.PageTitleSelector: "Issue #42",
	}}
	hc := lifecycle.NewHTTPClient(cfg, f.ts.Client(), lifecycle.WithBaseURL(f.ts.URL), lifecycle.WithHeader(UserHeader, userID))
	ctrl, err := lifecycle.New(cfg, hc, hc, page)
	require.NoError(t, err)
	require.NoError(t, ctrl.Attach(ctx))

	require.NoError(t, ctrl.OnGenerate(ctx))
	assert.Equal(t, lifecycle.StateReviewing, ctrl.State())
	draft := ctrl.Draft()
	require.NotNil(t, draft)
	assert.Equal(t, "[mock draft]\n\nTitle: Issue #42\n\nWrite a tagline", draft.Content)

	require.NoError(t, ctrl.OnEdit(ctx))
	require.NoError(t, ctrl.OnSave(ctx, "Fresh shoes, fresh start."))
	assert.Equal(t, lifecycle.StateReviewing, ctrl.State())

	require.NoError(t, ctrl.OnAgree(ctx))
	assert.Equal(t, lifecycle.StateApplied, ctrl.State())
	assert.Equal(t, 1, page.reloads)
	assert.Empty(t, page.notices)

	issue, err := f.svc.Issues.Get(ctx, f.issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fresh shoes, fresh start.", issue.Description)
}

func TestControllerReportsServerRejection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := strconv.FormatUint(uint64(f.member.ID), 10)

	cfg := WriterConfig(f.issue.ID, f.prompt.ID, f.srv.CSRFToken(f.member.ID))
	page := &issuePage{values: map[string]string{
		cfg.PromptFieldID:     "Write a tagline",
		cfg.PageTitleSelector: "Issue #42",
	}}
	hc := lifecycle.NewHTTPClient(cfg, f.ts.Client(), lifecycle.WithBaseURL(f.ts.URL), lifecycle.WithHeader(UserHeader, userID))
	ctrl, err := lifecycle.New(cfg, hc, hc, page)
	require.NoError(t, err)
	require.NoError(t, ctrl.Attach(ctx))
	require.NoError(t, ctrl.OnGenerate(ctx))

	// apply behind the controller's back so its own apply is refused
	id, err := strconv.ParseUint(string(ctrl.Draft().ID), 10, 64)
	require.NoError(t, err)
	_, err = f.svc.Drafts.Apply(ctx, f.member, uint(id))
	require.NoError(t, err)

	err = ctrl.OnAgree(ctx)
	require.Error(t, err)
	assert.Equal(t, lifecycle.StateReviewing, ctrl.State())
	require.Len(t, page.notices, 1)
	assert.Equal(t, "Error applying content: Content has already been applied.", page.notices[0].Message)
	assert.Zero(t, page.reloads)
}
