// Package lifecycle drives one AI-generated draft through generation, review,
// editing and apply for a single issue view.
//
// A Controller is bound to one Host (the issue view) and talks to a Gateway
// and a Store. At most one call per control (generate, save, apply) is in
// flight at a time; the control is disabled while its call runs and is
// re-enabled on every exit path. Calls are not cancelled by the controller
// and are never retried automatically.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

const (
	opGenerate = "generate"
	opEdit     = "edit"
	opSave     = "save"
	opApply    = "apply"
	opRetry    = "retry"
	opAttach   = "attach"
)

// Controller is the draft lifecycle state machine. It is safe for use from
// several goroutines; overlapping dispatches of the same control are rejected
// with a KindBusy error.
type Controller struct {
	cfg      Config
	gateway  Gateway
	store    Store
	host     Host
	renderer ContentRenderer
	logger   *slog.Logger
	waitOpts []WaitOption

	mu       sync.Mutex
	state    State
	draft    *Draft
	editText string
	disabled map[Control]bool
}

var _ Actions = (*Controller)(nil)

// Option customises a Controller.
type Option func(*Controller)

// WithRenderer replaces the markdown renderer used for the review view.
func WithRenderer(r ContentRenderer) Option {
	return func(c *Controller) { c.renderer = r }
}

// WithLogger sets the logger used for transition and failure logs.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAttachWait tunes how Attach waits for the host anchors.
func WithAttachWait(opts ...WaitOption) Option {
	return func(c *Controller) { c.waitOpts = append(c.waitOpts, opts...) }
}

// New builds a controller in the Idle state.
func New(cfg Config, gateway Gateway, store Store, host Host, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gateway == nil {
		return nil, errors.New("generation gateway is required")
	}
	if store == nil {
		return nil, errors.New("draft store is required")
	}
	if host == nil {
		return nil, errors.New("host view is required")
	}
	c := &Controller{
		cfg:      cfg.withDefaults(),
		gateway:  gateway,
		store:    store,
		host:     host,
		renderer: NewMarkdownRenderer(),
		logger:   slog.Default(),
		state:    StateIdle,
		disabled: make(map[Control]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Attach waits for the trigger and result anchors to exist in the host, then
// renders the initial view.
func (c *Controller) Attach(ctx context.Context) error {
	for _, anchor := range []string{c.cfg.ButtonID, c.cfg.ResultContainerID} {
		if err := WaitForAnchor(ctx, c.host, anchor, c.waitOpts...); err != nil {
			lerr := &Error{Kind: KindNotFound, Op: opAttach, Message: err.Error(), Err: err}
			c.logger.Error("ai writer anchor missing", "anchor", anchor, "error", err)
			return lerr
		}
	}
	c.render()
	return nil
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Draft returns a copy of the active draft, or nil when there is none.
func (c *Controller) Draft() *Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return nil
	}
	d := *c.draft
	return &d
}

// View returns the current view model.
func (c *Controller) View() ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildView()
}

// Config returns the configuration the controller was built with.
func (c *Controller) Config() Config { return c.cfg }

// OnGenerate reads the prompt and page title from the host and requests a generation.
func (c *Controller) OnGenerate(ctx context.Context) error {
	prompt, ok := c.host.Value(c.cfg.PromptFieldID)
	if !ok {
		err := &Error{Kind: KindValidation, Op: opGenerate, Message: msgPromptFieldMissing}
		c.notify(err)
		return err
	}
	title, _ := c.host.Value(c.cfg.PageTitleSelector)
	_, err := c.RequestGeneration(ctx, title, prompt)
	return err
}

// RequestGeneration issues exactly one gateway call and ends in Reviewing on
// success or Idle on failure. Any previously active draft is abandoned.
func (c *Controller) RequestGeneration(ctx context.Context, issueTitle, userPrompt string) (*Draft, error) {
	title := strings.TrimSpace(issueTitle)
	prompt := strings.TrimSpace(userPrompt)
	if prompt == "" {
		err := &Error{Kind: KindValidation, Op: opGenerate, Message: msgPromptEmpty}
		c.notify(err)
		return nil, err
	}

	release, err := c.acquire(opGenerate, ControlGenerate, func() error {
		if c.state == StateApplied {
			return &Error{Kind: KindTerminal, Op: opGenerate, Message: msgApplied}
		}
		if err := c.fire(opGenerate, evSubmit); err != nil {
			return err
		}
		if c.draft != nil {
			c.logger.Info("abandoning unapplied draft", "draft_id", c.draft.ID)
		}
		c.draft = nil
		c.editText = ""
		return nil
	})
	if err != nil {
		c.notify(err)
		return nil, err
	}
	defer release()

	resp, err := c.gateway.Generate(ctx, GenerateRequest{IssueTitle: title, UserPrompt: prompt})
	if err == nil && resp.ContentID == "" {
		err = errors.New("response did not include a content id")
	}
	if err != nil {
		c.mu.Lock()
		_ = c.fire(opGenerate, evGenerateFailed)
		c.mu.Unlock()
		lerr := &Error{
			Kind:    KindTransport,
			Op:      opGenerate,
			Message: "Error generating content: " + messageOf(err, msgGenerateUnknown),
			Err:     err,
		}
		c.logger.Error("ai writer generate failed", "error", err)
		c.notify(lerr)
		return nil, lerr
	}

	draft := &Draft{
		ID:         resp.ContentID,
		IssueRef:   c.cfg.IssueRef,
		IssueTitle: title,
		UserPrompt: prompt,
		Content:    resp.Content,
		Status:     StatusPending,
	}
	c.mu.Lock()
	c.draft = draft
	_ = c.fire(opGenerate, evGenerated)
	out := *draft
	c.mu.Unlock()
	return &out, nil
}

// OnEdit switches the review into an editable text area.
func (c *Controller) OnEdit(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requirePending(opEdit); err != nil {
		c.mu.Unlock()
		c.notify(err)
		return err
	}
	if err := c.fire(opEdit, evEdit); err != nil {
		c.mu.Unlock()
		return err
	}
	c.editText = c.draft.Content
	c.mu.Unlock()
	c.render()
	return nil
}

// OnSave saves the edited text.
func (c *Controller) OnSave(ctx context.Context, text string) error {
	_, err := c.SaveEdit(ctx, text)
	return err
}

// SaveEdit replaces the draft content through the store. On failure the view
// stays editable and keeps the typed text. Calling it from Reviewing enters
// editing implicitly, so resending identical content is harmless.
func (c *Controller) SaveEdit(ctx context.Context, content string) (*Draft, error) {
	var id DraftID
	release, err := c.acquire(opSave, ControlSave, func() error {
		if err := c.requirePending(opSave); err != nil {
			return err
		}
		if c.state == StateReviewing {
			if err := c.fire(opSave, evEdit); err != nil {
				return err
			}
		}
		if err := c.fire(opSave, evSave); err != nil {
			return err
		}
		c.editText = content
		id = c.draft.ID
		return nil
	})
	if err != nil {
		c.notify(err)
		return nil, err
	}
	defer release()

	res, err := c.store.Update(ctx, id, content)
	if lerr := resultError(opSave, "Error saving content: ", msgSaveUnknown, res, err); lerr != nil {
		c.mu.Lock()
		_ = c.fire(opSave, evSaveFailed)
		c.mu.Unlock()
		c.logger.Error("ai writer save failed", "draft_id", id, "error", lerr)
		c.notify(lerr)
		return nil, lerr
	}

	c.mu.Lock()
	c.draft.Content = content
	c.editText = ""
	_ = c.fire(opSave, evSaved)
	out := *c.draft
	c.mu.Unlock()
	return &out, nil
}

// OnAgree applies the draft.
func (c *Controller) OnAgree(ctx context.Context) error {
	return c.ApplyDraft(ctx)
}

// ApplyDraft commits the draft into the owning issue. On success the
// controller becomes terminal and asks the host to reload; it never merges
// the new issue state itself.
func (c *Controller) ApplyDraft(ctx context.Context) error {
	var id DraftID
	release, err := c.acquire(opApply, ControlApply, func() error {
		if err := c.requirePending(opApply); err != nil {
			return err
		}
		if err := c.fire(opApply, evAgree); err != nil {
			return err
		}
		id = c.draft.ID
		return nil
	})
	if err != nil {
		c.notify(err)
		return err
	}
	defer release()

	res, err := c.store.Apply(ctx, id)
	if lerr := resultError(opApply, "Error applying content: ", msgApplyUnknown, res, err); lerr != nil {
		c.mu.Lock()
		_ = c.fire(opApply, evApplyFailed)
		c.mu.Unlock()
		c.logger.Error("ai writer apply failed", "draft_id", id, "error", lerr)
		c.notify(lerr)
		return lerr
	}

	c.mu.Lock()
	c.draft.Status = StatusApplied
	_ = c.fire(opApply, evApplied)
	c.mu.Unlock()
	release()
	c.logger.Info("ai writer draft applied", "draft_id", id)
	c.host.Reload()
	return nil
}

// OnRetry hands control back to the host's issue edit form.
func (c *Controller) OnRetry(ctx context.Context) error {
	return c.Retry(ctx)
}

// Retry makes no network call. It invokes the host's "begin editing issue"
// affordance and drops the active draft, which stays pending in the store.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requirePending(opRetry); err != nil {
		c.mu.Unlock()
		c.notify(err)
		return err
	}
	if _, ok := next(c.state, evRetry); !ok {
		err := c.stateError(opRetry, evRetry)
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	begin, ok := c.host.EditAffordance()
	if !ok || begin == nil {
		err := &Error{Kind: KindNotFound, Op: opRetry, Message: msgRetryTargetMissing}
		c.notify(err)
		return err
	}

	c.mu.Lock()
	if err := c.fire(opRetry, evRetry); err != nil {
		c.mu.Unlock()
		return err
	}
	c.draft = nil
	c.editText = ""
	c.mu.Unlock()
	c.render()
	begin()
	return nil
}

// fire applies event e. Callers hold c.mu.
func (c *Controller) fire(op string, e event) error {
	to, ok := next(c.state, e)
	if !ok {
		return c.stateError(op, e)
	}
	c.logger.Debug("ai writer transition", "from", c.state, "event", e, "to", to)
	c.state = to
	return nil
}

func (c *Controller) stateError(op string, e event) error {
	return &Error{
		Kind:    KindState,
		Op:      op,
		Message: fmt.Sprintf("cannot %s while %s", e, c.state),
	}
}

// requirePending checks that there is an active draft that may still be
// changed. Callers hold c.mu.
func (c *Controller) requirePending(op string) error {
	if c.state == StateApplied || (c.draft != nil && c.draft.Status == StatusApplied) {
		return &Error{Kind: KindTerminal, Op: op, Message: msgApplied}
	}
	if c.draft == nil || c.draft.ID == "" {
		return &Error{Kind: KindState, Op: op, Message: "no draft to " + op}
	}
	return nil
}

func (c *Controller) render() {
	c.mu.Lock()
	vm := c.buildView()
	c.mu.Unlock()
	c.host.Render(vm)
}

// notify surfaces err to the user. Busy rejections are dropped: they come
// from a control the user should not have been able to press.
func (c *Controller) notify(err error) {
	var lerr *Error
	if !errors.As(err, &lerr) {
		c.host.Notify(Notice{Kind: NoticeError, Message: err.Error()})
		return
	}
	if lerr.Kind == KindBusy {
		return
	}
	c.host.Notify(Notice{Kind: NoticeError, Message: lerr.Message})
}

// resultError folds a transport error and a store result into one *Error.
// A false success flag is a failure even when the call itself succeeded.
func resultError(op, prefix, fallback string, res Result, err error) *Error {
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Message: prefix + messageOf(err, fallback), Err: err}
	}
	if !res.Success {
		msg := strings.TrimSpace(res.Error)
		if msg == "" {
			msg = fallback
		}
		return &Error{Kind: KindLogical, Op: op, Message: prefix + msg}
	}
	return nil
}

// messageOf picks the most specific user-facing text for err.
func messageOf(err error, fallback string) string {
	var rerr *ResponseError
	if errors.As(err, &rerr) {
		if msg := strings.TrimSpace(rerr.Message); msg != "" {
			return msg
		}
		return fallback
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}
