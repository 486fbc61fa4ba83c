package lifecycle

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	mdhtml "github.com/yuin/goldmark/renderer/html"
)

// ActionKind names a decision the user can take on a draft.
type ActionKind string

const (
	ActionAgree ActionKind = "agree"
	ActionRetry ActionKind = "retry"
	ActionEdit  ActionKind = "edit"
	ActionSave  ActionKind = "save"
)

// ActionView is one button exposed by the current state.
type ActionView struct {
	Kind    ActionKind `json:"kind"`
	Label   string     `json:"label"`
	Enabled bool       `json:"enabled"`
}

// ViewModel is everything a presentation layer needs to paint the writer
// widget. It is derived from controller state and never mutated by the host.
type ViewModel struct {
	State          State         `json:"state"`
	TriggerLabel   string        `json:"triggerLabel"`
	TriggerEnabled bool          `json:"triggerEnabled"`
	ResultVisible  bool          `json:"resultVisible"`
	DraftID        DraftID       `json:"draftId,omitempty"`
	Content        string        `json:"content,omitempty"`
	ContentHTML    template.HTML `json:"contentHtml,omitempty"`
	Editing        bool          `json:"editing"`
	EditText       string        `json:"editText,omitempty"`
	Actions        []ActionView  `json:"actions,omitempty"`
}

// Action returns the exposed action of kind k.
func (vm ViewModel) Action(k ActionKind) (ActionView, bool) {
	for _, a := range vm.Actions {
		if a.Kind == k {
			return a, true
		}
	}
	return ActionView{}, false
}

// ContentRenderer converts draft text into safe HTML for the read-only review.
type ContentRenderer interface {
	Render(content string) (template.HTML, error)
}

type markdownRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewMarkdownRenderer renders drafts as GitHub-flavoured markdown with hard
// line breaks, sanitized with the UGC policy.
func NewMarkdownRenderer() ContentRenderer {
	return &markdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithRendererOptions(mdhtml.WithHardWraps()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

func (r *markdownRenderer) Render(content string) (template.HTML, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

// buildView derives the view model. Callers hold c.mu.
func (c *Controller) buildView() ViewModel {
	text := c.cfg.Text
	vm := ViewModel{
		State:          c.state,
		TriggerLabel:   text.GenerateContent,
		TriggerEnabled: !c.disabled[ControlGenerate],
	}

	switch c.state {
	case StateRequesting:
		vm.TriggerLabel = text.Generating
		vm.TriggerEnabled = false
	case StateSaving, StateApplying, StateApplied:
		vm.TriggerEnabled = false
	}

	if c.draft == nil {
		return vm
	}

	switch c.state {
	case StateReviewing, StateApplying:
		vm.ResultVisible = true
		vm.DraftID = c.draft.ID
		vm.Content = c.draft.Content
		vm.ContentHTML = c.renderContent(c.draft.Content)
		busy := c.state == StateApplying
		vm.Actions = []ActionView{
			{Kind: ActionAgree, Label: text.Agree, Enabled: !busy && !c.disabled[ControlApply]},
			{Kind: ActionRetry, Label: text.Retry, Enabled: !busy},
			{Kind: ActionEdit, Label: text.Edit, Enabled: !busy},
		}
	case StateEditing, StateSaving:
		vm.ResultVisible = true
		vm.DraftID = c.draft.ID
		vm.Content = c.draft.Content
		vm.Editing = true
		vm.EditText = c.editText
		vm.Actions = []ActionView{
			{Kind: ActionSave, Label: text.Save, Enabled: c.state == StateEditing && !c.disabled[ControlSave]},
		}
	case StateApplied:
		vm.ResultVisible = true
		vm.DraftID = c.draft.ID
		vm.Content = c.draft.Content
		vm.ContentHTML = c.renderContent(c.draft.Content)
	}
	return vm
}

func (c *Controller) renderContent(content string) template.HTML {
	if c.renderer == nil {
		return template.HTML(template.HTMLEscapeString(content))
	}
	html, err := c.renderer.Render(content)
	if err != nil {
		c.logger.Warn("render draft content", "error", err)
		return template.HTML(template.HTMLEscapeString(content))
	}
	return html
}
