package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"aiwriter/internal/lifecycle"
)

// Page is the terminal stand-in for an issue view. The trigger and result
// anchors always exist; the prompt and title anchors hold whatever the user
// typed last.
type Page struct {
	cfg    lifecycle.Config
	out    io.Writer
	styles Styles
	width  int

	mu           sync.Mutex
	values       map[string]string
	last         string
	reloaded     bool
	editingIssue bool
}

var _ lifecycle.Host = (*Page)(nil)

func NewPage(cfg lifecycle.Config, out io.Writer, styles Styles) *Page {
	return &Page{
		cfg:    cfg,
		out:    out,
		styles: styles,
		width:  80,
		values: make(map[string]string),
	}
}

// SetInput records the issue title and prompt the controller reads on generate.
func (p *Page) SetInput(title, prompt string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[p.cfg.PageTitleSelector] = title
	p.values[p.cfg.PromptFieldID] = prompt
	p.editingIssue = false
}

// Input returns the last title and prompt.
func (p *Page) Input() (title, prompt string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values[p.cfg.PageTitleSelector], p.values[p.cfg.PromptFieldID]
}

func (p *Page) Exists(anchor string) bool {
	return anchor == p.cfg.ButtonID || anchor == p.cfg.ResultContainerID
}

func (p *Page) Value(anchor string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[anchor]
	return v, ok
}

// Render prints the view when it differs from the last one printed. Control
// toggles that do not change what the user sees are not repeated.
func (p *Page) Render(vm lifecycle.ViewModel) {
	frame := p.frame(vm)
	p.mu.Lock()
	defer p.mu.Unlock()
	if frame == p.last {
		return
	}
	p.last = frame
	fmt.Fprintln(p.out, frame)
}

func (p *Page) frame(vm lifecycle.ViewModel) string {
	var b strings.Builder
	trigger := vm.TriggerLabel
	if !vm.TriggerEnabled {
		trigger = p.styles.Disabled.Render(trigger)
	}
	b.WriteString(p.styles.Header.Render("AI Writer"))
	b.WriteString(" ")
	b.WriteString(p.styles.State.Render("[" + vm.State.String() + "]"))
	b.WriteString("  ")
	b.WriteString(trigger)

	if !vm.ResultVisible {
		return b.String()
	}
	body := vm.Content
	if vm.Editing {
		body = vm.EditText
	}
	b.WriteString("\n")
	b.WriteString(p.styles.Content.Width(p.width).Render(body))
	if len(vm.Actions) > 0 {
		labels := make([]string, 0, len(vm.Actions))
		for _, a := range vm.Actions {
			if a.Enabled {
				labels = append(labels, p.styles.Action.Render(a.Label))
			} else {
				labels = append(labels, p.styles.Disabled.Render(a.Label))
			}
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(labels, "  "))
	}
	return b.String()
}

func (p *Page) Notify(n lifecycle.Notice) {
	style := p.styles.Info
	if n.Kind == lifecycle.NoticeError {
		style = p.styles.Error
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, style.Render(n.Message))
}

func (p *Page) Reload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reloaded = true
	fmt.Fprintln(p.out, p.styles.Info.Render("Issue description updated."))
}

// EditAffordance reopens the prompt form on the next loop iteration.
func (p *Page) EditAffordance() (func(), bool) {
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.editingIssue = true
	}, true
}

func (p *Page) Reloaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloaded
}

func (p *Page) EditingIssue() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.editingIssue
}
