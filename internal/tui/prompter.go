package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"aiwriter/internal/lifecycle"
)

// ErrQuit ends a session without error.
var ErrQuit = errors.New("quit")

// Choices offered next to the draft actions.
const (
	ChoiceRegenerate lifecycle.ActionKind = "regenerate"
	ChoiceQuit       lifecycle.ActionKind = "quit"
)

// Prompter collects input from the user. Implementations return ErrQuit when
// the user backs out.
type Prompter interface {
	Ask(ctx context.Context, title, prompt string) (string, string, error)
	Choose(ctx context.Context, vm lifecycle.ViewModel) (lifecycle.ActionKind, error)
	Edit(ctx context.Context, text string) (string, error)
}

type formPrompter struct {
	theme      *huh.Theme
	accessible bool
}

// NewFormPrompter asks through huh forms. Accessible mode swaps the TUI for
// plain line prompts.
func NewFormPrompter(accessible bool) Prompter {
	return &formPrompter{theme: huh.ThemeDracula(), accessible: accessible}
}

func (f *formPrompter) run(ctx context.Context, groups ...*huh.Group) error {
	err := huh.NewForm(groups...).
		WithTheme(f.theme).
		WithAccessible(f.accessible).
		RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrQuit
	}
	return err
}

func (f *formPrompter) Ask(ctx context.Context, title, prompt string) (string, string, error) {
	err := f.run(ctx, huh.NewGroup(
		huh.NewInput().
			Title("Issue title").
			Value(&title),
		huh.NewText().
			Title("Prompt").
			Description("What should the draft say?").
			CharLimit(4000).
			Value(&prompt).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("please enter a prompt")
				}
				return nil
			}),
	))
	return title, prompt, err
}

func (f *formPrompter) Choose(ctx context.Context, vm lifecycle.ViewModel) (lifecycle.ActionKind, error) {
	var opts []huh.Option[lifecycle.ActionKind]
	for _, a := range vm.Actions {
		if a.Enabled {
			opts = append(opts, huh.NewOption(a.Label, a.Kind))
		}
	}
	opts = append(opts,
		huh.NewOption("Generate again", ChoiceRegenerate),
		huh.NewOption("Quit", ChoiceQuit),
	)
	var choice lifecycle.ActionKind
	err := f.run(ctx, huh.NewGroup(
		huh.NewSelect[lifecycle.ActionKind]().
			Title("What next?").
			Options(opts...).
			Value(&choice),
	))
	return choice, err
}

func (f *formPrompter) Edit(ctx context.Context, text string) (string, error) {
	err := f.run(ctx, huh.NewGroup(
		huh.NewText().
			Title("Edit draft").
			CharLimit(20000).
			Lines(12).
			Value(&text),
	))
	return text, err
}
