// Package tui binds the draft lifecycle controller to a terminal.
package tui

import (
	"context"
	"errors"
	"fmt"

	"aiwriter/internal/lifecycle"
)

// Session drives one controller from terminal input until the draft is
// applied or the user quits.
type Session struct {
	ctrl     *lifecycle.Controller
	page     *Page
	prompter Prompter
}

func NewSession(ctrl *lifecycle.Controller, page *Page, prompter Prompter) *Session {
	return &Session{ctrl: ctrl, page: page, prompter: prompter}
}

// Run returns nil when the draft was applied or the user quit. Controller
// failures are shown on the page and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	if err := s.ctrl.Attach(ctx); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch state := s.ctrl.State(); state {
		case lifecycle.StateIdle:
			err = s.generate(ctx)
		case lifecycle.StateReviewing:
			err = s.review(ctx)
		case lifecycle.StateEditing:
			err = s.edit(ctx)
		case lifecycle.StateApplied:
			return nil
		default:
			return fmt.Errorf("tui: unexpected state %s", state)
		}
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil && !isLifecycleError(err) {
			return err
		}
	}
}

func (s *Session) generate(ctx context.Context) error {
	title, prompt := s.page.Input()
	title, prompt, err := s.prompter.Ask(ctx, title, prompt)
	if err != nil {
		return err
	}
	s.page.SetInput(title, prompt)
	return s.ctrl.OnGenerate(ctx)
}

func (s *Session) review(ctx context.Context) error {
	choice, err := s.prompter.Choose(ctx, s.ctrl.View())
	if err != nil {
		return err
	}
	switch choice {
	case lifecycle.ActionAgree:
		return s.ctrl.OnAgree(ctx)
	case lifecycle.ActionEdit:
		return s.ctrl.OnEdit(ctx)
	case lifecycle.ActionRetry:
		return s.ctrl.OnRetry(ctx)
	case ChoiceRegenerate:
		return s.generate(ctx)
	case ChoiceQuit:
		return ErrQuit
	}
	return fmt.Errorf("tui: unknown choice %q", choice)
}

func (s *Session) edit(ctx context.Context) error {
	text, err := s.prompter.Edit(ctx, s.ctrl.View().EditText)
	if err != nil {
		return err
	}
	return s.ctrl.OnSave(ctx, text)
}

func isLifecycleError(err error) bool {
	var lerr *lifecycle.Error
	return errors.As(err, &lerr)
}
