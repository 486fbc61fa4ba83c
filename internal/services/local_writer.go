package services

import (
	"context"
	"strconv"

	"aiwriter/internal/lifecycle"
	"aiwriter/internal/models"
)

// LocalWriter binds a DraftService to one user and issue so a lifecycle
// controller can run in-process without the HTTP surface.
type LocalWriter struct {
	drafts  DraftService
	user    *models.User
	issueID uint
}

var (
	_ lifecycle.Gateway = (*LocalWriter)(nil)
	_ lifecycle.Store   = (*LocalWriter)(nil)
)

func NewLocalWriter(drafts DraftService, user *models.User, issueID uint) *LocalWriter {
	return &LocalWriter{drafts: drafts, user: user, issueID: issueID}
}

func (w *LocalWriter) Generate(ctx context.Context, req lifecycle.GenerateRequest) (lifecycle.GenerateResponse, error) {
	d, err := w.drafts.Generate(ctx, w.user, GenerateInput{
		IssueID:    w.issueID,
		IssueTitle: req.IssueTitle,
		UserPrompt: req.UserPrompt,
	})
	if err != nil {
		return lifecycle.GenerateResponse{}, &lifecycle.ResponseError{Message: UserMessage(err)}
	}
	return lifecycle.GenerateResponse{
		Content:   d.GeneratedContent,
		ContentID: lifecycle.DraftID(idString(d.ID)),
	}, nil
}

func (w *LocalWriter) Update(ctx context.Context, id lifecycle.DraftID, content string) (lifecycle.Result, error) {
	draftID, err := parseDraftID(id)
	if err != nil {
		return lifecycle.Result{}, err
	}
	if _, err := w.drafts.Update(ctx, w.user, draftID, content); err != nil {
		return lifecycle.Result{Success: false, Error: UserMessage(err)}, nil
	}
	return lifecycle.Result{Success: true}, nil
}

func (w *LocalWriter) Apply(ctx context.Context, id lifecycle.DraftID) (lifecycle.Result, error) {
	draftID, err := parseDraftID(id)
	if err != nil {
		return lifecycle.Result{}, err
	}
	if _, err := w.drafts.Apply(ctx, w.user, draftID); err != nil {
		return lifecycle.Result{Success: false, Error: UserMessage(err)}, nil
	}
	return lifecycle.Result{Success: true}, nil
}

func parseDraftID(id lifecycle.DraftID) (uint, error) {
	n, err := strconv.ParseUint(string(id), 10, 64)
	if err != nil || n == 0 {
		return 0, &lifecycle.ResponseError{Message: "Content not found."}
	}
	return uint(n), nil
}
