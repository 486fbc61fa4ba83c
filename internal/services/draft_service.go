package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"aiwriter/internal/events"
	"aiwriter/internal/llm/client"
	"aiwriter/internal/metrics"
	"aiwriter/internal/models"
	"aiwriter/internal/repositories"
)

var (
	ErrPromptRequired  = errors.New("prompt is required")
	ErrForbidden       = errors.New("you are not allowed to use the AI writer on this project")
	ErrDraftNotFound   = repositories.ErrDraftNotFound
	ErrDraftApplied    = repositories.ErrDraftApplied
	ErrIssueNotFound   = repositories.ErrIssueNotFound
	ErrEmptyCompletion = client.ErrEmptyCompletion
)

// GenerateInput is one generation request for an issue.
type GenerateInput struct {
	IssueID    uint
	IssueTitle string
	UserPrompt string
}

// DraftService generates drafts and carries them through update and apply.
type DraftService interface {
	Generate(ctx context.Context, user *models.User, in GenerateInput) (*models.Draft, error)
	Get(ctx context.Context, user *models.User, id uint) (*models.Draft, error)
	List(ctx context.Context, user *models.User, issueID uint) ([]models.Draft, error)
	Update(ctx context.Context, user *models.User, id uint, content string) (*models.Draft, error)
	Apply(ctx context.Context, user *models.User, id uint) (*models.Draft, error)
}

type draftService struct {
	drafts      repositories.DraftRepository
	issues      repositories.IssueRepository
	settings    repositories.SettingsRepository
	permissions PermissionService
	completers  CompleterFactory
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewDraftService(
	drafts repositories.DraftRepository,
	issues repositories.IssueRepository,
	settings repositories.SettingsRepository,
	permissions PermissionService,
	completers CompleterFactory,
	m *metrics.Metrics,
	logger *slog.Logger,
) DraftService {
	if logger == nil {
		logger = slog.Default()
	}
	return &draftService{
		drafts:      drafts,
		issues:      issues,
		settings:    settings,
		permissions: permissions,
		completers:  completers,
		metrics:     m,
		logger:      logger,
	}
}

func (s *draftService) Generate(ctx context.Context, user *models.User, in GenerateInput) (_ *models.Draft, err error) {
	start := time.Now()
	defer func() { s.finish(ctx, metrics.OpGenerate, start, in.IssueID, err) }()

	prompt := strings.TrimSpace(in.UserPrompt)
	if prompt == "" {
		return nil, ErrPromptRequired
	}
	issue, err := s.authorizedIssue(ctx, user, in.IssueID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.IssueTitle)
	if title == "" {
		title = issue.Subject
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: load settings: %w", err)
	}
	completer, model, err := s.completers.ForModel(ctx, cfg.ModelKey)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	userMessage, err := client.RenderDraftPrompt(client.DraftPrompt{IssueTitle: title, UserPrompt: prompt})
	if err != nil {
		return nil, err
	}

	callStart := time.Now()
	content, err := completer.Complete(ctx, cfg.SystemPrompt, userMessage)
	s.metrics.ObserveCompletion(model.ProviderID, time.Since(callStart))
	if err != nil {
		return nil, fmt.Errorf("service: generate with %s: %w", model.DisplayName, err)
	}

	draft := &models.Draft{
		IssueID:          issue.ID,
		AuthorID:         user.ID,
		UserPrompt:       prompt,
		SystemPrompt:     cfg.SystemPrompt,
		GeneratedContent: content,
	}
	if err := s.drafts.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("service: save draft: %w", err)
	}
	events.Emit(ctx, events.DraftGenerated, events.NewSuccess("draft generated").
		With("draft_id", idString(draft.ID)).
		With("issue_id", idString(issue.ID)).
		With("model", model.Key))
	return draft, nil
}

func (s *draftService) Get(ctx context.Context, user *models.User, id uint) (*models.Draft, error) {
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizedIssue(ctx, user, draft.IssueID); err != nil {
		return nil, err
	}
	return draft, nil
}

// List returns the drafts of an issue, newest first.
func (s *draftService) List(ctx context.Context, user *models.User, issueID uint) ([]models.Draft, error) {
	if _, err := s.authorizedIssue(ctx, user, issueID); err != nil {
		return nil, err
	}
	drafts, err := s.drafts.ListByIssue(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("service: list drafts: %w", err)
	}
	return drafts, nil
}

// Update replaces the content of a pending draft. Sending the same content
// again succeeds and leaves the draft unchanged.
func (s *draftService) Update(ctx context.Context, user *models.User, id uint, content string) (_ *models.Draft, err error) {
	start := time.Now()
	var issueID uint
	defer func() { s.finish(ctx, metrics.OpUpdate, start, issueID, err) }()

	draft, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	issueID = draft.IssueID
	if draft.Status == models.DraftApplied {
		return nil, ErrDraftApplied
	}
	updated, err := s.drafts.UpdateContent(ctx, id, content)
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, events.DraftUpdated, events.NewInfo("draft updated").
		With("draft_id", idString(id)))
	return updated, nil
}

// Apply writes the draft into its issue's description. It succeeds at most
// once per draft.
func (s *draftService) Apply(ctx context.Context, user *models.User, id uint) (_ *models.Draft, err error) {
	start := time.Now()
	var issueID uint
	defer func() { s.finish(ctx, metrics.OpApply, start, issueID, err) }()

	draft, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	issueID = draft.IssueID
	applied, err := s.drafts.Apply(ctx, id)
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, events.DraftApplied, events.NewSuccess("draft applied").
		With("draft_id", idString(id)).
		With("issue_id", idString(applied.IssueID)))
	return applied, nil
}

func (s *draftService) authorizedIssue(ctx context.Context, user *models.User, issueID uint) (*models.Issue, error) {
	if user == nil {
		return nil, ErrForbidden
	}
	issue, err := s.issues.Get(ctx, issueID)
	if err != nil {
		return nil, err
	}
	ok, err := s.permissions.Allowed(ctx, user, models.PermissionUseAIWriter, issue.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("service: check permission: %w", err)
	}
	if !ok {
		return nil, ErrForbidden
	}
	return issue, nil
}

func (s *draftService) finish(ctx context.Context, op string, start time.Time, issueID uint, err error) {
	s.metrics.Observe(op, start, err)
	if err == nil {
		return
	}
	s.logger.Error("draft operation failed", "op", op, "issue_id", issueID, "error", err)
	events.Emit(ctx, events.DraftFailed, events.NewError(op+" failed: "+err.Error()).
		With("op", op).
		With("issue_id", idString(issueID)))
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
