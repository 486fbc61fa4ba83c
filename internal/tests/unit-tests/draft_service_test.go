package unit_tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"aiwriter/internal/events"
	"aiwriter/internal/llm/client"
	"aiwriter/internal/metrics"
	"aiwriter/internal/models"
	"aiwriter/internal/repositories"
	"aiwriter/internal/services"
	"aiwriter/internal/tests/mocks"
	"aiwriter/internal/tests/utils"
)

type draftFixture struct {
	drafts      *mocks.DraftRepositoryMock
	issues      *mocks.IssueRepositoryMock
	settings    *mocks.SettingsRepositoryMock
	permissions *mocks.PermissionServiceMock
	completer   *client.MockClient
	service     services.DraftService
}

func newDraftFixture() *draftFixture {
	f := &draftFixture{
		drafts: &mocks.DraftRepositoryMock{},
		issues: &mocks.IssueRepositoryMock{
			GetFunc: func(ctx context.Context, id uint) (*models.Issue, error) {
				if id != 5 {
					return nil, repositories.ErrIssueNotFound
				}
				return &models.Issue{ID: 5, ProjectID: 2, TrackerID: 12, Subject: "Issue #5"}, nil
			},
		},
		settings: &mocks.SettingsRepositoryMock{Settings: models.Settings{
			ID: 1, TrackerID: 12, SystemPrompt: "Write a social post.", ModelKey: "mock|echo",
		}},
		permissions: &mocks.PermissionServiceMock{},
		completer:   &client.MockClient{Reply: "Fresh shoes!"},
	}
	completers := &mocks.CompleterFactoryMock{
		ForModelFunc: func(ctx context.Context, key string) (client.Completer, *models.LLMModel, error) {
			return f.completer, &models.LLMModel{Key: key, ProviderID: "mock", DisplayName: "Echo", Enabled: true}, nil
		},
	}
	f.service = services.NewDraftService(f.drafts, f.issues, f.settings, f.permissions, completers, metrics.New(), nil)
	return f
}

// captureEvents records emitted event names until the test ends.
func captureEvents(t *testing.T) func() []string {
	t.Helper()
	var (
		mu    sync.Mutex
		names []string
	)
	events.SetCustomEmitter(func(ctx context.Context, name string, evt events.DraftEvent) {
		mu.Lock()
		defer mu.Unlock()
		names = append(names, name)
	})
	t.Cleanup(func() { events.SetCustomEmitter(nil) })
	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), names...)
	}
}

func TestDraftService_Generate_Success(t *testing.T) {
	f := newDraftFixture()
	got := captureEvents(t)
	var created *models.Draft
	f.drafts.CreateFunc = func(ctx context.Context, d *models.Draft) error {
		d.ID = 9
		created = d
		return nil
	}

	draft, err := f.service.Generate(context.Background(), &models.User{ID: 3}, services.GenerateInput{
		IssueID:    5,
		UserPrompt: "  Announce the sale ",
	})
	utils.NilError(t, err)
	utils.Equal(t, draft.ID, uint(9))
	utils.Equal(t, draft.GeneratedContent, "Fresh shoes!")
	utils.Equal(t, draft.UserPrompt, "Announce the sale")
	utils.Equal(t, draft.SystemPrompt, "Write a social post.")
	utils.Equal(t, draft.AuthorID, uint(3))
	utils.Equal(t, draft.Status, models.DraftPending)
	assert.Same(t, created, draft)

	calls := f.completer.Calls()
	utils.Equal(t, len(calls), 1)
	utils.Equal(t, calls[0].SystemPrompt, "Write a social post.")
	// blank title falls back to the issue subject
	utils.Equal(t, calls[0].UserPrompt, "Title: Issue #5\n\nAnnounce the sale")
	utils.Equal(t, got(), []string{events.DraftGenerated})
}

func TestDraftService_Generate_UsesGivenTitle(t *testing.T) {
	f := newDraftFixture()
	_, err := f.service.Generate(context.Background(), &models.User{ID: 3}, services.GenerateInput{
		IssueID: 5, IssueTitle: "Spring sale", UserPrompt: "p",
	})
	utils.NilError(t, err)
	utils.Equal(t, f.completer.Calls()[0].UserPrompt, "Title: Spring sale\n\np")
}

func TestDraftService_Generate_RequiresPrompt(t *testing.T) {
	f := newDraftFixture()
	got := captureEvents(t)

	_, err := f.service.Generate(context.Background(), &models.User{ID: 3}, services.GenerateInput{IssueID: 5, UserPrompt: " \n "})
	utils.ErrorIs(t, err, services.ErrPromptRequired)
	utils.Equal(t, len(f.completer.Calls()), 0)
	utils.Equal(t, got(), []string{events.DraftFailed})
}

func TestDraftService_Generate_Forbidden(t *testing.T) {
	f := newDraftFixture()
	f.permissions.AllowedFunc = func(ctx context.Context, u *models.User, perm string, projectID uint) (bool, error) {
		utils.Equal(t, perm, models.PermissionUseAIWriter)
		utils.Equal(t, projectID, uint(2))
		return false, nil
	}

	_, err := f.service.Generate(context.Background(), &models.User{ID: 3}, services.GenerateInput{IssueID: 5, UserPrompt: "p"})
	utils.ErrorIs(t, err, services.ErrForbidden)

	_, err = f.service.Generate(context.Background(), nil, services.GenerateInput{IssueID: 5, UserPrompt: "p"})
	utils.ErrorIs(t, err, services.ErrForbidden)
	utils.Equal(t, len(f.completer.Calls()), 0)
}

func TestDraftService_Generate_UnknownIssue(t *testing.T) {
	f := newDraftFixture()
	_, err := f.service.Generate(context.Background(), &models.User{ID: 3}, services.GenerateInput{IssueID: 77, UserPrompt: "p"})
	utils.ErrorIs(t, err, services.ErrIssueNotFound)
}

func TestDraftService_Generate_ModelFailureCreatesNothing(t *testing.T) {
	f := newDraftFixture()
	f.completer.Err = errors.New("rate limited")
	f.drafts.CreateFunc = func(ctx context.Context, d *models.Draft) error {
		t.Fatal("draft must not be stored when the model fails")
		return nil
	}

	_, err := f.service.Generate(context.Background(), &models.User{ID: 3}, services.GenerateInput{IssueID: 5, UserPrompt: "p"})
	assert.ErrorContains(t, err, "rate limited")
}

func TestDraftService_Update(t *testing.T) {
	f := newDraftFixture()
	got := captureEvents(t)
	f.drafts.GetFunc = func(ctx context.Context, id uint) (*models.Draft, error) {
		return &models.Draft{ID: id, IssueID: 5, GeneratedContent: "old"}, nil
	}
	f.drafts.UpdateContentFunc = func(ctx context.Context, id uint, content string) (*models.Draft, error) {
		return &models.Draft{ID: id, IssueID: 5, GeneratedContent: content}, nil
	}

	d, err := f.service.Update(context.Background(), &models.User{ID: 3}, 9, "new text")
	utils.NilError(t, err)
	utils.Equal(t, d.GeneratedContent, "new text")
	utils.Equal(t, got(), []string{events.DraftUpdated})
}

func TestDraftService_Update_AppliedDraftIsRejected(t *testing.T) {
	f := newDraftFixture()
	f.drafts.GetFunc = func(ctx context.Context, id uint) (*models.Draft, error) {
		return &models.Draft{ID: id, IssueID: 5, Status: models.DraftApplied}, nil
	}
	f.drafts.UpdateContentFunc = func(ctx context.Context, id uint, content string) (*models.Draft, error) {
		t.Fatal("applied drafts must not be written")
		return nil, nil
	}

	_, err := f.service.Update(context.Background(), &models.User{ID: 3}, 9, "x")
	utils.ErrorIs(t, err, services.ErrDraftApplied)
}

func TestDraftService_Update_UnknownDraft(t *testing.T) {
	f := newDraftFixture()
	f.drafts.GetFunc = func(ctx context.Context, id uint) (*models.Draft, error) {
		return nil, repositories.ErrDraftNotFound
	}
	_, err := f.service.Update(context.Background(), &models.User{ID: 3}, 9, "x")
	utils.ErrorIs(t, err, services.ErrDraftNotFound)
	utils.Equal(t, services.UserMessage(err), "Content not found.")
}

func TestDraftService_Apply(t *testing.T) {
	f := newDraftFixture()
	got := captureEvents(t)
	applied := 0
	f.drafts.GetFunc = func(ctx context.Context, id uint) (*models.Draft, error) {
		return &models.Draft{ID: id, IssueID: 5}, nil
	}
	f.drafts.ApplyFunc = func(ctx context.Context, id uint) (*models.Draft, error) {
		applied++
		if applied > 1 {
			return nil, repositories.ErrDraftApplied
		}
		return &models.Draft{ID: id, IssueID: 5, Status: models.DraftApplied}, nil
	}

	d, err := f.service.Apply(context.Background(), &models.User{ID: 3}, 9)
	utils.NilError(t, err)
	utils.Equal(t, d.Status, models.DraftApplied)

	_, err = f.service.Apply(context.Background(), &models.User{ID: 3}, 9)
	utils.ErrorIs(t, err, services.ErrDraftApplied)
	utils.Equal(t, services.UserMessage(err), "Content has already been applied.")
	utils.Equal(t, got(), []string{events.DraftApplied, events.DraftFailed})
}

func TestDraftService_List(t *testing.T) {
	f := newDraftFixture()
	f.drafts.ListByIssueFunc = func(ctx context.Context, issueID uint) ([]models.Draft, error) {
		utils.Equal(t, issueID, uint(5))
		return []models.Draft{{ID: 8, IssueID: 5}, {ID: 6, IssueID: 5, Status: models.DraftApplied}}, nil
	}

	drafts, err := f.service.List(context.Background(), &models.User{ID: 3}, 5)
	utils.NilError(t, err)
	utils.Equal(t, len(drafts), 2)
	utils.Equal(t, drafts[0].ID, uint(8))
}

func TestDraftService_List_Forbidden(t *testing.T) {
	f := newDraftFixture()
	f.permissions.AllowedFunc = func(ctx context.Context, u *models.User, perm string, projectID uint) (bool, error) {
		return false, nil
	}
	f.drafts.ListByIssueFunc = func(ctx context.Context, issueID uint) ([]models.Draft, error) {
		t.Fatal("drafts must not be read without permission")
		return nil, nil
	}

	_, err := f.service.List(context.Background(), &models.User{ID: 3}, 5)
	utils.ErrorIs(t, err, services.ErrForbidden)
	_, err = f.service.List(context.Background(), &models.User{ID: 3}, 77)
	utils.ErrorIs(t, err, services.ErrIssueNotFound)
}
