package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"aiwriter/internal/models"
)

type DraftRepository interface {
	Create(ctx context.Context, d *models.Draft) error
	Get(ctx context.Context, id uint) (*models.Draft, error)
	UpdateContent(ctx context.Context, id uint, content string) (*models.Draft, error)
	Apply(ctx context.Context, id uint) (*models.Draft, error)
	ListByIssue(ctx context.Context, issueID uint) ([]models.Draft, error)
}

type draftRepository struct {
	db *gorm.DB
}

func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

func (r *draftRepository) Create(ctx context.Context, d *models.Draft) error {
	if d.IssueID == 0 {
		return fmt.Errorf("issue id is required")
	}
	d.Status = models.DraftPending
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *draftRepository) Get(ctx context.Context, id uint) (*models.Draft, error) {
	return findDraft(r.db.WithContext(ctx), id)
}

// UpdateContent replaces the text of a pending draft. Writing the same text
// twice leaves the draft as it was after the first write.
func (r *draftRepository) UpdateContent(ctx context.Context, id uint, content string) (*models.Draft, error) {
	var out *models.Draft
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := findDraft(tx, id)
		if err != nil {
			return err
		}
		if d.Status == models.DraftApplied {
			return fmt.Errorf("draft %d: %w", id, ErrDraftApplied)
		}
		if err := tx.Model(d).Update("generated_content", content).Error; err != nil {
			return fmt.Errorf("update draft %d: %w", id, err)
		}
		d.GeneratedContent = content
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Apply writes the draft into its issue's description and marks it applied,
// both in one transaction. An applied draft cannot be applied again.
func (r *draftRepository) Apply(ctx context.Context, id uint) (*models.Draft, error) {
	var out *models.Draft
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := findDraft(tx, id)
		if err != nil {
			return err
		}
		if d.Status == models.DraftApplied {
			return fmt.Errorf("draft %d: %w", id, ErrDraftApplied)
		}

		res := tx.Model(&models.Issue{}).Where("id = ?", d.IssueID).Update("description", d.GeneratedContent)
		if res.Error != nil {
			return fmt.Errorf("update issue %d: %w", d.IssueID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("issue %d: %w", d.IssueID, ErrIssueNotFound)
		}

		res = tx.Model(&models.Draft{}).
			Where("id = ? AND status = ?", d.ID, models.DraftPending).
			Update("status", models.DraftApplied)
		if res.Error != nil {
			return fmt.Errorf("mark draft %d applied: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("draft %d: %w", id, ErrDraftApplied)
		}
		d.Status = models.DraftApplied
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *draftRepository) ListByIssue(ctx context.Context, issueID uint) ([]models.Draft, error) {
	var drafts []models.Draft
	if err := r.db.WithContext(ctx).Where("issue_id = ?", issueID).Order("id DESC").Find(&drafts).Error; err != nil {
		return nil, err
	}
	return drafts, nil
}

func findDraft(db *gorm.DB, id uint) (*models.Draft, error) {
	var d models.Draft
	if err := db.First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("draft %d: %w", id, ErrDraftNotFound)
		}
		return nil, err
	}
	return &d, nil
}
