package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aiwriter/internal/models"
)

type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	Get(ctx context.Context, id uint) (*models.Issue, error)
	Update(ctx context.Context, issue *models.Issue) error
	ListByProject(ctx context.Context, projectID uint) ([]models.Issue, error)
	CreateCustomField(ctx context.Context, field *models.CustomField) error
}

type issueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &issueRepository{db: db}
}

func (r *issueRepository) Create(ctx context.Context, issue *models.Issue) error {
	if err := r.db.WithContext(ctx).Create(issue).Error; err != nil {
		return fmt.Errorf("creating issue: %w", err)
	}
	return nil
}

// Get loads an issue with its project and custom values.
func (r *issueRepository) Get(ctx context.Context, id uint) (*models.Issue, error) {
	var issue models.Issue
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("CustomValues").
		First(&issue, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("issue %d: %w", id, ErrIssueNotFound)
		}
		return nil, fmt.Errorf("getting issue %d: %w", id, err)
	}
	return &issue, nil
}

// Update saves the issue columns and upserts its custom values.
func (r *issueRepository) Update(ctx context.Context, issue *models.Issue) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(issue).Error; err != nil {
			return fmt.Errorf("updating issue %d: %w", issue.ID, err)
		}
		for i := range issue.CustomValues {
			cv := &issue.CustomValues[i]
			cv.IssueID = issue.ID
			// upsert on (issue, field) only; a loaded row's primary key must not collide
			row := models.CustomValue{IssueID: issue.ID, CustomFieldID: cv.CustomFieldID, Value: cv.Value}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "issue_id"}, {Name: "custom_field_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"value"}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("saving custom value %d for issue %d: %w", cv.CustomFieldID, issue.ID, err)
			}
		}
		return nil
	})
}

func (r *issueRepository) ListByProject(ctx context.Context, projectID uint) ([]models.Issue, error) {
	var issues []models.Issue
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id DESC").Find(&issues).Error; err != nil {
		return nil, fmt.Errorf("listing issues: %w", err)
	}
	return issues, nil
}

func (r *issueRepository) CreateCustomField(ctx context.Context, field *models.CustomField) error {
	if err := r.db.WithContext(ctx).Create(field).Error; err != nil {
		return fmt.Errorf("creating custom field: %w", err)
	}
	return nil
}
