package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aiwriter/internal/models"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	FindByID(ctx context.Context, id uint) (*models.Project, error)
	FindByIdentifier(ctx context.Context, identifier string) (*models.Project, error)
	CreateTracker(ctx context.Context, t *models.Tracker) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, p *models.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepository) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %d: %w", id, ErrProjectNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (r *projectRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.Project, error) {
	var p models.Project
	if err := r.db.WithContext(ctx).Where("identifier = ?", identifier).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %q: %w", identifier, ErrProjectNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (r *projectRepository) CreateTracker(ctx context.Context, t *models.Tracker) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(t).Error
}
