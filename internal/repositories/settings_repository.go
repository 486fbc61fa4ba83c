package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"aiwriter/internal/models"
)

type SettingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, settings *models.Settings) error
}

type settingsRepository struct {
	db       *gorm.DB
	defaults models.Settings
}

// NewSettingsRepository returns a repository that falls back to defaults until
// the settings row has been written once.
func NewSettingsRepository(db *gorm.DB, defaults models.Settings) SettingsRepository {
	if defaults.SystemPrompt == "" {
		defaults.SystemPrompt = models.DefaultSystemPrompt
	}
	defaults.ID = 1
	return &settingsRepository{db: db, defaults: defaults}
}

func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	if err := r.db.WithContext(ctx).First(&settings, 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			def := r.defaults
			return &def, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Update(ctx context.Context, settings *models.Settings) error {
	// single-row table
	settings.ID = 1
	return r.db.WithContext(ctx).Save(settings).Error
}
