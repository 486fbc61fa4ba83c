package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aiwriter/internal/models"
)

// ModelSettingRepository stores which catalog models may be used for drafts.
type ModelSettingRepository interface {
	List(ctx context.Context) ([]models.ModelSetting, error)
	Upsert(ctx context.Context, modelKey, provider string, enabled bool) (*models.ModelSetting, error)
	SetProviderEnabled(ctx context.Context, provider string, enabled bool) error
}

type modelSettingRepository struct {
	db *gorm.DB
}

func NewModelSettingRepository(db *gorm.DB) ModelSettingRepository {
	return &modelSettingRepository{db: db}
}

func (r *modelSettingRepository) List(ctx context.Context) ([]models.ModelSetting, error) {
	var settings []models.ModelSetting
	if err := r.db.WithContext(ctx).Order("provider, model_key").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *modelSettingRepository) Upsert(ctx context.Context, modelKey, provider string, enabled bool) (*models.ModelSetting, error) {
	if modelKey == "" {
		return nil, fmt.Errorf("model key is required")
	}
	if provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	record := models.ModelSetting{
		ModelKey: modelKey,
		Provider: provider,
		Enabled:  enabled,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "model_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"enabled":    enabled,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *modelSettingRepository) SetProviderEnabled(ctx context.Context, provider string, enabled bool) error {
	if provider == "" {
		return fmt.Errorf("provider is required")
	}
	return r.db.WithContext(ctx).Model(&models.ModelSetting{}).
		Where("provider = ?", provider).
		Update("enabled", enabled).Error
}
