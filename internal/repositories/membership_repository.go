package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aiwriter/internal/models"
)

type MembershipRepository interface {
	// Find returns nil, nil when the user is not a member of the project.
	Find(ctx context.Context, projectID, userID uint) (*models.Membership, error)
	Upsert(ctx context.Context, projectID, userID uint, permissions []string) (*models.Membership, error)
}

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Find(ctx context.Context, projectID, userID uint) (*models.Membership, error) {
	var m models.Membership
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepository) Upsert(ctx context.Context, projectID, userID uint, permissions []string) (*models.Membership, error) {
	if projectID == 0 || userID == 0 {
		return nil, fmt.Errorf("project and user are required")
	}
	m := models.Membership{
		ProjectID:   projectID,
		UserID:      userID,
		Permissions: strings.Join(permissions, ","),
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"permissions"}),
	}).Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}
