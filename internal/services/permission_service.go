package services

import (
	"context"
	"strings"

	"aiwriter/internal/models"
	"aiwriter/internal/repositories"
)

// PermissionService decides who may use the writer and where it is offered.
type PermissionService interface {
	// Allowed reports whether user holds permission on the project.
	Allowed(ctx context.Context, user *models.User, permission string, projectID uint) (bool, error)
	// WriterAvailable reports whether the writer should be shown on issue for
	// user: the user may use it and the issue is on the configured tracker.
	WriterAvailable(ctx context.Context, user *models.User, issue *models.Issue) (bool, error)
}

type permissionService struct {
	memberships repositories.MembershipRepository
	settings    repositories.SettingsRepository
}

func NewPermissionService(memberships repositories.MembershipRepository, settings repositories.SettingsRepository) PermissionService {
	return &permissionService{memberships: memberships, settings: settings}
}

func (s *permissionService) Allowed(ctx context.Context, user *models.User, permission string, projectID uint) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.Admin {
		return true, nil
	}
	m, err := s.memberships.Find(ctx, projectID, user.ID)
	if err != nil || m == nil {
		return false, err
	}
	for _, p := range strings.Split(m.Permissions, ",") {
		if strings.TrimSpace(p) == permission {
			return true, nil
		}
	}
	return false, nil
}

func (s *permissionService) WriterAvailable(ctx context.Context, user *models.User, issue *models.Issue) (bool, error) {
	if issue == nil {
		return false, nil
	}
	ok, err := s.Allowed(ctx, user, models.PermissionUseAIWriter, issue.ProjectID)
	if err != nil || !ok {
		return false, err
	}
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return false, err
	}
	return cfg.TrackerID != 0 && issue.TrackerID == cfg.TrackerID, nil
}
