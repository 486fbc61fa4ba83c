package mocks

import (
	"context"

	"aiwriter/internal/models"
)

type MembershipRepositoryMock struct {
	FindFunc   func(ctx context.Context, projectID, userID uint) (*models.Membership, error)
	UpsertFunc func(ctx context.Context, projectID, userID uint, permissions []string) (*models.Membership, error)
}

func (m *MembershipRepositoryMock) Find(ctx context.Context, projectID, userID uint) (*models.Membership, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, projectID, userID)
	}
	return nil, nil
}

func (m *MembershipRepositoryMock) Upsert(ctx context.Context, projectID, userID uint, permissions []string) (*models.Membership, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, projectID, userID, permissions)
	}
	return nil, nil
}
