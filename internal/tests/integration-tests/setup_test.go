package integration_tests

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"aiwriter/internal/database"
	"aiwriter/internal/models"
	"aiwriter/internal/tests/utils"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(database.Config{Path: filepath.Join(t.TempDir(), "aiwriter.db")})
	utils.NilError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// seedIssue creates a project with one issue and returns the issue.
func seedIssue(t *testing.T, db *gorm.DB) *models.Issue {
	t.Helper()
	project := &models.Project{Identifier: "marketing", Name: "Marketing"}
	utils.NilError(t, db.WithContext(context.Background()).Create(project).Error)
	issue := &models.Issue{ProjectID: project.ID, TrackerID: 12, Subject: "Issue #42", Description: "old"}
	utils.NilError(t, db.Create(issue).Error)
	return issue
}
