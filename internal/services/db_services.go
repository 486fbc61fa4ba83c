package services

import (
	"log/slog"

	"gorm.io/gorm"

	"aiwriter/internal/metrics"
	"aiwriter/internal/models"
	"aiwriter/internal/repositories"
)

// Options carries the non-database collaborators of the service container.
type Options struct {
	Keys            APIKeyStore
	BaseURLs        map[string]string
	DefaultSettings models.Settings
	Metrics         *metrics.Metrics
	Logger          *slog.Logger
}

// DbServices aggregates all domain services backed by the database.
type DbServices struct {
	Users       UserService
	Projects    ProjectService
	Issues      IssueService
	Prompts     PromptService
	Permissions PermissionService
	Settings    SettingsService
	Models      ModelConfigService
	Drafts      DraftService
}

// NewDbServices constructs the service container using repositories backed by db.
// Models.Startup must run before drafts are generated.
func NewDbServices(db *gorm.DB, opts Options) *DbServices {
	userRepo := repositories.NewUserRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	membershipRepo := repositories.NewMembershipRepository(db)
	issueRepo := repositories.NewIssueRepository(db)
	draftRepo := repositories.NewDraftRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db, opts.DefaultSettings)
	modelSettingRepo := repositories.NewModelSettingRepository(db)

	modelConfigs := NewModelConfigService(modelSettingRepo)
	permissions := NewPermissionService(membershipRepo, settingsRepo)
	prompts := NewPromptService(settingsRepo, issueRepo, projectRepo, opts.Logger)
	completers := NewCompleterFactory(modelConfigs, opts.Keys, opts.BaseURLs)

	return &DbServices{
		Users:       NewUserService(userRepo),
		Projects:    NewProjectService(projectRepo, membershipRepo, issueRepo),
		Issues:      NewIssueService(issueRepo, projectRepo, prompts),
		Prompts:     prompts,
		Permissions: permissions,
		Settings:    NewSettingsService(settingsRepo, modelConfigs),
		Models:      modelConfigs,
		Drafts:      NewDraftService(draftRepo, issueRepo, settingsRepo, permissions, completers, opts.Metrics, opts.Logger),
	}
}
