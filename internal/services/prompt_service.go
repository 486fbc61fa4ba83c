package services

import (
	"context"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"aiwriter/internal/models"
	"aiwriter/internal/repositories"
)

// Placeholders understood in prompt templates. The misspelled description
// placeholder is what existing templates were written against.
const (
	PlaceholderIssueTitle         = "{issue_title}"
	PlaceholderProjectName        = "{project_name}"
	PlaceholderProjectDescription = "{project_description}"
	placeholderLegacyDescription  = "{project_desciption}"
)

var (
	lineBreakTags = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockEndTags  = regexp.MustCompile(`(?i)</p>|</div>|</h[1-6]>`)
	extraNewlines = regexp.MustCompile(`\n{3,}`)
)

// PromptService fills an issue's prompt field from its parent's template.
type PromptService interface {
	// FillFromTemplate sets the prompt of issue when it is blank and the parent
	// issue carries a template. It reports whether the prompt was set. Errors
	// are logged and swallowed so they never block saving the issue.
	FillFromTemplate(ctx context.Context, issue *models.Issue) bool
}

type promptService struct {
	settings repositories.SettingsRepository
	issues   repositories.IssueRepository
	projects repositories.ProjectRepository
	strip    *bluemonday.Policy
	logger   *slog.Logger
}

func NewPromptService(settings repositories.SettingsRepository, issues repositories.IssueRepository, projects repositories.ProjectRepository, logger *slog.Logger) PromptService {
	if logger == nil {
		logger = slog.Default()
	}
	return &promptService{
		settings: settings,
		issues:   issues,
		projects: projects,
		strip:    bluemonday.StrictPolicy(),
		logger:   logger,
	}
}

func (s *promptService) FillFromTemplate(ctx context.Context, issue *models.Issue) bool {
	if issue == nil {
		return false
	}
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Error("prompt fill: load settings", "error", err)
		return false
	}
	if cfg.PromptCustomFieldID == 0 || cfg.PromptTemplateCustomFieldID == 0 {
		return false
	}
	if strings.TrimSpace(issue.CustomValue(cfg.PromptCustomFieldID)) != "" {
		s.logger.Debug("prompt fill: prompt already present", "issue_id", issue.ID)
		return false
	}
	if issue.ParentID == nil || *issue.ParentID == 0 {
		return false
	}
	subject := strings.TrimSpace(issue.Subject)
	if subject == "" {
		return false
	}

	parent, err := s.issues.Get(ctx, *issue.ParentID)
	if err != nil {
		s.logger.Debug("prompt fill: cannot load parent", "parent_id", *issue.ParentID, "error", err)
		return false
	}
	template := parent.CustomValue(cfg.PromptTemplateCustomFieldID)
	if strings.TrimSpace(template) == "" {
		return false
	}

	project := issue.Project
	if project == nil {
		project, err = s.projects.FindByID(ctx, issue.ProjectID)
		if err != nil {
			s.logger.Error("prompt fill: load project", "project_id", issue.ProjectID, "error", err)
			return false
		}
	}

	filled := ExpandPromptTemplate(template, subject, project.Name, s.cleanDescription(project.Description))
	issue.SetCustomValue(cfg.PromptCustomFieldID, filled)
	s.logger.Debug("prompt fill: assigned prompt", "issue_id", issue.ID, "field_id", cfg.PromptCustomFieldID)
	return true
}

// ExpandPromptTemplate substitutes the issue and project placeholders.
func ExpandPromptTemplate(template, issueTitle, projectName, projectDescription string) string {
	r := strings.NewReplacer(
		PlaceholderIssueTitle, "`"+issueTitle+"`",
		PlaceholderProjectName, "`"+projectName+"`",
		PlaceholderProjectDescription, `"""`+projectDescription+`"""`,
		placeholderLegacyDescription, `"""`+projectDescription+`"""`,
	)
	return r.Replace(template)
}

// CleanDescription flattens rich-text HTML into plain text: line breaks and
// block ends become newlines, tags are dropped and runs of blank lines are
// collapsed.
func CleanDescription(raw string) string {
	return cleanDescription(bluemonday.StrictPolicy(), raw)
}

func (s *promptService) cleanDescription(raw string) string {
	return cleanDescription(s.strip, raw)
}

func cleanDescription(policy *bluemonday.Policy, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	text := lineBreakTags.ReplaceAllString(raw, "\n")
	text = blockEndTags.ReplaceAllString(text, "\n")
	text = html.UnescapeString(policy.Sanitize(text))
	text = extraNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
