package server

import (
	"net/http"
	"strconv"
	"time"

	"aiwriter/internal/models"
	"aiwriter/internal/services"
)

type issueResponse struct {
	ID           uint              `json:"id"`
	ProjectID    uint              `json:"project_id"`
	ProjectName  string            `json:"project_name,omitempty"`
	TrackerID    uint              `json:"tracker_id"`
	ParentID     *uint             `json:"parent_id,omitempty"`
	Subject      string            `json:"subject"`
	Description  string            `json:"description"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
	UpdatedAt    time.Time         `json:"updated_on"`
}

func toIssueResponse(issue *models.Issue) issueResponse {
	out := issueResponse{
		ID:          issue.ID,
		ProjectID:   issue.ProjectID,
		TrackerID:   issue.TrackerID,
		ParentID:    issue.ParentID,
		Subject:     issue.Subject,
		Description: issue.Description,
		UpdatedAt:   issue.UpdatedAt,
	}
	if issue.Project != nil {
		out.ProjectName = issue.Project.Name
	}
	if len(issue.CustomValues) > 0 {
		out.CustomFields = make(map[string]string, len(issue.CustomValues))
		for _, cv := range issue.CustomValues {
			out.CustomFields[strconv.FormatUint(uint64(cv.CustomFieldID), 10)] = cv.Value
		}
	}
	return out
}

func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	issueID, ok := pathID(w, r, "issue_id")
	if !ok {
		return
	}
	ctx := r.Context()
	issue, err := s.services.Issues.Get(ctx, issueID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	allowed, err := s.services.Permissions.Allowed(ctx, userFrom(ctx), models.PermissionViewIssues, issue.ProjectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !allowed {
		// do not reveal issues the user cannot see
		WriteJSONError(w, http.StatusNotFound, "Not found.", "")
		return
	}
	writeJSON(w, http.StatusOK, toIssueResponse(issue))
}

func (s *Server) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "project_id")
	if !ok {
		return
	}
	ctx := r.Context()
	user := userFrom(ctx)
	allowed, err := s.services.Permissions.Allowed(ctx, user, models.PermissionAddIssues, projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !allowed {
		WriteJSONError(w, http.StatusForbidden, "You are not allowed to add issues to this project.", "")
		return
	}

	var in services.IssueInput
	if err := decodeBody(w, r, &in); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body.", err.Error())
		return
	}
	in.ProjectID = projectID
	issue, err := s.services.Issues.Create(ctx, user, in)
	if err != nil {
		if status := statusFor(err); status != http.StatusInternalServerError {
			writeServiceError(w, err)
			return
		}
		WriteJSONError(w, http.StatusUnprocessableEntity, err.Error(), "")
		return
	}
	writeJSON(w, http.StatusCreated, toIssueResponse(issue))
}

// handleUpdateIssue edits an issue. Saving runs the prompt template fill, so
// setting a parent on an issue with a blank prompt fills it in.
func (s *Server) handleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	issueID, ok := pathID(w, r, "issue_id")
	if !ok {
		return
	}
	ctx := r.Context()
	issue, err := s.services.Issues.Get(ctx, issueID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	user := userFrom(ctx)
	visible, err := s.services.Permissions.Allowed(ctx, user, models.PermissionViewIssues, issue.ProjectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !visible {
		WriteJSONError(w, http.StatusNotFound, "Not found.", "")
		return
	}
	allowed, err := s.services.Permissions.Allowed(ctx, user, models.PermissionEditIssues, issue.ProjectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !allowed {
		WriteJSONError(w, http.StatusForbidden, "You are not allowed to edit this issue.", "")
		return
	}

	var changes services.IssueChanges
	if err := decodeBody(w, r, &changes); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body.", err.Error())
		return
	}
	updated, err := s.services.Issues.Update(ctx, issueID, changes)
	if err != nil {
		if status := statusFor(err); status != http.StatusInternalServerError {
			writeServiceError(w, err)
			return
		}
		WriteJSONError(w, http.StatusUnprocessableEntity, err.Error(), "")
		return
	}
	writeJSON(w, http.StatusOK, toIssueResponse(updated))
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	if u := userFrom(r.Context()); u == nil || !u.Admin {
		WriteJSONError(w, http.StatusForbidden, "Administrator access required.", "")
		return
	}
	settings, err := s.services.Settings.Get(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsBody(settings))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	if u := userFrom(r.Context()); u == nil || !u.Admin {
		WriteJSONError(w, http.StatusForbidden, "Administrator access required.", "")
		return
	}
	var in services.SettingsInput
	if err := decodeBody(w, r, &in); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body.", err.Error())
		return
	}
	settings, err := s.services.Settings.Update(r.Context(), in)
	if err != nil {
		WriteJSONError(w, http.StatusUnprocessableEntity, err.Error(), "")
		return
	}
	writeJSON(w, http.StatusOK, settingsBody(settings))
}

func settingsBody(st *models.Settings) services.SettingsInput {
	return services.SettingsInput{
		TrackerID:                   st.TrackerID,
		PromptCustomFieldID:         st.PromptCustomFieldID,
		PromptTemplateCustomFieldID: st.PromptTemplateCustomFieldID,
		SystemPrompt:                st.SystemPrompt,
		ModelKey:                    st.ModelKey,
	}
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	groups, err := s.services.Models.ListModelGroups()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}
