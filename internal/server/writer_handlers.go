package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"aiwriter/internal/lifecycle"
	"aiwriter/internal/services"
)

// Anchors of the writer widget on the issue page.
const (
	ButtonID          = "ai-writer-generate-btn"
	ResultContainerID = "ai-writer-result"
	PageTitleSelector = "div.subject h3"
)

type generateResponse struct {
	Content   string `json:"content"`
	ContentID uint   `json:"content_id"`
}

type draftSummary struct {
	ContentID  uint      `json:"content_id"`
	Status     string    `json:"status"`
	UserPrompt string    `json:"user_prompt"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type updateRequest struct {
	Content *string `json:"content"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	issueID, ok := pathID(w, r, "issue_id")
	if !ok {
		return
	}
	var req lifecycle.GenerateRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body.", err.Error())
		return
	}

	draft, err := s.services.Drafts.Generate(r.Context(), userFrom(r.Context()), services.GenerateInput{
		IssueID:    issueID,
		IssueTitle: req.IssueTitle,
		UserPrompt: req.UserPrompt,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Content: draft.GeneratedContent, ContentID: draft.ID})
}

// handleListDrafts lists the drafts of an issue, newest first. It is read-only.
func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	issueID, ok := pathID(w, r, "issue_id")
	if !ok {
		return
	}
	drafts, err := s.services.Drafts.List(r.Context(), userFrom(r.Context()), issueID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]draftSummary, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, draftSummary{
			ContentID:  d.ID,
			Status:     d.Status.String(),
			UserPrompt: d.UserPrompt,
			Content:    d.GeneratedContent,
			CreatedAt:  d.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"contents": out})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	contentID, ok := pathID(w, r, "content_id")
	if !ok {
		return
	}
	var req updateRequest
	if err := decodeBody(w, r, &req); err != nil || req.Content == nil {
		writeJSON(w, http.StatusBadRequest, resultResponse{Success: false, Error: "Content is required."})
		return
	}
	_, err := s.services.Drafts.Update(r.Context(), userFrom(r.Context()), contentID, *req.Content)
	writeResult(w, err)
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	issueID, ok := pathID(w, r, "issue_id")
	if !ok {
		return
	}
	contentID, ok := pathID(w, r, "content_id")
	if !ok {
		return
	}
	user := userFrom(r.Context())
	draft, err := s.services.Drafts.Get(r.Context(), user, contentID)
	if err != nil {
		writeResult(w, err)
		return
	}
	if draft.IssueID != issueID {
		writeResult(w, services.ErrDraftNotFound)
		return
	}
	_, err = s.services.Drafts.Apply(r.Context(), user, contentID)
	writeResult(w, err)
}

// handleWriterConfig publishes the widget configuration for an issue page.
// Users who may not use the writer, and issues on other trackers, get 404.
func (s *Server) handleWriterConfig(w http.ResponseWriter, r *http.Request) {
	issueID, ok := pathID(w, r, "issue_id")
	if !ok {
		return
	}
	ctx := r.Context()
	user := userFrom(ctx)
	issue, err := s.services.Issues.Get(ctx, issueID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	available, err := s.services.Permissions.WriterAvailable(ctx, user, issue)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	settings, err := s.services.Settings.Get(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !available || settings.PromptCustomFieldID == 0 {
		WriteJSONError(w, http.StatusNotFound, "Not found.", "")
		return
	}
	writeJSON(w, http.StatusOK, WriterConfig(issueID, settings.PromptCustomFieldID, s.csrf.Token(user.ID)))
}

// WriterConfig builds the widget configuration for an issue.
func WriterConfig(issueID, promptFieldID uint, csrfToken string) lifecycle.Config {
	return lifecycle.Config{
		ButtonID:          ButtonID,
		ResultContainerID: ResultContainerID,
		PromptFieldID:     PromptFieldAnchor(promptFieldID),
		PageTitleSelector: PageTitleSelector,
		GenerateURL:       fmt.Sprintf("/issues/%d/ai_writer/generate", issueID),
		UpdateURLTemplate: "/ai_writer_contents/" + lifecycle.IDPlaceholder,
		ApplyURLTemplate:  fmt.Sprintf("/issues/%d/ai_writer/apply/%s", issueID, lifecycle.IDPlaceholder),
		CSRFToken:         csrfToken,
		IssueRef:          strconv.FormatUint(uint64(issueID), 10),
		Text:              lifecycle.DefaultText(),
	}
}

// PromptFieldAnchor names the prompt input for a custom field.
func PromptFieldAnchor(fieldID uint) string {
	return "issue_custom_field_values_" + strconv.FormatUint(uint64(fieldID), 10)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || n == 0 {
		WriteJSONError(w, http.StatusNotFound, "Not found.", "")
		return 0, false
	}
	return uint(n), true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
