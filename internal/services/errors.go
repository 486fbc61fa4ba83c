package services

import "errors"

// UserMessage returns the text shown to a user for a service error.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPromptRequired):
		return "Prompt is required."
	case errors.Is(err, ErrForbidden):
		return "You are not allowed to use the AI writer on this project."
	case errors.Is(err, ErrDraftNotFound):
		return "Content not found."
	case errors.Is(err, ErrDraftApplied):
		return "Content has already been applied."
	case errors.Is(err, ErrIssueNotFound):
		return "Issue not found."
	case errors.Is(err, ErrEmptyCompletion):
		return "The model returned no content."
	case errors.Is(err, ErrAPIKeyNotFound):
		return "No API key is configured for the selected model."
	default:
		return err.Error()
	}
}
