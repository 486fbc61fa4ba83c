package repositories

import "errors"

var (
	ErrDraftNotFound   = errors.New("draft not found")
	ErrDraftApplied    = errors.New("draft already applied")
	ErrIssueNotFound   = errors.New("issue not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrUserNotFound    = errors.New("user not found")
)
