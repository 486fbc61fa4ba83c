package lifecycle

import "context"

// DraftID is assigned by the store when a draft is created. The controller never invents one.
type DraftID string

// Status mirrors the store-side draft status.
type Status string

const (
	StatusPending Status = "pending"
	StatusApplied Status = "applied"
)

// Draft is the single active draft held by a controller. IssueRef names the
// owning issue and never changes for a draft.
type Draft struct {
	ID         DraftID
	IssueRef   string
	IssueTitle string
	UserPrompt string
	Content    string
	Status     Status
}

// GenerateRequest is the body of a generation call.
type GenerateRequest struct {
	IssueTitle string `json:"issue_title"`
	UserPrompt string `json:"user_prompt"`
}

// GenerateResponse is the successful result of a generation call.
type GenerateResponse struct {
	Content   string
	ContentID DraftID
}

// Result is the outcome reported by the store for update and apply. A nil
// transport error does not imply success: Success must be checked.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Gateway turns a prompt into generated content and a newly persisted draft.
type Gateway interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}

// Store mutates persisted drafts.
type Store interface {
	Update(ctx context.Context, id DraftID, content string) (Result, error)
	Apply(ctx context.Context, id DraftID) (Result, error)
}

// NoticeKind distinguishes error notifications from informational ones.
type NoticeKind int

const (
	NoticeError NoticeKind = iota
	NoticeInfo
)

// Notice is a user-visible notification.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Host is the surrounding issue view the controller is bound to.
type Host interface {
	// Exists reports whether the anchor is present in the view.
	Exists(anchor string) bool
	// Value returns the current text of an anchor, false when it is absent.
	Value(anchor string) (string, bool)
	// Render paints the view model. It is called after every state change.
	Render(vm ViewModel)
	Notify(n Notice)
	// Reload asks the host to fully reload the issue view.
	Reload()
	// EditAffordance returns the host's own "begin editing issue" action.
	EditAffordance() (func(), bool)
}

// Actions is the dispatch surface a presentation binder attaches to.
type Actions interface {
	OnGenerate(ctx context.Context) error
	OnAgree(ctx context.Context) error
	OnRetry(ctx context.Context) error
	OnEdit(ctx context.Context) error
	OnSave(ctx context.Context, text string) error
}
