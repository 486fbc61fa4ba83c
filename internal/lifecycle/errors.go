package lifecycle

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced to the user.
type ErrorKind int

const (
	// KindValidation covers bad input caught before any network call.
	KindValidation ErrorKind = iota
	// KindTransport covers network failures, non-success statuses and malformed payloads.
	KindTransport
	// KindLogical is a successful response whose success flag is false.
	KindLogical
	// KindNotFound means a collaborator the controller depends on is missing from the host.
	KindNotFound
	// KindBusy means the control for the action is disabled because a call is in flight.
	KindBusy
	// KindTerminal means the draft was already applied.
	KindTerminal
	// KindState means the action is not exposed in the current state.
	KindState
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindLogical:
		return "logical"
	case KindNotFound:
		return "not-found"
	case KindBusy:
		return "busy"
	case KindTerminal:
		return "terminal"
	case KindState:
		return "state"
	default:
		return "unknown"
	}
}

// Error is returned by every controller operation that fails. Message is the
// text shown to the user.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a controller *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == k
}

// ResponseError carries the server-supplied message of a failed request.
// An empty Message means the server gave no explanation.
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

const (
	msgPromptFieldMissing = "Prompt custom field not found."
	msgPromptEmpty        = "Please enter a prompt."
	msgGenerateUnknown    = "Unknown error occurred."
	msgSaveUnknown        = "Failed to save content."
	msgApplyUnknown       = "Failed to apply content."
	msgRetryTargetMissing = `Could not find the main "Edit" button.`
	msgBusy               = "Another request is still in progress."
	msgApplied            = "This content has already been applied."
)
