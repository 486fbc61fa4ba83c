package lifecycle

// State is the position of the controller in the draft lifecycle.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateReviewing
	StateEditing
	StateSaving
	StateApplying
	// StateApplied is terminal: the host must reload the issue view.
	StateApplied
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateReviewing:
		return "reviewing"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	case StateApplying:
		return "applying"
	case StateApplied:
		return "applied"
	default:
		return "unknown"
	}
}

// event is a user or collaborator signal that moves the state machine.
type event int

const (
	evSubmit event = iota
	evGenerated
	evGenerateFailed
	evRetry
	evEdit
	evSave
	evSaved
	evSaveFailed
	evAgree
	evApplied
	evApplyFailed
)

var eventNames = map[event]string{
	evSubmit:         "submit",
	evGenerated:      "generated",
	evGenerateFailed: "generate-failed",
	evRetry:          "retry",
	evEdit:           "edit",
	evSave:           "save",
	evSaved:          "saved",
	evSaveFailed:     "save-failed",
	evAgree:          "agree",
	evApplied:        "applied",
	evApplyFailed:    "apply-failed",
}

func (e event) String() string { return eventNames[e] }

// transitions lists every legal edge. Submitting from Reviewing or Editing
// abandons the active draft; it stays pending in the store.
var transitions = map[State]map[event]State{
	StateIdle: {
		evSubmit: StateRequesting,
	},
	StateRequesting: {
		evGenerated:      StateReviewing,
		evGenerateFailed: StateIdle,
	},
	StateReviewing: {
		evSubmit: StateRequesting,
		evRetry:  StateIdle,
		evEdit:   StateEditing,
		evSave:   StateSaving,
		evAgree:  StateApplying,
	},
	StateEditing: {
		evSubmit: StateRequesting,
		evSave:   StateSaving,
	},
	StateSaving: {
		evSaved:      StateReviewing,
		evSaveFailed: StateEditing,
	},
	StateApplying: {
		evApplied:     StateApplied,
		evApplyFailed: StateReviewing,
	},
}

// next returns the state reached from s on e, or false when the edge does not exist.
func next(s State, e event) (State, bool) {
	to, ok := transitions[s][e]
	return to, ok
}
