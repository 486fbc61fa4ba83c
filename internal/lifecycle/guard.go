package lifecycle

import "sync"

// Control is a trigger that starts an asynchronous call.
type Control int

const (
	ControlGenerate Control = iota
	ControlSave
	ControlApply
)

func (c Control) String() string {
	switch c {
	case ControlGenerate:
		return "generate"
	case ControlSave:
		return "save"
	case ControlApply:
		return "apply"
	default:
		return "unknown"
	}
}

// acquire disables ctrl for the duration of one call. enter runs under the
// same lock so the precondition check and the state transition cannot race
// another dispatch; when it fails the control is left untouched. The returned
// release re-enables the control and re-renders; it is safe to call more than
// once and must be deferred by the caller.
func (c *Controller) acquire(op string, ctrl Control, enter func() error) (func(), error) {
	c.mu.Lock()
	if c.disabled[ctrl] {
		c.mu.Unlock()
		return nil, &Error{Kind: KindBusy, Op: op, Message: msgBusy}
	}
	if err := enter(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.disabled[ctrl] = true
	c.mu.Unlock()
	c.render()

	var once sync.Once
	release := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.disabled, ctrl)
			c.mu.Unlock()
			c.render()
		})
	}
	return release, nil
}

// Disabled reports whether ctrl is currently held by an in-flight call.
func (c *Controller) Disabled(ctrl Control) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disabled[ctrl]
}
