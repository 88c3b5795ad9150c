package plugin

// Action is a menu entry a plugin contributes to the host. A checkable
// action flips its checked state each time it is triggered.
type Action struct {
	Text      string
	checkable bool
	checked   bool
	triggered []func(checked bool)
}

// NewAction creates an unchecked, non-checkable action
func NewAction(text string) *Action {
	return &Action{Text: text}
}

// SetCheckable marks the action as a toggle
func (a *Action) SetCheckable(v bool) {
	a.checkable = v
	if !v {
		a.checked = false
	}
}

// IsCheckable reports whether the action is a toggle
func (a *Action) IsCheckable() bool {
	return a.checkable
}

// IsChecked reports the toggle state
func (a *Action) IsChecked() bool {
	return a.checked
}

// OnTriggered registers fn to run on every trigger
func (a *Action) OnTriggered(fn func(checked bool)) {
	a.triggered = append(a.triggered, fn)
}

// Trigger activates the action as if the user had picked it
func (a *Action) Trigger() {
	if a.checkable {
		a.checked = !a.checked
	}
	for _, fn := range a.triggered {
		fn(a.checked)
	}
}
