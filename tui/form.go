package tui

// recordState tracks what a screen knows about its remote data. A record
// starts NotLoaded, turns Loading when a fetch is scheduled, and only
// reaches Loaded when a fetch result for the current generation lands.
// Every failure path returns the state to NotLoaded.
type recordState int

const (
	stateNotLoaded recordState = iota
	stateLoading
	stateLoaded
)

func (s recordState) String() string {
	switch s {
	case stateLoading:
		return "loading"
	case stateLoaded:
		return "loaded"
	default:
		return "not-loaded"
	}
}

type field struct {
	label  string
	masked bool
	editor lineEditor
}

func (f *field) Value() string {
	return f.editor.String()
}

// form is an ordered set of editable fields with one focused at a time.
type form struct {
	fields []*field
	focus  int
}

func newForm(fields ...*field) *form {
	return &form{fields: fields}
}

func textField(label string) *field {
	return &field{label: label}
}

func maskedField(label string) *field {
	return &field{label: label, masked: true}
}

func (f *form) Focused() *field {
	if f.focus < 0 || f.focus >= len(f.fields) {
		return nil
	}
	return f.fields[f.focus]
}

func (f *form) Next() {
	if len(f.fields) == 0 {
		return
	}
	f.focus = (f.focus + 1) % len(f.fields)
}

func (f *form) Prev() {
	if len(f.fields) == 0 {
		return
	}
	f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
}

func (f *form) AtLast() bool {
	return f.focus == len(f.fields)-1
}

func (f *form) Reset() {
	f.focus = 0
	for _, fld := range f.fields {
		fld.editor.Clear()
	}
}

// ClearMasked empties password-style fields only, keeping typed identity
// fields so a rejected submission does not force full re-entry.
func (f *form) ClearMasked() {
	for _, fld := range f.fields {
		if fld.masked {
			fld.editor.Clear()
		}
	}
}

// HandleKey routes an editing key to the focused field. Returns false for
// keys the form does not consume so the screen can interpret them.
func (f *form) HandleKey(k key) bool {
	fld := f.Focused()
	if fld == nil {
		return false
	}
	switch k.kind {
	case keyRune:
		fld.editor.InsertRune(k.r)
	case keyBackspace:
		fld.editor.Backspace()
	case keyDelete:
		fld.editor.Delete()
	case keyLeft:
		fld.editor.MoveLeft()
	case keyRight:
		fld.editor.MoveRight()
	case keyHome, keyCtrlA:
		fld.editor.MoveStart()
	case keyEnd, keyCtrlE:
		fld.editor.MoveEnd()
	case keyCtrlW:
		fld.editor.DeleteWordBackward()
	case keyCtrlU:
		fld.editor.KillLineStart()
	case keyTab, keyDown:
		f.Next()
	case keyShiftTab, keyUp:
		f.Prev()
	default:
		return false
	}
	return true
}
