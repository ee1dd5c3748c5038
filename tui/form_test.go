package tui

import "testing"

func TestFormFocusCycles(t *testing.T) {
	f := newForm(textField("login"), maskedField("password"))
	f.HandleKey(key{kind: keyRune, r: 'a'})
	f.HandleKey(key{kind: keyTab})
	f.HandleKey(key{kind: keyRune, r: 'b'})
	if f.fields[0].Value() != "a" || f.fields[1].Value() != "b" {
		t.Fatalf("unexpected values %q %q", f.fields[0].Value(), f.fields[1].Value())
	}
	if !f.AtLast() {
		t.Fatal("expected focus on last field")
	}
	f.HandleKey(key{kind: keyTab})
	if f.focus != 0 {
		t.Fatalf("expected wraparound, got focus %d", f.focus)
	}
}

func TestFormClearMaskedKeepsText(t *testing.T) {
	f := newForm(textField("login"), maskedField("password"), maskedField("confirm"))
	f.fields[0].editor.SetString("root@root.com")
	f.fields[1].editor.SetString("abcdefgh")
	f.fields[2].editor.SetString("abcdefgh")
	f.ClearMasked()
	if f.fields[0].Value() != "root@root.com" {
		t.Fatal("text field must survive")
	}
	if f.fields[1].Value() != "" || f.fields[2].Value() != "" {
		t.Fatal("masked fields must clear")
	}
}

func TestLineEditorWordOps(t *testing.T) {
	var e lineEditor
	e.SetString("hello world")
	e.DeleteWordBackward()
	if got := e.String(); got != "hello " {
		t.Fatalf("unexpected buffer %q", got)
	}
	e.KillLineStart()
	if e.Len() != 0 || e.cursor != 0 {
		t.Fatalf("expected empty buffer, got %q", e.String())
	}
}
