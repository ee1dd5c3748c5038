package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"pkt.systems/bloggx/schema"
)

const appTitle = "bloggx"

// view builds the full frame for the current screen. Returns the lines to
// paint, the cursor position, and whether the cursor should be visible.
func (t *Terminal) view() ([]string, int, int, bool) {
	var body []string
	row, col := 1, 1
	showCursor := false

	switch t.current {
	case schema.ScreenLanding:
		body, row, col, showCursor = t.viewLanding()
	case schema.ScreenRegister:
		body, row, col, showCursor = t.viewRegister()
	case schema.ScreenPosts:
		body = t.viewPosts()
	case schema.ScreenPostForm:
		body, row, col, showCursor = t.viewPostForm()
	case schema.ScreenPostDelete:
		body = t.viewDeletePost()
	case schema.ScreenThemes:
		body = t.viewThemes()
	case schema.ScreenThemeForm:
		body, row, col, showCursor = t.viewThemeForm()
	case schema.ScreenThemeDelete:
		body = t.viewDeleteTheme()
	}

	lines := make([]string, 0, t.height)
	lines = append(lines, t.headerLine())
	lines = append(lines, "")
	lines = append(lines, body...)

	for len(lines) < t.height-1 {
		lines = append(lines, "")
	}
	if len(lines) > t.height-1 {
		lines = lines[:t.height-1]
	}
	lines = append(lines, t.statusLine())

	// Body starts after the two header rows.
	return lines, row + 2, col, showCursor
}

func (t *Terminal) headerLine() string {
	p := defaultPalette
	left := " " + appTitle + " "
	right := " " + string(t.current) + " "
	if t.sessions.Authenticated() {
		right = " " + t.sessions.User().Login + " · " + string(t.current) + " "
	}
	pad := t.width - visibleWidth(left) - visibleWidth(right)
	if pad < 0 {
		pad = 0
	}
	line := ansiBgRGB(p.HeaderBG) + ansiFgRGB(p.TitleFG) + ansiBold + left + ansiReset +
		ansiBgRGB(p.HeaderBG) + strings.Repeat(" ", pad) +
		ansiFgRGB(p.HeaderFG) + right + ansiReset
	return line
}

func (t *Terminal) statusLine() string {
	p := defaultPalette
	if t.loading() {
		return ansiFgRGB(p.SpinnerFG) + " " + string(spinnerFrames[t.spinnerIdx]) + " working" + ansiReset
	}
	if t.notice != "" {
		return ansiFgRGB(p.NoticeFG) + " " + truncate(t.notice, t.width-2) + ansiReset
	}
	return ansiFgRGB(p.MetaFG) + " " + truncate(t.footerHint(), t.width-2) + ansiReset
}

func (t *Terminal) footerHint() string {
	switch t.current {
	case schema.ScreenLanding:
		if t.sessions.Authenticated() {
			return "p posts · t themes · o log out · q quit"
		}
		return "enter log in · ctrl-r register · ctrl-d quit"
	case schema.ScreenRegister:
		return "tab next field · enter submit · esc back"
	case schema.ScreenPosts:
		return "↑↓ select · n new · e edit · d delete · t themes · r refresh · esc home · q quit"
	case schema.ScreenThemes:
		return "↑↓ select · n new · e edit · d delete · p posts · r refresh · esc home · q quit"
	case schema.ScreenPostForm, schema.ScreenThemeForm:
		return "tab next field · enter submit · esc cancel"
	case schema.ScreenPostDelete, schema.ScreenThemeDelete:
		return "y delete · n cancel"
	}
	return ""
}

func (t *Terminal) viewLanding() ([]string, int, int, bool) {
	p := defaultPalette
	if t.sessions.Authenticated() {
		user := t.sessions.User()
		lines := []string{
			" " + ansiBold + "welcome, " + displayName(user) + ansiReset,
			"",
			" " + ansiFgRGB(p.MetaFG) + "share your ideas with the world" + ansiReset,
			"",
			"   p  browse posts",
			"   t  manage themes",
			"   o  log out",
			"   q  quit",
		}
		return lines, 1, 1, false
	}
	lines := []string{
		" " + ansiBold + "log in" + ansiReset,
		"",
	}
	formLines, row, col := renderFormLines(t.loginForm, t.width)
	lines = append(lines, formLines...)
	return lines, 2 + row, col, true
}

func (t *Terminal) viewRegister() ([]string, int, int, bool) {
	lines := []string{
		" " + ansiBold + "create your account" + ansiReset,
		"",
	}
	formLines, row, col := renderFormLines(t.registerForm, t.width)
	lines = append(lines, formLines...)
	p := defaultPalette
	lines = append(lines, "", " "+ansiFgRGB(p.MetaFG)+"password must be at least 8 characters"+ansiReset)
	return lines, 2 + row, col, true
}

func (t *Terminal) viewPosts() []string {
	p := defaultPalette
	lines := []string{" " + ansiBold + "posts" + ansiReset, ""}
	switch t.postsState {
	case stateLoading:
		lines = append(lines, " "+ansiFgRGB(p.SpinnerFG)+string(spinnerFrames[t.spinnerIdx])+" loading posts"+ansiReset)
		return lines
	case stateNotLoaded:
		lines = append(lines, " "+ansiFgRGB(p.MetaFG)+"posts not loaded, press r to retry"+ansiReset)
		return lines
	}
	if len(t.posts) == 0 {
		lines = append(lines, " "+ansiFgRGB(p.MetaFG)+"no posts found"+ansiReset)
		return lines
	}
	for i, post := range t.posts {
		title := truncate(post.Title, t.width-4)
		meta := postMeta(post)
		if i == t.postCursor {
			lines = append(lines,
				ansiBgRGB(p.SelectedBG)+ansiFgRGB(p.SelectedFG)+padToWidth(" "+title, t.width)+ansiReset,
				ansiBgRGB(p.SelectedBG)+ansiFgRGB(p.SelectedFG)+padToWidth("   "+meta, t.width)+ansiReset)
		} else {
			lines = append(lines,
				" "+ansiBold+title+ansiReset,
				ansiFgRGB(p.MetaFG)+"   "+truncate(meta, t.width-4)+ansiReset)
		}
		lines = append(lines, "")
	}
	return lines
}

func displayName(user schema.User) string {
	if user.Name != "" {
		return user.Name
	}
	return user.Login
}

func postMeta(post schema.Post) string {
	parts := []string{}
	if post.Theme != nil && post.Theme.Description != "" {
		parts = append(parts, post.Theme.Description)
	}
	if post.Author != nil && post.Author.Name != "" {
		parts = append(parts, post.Author.Name)
	}
	if !post.CreatedAt.IsZero() {
		parts = append(parts, post.CreatedAt.Format("2006-01-02 15:04"))
	}
	return strings.Join(parts, " · ")
}

func (t *Terminal) viewPostForm() ([]string, int, int, bool) {
	p := defaultPalette
	title := "new post"
	if t.editPostID != 0 {
		title = "edit post"
	}
	lines := []string{" " + ansiBold + title + ansiReset, ""}
	formLines, row, col := renderFormLines(t.postForm, t.width)
	if t.pickerFocus {
		row, col = 0, 1
	}
	lines = append(lines, formLines...)
	lines = append(lines, "", t.themePickerLine())
	lines = append(lines, "")
	if t.postFormReady() {
		lines = append(lines, " "+ansiFgRGB(p.LabelFG)+"[ publish ]"+ansiReset)
	} else {
		lines = append(lines, " "+ansiFgRGB(p.DisabledFG)+"[ publish ] (pick a theme first)"+ansiReset)
	}
	return lines, 2 + row, col, !t.pickerFocus
}

func (t *Terminal) themePickerLine() string {
	p := defaultPalette
	label := " theme: "
	switch t.themesState {
	case stateLoading:
		return label + ansiFgRGB(p.MetaFG) + "loading themes…" + ansiReset
	case stateNotLoaded:
		return label + ansiFgRGB(p.MetaFG) + "themes not loaded" + ansiReset
	}
	if len(t.themes) == 0 {
		return label + ansiFgRGB(p.MetaFG) + "no themes found, create one first" + ansiReset
	}
	pick := t.themePick
	if pick < 0 || pick >= len(t.themes) {
		pick = 0
	}
	value := fmt.Sprintf("◀ %s ▶ (%d/%d)", t.themes[pick].Description, pick+1, len(t.themes))
	if t.pickerFocus {
		return label + ansiBgRGB(p.SelectedBG) + ansiFgRGB(p.SelectedFG) + " " + value + " " + ansiReset
	}
	return label + value
}

func (t *Terminal) viewDeletePost() []string {
	p := defaultPalette
	title := ""
	for _, post := range t.posts {
		if post.ID == t.deleteID {
			title = post.Title
			break
		}
	}
	return []string{
		" " + ansiBold + "delete post" + ansiReset,
		"",
		" are you sure you want to delete " + ansiBold + truncate(title, t.width-40) + ansiReset + "?",
		"",
		" " + ansiFgRGB(p.NoticeFG) + "this cannot be undone" + ansiReset,
	}
}

func (t *Terminal) viewThemes() []string {
	p := defaultPalette
	lines := []string{" " + ansiBold + "themes" + ansiReset, ""}
	switch t.themesState {
	case stateLoading:
		lines = append(lines, " "+ansiFgRGB(p.SpinnerFG)+string(spinnerFrames[t.spinnerIdx])+" loading themes"+ansiReset)
		return lines
	case stateNotLoaded:
		lines = append(lines, " "+ansiFgRGB(p.MetaFG)+"themes not loaded, press r to retry"+ansiReset)
		return lines
	}
	if len(t.themes) == 0 {
		lines = append(lines, " "+ansiFgRGB(p.MetaFG)+"no themes found"+ansiReset)
		return lines
	}
	for i, theme := range t.themes {
		label := fmt.Sprintf("%s  #%d", theme.Description, theme.ID)
		if i == t.themeCursor {
			lines = append(lines, ansiBgRGB(p.SelectedBG)+ansiFgRGB(p.SelectedFG)+padToWidth(" "+label, t.width)+ansiReset)
		} else {
			lines = append(lines, " "+truncate(label, t.width-2))
		}
	}
	return lines
}

func (t *Terminal) viewThemeForm() ([]string, int, int, bool) {
	p := defaultPalette
	title := "new theme"
	if t.editThemeID != 0 {
		title = "edit theme"
	}
	lines := []string{" " + ansiBold + title + ansiReset, ""}
	formLines, row, col := renderFormLines(t.themeForm, t.width)
	lines = append(lines, formLines...)
	lines = append(lines, "")
	if t.themeFormReady() {
		lines = append(lines, " "+ansiFgRGB(p.LabelFG)+"[ save ]"+ansiReset)
	} else {
		lines = append(lines, " "+ansiFgRGB(p.DisabledFG)+"[ save ] (description required)"+ansiReset)
	}
	return lines, 2 + row, col, true
}

func (t *Terminal) viewDeleteTheme() []string {
	p := defaultPalette
	description := ""
	for _, theme := range t.themes {
		if theme.ID == t.deleteID {
			description = theme.Description
			break
		}
	}
	return []string{
		" " + ansiBold + "delete theme" + ansiReset,
		"",
		" are you sure you want to delete " + ansiBold + truncate(description, t.width-40) + ansiReset + "?",
		"",
		" " + ansiFgRGB(p.NoticeFG) + "posts under this theme keep a dangling reference" + ansiReset,
	}
}

// renderFormLines paints every field on its own row and reports the cursor
// position for the focused one, relative to the first form row (1-based).
func renderFormLines(f *form, width int) ([]string, int, int) {
	p := defaultPalette
	lines := make([]string, 0, len(f.fields))
	cursorRow, cursorCol := 1, 1
	for i, fld := range f.fields {
		marker := "  "
		if i == f.focus {
			marker = "> "
		}
		value := fld.Value()
		if fld.masked {
			value = strings.Repeat("*", utf8.RuneCountInString(value))
		}
		prefix := marker + fld.label + ": "
		lines = append(lines, " "+ansiFgRGB(p.LabelFG)+marker+fld.label+ansiReset+": "+truncate(value, width-visibleWidth(prefix)-2))
		if i == f.focus {
			cursorRow = i + 1
			cursorCol = 1 + visibleWidth(prefix) + fld.editor.cursor + 1
		}
	}
	return lines, cursorRow, cursorCol
}

func visibleWidth(s string) int {
	width := 0
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			width++
		}
	}
	return width
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

func padToWidth(s string, width int) string {
	if pad := width - visibleWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
