// Package tui renders the blog client over any terminal-ish transport: a
// local TTY in raw mode or a remote SSH channel. One Terminal serves one
// session; all state mutations happen on the Run loop goroutine, remote
// calls run on short-lived fetch goroutines that report back through a
// result channel tagged with a generation counter.
package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"pkt.systems/bloggx/core"
	"pkt.systems/bloggx/internal/eventbus"
	"pkt.systems/bloggx/internal/guard"
	"pkt.systems/bloggx/internal/logx"
	"pkt.systems/bloggx/internal/session"
	"pkt.systems/bloggx/schema"
	"pkt.systems/pslog"
)

// Resize reports a new terminal geometry.
type Resize struct {
	Width  int
	Height int
}

// Config assembles a Terminal.
type Config struct {
	Input    io.Reader
	Output   io.Writer
	Service  core.Service
	Sessions *session.Store
	Events   <-chan eventbus.Event
	Width    int
	Height   int
}

type opKind int

const (
	opListPosts opKind = iota
	opListThemes
	opGetPost
	opGetTheme
	opLogin
	opRegister
	opSavePost
	opDeletePost
	opSaveTheme
	opDeleteTheme
)

// opResult carries the outcome of a remote call back to the loop. Results
// whose generation no longer matches the terminal's are discarded: a
// navigation that happened while the call was in flight has already
// invalidated them.
type opResult struct {
	gen    uint64
	kind   opKind
	label  string
	err    error
	posts  []schema.Post
	themes []schema.Theme
	post   schema.Post
	theme  schema.Theme
	user   schema.User
}

// Terminal drives one interactive session.
type Terminal struct {
	in       io.Reader
	screen   *screen
	service  core.Service
	sessions *session.Store
	events   <-chan eventbus.Event
	ctx      context.Context

	width  int
	height int

	current schema.ScreenName
	notice  string
	busy    bool
	dirty   bool

	gen     uint64
	results chan opResult

	spinnerIdx int

	postsState recordState
	posts      []schema.Post
	postCursor int

	themesState recordState
	themes      []schema.Theme
	themeCursor int

	loginForm    *form
	registerForm *form
	postForm     *form
	themeForm    *form

	themePick   int
	pickerFocus bool
	editPostID  int64
	editThemeID int64
	deleteID    int64
}

// New builds a Terminal for one session.
func New(cfg Config) *Terminal {
	t := &Terminal{
		in:           cfg.Input,
		screen:       newScreen(cfg.Output),
		service:      cfg.Service,
		sessions:     cfg.Sessions,
		events:       cfg.Events,
		current:      schema.ScreenLanding,
		results:      make(chan opResult, 8),
		loginForm:    newForm(textField("login"), maskedField("password")),
		registerForm: newForm(textField("name"), textField("login"), textField("photo url"), maskedField("password"), maskedField("confirm password")),
		postForm:     newForm(textField("title"), textField("text")),
		themeForm:    newForm(textField("description")),
	}
	t.SetSize(cfg.Width, cfg.Height)
	return t
}

func (t *Terminal) log() pslog.Logger {
	ctx := t.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return logx.WithScreen(ctx, t.sessions.Key(), t.current)
}

// SetSize clamps and records the terminal geometry.
func (t *Terminal) SetSize(width, height int) {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	t.width = width
	t.height = height
}

// Run drives the session until the input closes, the context is canceled,
// or the user quits.
func (t *Terminal) Run(ctx context.Context, winCh <-chan Resize) error {
	if ctx == nil {
		ctx = context.Background()
	}
	t.ctx = logx.ContextWithSession(ctx, t.sessions.Key())
	t.screen.EnterAltScreen()
	defer t.screen.ExitAltScreen()

	t.render()
	t.log().Info("tui session start", "width", t.width, "height", t.height)

	keys := make(chan key, 16)
	go readKeys(t.in, keys)

	spinnerTicker := time.NewTicker(250 * time.Millisecond)
	defer spinnerTicker.Stop()

	events := t.events

	for {
		select {
		case <-ctx.Done():
			return nil
		case k, ok := <-keys:
			if !ok {
				return nil
			}
			if t.handleKey(k) {
				t.log().Info("tui session end")
				return nil
			}
		case win, ok := <-winCh:
			if ok {
				t.SetSize(win.Width, win.Height)
				t.dirty = true
			}
		case ev, ok := <-events:
			if !ok {
				events = nil
				break
			}
			t.handleEvent(ev)
		case r := <-t.results:
			t.applyResult(r)
		case <-spinnerTicker.C:
			if t.loading() {
				t.spinnerIdx = (t.spinnerIdx + 1) % len(spinnerFrames)
				t.dirty = true
			}
		}

		if t.dirty {
			t.render()
			t.dirty = false
		}
	}
}

func (t *Terminal) loading() bool {
	return t.busy || t.postsState == stateLoading || t.themesState == stateLoading
}

func protectedScreen(name schema.ScreenName) bool {
	switch name {
	case schema.ScreenLanding, schema.ScreenRegister:
		return false
	}
	return true
}

// Navigate switches screens. Protected screens run the activation gate
// before any fetch is scheduled. Also the guard's redirect target.
func (t *Terminal) Navigate(name schema.ScreenName) {
	t.dirty = true
	if protectedScreen(name) && !guard.Check(t.ctx, t.sessions, t) {
		return
	}
	t.current = name
	t.pickerFocus = false
	switch name {
	case schema.ScreenLanding:
		t.loginForm.Reset()
	case schema.ScreenRegister:
		t.registerForm.Reset()
	case schema.ScreenPosts:
		t.fetchPosts(t.nextGen())
	case schema.ScreenThemes:
		t.fetchThemes(t.nextGen())
	case schema.ScreenPostForm:
		t.postForm.Reset()
		t.themePick = 0
		gen := t.nextGen()
		t.fetchThemes(gen)
		if t.editPostID != 0 {
			t.fetchPost(gen, t.editPostID)
		}
	case schema.ScreenThemeForm:
		t.themeForm.Reset()
		if t.editThemeID != 0 {
			t.fetchTheme(t.nextGen(), t.editThemeID)
		}
	}
	t.log().Debug("tui navigate", "screen", name)
}

// Notice surfaces a status line message.
func (t *Terminal) Notice(text string) {
	t.notice = text
	t.dirty = true
}

// nextGen invalidates every in-flight fetch. Bumped once per user action;
// fetches scheduled together share the generation so neither cancels the
// other.
func (t *Terminal) nextGen() uint64 {
	t.gen++
	return t.gen
}

func (t *Terminal) fetchPosts(gen uint64) {
	t.postsState = stateLoading
	go func() {
		resp, err := t.service.ListPosts(t.ctx, schema.ListPostsRequest{})
		t.results <- opResult{gen: gen, kind: opListPosts, label: "list posts", err: err, posts: resp.Posts}
	}()
}

func (t *Terminal) fetchThemes(gen uint64) {
	t.themesState = stateLoading
	go func() {
		resp, err := t.service.ListThemes(t.ctx, schema.ListThemesRequest{})
		t.results <- opResult{gen: gen, kind: opListThemes, label: "list themes", err: err, themes: resp.Themes}
	}()
}

func (t *Terminal) fetchPost(gen uint64, id int64) {
	t.postsState = stateLoading
	go func() {
		resp, err := t.service.GetPost(t.ctx, schema.GetPostRequest{ID: id})
		t.results <- opResult{gen: gen, kind: opGetPost, label: "load post", err: err, post: resp.Post}
	}()
}

func (t *Terminal) fetchTheme(gen uint64, id int64) {
	t.themesState = stateLoading
	go func() {
		resp, err := t.service.GetTheme(t.ctx, schema.GetThemeRequest{ID: id})
		t.results <- opResult{gen: gen, kind: opGetTheme, label: "load theme", err: err, theme: resp.Theme}
	}()
}

func (t *Terminal) applyResult(r opResult) {
	if r.gen != t.gen {
		t.log().Debug("tui stale result dropped", "label", r.label)
		return
	}
	t.dirty = true
	if r.err != nil {
		t.applyFailure(r)
		return
	}
	switch r.kind {
	case opListPosts:
		t.posts = r.posts
		t.postsState = stateLoaded
		if t.postCursor >= len(t.posts) {
			t.postCursor = len(t.posts) - 1
		}
		if t.postCursor < 0 {
			t.postCursor = 0
		}
	case opListThemes:
		t.themes = r.themes
		t.themesState = stateLoaded
		if t.themeCursor >= len(t.themes) {
			t.themeCursor = len(t.themes) - 1
		}
		if t.themeCursor < 0 {
			t.themeCursor = 0
		}
		if t.themePick >= len(t.themes) {
			t.themePick = 0
		}
		t.syncThemePick()
	case opGetPost:
		t.postsState = stateLoaded
		t.postForm.fields[0].editor.SetString(r.post.Title)
		t.postForm.fields[1].editor.SetString(r.post.Body)
		t.postForm.focus = 0
		if r.post.Theme != nil {
			t.editPostTheme(r.post.Theme.ID)
		}
	case opGetTheme:
		t.themesState = stateLoaded
		t.themeForm.fields[0].editor.SetString(r.theme.Description)
		t.themeForm.focus = 0
	case opLogin:
		t.busy = false
		t.current = schema.ScreenLanding
		t.loginForm.Reset()
		t.notice = "logged in as " + r.user.Login
	case opRegister:
		t.busy = false
		t.current = schema.ScreenLanding
		t.registerForm.Reset()
		t.loginForm.Reset()
		t.notice = "account created, log in to continue"
	case opSavePost:
		t.busy = false
		t.editPostID = 0
		t.notice = "post saved"
		t.Navigate(schema.ScreenPosts)
	case opDeletePost:
		t.busy = false
		t.deleteID = 0
		t.notice = "post deleted"
		t.Navigate(schema.ScreenPosts)
	case opSaveTheme:
		t.busy = false
		t.editThemeID = 0
		t.notice = "theme saved"
		t.Navigate(schema.ScreenThemes)
	case opDeleteTheme:
		t.busy = false
		t.deleteID = 0
		t.notice = "theme deleted"
		t.Navigate(schema.ScreenThemes)
	}
}

func (t *Terminal) applyFailure(r opResult) {
	t.busy = false
	switch r.kind {
	case opListPosts, opGetPost:
		t.postsState = stateNotLoaded
	case opListThemes, opGetTheme:
		t.themesState = stateNotLoaded
	}
	switch r.kind {
	case opLogin, opRegister:
		t.notice = authNotice(r.label, r.err)
		if r.kind == opRegister {
			t.registerForm.ClearMasked()
		} else {
			t.loginForm.ClearMasked()
		}
		return
	}
	notice := guard.Classify(t.ctx, t.sessions, r.label, r.err)
	if notice != "" {
		t.notice = notice
		return
	}
	// Forced logout. The session event also lands on the bus, but redirect
	// immediately so the protected screen never renders stale.
	if protectedScreen(t.current) && !t.sessions.Authenticated() {
		t.notice = "session expired, log in again"
		t.current = schema.ScreenLanding
		t.loginForm.Reset()
	}
}

func authNotice(op string, err error) string {
	switch {
	case errors.Is(err, schema.ErrInvalidCredentials):
		return "invalid login or password"
	case errors.Is(err, schema.ErrPasswordTooShort):
		return "password must be at least 8 characters"
	case errors.Is(err, schema.ErrPasswordMismatch):
		return "passwords do not match"
	case errors.Is(err, schema.ErrLoginRequired):
		return "login is required"
	case err != nil:
		return "failed to " + op
	}
	return ""
}

func (t *Terminal) handleEvent(ev eventbus.Event) {
	if ev.Type != eventbus.EventSession {
		return
	}
	t.dirty = true
	if !ev.Session.Authenticated && protectedScreen(t.current) {
		t.notice = "session expired, log in again"
		t.current = schema.ScreenLanding
		t.loginForm.Reset()
	}
}

// handleKey returns true when the session should end.
func (t *Terminal) handleKey(k key) bool {
	t.dirty = true
	switch k.kind {
	case keyCtrlC, keyCtrlD:
		return true
	}
	switch t.current {
	case schema.ScreenLanding:
		return t.handleLandingKey(k)
	case schema.ScreenRegister:
		t.handleRegisterKey(k)
	case schema.ScreenPosts:
		return t.handlePostsKey(k)
	case schema.ScreenPostForm:
		t.handlePostFormKey(k)
	case schema.ScreenPostDelete:
		t.handleDeleteKey(k, true)
	case schema.ScreenThemes:
		return t.handleThemesKey(k)
	case schema.ScreenThemeForm:
		t.handleThemeFormKey(k)
	case schema.ScreenThemeDelete:
		t.handleDeleteKey(k, false)
	}
	return false
}

func (t *Terminal) handleLandingKey(k key) bool {
	if t.sessions.Authenticated() {
		switch k.kind {
		case keyRune:
			switch k.r {
			case 'p':
				t.notice = ""
				t.Navigate(schema.ScreenPosts)
			case 't':
				t.notice = ""
				t.Navigate(schema.ScreenThemes)
			case 'o':
				t.notice = ""
				_, _ = t.service.Logout(t.ctx, schema.LogoutRequest{})
				t.notice = "logged out"
				t.loginForm.Reset()
			case 'q':
				return true
			}
		}
		return false
	}
	switch k.kind {
	case keyCtrlR:
		t.notice = ""
		t.Navigate(schema.ScreenRegister)
		return false
	case keyEnter:
		if t.loginForm.AtLast() {
			t.submitLogin()
		} else {
			t.loginForm.Next()
		}
		return false
	}
	t.loginForm.HandleKey(k)
	return false
}

func (t *Terminal) submitLogin() {
	if t.busy {
		return
	}
	t.notice = ""
	t.busy = true
	gen := t.nextGen()
	login := t.loginForm.fields[0].Value()
	password := t.loginForm.fields[1].Value()
	go func() {
		resp, err := t.service.Login(t.ctx, schema.LoginRequest{Login: login, Password: password})
		t.results <- opResult{gen: gen, kind: opLogin, label: "log in", err: err, user: resp.User}
	}()
}

func (t *Terminal) handleRegisterKey(k key) {
	switch k.kind {
	case keyEscape:
		t.notice = ""
		t.Navigate(schema.ScreenLanding)
		return
	case keyEnter:
		if t.registerForm.AtLast() {
			t.submitRegister()
		} else {
			t.registerForm.Next()
		}
		return
	}
	t.registerForm.HandleKey(k)
}

func (t *Terminal) submitRegister() {
	if t.busy {
		return
	}
	t.notice = ""
	t.busy = true
	gen := t.nextGen()
	req := schema.RegisterRequest{
		User: schema.User{
			Name:     t.registerForm.fields[0].Value(),
			Login:    t.registerForm.fields[1].Value(),
			Photo:    t.registerForm.fields[2].Value(),
			Password: t.registerForm.fields[3].Value(),
		},
		Confirm: t.registerForm.fields[4].Value(),
	}
	go func() {
		resp, err := t.service.Register(t.ctx, req)
		t.results <- opResult{gen: gen, kind: opRegister, label: "register", err: err, user: resp.User}
	}()
}

func (t *Terminal) handlePostsKey(k key) bool {
	switch k.kind {
	case keyUp:
		if t.postCursor > 0 {
			t.postCursor--
		}
	case keyDown:
		if t.postCursor < len(t.posts)-1 {
			t.postCursor++
		}
	case keyEscape:
		t.notice = ""
		t.Navigate(schema.ScreenLanding)
	case keyRune:
		switch k.r {
		case 'n':
			t.notice = ""
			t.editPostID = 0
			t.Navigate(schema.ScreenPostForm)
		case 'e':
			if post, ok := t.selectedPost(); ok {
				t.notice = ""
				t.editPostID = post.ID
				t.Navigate(schema.ScreenPostForm)
			}
		case 'd':
			if post, ok := t.selectedPost(); ok {
				t.notice = ""
				t.deleteID = post.ID
				t.Navigate(schema.ScreenPostDelete)
			}
		case 'r':
			t.notice = ""
			t.fetchPosts(t.nextGen())
		case 't':
			t.notice = ""
			t.Navigate(schema.ScreenThemes)
		case 'q':
			return true
		}
	}
	return false
}

func (t *Terminal) selectedPost() (schema.Post, bool) {
	if t.postsState != stateLoaded || t.postCursor < 0 || t.postCursor >= len(t.posts) {
		return schema.Post{}, false
	}
	return t.posts[t.postCursor], true
}

func (t *Terminal) selectedTheme() (schema.Theme, bool) {
	if t.themesState != stateLoaded || t.themeCursor < 0 || t.themeCursor >= len(t.themes) {
		return schema.Theme{}, false
	}
	return t.themes[t.themeCursor], true
}

func (t *Terminal) handlePostFormKey(k key) {
	if k.kind == keyEscape {
		t.notice = ""
		t.editPostID = 0
		t.Navigate(schema.ScreenPosts)
		return
	}
	if t.pickerFocus {
		switch k.kind {
		case keyLeft:
			if t.themePick > 0 {
				t.themePick--
			}
		case keyRight:
			if t.themePick < len(t.themes)-1 {
				t.themePick++
			}
		case keyTab, keyDown, keyEnter:
			if k.kind == keyEnter {
				t.submitPost()
				return
			}
			t.pickerFocus = false
			t.postForm.focus = 0
		case keyShiftTab, keyUp:
			t.pickerFocus = false
			t.postForm.focus = len(t.postForm.fields) - 1
		}
		return
	}
	switch k.kind {
	case keyEnter:
		if t.postForm.AtLast() {
			t.pickerFocus = true
		} else {
			t.postForm.Next()
		}
		return
	case keyTab, keyDown:
		if t.postForm.AtLast() {
			t.pickerFocus = true
			return
		}
	}
	t.postForm.HandleKey(k)
}

// postFormReady mirrors the submit gate: the button stays disabled until a
// theme with a non-empty description is selected and nothing is in flight.
func (t *Terminal) postFormReady() bool {
	if t.busy || t.themesState != stateLoaded {
		return false
	}
	if t.themePick < 0 || t.themePick >= len(t.themes) {
		return false
	}
	return strings.TrimSpace(t.themes[t.themePick].Description) != ""
}

func (t *Terminal) submitPost() {
	if !t.postFormReady() {
		t.notice = "pick a theme before publishing"
		return
	}
	title := strings.TrimSpace(t.postForm.fields[0].Value())
	body := strings.TrimSpace(t.postForm.fields[1].Value())
	if title == "" || body == "" {
		t.notice = "title and text are required"
		return
	}
	t.notice = ""
	t.busy = true
	gen := t.nextGen()
	theme := t.themes[t.themePick]
	post := schema.Post{
		ID:    t.editPostID,
		Title: title,
		Body:  body,
		Theme: &theme,
	}
	label := "create post"
	update := t.editPostID != 0
	if update {
		label = "update post"
	}
	go func() {
		var err error
		if update {
			_, err = t.service.UpdatePost(t.ctx, schema.UpdatePostRequest{Post: post})
		} else {
			_, err = t.service.CreatePost(t.ctx, schema.CreatePostRequest{Post: post})
		}
		t.results <- opResult{gen: gen, kind: opSavePost, label: label, err: err}
	}()
}

func (t *Terminal) handleThemesKey(k key) bool {
	switch k.kind {
	case keyUp:
		if t.themeCursor > 0 {
			t.themeCursor--
		}
	case keyDown:
		if t.themeCursor < len(t.themes)-1 {
			t.themeCursor++
		}
	case keyEscape:
		t.notice = ""
		t.Navigate(schema.ScreenLanding)
	case keyRune:
		switch k.r {
		case 'n':
			t.notice = ""
			t.editThemeID = 0
			t.Navigate(schema.ScreenThemeForm)
		case 'e':
			if theme, ok := t.selectedTheme(); ok {
				t.notice = ""
				t.editThemeID = theme.ID
				t.Navigate(schema.ScreenThemeForm)
			}
		case 'd':
			if theme, ok := t.selectedTheme(); ok {
				t.notice = ""
				t.deleteID = theme.ID
				t.Navigate(schema.ScreenThemeDelete)
			}
		case 'r':
			t.notice = ""
			t.fetchThemes(t.nextGen())
		case 'p':
			t.notice = ""
			t.Navigate(schema.ScreenPosts)
		case 'q':
			return true
		}
	}
	return false
}

func (t *Terminal) handleThemeFormKey(k key) {
	switch k.kind {
	case keyEscape:
		t.notice = ""
		t.editThemeID = 0
		t.Navigate(schema.ScreenThemes)
		return
	case keyEnter:
		t.submitTheme()
		return
	}
	t.themeForm.HandleKey(k)
}

// themeFormReady gates the theme submit on a non-empty description.
func (t *Terminal) themeFormReady() bool {
	if t.busy {
		return false
	}
	return strings.TrimSpace(t.themeForm.fields[0].Value()) != ""
}

func (t *Terminal) submitTheme() {
	if !t.themeFormReady() {
		t.notice = "description is required"
		return
	}
	t.notice = ""
	t.busy = true
	gen := t.nextGen()
	theme := schema.Theme{
		ID:          t.editThemeID,
		Description: strings.TrimSpace(t.themeForm.fields[0].Value()),
	}
	label := "create theme"
	update := t.editThemeID != 0
	if update {
		label = "update theme"
	}
	go func() {
		var err error
		if update {
			_, err = t.service.UpdateTheme(t.ctx, schema.UpdateThemeRequest{Theme: theme})
		} else {
			_, err = t.service.CreateTheme(t.ctx, schema.CreateThemeRequest{Theme: theme})
		}
		t.results <- opResult{gen: gen, kind: opSaveTheme, label: label, err: err}
	}()
}

func (t *Terminal) handleDeleteKey(k key, post bool) {
	back := schema.ScreenThemes
	if post {
		back = schema.ScreenPosts
	}
	switch k.kind {
	case keyEscape:
		t.deleteID = 0
		t.Navigate(back)
		return
	case keyRune:
		switch k.r {
		case 'y':
			t.submitDelete(post)
		case 'n':
			t.deleteID = 0
			t.Navigate(back)
		}
	}
}

func (t *Terminal) submitDelete(post bool) {
	if t.busy || t.deleteID == 0 {
		return
	}
	t.notice = ""
	t.busy = true
	gen := t.nextGen()
	id := t.deleteID
	go func() {
		if post {
			_, err := t.service.DeletePost(t.ctx, schema.DeletePostRequest{ID: id})
			t.results <- opResult{gen: gen, kind: opDeletePost, label: "delete post", err: err}
			return
		}
		_, err := t.service.DeleteTheme(t.ctx, schema.DeleteThemeRequest{ID: id})
		t.results <- opResult{gen: gen, kind: opDeleteTheme, label: "delete theme", err: err}
	}()
}

func (t *Terminal) editPostTheme(themeID int64) {
	for i, theme := range t.themes {
		if theme.ID == themeID {
			t.themePick = i
			return
		}
	}
}

func (t *Terminal) syncThemePick() {
	if t.current != schema.ScreenPostForm || t.editPostID == 0 {
		return
	}
	for _, post := range t.posts {
		if post.ID == t.editPostID && post.Theme != nil {
			t.editPostTheme(post.Theme.ID)
			return
		}
	}
}

func (t *Terminal) render() {
	lines, row, col, showCursor := t.view()
	if err := t.screen.Render(lines, row, col, showCursor); err != nil {
		t.log().Warn("tui render failed", "err", err)
	}
}
