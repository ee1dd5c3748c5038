package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"pkt.systems/bloggx/internal/eventbus"
	"pkt.systems/bloggx/internal/guard"
	"pkt.systems/bloggx/internal/session"
	"pkt.systems/bloggx/schema"
)

type stubService struct {
	loginFn       func(context.Context, schema.LoginRequest) (schema.LoginResponse, error)
	logoutFn      func(context.Context, schema.LogoutRequest) (schema.LogoutResponse, error)
	registerFn    func(context.Context, schema.RegisterRequest) (schema.RegisterResponse, error)
	listPostsFn   func(context.Context, schema.ListPostsRequest) (schema.ListPostsResponse, error)
	getPostFn     func(context.Context, schema.GetPostRequest) (schema.GetPostResponse, error)
	createPostFn  func(context.Context, schema.CreatePostRequest) (schema.CreatePostResponse, error)
	updatePostFn  func(context.Context, schema.UpdatePostRequest) (schema.UpdatePostResponse, error)
	deletePostFn  func(context.Context, schema.DeletePostRequest) (schema.DeletePostResponse, error)
	listThemesFn  func(context.Context, schema.ListThemesRequest) (schema.ListThemesResponse, error)
	getThemeFn    func(context.Context, schema.GetThemeRequest) (schema.GetThemeResponse, error)
	createThemeFn func(context.Context, schema.CreateThemeRequest) (schema.CreateThemeResponse, error)
	updateThemeFn func(context.Context, schema.UpdateThemeRequest) (schema.UpdateThemeResponse, error)
	deleteThemeFn func(context.Context, schema.DeleteThemeRequest) (schema.DeleteThemeResponse, error)
}

func (s *stubService) Login(ctx context.Context, req schema.LoginRequest) (schema.LoginResponse, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, req)
	}
	return schema.LoginResponse{}, errors.New("unexpected Login")
}

func (s *stubService) Logout(ctx context.Context, req schema.LogoutRequest) (schema.LogoutResponse, error) {
	if s.logoutFn != nil {
		return s.logoutFn(ctx, req)
	}
	return schema.LogoutResponse{}, nil
}

func (s *stubService) Register(ctx context.Context, req schema.RegisterRequest) (schema.RegisterResponse, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, req)
	}
	return schema.RegisterResponse{}, errors.New("unexpected Register")
}

func (s *stubService) ListPosts(ctx context.Context, req schema.ListPostsRequest) (schema.ListPostsResponse, error) {
	if s.listPostsFn != nil {
		return s.listPostsFn(ctx, req)
	}
	return schema.ListPostsResponse{}, errors.New("unexpected ListPosts")
}

func (s *stubService) GetPost(ctx context.Context, req schema.GetPostRequest) (schema.GetPostResponse, error) {
	if s.getPostFn != nil {
		return s.getPostFn(ctx, req)
	}
	return schema.GetPostResponse{}, errors.New("unexpected GetPost")
}

func (s *stubService) CreatePost(ctx context.Context, req schema.CreatePostRequest) (schema.CreatePostResponse, error) {
	if s.createPostFn != nil {
		return s.createPostFn(ctx, req)
	}
	return schema.CreatePostResponse{}, errors.New("unexpected CreatePost")
}

func (s *stubService) UpdatePost(ctx context.Context, req schema.UpdatePostRequest) (schema.UpdatePostResponse, error) {
	if s.updatePostFn != nil {
		return s.updatePostFn(ctx, req)
	}
	return schema.UpdatePostResponse{}, errors.New("unexpected UpdatePost")
}

func (s *stubService) DeletePost(ctx context.Context, req schema.DeletePostRequest) (schema.DeletePostResponse, error) {
	if s.deletePostFn != nil {
		return s.deletePostFn(ctx, req)
	}
	return schema.DeletePostResponse{}, errors.New("unexpected DeletePost")
}

func (s *stubService) ListThemes(ctx context.Context, req schema.ListThemesRequest) (schema.ListThemesResponse, error) {
	if s.listThemesFn != nil {
		return s.listThemesFn(ctx, req)
	}
	return schema.ListThemesResponse{}, errors.New("unexpected ListThemes")
}

func (s *stubService) GetTheme(ctx context.Context, req schema.GetThemeRequest) (schema.GetThemeResponse, error) {
	if s.getThemeFn != nil {
		return s.getThemeFn(ctx, req)
	}
	return schema.GetThemeResponse{}, errors.New("unexpected GetTheme")
}

func (s *stubService) CreateTheme(ctx context.Context, req schema.CreateThemeRequest) (schema.CreateThemeResponse, error) {
	if s.createThemeFn != nil {
		return s.createThemeFn(ctx, req)
	}
	return schema.CreateThemeResponse{}, errors.New("unexpected CreateTheme")
}

func (s *stubService) UpdateTheme(ctx context.Context, req schema.UpdateThemeRequest) (schema.UpdateThemeResponse, error) {
	if s.updateThemeFn != nil {
		return s.updateThemeFn(ctx, req)
	}
	return schema.UpdateThemeResponse{}, errors.New("unexpected UpdateTheme")
}

func (s *stubService) DeleteTheme(ctx context.Context, req schema.DeleteThemeRequest) (schema.DeleteThemeResponse, error) {
	if s.deleteThemeFn != nil {
		return s.deleteThemeFn(ctx, req)
	}
	return schema.DeleteThemeResponse{}, errors.New("unexpected DeleteTheme")
}

func newTestTerminal(t *testing.T, svc *stubService, authenticated bool) (*Terminal, *session.Store) {
	t.Helper()
	store := session.NewStore("term-test", nil, nil)
	if authenticated {
		if err := store.Login(schema.User{ID: 1, Name: "Root", Login: "root@root.com"}, "tok-abc"); err != nil {
			t.Fatalf("seed login: %v", err)
		}
	}
	term := New(Config{
		Input:    strings.NewReader(""),
		Output:   io.Discard,
		Service:  svc,
		Sessions: store,
		Width:    80,
		Height:   24,
	})
	term.ctx = context.Background()
	return term, store
}

func awaitResult(t *testing.T, term *Terminal) opResult {
	t.Helper()
	select {
	case r := <-term.results:
		return r
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for result")
		return opResult{}
	}
}

func TestNavigateProtectedScreenRequiresLogin(t *testing.T) {
	calls := 0
	svc := &stubService{
		listPostsFn: func(context.Context, schema.ListPostsRequest) (schema.ListPostsResponse, error) {
			calls++
			return schema.ListPostsResponse{}, nil
		},
	}
	term, _ := newTestTerminal(t, svc, false)
	term.Navigate(schema.ScreenPosts)
	if term.current != schema.ScreenLanding {
		t.Fatalf("expected landing redirect, got %q", term.current)
	}
	if term.notice != guard.LoginNotice {
		t.Fatalf("expected login notice, got %q", term.notice)
	}
	if calls != 0 {
		t.Fatalf("expected no fetch before login, got %d", calls)
	}
}

func TestNavigatePostsLoadsList(t *testing.T) {
	svc := &stubService{
		listPostsFn: func(context.Context, schema.ListPostsRequest) (schema.ListPostsResponse, error) {
			return schema.ListPostsResponse{Posts: []schema.Post{{ID: 1, Title: "hello"}}}, nil
		},
	}
	term, _ := newTestTerminal(t, svc, true)
	term.Navigate(schema.ScreenPosts)
	if term.postsState != stateLoading {
		t.Fatalf("expected loading state, got %v", term.postsState)
	}
	term.applyResult(awaitResult(t, term))
	if term.postsState != stateLoaded {
		t.Fatalf("expected loaded state, got %v", term.postsState)
	}
	if len(term.posts) != 1 || term.posts[0].Title != "hello" {
		t.Fatalf("unexpected posts %+v", term.posts)
	}
}

func TestStaleFetchResultDropped(t *testing.T) {
	term, _ := newTestTerminal(t, &stubService{}, true)
	term.gen = 2
	term.postsState = stateLoading
	term.applyResult(opResult{gen: 1, kind: opListPosts, posts: []schema.Post{{ID: 9}}})
	if term.postsState != stateLoading {
		t.Fatalf("stale result must not change state, got %v", term.postsState)
	}
	if len(term.posts) != 0 {
		t.Fatalf("stale result must not populate posts, got %+v", term.posts)
	}
}

func TestFetchFailureClearsLoading(t *testing.T) {
	term, store := newTestTerminal(t, &stubService{}, true)
	term.current = schema.ScreenPosts
	term.postsState = stateLoading
	term.gen = 1
	term.applyResult(opResult{gen: 1, kind: opListPosts, label: "list posts", err: errors.New("dial refused")})
	if term.postsState != stateNotLoaded {
		t.Fatalf("failure must clear loading, got %v", term.postsState)
	}
	if term.notice != "failed to list posts" {
		t.Fatalf("unexpected notice %q", term.notice)
	}
	if !store.Authenticated() {
		t.Fatal("non-auth failure must not log out")
	}
}

func TestExpiredSessionRedirectsToLanding(t *testing.T) {
	term, store := newTestTerminal(t, &stubService{}, true)
	term.current = schema.ScreenPosts
	term.postsState = stateLoading
	term.gen = 1
	err := fmt.Errorf("list posts: %w", schema.ErrSessionExpired)
	term.applyResult(opResult{gen: 1, kind: opListPosts, label: "list posts", err: err})
	if store.Authenticated() {
		t.Fatal("expected forced logout")
	}
	if term.current != schema.ScreenLanding {
		t.Fatalf("expected landing redirect, got %q", term.current)
	}
	if !strings.Contains(term.notice, "session expired") {
		t.Fatalf("unexpected notice %q", term.notice)
	}
}

func TestSessionEventRedirects(t *testing.T) {
	term, store := newTestTerminal(t, &stubService{}, true)
	store.Logout()
	term.current = schema.ScreenThemes
	term.handleEvent(eventbus.Event{
		Type:    eventbus.EventSession,
		Session: schema.SessionEvent{Key: "term-test", Authenticated: false},
	})
	if term.current != schema.ScreenLanding {
		t.Fatalf("expected landing redirect, got %q", term.current)
	}
}

func TestThemeFormSubmitDisabledUntilDescription(t *testing.T) {
	term, _ := newTestTerminal(t, &stubService{}, true)
	term.current = schema.ScreenThemeForm
	if term.themeFormReady() {
		t.Fatal("empty description must disable submit")
	}
	term.submitTheme()
	if term.busy {
		t.Fatal("disabled submit must not start a request")
	}
	if term.notice != "description is required" {
		t.Fatalf("unexpected notice %q", term.notice)
	}
	term.themeForm.fields[0].editor.SetString("golang")
	if !term.themeFormReady() {
		t.Fatal("non-empty description must enable submit")
	}
}

func TestThemeFormSubmitCreates(t *testing.T) {
	var got schema.Theme
	svc := &stubService{
		createThemeFn: func(_ context.Context, req schema.CreateThemeRequest) (schema.CreateThemeResponse, error) {
			got = req.Theme
			return schema.CreateThemeResponse{Theme: req.Theme}, nil
		},
		listThemesFn: func(context.Context, schema.ListThemesRequest) (schema.ListThemesResponse, error) {
			return schema.ListThemesResponse{}, nil
		},
	}
	term, _ := newTestTerminal(t, svc, true)
	term.current = schema.ScreenThemeForm
	term.themeForm.fields[0].editor.SetString("  golang  ")
	term.submitTheme()
	if !term.busy {
		t.Fatal("expected submit in flight")
	}
	term.applyResult(awaitResult(t, term))
	if got.Description != "golang" {
		t.Fatalf("expected trimmed description, got %q", got.Description)
	}
	if term.current != schema.ScreenThemes {
		t.Fatalf("expected themes screen after save, got %q", term.current)
	}
	if term.notice != "theme saved" {
		t.Fatalf("unexpected notice %q", term.notice)
	}
}

func TestPostFormReadyRequiresLoadedTheme(t *testing.T) {
	term, _ := newTestTerminal(t, &stubService{}, true)
	term.current = schema.ScreenPostForm
	term.themesState = stateLoading
	if term.postFormReady() {
		t.Fatal("submit must stay disabled while themes load")
	}
	term.themesState = stateLoaded
	term.themes = []schema.Theme{{ID: 1, Description: ""}}
	term.themePick = 0
	if term.postFormReady() {
		t.Fatal("submit must stay disabled for a blank theme description")
	}
	term.themes[0].Description = "golang"
	if !term.postFormReady() {
		t.Fatal("submit must enable once a described theme is selected")
	}
}

func TestPostFormSubmitUpdatesWhenEditing(t *testing.T) {
	updated := false
	svc := &stubService{
		updatePostFn: func(_ context.Context, req schema.UpdatePostRequest) (schema.UpdatePostResponse, error) {
			updated = true
			if req.Post.ID != 5 {
				t.Errorf("expected id 5, got %d", req.Post.ID)
			}
			return schema.UpdatePostResponse{Post: req.Post}, nil
		},
		listPostsFn: func(context.Context, schema.ListPostsRequest) (schema.ListPostsResponse, error) {
			return schema.ListPostsResponse{}, nil
		},
	}
	term, _ := newTestTerminal(t, svc, true)
	term.current = schema.ScreenPostForm
	term.editPostID = 5
	term.themesState = stateLoaded
	term.themes = []schema.Theme{{ID: 1, Description: "golang"}}
	term.postForm.fields[0].editor.SetString("title")
	term.postForm.fields[1].editor.SetString("text")
	term.submitPost()
	term.applyResult(awaitResult(t, term))
	if !updated {
		t.Fatal("expected update call")
	}
	if term.editPostID != 0 {
		t.Fatal("edit id must reset after save")
	}
}

func TestRegisterValidationClearsPasswordFields(t *testing.T) {
	term, _ := newTestTerminal(t, &stubService{}, false)
	term.current = schema.ScreenRegister
	term.registerForm.fields[1].editor.SetString("new@root.com")
	term.registerForm.fields[3].editor.SetString("abcdefgh")
	term.registerForm.fields[4].editor.SetString("different")
	term.gen = 1
	term.applyResult(opResult{gen: 1, kind: opRegister, label: "register", err: schema.ErrPasswordMismatch})
	if term.registerForm.fields[3].Value() != "" || term.registerForm.fields[4].Value() != "" {
		t.Fatal("password fields must clear on validation failure")
	}
	if term.registerForm.fields[1].Value() != "new@root.com" {
		t.Fatal("login field must survive validation failure")
	}
	if term.notice != "passwords do not match" {
		t.Fatalf("unexpected notice %q", term.notice)
	}
}

func TestAuthFailureNoticeNamesOperation(t *testing.T) {
	term, _ := newTestTerminal(t, &stubService{}, false)
	term.gen = 1
	term.applyResult(opResult{gen: 1, kind: opLogin, label: "log in", err: errors.New("dial refused")})
	if term.notice != "failed to log in" {
		t.Fatalf("unexpected notice %q", term.notice)
	}
	term.applyResult(opResult{gen: 1, kind: opRegister, label: "register", err: errors.New("dial refused")})
	if term.notice != "failed to register" {
		t.Fatalf("unexpected notice %q", term.notice)
	}
}

func TestLoginSuccessReturnsHome(t *testing.T) {
	svc := &stubService{
		loginFn: func(_ context.Context, req schema.LoginRequest) (schema.LoginResponse, error) {
			return schema.LoginResponse{User: schema.User{ID: 1, Login: req.Login}}, nil
		},
	}
	term, _ := newTestTerminal(t, svc, false)
	term.loginForm.fields[0].editor.SetString("root@root.com")
	term.loginForm.fields[1].editor.SetString("abcdefgh")
	term.submitLogin()
	term.applyResult(awaitResult(t, term))
	if term.current != schema.ScreenLanding {
		t.Fatalf("expected landing, got %q", term.current)
	}
	if term.notice != "logged in as root@root.com" {
		t.Fatalf("unexpected notice %q", term.notice)
	}
	if term.busy {
		t.Fatal("busy flag must clear")
	}
}

func TestLandingWelcomeNamesUser(t *testing.T) {
	term, _ := newTestTerminal(t, &stubService{}, true)
	lines, _, _, _ := term.view()
	if !containsLine(lines, "welcome, Root") {
		t.Fatalf("expected welcome line with the user's name, got %q", lines)
	}
}

func TestDisplayNameFallsBackToLogin(t *testing.T) {
	if got := displayName(schema.User{Name: "Root", Login: "root@root.com"}); got != "Root" {
		t.Fatalf("expected name, got %q", got)
	}
	if got := displayName(schema.User{Login: "root@root.com"}); got != "root@root.com" {
		t.Fatalf("expected login fallback, got %q", got)
	}
}

func TestViewPostsEmptyShowsNoneFound(t *testing.T) {
	term, _ := newTestTerminal(t, &stubService{}, true)
	term.current = schema.ScreenPosts
	term.postsState = stateLoaded
	lines, _, _, _ := term.view()
	if !containsLine(lines, "no posts found") {
		t.Fatalf("expected empty-list message, got %q", lines)
	}
}

func TestViewThemesEmptyShowsNoneFound(t *testing.T) {
	term, _ := newTestTerminal(t, &stubService{}, true)
	term.current = schema.ScreenThemes
	term.themesState = stateLoaded
	lines, _, _, _ := term.view()
	if !containsLine(lines, "no themes found") {
		t.Fatalf("expected empty-list message, got %q", lines)
	}
}

func TestViewFitsHeight(t *testing.T) {
	term, _ := newTestTerminal(t, &stubService{}, true)
	term.current = schema.ScreenPosts
	term.postsState = stateLoaded
	for i := 0; i < 50; i++ {
		term.posts = append(term.posts, schema.Post{ID: int64(i), Title: fmt.Sprintf("post %d", i)})
	}
	lines, _, _, _ := term.view()
	if len(lines) != term.height {
		t.Fatalf("expected %d lines, got %d", term.height, len(lines))
	}
}

func containsLine(lines []string, want string) bool {
	for _, line := range lines {
		if strings.Contains(stripANSI(line), want) {
			return true
		}
	}
	return false
}

func stripANSI(s string) string {
	var b strings.Builder
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
			b.WriteRune(r)
		}
	}
	return b.String()
}
