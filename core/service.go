package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pkt.systems/bloggx/internal/logx"
	"pkt.systems/bloggx/internal/rest"
	"pkt.systems/bloggx/internal/session"
	"pkt.systems/bloggx/schema"
	"pkt.systems/pslog"
)

// service implements the core service behavior.
type service struct {
	client       *rest.Client
	sessions     *session.Store
	logger       pslog.Logger
	disableAudit bool
}

// ServiceOption adjusts service construction.
type ServiceOption func(*service)

// DisableAuditLogging turns off the audit trail debug logs for mutating
// operations.
func DisableAuditLogging() ServiceOption {
	return func(s *service) { s.disableAudit = true }
}

// NewService constructs the core service implementation.
func NewService(client *rest.Client, sessions *session.Store, logger pslog.Logger, opts ...ServiceOption) (Service, error) {
	if client == nil {
		return nil, errors.New("missing rest client")
	}
	if sessions == nil {
		return nil, errors.New("missing session store")
	}
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	s := &service{
		client:   client,
		sessions: sessions,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// audit records a mutating operation against the backend.
func (s *service) audit(ctx context.Context, op string, kv ...any) {
	if s.disableAudit {
		return
	}
	args := append([]any{"op", op}, kv...)
	logx.WithSession(ctx, s.sessions.Key()).Debug("audit operation", args...)
}

func (s *service) Login(ctx context.Context, req schema.LoginRequest) (schema.LoginResponse, error) {
	if ctx == nil {
		return schema.LoginResponse{}, errors.New("missing context")
	}
	log := logx.WithSession(ctx, s.sessions.Key())
	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return schema.LoginResponse{}, schema.ErrInvalidCredentials
	}
	var user schema.User
	credentials := schema.User{Login: login, Password: req.Password}
	if err := s.client.CreateInto(ctx, "/usuarios/logar", credentials, &user); err != nil {
		if rest.IsUnauthorized(err) || rest.IsNotFound(err) {
			log.Warn("service login rejected", "login", login)
			return schema.LoginResponse{}, schema.ErrInvalidCredentials
		}
		log.Warn("service login failed", "err", err)
		return schema.LoginResponse{}, err
	}
	if err := s.sessions.Login(user, user.Token); err != nil {
		log.Warn("service login failed", "err", err)
		return schema.LoginResponse{}, err
	}
	log.Info("service login succeeded", "login", user.Login, "user_id", user.ID)
	return schema.LoginResponse{User: s.sessions.User()}, nil
}

func (s *service) Logout(ctx context.Context, req schema.LogoutRequest) (schema.LogoutResponse, error) {
	if ctx == nil {
		return schema.LogoutResponse{}, errors.New("missing context")
	}
	log := logx.WithSession(ctx, s.sessions.Key())
	s.sessions.Logout()
	log.Info("service logout")
	return schema.LogoutResponse{}, nil
}

func (s *service) Register(ctx context.Context, req schema.RegisterRequest) (schema.RegisterResponse, error) {
	if ctx == nil {
		return schema.RegisterResponse{}, errors.New("missing context")
	}
	log := logx.WithSession(ctx, s.sessions.Key())
	if err := schema.ValidateRegistration(req.User, req.Confirm); err != nil {
		return schema.RegisterResponse{}, err
	}
	payload := req.User
	payload.ID = 0
	payload.Token = ""
	var created schema.User
	if err := s.client.CreateInto(ctx, "/usuarios/cadastrar", payload, &created); err != nil {
		log.Warn("service register failed", "err", err)
		return schema.RegisterResponse{}, err
	}
	if created.ID == 0 {
		log.Warn("service register rejected", "login", payload.Login)
		return schema.RegisterResponse{}, fmt.Errorf("registration rejected for %s", payload.Login)
	}
	created.Password = ""
	created.Token = ""
	log.Info("service register succeeded", "login", created.Login, "user_id", created.ID)
	return schema.RegisterResponse{User: created}, nil
}

func (s *service) ListPosts(ctx context.Context, req schema.ListPostsRequest) (schema.ListPostsResponse, error) {
	if ctx == nil {
		return schema.ListPostsResponse{}, errors.New("missing context")
	}
	auth, err := s.authorized()
	if err != nil {
		return schema.ListPostsResponse{}, err
	}
	var posts []schema.Post
	if err := s.client.FetchInto(ctx, "/postagens", &posts, auth); err != nil {
		return schema.ListPostsResponse{}, s.protectedError(ctx, "list posts", err)
	}
	return schema.ListPostsResponse{Posts: posts}, nil
}

func (s *service) GetPost(ctx context.Context, req schema.GetPostRequest) (schema.GetPostResponse, error) {
	if ctx == nil {
		return schema.GetPostResponse{}, errors.New("missing context")
	}
	auth, err := s.authorized()
	if err != nil {
		return schema.GetPostResponse{}, err
	}
	var post schema.Post
	if err := s.client.FetchInto(ctx, fmt.Sprintf("/postagens/%d", req.ID), &post, auth); err != nil {
		if rest.IsNotFound(err) {
			return schema.GetPostResponse{}, schema.ErrNotFound
		}
		return schema.GetPostResponse{}, s.protectedError(ctx, "get post", err)
	}
	return schema.GetPostResponse{Post: post}, nil
}

func (s *service) CreatePost(ctx context.Context, req schema.CreatePostRequest) (schema.CreatePostResponse, error) {
	if ctx == nil {
		return schema.CreatePostResponse{}, errors.New("missing context")
	}
	auth, err := s.authorized()
	if err != nil {
		return schema.CreatePostResponse{}, err
	}
	if err := schema.ValidatePost(req.Post); err != nil {
		return schema.CreatePostResponse{}, err
	}
	payload := req.Post
	payload.ID = 0
	payload.Author = &schema.User{ID: s.sessions.User().ID}
	s.audit(ctx, "create post", "title", payload.Title)
	var created schema.Post
	if err := s.client.CreateInto(ctx, "/postagens", payload, &created, auth); err != nil {
		return schema.CreatePostResponse{}, s.protectedError(ctx, "create post", err)
	}
	return schema.CreatePostResponse{Post: created}, nil
}

func (s *service) UpdatePost(ctx context.Context, req schema.UpdatePostRequest) (schema.UpdatePostResponse, error) {
	if ctx == nil {
		return schema.UpdatePostResponse{}, errors.New("missing context")
	}
	auth, err := s.authorized()
	if err != nil {
		return schema.UpdatePostResponse{}, err
	}
	if req.Post.ID == 0 {
		return schema.UpdatePostResponse{}, schema.ErrNotFound
	}
	if err := schema.ValidatePost(req.Post); err != nil {
		return schema.UpdatePostResponse{}, err
	}
	payload := req.Post
	payload.Author = &schema.User{ID: s.sessions.User().ID}
	s.audit(ctx, "update post", "post_id", payload.ID)
	var updated schema.Post
	if err := s.client.UpdateInto(ctx, "/postagens", payload, &updated, auth); err != nil {
		if rest.IsNotFound(err) {
			return schema.UpdatePostResponse{}, schema.ErrNotFound
		}
		return schema.UpdatePostResponse{}, s.protectedError(ctx, "update post", err)
	}
	return schema.UpdatePostResponse{Post: updated}, nil
}

func (s *service) DeletePost(ctx context.Context, req schema.DeletePostRequest) (schema.DeletePostResponse, error) {
	if ctx == nil {
		return schema.DeletePostResponse{}, errors.New("missing context")
	}
	auth, err := s.authorized()
	if err != nil {
		return schema.DeletePostResponse{}, err
	}
	s.audit(ctx, "delete post", "post_id", req.ID)
	if err := s.client.Delete(ctx, fmt.Sprintf("/postagens/%d", req.ID), auth); err != nil {
		if rest.IsNotFound(err) {
			return schema.DeletePostResponse{}, schema.ErrNotFound
		}
		return schema.DeletePostResponse{}, s.protectedError(ctx, "delete post", err)
	}
	return schema.DeletePostResponse{}, nil
}

func (s *service) ListThemes(ctx context.Context, req schema.ListThemesRequest) (schema.ListThemesResponse, error) {
	if ctx == nil {
		return schema.ListThemesResponse{}, errors.New("missing context")
	}
	auth, err := s.authorized()
	if err != nil {
		return schema.ListThemesResponse{}, err
	}
	var themes []schema.Theme
	if err := s.client.FetchInto(ctx, "/temas", &themes, auth); err != nil {
		return schema.ListThemesResponse{}, s.protectedError(ctx, "list themes", err)
	}
	return schema.ListThemesResponse{Themes: themes}, nil
}

func (s *service) GetTheme(ctx context.Context, req schema.GetThemeRequest) (schema.GetThemeResponse, error) {
	if ctx == nil {
		return schema.GetThemeResponse{}, errors.New("missing context")
	}
	auth, err := s.authorized()
	if err != nil {
		return schema.GetThemeResponse{}, err
	}
	var theme schema.Theme
	if err := s.client.FetchInto(ctx, fmt.Sprintf("/temas/%d", req.ID), &theme, auth); err != nil {
		if rest.IsNotFound(err) {
			return schema.GetThemeResponse{}, schema.ErrNotFound
		}
		return schema.GetThemeResponse{}, s.protectedError(ctx, "get theme", err)
	}
	return schema.GetThemeResponse{Theme: theme}, nil
}

func (s *service) CreateTheme(ctx context.Context, req schema.CreateThemeRequest) (schema.CreateThemeResponse, error) {
	if ctx == nil {
		return schema.CreateThemeResponse{}, errors.New("missing context")
	}
	auth, err := s.authorized()
	if err != nil {
		return schema.CreateThemeResponse{}, err
	}
	if strings.TrimSpace(req.Theme.Description) == "" {
		return schema.CreateThemeResponse{}, schema.ErrThemeRequired
	}
	payload := req.Theme
	payload.ID = 0
	s.audit(ctx, "create theme", "description", payload.Description)
	var created schema.Theme
	if err := s.client.CreateInto(ctx, "/temas", payload, &created, auth); err != nil {
		return schema.CreateThemeResponse{}, s.protectedError(ctx, "create theme", err)
	}
	return schema.CreateThemeResponse{Theme: created}, nil
}

func (s *service) UpdateTheme(ctx context.Context, req schema.UpdateThemeRequest) (schema.UpdateThemeResponse, error) {
	if ctx == nil {
		return schema.UpdateThemeResponse{}, errors.New("missing context")
	}
	auth, err := s.authorized()
	if err != nil {
		return schema.UpdateThemeResponse{}, err
	}
	if req.Theme.ID == 0 {
		return schema.UpdateThemeResponse{}, schema.ErrNotFound
	}
	if strings.TrimSpace(req.Theme.Description) == "" {
		return schema.UpdateThemeResponse{}, schema.ErrThemeRequired
	}
	s.audit(ctx, "update theme", "theme_id", req.Theme.ID)
	var updated schema.Theme
	if err := s.client.UpdateInto(ctx, "/temas", req.Theme, &updated, auth); err != nil {
		if rest.IsNotFound(err) {
			return schema.UpdateThemeResponse{}, schema.ErrNotFound
		}
		return schema.UpdateThemeResponse{}, s.protectedError(ctx, "update theme", err)
	}
	return schema.UpdateThemeResponse{Theme: updated}, nil
}

func (s *service) DeleteTheme(ctx context.Context, req schema.DeleteThemeRequest) (schema.DeleteThemeResponse, error) {
	if ctx == nil {
		return schema.DeleteThemeResponse{}, errors.New("missing context")
	}
	auth, err := s.authorized()
	if err != nil {
		return schema.DeleteThemeResponse{}, err
	}
	s.audit(ctx, "delete theme", "theme_id", req.ID)
	if err := s.client.Delete(ctx, fmt.Sprintf("/temas/%d", req.ID), auth); err != nil {
		if rest.IsNotFound(err) {
			return schema.DeleteThemeResponse{}, schema.ErrNotFound
		}
		return schema.DeleteThemeResponse{}, s.protectedError(ctx, "delete theme", err)
	}
	return schema.DeleteThemeResponse{}, nil
}

// authorized returns the auth option for the current session, or
// ErrNotLoggedIn when no token is held.
func (s *service) authorized() (rest.Option, error) {
	token := s.sessions.Token()
	if token == "" {
		return nil, schema.ErrNotLoggedIn
	}
	return rest.WithAuthorization(token), nil
}

// protectedError clears the session on a rejected token so every caller
// observes the same forced logout, whichever operation tripped it.
func (s *service) protectedError(ctx context.Context, op string, err error) error {
	log := logx.WithSession(ctx, s.sessions.Key())
	if rest.IsUnauthorized(err) {
		s.sessions.Logout()
		log.Warn("service session expired", "op", op)
		return fmt.Errorf("%s: %w", op, schema.ErrSessionExpired)
	}
	log.Warn("service request failed", "op", op, "err", err)
	return fmt.Errorf("%s: %w", op, err)
}
