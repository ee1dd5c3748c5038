package core

import (
	"context"

	"pkt.systems/bloggx/schema"
)

// Service is the transport-agnostic API for authentication, posts, and themes.
type Service interface {
	Login(ctx context.Context, req schema.LoginRequest) (schema.LoginResponse, error)
	Logout(ctx context.Context, req schema.LogoutRequest) (schema.LogoutResponse, error)
	Register(ctx context.Context, req schema.RegisterRequest) (schema.RegisterResponse, error)
	ListPosts(ctx context.Context, req schema.ListPostsRequest) (schema.ListPostsResponse, error)
	GetPost(ctx context.Context, req schema.GetPostRequest) (schema.GetPostResponse, error)
	CreatePost(ctx context.Context, req schema.CreatePostRequest) (schema.CreatePostResponse, error)
	UpdatePost(ctx context.Context, req schema.UpdatePostRequest) (schema.UpdatePostResponse, error)
	DeletePost(ctx context.Context, req schema.DeletePostRequest) (schema.DeletePostResponse, error)
	ListThemes(ctx context.Context, req schema.ListThemesRequest) (schema.ListThemesResponse, error)
	GetTheme(ctx context.Context, req schema.GetThemeRequest) (schema.GetThemeResponse, error)
	CreateTheme(ctx context.Context, req schema.CreateThemeRequest) (schema.CreateThemeResponse, error)
	UpdateTheme(ctx context.Context, req schema.UpdateThemeRequest) (schema.UpdateThemeResponse, error)
	DeleteTheme(ctx context.Context, req schema.DeleteThemeRequest) (schema.DeleteThemeResponse, error)
}
