package schema

// Session lifecycle.

// LoginRequest describes a login attempt against the backend.
type LoginRequest struct {
	Login    string
	Password string
}

// LoginResponse reports the authenticated user. The token has already been
// stored in the session by the time this returns.
type LoginResponse struct {
	User User
}

// LogoutRequest describes a logout request.
type LogoutRequest struct{}

// LogoutResponse reports logout completion.
type LogoutResponse struct{}

// RegisterRequest describes a registration submission. Confirm is the
// client-side password confirmation; it never traverses the wire.
type RegisterRequest struct {
	User    User
	Confirm string
}

// RegisterResponse reports the created user. A non-zero ID marks success.
type RegisterResponse struct {
	User User
}

// Posts.

// ListPostsRequest describes a request for the post collection.
type ListPostsRequest struct{}

// ListPostsResponse reports all posts.
type ListPostsResponse struct {
	Posts []Post
}

// GetPostRequest describes a request for a single post.
type GetPostRequest struct {
	ID int64
}

// GetPostResponse reports the requested post.
type GetPostResponse struct {
	Post Post
}

// CreatePostRequest describes a post creation.
type CreatePostRequest struct {
	Post Post
}

// CreatePostResponse reports the created post as the backend stored it.
type CreatePostResponse struct {
	Post Post
}

// UpdatePostRequest describes a post replacement. Post.ID selects the record.
type UpdatePostRequest struct {
	Post Post
}

// UpdatePostResponse reports the updated post.
type UpdatePostResponse struct {
	Post Post
}

// DeletePostRequest describes a post deletion.
type DeletePostRequest struct {
	ID int64
}

// DeletePostResponse reports deletion completion.
type DeletePostResponse struct{}

// Themes.

// ListThemesRequest describes a request for the theme collection.
type ListThemesRequest struct{}

// ListThemesResponse reports all themes.
type ListThemesResponse struct {
	Themes []Theme
}

// GetThemeRequest describes a request for a single theme.
type GetThemeRequest struct {
	ID int64
}

// GetThemeResponse reports the requested theme.
type GetThemeResponse struct {
	Theme Theme
}

// CreateThemeRequest describes a theme creation.
type CreateThemeRequest struct {
	Theme Theme
}

// CreateThemeResponse reports the created theme.
type CreateThemeResponse struct {
	Theme Theme
}

// UpdateThemeRequest describes a theme replacement.
type UpdateThemeRequest struct {
	Theme Theme
}

// UpdateThemeResponse reports the updated theme.
type UpdateThemeResponse struct {
	Theme Theme
}

// DeleteThemeRequest describes a theme deletion.
type DeleteThemeRequest struct {
	ID int64
}

// DeleteThemeResponse reports deletion completion.
type DeleteThemeResponse struct{}
