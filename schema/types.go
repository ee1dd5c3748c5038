package schema

import "time"

// User represents a registered account as the backend returns it. The
// password only traverses the wire during registration and login; the token
// is only present in the login response and is treated as an opaque string.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"nome"`
	Login    string `json:"usuario"`
	Password string `json:"senha,omitempty"`
	Photo    string `json:"foto"`
	Token    string `json:"token,omitempty"`
}

// Theme is a classification label for posts.
type Theme struct {
	ID          int64  `json:"id"`
	Description string `json:"descricao"`
}

// Post is a themed text post. Theme and Author are denormalized embedded
// copies as returned by the backend, not foreign keys; both may be nil while
// a record is loading and display code must tolerate that.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"titulo"`
	Body      string    `json:"texto"`
	CreatedAt time.Time `json:"data"`
	Theme     *Theme    `json:"tema,omitempty"`
	Author    *User     `json:"usuario,omitempty"`
}

// ScreenName identifies a TUI screen for routing and logging.
type ScreenName string

// Screens reachable by navigation.
const (
	ScreenLanding     ScreenName = "landing"
	ScreenRegister    ScreenName = "register"
	ScreenPosts       ScreenName = "posts"
	ScreenPostForm    ScreenName = "postform"
	ScreenPostDelete  ScreenName = "postdelete"
	ScreenThemes      ScreenName = "themes"
	ScreenThemeForm   ScreenName = "themeform"
	ScreenThemeDelete ScreenName = "themedelete"
)

// MinPasswordLen is the client-side minimum for registration passwords.
const MinPasswordLen = 8
