package schema

import "errors"

var (
	// ErrNotLoggedIn indicates a protected operation ran without a session token.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSessionExpired indicates the backend rejected the token and the
	// session has been logged out.
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidCredentials indicates the login request was rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordTooShort indicates a registration password below the minimum length.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrPasswordMismatch indicates password and confirmation differ.
	ErrPasswordMismatch = errors.New("password confirmation does not match")
	// ErrLoginRequired indicates a registration without a login name.
	ErrLoginRequired = errors.New("login name is required")
	// ErrThemeRequired indicates a post submission without a resolved theme.
	ErrThemeRequired = errors.New("theme is required")
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
)
