package schema

import "strings"

// ValidateRegistration applies the client-side registration invariants:
// a login name must be present, the password must be at least MinPasswordLen
// runes, and the confirmation must match exactly. Violations never reach the
// network.
func ValidateRegistration(user User, confirm string) error {
	if strings.TrimSpace(user.Login) == "" {
		return ErrLoginRequired
	}
	if len([]rune(user.Password)) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	if user.Password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// ValidatePost checks a post submission has a resolved theme reference.
// Submission must stay blocked until the theme's description is non-empty.
func ValidatePost(post Post) error {
	if post.Theme == nil || strings.TrimSpace(post.Theme.Description) == "" {
		return ErrThemeRequired
	}
	return nil
}
