package schema

// SessionKey identifies one terminal session (one local TTY or one SSH
// connection). Each session owns exactly one Session store.
type SessionKey string

// SessionEvent reports a session store transition. Authenticated is false
// after logout, including the forced logout the error classifier performs
// on a 401.
type SessionEvent struct {
	Key           SessionKey
	Authenticated bool
	Login         string
}
