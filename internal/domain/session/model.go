package session

import "context"

// Session is the opaque identity handle held for the process lifetime.
type Session struct {
	UserID    string
	Anonymous bool
	Token     string
}

func (s Session) Valid() bool {
	return s.UserID != ""
}

// IdentityProvider is the minimal capability set the auth gate needs.
type IdentityProvider interface {
	CurrentSession(ctx context.Context) (Session, bool, error)
	SignInWithCustomToken(ctx context.Context, token string) (Session, error)
	SignInAnonymously(ctx context.Context) (Session, error)
}
