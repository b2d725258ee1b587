package local

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/riskibarqy/nba-props/internal/domain/session"
	"github.com/riskibarqy/nba-props/internal/platform/id"
)

// Provider issues sessions in-process. It is meant for single-user
// deployments and tests where no identity service is available.
type Provider struct {
	users  id.Generator
	tokens id.Generator

	mu      sync.Mutex
	current session.Session
}

var _ session.IdentityProvider = (*Provider)(nil)

func NewProvider(users, tokens id.Generator) *Provider {
	if users == nil {
		users = id.NewRandomGenerator()
	}
	if tokens == nil {
		tokens = id.NewTokenGenerator()
	}
	return &Provider{users: users, tokens: tokens}
}

func (p *Provider) CurrentSession(_ context.Context) (session.Session, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.current.Valid(), nil
}

// SignInWithCustomToken accepts any non-empty token; the token doubles as
// the user id so the same token always maps to the same user.
func (p *Provider) SignInWithCustomToken(_ context.Context, token string) (session.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return session.Session{}, fmt.Errorf("custom token is required")
	}

	access, err := p.tokens.NewID()
	if err != nil {
		return session.Session{}, fmt.Errorf("generate access token: %w", err)
	}
	return p.store(session.Session{UserID: token, Token: access}), nil
}

func (p *Provider) SignInAnonymously(_ context.Context) (session.Session, error) {
	userID, err := p.users.NewID()
	if err != nil {
		return session.Session{}, fmt.Errorf("generate user id: %w", err)
	}
	access, err := p.tokens.NewID()
	if err != nil {
		return session.Session{}, fmt.Errorf("generate access token: %w", err)
	}
	return p.store(session.Session{UserID: "anon-" + userID, Anonymous: true, Token: access}), nil
}

func (p *Provider) store(sess session.Session) session.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = sess
	return sess
}
