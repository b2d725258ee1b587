package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/riskibarqy/nba-props/internal/domain/session"
	"github.com/riskibarqy/nba-props/internal/platform/logging"
)

// ConfigErrorMessage is shown when no session could be established at all.
const ConfigErrorMessage = "App configuration error. Please contact support."

type AuthState string

const (
	AuthStateUnauthenticated AuthState = "unauthenticated"
	AuthStateAuthenticating  AuthState = "authenticating"
	AuthStateAuthenticated   AuthState = "authenticated"
	AuthStateDegraded        AuthState = "degraded"
)

type ReadyListener func(ctx context.Context, sess session.Session)

// AuthGate establishes the process session once and releases its listeners
// when the session (or the degraded fallback) is in place.
type AuthGate struct {
	provider    session.IdentityProvider
	customToken string
	logger      *logging.Logger

	mu        sync.Mutex
	state     AuthState
	sess      session.Session
	configErr string
	listeners []ReadyListener
}

func NewAuthGate(provider session.IdentityProvider, customToken string, logger *logging.Logger) *AuthGate {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthGate{
		provider:    provider,
		customToken: strings.TrimSpace(customToken),
		logger:      logger,
		state:       AuthStateUnauthenticated,
	}
}

// OnReady registers fn. It runs once when the gate becomes ready, or right
// away if the gate already is.
func (g *AuthGate) OnReady(fn ReadyListener) {
	if fn == nil {
		return
	}

	g.mu.Lock()
	if !g.readyLocked() {
		g.listeners = append(g.listeners, fn)
		g.mu.Unlock()
		return
	}
	sess := g.sess
	g.mu.Unlock()

	fn(context.Background(), sess)
}

// Start runs the sign-in sequence. Calling it again after the first run is a no-op.
func (g *AuthGate) Start(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthGate.Start")
	defer span.End()

	g.mu.Lock()
	if g.state != AuthStateUnauthenticated {
		g.mu.Unlock()
		return nil
	}
	g.state = AuthStateAuthenticating
	g.mu.Unlock()

	sess, err := g.signIn(ctx)
	if err != nil {
		g.logger.ErrorContext(ctx, "anonymous sign-in failed", "error", err)
		g.finish(ctx, AuthStateDegraded, session.Session{}, ConfigErrorMessage)
		return fmt.Errorf("%w: %v", ErrAuthConfig, err)
	}

	g.logger.InfoContext(ctx, "session established", "user_id", sess.UserID, "anonymous", sess.Anonymous)
	g.finish(ctx, AuthStateAuthenticated, sess, "")
	return nil
}

func (g *AuthGate) signIn(ctx context.Context) (session.Session, error) {
	current, ok, err := g.provider.CurrentSession(ctx)
	switch {
	case err != nil:
		g.logger.WarnContext(ctx, "lookup current session failed", "error", err)
	case ok && current.Valid():
		return current, nil
	}

	if g.customToken != "" {
		sess, err := g.provider.SignInWithCustomToken(ctx, g.customToken)
		if err == nil && sess.Valid() {
			return sess, nil
		}
		g.logger.WarnContext(ctx, "custom token sign-in failed, falling back to anonymous", "error", err)
	}

	sess, err := g.provider.SignInAnonymously(ctx)
	if err != nil {
		return session.Session{}, err
	}
	if !sess.Valid() {
		return session.Session{}, fmt.Errorf("anonymous sign-in returned empty session")
	}
	return sess, nil
}

func (g *AuthGate) finish(ctx context.Context, state AuthState, sess session.Session, configErr string) {
	g.mu.Lock()
	g.state = state
	g.sess = sess
	g.configErr = configErr
	listeners := g.listeners
	g.listeners = nil
	g.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx, sess)
	}
}

func (g *AuthGate) readyLocked() bool {
	return g.state == AuthStateAuthenticated || g.state == AuthStateDegraded
}

func (g *AuthGate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.readyLocked()
}

func (g *AuthGate) State() AuthState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *AuthGate) Session() (session.Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sess, g.sess.Valid()
}

func (g *AuthGate) ConfigError() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.configErr
}
