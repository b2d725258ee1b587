package anubis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nba-props/internal/domain/session"
	"github.com/riskibarqy/nba-props/internal/platform/cache"
	"github.com/riskibarqy/nba-props/internal/platform/logging"
	"github.com/riskibarqy/nba-props/internal/platform/resilience"
	"github.com/riskibarqy/nba-props/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	anonymousPath   = "/v1/auth/anonymous"
	customTokenPath = "/v1/auth/custom-token"
	introspectPath  = "/v1/auth/introspect"

	defaultIntrospectTTL = 5 * time.Minute
	maxCachedSessions    = 1024
)

var errAnubisTransient = crerr.New("anubis transient failure")

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	AdminKey   string
	// AccessToken is an already issued token the process should resume with.
	AccessToken    string
	Timeout        time.Duration
	IntrospectTTL  time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Client signs the dashboard in against the anubis identity service.
type Client struct {
	httpClient    *http.Client
	anonymousURL  string
	customURL     string
	introspectURL string
	adminKey      string
	accessToken   string
	breaker       *resilience.CircuitBreaker
	sessions      *cache.Store[session.Session]
	logger        *logging.Logger
}

var _ session.IdentityProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	ttl := cfg.IntrospectTTL
	if ttl <= 0 {
		ttl = defaultIntrospectTTL
	}

	return &Client{
		httpClient:    httpClient,
		anonymousURL:  buildURL(cfg.BaseURL, anonymousPath),
		customURL:     buildURL(cfg.BaseURL, customTokenPath),
		introspectURL: buildURL(cfg.BaseURL, introspectPath),
		adminKey:      strings.TrimSpace(cfg.AdminKey),
		accessToken:   strings.TrimSpace(cfg.AccessToken),
		breaker:       resilience.NewCircuitBreaker("anubis", cfg.CircuitBreaker),
		sessions:      cache.NewStore[session.Session](ttl, maxCachedSessions),
		logger:        logger,
	}
}

// CurrentSession resumes the configured access token, if any.
func (c *Client) CurrentSession(ctx context.Context) (session.Session, bool, error) {
	if c.accessToken == "" {
		return session.Session{}, false, nil
	}

	sess, err := c.sessions.GetOrLoad(ctx, hashToken(c.accessToken), func(ctx context.Context) (session.Session, error) {
		return c.introspect(ctx, c.accessToken)
	})
	if err != nil {
		if crerr.Is(err, usecase.ErrUnauthorized) {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, err
	}
	return sess, true, nil
}

func (c *Client) SignInWithCustomToken(ctx context.Context, token string) (session.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return session.Session{}, fmt.Errorf("%w: custom token is required", usecase.ErrUnauthorized)
	}

	var resp signInResponse
	if err := c.post(ctx, c.customURL, customTokenRequest{Token: token}, &resp); err != nil {
		return session.Session{}, crerr.Wrap(err, "sign in with custom token")
	}
	return resp.session()
}

func (c *Client) SignInAnonymously(ctx context.Context) (session.Session, error) {
	var resp signInResponse
	if err := c.post(ctx, c.anonymousURL, struct{}{}, &resp); err != nil {
		return session.Session{}, crerr.Wrap(err, "sign in anonymously")
	}
	sess, err := resp.session()
	if err != nil {
		return session.Session{}, err
	}
	sess.Anonymous = true
	return sess, nil
}

func (c *Client) introspect(ctx context.Context, token string) (session.Session, error) {
	var resp introspectResponse
	if err := c.post(ctx, c.introspectURL, introspectRequest{Token: token}, &resp); err != nil {
		return session.Session{}, crerr.Wrap(err, "introspect access token")
	}
	if !resp.Active {
		return session.Session{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(resp.UserID) == "" {
		return session.Session{}, crerr.New("invalid introspect response: user_id is empty")
	}

	return session.Session{
		UserID:    resp.UserID,
		Anonymous: resp.Anonymous,
		Token:     token,
	}, nil
}

func (c *Client) post(ctx context.Context, url string, payload, target any) error {
	encoded, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal request")
	}

	err = c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.do(ctx, url, encoded, target)
	}, isCircuitFailure)
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "anubis circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: identity service is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	return err
}

func (c *Client) do(ctx context.Context, url string, body []byte, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return crerr.Mark(crerr.Wrap(err, "request anubis"), errAnubisTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: anubis denied request", usecase.ErrUnauthorized)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return crerr.Mark(crerr.Wrap(err, "read anubis response"), errAnubisTransient)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "anubis non-200", "url", url, "status_code", resp.StatusCode)
		statusErr := crerr.Newf("anubis request failed with status %d", resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return crerr.Mark(statusErr, errAnubisTransient)
		}
		return statusErr
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "unmarshal anubis response")
	}
	return nil
}

type customTokenRequest struct {
	Token string `json:"token"`
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active    bool   `json:"active"`
	UserID    string `json:"user_id"`
	Anonymous bool   `json:"anonymous"`
}

type signInResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Anonymous   bool   `json:"anonymous"`
}

func (r signInResponse) session() (session.Session, error) {
	if strings.TrimSpace(r.UserID) == "" || strings.TrimSpace(r.AccessToken) == "" {
		return session.Session{}, crerr.New("invalid sign-in response: user_id and access_token are required")
	}
	return session.Session{
		UserID:    r.UserID,
		Anonymous: r.Anonymous,
		Token:     r.AccessToken,
	}, nil
}
