package propsapi

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nba-props/internal/domain/prop"
	"github.com/riskibarqy/nba-props/internal/platform/logging"
	"github.com/riskibarqy/nba-props/internal/platform/resilience"
	"github.com/riskibarqy/nba-props/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const (
	defaultPath      = "/api/get_data"
	maxResponseBytes = 16 << 20
)

var errPropsTransient = crerr.New("props api transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Path           string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the day's player projections from the props API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     singleflight.Group
}

var _ prop.Source = (*Client)(nil)

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
		httpClient.Timeout = 30 * time.Second
	}

	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = defaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/") + path,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker("props-api", cfg.CircuitBreaker),
	}
}

// Fetch returns the full player list. Concurrent callers share one request.
func (c *Client) Fetch(ctx context.Context) ([]prop.Player, error) {
	out, err, _ := c.flight.Do(c.endpoint, func() (any, error) {
		var raw []byte
		err := c.breaker.Execute(ctx, func(ctx context.Context) error {
			var reqErr error
			raw, reqErr = c.executeRequest(ctx)
			return reqErr
		}, isPropsCircuitFailure)
		return raw, err
	})
	if err != nil {
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "props api circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: props api is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return decodePlayers(raw)
}

func (c *Client) executeRequest(ctx context.Context) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
		if err != nil {
			return nil, crerr.Wrap(err, "build request")
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = crerr.Mark(crerr.Wrap(err, "send request"), errPropsTransient)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Mark(crerr.Wrap(readErr, "read response body"), errPropsTransient)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			default:
				lastErr = statusError(resp.StatusCode, raw)
				if !isRetryableStatus(resp.StatusCode) {
					return nil, lastErr
				}
				lastErr = crerr.Mark(lastErr, errPropsTransient)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "props api request failed", "url", c.endpoint, "error", lastErr)
	return nil, lastErr
}

type errorBody struct {
	Error string `json:"error"`
}

// statusError renders non-2xx responses as "API Error: <status text> - <detail>".
func statusError(code int, body []byte) error {
	detail := "Unknown API error"
	var parsed errorBody
	if err := sonic.Unmarshal(body, &parsed); err == nil {
		detail = strings.TrimSpace(parsed.Error)
		if detail == "" {
			detail = "Unknown"
		}
	}
	return crerr.Newf("API Error: %s - %s", http.StatusText(code), detail)
}

func decodePlayers(raw []byte) ([]prop.Player, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		var parsed errorBody
		if err := sonic.Unmarshal(trimmed, &parsed); err == nil && strings.TrimSpace(parsed.Error) != "" {
			return nil, crerr.Newf("API Error: %s", parsed.Error)
		}
		return nil, crerr.New("API did not return an array.")
	}

	var players []prop.Player
	if err := sonic.Unmarshal(trimmed, &players); err != nil {
		return nil, crerr.Wrap(err, "decode players")
	}
	if err := prop.ValidateCollection(players); err != nil {
		return nil, crerr.Wrap(err, "API returned invalid players")
	}
	if players == nil {
		players = []prop.Player{}
	}
	return players, nil
}

func isPropsCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return crerr.Is(err, errPropsTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
