package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/riskibarqy/nba-props/internal/config"
	"github.com/riskibarqy/nba-props/internal/platform/logging"
	"github.com/riskibarqy/nba-props/internal/platform/resilience"
	"github.com/riskibarqy/nba-props/internal/usecase"
	"github.com/stretchr/testify/require"
)

const propsPayload = `[{"id":"p1","playerName":"Jalen Brunson","team":"NYK","opponent":"BOS","stat":"PTS","projection":27.5,"bookLine":25.5,"isStarter":true,"hitRate":{"L5":80,"L10":"7/10"},"gameId":"g1","gameDate":"2025-01-15T19:30:00Z","gameDescription":"BOS @ NYK"}]`

func newPropsServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/api/get_data" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(propsPayload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(backend, propsURL string) config.Config {
	return config.Config{
		AppEnv:           config.EnvDev,
		HTTPAddr:         ":0",
		ReadTimeout:      time.Second,
		WriteTimeout:     time.Second,
		Location:         time.UTC,
		Namespace:        "props-test",
		Collection:       "nba",
		SnapshotBackend:  backend,
		IdentityProvider: config.IdentityLocal,
		PropsAPIBaseURL:  propsURL,
		PropsAPIPath:     "/api/get_data",
		PropsAPITimeout:  2 * time.Second,
		PropsAPICircuit:  resilience.DefaultCircuitBreakerConfig(),
	}
}

func TestNew_MemoryBackendSyncsOnStart(t *testing.T) {
	var hits atomic.Int32
	props := newPropsServer(t, &hits)

	a, err := New(context.Background(), testConfig(config.BackendMemory, props.URL), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NotNil(t, a.Server)
	require.True(t, a.Sync.Status().Loading)

	require.NoError(t, a.Start(context.Background()))
	require.True(t, a.AuthGate.Ready())

	status := a.Sync.Status()
	require.False(t, status.Loading)
	require.Equal(t, usecase.DataOriginUpstream, status.Origin)
	require.Equal(t, 1, status.Players)
	require.EqualValues(t, 1, hits.Load())

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_RedisBackendSharesSnapshotAcrossProcesses(t *testing.T) {
	var hits atomic.Int32
	props := newPropsServer(t, &hits)
	mr := miniredis.RunT(t)

	cfg := testConfig(config.BackendRedis, props.URL)
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.SnapshotReadCacheTTL = time.Minute

	first, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Close() })
	require.NoError(t, first.Start(context.Background()))
	require.Equal(t, usecase.DataOriginUpstream, first.Sync.Status().Origin)

	second, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })
	require.NoError(t, second.Start(context.Background()))

	require.Equal(t, usecase.DataOriginCache, second.Sync.Status().Origin)
	require.Equal(t, 1, second.Sync.Status().Players)
	require.EqualValues(t, 1, hits.Load())
}

func TestNew_RedisUnavailable(t *testing.T) {
	cfg := testConfig(config.BackendRedis, "http://127.0.0.1:1")
	cfg.RedisURL = "redis://127.0.0.1:1"

	_, err := New(context.Background(), cfg, logging.NewNop())
	require.Error(t, err)
}

func TestNew_RequiresAddr(t *testing.T) {
	cfg := testConfig(config.BackendMemory, "http://127.0.0.1:1")
	cfg.HTTPAddr = ""

	_, err := New(context.Background(), cfg, logging.NewNop())
	require.Error(t, err)
}

func TestApp_CloseDiscardsLateSync(t *testing.T) {
	var hits atomic.Int32
	props := newPropsServer(t, &hits)

	a, err := New(context.Background(), testConfig(config.BackendMemory, props.URL), logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, a.Close())

	require.NoError(t, a.Start(context.Background()))
	require.True(t, a.Sync.Status().Loading)
	require.Zero(t, hits.Load())
}
