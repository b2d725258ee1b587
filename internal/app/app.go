package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/nba-props/external/propsapi"
	"github.com/riskibarqy/nba-props/internal/config"
	"github.com/riskibarqy/nba-props/internal/domain/session"
	"github.com/riskibarqy/nba-props/internal/domain/snapshot"
	"github.com/riskibarqy/nba-props/internal/infrastructure/identity/anubis"
	"github.com/riskibarqy/nba-props/internal/infrastructure/identity/local"
	cacherepo "github.com/riskibarqy/nba-props/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/nba-props/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/nba-props/internal/infrastructure/repository/postgres"
	redisrepo "github.com/riskibarqy/nba-props/internal/infrastructure/repository/redis"
	"github.com/riskibarqy/nba-props/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/nba-props/internal/platform/id"
	"github.com/riskibarqy/nba-props/internal/platform/logging"
	"github.com/riskibarqy/nba-props/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const pingTimeout = 5 * time.Second

// App is one dashboard process: the session gate, the sync service that owns
// the day's data, and the HTTP server exposing it.
type App struct {
	Server   *http.Server
	AuthGate *usecase.AuthGate
	Sync     *usecase.SyncService

	logger  *logging.Logger
	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{logger: logger}

	store, err := a.newSnapshotStore(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	source := propsapi.NewClient(propsapi.ClientConfig{
		BaseURL:        cfg.PropsAPIBaseURL,
		Path:           cfg.PropsAPIPath,
		Timeout:        cfg.PropsAPITimeout,
		MaxRetries:     cfg.PropsAPIMaxRetries,
		Logger:         logger.Named("propsapi"),
		CircuitBreaker: cfg.PropsAPICircuit,
	})

	a.Sync = usecase.NewSyncService(store, source, logger.Named("sync"), usecase.SyncServiceConfig{
		Location: cfg.Location,
	})
	a.AuthGate = usecase.NewAuthGate(newIdentityProvider(cfg, logger), cfg.AuthCustomToken, logger.Named("auth"))
	a.AuthGate.OnReady(a.Sync.HandleReady)

	handler := httpapi.NewHandler(a.Sync, a.AuthGate, logger)
	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, a.AuthGate, logger, cfg.CORSAllowedOrigins),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return a, nil
}

// Start signs in and, once the gate is ready, runs the initial sync.
func (a *App) Start(ctx context.Context) error {
	return a.AuthGate.Start(ctx)
}

// Close discards any in-flight sync and releases backing store connections.
func (a *App) Close() error {
	if a.Sync != nil {
		a.Sync.Close()
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) newSnapshotStore(ctx context.Context, cfg config.Config) (snapshot.Store, error) {
	switch cfg.SnapshotBackend {
	case config.BackendRedis:
		client, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.logger.Info("snapshot store ready", "backend", cfg.SnapshotBackend)
		return withReadCache(redisrepo.NewSnapshotRepository(client, cfg.Namespace, cfg.Collection), cfg.SnapshotReadCacheTTL), nil
	case config.BackendPostgres:
		db, err := openDB(ctx, cfg.DBURL, cfg.DBDisablePreparedBinary)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.logger.Info("snapshot store ready", "backend", cfg.SnapshotBackend, "db_name", dbNameFromURL(cfg.DBURL))
		return withReadCache(postgres.NewSnapshotRepository(db, cfg.Namespace, cfg.Collection), cfg.SnapshotReadCacheTTL), nil
	default:
		a.logger.Info("snapshot store ready", "backend", config.BackendMemory)
		return memory.NewSnapshotRepository(cfg.Namespace, cfg.Collection), nil
	}
}

func withReadCache(store snapshot.Store, ttl time.Duration) snapshot.Store {
	if ttl <= 0 {
		return store
	}
	return cacherepo.NewSnapshotRepository(store, ttl)
}

func openRedis(ctx context.Context, rawURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func openDB(ctx context.Context, rawURL string, disablePreparedBinary bool) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", NormalizeDBURL(rawURL, disablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(rawURL)),
		otelsql.WithQueryFormatter(traceableQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func newIdentityProvider(cfg config.Config, logger *logging.Logger) session.IdentityProvider {
	if cfg.IdentityProvider == config.IdentityAnubis {
		return anubis.NewClient(anubis.ClientConfig{
			BaseURL:        cfg.AnubisBaseURL,
			AdminKey:       cfg.AnubisAdminKey,
			AccessToken:    cfg.AnubisAccessToken,
			Timeout:        cfg.AnubisTimeout,
			IntrospectTTL:  cfg.AnubisIntrospectTTL,
			CircuitBreaker: cfg.AnubisCircuitBreaker,
			Logger:         logger.Named("anubis"),
		})
	}
	return local.NewProvider(idgen.NewRandomGenerator(), idgen.NewTokenGenerator())
}
