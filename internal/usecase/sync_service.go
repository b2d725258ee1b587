package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/nba-props/internal/domain/betsheet"
	"github.com/riskibarqy/nba-props/internal/domain/board"
	"github.com/riskibarqy/nba-props/internal/domain/prop"
	"github.com/riskibarqy/nba-props/internal/domain/session"
	"github.com/riskibarqy/nba-props/internal/domain/snapshot"
	"github.com/riskibarqy/nba-props/internal/platform/logging"
)

const fetchErrorPrefix = "Failed to load data: "

type DataOrigin string

const (
	DataOriginNone     DataOrigin = ""
	DataOriginCache    DataOrigin = "cache"
	DataOriginUpstream DataOrigin = "upstream"
)

type SyncStatus struct {
	Loading    bool
	Error      string
	Origin     DataOrigin
	CapturedAt time.Time
	Players    int
	BetSheet   int
}

type SyncServiceConfig struct {
	Location *time.Location
	Now      func() time.Time
}

// SyncService owns the day's player collection and the bet sheet. Every read
// and mutation of that state goes through its lock.
type SyncService struct {
	store  snapshot.Store
	source prop.Source
	logger *logging.Logger
	loc    *time.Location
	now    func() time.Time

	mu         sync.RWMutex
	players    []prop.Player
	index      map[string]int
	sheet      *betsheet.Sheet
	loading    bool
	errMessage string
	origin     DataOrigin
	capturedAt time.Time
	generation uint64
	closed     bool
}

func NewSyncService(store snapshot.Store, source prop.Source, logger *logging.Logger, cfg SyncServiceConfig) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SyncService{
		store:   store,
		source:  source,
		logger:  logger,
		loc:     cfg.Location,
		now:     cfg.Now,
		players: []prop.Player{},
		index:   map[string]int{},
		sheet:   betsheet.New(),
		loading: true,
	}
}

// HandleReady adapts Load to the auth gate listener signature.
func (s *SyncService) HandleReady(ctx context.Context, sess session.Session) {
	if err := s.Load(ctx, sess); err != nil && !errors.Is(err, ErrSyncDiscarded) {
		s.logger.WarnContext(ctx, "initial data load finished with error", "error", err)
	}
}

// Load runs the cache-or-fetch sequence once: reuse today's snapshot when it
// is fresh, otherwise fetch upstream and publish the result back to the store.
func (s *SyncService) Load(ctx context.Context, sess session.Session) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.Load", attrUserID.String(sess.UserID))
	defer span.End()

	gen, ok := s.begin()
	if !ok {
		return ErrSyncDiscarded
	}

	key := snapshot.DayKey(s.now(), s.loc)
	if players, capturedAt, ok := s.readFresh(ctx, key); ok {
		applied := s.apply(ctx, gen, func() {
			s.replaceLocked(players)
			s.origin = DataOriginCache
			s.capturedAt = capturedAt
			s.errMessage = ""
		})
		if !applied {
			return ErrSyncDiscarded
		}
		s.logger.InfoContext(ctx, "loaded players from cache", "key", key, "players", len(players), "user_id", sess.UserID)
		return nil
	}

	players, err := s.source.Fetch(ctx)
	if err != nil {
		applied := s.apply(ctx, gen, func() {
			s.errMessage = fetchErrorPrefix + err.Error()
		})
		if !applied {
			return ErrSyncDiscarded
		}
		s.logger.ErrorContext(ctx, "fetch players failed", "error", err)
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if players == nil {
		players = []prop.Player{}
	}

	capturedAt := snapshot.TruncateTimestamp(s.now())
	applied := s.apply(ctx, gen, func() {
		s.replaceLocked(players)
		s.origin = DataOriginUpstream
		s.capturedAt = capturedAt
		s.errMessage = ""
	})
	if !applied {
		return ErrSyncDiscarded
	}
	s.logger.InfoContext(ctx, "loaded players from upstream", "key", key, "players", len(players))

	s.publish(ctx, snapshot.Entry{Key: key, Timestamp: capturedAt}, players)
	return nil
}

func (s *SyncService) readFresh(ctx context.Context, key string) ([]prop.Player, time.Time, bool) {
	entry, ok, err := s.store.Read(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "read snapshot failed, treating as miss", "key", key, "error", err)
		return nil, time.Time{}, false
	}
	if !ok {
		return nil, time.Time{}, false
	}
	if !entry.Fresh(s.now()) {
		s.logger.InfoContext(ctx, "snapshot is stale", "key", key, "captured_at", entry.Timestamp)
		return nil, time.Time{}, false
	}

	players, err := snapshot.DecodePlayers(entry.Payload)
	if err == nil {
		err = prop.ValidateCollection(players)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "snapshot payload unusable, treating as miss", "key", key, "error", err)
		return nil, time.Time{}, false
	}
	return players, entry.Timestamp, true
}

// publish is best effort: a failed write leaves the loaded state in place.
func (s *SyncService) publish(ctx context.Context, entry snapshot.Entry, players []prop.Player) {
	payload, err := snapshot.EncodePlayers(players)
	if err != nil {
		s.logger.WarnContext(ctx, "encode snapshot failed", "key", entry.Key, "error", err)
		return
	}
	entry.Payload = payload

	if err := s.store.Write(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "write snapshot failed", "key", entry.Key, "error", err)
	}
}

func (s *SyncService) begin() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, false
	}
	s.generation++
	s.loading = true
	return s.generation, true
}

// apply runs fn under the write lock unless the service was closed, the
// context was cancelled, or a newer load started in the meantime.
func (s *SyncService) apply(ctx context.Context, gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || ctx.Err() != nil || gen != s.generation {
		return false
	}
	fn()
	s.loading = false
	return true
}

func (s *SyncService) replaceLocked(players []prop.Player) {
	s.players = players
	s.index = make(map[string]int, len(players))
	for i, p := range players {
		s.index[p.ID] = i
	}
}

// Close makes any in-flight load discard its result.
func (s *SyncService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *SyncService) Status() SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SyncStatus{
		Loading:    s.loading,
		Error:      s.errMessage,
		Origin:     s.origin,
		CapturedAt: s.capturedAt,
		Players:    len(s.players),
		BetSheet:   s.sheet.Len(),
	}
}

// Players returns a copy of the current collection.
func (s *SyncService) Players() []prop.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]prop.Player(nil), s.players...)
}

func (s *SyncService) Board(ctx context.Context, filter board.Filter) board.View {
	_, span := startUsecaseSpan(ctx, "usecase.SyncService.Board")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return board.Build(s.players, filter, s.now(), s.loc)
}

func (s *SyncService) Games(ctx context.Context) []board.DateGroup {
	_, span := startUsecaseSpan(ctx, "usecase.SyncService.Games")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return board.GroupByDate(board.DeriveGames(s.players), s.now(), s.loc)
}
