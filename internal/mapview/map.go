// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package mapview

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/chaimap/internal/discovery"
	"github.com/tomtom215/chaimap/internal/logging"
	"github.com/tomtom215/chaimap/internal/metrics"
	"github.com/tomtom215/chaimap/internal/models"
	"github.com/tomtom215/chaimap/internal/recommend"
	"github.com/tomtom215/chaimap/internal/repository"
	"github.com/tomtom215/chaimap/internal/viewport"
)

// ErrNoSession is returned by commands that need the acting user when none
// is configured.
var ErrNoSession = errors.New("mapview: no session user")

// Source is the data the map reads and writes. *repository.Repository
// satisfies it.
type Source interface {
	LoadSpots(ctx context.Context) ([]models.Spot, repository.LoadReport)
	LoadProfile(ctx context.Context, uid string) (*models.UserProfile, error)
	OwnRatings(ctx context.Context, uid string) ([]models.Rating, error)
	FriendRatings(ctx context.Context, friendUIDs []string) ([]models.Rating, error)
	CreateSpot(ctx context.Context, in repository.NewSpot) (string, error)
	CreateRating(ctx context.Context, in repository.NewRating) (string, error)
}

// Geocoder resolves free text to a coordinate. *geocode.Client satisfies it.
type Geocoder interface {
	Geocode(ctx context.Context, text string) (models.Coordinate, bool, error)
}

// Config holds the map's settings.
type Config struct {
	// UserID is the acting user.
	UserID string

	Classifier recommend.Classifier

	// MemoSize bounds the score memo. Zero disables memoization.
	MemoSize int

	// SearchDebounce delays geocoding after each query change.
	SearchDebounce time.Duration

	// ReloadTimeout bounds a shared reload, which outlives the caller that
	// started it.
	ReloadTimeout time.Duration

	// ReloadOnWrite triggers a background reload after a successful write.
	// Disable it when change events already trigger reloads.
	ReloadOnWrite bool

	// CommandBuffer is the capacity of the command queue.
	CommandBuffer int
}

// DefaultConfig returns the standard settings for the given user.
func DefaultConfig(userID string) Config {
	return Config{
		UserID:         userID,
		Classifier:     recommend.DefaultClassifier(),
		MemoSize:       10000,
		SearchDebounce: 300 * time.Millisecond,
		ReloadTimeout:  30 * time.Second,
		ReloadOnWrite:  true,
		CommandBuffer:  64,
	}
}

type command func(ctx context.Context)

// state is owned by the actor goroutine.
type state struct {
	spots   []models.Spot
	profile *models.UserProfile
	own     []models.Rating
	friends []models.Rating
	// spotsDegraded is set when a spot source failed on the last reload,
	// inputsDegraded when a personalization input failed on the last load.
	spotsDegraded  bool
	inputsDegraded bool
	loadedAt       time.Time

	filter discovery.Filter
	order  models.SortOrder
	query  string
	// queryGen is the search generation query was set by.
	queryGen uint64
	location *models.Coordinate

	// dataVersion changes whenever a scoring input changes.
	dataVersion uint64
	version     uint64
}

// Map is the map screen's state holder. Create it with New and run Serve,
// typically under a supervisor.
type Map struct {
	cfg        Config
	source     Source
	geocoder   Geocoder
	reconciler *viewport.Reconciler
	memo       *recommend.Memo
	logger     zerolog.Logger
	now        func() time.Time

	commands chan command
	snapshot atomic.Pointer[Snapshot]
	flight   singleflight.Group
	st       state

	searchGen    atomic.Uint64
	searchMu     sync.Mutex
	searchCancel context.CancelFunc
	runCtx       context.Context

	subsMu sync.Mutex
	subs   map[chan uint64]struct{}
}

// Option configures a Map.
type Option func(*Map)

// WithGeocoder enables geocoding of search queries.
func WithGeocoder(g Geocoder) Option {
	return func(m *Map) { m.geocoder = g }
}

// WithClock overrides the time source used for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Map) { m.now = now }
}

// New creates a map over source. The reconciler must not be used by anyone
// else once handed over.
func New(cfg Config, source Source, reconciler *viewport.Reconciler, opts ...Option) *Map {
	if cfg.CommandBuffer <= 0 {
		cfg.CommandBuffer = 64
	}
	if cfg.ReloadTimeout <= 0 {
		cfg.ReloadTimeout = 30 * time.Second
	}
	if cfg.Classifier.Threshold == 0 {
		cfg.Classifier = recommend.DefaultClassifier()
	}

	m := &Map{
		cfg:        cfg,
		source:     source,
		reconciler: reconciler,
		logger:     logging.WithComponent("mapview"),
		now:        time.Now,
		commands:   make(chan command, cfg.CommandBuffer),
		runCtx:     context.Background(),
		subs:       make(map[chan uint64]struct{}),
	}
	if cfg.MemoSize > 0 {
		m.memo = recommend.NewMemo(cfg.MemoSize)
	}
	for _, opt := range opts {
		opt(m)
	}

	m.st.filter = discovery.DefaultFilter()
	m.st.order = models.SortPersonalization
	m.publish()
	return m
}

// Serve runs the actor until ctx is canceled. It implements suture.Service.
func (m *Map) Serve(ctx context.Context) error {
	m.searchMu.Lock()
	m.runCtx = ctx
	m.searchMu.Unlock()

	vp := m.reconciler.Start(ctx)
	m.publish()
	m.logger.Info().
		Float64("latitude", vp.Center.Latitude).
		Float64("longitude", vp.Center.Longitude).
		Msg("Map state holder started")

	for {
		select {
		case <-ctx.Done():
			m.cancelSearch()
			m.logger.Info().Msg("Map state holder stopped")
			return ctx.Err()
		case cmd := <-m.commands:
			cmd(ctx)
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (m *Map) String() string {
	return "mapview"
}

// exec runs fn on the actor and waits for it to finish. If ctx ends first
// the command may still run later.
func (m *Map) exec(ctx context.Context, fn command) error {
	done := make(chan struct{})
	cmd := func(actx context.Context) {
		defer close(done)
		fn(actx)
	}

	select {
	case m.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// publish derives and stores a new snapshot. Actor only, except from New.
func (m *Map) publish() {
	st := &m.st
	st.version++

	in := recommend.Inputs{Profile: st.profile, OwnRatings: st.own, FriendRatings: st.friends}
	score := m.memo.Scorer(st.dataVersion, in)
	personalized := m.cfg.Classifier.PersonalizedIDs(st.spots, score)
	displayed := discovery.View(st.spots, discovery.Query{
		Filter:   st.filter,
		Order:    st.order,
		Search:   st.query,
		Location: st.location,
	}, personalized, score)

	snap := &Snapshot{
		Version:       st.version,
		Spots:         st.spots,
		Displayed:     displayed,
		Personalized:  personalized,
		Viewport:      m.reconciler.Current(),
		Interacting:   m.reconciler.Interacting(),
		Filter:        st.filter,
		Order:         st.order,
		Query:         st.query,
		Location:      st.location,
		Profile:       st.profile,
		OwnRatings:    st.own,
		FriendRatings: st.friends,
		Degraded:      st.spotsDegraded || st.inputsDegraded,
		LoadedAt:      st.loadedAt,
		UpdatedAt:     m.now(),
	}
	m.snapshot.Store(snap)
	metrics.RecordSnapshot(snap.Version, len(snap.Spots), len(personalized))
	m.notify(snap.Version)
}

// Subscribe returns a channel receiving the version of each new snapshot
// and a function that ends the subscription. A subscriber that falls behind
// only receives the latest version.
func (m *Map) Subscribe() (<-chan uint64, func()) {
	ch := make(chan uint64, 1)
	m.subsMu.Lock()
	m.subs[ch] = struct{}{}
	m.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.subsMu.Lock()
			delete(m.subs, ch)
			m.subsMu.Unlock()
		})
	}
}

func (m *Map) notify(version uint64) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for ch := range m.subs {
		select {
		case ch <- version:
			continue
		default:
		}
		// Replace the stale pending version with the latest one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- version:
		default:
		}
	}
}
