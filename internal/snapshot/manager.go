// Package snapshot manages the current allocation snapshot: fetching it
// from the campus API in the background, loading it into the query store
// and persisting a cache copy for offline starts.
package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-floormap/backend/internal/models"
	"github.com/campus-floormap/backend/internal/store"
)

// fetchTimeout bounds one background refresh end to end.
const fetchTimeout = 2 * time.Minute

// Fetcher pulls the timetabling document from the campus API.
// Satisfied by *campus.Client.
type Fetcher interface {
	FetchAllocations(ctx context.Context) (models.Center, []models.Allocation, error)
}

// State is one ready snapshot together with its query store.
type State struct {
	Snapshot    *models.Snapshot
	Center      models.Center
	Store       *store.Store
	Allocations []models.Allocation
}

// Options configures a Manager.
type Options struct {
	TempDir     string
	CacheFile   string
	Threads     int
	MemoryLimit string
	UseCache    bool
}

// Manager owns the current snapshot and runs refreshes one at a time.
type Manager struct {
	mu        sync.RWMutex
	current   *State
	pending   *models.Snapshot
	snapshots map[string]*models.Snapshot

	fetcher Fetcher
	opts    Options
	log     *zap.Logger

	// notify is invoked outside the lock on every status change.
	notify func(models.Snapshot)
}

// NewManager creates a snapshot manager. It does not fetch anything by
// itself; call Bootstrap or Refresh.
func NewManager(fetcher Fetcher, opts Options, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		snapshots: make(map[string]*models.Snapshot),
		fetcher:   fetcher,
		opts:      opts,
		log:       log,
	}
}

// SetNotify registers a callback fired on snapshot status changes.
func (m *Manager) SetNotify(fn func(models.Snapshot)) {
	m.mu.Lock()
	m.notify = fn
	m.mu.Unlock()
}

// Bootstrap loads the cached snapshot from disk if one exists, so the
// dashboard has data before the first refresh completes.
func (m *Manager) Bootstrap() error {
	if !m.opts.UseCache || m.opts.CacheFile == "" {
		return nil
	}
	cached, err := LoadCache(m.opts.CacheFile)
	if err != nil {
		return err
	}
	if cached == nil {
		return nil
	}

	snap := models.NewSnapshot(uuid.New().String(), "cache")
	if err := m.install(snap, cached.Center, cached.Allocations, cached.FetchedAt); err != nil {
		return err
	}
	m.log.Info("snapshot restored from cache",
		zap.Int("allocations", len(cached.Allocations)),
		zap.String("center", cached.Center.Name))
	return nil
}

// Refresh starts a background fetch unless one is already running, in
// which case the running snapshot is returned.
func (m *Manager) Refresh() *models.Snapshot {
	m.mu.Lock()
	if m.pending != nil {
		snap := *m.pending
		m.mu.Unlock()
		return &snap
	}

	snap := models.NewSnapshot(uuid.New().String(), "api")
	m.pending = snap
	m.snapshots[snap.ID] = snap
	m.mu.Unlock()

	go m.runRefresh(snap.ID)

	out := *snap
	return &out
}

func (m *Manager) runRefresh(id string) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("refresh panicked", zap.String("snapshot", shortID(id)), zap.Any("panic", r))
			m.failRefresh(id, fmt.Sprintf("refresh panicked: %v", r))
		}
	}()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	m.setProgress(id, models.SnapshotStatusFetching, 5)
	m.log.Info("refresh started", zap.String("snapshot", shortID(id)))

	center, allocations, err := m.fetcher.FetchAllocations(ctx)
	if err != nil {
		m.log.Error("fetch failed", zap.String("snapshot", shortID(id)), zap.Error(err))
		m.failRefresh(id, fmt.Sprintf("fetching allocations: %v", err))
		return
	}
	m.setProgress(id, models.SnapshotStatusFetching, 60)

	m.mu.RLock()
	snap, ok := m.snapshots[id]
	m.mu.RUnlock()
	if !ok {
		return
	}

	fetchedAt := time.Now().UnixMilli()
	if err := m.install(snap, center, allocations, fetchedAt); err != nil {
		m.failRefresh(id, err.Error())
		return
	}

	if m.opts.CacheFile != "" {
		if err := SaveCache(m.opts.CacheFile, &Cached{
			Center:      center,
			Allocations: allocations,
			FetchedAt:   fetchedAt,
		}); err != nil {
			m.log.Warn("saving snapshot cache failed", zap.Error(err))
		}
	}

	m.log.Info("refresh complete",
		zap.String("snapshot", shortID(id)),
		zap.Int("allocations", len(allocations)),
		zap.Duration("elapsed", time.Since(start)))
}

// storeDrainDelay is how long a replaced store stays open after the swap,
// so handlers that grabbed the previous state can finish their queries.
var storeDrainDelay = 30 * time.Second

// install loads allocations into a fresh store and swaps it in as the
// current state. The previous store is closed after a drain delay.
func (m *Manager) install(snap *models.Snapshot, center models.Center, allocations []models.Allocation, fetchedAt int64) error {
	m.setProgress(snap.ID, models.SnapshotStatusFetching, 90)

	st, err := store.Open(m.opts.TempDir, snap.ID, m.opts.Threads, m.opts.MemoryLimit, m.log)
	if err != nil {
		return fmt.Errorf("opening query store: %w", err)
	}
	if err := st.Load(allocations); err != nil {
		st.Close()
		return fmt.Errorf("loading query store: %w", err)
	}

	rooms := make(map[int]struct{}, len(allocations))
	for _, a := range allocations {
		rooms[a.Room.ID] = struct{}{}
	}

	m.mu.Lock()
	old := m.current
	snap.Status = models.SnapshotStatusReady
	snap.Progress = 100
	snap.Center = center
	snap.FetchedAt = fetchedAt
	snap.RoomCount = len(rooms)
	snap.CourseCount = len(allocations)
	m.snapshots[snap.ID] = snap
	m.current = &State{Snapshot: snap, Center: center, Store: st, Allocations: allocations}
	if m.pending != nil && m.pending.ID == snap.ID {
		m.pending = nil
	}
	notify := m.notify
	published := *snap
	m.mu.Unlock()

	if old != nil && old.Store != nil {
		drained := old.Store
		time.AfterFunc(storeDrainDelay, func() {
			drained.Close()
		})
	}
	if notify != nil {
		notify(published)
	}
	return nil
}

func (m *Manager) failRefresh(id, reason string) {
	m.mu.Lock()
	snap, ok := m.snapshots[id]
	if ok {
		snap.Status = models.SnapshotStatusError
		snap.Errors = append(snap.Errors, reason)
	}
	if m.pending != nil && m.pending.ID == id {
		m.pending = nil
	}
	notify := m.notify
	var published models.Snapshot
	if ok {
		published = *snap
	}
	m.mu.Unlock()

	if ok && notify != nil {
		notify(published)
	}
}

func (m *Manager) setProgress(id string, status models.SnapshotStatus, progress float64) {
	m.mu.Lock()
	snap, ok := m.snapshots[id]
	if ok {
		snap.Status = status
		snap.Progress = progress
	}
	notify := m.notify
	var published models.Snapshot
	if ok {
		published = *snap
	}
	m.mu.Unlock()

	if ok && notify != nil {
		notify(published)
	}
}

// Get returns a snapshot by ID.
func (m *Manager) Get(id string) (models.Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[id]
	if !ok {
		return models.Snapshot{}, false
	}
	return *snap, true
}

// Current returns the ready state, or false when no snapshot has loaded yet.
func (m *Manager) Current() (*State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, false
	}
	return m.current, true
}

// Close releases the current store.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.current.Store != nil {
		return m.current.Store.Close()
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
