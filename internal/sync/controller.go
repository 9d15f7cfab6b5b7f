// Package sync owns the watering checklist lifecycle: hydrate from the
// local cache for a fast first paint, fetch fresh state from the
// backend, reconcile and re-cache, and keep refreshing silently in the
// background. Optimistic mark-as-watered mutations are patched into
// the held snapshot and reconciled against server truth shortly after.
package sync

import (
	"context"
	"log/slog"
	gosync "sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/greener/waterdesk/internal/model"
	"github.com/greener/waterdesk/internal/store"
)

// Backend is the slice of the API client the controller needs.
type Backend interface {
	GetWateringChecklist(ctx context.Context) (*model.ChecklistSnapshot, error)
	MarkPlantWatered(ctx context.Context, plantID string, method model.ContactMethod, coords *model.Coordinates) (*model.ChecklistItem, error)
	GetOptimizedRoute(ctx context.Context) (*model.OptimizedRoute, error)
	GetBusinessWeather(ctx context.Context) (*model.WeatherInfo, error)
}

// ChecklistMsg is a tea.Msg carrying a fresh or cache-hydrated snapshot.
type ChecklistMsg struct {
	Snapshot *model.ChecklistSnapshot

	// FromCache is true for the first-paint hydration, before any
	// network round trip.
	FromCache bool

	// Silent is true for background refreshes: no spinner was shown
	// and no error dialog should follow.
	Silent bool
}

// FetchErrorMsg is a tea.Msg sent when a checklist fetch fails.
// Silent failures are for the status line only, never a dialog.
type FetchErrorMsg struct {
	Err    error
	Silent bool
}

// RouteMsg carries the server-computed watering route.
type RouteMsg struct {
	Route *model.OptimizedRoute
}

// WeatherMsg carries best-effort weather for the business location.
type WeatherMsg struct {
	Weather *model.WeatherInfo
}

// WateredMsg is sent after a successful mark-as-watered, with the
// optimistically patched snapshot.
type WateredMsg struct {
	PlantID  string
	Snapshot *model.ChecklistSnapshot
}

// MarkFailedMsg is sent when a mark-as-watered call fails. State is
// untouched; the user gets a manual retry.
type MarkFailedMsg struct {
	PlantID string
	Method  model.ContactMethod
	Err     error
}

// fetchTimeout bounds a single checklist fetch.
const fetchTimeout = 30 * time.Second

// reconcileDelay is how long after an optimistic mutation the
// controller waits before re-fetching server truth. The aggregate
// counts may be briefly stale inside this window; that is deliberate.
const reconcileDelay = time.Second

// fetchRequest asks the run loop for an immediate fetch.
type fetchRequest struct {
	silent bool
}

// Controller orchestrates cache hydration, backend fetches, the
// silent-refresh ticker, and optimistic mutations for one business.
type Controller struct {
	store      store.Store
	backend    Backend
	businessID string
	interval   time.Duration
	autoFetch  bool
	log        *slog.Logger
	now        func() time.Time

	// seq is the latest issued fetch sequence number. A response is
	// applied only when its sequence still matches, so a manual
	// refresh racing the ticker cannot clobber newer state.
	seq atomic.Uint64

	mu       gosync.Mutex
	current  *model.ChecklistSnapshot
	hasRoute bool
	running  bool

	resultCh  chan tea.Msg
	triggerCh chan fetchRequest
	stopCh    chan struct{}
}

// Option configures a Controller.
type Option func(*Controller)

// WithInterval sets the silent-refresh cadence.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) { c.interval = d }
}

// WithAutoRefresh enables or disables the background ticker.
func WithAutoRefresh(enabled bool) Option {
	return func(c *Controller) { c.autoFetch = enabled }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a Controller for the given business.
func New(s store.Store, backend Backend, businessID string, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:      s,
		backend:    backend,
		businessID: businessID,
		interval:   60 * time.Second,
		autoFetch:  true,
		log:        logger,
		now:        time.Now,
		resultCh:   make(chan tea.Msg, 16),
		triggerCh:  make(chan fetchRequest, 16),
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// Start hydrates from cache, kicks off the first foreground fetch, and
// starts the silent-refresh loop. The returned command subscribes the
// Bubble Tea runtime to controller results.
func (c *Controller) Start() tea.Cmd {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return c.waitForResult()
	}
	c.running = true
	c.mu.Unlock()

	go c.hydrate()
	go c.run()

	c.requestFetch(false)

	return c.waitForResult()
}

// Stop halts the refresh loop. In-flight fetches finish but their
// results are dropped once the runtime stops reading.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	close(c.stopCh)
	c.running = false
}

// Refresh triggers an immediate foreground fetch (pull-to-refresh).
func (c *Controller) Refresh() tea.Cmd {
	c.requestFetch(false)
	return nil
}

// SetAutoRefresh enables or disables the background ticker. The
// ticker keeps running; disabled ticks are skipped.
func (c *Controller) SetAutoRefresh(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoFetch = enabled
}

// AutoRefresh reports whether background refresh is enabled.
func (c *Controller) AutoRefresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoFetch
}

// Snapshot returns the currently held snapshot, or nil before the
// first hydration or fetch completes.
func (c *Controller) Snapshot() *model.ChecklistSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// WaitForNext returns a tea.Cmd that waits for the next controller
// result. Call it again after each received message to keep listening.
func (c *Controller) WaitForNext() tea.Cmd {
	return c.waitForResult()
}

// hydrate reads the cached snapshot, if any, and publishes it for the
// fast first paint. Cache errors are swallowed and logged; absence is
// normal on first run.
func (c *Controller) hydrate() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	snap, err := c.store.GetSnapshot(ctx, c.businessID)
	if err != nil {
		c.log.Warn("reading cached checklist", "error", err)
		return
	}
	if snap == nil {
		return
	}

	c.mu.Lock()
	// A fetch may already have landed; never regress to cache.
	if c.current == nil {
		c.current = snap
	} else {
		snap = nil
	}
	c.mu.Unlock()

	if snap != nil {
		c.send(ChecklistMsg{Snapshot: snap, FromCache: true})
	}
}

// run is the refresh loop: ticker-driven silent fetches plus manual
// triggers. Exits when Stop is called.
func (c *Controller) run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			if c.AutoRefresh() {
				c.fetch(true)
			}
		case req := <-c.triggerCh:
			c.fetch(req.silent)
		}
	}
}

// requestFetch queues a fetch without blocking; a full queue means a
// fetch is already pending.
func (c *Controller) requestFetch(silent bool) {
	select {
	case c.triggerCh <- fetchRequest{silent: silent}:
	default:
	}
}

// fetch performs one checklist round trip and reconciles the result.
func (c *Controller) fetch(silent bool) {
	seq := c.seq.Add(1)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	snap, err := c.backend.GetWateringChecklist(ctx)
	if err != nil {
		if silent {
			c.log.Warn("silent checklist refresh failed", "error", err)
		}
		c.send(FetchErrorMsg{Err: err, Silent: silent})
		return
	}

	// A newer fetch was issued while this one was in flight; its
	// response, not ours, reflects latest intent.
	if seq != c.seq.Load() {
		c.log.Debug("discarding stale checklist response", "seq", seq)
		return
	}

	snap.Recount()
	snap.Sort()

	c.mu.Lock()
	c.current = snap
	needsRoute := snap.NeedsWateringCount > 0 && !c.hasRoute
	c.mu.Unlock()

	if err := c.store.SaveSnapshot(ctx, c.businessID, snap); err != nil {
		c.log.Warn("caching checklist snapshot", "error", err)
	}

	c.send(ChecklistMsg{Snapshot: snap, Silent: silent})

	if needsRoute {
		c.fetchRoute()
	}
	if !silent {
		c.fetchWeather()
	}
}

// fetchRoute fetches the optimized route. Failures never affect the
// checklist display.
func (c *Controller) fetchRoute() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	route, err := c.backend.GetOptimizedRoute(ctx)
	if err != nil {
		c.log.Warn("fetching optimized route", "error", err)
		return
	}

	c.mu.Lock()
	c.hasRoute = true
	c.mu.Unlock()

	c.send(RouteMsg{Route: route})
}

// fetchWeather fetches business weather, best effort.
func (c *Controller) fetchWeather() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	weather, err := c.backend.GetBusinessWeather(ctx)
	if err != nil {
		c.log.Warn("fetching business weather", "error", err)
		return
	}
	c.send(WeatherMsg{Weather: weather})
}

// MarkWatered records a watering on the backend and, on success,
// applies the optimistic patch locally: needsWatering off, lastWatered
// now, completed on, counts recomputed (clamped by recounting). A
// silent reconciling fetch follows after reconcileDelay. On failure
// nothing changes and the UI offers a manual retry.
func (c *Controller) MarkWatered(plantID string, method model.ContactMethod, coords *model.Coordinates) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		_, err := c.backend.MarkPlantWatered(ctx, plantID, method, coords)
		if err != nil {
			return MarkFailedMsg{PlantID: plantID, Method: method, Err: err}
		}

		snap := c.applyWateredPatch(plantID)

		if snap != nil {
			if err := c.store.SaveSnapshot(ctx, c.businessID, snap); err != nil {
				c.log.Warn("caching patched snapshot", "error", err)
			}
		}

		// Reconcile with server truth shortly after; the backend may
		// have recomputed schedules we cannot see from here.
		time.AfterFunc(reconcileDelay, func() {
			c.requestFetch(true)
		})

		return WateredMsg{PlantID: plantID, Snapshot: snap}
	}
}

// applyWateredPatch patches the held snapshot in place and returns it.
// Marking an already-watered plant changes nothing beyond the
// timestamp; counts are recomputed from items, so they can never go
// negative.
func (c *Controller) applyWateredPatch(plantID string) *model.ChecklistSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil
	}

	// Patch a copy so snapshots already handed to the UI stay frozen.
	snap := *c.current
	snap.Checklist = append([]model.ChecklistItem(nil), c.current.Checklist...)

	item := snap.Find(plantID)
	if item != nil {
		now := c.now().UTC()
		item.NeedsWatering = false
		item.LastWatered = &now
		item.Completed = true
	}
	snap.Recount()
	snap.Sort()

	c.current = &snap
	return &snap
}

// send publishes a result without blocking; drops when the buffer is
// full so the refresh loop can never stall behind a slow UI.
func (c *Controller) send(msg tea.Msg) {
	select {
	case c.resultCh <- msg:
	default:
	}
}

// waitForResult returns a tea.Cmd that waits for the next result.
func (c *Controller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-c.resultCh
		if !ok {
			return nil
		}
		return msg
	}
}
