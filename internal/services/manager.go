// Package services provides service orchestration for the TUI.
package services

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"github.com/robfig/cron/v3"

	"github.com/j-veylop/vapi-call-browser/internal/config"
	"github.com/j-veylop/vapi-call-browser/internal/logger"
	"github.com/j-veylop/vapi-call-browser/internal/models"
	"github.com/j-veylop/vapi-call-browser/internal/netcheck"
	"github.com/j-veylop/vapi-call-browser/internal/services/refresh"
	"github.com/j-veylop/vapi-call-browser/internal/services/watcher"
	"github.com/j-veylop/vapi-call-browser/internal/store"
	"github.com/j-veylop/vapi-call-browser/internal/vapi"
)

// Writes from our own refresh cycle reach the file watcher too; changes this
// soon after a cycle finished are treated as ours, not as another process's.
const ownWriteWindow = 2 * time.Second

type (
	// RefreshStartedEvent is emitted when an update cycle has been accepted.
	RefreshStartedEvent struct {
		Manual bool
	}

	// CacheUpdatedEvent is emitted after a background refresh has been
	// durably written to the cache.
	CacheUpdatedEvent struct {
		Calls    []models.CallRecord
		NewCalls int
	}

	// CacheFileChangedEvent is emitted when another process rewrote the
	// cache database.
	CacheFileChangedEvent struct {
		Path string
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (RefreshStartedEvent) isServiceEvent()   {}
func (CacheUpdatedEvent) isServiceEvent()     {}
func (CacheFileChangedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()            {}

// Manager orchestrates the call store, the API client, the refresh cycle and
// event routing. A missing or broken database degrades it to network-only
// operation instead of failing.
type Manager struct {
	mu           sync.RWMutex
	cfg          *config.Config
	store        *store.Store
	client       *vapi.Client
	probe        *netcheck.Probe
	refresher    *refresh.Manager
	scheduler    *cron.Cron
	watcher      *watcher.Service
	initialTimer *time.Timer
	eventChan    chan ServiceEvent
	stopChan     chan struct{}
	subscribers  []chan<- ServiceEvent
}

// NewManager wires the services together. Background work (periodic refresh,
// file watching) does not run until StartBackground is called, so one-shot
// commands can use the manager without spawning goroutines.
func NewManager(cfg *config.Config) *Manager {
	m := &Manager{
		cfg:       cfg,
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
	}

	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open call cache, continuing without persistence", "path", cfg.DatabasePath, "error", err)
	} else {
		m.store = st
	}

	m.client = vapi.New(cfg.BaseURL, cfg.APIKey, cfg.HTTPTimeout)
	m.probe = netcheck.New(cfg.ProbeURL)
	m.scheduler = cron.New()

	m.refresher = refresh.New(m.refreshStore(), m.client, m.probe, refresh.Options{
		ProbeTimeout: cfg.ProbeTimeout,
		Foreground:   cfg.Foreground,
		OnUpdate:     m.handleCacheUpdate,
	})
	if cfg.Offline {
		m.refresher.SetOffline(true)
	}

	return m
}

// refreshStore adapts the concrete store to the refresher's interface. A nil
// *store.Store must become a nil interface, not an interface holding a nil
// pointer.
func (m *Manager) refreshStore() refresh.Store {
	if m.store == nil {
		return nil
	}
	return m.store
}

// StartBackground launches the refresh schedule, an initial freshen shortly
// after startup, and the cache file watcher.
func (m *Manager) StartBackground() {
	if _, err := m.scheduler.AddFunc(m.cfg.RefreshSchedule, m.periodicRefresh); err != nil {
		logger.Error("invalid refresh schedule, periodic refresh disabled", "schedule", m.cfg.RefreshSchedule, "error", err)
	}
	m.scheduler.Start()

	if m.cfg.InitialRefreshDelay > 0 {
		m.initialTimer = time.AfterFunc(m.cfg.InitialRefreshDelay, m.periodicRefresh)
	}

	if m.store != nil {
		w, err := watcher.New(m.store.Path())
		if err != nil {
			logger.Warn("cache file watching disabled", "error", err)
		} else {
			m.watcher = w
		}
	}

	go m.routeEvents()
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	var watchEvents <-chan watcher.Event
	if m.watcher != nil {
		watchEvents = m.watcher.Events()
	}

	for {
		select {
		case event, ok := <-watchEvents:
			if !ok {
				watchEvents = nil
				continue
			}
			m.handleWatcherEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleWatcherEvent(event watcher.Event) {
	switch event.Type {
	case watcher.EventFileChanged:
		if m.refresher.State() == refresh.StateUpdating || time.Since(m.refresher.LastUpdate()) < ownWriteWindow {
			logger.Debug("ignoring cache file change caused by own refresh")
			return
		}
		logger.Info("cache file changed externally", "path", event.Path)
		m.broadcast(CacheFileChangedEvent{Path: event.Path})

	case watcher.EventError:
		m.broadcast(ErrorEvent{Service: "watcher", Error: event.Error})
	}
}

// handleCacheUpdate runs after a background cycle has written fresh records.
func (m *Manager) handleCacheUpdate(calls []models.CallRecord, newCalls int) {
	m.broadcast(CacheUpdatedEvent{Calls: calls, NewCalls: newCalls})

	if m.cfg.Notify && newCalls > 0 {
		body := fmt.Sprintf("%d new calls cached", newCalls)
		if newCalls == 1 {
			body = "1 new call cached"
		}
		_ = beeep.Notify("Vapi call browser", body, "")
	}
}

func (m *Manager) periodicRefresh() {
	if m.refresher.Start() {
		m.broadcast(RefreshStartedEvent{})
	}
}

// GetCalls returns the records to display right now, consulting the cache
// first and the API only when the reconciliation policy calls for it. It
// never fails: a nil result means there is genuinely nothing to show.
func (m *Manager) GetCalls(skipRemoteCheck, offlineOverride bool) []models.CallRecord {
	return m.refresher.Resolve(skipRemoteCheck, offlineOverride)
}

// CachedCalls reads the cache without touching the network. Used after an
// external process rewrote the database file.
func (m *Manager) CachedCalls() []models.CallRecord {
	if m.store == nil {
		return nil
	}
	calls, err := m.store.ListAll()
	if err != nil {
		logger.Error("failed to read call cache", "error", err)
		return nil
	}
	return calls
}

// StartRefresh asks for an update cycle. It reports false when a cycle is
// already running or offline mode is set.
func (m *Manager) StartRefresh() bool {
	accepted := m.refresher.Start()
	if accepted {
		m.broadcast(RefreshStartedEvent{Manual: true})
	} else {
		logger.Info("refresh request declined", "state", m.refresher.State().String(), "offline", m.refresher.Offline())
	}
	return accepted
}

// RefreshForeground runs one synchronous update cycle, reporting progress
// through print. Used by the refresh command; never by the TUI.
func (m *Manager) RefreshForeground(print func(string)) bool {
	r := refresh.New(m.refreshStore(), m.client, m.probe, refresh.Options{
		ProbeTimeout: m.cfg.ProbeTimeout,
		Foreground:   true,
		Progress:     print,
		OnUpdate:     m.handleCacheUpdate,
	})
	r.SetOffline(m.refresher.Offline())
	return r.Start()
}

// RefreshState returns the refresh cycle state.
func (m *Manager) RefreshState() refresh.State {
	return m.refresher.State()
}

// LastUpdate returns when the most recent cycle finished.
func (m *Manager) LastUpdate() time.Time {
	return m.refresher.LastUpdate()
}

// SetOffline flips the user-requested offline flag.
func (m *Manager) SetOffline(offline bool) {
	logger.Info("offline mode changed", "offline", offline)
	m.refresher.SetOffline(offline)
}

// Offline reports the user-requested offline flag.
func (m *Manager) Offline() bool {
	return m.refresher.Offline()
}

// SkipCheck reports whether call reads should skip the remote freshness probe.
func (m *Manager) SkipCheck() bool {
	return m.cfg.SkipCheck
}

// CacheStats describes the cache database without ever failing.
func (m *Manager) CacheStats() models.CacheStats {
	if m.store == nil {
		return store.StatsAt(m.cfg.DatabasePath)
	}
	return m.store.Stats()
}

// DailyStats aggregates cached calls per day over the trailing window.
func (m *Manager) DailyStats(days int) ([]models.DailyCallStats, error) {
	if m.store == nil {
		return nil, fmt.Errorf("call cache is not available")
	}
	return m.store.DailyStats(days)
}

// RawCall retrieves the raw API JSON for one call.
func (m *Manager) RawCall(id string) ([]byte, error) {
	return m.client.FetchRaw(id)
}

// Store returns the call store, nil when the database could not be opened.
func (m *Manager) Store() *store.Store {
	return m.store
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Close stops background work and releases the store.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.scheduler.Stop()
	if m.initialTimer != nil {
		m.initialTimer.Stop()
	}

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.store != nil {
		if err := m.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
