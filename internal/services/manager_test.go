package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/vapi-call-browser/internal/config"
	"github.com/j-veylop/vapi-call-browser/internal/models"
	"github.com/j-veylop/vapi-call-browser/internal/services/refresh"
	"github.com/j-veylop/vapi-call-browser/internal/services/watcher"
)

// newTestConfig points the probe at a closed local port so every test sees a
// deterministic "network down" without touching the real network.
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabasePath:    filepath.Join(t.TempDir(), "calls.db"),
		BaseURL:         "https://api.vapi.ai",
		ProbeURL:        "http://127.0.0.1:1",
		ProbeTimeout:    200 * time.Millisecond,
		HTTPTimeout:     time.Second,
		RefreshSchedule: "@every 1h",
	}
}

func seedCall(t *testing.T, mgr *Manager, id string, start time.Time) {
	t.Helper()
	if mgr.Store() == nil {
		t.Fatal("store not available for seeding")
	}
	call := models.CallRecord{
		ID:     id,
		Caller: "+15551234567",
		Start:  start,
		End:    start.Add(time.Minute),
	}
	if err := mgr.Store().Upsert([]models.CallRecord{call}, time.Now()); err != nil {
		t.Fatalf("seeding call failed: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	mgr := NewManager(newTestConfig(t))
	defer mgr.Close()

	if mgr.Store() == nil {
		t.Error("store should be initialized")
	}
	if mgr.RefreshState() != refresh.StateIdle {
		t.Errorf("RefreshState = %v, want %v", mgr.RefreshState(), refresh.StateIdle)
	}
	if mgr.Offline() {
		t.Error("offline should default to false")
	}
}

func TestNewManager_BrokenDatabaseDegrades(t *testing.T) {
	cfg := newTestConfig(t)
	// A path under a regular file cannot be created as a directory.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	cfg.DatabasePath = filepath.Join(blocker, "calls.db")

	mgr := NewManager(cfg)
	defer mgr.Close()

	if mgr.Store() != nil {
		t.Error("store should be nil when the database cannot be opened")
	}
	if got := mgr.GetCalls(false, true); got != nil {
		t.Errorf("GetCalls = %v, want nil in degraded offline mode", got)
	}

	stats := mgr.CacheStats()
	if stats.Exists {
		t.Error("stats should report a missing database")
	}

	if _, err := mgr.DailyStats(7); err == nil {
		t.Error("DailyStats should fail without a store")
	}
}

func TestNewManager_OfflineFlag(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Offline = true

	mgr := NewManager(cfg)
	defer mgr.Close()

	if !mgr.Offline() {
		t.Error("offline flag from config should be applied")
	}
	if mgr.StartRefresh() {
		t.Error("StartRefresh should be declined in offline mode")
	}
}

func TestManager_GetCallsServesCacheWhenUnreachable(t *testing.T) {
	mgr := NewManager(newTestConfig(t))
	defer mgr.Close()

	seedCall(t, mgr, "call-1", time.Now())

	got := mgr.GetCalls(false, false)
	if len(got) != 1 || got[0].ID != "call-1" {
		t.Errorf("GetCalls = %v, want the seeded call", got)
	}
}

func TestManager_GetCallsOfflineOverride(t *testing.T) {
	mgr := NewManager(newTestConfig(t))
	defer mgr.Close()

	seedCall(t, mgr, "call-1", time.Now())

	got := mgr.GetCalls(false, true)
	if len(got) != 1 {
		t.Errorf("GetCalls returned %d calls, want 1 from cache", len(got))
	}
}

func TestManager_SetOffline(t *testing.T) {
	mgr := NewManager(newTestConfig(t))
	defer mgr.Close()

	mgr.SetOffline(true)
	if !mgr.Offline() {
		t.Error("SetOffline(true) not reflected")
	}
	mgr.SetOffline(false)
	if mgr.Offline() {
		t.Error("SetOffline(false) not reflected")
	}
}

func TestManager_CacheStats(t *testing.T) {
	mgr := NewManager(newTestConfig(t))
	defer mgr.Close()

	stats := mgr.CacheStats()
	if stats.Status != models.CacheStatusOK {
		t.Errorf("stats status = %q, want %q", stats.Status, models.CacheStatusOK)
	}
	if stats.CallCount != 0 {
		t.Errorf("call count = %d, want 0", stats.CallCount)
	}

	seedCall(t, mgr, "a", time.Now().Add(-time.Hour))
	seedCall(t, mgr, "b", time.Now())

	stats = mgr.CacheStats()
	if stats.CallCount != 2 {
		t.Errorf("call count = %d, want 2", stats.CallCount)
	}
}

func TestManager_DailyStats(t *testing.T) {
	mgr := NewManager(newTestConfig(t))
	defer mgr.Close()

	seedCall(t, mgr, "a", time.Now())

	daily, err := mgr.DailyStats(7)
	if err != nil {
		t.Fatalf("DailyStats failed: %v", err)
	}
	if len(daily) != 1 {
		t.Errorf("daily buckets = %d, want 1", len(daily))
	}
}

func TestManager_RawCallWithoutKey(t *testing.T) {
	mgr := NewManager(newTestConfig(t))
	defer mgr.Close()

	if _, err := mgr.RawCall("some-id"); err == nil {
		t.Error("RawCall should fail without an API key")
	}
}

func TestManager_SubscribeAndBroadcast(t *testing.T) {
	mgr := NewManager(newTestConfig(t))
	defer mgr.Close()

	ch, cmd := mgr.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe returned nil channel")
	}
	if cmd == nil {
		t.Fatal("Subscribe returned nil command")
	}

	mgr.broadcast(CacheUpdatedEvent{NewCalls: 2})

	select {
	case e := <-ch:
		upd, ok := e.(CacheUpdatedEvent)
		if !ok {
			t.Fatalf("got event %T, want CacheUpdatedEvent", e)
		}
		if upd.NewCalls != 2 {
			t.Errorf("NewCalls = %d, want 2", upd.NewCalls)
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for broadcast")
	}
}

func TestManager_Unsubscribe(t *testing.T) {
	mgr := NewManager(newTestConfig(t))
	defer mgr.Close()

	ch, _ := mgr.Subscribe()
	mgr.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("channel should be closed after Unsubscribe")
		}
	default:
		t.Error("channel should be closed, not empty and open")
	}
}

func TestManager_HandleCacheUpdateBroadcasts(t *testing.T) {
	mgr := NewManager(newTestConfig(t))
	defer mgr.Close()

	ch, _ := mgr.Subscribe()

	calls := []models.CallRecord{{ID: "x", Start: time.Now()}}
	mgr.handleCacheUpdate(calls, 1)

	select {
	case e := <-ch:
		upd, ok := e.(CacheUpdatedEvent)
		if !ok {
			t.Fatalf("got event %T, want CacheUpdatedEvent", e)
		}
		if len(upd.Calls) != 1 || upd.NewCalls != 1 {
			t.Errorf("event = %+v, want 1 call, 1 new", upd)
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for cache update event")
	}
}

func TestManager_WatcherEventBroadcastsWhenIdle(t *testing.T) {
	mgr := NewManager(newTestConfig(t))
	defer mgr.Close()

	ch, _ := mgr.Subscribe()

	mgr.handleWatcherEvent(watcher.Event{Type: watcher.EventFileChanged, Path: "/tmp/x.db"})

	select {
	case e := <-ch:
		if _, ok := e.(CacheFileChangedEvent); !ok {
			t.Errorf("got event %T, want CacheFileChangedEvent", e)
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for file change event")
	}
}

func TestManager_WatcherEventSuppressedAfterOwnRefresh(t *testing.T) {
	mgr := NewManager(newTestConfig(t))
	defer mgr.Close()

	// Run one cycle; the unreachable probe makes it a quick no-op that
	// still records a completion timestamp.
	if !mgr.StartRefresh() {
		t.Fatal("StartRefresh should be accepted")
	}
	deadline := time.Now().Add(2 * time.Second)
	for mgr.RefreshState() != refresh.StateDone && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if mgr.RefreshState() != refresh.StateDone {
		t.Fatalf("cycle never finished, state %v", mgr.RefreshState())
	}

	ch, _ := mgr.Subscribe()
	mgr.handleWatcherEvent(watcher.Event{Type: watcher.EventFileChanged, Path: "/tmp/x.db"})

	select {
	case e := <-ch:
		if _, ok := e.(CacheFileChangedEvent); ok {
			t.Error("file change right after own refresh should be suppressed")
		} else {
			t.Errorf("unexpected event %T", e)
		}
	case <-time.After(300 * time.Millisecond):
	}
}

func TestManager_StartRefreshEmitsStartedEvent(t *testing.T) {
	mgr := NewManager(newTestConfig(t))
	defer mgr.Close()

	ch, _ := mgr.Subscribe()

	if !mgr.StartRefresh() {
		t.Fatal("StartRefresh should be accepted")
	}

	select {
	case e := <-ch:
		started, ok := e.(RefreshStartedEvent)
		if !ok {
			t.Fatalf("got event %T, want RefreshStartedEvent", e)
		}
		if !started.Manual {
			t.Error("StartRefresh should mark the event as manual")
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for refresh started event")
	}
}

func TestManager_RefreshForeground(t *testing.T) {
	mgr := NewManager(newTestConfig(t))
	defer mgr.Close()

	var lines []string
	accepted := mgr.RefreshForeground(func(line string) {
		lines = append(lines, line)
	})

	if !accepted {
		t.Error("foreground refresh should be accepted when not offline")
	}
	if len(lines) == 0 {
		t.Error("foreground refresh should report progress")
	}
	found := false
	for _, l := range lines {
		if strings.Contains(l, "unreachable") {
			found = true
		}
	}
	if !found {
		t.Errorf("progress %v should mention the unreachable network", lines)
	}
}

func TestManager_RefreshForegroundOffline(t *testing.T) {
	mgr := NewManager(newTestConfig(t))
	defer mgr.Close()

	mgr.SetOffline(true)
	if mgr.RefreshForeground(func(string) {}) {
		t.Error("foreground refresh should be declined in offline mode")
	}
}

func TestManager_StartBackgroundAndClose(t *testing.T) {
	cfg := newTestConfig(t)
	mgr := NewManager(cfg)

	mgr.StartBackground()
	if mgr.watcher == nil {
		t.Error("watcher should run when the store is available")
	}

	if err := mgr.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestWaitForEvent(t *testing.T) {
	ch := make(chan ServiceEvent, 1)
	ch <- RefreshStartedEvent{}

	cmd := WaitForEvent(ch)
	if msg := cmd(); msg == nil {
		t.Error("WaitForEvent cmd returned nil msg")
	}
}

func TestServiceEvent_Interface(t *testing.T) {
	var _ ServiceEvent = RefreshStartedEvent{}
	var _ ServiceEvent = CacheUpdatedEvent{}
	var _ ServiceEvent = CacheFileChangedEvent{}
	var _ ServiceEvent = ErrorEvent{}

	RefreshStartedEvent{}.isServiceEvent()
	CacheUpdatedEvent{}.isServiceEvent()
	CacheFileChangedEvent{}.isServiceEvent()
	ErrorEvent{}.isServiceEvent()
}
