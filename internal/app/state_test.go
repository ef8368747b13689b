package app

import (
	"testing"
	"time"

	"github.com/j-veylop/vapi-call-browser/internal/models"
)

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if len(s.Calls) != 0 {
		t.Error("Calls should be empty")
	}
	if s.Loading.Initial != true {
		t.Error("Initial loading should be true")
	}
}

func TestState_SetLoading(t *testing.T) {
	s := NewState()

	s.SetLoading("calls", true)
	if !s.Loading.Calls {
		t.Error("Calls loading should be true")
	}
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true")
	}

	s.SetLoading("calls", false)
	// Initial is still true
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true (Initial is true)")
	}
	if !s.IsInitialLoading() {
		t.Error("IsInitialLoading should be true")
	}

	s.SetLoading("initial", false)
	if s.AnyLoading() {
		t.Error("AnyLoading should be false")
	}
	if s.IsInitialLoading() {
		t.Error("IsInitialLoading should be false")
	}

	s.SetLoading("stats", true)
	if !s.AnyLoading() {
		t.Error("AnyLoading should see stats loading")
	}
}

func TestState_Calls(t *testing.T) {
	s := NewState()

	calls := []models.CallRecord{
		{ID: "call-1", Caller: "+14155550100"},
		{ID: "call-2", Caller: "+14155550101"},
	}

	s.SetCalls(calls)

	if s.GetCallCount() != 2 {
		t.Errorf("GetCallCount = %d, want 2", s.GetCallCount())
	}

	got := s.GetCalls()
	if len(got) != 2 {
		t.Errorf("GetCalls returned %d items", len(got))
	}
	if got[0].ID != "call-1" {
		t.Errorf("first call ID = %s, want call-1", got[0].ID)
	}

	// Returned slice is a copy
	got[0].ID = "mutated"
	if s.GetCalls()[0].ID != "call-1" {
		t.Error("GetCalls should return a copy")
	}

	if s.GetLastUpdated().IsZero() {
		t.Error("SetCalls should record the update time")
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "test", time.Minute)
	if id == "" {
		t.Error("AddNotification returned empty ID")
	}

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("GetNotifications len = %d, want 1", len(notifs))
	}
	if notifs[0].Message != "test" {
		t.Errorf("Notification message = %s, want test", notifs[0].Message)
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("Notification should be removed")
	}
}

func TestState_ClearExpiredNotifications(t *testing.T) {
	s := NewState()

	// Expired
	s.notifications = append(s.notifications, Notification{
		ID:        "expired",
		CreatedAt: time.Now().Add(-2 * time.Minute),
		Duration:  time.Minute,
	})

	// Active
	s.notifications = append(s.notifications, Notification{
		ID:        "active",
		CreatedAt: time.Now(),
		Duration:  time.Minute,
	})

	s.ClearExpiredNotifications()

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != "active" {
		t.Errorf("Expected active notification, got %s", notifs[0].ID)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("loading...")
	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != LoadingNotificationID {
		t.Errorf("Expected ID %s, got %s", LoadingNotificationID, notifs[0].ID)
	}
	if notifs[0].Message != "loading..." {
		t.Errorf("Expected message loading..., got %s", notifs[0].Message)
	}

	// Update message
	s.SetLoadingNotification("still loading...")
	notifs = s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification after update")
	}
	if notifs[0].Message != "still loading..." {
		t.Errorf("Expected message still loading..., got %s", notifs[0].Message)
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("Loading notification should be cleared")
	}
}

func TestState_Stats(t *testing.T) {
	s := NewState()
	stats := models.CacheStats{CallCount: 10, Exists: true}

	s.SetStats(stats)
	got := s.GetStats()
	if got == nil {
		t.Fatal("GetStats returned nil")
	}
	if got.CallCount != 10 {
		t.Errorf("CallCount = %d, want 10", got.CallCount)
	}
}

func TestState_Offline(t *testing.T) {
	s := NewState()

	if s.IsOffline() {
		t.Error("new state should not be offline")
	}

	s.SetOffline(true)
	if !s.IsOffline() {
		t.Error("IsOffline should be true")
	}

	s.SetOffline(false)
	if s.IsOffline() {
		t.Error("IsOffline should be false")
	}
}

func TestState_ToggleMasked(t *testing.T) {
	s := NewState()

	if s.IsMasked() {
		t.Error("new state should not be masked")
	}

	if !s.ToggleMasked() {
		t.Error("first toggle should enable masking")
	}
	if !s.IsMasked() {
		t.Error("IsMasked should be true")
	}

	if s.ToggleMasked() {
		t.Error("second toggle should disable masking")
	}
	if s.IsMasked() {
		t.Error("IsMasked should be false")
	}
}

func TestState_Refreshing(t *testing.T) {
	s := NewState()

	s.SetRefreshing(true)
	if !s.IsRefreshing() {
		t.Error("IsRefreshing should be true")
	}

	s.SetRefreshing(false)
	if s.IsRefreshing() {
		t.Error("IsRefreshing should be false")
	}
}

func TestState_TimeSinceUpdate(t *testing.T) {
	s := NewState()

	s.SetCalls([]models.CallRecord{{ID: "call-1"}})
	time.Sleep(time.Millisecond) // Ensure time advances

	if s.TimeSinceUpdate() == 0 {
		t.Error("TimeSinceUpdate should be > 0")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		t    NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationLoading, "loading"},
		{NotificationType(999), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
