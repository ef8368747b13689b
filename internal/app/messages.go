package app

import (
	"time"

	"github.com/j-veylop/vapi-call-browser/internal/models"
	"github.com/j-veylop/vapi-call-browser/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// InitialLoadCompleteMsg signals that initial data loading is complete.
type InitialLoadCompleteMsg struct{}

// CallsLoadedMsg contains the freshly resolved call list.
type CallsLoadedMsg struct {
	Calls []models.CallRecord
}

// StatsLoadedMsg contains a cache statistics snapshot.
type StatsLoadedMsg struct {
	Stats models.CacheStats
}

// RefreshStartedMsg reports whether a manual refresh request was accepted.
type RefreshStartedMsg struct {
	Accepted bool
}

// OfflineToggledMsg reports the new offline flag after a toggle.
type OfflineToggledMsg struct {
	Offline bool
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// CopyToClipboardMsg requests copying text to the clipboard. Label names
// what is being copied for the result notification.
type CopyToClipboardMsg struct {
	Text  string
	Label string
}

// ClipboardResultMsg contains the result of a clipboard operation.
type ClipboardResultMsg struct {
	Label   string
	Success bool
	Error   error
}

// SortMsg changes the sort order of the call table.
type SortMsg struct {
	Field     string
	Ascending bool
}
