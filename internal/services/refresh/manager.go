package refresh

import (
	"fmt"
	"sync"
	"time"

	"github.com/j-veylop/vapi-call-browser/internal/logger"
	"github.com/j-veylop/vapi-call-browser/internal/models"
)

// Lookback windows for talking to the API. The freshness check only needs the
// newest call; the full fetch re-covers the whole retained history so records
// deleted remotely still survive in the cache.
const (
	checkLookback = 10 * time.Minute
	checkLimit    = 1
	fullLookback  = 365 * 24 * time.Hour
	fullLimit     = 1000
)

// State is where the update cycle currently stands.
type State int

const (
	// StateIdle means no cycle has run yet.
	StateIdle State = iota
	// StateUpdating means a cycle is in flight.
	StateUpdating
	// StateDone means the most recent cycle finished, successfully or not.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUpdating:
		return "updating"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Store is the slice of the call store the refresher needs.
type Store interface {
	ListAll() ([]models.CallRecord, error)
	LatestByStart() (*models.CallRecord, error)
	Upsert(records []models.CallRecord, writtenAt time.Time) error
}

// Client fetches call records from the API.
type Client interface {
	FetchRecent(lookback time.Duration, limit int) ([]models.CallRecord, error)
	FetchAll(lookback time.Duration, limit int) ([]models.CallRecord, error)
}

// Prober reports whether the network looks usable right now.
type Prober interface {
	IsReachable(timeout time.Duration) bool
}

// Options tunes a Manager beyond its required collaborators.
type Options struct {
	// ProbeTimeout bounds each connectivity probe.
	ProbeTimeout time.Duration
	// Foreground makes Start run the cycle synchronously instead of in a
	// goroutine, reporting progress through Progress.
	Foreground bool
	// Progress receives human-readable progress lines in foreground mode.
	Progress func(line string)
	// OnUpdate is invoked after a fetch has been durably written to the
	// store. It receives the freshly fetched records and how many of them
	// started after the previously newest cached call.
	OnUpdate func(calls []models.CallRecord, newCalls int)
}

// Manager runs the cache update cycle: probe the network, decide whether the
// cache is stale, fetch, persist, then notify. At most one cycle runs at a
// time; concurrent starts are refused rather than queued.
type Manager struct {
	store  Store
	client Client
	probe  Prober
	opts   Options

	mu         sync.Mutex
	state      State
	offline    bool
	lastUpdate time.Time
}

// New creates a Manager. The store may be nil when the database could not be
// opened; the manager then works network-only and skips persistence.
func New(store Store, client Client, probe Prober, opts Options) *Manager {
	return &Manager{
		store:  store,
		client: client,
		probe:  probe,
		opts:   opts,
		state:  StateIdle,
	}
}

// State returns the current cycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastUpdate returns when the most recent cycle finished, zero if none has.
func (m *Manager) LastUpdate() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUpdate
}

// SetOffline flips the user-requested offline flag. While set, Start refuses
// to run and Resolve serves only cached data.
func (m *Manager) SetOffline(offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline = offline
}

// Offline reports the user-requested offline flag.
func (m *Manager) Offline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offline
}

// Start triggers one update cycle. It reports false without doing anything
// when a cycle is already running or the user asked for offline mode. In
// foreground mode the cycle runs before Start returns; otherwise it runs in
// a background goroutine.
func (m *Manager) Start() bool {
	m.mu.Lock()
	if m.state == StateUpdating {
		m.mu.Unlock()
		logger.Info("cache update already in progress, skipping")
		return false
	}
	if m.offline {
		m.mu.Unlock()
		logger.Info("offline mode set, skipping cache update")
		return false
	}
	m.state = StateUpdating
	m.mu.Unlock()

	if m.opts.Foreground {
		m.runCycle()
		return true
	}
	go m.runCycle()
	return true
}

// Resolve is the synchronous cache-first read path. It returns the records to
// display right now, nil when there is genuinely nothing to show. It never
// returns an error: every failure degrades to cached data or to nil.
func (m *Manager) Resolve(skipRemoteCheck, offlineOverride bool) []models.CallRecord {
	cached := m.cachedCalls()
	reachable := m.probe.IsReachable(m.opts.ProbeTimeout)
	offline := offlineOverride || m.Offline()

	logger.Debug("resolving calls",
		"cached", len(cached), "has_cache", cached != nil,
		"offline", offline, "reachable", reachable, "skip_check", skipRemoteCheck)

	in := Inputs{HasCache: cached != nil, Offline: offline, Reachable: reachable}

	if in.HasCache && !in.Offline && in.Reachable {
		if skipRemoteCheck {
			// Serve the cache immediately and freshen it behind the scenes.
			m.Start()
			return cached
		}
		in.Check = m.checkRemote()
	}

	switch Decide(in) {
	case ActionServeCache:
		logger.Info("serving calls from cache", "count", len(cached))
		return cached
	case ActionSkip:
		logger.Warn("offline with no cache, nothing to serve")
		return nil
	}

	// ActionFetchAll. Respect the single-writer rule: if a cycle is already
	// rewriting the cache, serve what we have and let its event deliver the
	// rest.
	if !m.begin() {
		return cached
	}
	defer m.finish()

	calls, _, err := m.fetchAndStore()
	if err != nil {
		if cached != nil {
			logger.Warn("serving cache after fetch failure", "error", err)
			return cached
		}
		logger.Error("fetch failed with no cache to fall back on", "error", err)
		return nil
	}
	// The fresh records are handed straight back to the caller, so no
	// update event fires here; events belong to background cycles.
	return calls
}

// begin attempts the Idle/Done -> Updating transition.
func (m *Manager) begin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateUpdating {
		return false
	}
	m.state = StateUpdating
	return true
}

// finish records the end of a cycle regardless of how it went.
func (m *Manager) finish() {
	m.mu.Lock()
	m.state = StateDone
	m.lastUpdate = time.Now()
	m.mu.Unlock()
}

// runCycle is one guarded update pass. The caller has already moved the state
// to Updating.
func (m *Manager) runCycle() {
	defer m.finish()

	if !m.probe.IsReachable(m.opts.ProbeTimeout) {
		logger.Warn("network unreachable, skipping cache update cycle")
		m.say("Network unreachable, skipping update")
		return
	}

	cached := m.cachedCalls()
	in := Inputs{HasCache: cached != nil, Reachable: true}
	if in.HasCache {
		m.say("Checking for new calls...")
		in.Check = m.checkRemote()
	} else {
		m.say("No cache found, creating initial cache...")
	}

	switch Decide(in) {
	case ActionFetchAll:
		calls, newCalls, err := m.fetchAndStore()
		if err != nil {
			m.say(fmt.Sprintf("Update failed: %v", err))
			return
		}
		m.say(fmt.Sprintf("Cached %d calls (%d new)", len(calls), newCalls))
		m.notify(calls, newCalls)
	default:
		logger.Info("cache is up to date")
		m.say("Cache is already up to date")
	}
}

// checkRemote runs the short-lookback freshness check and classifies it.
func (m *Manager) checkRemote() CheckOutcome {
	recent, err := m.client.FetchRecent(checkLookback, checkLimit)
	if err != nil {
		logger.Warn("freshness check failed", "error", err)
		return CheckError
	}
	if len(recent) == 0 {
		logger.Debug("no remote calls in check window, cache assumed current")
		return CheckEmptyRemote
	}

	latest, err := m.latestCached()
	if err != nil {
		logger.Warn("could not read latest cached call", "error", err)
		return CheckMismatch
	}
	if latest == nil || latest.ID != recent[0].ID {
		logger.Info("newer calls detected on API", "remote_id", recent[0].ID)
		return CheckMismatch
	}
	return CheckMatch
}

// fetchAndStore pulls the full window and persists it. The store write
// happens before anyone is told about the new data; a write failure
// suppresses the notification so nobody observes an update that is not
// durable. It returns the fetched records and how many are genuinely new.
func (m *Manager) fetchAndStore() ([]models.CallRecord, int, error) {
	m.say("Fetching calls from API...")
	calls, err := m.client.FetchAll(fullLookback, fullLimit)
	if err != nil {
		logger.Error("failed to fetch calls", "error", err)
		return nil, 0, err
	}
	if len(calls) == 0 {
		logger.Info("API returned no calls, leaving cache untouched")
		return nil, 0, fmt.Errorf("no calls returned")
	}

	newCalls := m.countNew(calls)

	if m.store != nil {
		if err := m.store.Upsert(calls, time.Now()); err != nil {
			logger.Error("failed to write calls to cache", "error", err)
			return nil, 0, err
		}
	}
	logger.Info("cache updated", "calls", len(calls), "new", newCalls)
	return calls, newCalls, nil
}

// countNew counts fetched records that started after the newest cached call.
// With nothing cached, every record counts as new.
func (m *Manager) countNew(fetched []models.CallRecord) int {
	latest, err := m.latestCached()
	if err != nil || latest == nil {
		return len(fetched)
	}
	n := 0
	for _, c := range fetched {
		if c.Start.After(latest.Start) {
			n++
		}
	}
	return n
}

func (m *Manager) notify(calls []models.CallRecord, newCalls int) {
	if m.opts.OnUpdate != nil {
		m.opts.OnUpdate(calls, newCalls)
	}
}

func (m *Manager) cachedCalls() []models.CallRecord {
	if m.store == nil {
		return nil
	}
	calls, err := m.store.ListAll()
	if err != nil {
		logger.Error("failed to read cached calls", "error", err)
		return nil
	}
	return calls
}

func (m *Manager) latestCached() (*models.CallRecord, error) {
	if m.store == nil {
		return nil, nil
	}
	return m.store.LatestByStart()
}

func (m *Manager) say(line string) {
	if m.opts.Foreground && m.opts.Progress != nil {
		m.opts.Progress(line)
	}
}
