// Package refresh keeps the local call cache in sync with the Vapi API.
// It owns the reconciliation decision table and the guarded update cycle
// that the rest of the app triggers but never drives directly.
package refresh

// Action is the outcome of one reconciliation decision.
type Action int

const (
	// ActionServeCache serves the cached records without touching the network.
	ActionServeCache Action = iota
	// ActionFetchAll resynchronizes the cache with a full-window fetch.
	ActionFetchAll
	// ActionSkip serves nothing; there is no cache and no way to fill it.
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionServeCache:
		return "serve_cache"
	case ActionFetchAll:
		return "fetch_all"
	case ActionSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// CheckOutcome classifies the short-lookback freshness check against the API.
type CheckOutcome int

const (
	// CheckNotRun means no check was performed for this decision.
	CheckNotRun CheckOutcome = iota
	// CheckMatch means the newest remote call is already cached.
	CheckMatch
	// CheckMismatch means the newest remote call differs from the cached one,
	// or there was no cached call to compare against.
	CheckMismatch
	// CheckEmptyRemote means the check window returned no calls at all.
	CheckEmptyRemote
	// CheckError means the check itself failed.
	CheckError
)

func (c CheckOutcome) String() string {
	switch c {
	case CheckNotRun:
		return "not_run"
	case CheckMatch:
		return "match"
	case CheckMismatch:
		return "mismatch"
	case CheckEmptyRemote:
		return "empty_remote"
	case CheckError:
		return "error"
	default:
		return "unknown"
	}
}

// Inputs carries everything a reconciliation decision depends on.
type Inputs struct {
	// HasCache is true when the local store holds at least one record.
	HasCache bool
	// Offline is the user-requested offline flag.
	Offline bool
	// Reachable is the result of the connectivity probe.
	Reachable bool
	// Check is the freshness check outcome, meaningful only when the
	// cache exists and the network is usable.
	Check CheckOutcome
}

// Decide maps the current situation to the action a refresh cycle takes.
//
//	no cache, offline/unreachable  -> skip
//	cache,    offline/unreachable  -> serve cache
//	no cache, online               -> fetch all
//	cache,    online, match        -> serve cache
//	cache,    online, empty window -> serve cache (nothing recent remotely)
//	cache,    online, mismatch     -> fetch all
//	cache,    online, check error  -> serve cache (fallback)
func Decide(in Inputs) Action {
	if in.Offline || !in.Reachable {
		if in.HasCache {
			return ActionServeCache
		}
		return ActionSkip
	}
	if !in.HasCache {
		return ActionFetchAll
	}
	switch in.Check {
	case CheckMatch, CheckEmptyRemote, CheckError:
		return ActionServeCache
	default:
		// Mismatch, or no usable comparison: resynchronize.
		return ActionFetchAll
	}
}
