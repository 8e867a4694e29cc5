package engine

import (
	"strings"
	"time"
)

// ============================================================================
// FILTERS — Conjunction of Optional Selectors
// ============================================================================
// Single pass: every specified selector must match; unspecified selectors
// ("All …" or empty) impose no constraint. Predicate order never changes the
// result set. An empty result is a normal outcome, not an error.
// ============================================================================

// Filter holds the five optional selectors applied over a view. A zero
// Filter matches everything.
//
// Site, Well, Reason and Alert are exact-match equality selectors; the
// empty string, "All", or any "All …" label (the UI's wildcard entries,
// e.g. "All Sites") leaves the dimension unconstrained.
//
// The date range is inclusive on both ends at day granularity and applies
// only when both From and To are set.
type Filter struct {
	Site   string `json:"site,omitempty"`
	Well   string `json:"well,omitempty"`
	Reason string `json:"reason,omitempty"`
	Alert  string `json:"alert,omitempty"`

	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

// IsZero reports whether no selector is specified.
func (f Filter) IsZero() bool {
	return isWildcard(f.Site) && isWildcard(f.Well) &&
		isWildcard(f.Reason) && isWildcard(f.Alert) && !f.hasRange()
}

func (f Filter) hasRange() bool {
	return !f.From.IsZero() && !f.To.IsZero()
}

// Apply returns the sub-view of events matching every specified selector.
func (f Filter) Apply(v View) View {
	if f.IsZero() {
		return v
	}

	var from, to time.Time
	if f.hasRange() {
		from = dayOf(f.From)
		to = dayOf(f.To)
	}

	return v.Where(func(e Event) bool {
		if !isWildcard(f.Site) && e.Site != f.Site {
			return false
		}
		if !isWildcard(f.Well) && e.Well != f.Well {
			return false
		}
		if !isWildcard(f.Reason) && e.Reason != f.Reason {
			return false
		}
		if !isWildcard(f.Alert) && e.Alert != f.Alert {
			return false
		}
		if f.hasRange() {
			day := dayOf(e.ShutdownAt)
			if day.Before(from) || day.After(to) {
				return false
			}
		}
		return true
	})
}

// isWildcard reports whether a selector value means "no constraint".
func isWildcard(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || value == "All" || strings.HasPrefix(value, "All ")
}

// dayOf truncates a timestamp to midnight; range membership ignores
// time-of-day.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
