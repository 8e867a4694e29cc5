package engine

// ============================================================================
// VIEW — Zero-Copy Access to the Canonical Table
// ============================================================================
// A View is an index list into a shared []Event. Filtering produces a new
// View over the same backing slice — the canonical table is never copied
// and never mutated after ingestion.
// ============================================================================

// View is an ordered, read-only subset of a dataset's events.
type View struct {
	events  []Event
	indices []int
}

// NewView wraps an event slice as a full view. Zero-copy — holds reference.
func NewView(events []Event) View {
	indices := make([]int, len(events))
	for i := range indices {
		indices[i] = i
	}
	return View{events: events, indices: indices}
}

// Len returns the number of events in the view.
func (v View) Len() int { return len(v.indices) }

// At returns the event at position i in view order.
func (v View) At(i int) Event { return v.events[v.indices[i]] }

// Where returns the sub-view of events satisfying keep, preserving order.
func (v View) Where(keep func(Event) bool) View {
	indices := make([]int, 0, len(v.indices))
	for _, idx := range v.indices {
		if keep(v.events[idx]) {
			indices = append(indices, idx)
		}
	}
	return View{events: v.events, indices: indices}
}
