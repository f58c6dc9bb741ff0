package contentdirectory

import (
	"strconv"
	"strings"
)

// Window is a normalized paging window. A nil Limit is unbounded; a zero
// Limit is the count-only probe used to size nested containers.
type Window struct {
	Start int64
	Limit *int64
}

// ParseWindow normalizes the wire StartingIndex/RequestedCount values. A
// requested count of 0 means unbounded, not zero: clients ask for the full
// window that way. Unparseable values fall back to the defaults.
func ParseWindow(startingIndex, requestedCount string) Window {
	var w Window
	if v, err := strconv.ParseUint(strings.TrimSpace(startingIndex), 10, 32); err == nil && v > 0 {
		w.Start = int64(v)
	}
	if v, err := strconv.ParseUint(strings.TrimSpace(requestedCount), 10, 32); err == nil && v > 0 {
		limit := int64(v)
		w.Limit = &limit
	}
	return w
}

// CountWindow returns the count-only probe window.
func CountWindow() Window {
	zero := int64(0)
	return Window{Limit: &zero}
}

// Slice clamps the window against an in-memory list of length n. Materialized
// sources (the people listing) are paged post-hoc with this instead of
// pushing the window into a query.
func (w Window) Slice(n int) (int, int) {
	lo := int(w.Start)
	if lo > n {
		lo = n
	}
	hi := n
	if w.Limit != nil && lo+int(*w.Limit) < hi {
		hi = lo + int(*w.Limit)
	}
	return lo, hi
}

// queryStart returns the start index pointer for store queries.
func (w Window) queryStart() *int64 {
	if w.Start == 0 {
		return nil
	}
	start := w.Start
	return &start
}
