package library

import "sync/atomic"

// UpdateCounter is a process-wide SystemUpdateID source. Producers call Bump
// on library change; the ContentDirectory core reads UpdateID.
type UpdateCounter struct {
	n atomic.Uint64
}

// UpdateID returns the current counter value.
func (c *UpdateCounter) UpdateID() uint64 {
	return c.n.Load()
}

// Bump increments the counter and returns the new value.
func (c *UpdateCounter) Bump() uint64 {
	return c.n.Add(1)
}
