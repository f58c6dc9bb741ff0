package library

import (
	"context"

	"github.com/google/uuid"
)

// TicksPerSecond is the resolution of persisted playback positions.
const TicksPerSecond = 10_000_000

// Store is the library backend consumed by the ContentDirectory core.
type Store interface {
	// ItemByID looks up a single item. A missing item is not an error.
	ItemByID(ctx context.Context, id uuid.UUID) (Item, bool, error)
	// Items enumerates items matching the query.
	Items(ctx context.Context, q ItemsQuery) (Result, error)
	// PeopleFor returns the cast/crew credits attached to an item.
	PeopleFor(ctx context.Context, itemID uuid.UUID) ([]Person, error)
	// UserRoot resolves the user's root folder.
	UserRoot(ctx context.Context, user User) (Item, error)
}

// UserData persists per-user playback state.
type UserData interface {
	PlaybackPosition(ctx context.Context, user User, itemID uuid.UUID) (int64, error)
	SetPlaybackPosition(ctx context.Context, user User, itemID uuid.UUID, ticks int64) error
}

// UpdateSource exposes the SystemUpdateID counter. The ContentDirectory core
// only ever reads it; library-change producers own the increments.
type UpdateSource interface {
	UpdateID() uint64
}

// Clock provides unix time for user-data writes.
type Clock interface {
	NowUnix() int64
}
