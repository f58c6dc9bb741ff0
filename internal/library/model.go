// Package library defines the media library object model and the ports the
// ContentDirectory core consumes. Storage backends implement Store; the core
// never inspects concrete item types, only the closed Kind tag.
package library

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies a library item. The ContentDirectory resolver dispatches on
// this closed set.
type Kind string

const (
	KindFolder           Kind = "Folder"
	KindCollectionFolder Kind = "CollectionFolder"
	KindMusicGenre       Kind = "MusicGenre"
	KindMusicArtist      Kind = "MusicArtist"
	KindMusicAlbum       Kind = "MusicAlbum"
	KindPlaylist         Kind = "Playlist"
	KindPerson           Kind = "Person"
	KindMovie            Kind = "Movie"
	KindSeries           Kind = "Series"
	KindTrailer          Kind = "Trailer"
	KindAudio            Kind = "Audio"
	KindVideo            Kind = "Video"
	KindPhoto            Kind = "Photo"
	KindGame             Kind = "Game"
	KindBook             Kind = "Book"
)

// IsFolder reports whether items of this kind are native containers. Person
// is deliberately not a container; people display as folders only through the
// folder_ stub.
func (k Kind) IsFolder() bool {
	switch k {
	case KindFolder, KindCollectionFolder, KindMusicGenre, KindMusicArtist,
		KindMusicAlbum, KindPlaylist, KindSeries:
		return true
	}
	return false
}

// MediaType is the coarse media classification used by Search constraints.
type MediaType string

const (
	MediaAudio MediaType = "Audio"
	MediaVideo MediaType = "Video"
	MediaPhoto MediaType = "Photo"
)

// CollectionType names the preset library-root views.
type CollectionType string

const (
	CollectionMovies  CollectionType = "movies"
	CollectionTVShows CollectionType = "tvshows"
	CollectionMusic   CollectionType = "music"
)

// Item is one library entity.
type Item struct {
	ID       uuid.UUID
	ParentID uuid.UUID
	Name     string
	Kind     Kind

	MediaType      MediaType
	CollectionType CollectionType

	// PreSorted marks containers whose native child order is already the
	// desired display order; no name sort is injected for them.
	PreSorted   bool
	Placeholder bool
	Missing     bool

	GenreIDs  []uuid.UUID
	ArtistIDs []uuid.UUID

	Artists     []string
	Album       string
	Overview    string
	Date        time.Time
	DurationMS  int64
	MediaURL    string
	MimeType    string
	ArtworkURL  string
}

// IsFolder reports whether the item is a native container.
func (it Item) IsFolder() bool {
	return it.Kind.IsFolder()
}

// Person is a cast or crew credit attached to an item.
type Person struct {
	ID   uuid.UUID
	Name string
	Role string
	Type string
}

// User scopes library queries and owns playback state.
type User struct {
	ID     uuid.UUID
	Name   string
	RootID uuid.UUID
}

// SortField names a sort criterion understood by stores.
type SortField string

const (
	SortByName SortField = "Name"
	SortByDate SortField = "Date"
)

// ItemsQuery is the filter/sort/paging query object passed to Store.Items.
// Zero-valued UUID fields are unset; nil pointer fields apply no constraint.
type ItemsQuery struct {
	User      User
	ParentID  uuid.UUID
	Recursive bool

	PersonID uuid.UUID
	GenreID  uuid.UUID
	ArtistID uuid.UUID

	IncludeKinds    []Kind
	ExcludeKinds    []Kind
	MediaTypes      []MediaType
	IsFolder        *bool
	Missing         *bool
	Placeholder     *bool
	CollectionTypes []CollectionType

	SortBy []SortField

	// StartIndex/Limit window the result. A nil Limit is unbounded; a zero
	// Limit returns no items but still reports TotalCount (the count-only
	// probe used for nested childCount attributes).
	StartIndex *int64
	Limit      *int64
}

// Result is one enumeration result; TotalCount may exceed len(Items) when a
// window was applied.
type Result struct {
	Items      []Item
	TotalCount int64
}
