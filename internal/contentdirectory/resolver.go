package contentdirectory

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hearthcast/hearthcast/internal/library"
)

// Page is one child enumeration result. Total may exceed len(Nodes) when a
// window was applied.
type Page struct {
	Nodes []Node
	Total int64
}

// Resolver computes the children of a node in the virtual browse hierarchy:
// real library children for plain folders, synthetic groupings for genres,
// artists, people listings, and person nodes.
type Resolver struct {
	log   *zap.Logger
	store library.Store
}

// NewResolver creates a hierarchy resolver over the library store.
func NewResolver(log *zap.Logger, store library.Store) Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return Resolver{log: log, store: store}
}

// Children enumerates a node's children. Dispatch precedence: music genre,
// music artist, people stub, person, unmatched stub (empty), plain folder.
// First match wins.
func (r Resolver) Children(ctx context.Context, node Node, user library.User, sort []library.SortField, w Window) (Page, error) {
	switch {
	case node.Item.Kind == library.KindMusicGenre:
		return r.albumsBy(ctx, node, user, sort, w, func(q *library.ItemsQuery) {
			q.GenreID = node.Item.ID
		})
	case node.Item.Kind == library.KindMusicArtist:
		return r.albumsBy(ctx, node, user, sort, w, func(q *library.ItemsQuery) {
			q.ArtistID = node.Item.ID
		})
	case node.Stub == StubPeople:
		return r.peopleListing(ctx, node, w)
	case node.Item.Kind == library.KindPerson:
		return r.personMedia(ctx, node, user, sort, w)
	case node.Stub != StubNone:
		// A stub kind with no synthetic listing; nothing sensible to show.
		return Page{Nodes: []Node{}}, nil
	default:
		return r.folderChildren(ctx, node, user, sort, w)
	}
}

// ChildCount runs the count-only second query used to fill a container's
// childCount attribute without fetching its children.
func (r Resolver) ChildCount(ctx context.Context, node Node, user library.User) (int64, error) {
	page, err := r.Children(ctx, node, user, nil, CountWindow())
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}

// Search enumerates recursively under a container with the constraints the
// search type implies. Game and Book kinds and missing items are always
// excluded.
func (r Resolver) Search(ctx context.Context, node Node, user library.User, st SearchType, sort []library.SortField, w Window) (Page, error) {
	notMissing := false
	q := library.ItemsQuery{
		User:         user,
		ParentID:     node.Item.ID,
		Recursive:    true,
		ExcludeKinds: []library.Kind{library.KindGame, library.KindBook},
		Missing:      &notMissing,
		SortBy:       sortFor(node.Item, sort),
		StartIndex:   w.queryStart(),
		Limit:        w.Limit,
	}
	applySearchConstraint(&q, st)

	result, err := r.store.Items(ctx, q)
	if err != nil {
		return Page{}, err
	}
	return wrapItems(result), nil
}

// SearchCount is the count-only probe for nested search results.
func (r Resolver) SearchCount(ctx context.Context, node Node, user library.User, st SearchType) (int64, error) {
	page, err := r.Search(ctx, node, user, st, nil, CountWindow())
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}

func applySearchConstraint(q *library.ItemsQuery, st SearchType) {
	leaf, folder := false, true
	switch st {
	case SearchAudio:
		q.MediaTypes = []library.MediaType{library.MediaAudio}
		q.IsFolder = &leaf
	case SearchVideo:
		q.MediaTypes = []library.MediaType{library.MediaVideo}
		q.IsFolder = &leaf
	case SearchImage:
		q.MediaTypes = []library.MediaType{library.MediaPhoto}
		q.IsFolder = &leaf
	case SearchPlaylist:
		q.IncludeKinds = append(q.IncludeKinds, library.KindPlaylist)
		q.IsFolder = &folder
	case SearchMusicAlbum:
		q.IncludeKinds = append(q.IncludeKinds, library.KindMusicAlbum)
		q.IsFolder = &folder
	}
}

func (r Resolver) albumsBy(ctx context.Context, node Node, user library.User, sort []library.SortField, w Window, bind func(*library.ItemsQuery)) (Page, error) {
	q := library.ItemsQuery{
		User:         user,
		Recursive:    true,
		IncludeKinds: []library.Kind{library.KindMusicAlbum},
		SortBy:       sortFor(node.Item, sort),
		StartIndex:   w.queryStart(),
		Limit:        w.Limit,
	}
	bind(&q)

	result, err := r.store.Items(ctx, q)
	if err != nil {
		return Page{}, err
	}
	return wrapItems(result), nil
}

// peopleListing materializes the cast/crew of the stub's backing item. The
// credit list is not a queryable store, so the window is applied in memory.
func (r Resolver) peopleListing(ctx context.Context, node Node, w Window) (Page, error) {
	people, err := r.store.PeopleFor(ctx, node.Item.ID)
	if err != nil {
		return Page{}, err
	}
	lo, hi := w.Slice(len(people))
	nodes := make([]Node, 0, hi-lo)
	for _, p := range people[lo:hi] {
		nodes = append(nodes, Node{
			Item: library.Item{ID: p.ID, Name: p.Name, Kind: library.KindPerson},
			Stub: StubFolder,
		})
	}
	return Page{Nodes: nodes, Total: int64(len(people))}, nil
}

func (r Resolver) personMedia(ctx context.Context, node Node, user library.User, sort []library.SortField, w Window) (Page, error) {
	q := library.ItemsQuery{
		User:         user,
		PersonID:     node.Item.ID,
		Recursive:    true,
		IncludeKinds: []library.Kind{library.KindMovie, library.KindSeries, library.KindTrailer},
		SortBy:       sortFor(node.Item, sort),
		StartIndex:   w.queryStart(),
		Limit:        w.Limit,
	}
	result, err := r.store.Items(ctx, q)
	if err != nil {
		return Page{}, err
	}
	return wrapItems(result), nil
}

func (r Resolver) folderChildren(ctx context.Context, node Node, user library.User, sort []library.SortField, w Window) (Page, error) {
	notPlaceholder := false
	q := library.ItemsQuery{
		User:         user,
		ParentID:     node.Item.ID,
		ExcludeKinds: []library.Kind{library.KindGame, library.KindBook},
		Placeholder:  &notPlaceholder,
		SortBy:       sortFor(node.Item, sort),
		StartIndex:   w.queryStart(),
		Limit:        w.Limit,
	}
	if node.Item.ID == user.RootID {
		// Top-level enumeration shows only the preset library views.
		q.CollectionTypes = []library.CollectionType{
			library.CollectionMovies,
			library.CollectionTVShows,
			library.CollectionMusic,
		}
	}

	result, err := r.store.Items(ctx, q)
	if err != nil {
		return Page{}, err
	}
	return wrapItems(result), nil
}

// sortFor injects a leading name sort for stable paging unless the container
// reports its native order as already sorted.
func sortFor(item library.Item, sort []library.SortField) []library.SortField {
	if item.PreSorted {
		return sort
	}
	out := []library.SortField{library.SortByName}
	for _, f := range sort {
		if f != library.SortByName {
			out = append(out, f)
		}
	}
	return out
}

// ParseSortCriteria maps wire sort criteria ("+dc:title,-dc:date") onto the
// store's sort fields. Unknown properties are ignored; direction modifiers
// are accepted but not honored by the in-memory store.
func ParseSortCriteria(raw string) []library.SortField {
	out := []library.SortField{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimLeft(strings.TrimSpace(part), "+-")
		switch strings.ToLower(part) {
		case "dc:title":
			out = append(out, library.SortByName)
		case "dc:date":
			out = append(out, library.SortByDate)
		}
	}
	return out
}

func wrapItems(result library.Result) Page {
	nodes := make([]Node, 0, len(result.Items))
	for _, item := range result.Items {
		stub := StubNone
		if item.Kind == library.KindPerson {
			stub = StubFolder
		}
		nodes = append(nodes, Node{Item: item, Stub: stub})
	}
	return Page{Nodes: nodes, Total: result.TotalCount}
}
