// Package memlibrary is the in-memory reference implementation of the
// library Store and UserData ports. It backs tests, the podcast feed module,
// and standalone demo deployments.
package memlibrary

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hearthcast/hearthcast/internal/library"
)

// Store holds library items, credits, and per-user playback state.
type Store struct {
	mu       sync.RWMutex
	items    map[uuid.UUID]library.Item
	order    map[uuid.UUID][]uuid.UUID
	all      []uuid.UUID
	people   map[uuid.UUID][]library.Person
	persons  map[uuid.UUID]library.Person
	byPerson map[uuid.UUID][]uuid.UUID
	users    map[uuid.UUID]library.User
	playback map[uuid.UUID]map[uuid.UUID]playbackEntry
	clock    library.Clock
}

type playbackEntry struct {
	Ticks     int64
	UpdatedAt int64
}

// NewStore creates an empty store. The clock stamps user-data writes.
func NewStore(clock library.Clock) *Store {
	return &Store{
		items:    map[uuid.UUID]library.Item{},
		order:    map[uuid.UUID][]uuid.UUID{},
		people:   map[uuid.UUID][]library.Person{},
		persons:  map[uuid.UUID]library.Person{},
		byPerson: map[uuid.UUID][]uuid.UUID{},
		users:    map[uuid.UUID]library.User{},
		playback: map[uuid.UUID]map[uuid.UUID]playbackEntry{},
		clock:    clock,
	}
}

// AddUser creates a user with a fresh root folder.
func (s *Store) AddUser(name string) library.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	root := library.Item{
		ID:   uuid.New(),
		Name: "Media Library",
		Kind: library.KindFolder,
	}
	s.upsertLocked(root)

	user := library.User{ID: uuid.New(), Name: name, RootID: root.ID}
	s.users[user.ID] = user
	return user
}

// UpsertItem inserts or replaces an item. New items are appended to their
// parent's native child order; replacements keep their slot.
func (s *Store) UpsertItem(item library.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(item)
}

func (s *Store) upsertLocked(item library.Item) {
	prev, exists := s.items[item.ID]
	if exists && prev.ParentID != item.ParentID {
		s.order[prev.ParentID] = removeID(s.order[prev.ParentID], item.ID)
		exists = false
	}
	s.items[item.ID] = item
	if !exists {
		s.order[item.ParentID] = append(s.order[item.ParentID], item.ID)
		s.all = append(s.all, item.ID)
	}
}

// AddPerson attaches a cast/crew credit to an item.
func (s *Store) AddPerson(itemID uuid.UUID, p library.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.people[itemID] = append(s.people[itemID], p)
	s.persons[p.ID] = p
	for _, id := range s.byPerson[p.ID] {
		if id == itemID {
			return
		}
	}
	s.byPerson[p.ID] = append(s.byPerson[p.ID], itemID)
}

// ItemByID implements library.Store. People resolve here too: a person id
// round-trips through the browse hierarchy like any other item id.
func (s *Store) ItemByID(_ context.Context, id uuid.UUID) (library.Item, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if item, ok := s.items[id]; ok {
		return item, true, nil
	}
	if p, ok := s.persons[id]; ok {
		return library.Item{ID: p.ID, Name: p.Name, Kind: library.KindPerson}, true, nil
	}
	return library.Item{}, false, nil
}

// PeopleFor implements library.Store.
func (s *Store) PeopleFor(_ context.Context, itemID uuid.UUID) ([]library.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]library.Person(nil), s.people[itemID]...), nil
}

// UserRoot implements library.Store.
func (s *Store) UserRoot(_ context.Context, user library.User) (library.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	root, ok := s.items[user.RootID]
	if !ok {
		return library.Item{}, fmt.Errorf("root folder %s not found", user.RootID)
	}
	return root, nil
}

// Items implements library.Store.
func (s *Store) Items(_ context.Context, q library.ItemsQuery) (library.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]library.Item, 0)
	for _, id := range s.candidates(q) {
		item, ok := s.items[id]
		if !ok || !matches(item, q) {
			continue
		}
		matched = append(matched, item)
	}

	applySort(matched, q.SortBy)

	total := int64(len(matched))
	start := int64(0)
	if q.StartIndex != nil && *q.StartIndex > 0 {
		start = *q.StartIndex
	}
	if start >= total {
		return library.Result{Items: []library.Item{}, TotalCount: total}, nil
	}
	end := total
	if q.Limit != nil && start+*q.Limit < end {
		end = start + *q.Limit
	}
	return library.Result{Items: matched[start:end], TotalCount: total}, nil
}

func (s *Store) candidates(q library.ItemsQuery) []uuid.UUID {
	switch {
	case q.PersonID != uuid.Nil:
		return s.byPerson[q.PersonID]
	case q.GenreID != uuid.Nil, q.ArtistID != uuid.Nil:
		return s.all
	case q.Recursive:
		return s.descendants(q.ParentID)
	default:
		return s.order[q.ParentID]
	}
}

func (s *Store) descendants(parentID uuid.UUID) []uuid.UUID {
	out := []uuid.UUID{}
	queue := append([]uuid.UUID(nil), s.order[parentID]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, id)
		queue = append(queue, s.order[id]...)
	}
	return out
}

func matches(item library.Item, q library.ItemsQuery) bool {
	if q.GenreID != uuid.Nil && !containsID(item.GenreIDs, q.GenreID) {
		return false
	}
	if q.ArtistID != uuid.Nil && !containsID(item.ArtistIDs, q.ArtistID) {
		return false
	}
	if len(q.IncludeKinds) > 0 && !containsKind(q.IncludeKinds, item.Kind) {
		return false
	}
	if containsKind(q.ExcludeKinds, item.Kind) {
		return false
	}
	if len(q.MediaTypes) > 0 && !containsMedia(q.MediaTypes, item.MediaType) {
		return false
	}
	if q.IsFolder != nil && item.IsFolder() != *q.IsFolder {
		return false
	}
	if q.Missing != nil && item.Missing != *q.Missing {
		return false
	}
	if q.Placeholder != nil && item.Placeholder != *q.Placeholder {
		return false
	}
	if len(q.CollectionTypes) > 0 {
		found := false
		for _, ct := range q.CollectionTypes {
			if item.CollectionType == ct {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// applySort applies sort fields with the last field as the weakest key;
// stable sorting in reverse field order composes the keys.
func applySort(items []library.Item, fields []library.SortField) {
	for i := len(fields) - 1; i >= 0; i-- {
		switch fields[i] {
		case library.SortByName:
			sort.SliceStable(items, func(a, b int) bool {
				return strings.ToLower(items[a].Name) < strings.ToLower(items[b].Name)
			})
		case library.SortByDate:
			sort.SliceStable(items, func(a, b int) bool {
				return items[a].Date.Before(items[b].Date)
			})
		}
	}
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsKind(kinds []library.Kind, kind library.Kind) bool {
	for _, v := range kinds {
		if v == kind {
			return true
		}
	}
	return false
}

func containsMedia(types []library.MediaType, mt library.MediaType) bool {
	for _, v := range types {
		if v == mt {
			return true
		}
	}
	return false
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// PlaybackPosition implements library.UserData.
func (s *Store) PlaybackPosition(_ context.Context, user library.User, itemID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playback[user.ID][itemID].Ticks, nil
}

// SetPlaybackPosition implements library.UserData.
func (s *Store) SetPlaybackPosition(_ context.Context, user library.User, itemID uuid.UUID, ticks int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byItem, ok := s.playback[user.ID]
	if !ok {
		byItem = map[uuid.UUID]playbackEntry{}
		s.playback[user.ID] = byItem
	}
	entry := playbackEntry{Ticks: ticks}
	if s.clock != nil {
		entry.UpdatedAt = s.clock.NowUnix()
	}
	byItem[itemID] = entry
	return nil
}
