package contentdirectory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/hearthcast/hearthcast/internal/contentdirectory"
	"github.com/hearthcast/hearthcast/internal/library"
)

func TestResolverGenreAlbums(t *testing.T) {
	store, user := newTestLibrary(t)
	resolver := contentdirectory.NewResolver(nil, store)

	music := library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Music", Kind: library.KindCollectionFolder, CollectionType: library.CollectionMusic}
	store.UpsertItem(music)
	genre := library.Item{ID: uuid.New(), ParentID: music.ID, Name: "Jazz", Kind: library.KindMusicGenre}
	store.UpsertItem(genre)
	store.UpsertItem(library.Item{ID: uuid.New(), ParentID: music.ID, Name: "Kind of Blue", Kind: library.KindMusicAlbum, GenreIDs: []uuid.UUID{genre.ID}})
	store.UpsertItem(library.Item{ID: uuid.New(), ParentID: music.ID, Name: "Abbey Road", Kind: library.KindMusicAlbum})

	page, err := resolver.Children(context.Background(), contentdirectory.Node{Item: genre}, user, nil, contentdirectory.Window{})
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if page.Total != 1 || len(page.Nodes) != 1 || page.Nodes[0].Item.Name != "Kind of Blue" {
		t.Fatalf("genre albums mismatch: %+v", page)
	}
}

func TestResolverArtistAlbums(t *testing.T) {
	store, user := newTestLibrary(t)
	resolver := contentdirectory.NewResolver(nil, store)

	artist := library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Miles Davis", Kind: library.KindMusicArtist}
	store.UpsertItem(artist)
	store.UpsertItem(library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Kind of Blue", Kind: library.KindMusicAlbum, ArtistIDs: []uuid.UUID{artist.ID}})
	store.UpsertItem(library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Unrelated", Kind: library.KindMusicAlbum})

	page, err := resolver.Children(context.Background(), contentdirectory.Node{Item: artist}, user, nil, contentdirectory.Window{})
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if len(page.Nodes) != 1 || page.Nodes[0].Item.Name != "Kind of Blue" {
		t.Fatalf("artist albums mismatch: %+v", page)
	}
}

func TestResolverPeopleListingPagesInMemory(t *testing.T) {
	store, user := newTestLibrary(t)
	resolver := contentdirectory.NewResolver(nil, store)

	movie := library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Heat", Kind: library.KindMovie}
	store.UpsertItem(movie)
	for _, name := range []string{"Al", "Bob", "Cyd"} {
		store.AddPerson(movie.ID, library.Person{ID: uuid.New(), Name: name, Type: "Actor"})
	}

	limit := int64(1)
	page, err := resolver.Children(context.Background(),
		contentdirectory.Node{Item: movie, Stub: contentdirectory.StubPeople},
		user, nil, contentdirectory.Window{Start: 1, Limit: &limit})
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("total = %d, want 3", page.Total)
	}
	if len(page.Nodes) != 1 || page.Nodes[0].Item.Name != "Bob" {
		t.Fatalf("window mismatch: %+v", page.Nodes)
	}
	got := page.Nodes[0]
	if got.Item.Kind != library.KindPerson || got.Stub != contentdirectory.StubFolder {
		t.Fatalf("person node not folder-wrapped: %+v", got)
	}
}

func TestResolverPersonMedia(t *testing.T) {
	store, user := newTestLibrary(t)
	resolver := contentdirectory.NewResolver(nil, store)

	person := library.Person{ID: uuid.New(), Name: "Ana Torres", Type: "Actor"}
	movie := library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Tides", Kind: library.KindMovie}
	track := library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Theme", Kind: library.KindAudio}
	store.UpsertItem(movie)
	store.UpsertItem(track)
	store.AddPerson(movie.ID, person)
	store.AddPerson(track.ID, person)

	node := contentdirectory.Node{
		Item: library.Item{ID: person.ID, Name: person.Name, Kind: library.KindPerson},
		Stub: contentdirectory.StubFolder,
	}
	page, err := resolver.Children(context.Background(), node, user, nil, contentdirectory.Window{})
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if len(page.Nodes) != 1 || page.Nodes[0].Item.ID != movie.ID {
		t.Fatalf("person media must be movies/series/trailers only: %+v", page.Nodes)
	}
}

func TestResolverUnmatchedStubIsEmpty(t *testing.T) {
	store, user := newTestLibrary(t)
	resolver := contentdirectory.NewResolver(nil, store)

	movie := library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Heat", Kind: library.KindMovie}
	store.UpsertItem(movie)

	page, err := resolver.Children(context.Background(),
		contentdirectory.Node{Item: movie, Stub: contentdirectory.StubFolder},
		user, nil, contentdirectory.Window{})
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if len(page.Nodes) != 0 || page.Total != 0 {
		t.Fatalf("unmatched stub must enumerate empty, got %+v", page)
	}
}

func TestResolverRootShowsPresetViewsOnly(t *testing.T) {
	store, user := newTestLibrary(t)
	resolver := contentdirectory.NewResolver(nil, store)

	store.UpsertItem(library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Movies", Kind: library.KindCollectionFolder, CollectionType: library.CollectionMovies})
	store.UpsertItem(library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Books", Kind: library.KindCollectionFolder})

	root := contentdirectory.Node{Item: library.Item{ID: user.RootID, Kind: library.KindFolder}}
	page, err := resolver.Children(context.Background(), root, user, nil, contentdirectory.Window{})
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if len(page.Nodes) != 1 || page.Nodes[0].Item.Name != "Movies" {
		t.Fatalf("root views mismatch: %+v", page.Nodes)
	}
}

func TestResolverFolderFiltersAndSort(t *testing.T) {
	store, user := newTestLibrary(t)
	resolver := contentdirectory.NewResolver(nil, store)

	folder := library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Movies", Kind: library.KindFolder}
	store.UpsertItem(folder)
	store.UpsertItem(library.Item{ID: uuid.New(), ParentID: folder.ID, Name: "Zulu", Kind: library.KindMovie})
	store.UpsertItem(library.Item{ID: uuid.New(), ParentID: folder.ID, Name: "Alien", Kind: library.KindMovie})
	store.UpsertItem(library.Item{ID: uuid.New(), ParentID: folder.ID, Name: "Chess", Kind: library.KindGame})
	store.UpsertItem(library.Item{ID: uuid.New(), ParentID: folder.ID, Name: "Draft", Kind: library.KindMovie, Placeholder: true})

	page, err := resolver.Children(context.Background(), contentdirectory.Node{Item: folder}, user, nil, contentdirectory.Window{})
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if len(page.Nodes) != 2 || page.Nodes[0].Item.Name != "Alien" || page.Nodes[1].Item.Name != "Zulu" {
		t.Fatalf("folder children mismatch: %+v", page.Nodes)
	}
}

func TestResolverPreSortedKeepsNativeOrder(t *testing.T) {
	store, user := newTestLibrary(t)
	resolver := contentdirectory.NewResolver(nil, store)

	feed := library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Daily Show", Kind: library.KindFolder, PreSorted: true}
	store.UpsertItem(feed)
	for _, name := range []string{"Episode 3", "Episode 2", "Episode 1"} {
		store.UpsertItem(library.Item{ID: uuid.New(), ParentID: feed.ID, Name: name, Kind: library.KindAudio})
	}

	page, err := resolver.Children(context.Background(), contentdirectory.Node{Item: feed}, user, nil, contentdirectory.Window{})
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	want := []string{"Episode 3", "Episode 2", "Episode 1"}
	for i, name := range want {
		if page.Nodes[i].Item.Name != name {
			t.Fatalf("pre-sorted order disturbed: %+v", page.Nodes)
		}
	}
}

func TestResolverChildCountProbe(t *testing.T) {
	store, user := newTestLibrary(t)
	resolver := contentdirectory.NewResolver(nil, store)

	folder := library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Movies", Kind: library.KindFolder}
	store.UpsertItem(folder)
	for i := 0; i < 5; i++ {
		store.UpsertItem(library.Item{ID: uuid.New(), ParentID: folder.ID, Name: "Movie", Kind: library.KindMovie})
	}

	count, err := resolver.ChildCount(context.Background(), contentdirectory.Node{Item: folder}, user)
	if err != nil {
		t.Fatalf("child count: %v", err)
	}
	if count != 5 {
		t.Fatalf("count = %d, want 5", count)
	}
}

func TestResolverSearchConstraints(t *testing.T) {
	store, user := newTestLibrary(t)
	resolver := contentdirectory.NewResolver(nil, store)

	folder := library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Mixed", Kind: library.KindFolder}
	store.UpsertItem(folder)
	sub := library.Item{ID: uuid.New(), ParentID: folder.ID, Name: "Nested", Kind: library.KindFolder}
	store.UpsertItem(sub)
	store.UpsertItem(library.Item{ID: uuid.New(), ParentID: sub.ID, Name: "Song", Kind: library.KindAudio, MediaType: library.MediaAudio})
	store.UpsertItem(library.Item{ID: uuid.New(), ParentID: folder.ID, Name: "Clip", Kind: library.KindVideo, MediaType: library.MediaVideo})
	store.UpsertItem(library.Item{ID: uuid.New(), ParentID: folder.ID, Name: "Gone", Kind: library.KindAudio, MediaType: library.MediaAudio, Missing: true})
	store.UpsertItem(library.Item{ID: uuid.New(), ParentID: folder.ID, Name: "Mix", Kind: library.KindPlaylist})

	node := contentdirectory.Node{Item: folder}

	page, err := resolver.Search(context.Background(), node, user, contentdirectory.SearchAudio, nil, contentdirectory.Window{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page.Nodes) != 1 || page.Nodes[0].Item.Name != "Song" {
		t.Fatalf("audio search mismatch: %+v", page.Nodes)
	}

	page, err = resolver.Search(context.Background(), node, user, contentdirectory.SearchPlaylist, nil, contentdirectory.Window{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page.Nodes) != 1 || page.Nodes[0].Item.Name != "Mix" {
		t.Fatalf("playlist search mismatch: %+v", page.Nodes)
	}

	count, err := resolver.SearchCount(context.Background(), node, user, contentdirectory.SearchAudio)
	if err != nil {
		t.Fatalf("search count: %v", err)
	}
	if count != 1 {
		t.Fatalf("search count = %d, want 1", count)
	}
}
