package contentdirectory_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/hearthcast/hearthcast/internal/adapters/memlibrary"
	"github.com/hearthcast/hearthcast/internal/contentdirectory"
	"github.com/hearthcast/hearthcast/internal/library"
)

func newTestLibrary(t *testing.T) (*memlibrary.Store, library.User) {
	t.Helper()
	store := memlibrary.NewStore(nil)
	return store, store.AddUser("demo")
}

func TestDecodeRootSentinel(t *testing.T) {
	store, user := newTestLibrary(t)
	codec := contentdirectory.NewCodec(nil, store)

	for _, raw := range []string{"0", "", "  0  "} {
		node := codec.Decode(context.Background(), raw, user)
		if node.Item.ID != user.RootID {
			t.Fatalf("Decode(%q) resolved %s, want root %s", raw, node.Item.ID, user.RootID)
		}
		if node.Stub != contentdirectory.StubNone {
			t.Fatalf("Decode(%q) returned stub %v", raw, node.Stub)
		}
	}
}

func TestDecodeRealItem(t *testing.T) {
	store, user := newTestLibrary(t)
	codec := contentdirectory.NewCodec(nil, store)

	movie := library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Heat", Kind: library.KindMovie}
	store.UpsertItem(movie)

	node := codec.Decode(context.Background(), movie.ID.String(), user)
	if node.Item.ID != movie.ID || node.Stub != contentdirectory.StubNone {
		t.Fatalf("unexpected node %+v", node)
	}
}

func TestDecodePrefixes(t *testing.T) {
	store, user := newTestLibrary(t)
	codec := contentdirectory.NewCodec(nil, store)

	movie := library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Heat", Kind: library.KindMovie}
	store.UpsertItem(movie)

	node := codec.Decode(context.Background(), "folder_"+movie.ID.String(), user)
	if node.Stub != contentdirectory.StubFolder || node.Item.ID != movie.ID {
		t.Fatalf("folder_ prefix: got %+v", node)
	}
	if !node.FolderLike() {
		t.Fatal("folder stub must browse as a container")
	}

	node = codec.Decode(context.Background(), "people_"+movie.ID.String(), user)
	if node.Stub != contentdirectory.StubPeople || node.Item.ID != movie.ID {
		t.Fatalf("people_ prefix: got %+v", node)
	}
}

func TestDecodeParamsWrapper(t *testing.T) {
	store, user := newTestLibrary(t)
	codec := contentdirectory.NewCodec(nil, store)

	movie := library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Heat", Kind: library.KindMovie}
	store.UpsertItem(movie)

	raw := "dlna://host/play?PaRaMs=" + strings.Repeat("x;", 23) + movie.ID.String() + ";tail"
	node := codec.Decode(context.Background(), raw, user)
	if node.Item.ID != movie.ID {
		t.Fatalf("wrapped id resolved %s, want %s", node.Item.ID, movie.ID)
	}
}

func TestDecodeGarbageFallsBackToRoot(t *testing.T) {
	store, user := newTestLibrary(t)
	codec := contentdirectory.NewCodec(nil, store)

	for _, raw := range []string{
		"not-a-uuid",
		"folder_not-a-uuid",
		"Params=a;b;c",
		uuid.New().String(), // valid uuid, unknown item
	} {
		node := codec.Decode(context.Background(), raw, user)
		if node.Item.ID != user.RootID {
			t.Fatalf("Decode(%q) did not fall back to root", raw)
		}
	}
}

func TestEncodeIDs(t *testing.T) {
	store, user := newTestLibrary(t)

	root := contentdirectory.Node{Item: library.Item{ID: user.RootID, Kind: library.KindFolder}}
	if got := contentdirectory.EncodeID(root, user); got != "0" {
		t.Fatalf("root encodes as %q", got)
	}
	if got := contentdirectory.EncodeParentID(root, user); got != "-1" {
		t.Fatalf("root parent encodes as %q", got)
	}

	movie := library.Item{ID: uuid.New(), ParentID: user.RootID, Kind: library.KindMovie}
	store.UpsertItem(movie)
	node := contentdirectory.Node{Item: movie, Stub: contentdirectory.StubPeople}
	if got := contentdirectory.EncodeID(node, user); got != "people_"+movie.ID.String() {
		t.Fatalf("people stub encodes as %q", got)
	}
	if got := contentdirectory.EncodeParentID(node, user); got != "0" {
		t.Fatalf("child of root parent encodes as %q", got)
	}
}
