package dlnaserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/hearthcast/hearthcast/internal/adapters/memlibrary"
	"github.com/hearthcast/hearthcast/internal/contentdirectory"
	"github.com/hearthcast/hearthcast/internal/library"
	"github.com/hearthcast/hearthcast/internal/presenter"
)

func newTestModule(t *testing.T) (*Module, *memlibrary.Store, library.User, *library.UpdateCounter) {
	t.Helper()
	store := memlibrary.NewStore(nil)
	user := store.AddUser("demo")
	updates := &library.UpdateCounter{}
	svc := contentdirectory.NewService(nil, store, store, updates, presenter.New())
	mod, err := NewModule(nil, svc, user, updates, Config{})
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	return mod, store, user, updates
}

func postSOAP(t *testing.T, mod *Module, action string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, ControlPath, strings.NewReader(body))
	req.Header.Set("SOAPACTION", `"`+serviceType+`#`+action+`"`)
	w := httptest.NewRecorder()
	mod.Handler().ServeHTTP(w, req)
	return w
}

func browseEnvelope(objectID string, flag string) string {
	return `<?xml version="1.0"?>` +
		`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>` +
		`<u:Browse xmlns:u="` + serviceType + `">` +
		`<ObjectID>` + objectID + `</ObjectID>` +
		`<BrowseFlag>` + flag + `</BrowseFlag>` +
		`<Filter>*</Filter><StartingIndex>0</StartingIndex><RequestedCount>0</RequestedCount><SortCriteria></SortCriteria>` +
		`</u:Browse></s:Body></s:Envelope>`
}

func TestControlBrowseChildren(t *testing.T) {
	mod, store, user, _ := newTestModule(t)
	store.UpsertItem(library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Movies", Kind: library.KindCollectionFolder, CollectionType: library.CollectionMovies})

	w := postSOAP(t, mod, "Browse", browseEnvelope("0", "BrowseDirectChildren"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "<u:BrowseResponse") {
		t.Fatalf("missing response element: %s", body)
	}
	if !strings.Contains(body, "<NumberReturned>1</NumberReturned>") {
		t.Fatalf("wrong number returned: %s", body)
	}
	if !strings.Contains(body, "&lt;container") {
		t.Fatalf("result not escaped DIDL: %s", body)
	}
}

func TestControlUnknownActionFault(t *testing.T) {
	mod, _, _, _ := newTestModule(t)

	body := `<?xml version="1.0"?><s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>` +
		`<u:Destroy xmlns:u="` + serviceType + `"></u:Destroy></s:Body></s:Envelope>`
	w := postSOAP(t, mod, "Destroy", body)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("fault status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<errorCode>401</errorCode>") {
		t.Fatalf("missing invalid action code: %s", w.Body.String())
	}
}

func TestControlMethodNotAllowed(t *testing.T) {
	mod, _, _, _ := newTestModule(t)
	req := httptest.NewRequest(http.MethodGet, ControlPath, nil)
	w := httptest.NewRecorder()
	mod.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestControlCacheInvalidatesOnUpdate(t *testing.T) {
	mod, store, user, updates := newTestModule(t)
	folder := library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Movies", Kind: library.KindFolder}
	store.UpsertItem(folder)

	first := postSOAP(t, mod, "Browse", browseEnvelope(folder.ID.String(), "BrowseDirectChildren"))
	if !strings.Contains(first.Body.String(), "<TotalMatches>0</TotalMatches>") {
		t.Fatalf("expected empty folder: %s", first.Body.String())
	}

	store.UpsertItem(library.Item{ID: uuid.New(), ParentID: folder.ID, Name: "Heat", Kind: library.KindMovie})
	updates.Bump()

	second := postSOAP(t, mod, "Browse", browseEnvelope(folder.ID.String(), "BrowseDirectChildren"))
	if !strings.Contains(second.Body.String(), "<TotalMatches>1</TotalMatches>") {
		t.Fatalf("stale response after library update: %s", second.Body.String())
	}
}

func TestControlSetBookmark(t *testing.T) {
	mod, store, user, _ := newTestModule(t)
	movie := library.Item{ID: uuid.New(), ParentID: user.RootID, Name: "Heat", Kind: library.KindMovie}
	store.UpsertItem(movie)

	body := `<?xml version="1.0"?><s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>` +
		`<u:X_SetBookmark xmlns:u="` + serviceType + `">` +
		`<ObjectID>` + movie.ID.String() + `</ObjectID><PosSecond>125</PosSecond>` +
		`</u:X_SetBookmark></s:Body></s:Envelope>`
	w := postSOAP(t, mod, "X_SetBookmark", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	ticks, err := store.PlaybackPosition(context.Background(), user, movie.ID)
	if err != nil {
		t.Fatalf("playback position: %v", err)
	}
	if ticks != 125*library.TicksPerSecond {
		t.Fatalf("ticks = %d", ticks)
	}
}

func TestParseSOAPAction(t *testing.T) {
	if got := parseSOAPAction(`"` + serviceType + `#Browse"`); got != "Browse" {
		t.Fatalf("got %q", got)
	}
	if got := parseSOAPAction(""); got != "" {
		t.Fatalf("empty header parsed as %q", got)
	}
}
