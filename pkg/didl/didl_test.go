package didl

import (
	"strings"
	"testing"
)

func TestRenderFragment(t *testing.T) {
	count := int64(2)
	objects := []Object{
		Container{
			ChildCount: &count,
			Common: Common{
				ID:         "folder-1",
				ParentID:   "0",
				Restricted: 1,
				Title:      "Albums",
				Class:      ClassStorageFolder,
			},
		},
		Item{
			Common: Common{
				ID:         "track-1",
				ParentID:   "folder-1",
				Restricted: 1,
				Title:      "Song & Dance",
				Class:      ClassMusicTrack,
				Artist:     "Artist",
				Album:      "Album",
				Resources: []Resource{{
					ProtocolInfo: "http-get:*:audio/mpeg:*",
					Duration:     "0:03:05.000",
					URL:          "http://media.test/song.mp3",
				}},
			},
		},
	}

	out, err := Render(objects)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.HasPrefix(out, "<?xml") {
		t.Fatalf("fragment must not carry an XML declaration: %s", out)
	}
	for _, want := range []string{
		`xmlns="` + NSDIDL + `"`,
		`xmlns:dc="` + NSDC + `"`,
		`xmlns:upnp="` + NSUPnP + `"`,
		`xmlns:dlna="` + NSDLNA + `"`,
		`<container id="folder-1" parentID="0" restricted="1" childCount="2"`,
		`<dc:title>Albums</dc:title>`,
		`<upnp:class>object.container.storageFolder</upnp:class>`,
		`<item id="track-1"`,
		`<dc:title>Song &amp; Dance</dc:title>`,
		`<res protocolInfo="http-get:*:audio/mpeg:*" duration="0:03:05.000">http://media.test/song.mp3</res>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in: %s", want, out)
		}
	}
	if strings.Index(out, "<container") > strings.Index(out, "<item") {
		t.Fatalf("object order not preserved: %s", out)
	}
}

func TestRenderOmitsEmptyOptionalElements(t *testing.T) {
	out, err := Render([]Object{Item{Common: Common{ID: "i", ParentID: "0", Restricted: 1, Title: "T", Class: ClassVideoItem}}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, forbidden := range []string{"<upnp:artist>", "<upnp:album>", "<dc:date>", "<res"} {
		if strings.Contains(out, forbidden) {
			t.Fatalf("unexpected %q in: %s", forbidden, out)
		}
	}
}

func TestRenderEmptySet(t *testing.T) {
	out, err := Render(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<DIDL-Lite") || !strings.Contains(out, "</DIDL-Lite>") {
		t.Fatalf("expected empty DIDL-Lite document, got %s", out)
	}
}
