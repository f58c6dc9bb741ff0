// Package presenter maps resolved library nodes onto DIDL-Lite elements.
// Class selection, property filtering, and resource formatting live here so
// the control dispatcher stays protocol-only.
package presenter

import (
	"fmt"

	"github.com/hearthcast/hearthcast/internal/contentdirectory"
	"github.com/hearthcast/hearthcast/internal/library"
	"github.com/hearthcast/hearthcast/pkg/didl"
)

// DIDL renders nodes into the DIDL-Lite vocabulary.
type DIDL struct{}

// New creates a DIDL presenter.
func New() *DIDL {
	return &DIDL{}
}

// FolderElement renders a folder-like node as a container element carrying
// its authoritative child count.
func (p *DIDL) FolderElement(node contentdirectory.Node, user library.User, childCount int64, filter contentdirectory.Filter) didl.Object {
	c := didl.Container{
		Common:     p.common(node, user, filter),
		ChildCount: &childCount,
		Searchable: 1,
	}
	c.Class = containerClass(node)
	return c
}

// ItemElement renders a leaf node as an item element.
func (p *DIDL) ItemElement(node contentdirectory.Node, user library.User, filter contentdirectory.Filter) didl.Object {
	i := didl.Item{Common: p.common(node, user, filter)}
	i.Class = itemClass(node.Item)
	if filter.Has("res") && node.Item.MediaURL != "" {
		i.Resources = []didl.Resource{resource(node.Item)}
	}
	return i
}

// Render implements the dispatcher's Presenter port.
func (p *DIDL) Render(objects []didl.Object) (string, error) {
	return didl.Render(objects)
}

func (p *DIDL) common(node contentdirectory.Node, user library.User, filter contentdirectory.Filter) didl.Common {
	item := node.Item
	c := didl.Common{
		ID:         contentdirectory.EncodeID(node, user),
		ParentID:   contentdirectory.EncodeParentID(node, user),
		Restricted: 1,
		Title:      item.Name,
	}
	if filter.Has("dc:date") && !item.Date.IsZero() {
		c.Date = item.Date.Format("2006-01-02")
	}
	if filter.Has("dc:description") {
		c.Description = item.Overview
	}
	if len(item.Artists) > 0 {
		if filter.Has("dc:creator") {
			c.Creator = item.Artists[0]
		}
		if filter.Has("upnp:artist") {
			c.Artist = item.Artists[0]
		}
	}
	if filter.Has("upnp:album") {
		c.Album = item.Album
	}
	if filter.Has("upnp:albumArtURI") {
		c.AlbumArtURI = item.ArtworkURL
	}
	return c
}

func containerClass(node contentdirectory.Node) string {
	switch {
	case node.Item.Kind == library.KindMusicGenre:
		return didl.ClassMusicGenre
	case node.Item.Kind == library.KindMusicArtist:
		return didl.ClassMusicArtist
	case node.Item.Kind == library.KindMusicAlbum:
		return didl.ClassMusicAlbum
	case node.Item.Kind == library.KindPlaylist:
		return didl.ClassPlaylistContainer
	case node.Item.Kind == library.KindPerson:
		return didl.ClassPersonContainer
	default:
		return didl.ClassStorageFolder
	}
}

func itemClass(item library.Item) string {
	switch item.Kind {
	case library.KindAudio:
		if item.Album != "" {
			return didl.ClassMusicTrack
		}
		return didl.ClassAudioItem
	case library.KindMovie:
		return didl.ClassMovie
	case library.KindPhoto:
		return didl.ClassPhoto
	default:
		return didl.ClassVideoItem
	}
}

func resource(item library.Item) didl.Resource {
	mime := item.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}
	r := didl.Resource{
		ProtocolInfo: fmt.Sprintf("http-get:*:%s:*", mime),
		URL:          item.MediaURL,
	}
	if item.DurationMS > 0 {
		r.Duration = formatDuration(item.DurationMS)
	}
	return r
}

// formatDuration renders milliseconds in the res@duration form h:mm:ss.mmm.
func formatDuration(ms int64) string {
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1_000 % 60
	return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, ms%1_000)
}
