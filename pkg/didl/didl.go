// Package didl holds the DIDL-Lite XML vocabulary used by the UPnP
// ContentDirectory service. Browse and Search responses embed a DIDL-Lite
// fragment (no XML declaration) listing containers and items.
package didl

import (
	"bytes"
	"encoding/xml"
)

// Namespace URIs declared on the DIDL-Lite root element.
const (
	NSDIDL = "urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/"
	NSDC   = "http://purl.org/dc/elements/1.1/"
	NSUPnP = "urn:schemas-upnp-org:metadata-1-0/upnp/"
	NSDLNA = "urn:schemas-dlna-org:metadata-1-0/"
)

// upnp:class values.
const (
	ClassStorageFolder     = "object.container.storageFolder"
	ClassMusicGenre        = "object.container.genre.musicGenre"
	ClassMusicArtist       = "object.container.person.musicArtist"
	ClassMusicAlbum        = "object.container.album.musicAlbum"
	ClassPersonContainer   = "object.container.person"
	ClassPlaylistContainer = "object.container.playlistContainer"
	ClassMusicTrack        = "object.item.audioItem.musicTrack"
	ClassAudioItem         = "object.item.audioItem"
	ClassMovie             = "object.item.videoItem.movie"
	ClassVideoItem         = "object.item.videoItem"
	ClassPhoto             = "object.item.imageItem.photo"
	ClassImageItem         = "object.item.imageItem"
)

// Object is a DIDL-Lite element, either a Container or an Item.
type Object interface {
	object()
}

// Common holds the properties shared by containers and items. Optional
// elements are omitted when empty; the id/parentID/restricted attributes are
// always written.
type Common struct {
	ID         string `xml:"id,attr"`
	ParentID   string `xml:"parentID,attr"`
	Restricted int    `xml:"restricted,attr"`

	Title string `xml:"dc:title"`
	Class string `xml:"upnp:class"`

	Creator     string `xml:"dc:creator,omitempty"`
	Date        string `xml:"dc:date,omitempty"`
	Description string `xml:"dc:description,omitempty"`
	Artist      string `xml:"upnp:artist,omitempty"`
	Album       string `xml:"upnp:album,omitempty"`
	Genre       string `xml:"upnp:genre,omitempty"`
	AlbumArtURI string `xml:"upnp:albumArtURI,omitempty"`

	Resources []Resource `xml:"res,omitempty"`
}

func (Common) object() {}

// Container is a browsable DIDL-Lite node.
type Container struct {
	XMLName xml.Name `xml:"container"`

	Common

	ChildCount *int64 `xml:"childCount,attr,omitempty"`
	Searchable int    `xml:"searchable,attr,omitempty"`
}

// Item is a leaf DIDL-Lite node.
type Item struct {
	XMLName xml.Name `xml:"item"`

	Common
}

// Resource describes one playable representation of an item.
type Resource struct {
	XMLName      xml.Name `xml:"res"`
	ProtocolInfo string   `xml:"protocolInfo,attr"`
	Duration     string   `xml:"duration,attr,omitempty"`
	Size         uint64   `xml:"size,attr,omitempty"`
	Bitrate      uint     `xml:"bitrate,attr,omitempty"`
	Resolution   string   `xml:"resolution,attr,omitempty"`
	URL          string   `xml:",chardata"`
}

type document struct {
	XMLName   xml.Name `xml:"DIDL-Lite"`
	NSDefault string   `xml:"xmlns,attr"`
	NSDC      string   `xml:"xmlns:dc,attr"`
	NSUPnP    string   `xml:"xmlns:upnp,attr"`
	NSDLNA    string   `xml:"xmlns:dlna,attr"`
	Objects   []Object
}

// Render serializes objects into a DIDL-Lite fragment. The fragment carries
// the dc/upnp/dlna namespace declarations and no XML declaration; object
// order is preserved.
func Render(objects []Object) (string, error) {
	doc := document{
		NSDefault: NSDIDL,
		NSDC:      NSDC,
		NSUPnP:    NSUPnP,
		NSDLNA:    NSDLNA,
		Objects:   objects,
	}
	var buf bytes.Buffer
	if err := xml.NewEncoder(&buf).Encode(doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
