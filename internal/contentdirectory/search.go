package contentdirectory

import "strings"

// SearchType is the coarse classification derived from a SearchCriteria
// string. The criteria grammar is not parsed; classification is by upnp:class
// token, which is all the clients in the wild ever vary.
type SearchType int

const (
	SearchNone SearchType = iota
	SearchAudio
	SearchVideo
	SearchImage
	SearchPlaylist
	SearchMusicAlbum
)

// String names the search type for logs.
func (t SearchType) String() string {
	switch t {
	case SearchAudio:
		return "audio"
	case SearchVideo:
		return "video"
	case SearchImage:
		return "image"
	case SearchPlaylist:
		return "playlist"
	case SearchMusicAlbum:
		return "musicAlbum"
	default:
		return "none"
	}
}

// ClassifySearch derives the search type from raw criteria text.
func ClassifySearch(criteria string) SearchType {
	c := strings.ToLower(criteria)
	switch {
	case strings.Contains(c, "object.container.playlistcontainer"):
		return SearchPlaylist
	case strings.Contains(c, "object.container.album.musicalbum"):
		return SearchMusicAlbum
	case strings.Contains(c, "object.item.imageitem"):
		return SearchImage
	case strings.Contains(c, "object.item.videoitem"):
		return SearchVideo
	case strings.Contains(c, "object.item.audioitem"):
		return SearchAudio
	default:
		return SearchNone
	}
}
