package contentdirectory_test

import (
	"testing"

	"github.com/hearthcast/hearthcast/internal/contentdirectory"
)

func TestClassifySearch(t *testing.T) {
	cases := []struct {
		criteria string
		want     contentdirectory.SearchType
	}{
		{`upnp:class derivedfrom "object.item.audioItem"`, contentdirectory.SearchAudio},
		{`upnp:class derivedfrom "object.item.videoItem" and @refID exists false`, contentdirectory.SearchVideo},
		{`upnp:class derivedfrom "object.item.imageItem"`, contentdirectory.SearchImage},
		{`upnp:class = "object.container.playlistContainer"`, contentdirectory.SearchPlaylist},
		{`upnp:class = "object.container.album.musicAlbum"`, contentdirectory.SearchMusicAlbum},
		{`UPNP:CLASS DERIVEDFROM "OBJECT.ITEM.AUDIOITEM"`, contentdirectory.SearchAudio},
		{`dc:title contains "heat"`, contentdirectory.SearchNone},
		{``, contentdirectory.SearchNone},
	}
	for _, tc := range cases {
		if got := contentdirectory.ClassifySearch(tc.criteria); got != tc.want {
			t.Fatalf("ClassifySearch(%q) = %v, want %v", tc.criteria, got, tc.want)
		}
	}
}
