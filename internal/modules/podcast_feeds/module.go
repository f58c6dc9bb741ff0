// Package podcastfeeds ingests RSS/Atom podcast feeds into the library so
// DLNA clients can browse episodes next to local media. Each feed becomes a
// folder that keeps the feed's newest-first order.
package podcastfeeds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/hearthcast/hearthcast/internal/adapters/memlibrary"
	"github.com/hearthcast/hearthcast/internal/library"
)

// Notifier is told when ingestion changed the library.
type Notifier interface {
	LibraryChanged(reason string)
}

// Config configures feed ingestion.
type Config struct {
	Feeds           []string
	RefreshInterval time.Duration
	Timeout         time.Duration
}

// Module periodically fetches configured feeds into the store.
type Module struct {
	log      *zap.Logger
	store    *memlibrary.Store
	user     library.User
	notifier Notifier
	http     *http.Client
	parser   *gofeed.Parser
	config   Config

	collectionID uuid.UUID
}

// NewModule creates a podcast ingestion module.
func NewModule(log *zap.Logger, store *memlibrary.Store, user library.User, notifier Notifier, cfg Config) (*Module, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if store == nil {
		return nil, errors.New("store required")
	}
	if len(cfg.Feeds) == 0 {
		return nil, errors.New("at least one feed url required")
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Module{
		log:          log,
		store:        store,
		user:         user,
		notifier:     notifier,
		http:         &http.Client{Timeout: cfg.Timeout},
		parser:       gofeed.NewParser(),
		config:       cfg,
		collectionID: uuid.NewSHA1(uuid.NameSpaceURL, []byte("hearthcast:podcasts")),
	}, nil
}

// Run ingests once at startup, then on every refresh tick.
func (m *Module) Run(ctx context.Context) error {
	m.ensureCollection()
	m.refresh(ctx)

	ticker := time.NewTicker(m.config.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.refresh(ctx)
		}
	}
}

// ensureCollection creates the Podcasts view under the user root. It is a
// music collection so it shows up among the preset root views.
func (m *Module) ensureCollection() {
	m.store.UpsertItem(library.Item{
		ID:             m.collectionID,
		ParentID:       m.user.RootID,
		Name:           "Podcasts",
		Kind:           library.KindCollectionFolder,
		CollectionType: library.CollectionMusic,
	})
}

func (m *Module) refresh(ctx context.Context) {
	changed := false
	for _, url := range m.config.Feeds {
		if err := m.ingestFeed(ctx, url); err != nil {
			m.log.Error("feed ingestion failed", zap.String("feed", url), zap.Error(err))
			continue
		}
		changed = true
	}
	if changed && m.notifier != nil {
		m.notifier.LibraryChanged("podcast_refresh")
	}
}

func (m *Module) ingestFeed(ctx context.Context, url string) error {
	feed, err := m.fetch(ctx, url)
	if err != nil {
		return err
	}

	folderID := uuid.NewSHA1(uuid.NameSpaceURL, []byte(url))
	m.store.UpsertItem(library.Item{
		ID:        folderID,
		ParentID:  m.collectionID,
		Name:      feed.Title,
		Kind:      library.KindFolder,
		PreSorted: true,
	})

	episodes := append([]*gofeed.Item(nil), feed.Items...)
	sort.SliceStable(episodes, func(a, b int) bool {
		return publishedAt(episodes[a]).After(publishedAt(episodes[b]))
	})

	for _, episode := range episodes {
		item, ok := m.episodeItem(url, folderID, episode)
		if !ok {
			continue
		}
		m.store.UpsertItem(item)
	}
	m.log.Debug("feed ingested",
		zap.String("feed", url),
		zap.String("title", feed.Title),
		zap.Int("episodes", len(episodes)),
	)
	return nil
}

func (m *Module) fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return m.parser.ParseString(string(body))
}

// episodeItem maps a feed entry onto a library item. Entries without an
// audio enclosure are skipped.
func (m *Module) episodeItem(feedURL string, folderID uuid.UUID, episode *gofeed.Item) (library.Item, bool) {
	var enclosure *gofeed.Enclosure
	for _, e := range episode.Enclosures {
		if e != nil && e.URL != "" {
			enclosure = e
			break
		}
	}
	if enclosure == nil {
		return library.Item{}, false
	}

	key := episode.GUID
	if key == "" {
		key = enclosure.URL
	}
	item := library.Item{
		ID:        uuid.NewSHA1(uuid.NameSpaceURL, []byte(feedURL+"#"+key)),
		ParentID:  folderID,
		Name:      episode.Title,
		Kind:      library.KindAudio,
		MediaType: library.MediaAudio,
		Overview:  episode.Description,
		MediaURL:  enclosure.URL,
		MimeType:  enclosure.Type,
	}
	if ts := episode.PublishedParsed; ts != nil {
		item.Date = *ts
	}
	if episode.Image != nil {
		item.ArtworkURL = episode.Image.URL
	}
	return item, true
}

func publishedAt(episode *gofeed.Item) time.Time {
	if episode.PublishedParsed != nil {
		return *episode.PublishedParsed
	}
	if episode.UpdatedParsed != nil {
		return *episode.UpdatedParsed
	}
	return time.Time{}
}
