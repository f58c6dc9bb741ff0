package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/hearthcast/hearthcast/internal/adapters/clock"
	"github.com/hearthcast/hearthcast/internal/adapters/memlibrary"
	"github.com/hearthcast/hearthcast/internal/contentdirectory"
	"github.com/hearthcast/hearthcast/internal/hearthd"
	"github.com/hearthcast/hearthcast/internal/library"
	dlnaserver "github.com/hearthcast/hearthcast/internal/modules/dlna_server"
	embeddedbroker "github.com/hearthcast/hearthcast/internal/modules/embedded_broker"
	podcastfeeds "github.com/hearthcast/hearthcast/internal/modules/podcast_feeds"
	updatefeed "github.com/hearthcast/hearthcast/internal/modules/update_feed"
	"github.com/hearthcast/hearthcast/internal/presenter"
)

func main() {
	var (
		configPath  string
		listen      string
		broker      string
		logLevel    string
		logFormat   string
		logOutput   string
		logUTC      bool
		printConfig bool
		dryRun      bool
	)

	defaultConfig, err := hearthd.DefaultConfigPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	flag.StringVar(&configPath, "config", defaultConfig, "config file path")
	flag.StringVar(&listen, "listen", "", "dlna server listen override")
	flag.StringVar(&broker, "broker", "", "MQTT broker URL override")
	flag.StringVar(&logLevel, "log-level", "", "log level override")
	flag.StringVar(&logFormat, "log-format", "", "log format override (json|console)")
	flag.StringVar(&logOutput, "log-output", "", "log output override (stdout|stderr)")
	flag.BoolVar(&logUTC, "log-utc", false, "use UTC timestamps in logs")
	flag.BoolVar(&printConfig, "print-config", false, "print resolved config and exit")
	flag.BoolVar(&dryRun, "dry-run", false, "validate config and exit")
	flag.Parse()

	cfg, err := hearthd.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	applyOverrides(&cfg, listen, broker, logLevel, logFormat, logOutput, logUTC)

	if printConfig {
		if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	if dryRun {
		return
	}

	logger := hearthd.NewLogger(hearthd.LogConfig{
		Level:  cfg.Server.LogLevel,
		Format: cfg.Server.LogFormat,
		Output: cfg.Server.LogOutput,
		UTC:    cfg.Server.LogUTC,
	})
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store := memlibrary.NewStore(clock.Clock{})
	userName := cfg.Server.User
	if userName == "" {
		userName = "default"
	}
	user := store.AddUser(userName)
	counter := &library.UpdateCounter{}
	svc := contentdirectory.NewService(logger.Named("contentdirectory"), store, store, counter, presenter.New())

	logger.Info("hearthd starting",
		zap.String("user", userName),
		zap.String("broker", cfg.Server.Broker),
		zap.Strings("modules", enabledModules(cfg)),
	)

	modules, err := buildModules(cfg, logger, store, user, counter, svc)
	if err != nil {
		logger.Error("failed to build modules", zap.Error(err))
		os.Exit(1)
	}

	supervisor := hearthd.Supervisor{Logger: logger}
	if err := supervisor.Run(ctx, modules); err != nil {
		logger.Error("supervisor error", zap.Error(err))
		os.Exit(1)
	}
}

func applyOverrides(cfg *hearthd.Config, listen string, broker string, logLevel string, logFormat string, logOutput string, logUTC bool) {
	if listen != "" {
		cfg.Modules.DLNAServer.Listen = listen
	}
	if broker != "" {
		cfg.Server.Broker = broker
	}
	if logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.Server.LogFormat = logFormat
	}
	if logOutput != "" {
		cfg.Server.LogOutput = logOutput
	}
	if logUTC {
		cfg.Server.LogUTC = true
	}
}

func buildModules(cfg hearthd.Config, logger *zap.Logger, store *memlibrary.Store, user library.User, counter *library.UpdateCounter, svc *contentdirectory.Service) ([]hearthd.ModuleRunner, error) {
	var modules []hearthd.ModuleRunner

	if cfg.Modules.EmbeddedBroker.Enabled {
		mod, err := embeddedbroker.NewModule(logger.Named("embedded_broker"), embeddedbroker.Config{
			Listen:         cfg.Modules.EmbeddedBroker.Listen,
			AllowAnonymous: cfg.Modules.EmbeddedBroker.AllowAnonymous,
			Username:       cfg.Modules.EmbeddedBroker.Username,
			Password:       cfg.Modules.EmbeddedBroker.Password,
		})
		if err != nil {
			return nil, err
		}
		if cfg.Server.Broker == "" {
			cfg.Server.Broker = mod.BrokerURL()
		}
		modules = append(modules, hearthd.ModuleRunner{Name: "embedded_broker", Run: mod.Run})
	}

	var feed *updatefeed.Module
	if cfg.Modules.UpdateFeed.Enabled {
		mod, err := updatefeed.NewModule(logger.Named("update_feed"), counter, updatefeed.Config{
			Broker:   cfg.Server.Broker,
			Topic:    cfg.Modules.UpdateFeed.Topic,
			ClientID: cfg.Modules.UpdateFeed.ClientID,
			Username: cfg.Modules.UpdateFeed.Username,
			Password: cfg.Modules.UpdateFeed.Password,
			Timeout:  time.Duration(cfg.Modules.UpdateFeed.TimeoutMS) * time.Millisecond,
		})
		if err != nil {
			return nil, err
		}
		feed = mod
		modules = append(modules, hearthd.ModuleRunner{Name: "update_feed", Run: mod.Run})
	}

	if cfg.Modules.DLNAServer.Enabled {
		mod, err := dlnaserver.NewModule(logger.Named("dlna_server"), svc, user, counter, dlnaserver.Config{
			Listen:        cfg.Modules.DLNAServer.Listen,
			FriendlyName:  cfg.Modules.DLNAServer.FriendlyName,
			CacheTTL:      time.Duration(cfg.Modules.DLNAServer.CacheTTLMS) * time.Millisecond,
			CacheSize:     cfg.Modules.DLNAServer.CacheSize,
			CacheCompress: cfg.Modules.DLNAServer.CacheCompress,
		})
		if err != nil {
			return nil, err
		}
		modules = append(modules, hearthd.ModuleRunner{Name: "dlna_server", Run: mod.Run})
	}

	if cfg.Modules.PodcastFeeds.Enabled {
		notifier := &changeNotifier{counter: counter, feed: feed, log: logger.Named("notifier")}
		mod, err := podcastfeeds.NewModule(logger.Named("podcast_feeds"), store, user, notifier, podcastfeeds.Config{
			Feeds:           cfg.Modules.PodcastFeeds.Feeds,
			RefreshInterval: time.Duration(cfg.Modules.PodcastFeeds.RefreshIntervalMinutes) * time.Minute,
			Timeout:         time.Duration(cfg.Modules.PodcastFeeds.TimeoutMS) * time.Millisecond,
		})
		if err != nil {
			return nil, err
		}
		modules = append(modules, hearthd.ModuleRunner{Name: "podcast_feeds", Run: mod.Run})
	}

	return modules, nil
}

// changeNotifier fans local library changes out to the update topic when a
// feed module is wired; the feed subscription then advances the counter. It
// bumps directly when running without MQTT.
type changeNotifier struct {
	counter *library.UpdateCounter
	feed    *updatefeed.Module
	log     *zap.Logger
}

func (n *changeNotifier) LibraryChanged(reason string) {
	if n.feed != nil {
		err := n.feed.Publish(updatefeed.ChangeEvent{Reason: reason})
		if err == nil {
			return
		}
		n.log.Debug("change publish failed, bumping locally", zap.Error(err))
	}
	n.counter.Bump()
}

func enabledModules(cfg hearthd.Config) []string {
	var names []string
	if cfg.Modules.EmbeddedBroker.Enabled {
		names = append(names, "embedded_broker")
	}
	if cfg.Modules.UpdateFeed.Enabled {
		names = append(names, "update_feed")
	}
	if cfg.Modules.DLNAServer.Enabled {
		names = append(names, "dlna_server")
	}
	if cfg.Modules.PodcastFeeds.Enabled {
		names = append(names, "podcast_feeds")
	}
	return names
}
