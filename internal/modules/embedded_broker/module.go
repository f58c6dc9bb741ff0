// Package embeddedbroker runs an in-process MQTT broker so a single-box
// deployment needs no external broker for the library update feed.
package embeddedbroker

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	mqtt "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"go.uber.org/zap"
)

// Config configures the embedded broker.
type Config struct {
	Listen         string
	AllowAnonymous bool
	Username       string
	Password       string
}

// Module hosts the broker for the lifetime of its Run context.
type Module struct {
	log    *zap.Logger
	server *mqtt.Server
	config Config
}

// NewModule creates an embedded broker module.
func NewModule(log *zap.Logger, cfg Config) (*Module, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if strings.TrimSpace(cfg.Listen) == "" {
		cfg.Listen = "127.0.0.1:1883"
	}

	server := mqtt.New(&mqtt.Options{
		InlineClient: true,
		Logger:       slog.New(&zapHandler{log: log.Named("mqtt")}),
	})

	switch {
	case cfg.AllowAnonymous:
		if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
			return nil, err
		}
	case cfg.Username != "":
		ledger := &auth.Ledger{
			Auth: auth.AuthRules{{Username: auth.RString(cfg.Username), Password: auth.RString(cfg.Password), Allow: true}},
			ACL:  auth.ACLRules{{Username: auth.RString(cfg.Username), Filters: auth.Filters{auth.RString("#"): auth.ReadWrite}}},
		}
		if err := server.AddHook(new(auth.Hook), &auth.Options{Ledger: ledger}); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("embedded broker requires allow_anonymous or username")
	}

	return &Module{log: log, server: server, config: cfg}, nil
}

// BrokerURL returns the URL clients in the same process should dial.
func (m *Module) BrokerURL() string {
	return "tcp://" + m.config.Listen
}

// Publish delivers a message through the broker's inline client.
func (m *Module) Publish(topic string, payload []byte) error {
	return m.server.Publish(topic, payload, false, 1)
}

// Run serves until the context is cancelled.
func (m *Module) Run(ctx context.Context) error {
	listener := listeners.NewTCP(listeners.Config{ID: "tcp-embedded", Address: m.config.Listen})
	if err := m.server.AddListener(listener); err != nil {
		return err
	}

	go func() {
		_ = m.server.Serve()
	}()
	m.log.Info("embedded broker listening", zap.String("listen", m.config.Listen))

	<-ctx.Done()
	return m.server.Close()
}

// zapHandler bridges the broker's slog output onto zap.
type zapHandler struct {
	log   *zap.Logger
	attrs []slog.Attr
}

func (h *zapHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *zapHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]zap.Field, 0, len(h.attrs)+record.NumAttrs())
	for _, attr := range h.attrs {
		fields = append(fields, zap.Any(attr.Key, attr.Value.Any()))
	}
	record.Attrs(func(attr slog.Attr) bool {
		fields = append(fields, zap.Any(attr.Key, attr.Value.Any()))
		return true
	})
	switch {
	case record.Level >= slog.LevelError:
		h.log.Error(record.Message, fields...)
	case record.Level >= slog.LevelWarn:
		h.log.Warn(record.Message, fields...)
	case record.Level >= slog.LevelInfo:
		h.log.Info(record.Message, fields...)
	default:
		h.log.Debug(record.Message, fields...)
	}
	return nil
}

func (h *zapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &zapHandler{log: h.log, attrs: merged}
}

func (h *zapHandler) WithGroup(string) slog.Handler { return h }
