// Package updatefeed tracks library change notifications published over
// MQTT and advances the SystemUpdateID counter clients poll to decide when
// to re-browse.
package updatefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/hearthcast/hearthcast/internal/library"
)

// DefaultTopic is the library change topic.
const DefaultTopic = "hearthcast/library/updates"

// ChangeEvent is the payload published on the update topic.
type ChangeEvent struct {
	Reason string `json:"reason"`
	ItemID string `json:"itemId,omitempty"`
}

// Config configures the update feed.
type Config struct {
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
	Timeout  time.Duration
}

// Module subscribes to the change topic and bumps the update counter.
type Module struct {
	log     *zap.Logger
	counter *library.UpdateCounter
	config  Config
	client  paho.Client
}

// NewModule creates an update feed module.
func NewModule(log *zap.Logger, counter *library.UpdateCounter, cfg Config) (*Module, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if counter == nil {
		return nil, errors.New("update counter required")
	}
	if strings.TrimSpace(cfg.Broker) == "" {
		return nil, errors.New("broker required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		cfg.Topic = DefaultTopic
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		cfg.ClientID = fmt.Sprintf("hearthd-updates-%d", time.Now().UnixNano())
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &Module{log: log, counter: counter, config: cfg}, nil
}

// Run connects, subscribes, and serves until cancelled.
func (m *Module) Run(ctx context.Context) error {
	opts := paho.NewClientOptions().AddBroker(m.config.Broker)
	opts.SetClientID(m.config.ClientID)
	opts.SetConnectTimeout(m.config.Timeout)
	opts.SetAutoReconnect(true)
	if m.config.Username != "" {
		opts.SetUsername(m.config.Username)
		opts.SetPassword(m.config.Password)
	}
	opts.SetOnConnectHandler(func(client paho.Client) {
		token := client.Subscribe(m.config.Topic, 1, func(_ paho.Client, msg paho.Message) {
			m.onMessage(msg.Payload())
		})
		token.Wait()
		if err := token.Error(); err != nil {
			m.log.Error("update topic subscribe failed", zap.String("topic", m.config.Topic), zap.Error(err))
		}
	})

	m.client = paho.NewClient(opts)
	if token := m.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect %s: %w", m.config.Broker, token.Error())
	}
	m.log.Info("update feed subscribed",
		zap.String("broker", m.config.Broker),
		zap.String("topic", m.config.Topic),
	)

	<-ctx.Done()
	m.client.Disconnect(250)
	return nil
}

// Publish announces a local library change to the update topic so other
// listeners converge on the same SystemUpdateID epoch.
func (m *Module) Publish(event ChangeEvent) error {
	if m.client == nil || !m.client.IsConnected() {
		return errors.New("update feed not connected")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if token := m.client.Publish(m.config.Topic, 1, false, payload); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// onMessage bumps the counter for every change event. Malformed payloads
// still count as a change; a missed bump is worse than a spurious one.
func (m *Module) onMessage(payload []byte) {
	var event ChangeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		m.log.Warn("malformed change event", zap.ByteString("payload", payload), zap.Error(err))
	}
	id := m.counter.Bump()
	m.log.Debug("library change observed",
		zap.String("reason", event.Reason),
		zap.String("item_id", event.ItemID),
		zap.Uint64("update_id", id),
	)
}
