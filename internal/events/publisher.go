// Package events publishes business events to an MQTT broker for
// downstream dashboards: appointments booked, claims filed, CCP packages
// purchased. Publishing is best effort; broker trouble is logged and never
// surfaces to the business operation that raised the event.
package events

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"

	"github.com/ashwink/warranty-agent/internal/config"
)

// Event names published under <topic_base>/<instance>/event/<name>.
const (
	AppointmentBooked = "appointment_booked"
	ClaimFiled        = "claim_filed"
	CCPPurchased      = "ccp_purchased"
)

// Publisher manages the MQTT connection and delivers retained event
// payloads. A nil Publisher is valid and drops every event, which is how
// an unset broker config disables the feature.
type Publisher struct {
	cfg        config.MQTTConfig
	instanceID string
	logger     *slog.Logger
	cm         *autopaho.ConnectionManager
}

// New creates a Publisher, or nil when no broker is configured. Call
// [Publisher.Start] to begin connecting.
func New(cfg config.MQTTConfig, logger *slog.Logger) *Publisher {
	if cfg.Broker == "" {
		return nil
	}
	instance := cfg.InstanceID
	if instance == "" {
		if host, err := os.Hostname(); err == nil {
			instance = host
		} else {
			instance = "warrantyd"
		}
	}
	return &Publisher{cfg: cfg, instanceID: instance, logger: logger}
}

// Start connects to the MQTT broker and blocks until ctx is cancelled.
func (p *Publisher) Start(ctx context.Context) error {
	if p == nil {
		return nil
	}

	brokerURL, err := url.Parse(p.cfg.Broker)
	if err != nil {
		return fmt.Errorf("parse mqtt broker URL: %w", err)
	}

	pahoCfg := autopaho.ClientConfig{
		ServerUrls:      []*url.URL{brokerURL},
		KeepAlive:       30,
		ConnectUsername: p.cfg.Username,
		ConnectPassword: []byte(p.cfg.Password),
		WillMessage: &paho.WillMessage{
			Topic:   p.availabilityTopic(),
			Payload: []byte("offline"),
			QoS:     1,
			Retain:  true,
		},
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			p.logger.Info("mqtt connected to broker", "broker", p.cfg.Broker)
			p.publishAvailability(ctx, cm, "online")
		},
		OnConnectError: func(err error) {
			p.logger.Warn("mqtt connection error", "error", err)
		},
		ClientConfig: paho.ClientConfig{
			ClientID: "warrantyd-" + p.instanceID,
		},
	}

	if brokerURL.Scheme == "mqtts" || brokerURL.Scheme == "ssl" {
		pahoCfg.TlsCfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	cm, err := autopaho.NewConnection(ctx, pahoCfg)
	if err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	p.cm = cm

	connCtx, connCancel := context.WithTimeout(ctx, 30*time.Second)
	defer connCancel()
	if err := cm.AwaitConnection(connCtx); err != nil {
		// autopaho keeps retrying in the background.
		p.logger.Warn("mqtt initial connection timed out, will retry in background", "error", err)
	}

	<-ctx.Done()
	return nil
}

// Stop publishes an offline availability message and disconnects.
func (p *Publisher) Stop(ctx context.Context) error {
	if p == nil || p.cm == nil {
		return nil
	}
	p.publishAvailability(ctx, p.cm, "offline")
	return p.cm.Disconnect(ctx)
}

// Publish delivers one retained business event. Failures are logged and
// swallowed.
func (p *Publisher) Publish(ctx context.Context, event string, payload map[string]any) {
	if p == nil || p.cm == nil {
		return
	}

	body := map[string]any{
		"event":     event,
		"instance":  p.instanceID,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	for k, v := range payload {
		body[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		p.logger.Error("mqtt marshal event payload", "event", event, "error", err)
		return
	}

	if _, err := p.cm.Publish(ctx, &paho.Publish{
		Topic:   p.eventTopic(event),
		Payload: data,
		QoS:     1,
		Retain:  true,
	}); err != nil {
		p.logger.Warn("mqtt event publish failed", "event", event, "error", err)
		return
	}
	p.logger.Debug("mqtt event published", "event", event)
}

func (p *Publisher) baseTopic() string {
	base := p.cfg.TopicBase
	if base == "" {
		base = "warrantyd"
	}
	return base + "/" + p.instanceID
}

func (p *Publisher) availabilityTopic() string {
	return p.baseTopic() + "/availability"
}

func (p *Publisher) eventTopic(event string) string {
	return p.baseTopic() + "/event/" + event
}

func (p *Publisher) publishAvailability(ctx context.Context, cm *autopaho.ConnectionManager, status string) {
	if _, err := cm.Publish(ctx, &paho.Publish{
		Topic:   p.availabilityTopic(),
		Payload: []byte(status),
		QoS:     1,
		Retain:  true,
	}); err != nil {
		p.logger.Warn("mqtt availability publish failed", "status", status, "error", err)
	}
}
