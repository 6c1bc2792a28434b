package events

import (
	"context"
	"log/slog"
	"testing"

	"github.com/ashwink/warranty-agent/internal/config"
)

func TestNewDisabledWithoutBroker(t *testing.T) {
	p := New(config.MQTTConfig{}, slog.Default())
	if p != nil {
		t.Fatal("expected nil publisher when broker is unset")
	}

	// Nil publisher drops events without panicking.
	p.Publish(context.Background(), ClaimFiled, map[string]any{"claim_id": 1})
	if err := p.Stop(context.Background()); err != nil {
		t.Errorf("Stop on nil publisher: %v", err)
	}
}

func TestTopicLayout(t *testing.T) {
	p := New(config.MQTTConfig{
		Broker:     "mqtt://broker.local:1883",
		TopicBase:  "warrantyd",
		InstanceID: "test-instance",
	}, slog.Default())
	if p == nil {
		t.Fatal("expected publisher")
	}

	if got, want := p.eventTopic(AppointmentBooked), "warrantyd/test-instance/event/appointment_booked"; got != want {
		t.Errorf("eventTopic = %q, want %q", got, want)
	}
	if got, want := p.availabilityTopic(), "warrantyd/test-instance/availability"; got != want {
		t.Errorf("availabilityTopic = %q, want %q", got, want)
	}
}

func TestPublishBeforeStartIsNoop(t *testing.T) {
	p := New(config.MQTTConfig{Broker: "mqtt://broker.local:1883", InstanceID: "x"}, slog.Default())
	// No connection manager yet; must not panic or block.
	p.Publish(context.Background(), CCPPurchased, map[string]any{"warranty_id": 9})
}
