package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/ashwink/warranty-agent/internal/config"
	"github.com/ashwink/warranty-agent/internal/tools"
)

func TestSendMockModeWithoutSMTP(t *testing.T) {
	n := New(config.SMTPConfig{}, slog.Default())

	outcome := n.Send(context.Background(), "customer@example.com",
		"Warranty Reminder", "Your warranty expires in 30 days.", KindWarrantyExpiry)

	if outcome["success"] != true {
		t.Errorf("mock mode should report success, got %v", outcome["success"])
	}
	status, _ := outcome["delivery_status"].(string)
	if !strings.Contains(status, "Mock delivery") {
		t.Errorf("delivery_status = %q, want mock marker", status)
	}
	if outcome["recipient"] != "customer@example.com" {
		t.Errorf("recipient = %v", outcome["recipient"])
	}
	if outcome["notification_type"] != KindWarrantyExpiry {
		t.Errorf("notification_type = %v", outcome["notification_type"])
	}
}

func TestSendFailureIsAdvisory(t *testing.T) {
	// Unroutable host: delivery fails, but the outcome is a payload, not
	// an error.
	n := New(config.SMTPConfig{
		Host: "smtp.invalid", Port: 587, From: "support@carwarranty.com", StartTLS: true,
	}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // force an immediate dial failure

	outcome := n.Send(ctx, "customer@example.com", "Subject", "Body", KindGeneral)
	if outcome["success"] != false {
		t.Errorf("expected success=false, got %v", outcome["success"])
	}
	status, _ := outcome["delivery_status"].(string)
	if !strings.Contains(status, "Delivery failed") {
		t.Errorf("delivery_status = %q", status)
	}
}

func TestUnknownKindFallsBackToGeneral(t *testing.T) {
	n := New(config.SMTPConfig{}, slog.Default())

	outcome := n.Send(context.Background(), "customer@example.com", "S", "B", "carrier_pigeon")
	if outcome["notification_type"] != KindGeneral {
		t.Errorf("notification_type = %v, want general", outcome["notification_type"])
	}
}

func TestRenderBodyTemplates(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{KindWarrantyExpiry, "Action Required"},
		{KindClaimUpdate, "Claim Status Update"},
		{KindPurchaseConfirmation, "Keep this email for your records"},
		{KindGeneral, "Car Warranty Services Notification"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			body := renderBody(tt.kind, "the message")
			if !strings.Contains(body, "the message") {
				t.Error("body should embed the message")
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("body missing template marker %q:\n%s", tt.want, body)
			}
		})
	}
}

func TestSendEmailTool(t *testing.T) {
	n := New(config.SMTPConfig{}, slog.Default())
	r := tools.NewRegistry()
	n.Register(r)

	out, err := r.Execute(context.Background(), "send_email_notification", map[string]any{
		"recipient_email":   "customer@example.com",
		"subject":           "Claim Update",
		"message":           "Your claim CCP000003 was approved.",
		"notification_type": "claim_update",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var outcome map[string]any
	if err := json.Unmarshal([]byte(out), &outcome); err != nil {
		t.Fatalf("tool output not JSON: %v", err)
	}
	if outcome["success"] != true {
		t.Errorf("success = %v", outcome["success"])
	}

	// Missing recipient is a domain violation, reported in-band.
	out, err = r.Execute(context.Background(), "send_email_notification", map[string]any{
		"subject": "S", "message": "M",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, `"error"`) {
		t.Errorf("expected error payload, got %s", out)
	}
}
