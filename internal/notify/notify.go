// Package notify sends customer-facing email notifications. Delivery is
// strictly advisory: a failed or unconfigured send is reported in the
// outcome payload and never fails the business operation that requested it.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashwink/warranty-agent/internal/config"
	"github.com/ashwink/warranty-agent/internal/email"
)

// Notification kinds. Each selects a body template.
const (
	KindWarrantyExpiry       = "warranty_expiry"
	KindClaimUpdate          = "claim_update"
	KindPurchaseConfirmation = "purchase_confirmation"
	KindGeneral              = "general"
)

const sendTimeout = 30 * time.Second

// Notifier delivers notification email over SMTP. With no SMTP host
// configured it runs in mock-delivery mode, reporting success with a
// delivery_status that says no mail actually left the building.
type Notifier struct {
	smtp   config.SMTPConfig
	logger *slog.Logger
}

// New creates a notifier.
func New(cfg config.SMTPConfig, logger *slog.Logger) *Notifier {
	return &Notifier{smtp: cfg, logger: logger}
}

// Send composes and delivers one notification. The returned payload is
// what the requesting tool reports to the model: success flag, recipient,
// and a human-readable delivery status. It never returns an error.
func (n *Notifier) Send(ctx context.Context, recipient, subject, message, kind string, attachments ...email.Attachment) map[string]any {
	switch kind {
	case KindWarrantyExpiry, KindClaimUpdate, KindPurchaseConfirmation, KindGeneral:
	default:
		kind = KindGeneral
	}

	outcome := map[string]any{
		"recipient":         recipient,
		"subject":           subject,
		"notification_type": kind,
	}

	if n.smtp.Host == "" {
		n.logger.Info("email notification mocked", "recipient", recipient, "kind", kind)
		outcome["success"] = true
		outcome["message"] = fmt.Sprintf("Email notification prepared for %s", recipient)
		outcome["delivery_status"] = "Mock delivery (configure SMTP for real delivery)"
		return outcome
	}

	msg, err := email.ComposeMessage(email.ComposeOptions{
		From:        n.from(),
		To:          []string{recipient},
		Subject:     subject,
		Body:        renderBody(kind, message),
		Attachments: attachments,
	})
	if err != nil {
		n.logger.Warn("email compose failed", "recipient", recipient, "error", err)
		outcome["success"] = false
		outcome["message"] = fmt.Sprintf("Could not compose email for %s", recipient)
		outcome["delivery_status"] = fmt.Sprintf("Compose failed: %s", err)
		return outcome
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := email.SendMail(sendCtx, n.smtp, n.from(), []string{recipient}, msg); err != nil {
		n.logger.Warn("email delivery failed", "recipient", recipient, "error", err)
		outcome["success"] = false
		outcome["message"] = fmt.Sprintf("Email could not be delivered to %s", recipient)
		outcome["delivery_status"] = fmt.Sprintf("Delivery failed: %s", err)
		return outcome
	}

	n.logger.Info("email notification sent", "recipient", recipient, "kind", kind)
	outcome["success"] = true
	outcome["message"] = fmt.Sprintf("Email sent successfully to %s", recipient)
	outcome["delivery_status"] = "Delivered"
	return outcome
}

func (n *Notifier) from() string {
	if n.smtp.From != "" {
		return n.smtp.From
	}
	return n.smtp.Username
}

// renderBody wraps the message in the per-kind markdown template.
func renderBody(kind, message string) string {
	switch kind {
	case KindWarrantyExpiry:
		return fmt.Sprintf(`## Car Warranty Services Reminder

%s

**Action Required:** Your warranty is expiring soon. Contact us to extend your coverage.

---

This is an automated notification from Car Warranty Services.
For assistance, contact: 1800-XXX-XXXX`, message)

	case KindClaimUpdate:
		return fmt.Sprintf(`## Claim Status Update

%s

Track your claim status online or contact your service center.

---

Car Warranty Services`, message)

	case KindPurchaseConfirmation:
		return fmt.Sprintf(`## Purchase Confirmed

%s

**Important:** Keep this email for your records.

---

Thank you for choosing Car Warranty Services`, message)

	default:
		return fmt.Sprintf(`## Car Warranty Services Notification

%s

---

Car Warranty Services`, message)
	}
}
