package notify

import (
	"context"

	"github.com/ashwink/warranty-agent/internal/tools"
)

// Register adds the notification tool to a registry.
func (n *Notifier) Register(r *tools.Registry) {
	r.Register(&tools.Tool{
		Name: "send_email_notification",
		Description: "Send an email notification to a customer: warranty expiry " +
			"reminders, claim status updates, purchase confirmations, or general " +
			"messages.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"recipient_email": map[string]any{
					"type":        "string",
					"description": "Customer's email address",
				},
				"subject": map[string]any{
					"type":        "string",
					"description": "Email subject line",
				},
				"message": map[string]any{
					"type":        "string",
					"description": "Email message body",
				},
				"notification_type": map[string]any{
					"type":        "string",
					"description": "One of: warranty_expiry, claim_update, purchase_confirmation, general",
				},
			},
			"required": []string{"recipient_email", "subject", "message"},
		},
		Handler: n.handleSendEmail,
	})
}

func (n *Notifier) handleSendEmail(ctx context.Context, args map[string]any) (string, error) {
	recipient, _ := args["recipient_email"].(string)
	subject, _ := args["subject"].(string)
	message, _ := args["message"].(string)
	kind, _ := args["notification_type"].(string)

	if recipient == "" {
		return tools.ErrorResult("recipient_email is required"), nil
	}
	if subject == "" || message == "" {
		return tools.ErrorResult("subject and message are required"), nil
	}

	return tools.JSONResult(n.Send(ctx, recipient, subject, message, kind)), nil
}
