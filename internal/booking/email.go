package booking

import (
	"context"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/ashwink/warranty-agent/internal/email"
	"github.com/ashwink/warranty-agent/internal/notify"
	"github.com/ashwink/warranty-agent/internal/store"
)

const qrImageSize = 256

// sendConfirmationEmail delivers the booking confirmation with a QR code
// the service center scans at check-in. Delivery problems are reported in
// the returned status line, never as a failed booking.
func (s *Service) sendConfirmationEmail(ctx context.Context, req Request, vehicle store.Vehicle, center store.ServiceCenter, confirmation string) string {
	body := fmt.Sprintf(`Your appointment has been confirmed!

Confirmation Number: %s

Vehicle: %s (%s)
Service Center: %s
Address: %s
Phone: %s

Date: %s
Time: %s
Service Type: %s

Important Instructions:
- Arrive 15 minutes before your appointment
- Bring your vehicle registration documents
- Bring warranty/CCP documents if applicable
- Show the attached QR code at the service desk

If you need to reschedule, contact us at %s

Thank you for choosing Car Warranty Services!`,
		confirmation, req.VehicleRegistration, vehicle.Model, center.CenterName,
		center.Address, center.Phone, req.Date, req.Time,
		displayTitle(req.ServiceType), center.Phone)

	var attachments []email.Attachment
	if png, err := confirmationQR(req, confirmation); err != nil {
		s.logger.Warn("appointment QR generation failed", "confirmation", confirmation, "error", err)
	} else {
		attachments = append(attachments, email.Attachment{
			Filename:    fmt.Sprintf("appointment_%s.png", confirmation),
			ContentType: "image/png",
			Data:        png,
		})
	}

	subject := fmt.Sprintf("Appointment Confirmed - %s at %s", req.Date, req.Time)
	outcome := s.notifier.Send(ctx, req.CustomerEmail, subject, body, notify.KindGeneral, attachments...)
	if sent, _ := outcome["success"].(bool); sent {
		return fmt.Sprintf("Confirmation email sent to %s", req.CustomerEmail)
	}
	return "Appointment confirmed, but email notification could not be sent"
}

// confirmationQR encodes the check-in details as a PNG QR code.
func confirmationQR(req Request, confirmation string) ([]byte, error) {
	content := fmt.Sprintf("%s|%s|%s|%s %s|%s",
		confirmation, req.VehicleRegistration, req.ServiceCenter, req.Date, req.Time, req.ServiceType)
	return qrcode.Encode(content, qrcode.Medium, qrImageSize)
}
