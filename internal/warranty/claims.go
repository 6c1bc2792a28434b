package warranty

import (
	"context"
	"fmt"

	"github.com/ashwink/warranty-agent/internal/events"
	"github.com/ashwink/warranty-agent/internal/notify"
	"github.com/ashwink/warranty-agent/internal/store"
	"github.com/ashwink/warranty-agent/internal/tools"
)

var validClaimTypes = []string{"water_damage", "fuel_damage", "rodent_damage", "insect_damage"}

var claimStatusMessages = map[string]string{
	"submitted": "Claim submitted. Awaiting inspection.",
	"approved":  "Claim approved. Repair work can begin.",
	"rejected":  "Claim rejected. Please contact customer support for details.",
	"completed": "Claim completed. Vehicle repaired and delivered.",
}

// FileCCPClaim records a damage claim against an active CCP warranty and
// emails the customer on file a confirmation. The default service center
// is the first one in the directory.
func (s *Service) FileCCPClaim(ctx context.Context, registration, claimType, description, serviceCenter string) map[string]any {
	s.store.Lock()
	defer s.store.Unlock()

	vehicles, err := s.store.Vehicles()
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred while filing the claim: %s", err))
	}
	vehicle, ok := findVehicle(vehicles, registration)
	if !ok {
		return errResult(fmt.Sprintf("Vehicle with registration %s not found.", registration))
	}
	if !vehicle.HasCCP {
		return errResult("Vehicle does not have an active CCP package. Claims can only be filed with active CCP coverage.")
	}

	warranties, err := s.store.Warranties()
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred while filing the claim: %s", err))
	}
	hasActiveCCP := false
	for _, w := range warranties {
		if w.VehicleRegistration == registration && w.WarrantyType == "ccp" && w.Status == "active" {
			hasActiveCCP = true
			break
		}
	}
	if !hasActiveCCP {
		return errResult("No active CCP warranty found for this vehicle.")
	}

	if !validClaimType(claimType) {
		return errResult("Invalid claim type. Must be one of: water_damage, fuel_damage, rodent_damage, insect_damage")
	}

	if serviceCenter == "" {
		centers, err := s.store.ServiceCenters()
		if err != nil {
			return errResult(fmt.Sprintf("An error occurred while filing the claim: %s", err))
		}
		if len(centers) > 0 {
			serviceCenter = centers[0].CenterName
		}
	}

	claims, err := s.store.Claims()
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred while filing the claim: %s", err))
	}
	claimID := store.NextID(claims, func(c store.Claim) int { return c.ClaimID })
	filingDate := s.now().Format(DateLayout)

	claims = append(claims, store.Claim{
		ClaimID:             claimID,
		VehicleRegistration: registration,
		ClaimType:           claimType,
		Description:         description,
		FilingDate:          filingDate,
		Status:              "submitted",
		ServiceCenter:       serviceCenter,
		EstimatedCost:       0,
		ResolutionDate:      "",
	})
	if err := s.store.SaveClaims(claims); err != nil {
		return errResult(fmt.Sprintf("An error occurred while filing the claim: %s", err))
	}

	reference := fmt.Sprintf("CCP%06d", claimID)
	customerEmail := s.sessionEmail(ctx)

	response := map[string]any{
		"success":              true,
		"claim_id":             claimID,
		"claim_reference":      reference,
		"vehicle_registration": registration,
		"model":                vehicle.Model,
		"claim_type":           titleCase(claimType),
		"filing_date":          filingDate,
		"status":               "Submitted",
		"service_center":       serviceCenter,
		"next_steps": []string{
			"Claim submitted successfully",
			"Confirmation email sent to your registered email",
			"Vehicle inspection will be scheduled within 24-48 hours",
			"Service center will contact you for appointment",
			fmt.Sprintf("Claim reference number: %s", reference),
			"Keep your vehicle registration and CCP documents ready",
		},
		"estimated_processing_time": "5-7 business days",
	}
	if customerEmail != "" {
		response["confirmation_email_sent_to"] = customerEmail
	} else {
		response["confirmation_email_sent_to"] = "Email not available"
	}

	if customerEmail != "" {
		body := claimEmailBody(claimID, reference, registration, vehicle.Model, titleCase(claimType), filingDate, serviceCenter)
		subject := fmt.Sprintf("Claim Submitted - Reference: %s", reference)
		outcome := s.notifier.Send(ctx, customerEmail, subject, body, notify.KindClaimUpdate)
		if sent, _ := outcome["success"].(bool); sent {
			response["email_confirmation"] = fmt.Sprintf("Confirmation email sent to %s", customerEmail)
		} else {
			response["email_confirmation"] = "Claim filed successfully, but email notification could not be sent"
		}
	} else {
		response["email_confirmation"] = "Email not sent (no email address found in your profile)"
	}

	s.events.Publish(ctx, events.ClaimFiled, map[string]any{
		"claim_id":             claimID,
		"claim_reference":      reference,
		"vehicle_registration": registration,
		"claim_type":           claimType,
	})

	return response
}

// GetClaimStatus returns the current state and status message of a claim.
func (s *Service) GetClaimStatus(claimID int) map[string]any {
	claims, err := s.store.Claims()
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred while retrieving claim status: %s", err))
	}

	var claim store.Claim
	found := false
	for _, c := range claims {
		if c.ClaimID == claimID {
			claim = c
			found = true
			break
		}
	}
	if !found {
		return errResult(fmt.Sprintf("Claim ID %d not found.", claimID))
	}

	vehicleModel := "Unknown"
	if vehicles, err := s.store.Vehicles(); err == nil {
		if v, ok := findVehicle(vehicles, claim.VehicleRegistration); ok {
			vehicleModel = v.Model
		}
	}

	statusMessage, ok := claimStatusMessages[claim.Status]
	if !ok {
		statusMessage = "Status unknown"
	}

	estimatedCost := "To be estimated"
	if claim.EstimatedCost > 0 {
		estimatedCost = rupees(int(claim.EstimatedCost))
	}
	resolution := claim.ResolutionDate
	if resolution == "" {
		resolution = "Pending"
	}

	return map[string]any{
		"claim_id":             claimID,
		"vehicle_registration": claim.VehicleRegistration,
		"vehicle_model":        vehicleModel,
		"claim_type":           titleCase(claim.ClaimType),
		"description":          claim.Description,
		"filing_date":          claim.FilingDate,
		"status":               titleCase(claim.Status),
		"status_message":       statusMessage,
		"service_center":       claim.ServiceCenter,
		"estimated_cost":       estimatedCost,
		"resolution_date":      resolution,
	}
}

func validClaimType(claimType string) bool {
	for _, t := range validClaimTypes {
		if t == claimType {
			return true
		}
	}
	return false
}

// sessionEmail resolves the signed-in customer's email, or "" when no
// customer is bound to the session.
func (s *Service) sessionEmail(ctx context.Context) string {
	userID, ok := tools.UserIDFromContext(ctx)
	if !ok {
		return ""
	}
	customer, ok, err := s.store.CustomerByID(userID)
	if err != nil || !ok {
		return ""
	}
	return customer.Email
}

func claimEmailBody(claimID int, reference, registration, model, claimType, filingDate, serviceCenter string) string {
	return fmt.Sprintf(`Your CCP claim has been submitted successfully!

Claim ID: %d
Claim Reference: %s

Vehicle: %s (%s)
Claim Type: %s
Filing Date: %s
Status: Submitted

Service Center: %s

Next Steps:
1. Claim submitted successfully
2. Vehicle inspection will be scheduled within 24-48 hours
3. Service center will contact you for appointment
4. Keep your vehicle registration and CCP documents ready

Estimated Processing Time: 5-7 business days

You will receive updates via email as your claim progresses.

Thank you for choosing Car Warranty Services!`,
		claimID, reference, registration, model, claimType, filingDate, serviceCenter)
}
