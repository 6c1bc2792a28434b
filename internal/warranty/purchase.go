package warranty

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashwink/warranty-agent/internal/events"
	"github.com/ashwink/warranty-agent/internal/notify"
	"github.com/ashwink/warranty-agent/internal/store"
)

var packageYears = map[string]int{"1year": 1, "2year": 2, "3year": 3}

// PurchaseCCPPackage re-verifies eligibility, records a pending-payment
// warranty row, flags the vehicle, and sends the confirmation email. The
// store lock is held across the whole sequence so two concurrent purchases
// cannot mint the same warranty ID.
func (s *Service) PurchaseCCPPackage(ctx context.Context, registration, packageType, customerEmail string) map[string]any {
	s.store.Lock()
	defer s.store.Unlock()

	vehicles, err := s.store.Vehicles()
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred during CCP purchase: %s", err))
	}
	vehicle, ok := findVehicle(vehicles, registration)
	if !ok {
		return errResult(fmt.Sprintf("Vehicle with registration %s not found.", registration))
	}
	if !vehicle.HasExtendedWarranty {
		return errResult("Extended Warranty is required before purchasing CCP.")
	}
	if vehicle.HasCCP {
		return errResult("Vehicle already has an active CCP package.")
	}

	years, ok := packageYears[packageType]
	if !ok {
		return errResult("Invalid package type. Choose '1year', '2year', or '3year'.")
	}

	packages, err := s.store.CCPPackages()
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred during CCP purchase: %s", err))
	}
	var pkg store.CCPPackage
	found := false
	for _, p := range packages {
		if p.DurationYears == years {
			pkg = p
			found = true
			break
		}
	}
	if !found {
		return errResult(fmt.Sprintf("Package %s not found.", packageType))
	}

	// CCP coverage begins where the vehicle warranty ends.
	start, err := parseDate(vehicle.WarrantyExpiry)
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred during CCP purchase: %s", err))
	}
	end := start.AddDate(0, 0, years*365)

	warranties, err := s.store.Warranties()
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred during CCP purchase: %s", err))
	}
	warrantyID := store.NextID(warranties, func(w store.Warranty) int { return w.WarrantyID })

	warranties = append(warranties, store.Warranty{
		WarrantyID:          warrantyID,
		VehicleRegistration: registration,
		WarrantyType:        "ccp",
		PackageType:         packageType,
		StartDate:           start.Format(DateLayout),
		EndDate:             end.Format(DateLayout),
		Status:              "pending_payment",
		Price:               pkg.Price,
		CoverageKM:          pkg.MaxKilometers,
	})
	if err := s.store.SaveWarranties(warranties); err != nil {
		return errResult(fmt.Sprintf("An error occurred during CCP purchase: %s", err))
	}

	// Flagged immediately; activation happens after payment.
	for i := range vehicles {
		if vehicles[i].Registration == registration {
			vehicles[i].HasCCP = true
		}
	}
	if err := s.store.SaveVehicles(vehicles); err != nil {
		return errResult(fmt.Sprintf("An error occurred during CCP purchase: %s", err))
	}

	paymentLink := fmt.Sprintf("https://carwarranty.com/payment/%d", warrantyID)
	response := map[string]any{
		"success":              true,
		"warranty_id":          warrantyID,
		"vehicle_registration": registration,
		"model":                vehicle.Model,
		"package":              pkg.PackageName,
		"price":                rupees(pkg.Price),
		"coverage_km":          groupThousands(pkg.MaxKilometers) + " km",
		"validity":             fmt.Sprintf("%d year(s)", pkg.DurationYears),
		"status":               "Pending Payment",
		"payment_link":         paymentLink,
		"confirmation_email":   customerEmail,
		"message":              "Please complete payment within 24 hours to activate your CCP package.",
	}

	if customerEmail != "" {
		body := purchaseEmailBody(warrantyID, registration, vehicle.Model, pkg, paymentLink)
		subject := fmt.Sprintf("CCP Purchase Confirmation - Warranty ID %d", warrantyID)
		outcome := s.notifier.Send(ctx, customerEmail, subject, body, notify.KindPurchaseConfirmation)
		sent, _ := outcome["success"].(bool)
		status, _ := outcome["message"].(string)
		if status == "" {
			status = "Email sending attempted"
		}
		response["email_sent"] = sent
		response["email_status"] = status
	} else {
		response["email_sent"] = false
		response["email_status"] = "Email not sent (no email provided)"
	}

	s.events.Publish(ctx, events.CCPPurchased, map[string]any{
		"warranty_id":          warrantyID,
		"vehicle_registration": registration,
		"package_type":         packageType,
		"price":                pkg.Price,
	})

	return response
}

// CancelWarrantyService cancels a pending-payment warranty. Active
// warranties are refused, and cancelling a CCP clears the vehicle flag.
func (s *Service) CancelWarrantyService(warrantyID int) map[string]any {
	s.store.Lock()
	defer s.store.Unlock()

	warranties, err := s.store.Warranties()
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred during cancellation: %s", err))
	}

	idx := -1
	for i, w := range warranties {
		if w.WarrantyID == warrantyID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errResult(fmt.Sprintf("Warranty ID %d not found.", warrantyID))
	}

	warranty := warranties[idx]
	if warranty.Status == "active" {
		return errResult("Active warranties cannot be cancelled. Please contact customer support.")
	}
	if warranty.Status != "pending_payment" {
		return errResult(fmt.Sprintf("Warranty with status '%s' cannot be cancelled.", warranty.Status))
	}

	warranties[idx].Status = "cancelled"
	if err := s.store.SaveWarranties(warranties); err != nil {
		return errResult(fmt.Sprintf("An error occurred during cancellation: %s", err))
	}

	if warranty.WarrantyType == "ccp" {
		vehicles, err := s.store.Vehicles()
		if err != nil {
			return errResult(fmt.Sprintf("An error occurred during cancellation: %s", err))
		}
		for i := range vehicles {
			if vehicles[i].Registration == warranty.VehicleRegistration {
				vehicles[i].HasCCP = false
			}
		}
		if err := s.store.SaveVehicles(vehicles); err != nil {
			return errResult(fmt.Sprintf("An error occurred during cancellation: %s", err))
		}
	}

	return map[string]any{
		"success":              true,
		"warranty_id":          warrantyID,
		"vehicle_registration": warranty.VehicleRegistration,
		"warranty_type":        warranty.WarrantyType,
		"message":              fmt.Sprintf("%s warranty cancelled successfully. Refund will be processed within 7-10 business days.", strings.ToUpper(warranty.WarrantyType)),
	}
}

func purchaseEmailBody(warrantyID int, registration, model string, pkg store.CCPPackage, paymentLink string) string {
	return fmt.Sprintf(`Your CCP purchase has been initiated!

Warranty ID: %d

Vehicle: %s (%s)
Package: %s
Price: %s
Coverage: Up to %s km
Validity: %d year(s)

Status: Pending Payment

Payment Link: %s

IMPORTANT: Please complete payment within 24 hours to activate your CCP package.

What's Covered:
- Engine damage from water entry (hydrolock)
- Damage from adulterated fuel
- Rodent damage to wiring
- Insect damage to components

Thank you for choosing Car Warranty Services!`,
		warrantyID, registration, model, pkg.PackageName, rupees(pkg.Price),
		groupThousands(pkg.MaxKilometers), pkg.DurationYears, paymentLink)
}
