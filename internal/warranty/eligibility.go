package warranty

import (
	"fmt"

	"github.com/ashwink/warranty-agent/internal/store"
)

// CheckWarrantyStatus reports a vehicle's standard warranty, extended
// warranty and CCP flags together with all currently active warranty rows.
func (s *Service) CheckWarrantyStatus(registration string) map[string]any {
	vehicles, err := s.store.Vehicles()
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred while checking warranty status: %s", err))
	}
	vehicle, ok := findVehicle(vehicles, registration)
	if !ok {
		return errResult(fmt.Sprintf("Vehicle with registration %s not found in our system.", registration))
	}

	warranties, err := s.store.Warranties()
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred while checking warranty status: %s", err))
	}

	active := make([]map[string]any, 0)
	for _, w := range warranties {
		if w.VehicleRegistration == registration && w.Status == "active" {
			active = append(active, warrantyRecord(w))
		}
	}

	return map[string]any{
		"vehicle_registration":     registration,
		"model":                    vehicle.Model,
		"purchase_date":            vehicle.PurchaseDate,
		"current_mileage":          vehicle.CurrentMileage,
		"standard_warranty_expiry": vehicle.WarrantyExpiry,
		"has_extended_warranty":    vehicle.HasExtendedWarranty,
		"has_ccp":                  vehicle.HasCCP,
		"active_warranties":        active,
	}
}

// CheckExtendedWarrantyEligibility checks the three-year purchase window
// and returns the fixed extension options when the vehicle qualifies.
func (s *Service) CheckExtendedWarrantyEligibility(registration string) map[string]any {
	vehicles, err := s.store.Vehicles()
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred while checking eligibility: %s", err))
	}
	vehicle, ok := findVehicle(vehicles, registration)
	if !ok {
		return errResult(fmt.Sprintf("Vehicle with registration %s not found.", registration))
	}

	if vehicle.HasExtendedWarranty {
		return map[string]any{
			"eligible":             false,
			"reason":               "Vehicle already has an Extended Warranty.",
			"vehicle_registration": registration,
			"model":                vehicle.Model,
		}
	}

	purchased, err := parseDate(vehicle.PurchaseDate)
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred while checking eligibility: %s", err))
	}
	deadline := purchased.AddDate(0, 0, extendedWarrantyWindowDays)
	now := s.now()

	if now.After(deadline) {
		return map[string]any{
			"eligible":             false,
			"reason":               "Purchase window expired. Extended Warranty must be purchased within 3 years of vehicle purchase.",
			"vehicle_registration": registration,
			"model":                vehicle.Model,
		}
	}

	return map[string]any{
		"eligible":                 true,
		"vehicle_registration":     registration,
		"model":                    vehicle.Model,
		"purchase_date":            vehicle.PurchaseDate,
		"current_mileage":          groupThousands(vehicle.CurrentMileage) + " km",
		"standard_warranty_expiry": vehicle.WarrantyExpiry,
		"available_options": []map[string]any{
			{"option": "1 Year Extension", "coverage": "Up to 120,000 km", "price": "₹8,000"},
			{"option": "2 Year Extension", "coverage": "Up to 140,000 km", "price": "₹12,000"},
			{"option": "3 Year Extension", "coverage": "Up to 160,000 km", "price": "₹15,000"},
		},
		"purchase_deadline": deadline.Format(DateLayout),
		"days_remaining":    daysUntil(now, deadline),
	}
}

// CheckCCPEligibility verifies the CCP prerequisites: an extended warranty,
// no existing CCP, and the 21-month purchase window. On success the
// packages still within the vehicle's mileage are listed.
func (s *Service) CheckCCPEligibility(registration string) map[string]any {
	vehicles, err := s.store.Vehicles()
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred while checking CCP eligibility: %s", err))
	}
	vehicle, ok := findVehicle(vehicles, registration)
	if !ok {
		return errResult(fmt.Sprintf("Vehicle with registration %s not found.", registration))
	}

	if !vehicle.HasExtendedWarranty {
		return map[string]any{
			"eligible":             false,
			"reason":               "Extended Warranty is required before purchasing CCP. Please purchase Extended Warranty first.",
			"vehicle_registration": registration,
			"model":                vehicle.Model,
		}
	}
	if vehicle.HasCCP {
		return map[string]any{
			"eligible":             false,
			"reason":               "Vehicle already has an active CCP package.",
			"vehicle_registration": registration,
			"model":                vehicle.Model,
		}
	}

	purchased, err := parseDate(vehicle.PurchaseDate)
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred while checking CCP eligibility: %s", err))
	}
	deadline := purchased.AddDate(0, 0, ccpWindowDays)
	now := s.now()

	if now.After(deadline) {
		return map[string]any{
			"eligible":              false,
			"reason":                fmt.Sprintf("Purchase window expired. CCP must be purchased within 1 year 9 months of vehicle purchase date (%s).", vehicle.PurchaseDate),
			"vehicle_registration":  registration,
			"model":                 vehicle.Model,
			"purchase_deadline_was": deadline.Format(DateLayout),
		}
	}

	packages, err := s.store.CCPPackages()
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred while checking CCP eligibility: %s", err))
	}

	available := make([]map[string]any, 0)
	for _, p := range packages {
		if vehicle.CurrentMileage < p.MaxKilometers {
			available = append(available, map[string]any{
				"package_name": p.PackageName,
				"duration":     fmt.Sprintf("%d Year%s", p.DurationYears, plural(p.DurationYears)),
				"coverage_km":  fmt.Sprintf("Valid till %s km", groupThousands(p.MaxKilometers)),
				"price":        rupees(p.Price),
				"price_value":  p.Price,
				"coverage":     p.CoverageDetails,
			})
		}
	}

	return map[string]any{
		"eligible":             true,
		"vehicle_registration": registration,
		"model":                vehicle.Model,
		"purchase_date":        vehicle.PurchaseDate,
		"current_mileage":      groupThousands(vehicle.CurrentMileage) + " km",
		"available_packages":   available,
		"purchase_deadline":    deadline.Format(DateLayout),
		"days_remaining":       daysUntil(now, deadline),
	}
}

func warrantyRecord(w store.Warranty) map[string]any {
	return map[string]any{
		"warranty_id":          w.WarrantyID,
		"vehicle_registration": w.VehicleRegistration,
		"warranty_type":        w.WarrantyType,
		"package_type":         w.PackageType,
		"start_date":           w.StartDate,
		"end_date":             w.EndDate,
		"status":               w.Status,
		"price":                w.Price,
		"coverage_km":          w.CoverageKM,
	}
}
