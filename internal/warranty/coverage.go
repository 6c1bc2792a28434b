package warranty

import (
	"fmt"
	"strings"
)

const maxServiceCenters = 10

// GetCoverageDetails returns the static coverage sheets for the two
// warranty products.
func (s *Service) GetCoverageDetails(coverageType string) map[string]any {
	switch strings.ToLower(coverageType) {
	case "extended_warranty":
		return map[string]any{
			"coverage_type": "Extended Warranty",
			"description":   "Extends your standard 3-year warranty up to 6 years or 160,000 km",
			"what_is_covered": []string{
				"Manufacturing defects",
				"Mechanical failures (engine, transmission, drivetrain)",
				"Electrical and electronic component failures",
				"Steering system issues",
				"Brake system problems",
				"Cooling system failures",
				"Fuel system issues",
				"Air conditioning system",
			},
			"what_is_not_covered": []string{
				"Regular maintenance and service",
				"Wear and tear items (brake pads, tires, batteries)",
				"Damage from accidents or misuse",
				"Modifications or alterations",
				"Cosmetic damage",
			},
			"benefits": []string{
				"Peace of mind with extended protection",
				"Coverage at all authorized service centers",
				"Genuine parts replacement",
				"No additional paperwork for covered repairs",
			},
		}
	case "ccp":
		return map[string]any{
			"coverage_type": "Customer Convenience Package (CCP)",
			"description":   "Special coverage for damage from water, fuel contamination, rodents, and insects",
			"prerequisite":  "Extended Warranty must be active",
			"what_is_covered": []string{
				"Water Damage (Hydrolock): Engine damage from water entry during floods/waterlogging",
				"Fuel Damage: Engine and fuel system damage from adulterated or contaminated fuel",
				"Rodent Damage: Wiring harness and component damage caused by rodents",
				"Insect Damage: Damage to ECU and components caused by insect infestation",
			},
			"coverage_limits": map[string]any{
				"CCP 1 Year": "Valid till 25,000 km - ₹3,500",
				"CCP 2 Year": "Valid till 45,000 km - ₹5,500",
				"CCP 3 Year": "Valid till 60,000 km - ₹7,500",
			},
			"claim_process": []string{
				"Report incident immediately",
				"Visit authorized service center",
				"Submit CCP documents and vehicle registration",
				"Inspection within 24-48 hours",
				"Approval within 5-7 business days",
			},
			"important_notes": []string{
				"Cannot be purchased without Extended Warranty",
				"Must be purchased within 1 year 9 months of vehicle purchase",
				"Valid only at Maruti Suzuki authorized service centers",
				"Covers repair/replacement costs as per policy terms",
			},
		}
	default:
		return errResult("Invalid coverage type. Use 'extended_warranty' or 'ccp'.")
	}
}

// FindServiceCenter lists authorized service centers, filtered by a
// case-insensitive city substring when one is given.
func (s *Service) FindServiceCenter(city string) map[string]any {
	centers, err := s.store.ServiceCenters()
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred while searching service centers: %s", err))
	}

	results := make([]map[string]any, 0)
	for _, c := range centers {
		if city != "" && !strings.Contains(strings.ToLower(c.City), strings.ToLower(city)) {
			continue
		}
		results = append(results, map[string]any{
			"center_name": c.CenterName,
			"city":        c.City,
			"address":     c.Address,
			"phone":       c.Phone,
			"email":       c.Email,
		})
		if city == "" && len(results) == maxServiceCenters {
			break
		}
	}

	if city != "" && len(results) == 0 {
		return errResult(fmt.Sprintf("No service centers found in %s. Please try another city.", city))
	}

	return map[string]any{
		"service_centers": results,
		"total_found":     len(results),
		"note":            "All centers are authorized for Extended Warranty and CCP services",
	}
}
