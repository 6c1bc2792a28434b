package warranty

import (
	"context"

	"github.com/ashwink/warranty-agent/internal/tools"
)

// registrationParam is the shared single-argument schema for tools keyed
// by vehicle registration.
func registrationParam() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"vehicle_registration": map[string]any{
				"type":        "string",
				"description": "Vehicle registration number (e.g. 'MH02XX1234')",
			},
		},
		"required": []string{"vehicle_registration"},
	}
}

// Register binds every warranty operation to the registry.
func (s *Service) Register(r *tools.Registry) {
	r.Register(&tools.Tool{
		Name: "check_warranty_status",
		Description: "Check the current warranty and CCP status for a specific vehicle, " +
			"including standard warranty, extended warranty and all active warranty records.",
		Parameters: registrationParam(),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return tools.JSONResult(s.CheckWarrantyStatus(tools.StringArg(args, "vehicle_registration"))), nil
		},
	})

	r.Register(&tools.Tool{
		Name: "check_extended_warranty_eligibility",
		Description: "Check if a vehicle is eligible for Extended Warranty purchase. " +
			"Extended Warranty can be purchased within the first 3 years of vehicle purchase.",
		Parameters: registrationParam(),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return tools.JSONResult(s.CheckExtendedWarrantyEligibility(tools.StringArg(args, "vehicle_registration"))), nil
		},
	})

	r.Register(&tools.Tool{
		Name: "check_ccp_eligibility",
		Description: "Check eligibility for the Customer Convenience Package (CCP). Requires " +
			"Extended Warranty, no existing CCP, purchase within 21 months of the vehicle " +
			"purchase date, and mileage within package limits.",
		Parameters: registrationParam(),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return tools.JSONResult(s.CheckCCPEligibility(tools.StringArg(args, "vehicle_registration"))), nil
		},
	})

	r.Register(&tools.Tool{
		Name: "purchase_ccp_package",
		Description: "Purchase a Customer Convenience Package (CCP) for a vehicle. Checks " +
			"eligibility, records the purchase as pending payment and emails a payment link.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"vehicle_registration": map[string]any{
					"type":        "string",
					"description": "Vehicle registration number (e.g. 'MH02XX1234')",
				},
				"package_type": map[string]any{
					"type":        "string",
					"description": "CCP package tier: '1year', '2year' or '3year'",
				},
				"customer_email": map[string]any{
					"type":        "string",
					"description": "Customer email for the purchase confirmation",
				},
			},
			"required": []string{"vehicle_registration", "package_type", "customer_email"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return tools.JSONResult(s.PurchaseCCPPackage(ctx,
				tools.StringArg(args, "vehicle_registration"),
				tools.StringArg(args, "package_type"),
				tools.StringArg(args, "customer_email"))), nil
		},
	})

	r.Register(&tools.Tool{
		Name: "cancel_warranty_service",
		Description: "Cancel a pending warranty or CCP purchase. Only warranties with " +
			"'pending_payment' status can be cancelled.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"warranty_id": map[string]any{
					"type":        "integer",
					"description": "ID of the warranty to be cancelled",
				},
			},
			"required": []string{"warranty_id"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			id, ok := tools.IntArg(args, "warranty_id")
			if !ok {
				return tools.ErrorResult("warranty_id must be an integer"), nil
			}
			return tools.JSONResult(s.CancelWarrantyService(id)), nil
		},
	})

	r.Register(&tools.Tool{
		Name: "file_ccp_claim",
		Description: "File a CCP claim for damage covered under the Customer Convenience " +
			"Package. Valid claim types: water_damage (hydrolock), fuel_damage (adulterated " +
			"fuel), rodent_damage (wiring), insect_damage (components).",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"vehicle_registration": map[string]any{
					"type":        "string",
					"description": "Vehicle registration number",
				},
				"claim_type": map[string]any{
					"type":        "string",
					"description": "One of: water_damage, fuel_damage, rodent_damage, insect_damage",
				},
				"description": map[string]any{
					"type":        "string",
					"description": "Detailed description of the damage",
				},
				"service_center": map[string]any{
					"type":        "string",
					"description": "Preferred service center name (optional)",
				},
			},
			"required": []string{"vehicle_registration", "claim_type", "description"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return tools.JSONResult(s.FileCCPClaim(ctx,
				tools.StringArg(args, "vehicle_registration"),
				tools.StringArg(args, "claim_type"),
				tools.StringArg(args, "description"),
				tools.StringArg(args, "service_center"))), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "get_claim_status",
		Description: "Get the current status and details of a specific CCP claim.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"claim_id": map[string]any{
					"type":        "integer",
					"description": "ID of the claim to check",
				},
			},
			"required": []string{"claim_id"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			id, ok := tools.IntArg(args, "claim_id")
			if !ok {
				return tools.ErrorResult("claim_id must be an integer"), nil
			}
			return tools.JSONResult(s.GetClaimStatus(id)), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "get_coverage_details",
		Description: "Get detailed information about what is covered under a warranty type.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"coverage_type": map[string]any{
					"type":        "string",
					"description": "Type of coverage: 'extended_warranty' or 'ccp'",
				},
			},
			"required": []string{"coverage_type"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return tools.JSONResult(s.GetCoverageDetails(tools.StringArg(args, "coverage_type"))), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "find_service_center",
		Description: "Find authorized service centers, optionally filtered by city.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"city": map[string]any{
					"type":        "string",
					"description": "City name to search service centers (optional)",
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return tools.JSONResult(s.FindServiceCenter(tools.StringArg(args, "city"))), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "show_my_warranties",
		Description: "Retrieve all warranties (Extended Warranty and CCP) for the current customer's vehicles.",
		Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return tools.JSONResult(s.ShowMyWarranties(ctx)), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "show_my_claims",
		Description: "Retrieve all CCP claims filed for the current customer's vehicles.",
		Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return tools.JSONResult(s.ShowMyClaims(ctx)), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "show_my_vehicles",
		Description: "Retrieve all vehicles registered under the current customer's account.",
		Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return tools.JSONResult(s.ShowMyVehicles(ctx)), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "show_customer_info",
		Description: "Retrieve personal information for the current customer.",
		Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return tools.JSONResult(s.ShowCustomerInfo(ctx)), nil
		},
	})
}
