package warranty

import (
	"context"
	"fmt"

	"github.com/ashwink/warranty-agent/internal/store"
	"github.com/ashwink/warranty-agent/internal/tools"
)

const noVehiclesMessage = "No vehicles registered under your account."

// ShowMyVehicles lists every vehicle registered to the session customer.
func (s *Service) ShowMyVehicles(ctx context.Context) map[string]any {
	owned, errPayload := s.ownedVehicles(ctx)
	if errPayload != nil {
		return errPayload
	}
	if len(owned) == 0 {
		return map[string]any{"message": noVehiclesMessage}
	}

	records := make([]map[string]any, 0, len(owned))
	for _, v := range owned {
		records = append(records, vehicleRecord(v))
	}
	return map[string]any{
		"vehicles":       records,
		"total_vehicles": len(records),
	}
}

// ShowMyWarranties lists every warranty row attached to the customer's
// vehicles, each annotated with the vehicle model.
func (s *Service) ShowMyWarranties(ctx context.Context) map[string]any {
	owned, errPayload := s.ownedVehicles(ctx)
	if errPayload != nil {
		return errPayload
	}
	if len(owned) == 0 {
		return map[string]any{"message": noVehiclesMessage}
	}

	warranties, err := s.store.Warranties()
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred while retrieving warranties: %s", err))
	}

	models := modelByRegistration(owned)
	records := make([]map[string]any, 0)
	for _, w := range warranties {
		model, ok := models[w.VehicleRegistration]
		if !ok {
			continue
		}
		rec := warrantyRecord(w)
		rec["model"] = model
		records = append(records, rec)
	}

	return map[string]any{
		"warranties":       records,
		"total_warranties": len(records),
	}
}

// ShowMyClaims lists every claim filed against the customer's vehicles.
func (s *Service) ShowMyClaims(ctx context.Context) map[string]any {
	owned, errPayload := s.ownedVehicles(ctx)
	if errPayload != nil {
		return errPayload
	}
	if len(owned) == 0 {
		return map[string]any{"message": noVehiclesMessage}
	}

	claims, err := s.store.Claims()
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred while retrieving claims: %s", err))
	}

	models := modelByRegistration(owned)
	records := make([]map[string]any, 0)
	for _, c := range claims {
		model, ok := models[c.VehicleRegistration]
		if !ok {
			continue
		}
		records = append(records, map[string]any{
			"claim_id":             c.ClaimID,
			"vehicle_registration": c.VehicleRegistration,
			"model":                model,
			"claim_type":           c.ClaimType,
			"description":          c.Description,
			"filing_date":          c.FilingDate,
			"status":               c.Status,
			"service_center":       c.ServiceCenter,
			"estimated_cost":       c.EstimatedCost,
			"resolution_date":      c.ResolutionDate,
		})
	}

	return map[string]any{
		"claims":       records,
		"total_claims": len(records),
	}
}

// ShowCustomerInfo returns the signed-in customer's profile.
func (s *Service) ShowCustomerInfo(ctx context.Context) map[string]any {
	userID, ok := tools.UserIDFromContext(ctx)
	if !ok {
		return errResult("No customer is signed in for this session.")
	}
	customer, found, err := s.store.CustomerByID(userID)
	if err != nil {
		return errResult(fmt.Sprintf("An error occurred while retrieving customer info: %s", err))
	}
	if !found {
		return errResult(fmt.Sprintf("Customer with user ID %d not found.", userID))
	}
	return map[string]any{
		"user_id": customer.UserID,
		"name":    customer.Name,
		"email":   customer.Email,
		"phone":   customer.Phone,
		"address": customer.Address,
	}
}

// ownedVehicles resolves the session customer's vehicles. The second return
// is a non-nil error payload when the session has no customer or the table
// cannot be read.
func (s *Service) ownedVehicles(ctx context.Context) ([]store.Vehicle, map[string]any) {
	userID, ok := tools.UserIDFromContext(ctx)
	if !ok {
		return nil, errResult("No customer is signed in for this session.")
	}
	vehicles, err := s.store.Vehicles()
	if err != nil {
		return nil, errResult(fmt.Sprintf("An error occurred while retrieving vehicles: %s", err))
	}
	owned := make([]store.Vehicle, 0)
	for _, v := range vehicles {
		if v.CustomerID == userID {
			owned = append(owned, v)
		}
	}
	return owned, nil
}

func modelByRegistration(vs []store.Vehicle) map[string]string {
	m := make(map[string]string, len(vs))
	for _, v := range vs {
		m[v.Registration] = v.Model
	}
	return m
}

func vehicleRecord(v store.Vehicle) map[string]any {
	return map[string]any{
		"registration":          v.Registration,
		"customer_id":           v.CustomerID,
		"model":                 v.Model,
		"purchase_date":         v.PurchaseDate,
		"current_mileage":       v.CurrentMileage,
		"warranty_expiry":       v.WarrantyExpiry,
		"has_extended_warranty": v.HasExtendedWarranty,
		"has_ccp":               v.HasCCP,
	}
}
