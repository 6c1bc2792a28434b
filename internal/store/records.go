package store

import (
	"strconv"
	"strings"
)

// row is one CSV record keyed by header column. Conversion is tolerant:
// unparseable numeric cells read as zero, matching the flat-file origin of
// the data where empty cells are common.
type row map[string]string

func (r row) str(k string) string { return strings.TrimSpace(r[k]) }

func (r row) int(k string) int {
	n, _ := strconv.Atoi(r.str(k))
	return n
}

func (r row) float(k string) float64 {
	f, _ := strconv.ParseFloat(r.str(k), 64)
	return f
}

func (r row) bool(k string) bool {
	switch strings.ToLower(r.str(k)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func btoa(b bool) string { return strconv.FormatBool(b) }

// Vehicle is one registered car. Dates are dd/mm/yyyy strings as stored in
// the flat files; parsing happens at the point of use.
type Vehicle struct {
	Registration        string
	CustomerID          int
	Model               string
	PurchaseDate        string
	CurrentMileage      int
	WarrantyExpiry      string
	HasExtendedWarranty bool
	HasCCP              bool
}

var vehicleHeader = []string{
	"registration", "customer_id", "model", "purchase_date",
	"current_mileage", "warranty_expiry", "has_extended_warranty", "has_ccp",
}

func vehicleFromRow(r row) Vehicle {
	return Vehicle{
		Registration:        r.str("registration"),
		CustomerID:          r.int("customer_id"),
		Model:               r.str("model"),
		PurchaseDate:        r.str("purchase_date"),
		CurrentMileage:      r.int("current_mileage"),
		WarrantyExpiry:      r.str("warranty_expiry"),
		HasExtendedWarranty: r.bool("has_extended_warranty"),
		HasCCP:              r.bool("has_ccp"),
	}
}

func (v Vehicle) toRow() row {
	return row{
		"registration":          v.Registration,
		"customer_id":           itoa(v.CustomerID),
		"model":                 v.Model,
		"purchase_date":         v.PurchaseDate,
		"current_mileage":       itoa(v.CurrentMileage),
		"warranty_expiry":       v.WarrantyExpiry,
		"has_extended_warranty": btoa(v.HasExtendedWarranty),
		"has_ccp":               btoa(v.HasCCP),
	}
}

// Warranty is one warranty row, either the standard/extended warranty or a
// Comprehensive Care Package (warranty_type "ccp").
type Warranty struct {
	WarrantyID          int
	VehicleRegistration string
	WarrantyType        string
	PackageType         string
	StartDate           string
	EndDate             string
	Status              string
	Price               int
	CoverageKM          int
}

var warrantyHeader = []string{
	"warranty_id", "vehicle_registration", "warranty_type", "package_type",
	"start_date", "end_date", "status", "price", "coverage_km",
}

func warrantyFromRow(r row) Warranty {
	return Warranty{
		WarrantyID:          r.int("warranty_id"),
		VehicleRegistration: r.str("vehicle_registration"),
		WarrantyType:        r.str("warranty_type"),
		PackageType:         r.str("package_type"),
		StartDate:           r.str("start_date"),
		EndDate:             r.str("end_date"),
		Status:              r.str("status"),
		Price:               r.int("price"),
		CoverageKM:          r.int("coverage_km"),
	}
}

func (w Warranty) toRow() row {
	return row{
		"warranty_id":          itoa(w.WarrantyID),
		"vehicle_registration": w.VehicleRegistration,
		"warranty_type":        w.WarrantyType,
		"package_type":         w.PackageType,
		"start_date":           w.StartDate,
		"end_date":             w.EndDate,
		"status":               w.Status,
		"price":                itoa(w.Price),
		"coverage_km":          itoa(w.CoverageKM),
	}
}

// Claim is one CCP claim.
type Claim struct {
	ClaimID             int
	VehicleRegistration string
	ClaimType           string
	Description         string
	FilingDate          string
	Status              string
	ServiceCenter       string
	EstimatedCost       float64
	ResolutionDate      string
}

var claimHeader = []string{
	"claim_id", "vehicle_registration", "claim_type", "description",
	"filing_date", "status", "service_center", "estimated_cost",
	"resolution_date",
}

func claimFromRow(r row) Claim {
	return Claim{
		ClaimID:             r.int("claim_id"),
		VehicleRegistration: r.str("vehicle_registration"),
		ClaimType:           r.str("claim_type"),
		Description:         r.str("description"),
		FilingDate:          r.str("filing_date"),
		Status:              r.str("status"),
		ServiceCenter:       r.str("service_center"),
		EstimatedCost:       r.float("estimated_cost"),
		ResolutionDate:      r.str("resolution_date"),
	}
}

func (c Claim) toRow() row {
	return row{
		"claim_id":             itoa(c.ClaimID),
		"vehicle_registration": c.VehicleRegistration,
		"claim_type":           c.ClaimType,
		"description":          c.Description,
		"filing_date":          c.FilingDate,
		"status":               c.Status,
		"service_center":       c.ServiceCenter,
		"estimated_cost":       ftoa(c.EstimatedCost),
		"resolution_date":      c.ResolutionDate,
	}
}

// Appointment is one service-center booking.
type Appointment struct {
	AppointmentID       int
	VehicleRegistration string
	ServiceCenter       string
	AppointmentDate     string
	AppointmentTime     string
	ServiceType         string
	Status              string
	CustomerName        string
	CustomerPhone       string
	CustomerEmail       string
	Notes               string
	CreatedAt           string
}

var appointmentHeader = []string{
	"appointment_id", "vehicle_registration", "service_center",
	"appointment_date", "appointment_time", "service_type", "status",
	"customer_name", "customer_phone", "customer_email", "notes",
	"created_at",
}

func appointmentFromRow(r row) Appointment {
	return Appointment{
		AppointmentID:       r.int("appointment_id"),
		VehicleRegistration: r.str("vehicle_registration"),
		ServiceCenter:       r.str("service_center"),
		AppointmentDate:     r.str("appointment_date"),
		AppointmentTime:     r.str("appointment_time"),
		ServiceType:         r.str("service_type"),
		Status:              r.str("status"),
		CustomerName:        r.str("customer_name"),
		CustomerPhone:       r.str("customer_phone"),
		CustomerEmail:       r.str("customer_email"),
		Notes:               r.str("notes"),
		CreatedAt:           r.str("created_at"),
	}
}

func (a Appointment) toRow() row {
	return row{
		"appointment_id":       itoa(a.AppointmentID),
		"vehicle_registration": a.VehicleRegistration,
		"service_center":       a.ServiceCenter,
		"appointment_date":     a.AppointmentDate,
		"appointment_time":     a.AppointmentTime,
		"service_type":         a.ServiceType,
		"status":               a.Status,
		"customer_name":        a.CustomerName,
		"customer_phone":       a.CustomerPhone,
		"customer_email":       a.CustomerEmail,
		"notes":                a.Notes,
		"created_at":           a.CreatedAt,
	}
}

// ServiceCenter is one authorized service location. Read-only.
type ServiceCenter struct {
	CenterName string
	City       string
	Address    string
	Phone      string
	Email      string
}

var serviceCenterHeader = []string{"center_name", "city", "address", "phone", "email"}

func serviceCenterFromRow(r row) ServiceCenter {
	return ServiceCenter{
		CenterName: r.str("center_name"),
		City:       r.str("city"),
		Address:    r.str("address"),
		Phone:      r.str("phone"),
		Email:      r.str("email"),
	}
}

func (s ServiceCenter) toRow() row {
	return row{
		"center_name": s.CenterName,
		"city":        s.City,
		"address":     s.Address,
		"phone":       s.Phone,
		"email":       s.Email,
	}
}

// CCPPackage is one purchasable care-package tier. Read-only.
type CCPPackage struct {
	PackageName     string
	DurationYears   int
	MaxKilometers   int
	Price           int
	CoverageDetails string
}

var ccpPackageHeader = []string{
	"package_name", "duration_years", "max_kilometers", "price",
	"coverage_details",
}

func ccpPackageFromRow(r row) CCPPackage {
	return CCPPackage{
		PackageName:     r.str("package_name"),
		DurationYears:   r.int("duration_years"),
		MaxKilometers:   r.int("max_kilometers"),
		Price:           r.int("price"),
		CoverageDetails: r.str("coverage_details"),
	}
}

func (p CCPPackage) toRow() row {
	return row{
		"package_name":     p.PackageName,
		"duration_years":   itoa(p.DurationYears),
		"max_kilometers":   itoa(p.MaxKilometers),
		"price":            itoa(p.Price),
		"coverage_details": p.CoverageDetails,
	}
}

// Customer is one account holder.
type Customer struct {
	UserID  int
	Name    string
	Email   string
	Phone   string
	Address string
}

var customerHeader = []string{"user_id", "name", "email", "phone", "address"}

func customerFromRow(r row) Customer {
	return Customer{
		UserID:  r.int("user_id"),
		Name:    r.str("name"),
		Email:   r.str("email"),
		Phone:   r.str("phone"),
		Address: r.str("address"),
	}
}

func (c Customer) toRow() row {
	return row{
		"user_id": itoa(c.UserID),
		"name":    c.Name,
		"email":   c.Email,
		"phone":   c.Phone,
		"address": c.Address,
	}
}
