package warranty

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ashwink/warranty-agent/internal/config"
	"github.com/ashwink/warranty-agent/internal/notify"
	"github.com/ashwink/warranty-agent/internal/store"
	"github.com/ashwink/warranty-agent/internal/tools"
)

// testClock pins every eligibility window in the fixtures below.
var testClock = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()

	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	vehicles := []store.Vehicle{
		// Within both purchase windows, extended warranty in place.
		{Registration: "MH02AB1234", CustomerID: 1, Model: "Baleno", PurchaseDate: "15/05/2025",
			CurrentMileage: 30000, WarrantyExpiry: "15/05/2028", HasExtendedWarranty: true},
		// No extended warranty yet.
		{Registration: "MH02CD5678", CustomerID: 1, Model: "Swift", PurchaseDate: "15/05/2025",
			CurrentMileage: 8000, WarrantyExpiry: "15/05/2028"},
		// Active CCP, used by the claim tests.
		{Registration: "MH02GH1111", CustomerID: 1, Model: "Brezza", PurchaseDate: "10/01/2025",
			CurrentMileage: 15000, WarrantyExpiry: "10/01/2028", HasExtendedWarranty: true, HasCCP: true},
		// Past the 21-month CCP window.
		{Registration: "KA01EF9999", CustomerID: 2, Model: "Dzire", PurchaseDate: "15/01/2024",
			CurrentMileage: 40000, WarrantyExpiry: "15/01/2027", HasExtendedWarranty: true},
		// Past the 3-year extended warranty window.
		{Registration: "DL03ZZ0000", CustomerID: 2, Model: "Alto", PurchaseDate: "01/01/2022",
			CurrentMileage: 70000, WarrantyExpiry: "01/01/2025"},
	}
	warranties := []store.Warranty{
		{WarrantyID: 1, VehicleRegistration: "MH02AB1234", WarrantyType: "extended", PackageType: "2year",
			StartDate: "15/05/2028", EndDate: "15/05/2030", Status: "active", Price: 12000, CoverageKM: 140000},
		{WarrantyID: 2, VehicleRegistration: "MH02GH1111", WarrantyType: "ccp", PackageType: "1year",
			StartDate: "10/01/2028", EndDate: "09/01/2029", Status: "active", Price: 3500, CoverageKM: 25000},
		{WarrantyID: 3, VehicleRegistration: "MH02GH1111", WarrantyType: "ccp", PackageType: "2year",
			StartDate: "10/01/2028", EndDate: "09/01/2030", Status: "pending_payment", Price: 5500, CoverageKM: 45000},
	}
	packages := []store.CCPPackage{
		{PackageName: "CCP 1 Year", DurationYears: 1, MaxKilometers: 25000, Price: 3500, CoverageDetails: "Water, fuel, rodent and insect damage"},
		{PackageName: "CCP 2 Year", DurationYears: 2, MaxKilometers: 45000, Price: 5500, CoverageDetails: "Water, fuel, rodent and insect damage"},
		{PackageName: "CCP 3 Year", DurationYears: 3, MaxKilometers: 60000, Price: 7500, CoverageDetails: "Water, fuel, rodent and insect damage"},
	}
	centers := []store.ServiceCenter{
		{CenterName: "AutoCare Mumbai Central", City: "Mumbai", Address: "12 Marine Drive", Phone: "+91 22 1111 2222", Email: "mumbai@autocare.example"},
		{CenterName: "AutoCare Pune East", City: "Pune", Address: "4 FC Road", Phone: "+91 20 3333 4444", Email: "pune@autocare.example"},
	}
	customers := []store.Customer{
		{UserID: 1, Name: "Ashwin Kumar", Email: "ashwin@example.com", Phone: "+91 98200 12345", Address: "Mumbai"},
		{UserID: 2, Name: "Priya Nair", Email: "priya@example.com", Phone: "+91 98450 67890", Address: "Bengaluru"},
	}
	claims := []store.Claim{
		{ClaimID: 7, VehicleRegistration: "MH02GH1111", ClaimType: "rodent_damage", Description: "Chewed wiring harness",
			FilingDate: "01/03/2026", Status: "submitted", ServiceCenter: "AutoCare Mumbai Central"},
	}

	for _, save := range []func() error{
		func() error { return st.SaveVehicles(vehicles) },
		func() error { return st.SaveWarranties(warranties) },
		func() error { return st.SaveCCPPackages(packages) },
		func() error { return st.SaveServiceCenters(centers) },
		func() error { return st.SaveCustomers(customers) },
		func() error { return st.SaveClaims(claims) },
	} {
		if err := save(); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(st, notify.New(config.SMTPConfig{}, logger), nil, logger)
	svc.WithClock(func() time.Time { return testClock })
	return svc, st
}

func userCtx(userID int) context.Context {
	return tools.WithUserID(context.Background(), userID)
}

func TestCheckWarrantyStatus(t *testing.T) {
	svc, _ := newTestService(t)

	got := svc.CheckWarrantyStatus("MH02AB1234")
	if got["model"] != "Baleno" {
		t.Errorf("model = %v, want Baleno", got["model"])
	}
	if got["has_extended_warranty"] != true {
		t.Errorf("has_extended_warranty = %v, want true", got["has_extended_warranty"])
	}
	active := got["active_warranties"].([]map[string]any)
	if len(active) != 1 {
		t.Fatalf("active_warranties = %d, want 1", len(active))
	}
	if active[0]["warranty_type"] != "extended" {
		t.Errorf("active warranty type = %v, want extended", active[0]["warranty_type"])
	}

	if got := svc.CheckWarrantyStatus("XX00XX0000"); got["error"] == nil {
		t.Error("expected error for unknown registration")
	}
}

func TestExtendedWarrantyEligibility(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name         string
		registration string
		eligible     bool
		reason       string
	}{
		{"already covered", "MH02AB1234", false, "Vehicle already has an Extended Warranty."},
		{"window expired", "DL03ZZ0000", false, "Purchase window expired. Extended Warranty must be purchased within 3 years of vehicle purchase."},
		{"eligible", "MH02CD5678", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.CheckExtendedWarrantyEligibility(tt.registration)
			if got["eligible"] != tt.eligible {
				t.Fatalf("eligible = %v, want %v (payload %v)", got["eligible"], tt.eligible, got)
			}
			if tt.reason != "" && got["reason"] != tt.reason {
				t.Errorf("reason = %q, want %q", got["reason"], tt.reason)
			}
		})
	}

	got := svc.CheckExtendedWarrantyEligibility("MH02CD5678")
	options := got["available_options"].([]map[string]any)
	if len(options) != 3 {
		t.Fatalf("available_options = %d, want 3", len(options))
	}
	if options[2]["price"] != "₹15,000" {
		t.Errorf("3 year price = %v, want ₹15,000", options[2]["price"])
	}
	// Purchased 15/05/2025, so the window closes 14/05/2028.
	if got["purchase_deadline"] != "14/05/2028" {
		t.Errorf("purchase_deadline = %v, want 14/05/2028", got["purchase_deadline"])
	}
}

func TestCCPEligibility(t *testing.T) {
	svc, _ := newTestService(t)

	t.Run("requires extended warranty", func(t *testing.T) {
		got := svc.CheckCCPEligibility("MH02CD5678")
		if got["eligible"] != false {
			t.Fatalf("eligible = %v, want false", got["eligible"])
		}
		want := "Extended Warranty is required before purchasing CCP. Please purchase Extended Warranty first."
		if got["reason"] != want {
			t.Errorf("reason = %q, want %q", got["reason"], want)
		}
	})

	t.Run("already has ccp", func(t *testing.T) {
		got := svc.CheckCCPEligibility("MH02GH1111")
		if got["eligible"] != false || got["reason"] != "Vehicle already has an active CCP package." {
			t.Errorf("unexpected payload %v", got)
		}
	})

	t.Run("window expired", func(t *testing.T) {
		got := svc.CheckCCPEligibility("KA01EF9999")
		if got["eligible"] != false {
			t.Fatalf("eligible = %v, want false", got["eligible"])
		}
		if got["purchase_deadline_was"] == nil {
			t.Error("expected purchase_deadline_was in expired payload")
		}
		reason, _ := got["reason"].(string)
		if !strings.Contains(reason, "15/01/2024") {
			t.Errorf("reason %q should name the purchase date", reason)
		}
	})

	t.Run("eligible filters packages by mileage", func(t *testing.T) {
		got := svc.CheckCCPEligibility("MH02AB1234")
		if got["eligible"] != true {
			t.Fatalf("eligible = %v, want true (payload %v)", got["eligible"], got)
		}
		// 30,000 km on the clock rules out the 25,000 km package.
		packages := got["available_packages"].([]map[string]any)
		if len(packages) != 2 {
			t.Fatalf("available_packages = %d, want 2", len(packages))
		}
		if packages[0]["package_name"] != "CCP 2 Year" {
			t.Errorf("first package = %v, want CCP 2 Year", packages[0]["package_name"])
		}
		if packages[0]["price"] != "₹5,500" {
			t.Errorf("price = %v, want ₹5,500", packages[0]["price"])
		}
		if got["current_mileage"] != "30,000 km" {
			t.Errorf("current_mileage = %v, want 30,000 km", got["current_mileage"])
		}
		if got["days_remaining"] != 326 {
			t.Errorf("days_remaining = %v, want 326", got["days_remaining"])
		}
	})
}

func TestPurchaseCCPPackage(t *testing.T) {
	svc, st := newTestService(t)
	ctx := userCtx(1)

	got := svc.PurchaseCCPPackage(ctx, "MH02AB1234", "2year", "ashwin@example.com")
	if got["success"] != true {
		t.Fatalf("purchase failed: %v", got)
	}
	if got["status"] != "Pending Payment" {
		t.Errorf("status = %v, want Pending Payment", got["status"])
	}
	if got["payment_link"] != "https://carwarranty.com/payment/4" {
		t.Errorf("payment_link = %v", got["payment_link"])
	}
	if got["email_sent"] != true {
		t.Errorf("email_sent = %v, want true (mock delivery)", got["email_sent"])
	}

	warranties, err := st.Warranties()
	if err != nil {
		t.Fatalf("load warranties: %v", err)
	}
	var added store.Warranty
	for _, w := range warranties {
		if w.WarrantyID == 4 {
			added = w
		}
	}
	if added.WarrantyID != 4 {
		t.Fatal("new warranty row not persisted")
	}
	if added.Status != "pending_payment" || added.WarrantyType != "ccp" {
		t.Errorf("persisted row = %+v", added)
	}
	// Coverage runs from the standard warranty expiry.
	if added.StartDate != "15/05/2028" || added.EndDate != "15/05/2030" {
		t.Errorf("coverage dates = %s..%s, want 15/05/2028..15/05/2030", added.StartDate, added.EndDate)
	}

	vehicles, err := st.Vehicles()
	if err != nil {
		t.Fatalf("load vehicles: %v", err)
	}
	v, _ := findVehicle(vehicles, "MH02AB1234")
	if !v.HasCCP {
		t.Error("vehicle has_ccp flag not set after purchase")
	}

	// The flag is now set, so a second purchase is refused.
	if got := svc.PurchaseCCPPackage(ctx, "MH02AB1234", "1year", "ashwin@example.com"); got["error"] == nil {
		t.Error("expected error on repeat purchase")
	}

	if got := svc.PurchaseCCPPackage(ctx, "KA01EF9999", "5year", "priya@example.com"); got["error"] == nil {
		t.Error("expected error for bad package type")
	}
	if got := svc.PurchaseCCPPackage(ctx, "MH02CD5678", "1year", "ashwin@example.com"); got["error"] == nil {
		t.Error("expected error without extended warranty")
	}
}

func TestCancelWarrantyService(t *testing.T) {
	svc, st := newTestService(t)

	t.Run("active is refused", func(t *testing.T) {
		got := svc.CancelWarrantyService(2)
		want := "Active warranties cannot be cancelled. Please contact customer support."
		if got["error"] != want {
			t.Errorf("error = %v, want %q", got["error"], want)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if got := svc.CancelWarrantyService(99); got["error"] == nil {
			t.Error("expected error for unknown warranty")
		}
	})

	t.Run("pending payment cancels and clears flag", func(t *testing.T) {
		got := svc.CancelWarrantyService(3)
		if got["success"] != true {
			t.Fatalf("cancel failed: %v", got)
		}
		msg, _ := got["message"].(string)
		if !strings.HasPrefix(msg, "CCP warranty cancelled successfully.") {
			t.Errorf("message = %q", msg)
		}

		warranties, _ := st.Warranties()
		for _, w := range warranties {
			if w.WarrantyID == 3 && w.Status != "cancelled" {
				t.Errorf("status = %s, want cancelled", w.Status)
			}
		}
		vehicles, _ := st.Vehicles()
		if v, _ := findVehicle(vehicles, "MH02GH1111"); v.HasCCP {
			t.Error("has_ccp flag should be cleared after CCP cancellation")
		}

		// Already cancelled, so a second attempt reports the status.
		second := svc.CancelWarrantyService(3)
		if second["error"] != "Warranty with status 'cancelled' cannot be cancelled." {
			t.Errorf("second cancel error = %v", second["error"])
		}
	})
}

func TestFileCCPClaim(t *testing.T) {
	svc, st := newTestService(t)
	ctx := userCtx(1)

	got := svc.FileCCPClaim(ctx, "MH02GH1111", "water_damage", "Engine hydrolocked in flooded underpass", "")
	if got["success"] != true {
		t.Fatalf("claim failed: %v", got)
	}
	if got["claim_reference"] != "CCP000008" {
		t.Errorf("claim_reference = %v, want CCP000008", got["claim_reference"])
	}
	if got["claim_type"] != "Water Damage" {
		t.Errorf("claim_type = %v, want Water Damage", got["claim_type"])
	}
	// Unspecified center defaults to the first directory entry.
	if got["service_center"] != "AutoCare Mumbai Central" {
		t.Errorf("service_center = %v", got["service_center"])
	}
	if got["confirmation_email_sent_to"] != "ashwin@example.com" {
		t.Errorf("confirmation_email_sent_to = %v", got["confirmation_email_sent_to"])
	}

	claims, err := st.Claims()
	if err != nil {
		t.Fatalf("load claims: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("claims = %d, want 2", len(claims))
	}
	filed := claims[1]
	if filed.Status != "submitted" || filed.EstimatedCost != 0 || filed.ResolutionDate != "" {
		t.Errorf("persisted claim = %+v", filed)
	}
	if filed.FilingDate != "15/03/2026" {
		t.Errorf("filing_date = %s, want 15/03/2026", filed.FilingDate)
	}

	if got := svc.FileCCPClaim(ctx, "MH02GH1111", "hail_damage", "Dented roof", ""); got["error"] == nil {
		t.Error("expected error for invalid claim type")
	}
	if got := svc.FileCCPClaim(ctx, "MH02AB1234", "water_damage", "Flooded", ""); got["error"] == nil {
		t.Error("expected error for vehicle without CCP")
	}
}

func TestGetClaimStatus(t *testing.T) {
	svc, st := newTestService(t)

	got := svc.GetClaimStatus(7)
	if got["status"] != "Submitted" {
		t.Errorf("status = %v, want Submitted", got["status"])
	}
	if got["status_message"] != "Claim submitted. Awaiting inspection." {
		t.Errorf("status_message = %v", got["status_message"])
	}
	if got["estimated_cost"] != "To be estimated" {
		t.Errorf("estimated_cost = %v, want To be estimated", got["estimated_cost"])
	}
	if got["resolution_date"] != "Pending" {
		t.Errorf("resolution_date = %v, want Pending", got["resolution_date"])
	}
	if got["vehicle_model"] != "Brezza" {
		t.Errorf("vehicle_model = %v, want Brezza", got["vehicle_model"])
	}

	claims, _ := st.Claims()
	claims[0].Status = "approved"
	claims[0].EstimatedCost = 42500
	if err := st.SaveClaims(claims); err != nil {
		t.Fatalf("save claims: %v", err)
	}
	got = svc.GetClaimStatus(7)
	if got["status_message"] != "Claim approved. Repair work can begin." {
		t.Errorf("status_message = %v", got["status_message"])
	}
	if got["estimated_cost"] != "₹42,500" {
		t.Errorf("estimated_cost = %v, want ₹42,500", got["estimated_cost"])
	}

	if got := svc.GetClaimStatus(404); got["error"] == nil {
		t.Error("expected error for unknown claim")
	}
}

func TestGetCoverageDetails(t *testing.T) {
	svc, _ := newTestService(t)

	if got := svc.GetCoverageDetails("Extended_Warranty"); got["coverage_type"] != "Extended Warranty" {
		t.Errorf("coverage_type = %v", got["coverage_type"])
	}
	got := svc.GetCoverageDetails("ccp")
	if got["prerequisite"] != "Extended Warranty must be active" {
		t.Errorf("prerequisite = %v", got["prerequisite"])
	}
	if got := svc.GetCoverageDetails("lifetime"); got["error"] == nil {
		t.Error("expected error for unknown coverage type")
	}
}

func TestFindServiceCenter(t *testing.T) {
	svc, _ := newTestService(t)

	got := svc.FindServiceCenter("mum")
	if got["total_found"] != 1 {
		t.Fatalf("total_found = %v, want 1 (payload %v)", got["total_found"], got)
	}
	centers := got["service_centers"].([]map[string]any)
	if centers[0]["center_name"] != "AutoCare Mumbai Central" {
		t.Errorf("center = %v", centers[0]["center_name"])
	}

	if got := svc.FindServiceCenter("Chennai"); got["error"] == nil {
		t.Error("expected error when city has no centers")
	}

	if got := svc.FindServiceCenter(""); got["total_found"] != 2 {
		t.Errorf("unfiltered total_found = %v, want 2", got["total_found"])
	}
}

func TestAccountViews(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := userCtx(1)

	t.Run("vehicles", func(t *testing.T) {
		got := svc.ShowMyVehicles(ctx)
		if got["total_vehicles"] != 3 {
			t.Errorf("total_vehicles = %v, want 3", got["total_vehicles"])
		}
	})

	t.Run("warranties carry the vehicle model", func(t *testing.T) {
		got := svc.ShowMyWarranties(ctx)
		if got["total_warranties"] != 3 {
			t.Fatalf("total_warranties = %v, want 3", got["total_warranties"])
		}
		records := got["warranties"].([]map[string]any)
		if records[0]["model"] != "Baleno" {
			t.Errorf("model = %v, want Baleno", records[0]["model"])
		}
	})

	t.Run("claims", func(t *testing.T) {
		got := svc.ShowMyClaims(ctx)
		if got["total_claims"] != 1 {
			t.Errorf("total_claims = %v, want 1", got["total_claims"])
		}
	})

	t.Run("customer info", func(t *testing.T) {
		got := svc.ShowCustomerInfo(ctx)
		if got["name"] != "Ashwin Kumar" || got["email"] != "ashwin@example.com" {
			t.Errorf("customer payload = %v", got)
		}
	})

	t.Run("no vehicles", func(t *testing.T) {
		got := svc.ShowMyVehicles(userCtx(42))
		if got["message"] != noVehiclesMessage {
			t.Errorf("message = %v", got["message"])
		}
	})

	t.Run("no session user", func(t *testing.T) {
		if got := svc.ShowMyVehicles(context.Background()); got["error"] == nil {
			t.Error("expected error without session user")
		}
	})
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{25000, "25,000"},
		{140000, "140,000"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := groupThousands(tt.n); got != tt.want {
			t.Errorf("groupThousands(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
