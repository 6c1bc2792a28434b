package store

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestMissingTableIsEmpty(t *testing.T) {
	s := newTestStore(t)

	vs, err := s.Vehicles()
	if err != nil {
		t.Fatalf("Vehicles: %v", err)
	}
	if len(vs) != 0 {
		t.Errorf("expected empty table, got %d rows", len(vs))
	}
}

func TestVehicleRoundTrip(t *testing.T) {
	s := newTestStore(t)

	in := []Vehicle{
		{
			Registration:        "MH02XX1234",
			CustomerID:          1,
			Model:               "Hexa Safari",
			PurchaseDate:        "15/03/2024",
			CurrentMileage:      12500,
			WarrantyExpiry:      "15/03/2027",
			HasExtendedWarranty: true,
			HasCCP:              false,
		},
		{
			Registration:   "KA01AB0001",
			CustomerID:     2,
			Model:          "Nexon EV",
			PurchaseDate:   "01/01/2023",
			CurrentMileage: 40210,
			WarrantyExpiry: "01/01/2026",
		},
	}
	if err := s.SaveVehicles(in); err != nil {
		t.Fatalf("SaveVehicles: %v", err)
	}

	out, err := s.Vehicles()
	if err != nil {
		t.Fatalf("Vehicles: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(out))
	}
	if out[0] != in[0] {
		t.Errorf("vehicle mismatch:\n got %+v\nwant %+v", out[0], in[0])
	}
	if out[1].HasExtendedWarranty {
		t.Error("expected second vehicle without extended warranty")
	}
}

func TestPandasBooleansParse(t *testing.T) {
	// Tables written by the previous system store booleans as True/False.
	s := newTestStore(t)
	csv := "registration,customer_id,model,purchase_date,current_mileage,warranty_expiry,has_extended_warranty,has_ccp\n" +
		"MH02XX1234,1,Hexa,15/03/2024,1000,15/03/2027,True,False\n"
	if err := os.WriteFile(filepath.Join(s.dir, vehiclesFile), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	vs, err := s.Vehicles()
	if err != nil {
		t.Fatalf("Vehicles: %v", err)
	}
	if len(vs) != 1 {
		t.Fatalf("expected 1 vehicle, got %d", len(vs))
	}
	if !vs[0].HasExtendedWarranty {
		t.Error("True should parse as true")
	}
	if vs[0].HasCCP {
		t.Error("False should parse as false")
	}
}

func TestColumnOrderIndependence(t *testing.T) {
	s := newTestStore(t)
	csv := "name,user_id,phone,email,address\n" +
		"Ashwin Kumar,1,+91-9876543210,ashwin@example.com,Pune\n"
	if err := os.WriteFile(filepath.Join(s.dir, customersFile), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	c, ok, err := s.CustomerByID(1)
	if err != nil {
		t.Fatalf("CustomerByID: %v", err)
	}
	if !ok {
		t.Fatal("expected customer 1 to exist")
	}
	if c.Name != "Ashwin Kumar" || c.Email != "ashwin@example.com" {
		t.Errorf("unexpected customer: %+v", c)
	}
}

func TestNextID(t *testing.T) {
	tests := []struct {
		name string
		ids  []int
		want int
	}{
		{"empty table", nil, 1},
		{"single row", []int{1}, 2},
		{"gap in ids", []int{1, 5, 3}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := make([]Warranty, 0, len(tt.ids))
			for _, id := range tt.ids {
				ws = append(ws, Warranty{WarrantyID: id})
			}
			got := NextID(ws, func(w Warranty) int { return w.WarrantyID })
			if got != tt.want {
				t.Errorf("NextID = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRewriteReplacesTable(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveClaims([]Claim{
		{ClaimID: 1, VehicleRegistration: "MH02XX1234", ClaimType: "water_damage", Status: "submitted"},
		{ClaimID: 2, VehicleRegistration: "KA01AB0001", ClaimType: "rodent_damage", Status: "approved"},
	}); err != nil {
		t.Fatalf("SaveClaims: %v", err)
	}
	if err := s.SaveClaims([]Claim{
		{ClaimID: 2, VehicleRegistration: "KA01AB0001", ClaimType: "rodent_damage", Status: "completed", ResolutionDate: "20/08/2026"},
	}); err != nil {
		t.Fatalf("SaveClaims rewrite: %v", err)
	}

	cs, err := s.Claims()
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if len(cs) != 1 {
		t.Fatalf("expected rewrite to replace the table, got %d rows", len(cs))
	}
	if cs[0].Status != "completed" || cs[0].ResolutionDate != "20/08/2026" {
		t.Errorf("unexpected claim after rewrite: %+v", cs[0])
	}

	// No temp files left behind after the rename.
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != claimsFile {
			t.Errorf("unexpected leftover file %s", e.Name())
		}
	}
}
