package warranty

import (
	"encoding/json"
	"testing"

	"github.com/ashwink/warranty-agent/internal/tools"
)

func TestRegisterBindsEveryOperation(t *testing.T) {
	svc, _ := newTestService(t)
	reg := tools.NewRegistry()
	svc.Register(reg)

	want := []string{
		"check_warranty_status",
		"check_extended_warranty_eligibility",
		"check_ccp_eligibility",
		"purchase_ccp_package",
		"cancel_warranty_service",
		"file_ccp_claim",
		"get_claim_status",
		"get_coverage_details",
		"find_service_center",
		"show_my_warranties",
		"show_my_claims",
		"show_my_vehicles",
		"show_customer_info",
	}
	listed := reg.List()
	if len(listed) != len(want) {
		t.Fatalf("registered %d tools, want %d", len(listed), len(want))
	}
	for i, entry := range listed {
		fn := entry["function"].(map[string]any)
		if fn["name"] != want[i] {
			t.Errorf("tool %d = %v, want %s", i, fn["name"], want[i])
		}
	}
}

func TestToolHandlersReturnJSON(t *testing.T) {
	svc, _ := newTestService(t)
	reg := tools.NewRegistry()
	svc.Register(reg)
	ctx := userCtx(1)

	out, err := reg.Execute(ctx, "check_warranty_status", map[string]any{"vehicle_registration": "MH02AB1234"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if payload["model"] != "Baleno" {
		t.Errorf("model = %v, want Baleno", payload["model"])
	}

	// Quoted numeric IDs are accepted.
	out, err = reg.Execute(ctx, "get_claim_status", map[string]any{"claim_id": "7"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if payload["status"] != "Submitted" {
		t.Errorf("status = %v, want Submitted", payload["status"])
	}
}
