package prompts

import (
	"strings"
	"testing"
	"time"

	"github.com/ashwink/warranty-agent/internal/store"
)

func TestSystemPrompt(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	customer := store.Customer{
		UserID: 1, Name: "Ashwin Kumar", Email: "ashwin@example.com",
		Phone: "+91 98200 12345", Address: "Mumbai",
	}

	got := System(customer, now)
	for _, want := range []string{
		"Car Warranty Services",
		"NO CCP WITHOUT EXTENDED WARRANTY",
		"name: Ashwin Kumar",
		"email: ashwin@example.com",
		"Current date (dd/mm/YYYY): 15/03/2026.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSystemPromptAnonymous(t *testing.T) {
	got := System(store.Customer{}, time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC))
	if !strings.Contains(got, "(no customer signed in)") {
		t.Error("anonymous profile marker missing")
	}
	if !strings.Contains(got, "02/01/2026") {
		t.Error("date not rendered dd/mm/yyyy")
	}
}
