package tools

import (
	"encoding/json"
	"fmt"
)

// JSONResult marshals a tool result payload for the model.
func JSONResult(v any) string {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal result: %s"}`, err)
	}
	return string(out)
}

// ErrorResult builds an error payload. Domain rule violations are reported
// this way, as tool output the model can relay to the customer, not as Go
// errors.
func ErrorResult(format string, args ...any) string {
	return JSONResult(map[string]any{"error": fmt.Sprintf(format, args...)})
}
