// Package calcs registers the pure calculation tools: basic arithmetic for
// price work and date arithmetic for warranty windows. Both operate on
// dd/mm/yyyy dates, the format used throughout the record store.
package calcs

import (
	"context"
	"fmt"
	"time"

	"github.com/ashwink/warranty-agent/internal/tools"
)

// DateLayout is the dd/mm/yyyy layout used across the business records.
const DateLayout = "02/01/2006"

// Tools bundles the calculation handlers. The clock is injectable so
// duration results are deterministic under test.
type Tools struct {
	now func() time.Time
}

// New creates the calculation tools. A nil clock uses time.Now.
func New(now func() time.Time) *Tools {
	if now == nil {
		now = time.Now
	}
	return &Tools{now: now}
}

// Register adds the calculation tools to a registry.
func (t *Tools) Register(r *tools.Registry) {
	r.Register(&tools.Tool{
		Name: "calculator",
		Description: "Perform basic arithmetic for warranty price calculations. " +
			"Operations: add, subtract, multiply, divide.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"operation": map[string]any{
					"type":        "string",
					"description": "One of: add, subtract, multiply, divide",
				},
				"num1": map[string]any{
					"type":        "number",
					"description": "First operand (e.g. warranty price)",
				},
				"num2": map[string]any{
					"type":        "number",
					"description": "Second operand (e.g. additional charges, divisor)",
				},
			},
			"required": []string{"operation", "num1", "num2"},
		},
		Handler: t.handleCalculator,
	})

	r.Register(&tools.Tool{
		Name: "dates_calculator",
		Description: "Date arithmetic on dd/mm/yyyy dates for warranty periods and " +
			"eligibility windows. Operations: duration (days from start_date to " +
			"today), add_days, subtract_days, days_between.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"operation": map[string]any{
					"type":        "string",
					"description": "One of: duration, add_days, subtract_days, days_between",
				},
				"start_date": map[string]any{
					"type":        "string",
					"description": "Reference date in dd/mm/yyyy format",
				},
				"end_date": map[string]any{
					"type":        "string",
					"description": "End date in dd/mm/yyyy format, required for days_between",
				},
				"days": map[string]any{
					"type":        "integer",
					"description": "Number of days, required for add_days and subtract_days",
				},
			},
			"required": []string{"operation", "start_date"},
		},
		Handler: t.handleDatesCalculator,
	})
}

func (t *Tools) handleCalculator(ctx context.Context, args map[string]any) (string, error) {
	operation, _ := args["operation"].(string)
	num1, ok1 := toFloat(args["num1"])
	num2, ok2 := toFloat(args["num2"])
	if !ok1 || !ok2 {
		return tools.ErrorResult("num1 and num2 must be numbers"), nil
	}

	var result float64
	switch operation {
	case "add":
		result = num1 + num2
	case "subtract":
		result = num1 - num2
	case "multiply":
		result = num1 * num2
	case "divide":
		if num2 == 0 {
			return tools.ErrorResult("Division by zero is not allowed."), nil
		}
		result = num1 / num2
	default:
		return tools.ErrorResult(
			"Invalid operation '%s'. Valid operations are add, subtract, multiply, divide.",
			operation), nil
	}

	return tools.JSONResult(map[string]any{"result": result}), nil
}

func (t *Tools) handleDatesCalculator(ctx context.Context, args map[string]any) (string, error) {
	operation, _ := args["operation"].(string)
	startStr, _ := args["start_date"].(string)

	start, err := time.Parse(DateLayout, startStr)
	if err != nil {
		return tools.ErrorResult("Date format error: %s", err), nil
	}

	switch operation {
	case "duration":
		days := int(t.now().Sub(start).Hours() / 24)
		return tools.JSONResult(map[string]any{"result": days}), nil

	case "add_days":
		days, ok := toInt(args["days"])
		if !ok {
			return tools.ErrorResult("The 'days' argument is required for 'add_days' operation."), nil
		}
		return tools.JSONResult(map[string]any{
			"result": start.AddDate(0, 0, days).Format(DateLayout),
		}), nil

	case "subtract_days":
		days, ok := toInt(args["days"])
		if !ok {
			return tools.ErrorResult("The 'days' argument is required for 'subtract_days' operation."), nil
		}
		return tools.JSONResult(map[string]any{
			"result": start.AddDate(0, 0, -days).Format(DateLayout),
		}), nil

	case "days_between":
		endStr, _ := args["end_date"].(string)
		if endStr == "" {
			return tools.ErrorResult("The 'end_date' argument is required for 'days_between' operation."), nil
		}
		end, err := time.Parse(DateLayout, endStr)
		if err != nil {
			return tools.ErrorResult("Date format error: %s", err), nil
		}
		days := int(end.Sub(start).Hours() / 24)
		return tools.JSONResult(map[string]any{"result": days}), nil

	default:
		return tools.ErrorResult(
			"Invalid operation '%s'. Valid operations are 'duration', 'add_days', 'subtract_days', and 'days_between'.",
			operation), nil
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}
