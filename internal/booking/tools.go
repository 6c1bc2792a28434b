package booking

import (
	"context"

	"github.com/ashwink/warranty-agent/internal/tools"
)

// Register binds the appointment operations to the registry.
func (s *Service) Register(r *tools.Registry) {
	r.Register(&tools.Tool{
		Name: "check_service_center_availability",
		Description: "Check available appointment slots at a service center for a specific " +
			"date. Slots run hourly from 09:00 AM to 05:00 PM with a break at 01:00 PM.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"service_center_name": map[string]any{
					"type":        "string",
					"description": "Name of the service center",
				},
				"preferred_date": map[string]any{
					"type":        "string",
					"description": "Date to check availability (dd/mm/YYYY)",
				},
				"service_type": map[string]any{
					"type":        "string",
					"description": "Type of service (warranty_service, ccp_claim, general_service)",
				},
			},
			"required": []string{"service_center_name", "preferred_date"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			serviceType := tools.StringArg(args, "service_type")
			if serviceType == "" {
				serviceType = "warranty_service"
			}
			return tools.JSONResult(s.CheckAvailability(
				tools.StringArg(args, "service_center_name"),
				tools.StringArg(args, "preferred_date"),
				serviceType)), nil
		},
	})

	r.Register(&tools.Tool{
		Name: "book_service_appointment",
		Description: "Book an appointment at a service center for warranty or claim " +
			"services. Email and phone are auto-detected from the customer profile when " +
			"not provided.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"vehicle_registration": map[string]any{
					"type":        "string",
					"description": "Vehicle registration number",
				},
				"service_center_name": map[string]any{
					"type":        "string",
					"description": "Name of the service center",
				},
				"appointment_date": map[string]any{
					"type":        "string",
					"description": "Appointment date (dd/mm/YYYY)",
				},
				"appointment_time": map[string]any{
					"type":        "string",
					"description": "Appointment time (e.g. '10:00 AM')",
				},
				"service_type": map[string]any{
					"type":        "string",
					"description": "Type of service (warranty_inspection, ccp_claim_inspection, general_service)",
				},
				"customer_phone": map[string]any{
					"type":        "string",
					"description": "Customer phone (auto-detected from profile if not provided)",
				},
				"customer_email": map[string]any{
					"type":        "string",
					"description": "Customer email (auto-detected from profile if not provided)",
				},
				"notes": map[string]any{
					"type":        "string",
					"description": "Additional notes or requirements",
				},
			},
			"required": []string{"vehicle_registration", "service_center_name", "appointment_date", "appointment_time", "service_type"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return tools.JSONResult(s.Book(ctx, Request{
				VehicleRegistration: tools.StringArg(args, "vehicle_registration"),
				ServiceCenter:       tools.StringArg(args, "service_center_name"),
				Date:                tools.StringArg(args, "appointment_date"),
				Time:                tools.StringArg(args, "appointment_time"),
				ServiceType:         tools.StringArg(args, "service_type"),
				CustomerPhone:       tools.StringArg(args, "customer_phone"),
				CustomerEmail:       tools.StringArg(args, "customer_email"),
				Notes:               tools.StringArg(args, "notes"),
			})), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "view_my_appointments",
		Description: "View all appointments booked by a customer, most recent first.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"customer_phone": map[string]any{
					"type":        "string",
					"description": "Customer's phone number",
				},
			},
			"required": []string{"customer_phone"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return tools.JSONResult(s.ViewMyAppointments(tools.StringArg(args, "customer_phone"))), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "cancel_appointment",
		Description: "Cancel a service center appointment.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"appointment_id": map[string]any{
					"type":        "integer",
					"description": "ID of the appointment to cancel",
				},
				"cancellation_reason": map[string]any{
					"type":        "string",
					"description": "Reason for cancellation (optional)",
				},
			},
			"required": []string{"appointment_id"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			id, ok := tools.IntArg(args, "appointment_id")
			if !ok {
				return tools.ErrorResult("appointment_id must be an integer"), nil
			}
			return tools.JSONResult(s.Cancel(id, tools.StringArg(args, "cancellation_reason"))), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "reschedule_appointment",
		Description: "Reschedule an existing appointment to a new date and time.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"appointment_id": map[string]any{
					"type":        "integer",
					"description": "ID of the appointment to reschedule",
				},
				"new_date": map[string]any{
					"type":        "string",
					"description": "New appointment date (dd/mm/YYYY)",
				},
				"new_time": map[string]any{
					"type":        "string",
					"description": "New appointment time (e.g. '02:00 PM')",
				},
			},
			"required": []string{"appointment_id", "new_date", "new_time"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			id, ok := tools.IntArg(args, "appointment_id")
			if !ok {
				return tools.ErrorResult("appointment_id must be an integer"), nil
			}
			return tools.JSONResult(s.Reschedule(id,
				tools.StringArg(args, "new_date"),
				tools.StringArg(args, "new_time"))), nil
		},
	})
}
