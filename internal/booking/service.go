// Package booking manages service-center appointments: slot availability,
// booking with QR-coded confirmations, rescheduling and cancellation.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ashwink/warranty-agent/internal/events"
	"github.com/ashwink/warranty-agent/internal/notify"
	"github.com/ashwink/warranty-agent/internal/store"
	"github.com/ashwink/warranty-agent/internal/tools"
)

// DateLayout is the dd/mm/yyyy layout used for appointment dates.
const DateLayout = "02/01/2006"

// createdAtLayout timestamps appointment records.
const createdAtLayout = "02/01/2006 15:04:05"

// allSlots is the hourly appointment grid. The 01:00 PM hour is the
// service-center lunch break.
var allSlots = []string{
	"09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
	"02:00 PM", "03:00 PM", "04:00 PM", "05:00 PM",
}

// Service executes appointment operations over the record store.
type Service struct {
	store    *store.Store
	notifier *notify.Notifier
	events   *events.Publisher
	now      func() time.Time
	logger   *slog.Logger
}

// New creates a booking service.
func New(st *store.Store, notifier *notify.Notifier, pub *events.Publisher, logger *slog.Logger) *Service {
	return &Service{store: st, notifier: notifier, events: pub, now: time.Now, logger: logger}
}

// WithClock overrides the service clock for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func errResult(msg string) map[string]any {
	return map[string]any{"error": msg}
}

// slotTaken reports whether a confirmed or pending appointment already
// occupies the slot. Cancelled and completed rows do not block the slot.
func slotTaken(appointments []store.Appointment, center, date, slot string, excludeID int) bool {
	for _, a := range appointments {
		if a.ServiceCenter == center && a.AppointmentDate == date && a.AppointmentTime == slot &&
			a.AppointmentID != excludeID && (a.Status == "confirmed" || a.Status == "pending") {
			return true
		}
	}
	return false
}

// findCenter matches a service center by case-insensitive name substring.
func findCenter(centers []store.ServiceCenter, name string) (store.ServiceCenter, bool) {
	needle := strings.ToLower(name)
	for _, c := range centers {
		if strings.Contains(strings.ToLower(c.CenterName), needle) {
			return c, true
		}
	}
	return store.ServiceCenter{}, false
}

// CheckAvailability lists the free slots at a service center on a date.
func (s *Service) CheckAvailability(centerName, preferredDate, serviceType string) map[string]any {
	centers, err := s.store.ServiceCenters()
	if err != nil {
		return errResult(fmt.Sprintf("Error checking availability: %s", err))
	}
	center, ok := findCenter(centers, centerName)
	if !ok {
		return errResult(fmt.Sprintf("Service center '%s' not found", centerName))
	}

	checkDate, err := time.Parse(DateLayout, preferredDate)
	if err != nil {
		return errResult("Invalid date format. Use dd/mm/YYYY")
	}
	today := s.now().Format(DateLayout)
	todayDate, _ := time.Parse(DateLayout, today)
	if checkDate.Before(todayDate) {
		return errResult("Cannot book appointments for past dates")
	}

	appointments, err := s.store.Appointments()
	if err != nil {
		return errResult(fmt.Sprintf("Error checking availability: %s", err))
	}

	available := make([]string, 0, len(allSlots))
	booked := 0
	for _, slot := range allSlots {
		if slotTaken(appointments, center.CenterName, preferredDate, slot, 0) {
			booked++
			continue
		}
		available = append(available, slot)
	}

	return map[string]any{
		"service_center":  center.CenterName,
		"city":            center.City,
		"address":         center.Address,
		"phone":           center.Phone,
		"date":            preferredDate,
		"day_of_week":     checkDate.Format("Monday"),
		"available_slots": available,
		"total_available": len(available),
		"booked_slots":    booked,
		"service_type":    serviceType,
		"message":         fmt.Sprintf("%d slots available on %s", len(available), preferredDate),
	}
}

// Request carries the booking parameters. Contact fields left empty are
// filled in from the session customer's profile.
type Request struct {
	VehicleRegistration string
	ServiceCenter       string
	Date                string
	Time                string
	ServiceType         string
	CustomerPhone       string
	CustomerEmail       string
	Notes               string
}

// Book reserves a slot and emails a confirmation carrying a QR code of the
// appointment details. The store lock covers the clash check and the ID
// allocation together.
func (s *Service) Book(ctx context.Context, req Request) map[string]any {
	s.store.Lock()
	defer s.store.Unlock()

	vehicles, err := s.store.Vehicles()
	if err != nil {
		return errResult(fmt.Sprintf("Booking failed: %s", err))
	}
	var vehicle store.Vehicle
	found := false
	for _, v := range vehicles {
		if v.Registration == req.VehicleRegistration {
			vehicle = v
			found = true
			break
		}
	}
	if !found {
		return errResult(fmt.Sprintf("Vehicle %s not found", req.VehicleRegistration))
	}

	customerName := "Customer"
	if customer, ok := s.sessionCustomer(ctx); ok {
		customerName = customer.Name
		if req.CustomerEmail == "" {
			req.CustomerEmail = customer.Email
		}
		if req.CustomerPhone == "" {
			req.CustomerPhone = customer.Phone
		}
	}

	centers, err := s.store.ServiceCenters()
	if err != nil {
		return errResult(fmt.Sprintf("Booking failed: %s", err))
	}
	center, ok := findCenter(centers, req.ServiceCenter)
	if !ok {
		return errResult(fmt.Sprintf("Service center '%s' not found", req.ServiceCenter))
	}

	appointments, err := s.store.Appointments()
	if err != nil {
		return errResult(fmt.Sprintf("Booking failed: %s", err))
	}
	if slotTaken(appointments, center.CenterName, req.Date, req.Time, 0) {
		return errResult(fmt.Sprintf("Time slot %s on %s is already booked", req.Time, req.Date))
	}

	appointmentID := store.NextID(appointments, func(a store.Appointment) int { return a.AppointmentID })
	confirmation := fmt.Sprintf("MSAP%06d", appointmentID)

	appointments = append(appointments, store.Appointment{
		AppointmentID:       appointmentID,
		VehicleRegistration: req.VehicleRegistration,
		ServiceCenter:       center.CenterName,
		AppointmentDate:     req.Date,
		AppointmentTime:     req.Time,
		ServiceType:         req.ServiceType,
		Status:              "confirmed",
		CustomerName:        customerName,
		CustomerPhone:       req.CustomerPhone,
		CustomerEmail:       req.CustomerEmail,
		Notes:               req.Notes,
		CreatedAt:           s.now().Format(createdAtLayout),
	})
	if err := s.store.SaveAppointments(appointments); err != nil {
		return errResult(fmt.Sprintf("Booking failed: %s", err))
	}

	response := map[string]any{
		"success":                true,
		"appointment_id":         appointmentID,
		"confirmation_number":    confirmation,
		"vehicle_registration":   req.VehicleRegistration,
		"vehicle_model":          vehicle.Model,
		"service_center":         center.CenterName,
		"service_center_address": center.Address,
		"service_center_phone":   center.Phone,
		"appointment_date":       req.Date,
		"appointment_time":       req.Time,
		"service_type":           displayTitle(req.ServiceType),
		"status":                 "Confirmed",
		"message":                "Appointment booked successfully!",
		"instructions": []string{
			"Confirmation email sent to your registered email",
			fmt.Sprintf("Arrive 15 minutes before your appointment at %s", req.Time),
			"Bring your vehicle registration documents",
			"Bring warranty/CCP documents if applicable",
			fmt.Sprintf("Contact service center at %s if you need to reschedule", center.Phone),
		},
	}
	if req.CustomerEmail != "" {
		response["confirmation_sent_to"] = req.CustomerEmail
	} else {
		response["confirmation_sent_to"] = "Email not available"
	}

	if req.CustomerEmail != "" {
		response["email_confirmation"] = s.sendConfirmationEmail(ctx, req, vehicle, center, confirmation)
	} else {
		response["email_confirmation"] = "Email not sent (no email address found in your profile)"
	}

	s.events.Publish(ctx, events.AppointmentBooked, map[string]any{
		"appointment_id":       appointmentID,
		"confirmation_number":  confirmation,
		"vehicle_registration": req.VehicleRegistration,
		"service_center":       center.CenterName,
		"appointment_date":     req.Date,
		"appointment_time":     req.Time,
	})

	return response
}

// ViewMyAppointments lists a customer's appointments, most recent first.
func (s *Service) ViewMyAppointments(customerPhone string) map[string]any {
	appointments, err := s.store.Appointments()
	if err != nil {
		return errResult(fmt.Sprintf("Error retrieving appointments: %s", err))
	}

	mine := make([]store.Appointment, 0)
	for _, a := range appointments {
		if a.CustomerPhone == customerPhone {
			mine = append(mine, a)
		}
	}
	if len(mine) == 0 {
		return map[string]any{
			"message":            "No appointments found",
			"total_appointments": 0,
		}
	}

	sort.SliceStable(mine, func(i, j int) bool {
		ti, erri := time.Parse(createdAtLayout, mine[i].CreatedAt)
		tj, errj := time.Parse(createdAtLayout, mine[j].CreatedAt)
		if erri != nil || errj != nil {
			return mine[i].CreatedAt > mine[j].CreatedAt
		}
		return ti.After(tj)
	})

	records := make([]map[string]any, 0, len(mine))
	for _, a := range mine {
		records = append(records, appointmentRecord(a))
	}
	return map[string]any{
		"appointments":       records,
		"total_appointments": len(records),
	}
}

// Cancel marks an appointment cancelled, freeing its slot.
func (s *Service) Cancel(appointmentID int, reason string) map[string]any {
	s.store.Lock()
	defer s.store.Unlock()

	appointments, err := s.store.Appointments()
	if err != nil {
		return errResult(fmt.Sprintf("Cancellation failed: %s", err))
	}

	idx := appointmentIndex(appointments, appointmentID)
	if idx < 0 {
		return errResult(fmt.Sprintf("Appointment ID %d not found", appointmentID))
	}
	appt := appointments[idx]

	if appt.Status == "cancelled" {
		return errResult("Appointment is already cancelled")
	}
	if appt.Status == "completed" {
		return errResult("Cannot cancel a completed appointment")
	}

	appointments[idx].Status = "cancelled"
	if err := s.store.SaveAppointments(appointments); err != nil {
		return errResult(fmt.Sprintf("Cancellation failed: %s", err))
	}

	return map[string]any{
		"success":              true,
		"appointment_id":       appointmentID,
		"confirmation_number":  fmt.Sprintf("MSAP%06d", appointmentID),
		"vehicle_registration": appt.VehicleRegistration,
		"appointment_date":     appt.AppointmentDate,
		"appointment_time":     appt.AppointmentTime,
		"service_center":       appt.ServiceCenter,
		"cancellation_reason":  reason,
		"message":              "Appointment cancelled successfully",
		"note":                 "You can book a new appointment anytime",
	}
}

// Reschedule moves an appointment to a new slot. The clash check skips the
// appointment's own row so moving within the same day works.
func (s *Service) Reschedule(appointmentID int, newDate, newTime string) map[string]any {
	s.store.Lock()
	defer s.store.Unlock()

	appointments, err := s.store.Appointments()
	if err != nil {
		return errResult(fmt.Sprintf("Rescheduling failed: %s", err))
	}

	idx := appointmentIndex(appointments, appointmentID)
	if idx < 0 {
		return errResult(fmt.Sprintf("Appointment ID %d not found", appointmentID))
	}
	appt := appointments[idx]

	if appt.Status == "cancelled" {
		return errResult("Cannot reschedule a cancelled appointment")
	}
	if appt.Status == "completed" {
		return errResult("Cannot reschedule a completed appointment")
	}

	if slotTaken(appointments, appt.ServiceCenter, newDate, newTime, appointmentID) {
		return errResult(fmt.Sprintf("Time slot %s on %s is already booked", newTime, newDate))
	}

	oldDate, oldTime := appt.AppointmentDate, appt.AppointmentTime
	appointments[idx].AppointmentDate = newDate
	appointments[idx].AppointmentTime = newTime
	if err := s.store.SaveAppointments(appointments); err != nil {
		return errResult(fmt.Sprintf("Rescheduling failed: %s", err))
	}

	return map[string]any{
		"success":              true,
		"appointment_id":       appointmentID,
		"confirmation_number":  fmt.Sprintf("MSAP%06d", appointmentID),
		"vehicle_registration": appt.VehicleRegistration,
		"service_center":       appt.ServiceCenter,
		"old_date":             oldDate,
		"old_time":             oldTime,
		"new_date":             newDate,
		"new_time":             newTime,
		"message":              "Appointment rescheduled successfully!",
	}
}

func appointmentIndex(appointments []store.Appointment, id int) int {
	for i, a := range appointments {
		if a.AppointmentID == id {
			return i
		}
	}
	return -1
}

func appointmentRecord(a store.Appointment) map[string]any {
	return map[string]any{
		"appointment_id":       a.AppointmentID,
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

func (s *Service) sessionCustomer(ctx context.Context) (store.Customer, bool) {
	userID, ok := tools.UserIDFromContext(ctx)
	if !ok {
		return store.Customer{}, false
	}
	customer, found, err := s.store.CustomerByID(userID)
	if err != nil || !found {
		return store.Customer{}, false
	}
	return customer, true
}

// displayTitle renders snake_case service types as display text.
func displayTitle(snake string) string {
	out := []rune(snake)
	upper := true
	for i, r := range out {
		if r == '_' {
			out[i] = ' '
			upper = true
			continue
		}
		if upper && 'a' <= r && r <= 'z' {
			out[i] = r - 'a' + 'A'
		}
		upper = false
	}
	return string(out)
}
