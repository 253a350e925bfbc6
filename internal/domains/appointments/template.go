package appointments

import (
	"strconv"

	"github.com/sangkips/patient-reminder-service/internal/domains/appointments/models"
	"github.com/sangkips/patient-reminder-service/internal/templating"
)

// ToTemplateAppointment maps an appointment row onto the {appointment.*}
// namespace. Null columns stay nil so templates treat them as missing.
func ToTemplateAppointment(appt models.Appointment) *templating.Appointment {
	id := strconv.Itoa(int(appt.ID))
	date := appt.AppointmentDate
	clock := appt.AppointmentTime
	duration := int(appt.DurationMinutes)
	service := appt.Service
	status := appt.Status

	out := &templating.Appointment{
		ID:       &id,
		Date:     &date,
		Time:     &clock,
		Duration: &duration,
		Service:  &service,
		Status:   &status,
	}
	if appt.Provider.Valid {
		provider := appt.Provider.String
		out.Provider = &provider
	}
	if appt.Location.Valid {
		location := appt.Location.String
		out.Location = &location
	}
	return out
}
