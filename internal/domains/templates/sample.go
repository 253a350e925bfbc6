package templates

import (
	"time"

	"github.com/sangkips/patient-reminder-service/internal/templating"
)

// SampleContext is the patient shown in authoring previews when no context is
// supplied.
func SampleContext() *templating.Context {
	str := func(s string) *string { return &s }
	num := func(n int) *int { return &n }
	balance := 150.50
	hasPackage := true
	lastVisit := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	date := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	return &templating.Context{
		Patient: &templating.Patient{
			ID:            str("sample"),
			FirstName:     str("Sarah"),
			LastName:      str("Johnson"),
			Phone:         str("5551234567"),
			Email:         str("sarah@example.com"),
			Balance:       &balance,
			Credits:       num(3),
			HasPackage:    &hasPackage,
			PackageName:   str("Glow Package"),
			LastVisit:     &lastVisit,
			UpcomingCount: num(1),
		},
		Appointment: &templating.Appointment{
			ID:       str("sample"),
			Date:     &date,
			Time:     str("14:30"),
			Duration: num(60),
			Service:  str("HydraFacial"),
			Provider: str("Dr. Smith"),
			Location: str("Main Street"),
			Status:   str("confirmed"),
		},
		Clinic: &templating.Clinic{
			Name:    str("Luxe Medical Spa"),
			Phone:   str("(555) 987-6543"),
			Address: str("123 Main Street"),
			Website: str("luxemedspa.com"),
		},
	}
}
