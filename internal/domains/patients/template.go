package patients

import (
	"strconv"

	"github.com/sangkips/patient-reminder-service/internal/domains/patients/models"
	"github.com/sangkips/patient-reminder-service/internal/templating"
)

// ToTemplatePatient maps a patient row onto the {patient.*} namespace. Null
// columns stay nil so templates treat them as missing.
func ToTemplatePatient(patient models.GetPatientForTemplateRow) *templating.Patient {
	id := strconv.Itoa(int(patient.ID))
	firstName := patient.FirstName
	phone := patient.Phone
	upcoming := int(patient.UpcomingCount)

	out := &templating.Patient{
		ID:            &id,
		FirstName:     &firstName,
		Phone:         &phone,
		UpcomingCount: &upcoming,
	}

	// last_name defaults to '' in the schema; empty means not recorded.
	if patient.LastName != "" {
		lastName := patient.LastName
		out.LastName = &lastName
	}
	if patient.Email.Valid {
		email := patient.Email.String
		out.Email = &email
	}
	if patient.Balance.Valid {
		balance := patient.Balance.Float64
		out.Balance = &balance
	}
	if patient.Credits.Valid {
		credits := int(patient.Credits.Int32)
		out.Credits = &credits
	}
	if patient.HasPackage.Valid {
		hasPackage := patient.HasPackage.Bool
		out.HasPackage = &hasPackage
	}
	if patient.PackageName.Valid {
		packageName := patient.PackageName.String
		out.PackageName = &packageName
	}
	if patient.LastVisit.Valid {
		lastVisit := patient.LastVisit.Time
		out.LastVisit = &lastVisit
	}

	return out
}
