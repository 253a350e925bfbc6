package patients

import (
	"context"
	"fmt"
	"time"

	"github.com/sangkips/patient-reminder-service/internal/domains/appointments"
	appointmentsModels "github.com/sangkips/patient-reminder-service/internal/domains/appointments/models"
	"github.com/sangkips/patient-reminder-service/internal/domains/patients/models"
	"github.com/sangkips/patient-reminder-service/internal/templating"
)

// AppointmentsRepository is the part of the appointments store the loader needs.
type AppointmentsRepository interface {
	GetPatientAppointment(ctx context.Context, id int32, patientID int32) (appointmentsModels.Appointment, error)
}

// Loader assembles render contexts from patient and appointment rows plus the
// configured clinic.
type Loader struct {
	patients     Repository
	appointments AppointmentsRepository
	clinic       *templating.Clinic
	now          func() time.Time
}

func NewLoader(patients Repository, appts AppointmentsRepository, clinic *templating.Clinic) *Loader {
	return &Loader{
		patients:     patients,
		appointments: appts,
		clinic:       clinic,
		now:          time.Now,
	}
}

// NewDBLoader wires a Loader against one database handle.
func NewDBLoader(db models.DBTX, clinic *templating.Clinic) *Loader {
	return NewLoader(NewRepository(db), appointments.NewRepository(db), clinic)
}

// LoadContext returns the context for patientID and, when appointmentID is
// set, that appointment. An appointment belonging to another patient is
// reported as missing. Missing rows wrap sql.ErrNoRows.
func (l *Loader) LoadContext(ctx context.Context, patientID int32, appointmentID *int32) (*templating.Context, error) {
	today := l.now().UTC().Truncate(24 * time.Hour)

	patient, err := l.patients.GetPatientForTemplate(ctx, patientID, today)
	if err != nil {
		return nil, fmt.Errorf("load patient %d: %w", patientID, err)
	}

	tctx := &templating.Context{
		Patient: ToTemplatePatient(patient),
		Clinic:  l.clinic,
	}

	if appointmentID != nil {
		appt, err := l.appointments.GetPatientAppointment(ctx, *appointmentID, patientID)
		if err != nil {
			return nil, fmt.Errorf("load appointment %d: %w", *appointmentID, err)
		}
		tctx.Appointment = appointments.ToTemplateAppointment(appt)
	}

	return tctx, nil
}
