package patients

import (
	"context"
	"database/sql"
	"time"

	appointmentsModels "github.com/sangkips/patient-reminder-service/internal/domains/appointments/models"
	"github.com/sangkips/patient-reminder-service/internal/domains/patients/models"
)

type mockRepository struct {
	created      []models.CreatePatientParams
	patients     []models.Patient
	templateRows map[int32]models.GetPatientForTemplateRow
	listParams   models.ListPatientsParams
	todays       []time.Time
	err          error
}

func (m *mockRepository) CreatePatient(ctx context.Context, patient models.CreatePatientParams) (models.Patient, error) {
	m.created = append(m.created, patient)
	if m.err != nil {
		return models.Patient{}, m.err
	}
	return models.Patient{
		ID:        int32(len(m.created)),
		FirstName: patient.FirstName,
		LastName:  patient.LastName,
		Phone:     patient.Phone,
		Email:     patient.Email,
		Balance:   patient.Balance,
		Credits:   patient.Credits,
		LastVisit: patient.LastVisit,
		CreatedAt: time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC),
	}, nil
}

func (m *mockRepository) GetPatient(ctx context.Context, id int32) (models.Patient, error) {
	for _, p := range m.patients {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Patient{}, sql.ErrNoRows
}

func (m *mockRepository) ListPatients(ctx context.Context, params models.ListPatientsParams) ([]models.Patient, error) {
	m.listParams = params
	if m.err != nil {
		return nil, m.err
	}
	return m.patients, nil
}

func (m *mockRepository) CountPatients(ctx context.Context, search sql.NullString) (int64, error) {
	return int64(len(m.patients)), nil
}

func (m *mockRepository) GetPatientForTemplate(ctx context.Context, id int32, today time.Time) (models.GetPatientForTemplateRow, error) {
	m.todays = append(m.todays, today)
	row, ok := m.templateRows[id]
	if !ok {
		return models.GetPatientForTemplateRow{}, sql.ErrNoRows
	}
	return row, nil
}

var _ Repository = (*mockRepository)(nil)

type mockAppointments struct {
	appts map[int32]appointmentsModels.Appointment
}

func (m *mockAppointments) GetPatientAppointment(ctx context.Context, id int32, patientID int32) (appointmentsModels.Appointment, error) {
	a, ok := m.appts[id]
	if !ok || a.PatientID != patientID {
		return appointmentsModels.Appointment{}, sql.ErrNoRows
	}
	return a, nil
}

var _ AppointmentsRepository = (*mockAppointments)(nil)

func ptr[T any](v T) *T {
	return &v
}
