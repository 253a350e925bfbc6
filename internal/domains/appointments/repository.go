package appointments

import (
	"context"

	"github.com/sangkips/patient-reminder-service/internal/domains/appointments/models"
)

type Repository interface {
	CreateAppointment(ctx context.Context, params models.CreateAppointmentParams) (models.Appointment, error)
	GetAppointment(ctx context.Context, id int32) (models.Appointment, error)
	GetPatientAppointment(ctx context.Context, id int32, patientID int32) (models.Appointment, error)
	ListAppointmentsByPatient(ctx context.Context, params models.ListAppointmentsByPatientParams) ([]models.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, params models.UpdateAppointmentStatusParams) (models.Appointment, error)
}

type repository struct {
	q *models.Queries
}

func NewRepository(db models.DBTX) Repository {
	return &repository{q: models.New(db)}
}

func (r *repository) CreateAppointment(ctx context.Context, params models.CreateAppointmentParams) (models.Appointment, error) {
	return r.q.CreateAppointment(ctx, params)
}

func (r *repository) GetAppointment(ctx context.Context, id int32) (models.Appointment, error) {
	return r.q.GetAppointment(ctx, id)
}

func (r *repository) GetPatientAppointment(ctx context.Context, id int32, patientID int32) (models.Appointment, error) {
	return r.q.GetPatientAppointment(ctx, id, patientID)
}

func (r *repository) ListAppointmentsByPatient(ctx context.Context, params models.ListAppointmentsByPatientParams) ([]models.Appointment, error) {
	return r.q.ListAppointmentsByPatient(ctx, params)
}

func (r *repository) UpdateAppointmentStatus(ctx context.Context, params models.UpdateAppointmentStatusParams) (models.Appointment, error) {
	return r.q.UpdateAppointmentStatus(ctx, params)
}
