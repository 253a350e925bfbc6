package patients

import (
	"context"
	"database/sql"
	"time"

	"github.com/sangkips/patient-reminder-service/internal/domains/patients/models"
)

type Repository interface {
	CreatePatient(ctx context.Context, patient models.CreatePatientParams) (models.Patient, error)
	GetPatient(ctx context.Context, id int32) (models.Patient, error)
	ListPatients(ctx context.Context, params models.ListPatientsParams) ([]models.Patient, error)
	CountPatients(ctx context.Context, search sql.NullString) (int64, error)
	GetPatientForTemplate(ctx context.Context, id int32, today time.Time) (models.GetPatientForTemplateRow, error)
}

type repository struct {
	q *models.Queries
}

func NewRepository(db models.DBTX) Repository {
	return &repository{q: models.New(db)}
}

func (r *repository) CreatePatient(ctx context.Context, patient models.CreatePatientParams) (models.Patient, error) {
	return r.q.CreatePatient(ctx, patient)
}

func (r *repository) GetPatient(ctx context.Context, id int32) (models.Patient, error) {
	return r.q.GetPatient(ctx, id)
}

func (r *repository) ListPatients(ctx context.Context, params models.ListPatientsParams) ([]models.Patient, error) {
	return r.q.ListPatients(ctx, params)
}

func (r *repository) CountPatients(ctx context.Context, search sql.NullString) (int64, error) {
	return r.q.CountPatients(ctx, search)
}

func (r *repository) GetPatientForTemplate(ctx context.Context, id int32, today time.Time) (models.GetPatientForTemplateRow, error) {
	return r.q.GetPatientForTemplate(ctx, id, today)
}
