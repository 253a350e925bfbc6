package appointments

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sangkips/patient-reminder-service/internal/domains/appointments/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	created    []models.CreateAppointmentParams
	createErr  error
	listParams models.ListAppointmentsByPatientParams
	appts      map[int32]models.Appointment
}

func (m *mockRepository) CreateAppointment(ctx context.Context, params models.CreateAppointmentParams) (models.Appointment, error) {
	m.created = append(m.created, params)
	if m.createErr != nil {
		return models.Appointment{}, m.createErr
	}
	return models.Appointment{
		ID:              1,
		PatientID:       params.PatientID,
		AppointmentDate: params.AppointmentDate,
		AppointmentTime: params.AppointmentTime,
		DurationMinutes: params.DurationMinutes,
		Service:         params.Service,
		Provider:        params.Provider,
		Location:        params.Location,
		Status:          params.Status,
	}, nil
}

func (m *mockRepository) GetAppointment(ctx context.Context, id int32) (models.Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return models.Appointment{}, sql.ErrNoRows
	}
	return a, nil
}

func (m *mockRepository) GetPatientAppointment(ctx context.Context, id int32, patientID int32) (models.Appointment, error) {
	a, ok := m.appts[id]
	if !ok || a.PatientID != patientID {
		return models.Appointment{}, sql.ErrNoRows
	}
	return a, nil
}

func (m *mockRepository) ListAppointmentsByPatient(ctx context.Context, params models.ListAppointmentsByPatientParams) ([]models.Appointment, error) {
	m.listParams = params
	return nil, nil
}

func (m *mockRepository) UpdateAppointmentStatus(ctx context.Context, params models.UpdateAppointmentStatusParams) (models.Appointment, error) {
	a, ok := m.appts[params.ID]
	if !ok {
		return models.Appointment{}, sql.ErrNoRows
	}
	a.Status = params.Status
	return a, nil
}

var _ Repository = (*mockRepository)(nil)

func TestCreateAppointment_Defaults(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)

	appt, err := svc.CreateAppointment(context.Background(), CreateAppointmentRequest{
		PatientID: 3,
		Date:      "2024-01-15",
		Time:      "9:05",
		Service:   " HydraFacial ",
		Provider:  ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "09:05", appt.AppointmentTime)
	assert.Equal(t, int32(60), appt.DurationMinutes)
	assert.Equal(t, "HydraFacial", appt.Service)
	assert.Equal(t, StatusScheduled, appt.Status)
	assert.False(t, appt.Provider.Valid)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), appt.AppointmentDate)
}

func TestCreateAppointment_Validation(t *testing.T) {
	base := func() CreateAppointmentRequest {
		return CreateAppointmentRequest{PatientID: 1, Date: "2024-01-15", Time: "14:30", Service: "Botox"}
	}
	tests := []struct {
		name   string
		modify func(*CreateAppointmentRequest)
		want   error
	}{
		{"bad date", func(r *CreateAppointmentRequest) { r.Date = "01/15/2024" }, ErrInvalidDate},
		{"bad time", func(r *CreateAppointmentRequest) { r.Time = "2:30 PM" }, ErrInvalidTime},
		{"zero duration", func(r *CreateAppointmentRequest) { r.DurationMinutes = ptr(int32(0)) }, ErrInvalidDuration},
		{"no service", func(r *CreateAppointmentRequest) { r.Service = " " }, ErrServiceRequired},
		{"bad status", func(r *CreateAppointmentRequest) { r.Status = "maybe" }, ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{}
			req := base()
			tt.modify(&req)
			_, err := NewService(repo).CreateAppointment(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, repo.created)
		})
	}
}

func TestCreateAppointment_UnknownPatient(t *testing.T) {
	repo := &mockRepository{createErr: &pgconn.PgError{Code: "23503"}}
	_, err := NewService(repo).CreateAppointment(context.Background(), CreateAppointmentRequest{
		PatientID: 404, Date: "2024-01-15", Time: "14:30", Service: "Botox",
	})
	assert.ErrorIs(t, err, ErrPatientNotFound)

	repo.createErr = errors.New("boom")
	_, err = NewService(repo).CreateAppointment(context.Background(), CreateAppointmentRequest{
		PatientID: 404, Date: "2024-01-15", Time: "14:30", Service: "Botox",
	})
	assert.EqualError(t, err, "boom")
}

func TestListForPatient(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)

	items, err := svc.ListForPatient(context.Background(), 5, nil)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.False(t, repo.listParams.From.Valid)

	from := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.ListForPatient(context.Background(), 5, &from)
	require.NoError(t, err)
	assert.True(t, repo.listParams.From.Valid)
	assert.Equal(t, int32(5), repo.listParams.PatientID)
}

func TestUpdateStatus(t *testing.T) {
	repo := &mockRepository{appts: map[int32]models.Appointment{2: {ID: 2, Status: StatusScheduled}}}
	svc := NewService(repo)

	appt, err := svc.UpdateStatus(context.Background(), 2, StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, appt.Status)

	_, err = svc.UpdateStatus(context.Background(), 3, StatusConfirmed)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = svc.UpdateStatus(context.Background(), 2, "done")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestToTemplateAppointment(t *testing.T) {
	appt := models.Appointment{
		ID:              12,
		AppointmentDate: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "14:30",
		DurationMinutes: 90,
		Service:         "Botox",
		Provider:        sql.NullString{String: "Dr. Lee", Valid: true},
		Status:          StatusConfirmed,
	}

	out := ToTemplateAppointment(appt)
	require.NotNil(t, out.ID)
	assert.Equal(t, "12", *out.ID)
	assert.Equal(t, 90, *out.Duration)
	assert.Equal(t, "Dr. Lee", *out.Provider)
	assert.Nil(t, out.Location)
	assert.Equal(t, "14:30", *out.Time)
}

func ptr[T any](v T) *T {
	return &v
}
