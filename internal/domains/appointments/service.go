package appointments

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/sangkips/patient-reminder-service/internal/domains/appointments/models"
	"github.com/sangkips/patient-reminder-service/internal/templating"
)

// Statuses
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

const defaultDurationMinutes = 60

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateAppointmentRequest struct {
	PatientID       int32   `json:"patient_id"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	DurationMinutes *int32  `json:"duration_minutes"`
	Service         string  `json:"service"`
	Provider        *string `json:"provider"`
	Location        *string `json:"location"`
	Status          string  `json:"status"`
}

func validStatus(status string) bool {
	switch status {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func (s *Service) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (models.Appointment, error) {
	date, err := time.Parse(templating.LayoutISODate, strings.TrimSpace(req.Date))
	if err != nil {
		return models.Appointment{}, ErrInvalidDate
	}
	clock, err := time.Parse(templating.LayoutClock24, strings.TrimSpace(req.Time))
	if err != nil {
		return models.Appointment{}, ErrInvalidTime
	}

	duration := int32(defaultDurationMinutes)
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}
	if duration <= 0 {
		return models.Appointment{}, ErrInvalidDuration
	}

	service := strings.TrimSpace(req.Service)
	if service == "" {
		return models.Appointment{}, ErrServiceRequired
	}

	status := req.Status
	if status == "" {
		status = StatusScheduled
	}
	if !validStatus(status) {
		return models.Appointment{}, ErrInvalidStatus
	}

	appt, err := s.repo.CreateAppointment(ctx, models.CreateAppointmentParams{
		PatientID:       req.PatientID,
		AppointmentDate: date,
		AppointmentTime: clock.Format(templating.LayoutClock24),
		DurationMinutes: duration,
		Service:         service,
		Provider:        nullString(req.Provider),
		Location:        nullString(req.Location),
		Status:          status,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Appointment{}, ErrPatientNotFound
		}
		return models.Appointment{}, err
	}
	return appt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id int32) (models.Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Appointment{}, ErrAppointmentNotFound
	}
	return appt, err
}

// ListForPatient returns a patient's appointments in date order, optionally
// only those on or after from.
func (s *Service) ListForPatient(ctx context.Context, patientID int32, from *time.Time) ([]models.Appointment, error) {
	params := models.ListAppointmentsByPatientParams{PatientID: patientID}
	if from != nil {
		params.From = sql.NullTime{Time: *from, Valid: true}
	}
	items, err := s.repo.ListAppointmentsByPatient(ctx, params)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Appointment{}
	}
	return items, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int32, status string) (models.Appointment, error) {
	if !validStatus(status) {
		return models.Appointment{}, ErrInvalidStatus
	}
	appt, err := s.repo.UpdateAppointmentStatus(ctx, models.UpdateAppointmentStatusParams{ID: id, Status: status})
	if errors.Is(err, sql.ErrNoRows) {
		return models.Appointment{}, ErrAppointmentNotFound
	}
	return appt, err
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
