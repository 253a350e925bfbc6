package models

import (
	"context"
	"database/sql"
	"time"
)

const appointmentColumns = `id, patient_id, appointment_date, appointment_time, duration_minutes,
    service, provider, location, status, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (Appointment, error) {
	var i Appointment
	err := row.Scan(
		&i.ID,
		&i.PatientID,
		&i.AppointmentDate,
		&i.AppointmentTime,
		&i.DurationMinutes,
		&i.Service,
		&i.Provider,
		&i.Location,
		&i.Status,
		&i.CreatedAt,
	)
	return i, err
}

const createAppointment = `-- name: CreateAppointment :one
INSERT INTO appointments (patient_id, appointment_date, appointment_time, duration_minutes, service, provider, location, status)
VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8)
RETURNING ` + appointmentColumns

type CreateAppointmentParams struct {
	PatientID       int32          `json:"patient_id"`
	AppointmentDate time.Time      `json:"appointment_date"`
	AppointmentTime string         `json:"appointment_time"`
	DurationMinutes int32          `json:"duration_minutes"`
	Service         string         `json:"service"`
	Provider        sql.NullString `json:"provider"`
	Location        sql.NullString `json:"location"`
	Status          string         `json:"status"`
}

func (q *Queries) CreateAppointment(ctx context.Context, arg CreateAppointmentParams) (Appointment, error) {
	row := q.db.QueryRowContext(ctx, createAppointment,
		arg.PatientID,
		arg.AppointmentDate,
		arg.AppointmentTime,
		arg.DurationMinutes,
		arg.Service,
		arg.Provider,
		arg.Location,
		arg.Status,
	)
	return scanAppointment(row)
}

const getAppointment = `-- name: GetAppointment :one
SELECT ` + appointmentColumns + `
FROM appointments
WHERE id = $1`

func (q *Queries) GetAppointment(ctx context.Context, id int32) (Appointment, error) {
	row := q.db.QueryRowContext(ctx, getAppointment, id)
	return scanAppointment(row)
}

const getPatientAppointment = `-- name: GetPatientAppointment :one
SELECT ` + appointmentColumns + `
FROM appointments
WHERE id = $1 AND patient_id = $2`

// GetPatientAppointment only returns the appointment when it belongs to the
// patient.
func (q *Queries) GetPatientAppointment(ctx context.Context, id int32, patientID int32) (Appointment, error) {
	row := q.db.QueryRowContext(ctx, getPatientAppointment, id, patientID)
	return scanAppointment(row)
}

const listAppointmentsByPatient = `-- name: ListAppointmentsByPatient :many
SELECT ` + appointmentColumns + `
FROM appointments
WHERE patient_id = $1
  AND ($2::date IS NULL OR appointment_date >= $2::date)
ORDER BY appointment_date, appointment_time, id`

type ListAppointmentsByPatientParams struct {
	PatientID int32        `json:"patient_id"`
	From      sql.NullTime `json:"from"`
}

func (q *Queries) ListAppointmentsByPatient(ctx context.Context, arg ListAppointmentsByPatientParams) ([]Appointment, error) {
	rows, err := q.db.QueryContext(ctx, listAppointmentsByPatient, arg.PatientID, arg.From)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Appointment
	for rows.Next() {
		i, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateAppointmentStatus = `-- name: UpdateAppointmentStatus :one
UPDATE appointments
SET status = $2
WHERE id = $1
RETURNING ` + appointmentColumns

type UpdateAppointmentStatusParams struct {
	ID     int32  `json:"id"`
	Status string `json:"status"`
}

func (q *Queries) UpdateAppointmentStatus(ctx context.Context, arg UpdateAppointmentStatusParams) (Appointment, error) {
	row := q.db.QueryRowContext(ctx, updateAppointmentStatus, arg.ID, arg.Status)
	return scanAppointment(row)
}
