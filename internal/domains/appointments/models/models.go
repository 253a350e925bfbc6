package models

import (
	"database/sql"
	"time"
)

type Appointment struct {
	ID              int32          `json:"id"`
	PatientID       int32          `json:"patient_id"`
	AppointmentDate time.Time      `json:"appointment_date"`
	AppointmentTime string         `json:"appointment_time"`
	DurationMinutes int32          `json:"duration_minutes"`
	Service         string         `json:"service"`
	Provider        sql.NullString `json:"provider"`
	Location        sql.NullString `json:"location"`
	Status          string         `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
}
