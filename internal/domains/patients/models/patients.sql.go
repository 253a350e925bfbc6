package models

import (
	"context"
	"database/sql"
	"time"
)

const patientColumns = `id, first_name, last_name, phone, email, balance::float8, credits,
    has_package, package_name, last_visit, created_at`

const createPatient = `-- name: CreatePatient :one
INSERT INTO patients (first_name, last_name, phone, email, balance, credits, has_package, package_name, last_visit)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + patientColumns

type CreatePatientParams struct {
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Phone       string          `json:"phone"`
	Email       sql.NullString  `json:"email"`
	Balance     sql.NullFloat64 `json:"balance"`
	Credits     sql.NullInt32   `json:"credits"`
	HasPackage  sql.NullBool    `json:"has_package"`
	PackageName sql.NullString  `json:"package_name"`
	LastVisit   sql.NullTime    `json:"last_visit"`
}

func (q *Queries) CreatePatient(ctx context.Context, arg CreatePatientParams) (Patient, error) {
	row := q.db.QueryRowContext(ctx, createPatient,
		arg.FirstName,
		arg.LastName,
		arg.Phone,
		arg.Email,
		arg.Balance,
		arg.Credits,
		arg.HasPackage,
		arg.PackageName,
		arg.LastVisit,
	)
	var i Patient
	err := row.Scan(
		&i.ID,
		&i.FirstName,
		&i.LastName,
		&i.Phone,
		&i.Email,
		&i.Balance,
		&i.Credits,
		&i.HasPackage,
		&i.PackageName,
		&i.LastVisit,
		&i.CreatedAt,
	)
	return i, err
}

const getPatient = `-- name: GetPatient :one
SELECT ` + patientColumns + `
FROM patients
WHERE id = $1`

func (q *Queries) GetPatient(ctx context.Context, id int32) (Patient, error) {
	row := q.db.QueryRowContext(ctx, getPatient, id)
	var i Patient
	err := row.Scan(
		&i.ID,
		&i.FirstName,
		&i.LastName,
		&i.Phone,
		&i.Email,
		&i.Balance,
		&i.Credits,
		&i.HasPackage,
		&i.PackageName,
		&i.LastVisit,
		&i.CreatedAt,
	)
	return i, err
}

const listPatients = `-- name: ListPatients :many
SELECT ` + patientColumns + `
FROM patients
WHERE ($1::text IS NULL
       OR first_name ILIKE '%' || $1 || '%'
       OR last_name ILIKE '%' || $1 || '%'
       OR phone LIKE '%' || $1 || '%')
ORDER BY last_name, first_name, id
LIMIT $2 OFFSET $3`

type ListPatientsParams struct {
	Search sql.NullString `json:"search"`
	Limit  int32          `json:"limit"`
	Offset int32          `json:"offset"`
}

func (q *Queries) ListPatients(ctx context.Context, arg ListPatientsParams) ([]Patient, error) {
	rows, err := q.db.QueryContext(ctx, listPatients, arg.Search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Patient
	for rows.Next() {
		var i Patient
		if err := rows.Scan(
			&i.ID,
			&i.FirstName,
			&i.LastName,
			&i.Phone,
			&i.Email,
			&i.Balance,
			&i.Credits,
			&i.HasPackage,
			&i.PackageName,
			&i.LastVisit,
			&i.CreatedAt,
		); err != nil {
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

const countPatients = `-- name: CountPatients :one
SELECT COUNT(*)
FROM patients
WHERE ($1::text IS NULL
       OR first_name ILIKE '%' || $1 || '%'
       OR last_name ILIKE '%' || $1 || '%'
       OR phone LIKE '%' || $1 || '%')`

func (q *Queries) CountPatients(ctx context.Context, search sql.NullString) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPatients, search)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getPatientForTemplate = `-- name: GetPatientForTemplate :one
SELECT p.id, p.first_name, p.last_name, p.phone, p.email, p.balance::float8, p.credits,
       p.has_package, p.package_name, p.last_visit,
       (SELECT COUNT(*)
        FROM appointments a
        WHERE a.patient_id = p.id
          AND a.appointment_date >= $2::date
          AND a.status IN ('scheduled', 'confirmed')) AS upcoming_count
FROM patients p
WHERE p.id = $1`

type GetPatientForTemplateRow struct {
	ID            int32           `json:"id"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	Phone         string          `json:"phone"`
	Email         sql.NullString  `json:"email"`
	Balance       sql.NullFloat64 `json:"balance"`
	Credits       sql.NullInt32   `json:"credits"`
	HasPackage    sql.NullBool    `json:"has_package"`
	PackageName   sql.NullString  `json:"package_name"`
	LastVisit     sql.NullTime    `json:"last_visit"`
	UpcomingCount int64           `json:"upcoming_count"`
}

// GetPatientForTemplate loads the patient namespace of a render context.
// Appointments on or after today count as upcoming.
func (q *Queries) GetPatientForTemplate(ctx context.Context, id int32, today time.Time) (GetPatientForTemplateRow, error) {
	row := q.db.QueryRowContext(ctx, getPatientForTemplate, id, today)
	var i GetPatientForTemplateRow
	err := row.Scan(
		&i.ID,
		&i.FirstName,
		&i.LastName,
		&i.Phone,
		&i.Email,
		&i.Balance,
		&i.Credits,
		&i.HasPackage,
		&i.PackageName,
		&i.LastVisit,
		&i.UpcomingCount,
	)
	return i, err
}
