package appointments

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrInvalidDate         = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidTime         = errors.New("time must be formatted as HH:MM")
	ErrInvalidDuration     = errors.New("duration_minutes must be positive")
	ErrServiceRequired     = errors.New("service is required")
	ErrInvalidStatus       = errors.New("status must be one of scheduled, confirmed, completed, cancelled, no_show")
)

const pgForeignKeyViolation = "23503"

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
