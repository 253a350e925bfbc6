package models

import (
	"database/sql"
	"time"
)

type Patient struct {
	ID          int32           `json:"id"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Phone       string          `json:"phone"`
	Email       sql.NullString  `json:"email"`
	Balance     sql.NullFloat64 `json:"balance"`
	Credits     sql.NullInt32   `json:"credits"`
	HasPackage  sql.NullBool    `json:"has_package"`
	PackageName sql.NullString  `json:"package_name"`
	LastVisit   sql.NullTime    `json:"last_visit"`
	CreatedAt   time.Time       `json:"created_at"`
}
