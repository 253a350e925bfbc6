package models

import (
	"database/sql"
	"time"
)

type Campaign struct {
	ID          int32          `json:"id"`
	Name        string         `json:"name"`
	Description sql.NullString `json:"description"`
	TemplateID  int32          `json:"template_id"`
	Channel     string         `json:"channel"`
	Status      string         `json:"status"`
	ScheduledAt sql.NullTime   `json:"scheduled_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
