package models

import (
	"database/sql"
	"time"
)

type MessageTemplate struct {
	ID         int32          `json:"id"`
	SystemKey  sql.NullString `json:"system_key"`
	Name       string         `json:"name"`
	Category   string         `json:"category"`
	Channel    string         `json:"channel"`
	Subject    sql.NullString `json:"subject"`
	Body       string         `json:"body"`
	Variables  []string       `json:"variables"`
	Tags       []string       `json:"tags"`
	IsActive   bool           `json:"is_active"`
	IsSystem   bool           `json:"is_system"`
	UsageCount int32          `json:"usage_count"`
	LastUsedAt sql.NullTime   `json:"last_used_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
