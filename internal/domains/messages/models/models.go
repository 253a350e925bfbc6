package models

import (
	"database/sql"
	"time"
)

type OutboundMessage struct {
	ID                int32          `json:"id"`
	CampaignID        int32          `json:"campaign_id"`
	PatientID         int32          `json:"patient_id"`
	AppointmentID     sql.NullInt32  `json:"appointment_id"`
	Status            string         `json:"status"`
	RenderedContent   sql.NullString `json:"rendered_content"`
	CharacterCount    sql.NullInt32  `json:"character_count"`
	SegmentCount      sql.NullInt32  `json:"segment_count"`
	ProviderMessageID sql.NullString `json:"provider_message_id"`
	LastError         sql.NullString `json:"last_error"`
	RetryCount        int32          `json:"retry_count"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}
