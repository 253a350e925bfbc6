package models

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

const messageColumns = `id, campaign_id, patient_id, appointment_id, status, rendered_content,
    character_count, segment_count, provider_message_id, last_error, retry_count,
    created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row rowScanner) (OutboundMessage, error) {
	var i OutboundMessage
	err := row.Scan(
		&i.ID,
		&i.CampaignID,
		&i.PatientID,
		&i.AppointmentID,
		&i.Status,
		&i.RenderedContent,
		&i.CharacterCount,
		&i.SegmentCount,
		&i.ProviderMessageID,
		&i.LastError,
		&i.RetryCount,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanMessages(rows *sql.Rows) ([]OutboundMessage, error) {
	defer rows.Close()
	var items []OutboundMessage
	for rows.Next() {
		i, err := scanMessage(rows)
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

const createOutboundMessage = `-- name: CreateOutboundMessage :one
INSERT INTO outbound_messages (campaign_id, patient_id, appointment_id)
VALUES ($1, $2, $3)
RETURNING ` + messageColumns

type CreateOutboundMessageParams struct {
	CampaignID    int32         `json:"campaign_id"`
	PatientID     int32         `json:"patient_id"`
	AppointmentID sql.NullInt32 `json:"appointment_id"`
}

func (q *Queries) CreateOutboundMessage(ctx context.Context, arg CreateOutboundMessageParams) (OutboundMessage, error) {
	row := q.db.QueryRowContext(ctx, createOutboundMessage, arg.CampaignID, arg.PatientID, arg.AppointmentID)
	return scanMessage(row)
}

const createOutboundMessageBatch = `-- name: CreateOutboundMessageBatch :many
INSERT INTO outbound_messages (campaign_id, patient_id, appointment_id)
SELECT $1, r.patient_id, NULLIF(r.appointment_id, 0)
FROM unnest($2::int[], $3::int[]) AS r (patient_id, appointment_id)
RETURNING ` + messageColumns

// CreateOutboundMessageBatchParams pairs PatientIds with AppointmentIds by
// position. An appointment id of 0 means the message has no appointment.
type CreateOutboundMessageBatchParams struct {
	CampaignID     int32   `json:"campaign_id"`
	PatientIds     []int32 `json:"patient_ids"`
	AppointmentIds []int32 `json:"appointment_ids"`
}

func (q *Queries) CreateOutboundMessageBatch(ctx context.Context, arg CreateOutboundMessageBatchParams) ([]OutboundMessage, error) {
	appointmentIds := arg.AppointmentIds
	if len(appointmentIds) != len(arg.PatientIds) {
		appointmentIds = make([]int32, len(arg.PatientIds))
		copy(appointmentIds, arg.AppointmentIds)
	}
	rows, err := q.db.QueryContext(ctx, createOutboundMessageBatch,
		arg.CampaignID,
		pq.Array(arg.PatientIds),
		pq.Array(appointmentIds),
	)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

const countOutboundMessagesByCampaign = `-- name: CountOutboundMessagesByCampaign :one
SELECT COUNT(*)
FROM outbound_messages
WHERE campaign_id = $1`

func (q *Queries) CountOutboundMessagesByCampaign(ctx context.Context, campaignID int32) (int64, error) {
	row := q.db.QueryRowContext(ctx, countOutboundMessagesByCampaign, campaignID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getOutboundMessage = `-- name: GetOutboundMessage :one
SELECT ` + messageColumns + `
FROM outbound_messages
WHERE id = $1`

func (q *Queries) GetOutboundMessage(ctx context.Context, id int32) (OutboundMessage, error) {
	row := q.db.QueryRowContext(ctx, getOutboundMessage, id)
	return scanMessage(row)
}

const getOutboundMessageWithDetails = `-- name: GetOutboundMessageWithDetails :one
SELECT m.id, m.campaign_id, m.patient_id, m.appointment_id, m.status, m.retry_count,
       p.phone, p.email,
       c.channel, t.id, t.body, t.subject, t.is_active
FROM outbound_messages m
JOIN patients p ON p.id = m.patient_id
JOIN campaigns c ON c.id = m.campaign_id
JOIN message_templates t ON t.id = c.template_id
WHERE m.id = $1`

type GetOutboundMessageWithDetailsRow struct {
	ID              int32          `json:"id"`
	CampaignID      int32          `json:"campaign_id"`
	PatientID       int32          `json:"patient_id"`
	AppointmentID   sql.NullInt32  `json:"appointment_id"`
	Status          string         `json:"status"`
	RetryCount      int32          `json:"retry_count"`
	PatientPhone    string         `json:"patient_phone"`
	PatientEmail    sql.NullString `json:"patient_email"`
	Channel         string         `json:"channel"`
	TemplateID      int32          `json:"template_id"`
	TemplateBody    string         `json:"template_body"`
	TemplateSubject sql.NullString `json:"template_subject"`
	TemplateActive  bool           `json:"template_active"`
}

func (q *Queries) GetOutboundMessageWithDetails(ctx context.Context, id int32) (GetOutboundMessageWithDetailsRow, error) {
	row := q.db.QueryRowContext(ctx, getOutboundMessageWithDetails, id)
	var i GetOutboundMessageWithDetailsRow
	err := row.Scan(
		&i.ID,
		&i.CampaignID,
		&i.PatientID,
		&i.AppointmentID,
		&i.Status,
		&i.RetryCount,
		&i.PatientPhone,
		&i.PatientEmail,
		&i.Channel,
		&i.TemplateID,
		&i.TemplateBody,
		&i.TemplateSubject,
		&i.TemplateActive,
	)
	return i, err
}

const updateOutboundMessageWithRetry = `-- name: UpdateOutboundMessageWithRetry :one
UPDATE outbound_messages
SET status = $2,
    provider_message_id = COALESCE($3, provider_message_id),
    last_error = $4,
    rendered_content = COALESCE($5, rendered_content),
    character_count = COALESCE($6, character_count),
    segment_count = COALESCE($7, segment_count),
    retry_count = retry_count + CASE WHEN $8::boolean THEN 1 ELSE 0 END,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + messageColumns

// UpdateOutboundMessageWithRetryParams leaves rendered content, counts and
// provider id untouched when they are null.
type UpdateOutboundMessageWithRetryParams struct {
	ID                int32          `json:"id"`
	Status            string         `json:"status"`
	ProviderMessageID sql.NullString `json:"provider_message_id"`
	LastError         sql.NullString `json:"last_error"`
	RenderedContent   sql.NullString `json:"rendered_content"`
	CharacterCount    sql.NullInt32  `json:"character_count"`
	SegmentCount      sql.NullInt32  `json:"segment_count"`
	IncrementRetry    bool           `json:"increment_retry"`
}

func (q *Queries) UpdateOutboundMessageWithRetry(ctx context.Context, arg UpdateOutboundMessageWithRetryParams) (OutboundMessage, error) {
	row := q.db.QueryRowContext(ctx, updateOutboundMessageWithRetry,
		arg.ID,
		arg.Status,
		arg.ProviderMessageID,
		arg.LastError,
		arg.RenderedContent,
		arg.CharacterCount,
		arg.SegmentCount,
		arg.IncrementRetry,
	)
	return scanMessage(row)
}

const getPendingMessagesForCampaign = `-- name: GetPendingMessagesForCampaign :many
SELECT ` + messageColumns + `
FROM outbound_messages
WHERE campaign_id = $1 AND status = 'pending' AND id > $2
ORDER BY id
LIMIT $3`

// GetPendingMessagesForCampaignParams pages by id so messages leaving pending
// between pages never shift the window.
type GetPendingMessagesForCampaignParams struct {
	CampaignID int32 `json:"campaign_id"`
	AfterID    int32 `json:"after_id"`
	Limit      int32 `json:"limit"`
}

func (q *Queries) GetPendingMessagesForCampaign(ctx context.Context, arg GetPendingMessagesForCampaignParams) ([]OutboundMessage, error) {
	rows, err := q.db.QueryContext(ctx, getPendingMessagesForCampaign, arg.CampaignID, arg.AfterID, arg.Limit)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

const listMessagesByCampaign = `-- name: ListMessagesByCampaign :many
SELECT ` + messageColumns + `
FROM outbound_messages
WHERE campaign_id = $1
  AND ($2::text IS NULL OR status = $2)
ORDER BY id
LIMIT $3 OFFSET $4`

type ListMessagesByCampaignParams struct {
	CampaignID int32          `json:"campaign_id"`
	Status     sql.NullString `json:"status"`
	Limit      int32          `json:"limit"`
	Offset     int32          `json:"offset"`
}

func (q *Queries) ListMessagesByCampaign(ctx context.Context, arg ListMessagesByCampaignParams) ([]OutboundMessage, error) {
	rows, err := q.db.QueryContext(ctx, listMessagesByCampaign, arg.CampaignID, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

const countMessagesByCampaignStatus = `-- name: CountMessagesByCampaignStatus :one
SELECT COUNT(*)
FROM outbound_messages
WHERE campaign_id = $1
  AND ($2::text IS NULL OR status = $2)`

func (q *Queries) CountMessagesByCampaignStatus(ctx context.Context, campaignID int32, status sql.NullString) (int64, error) {
	row := q.db.QueryRowContext(ctx, countMessagesByCampaignStatus, campaignID, status)
	var count int64
	err := row.Scan(&count)
	return count, err
}
