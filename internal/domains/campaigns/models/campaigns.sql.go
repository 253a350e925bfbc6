package models

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

const campaignColumns = `id, name, description, template_id, channel, status, scheduled_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(row rowScanner) (Campaign, error) {
	var i Campaign
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.TemplateID,
		&i.Channel,
		&i.Status,
		&i.ScheduledAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanCampaigns(rows *sql.Rows) ([]Campaign, error) {
	defer rows.Close()
	var items []Campaign
	for rows.Next() {
		i, err := scanCampaign(rows)
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

const createCampaign = `-- name: CreateCampaign :one
INSERT INTO campaigns (name, description, template_id, channel, status, scheduled_at)
VALUES ($1, $2, $3, $4, CASE WHEN $5::timestamptz IS NULL THEN 'draft' ELSE 'scheduled' END, $5)
RETURNING ` + campaignColumns

type CreateCampaignParams struct {
	Name        string         `json:"name"`
	Description sql.NullString `json:"description"`
	TemplateID  int32          `json:"template_id"`
	Channel     string         `json:"channel"`
	ScheduledAt sql.NullTime   `json:"scheduled_at"`
}

// CreateCampaign starts the campaign as scheduled when it has a send time and
// as a draft otherwise.
func (q *Queries) CreateCampaign(ctx context.Context, arg CreateCampaignParams) (Campaign, error) {
	row := q.db.QueryRowContext(ctx, createCampaign,
		arg.Name,
		arg.Description,
		arg.TemplateID,
		arg.Channel,
		arg.ScheduledAt,
	)
	return scanCampaign(row)
}

const getCampaign = `-- name: GetCampaign :one
SELECT ` + campaignColumns + `
FROM campaigns
WHERE id = $1`

func (q *Queries) GetCampaign(ctx context.Context, id int32) (Campaign, error) {
	row := q.db.QueryRowContext(ctx, getCampaign, id)
	return scanCampaign(row)
}

const updateCampaignToSending = `-- name: UpdateCampaignToSending :one
UPDATE campaigns
SET status = 'sending', updated_at = NOW()
WHERE id = $1
RETURNING ` + campaignColumns

func (q *Queries) UpdateCampaignToSending(ctx context.Context, id int32) (Campaign, error) {
	row := q.db.QueryRowContext(ctx, updateCampaignToSending, id)
	return scanCampaign(row)
}

const updateCampaignStatus = `-- name: UpdateCampaignStatus :one
UPDATE campaigns
SET status = $2, updated_at = NOW()
WHERE id = $1
RETURNING ` + campaignColumns

type UpdateCampaignStatusParams struct {
	ID     int32  `json:"id"`
	Status string `json:"status"`
}

func (q *Queries) UpdateCampaignStatus(ctx context.Context, arg UpdateCampaignStatusParams) (Campaign, error) {
	row := q.db.QueryRowContext(ctx, updateCampaignStatus, arg.ID, arg.Status)
	return scanCampaign(row)
}

const listCampaigns = `-- name: ListCampaigns :many
SELECT ` + campaignColumns + `
FROM campaigns
WHERE ($1::text IS NULL OR channel = $1)
  AND ($2::text IS NULL OR status = $2)
ORDER BY created_at DESC, id DESC
LIMIT $3 OFFSET $4`

type ListCampaignsParams struct {
	Channel sql.NullString `json:"channel"`
	Status  sql.NullString `json:"status"`
	Limit   int32          `json:"limit"`
	Offset  int32          `json:"offset"`
}

func (q *Queries) ListCampaigns(ctx context.Context, arg ListCampaignsParams) ([]Campaign, error) {
	rows, err := q.db.QueryContext(ctx, listCampaigns,
		arg.Channel,
		arg.Status,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	return scanCampaigns(rows)
}

const countCampaigns = `-- name: CountCampaigns :one
SELECT COUNT(*)
FROM campaigns
WHERE ($1::text IS NULL OR channel = $1)
  AND ($2::text IS NULL OR status = $2)`

type CountCampaignsParams struct {
	Channel sql.NullString `json:"channel"`
	Status  sql.NullString `json:"status"`
}

func (q *Queries) CountCampaigns(ctx context.Context, arg CountCampaignsParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countCampaigns, arg.Channel, arg.Status)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getCampaignStats = `-- name: GetCampaignStats :one
SELECT COUNT(*) AS total,
       COUNT(*) FILTER (WHERE status = 'pending') AS pending,
       COUNT(*) FILTER (WHERE status = 'sending') AS sending,
       COUNT(*) FILTER (WHERE status = 'sent') AS sent,
       COUNT(*) FILTER (WHERE status = 'failed') AS failed
FROM outbound_messages
WHERE campaign_id = $1`

type GetCampaignStatsRow struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
	Sending int64 `json:"sending"`
	Sent    int64 `json:"sent"`
	Failed  int64 `json:"failed"`
}

func (q *Queries) GetCampaignStats(ctx context.Context, campaignID int32) (GetCampaignStatsRow, error) {
	row := q.db.QueryRowContext(ctx, getCampaignStats, campaignID)
	var i GetCampaignStatsRow
	err := row.Scan(
		&i.Total,
		&i.Pending,
		&i.Sending,
		&i.Sent,
		&i.Failed,
	)
	return i, err
}

const getCampaignStatsBatch = `-- name: GetCampaignStatsBatch :many
SELECT campaign_id,
       COUNT(*) AS total,
       COUNT(*) FILTER (WHERE status = 'pending') AS pending,
       COUNT(*) FILTER (WHERE status = 'sending') AS sending,
       COUNT(*) FILTER (WHERE status = 'sent') AS sent,
       COUNT(*) FILTER (WHERE status = 'failed') AS failed
FROM outbound_messages
WHERE campaign_id = ANY($1::int[])
GROUP BY campaign_id`

type GetCampaignStatsBatchRow struct {
	CampaignID int32 `json:"campaign_id"`
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Sending    int64 `json:"sending"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
}

func (q *Queries) GetCampaignStatsBatch(ctx context.Context, campaignIDs []int32) ([]GetCampaignStatsBatchRow, error) {
	if campaignIDs == nil {
		campaignIDs = []int32{}
	}
	rows, err := q.db.QueryContext(ctx, getCampaignStatsBatch, pq.Array(campaignIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetCampaignStatsBatchRow
	for rows.Next() {
		var i GetCampaignStatsBatchRow
		if err := rows.Scan(
			&i.CampaignID,
			&i.Total,
			&i.Pending,
			&i.Sending,
			&i.Sent,
			&i.Failed,
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

const getCampaignsReadyToSend = `-- name: GetCampaignsReadyToSend :many
UPDATE campaigns
SET status = 'sending', updated_at = NOW()
WHERE status = 'scheduled'
  AND scheduled_at <= NOW()
RETURNING id, name`

type GetCampaignsReadyToSendRow struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// GetCampaignsReadyToSend claims every scheduled campaign whose send time has
// passed by moving it to sending in the same statement, so two schedulers
// never claim the same campaign.
func (q *Queries) GetCampaignsReadyToSend(ctx context.Context) ([]GetCampaignsReadyToSendRow, error) {
	rows, err := q.db.QueryContext(ctx, getCampaignsReadyToSend)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetCampaignsReadyToSendRow
	for rows.Next() {
		var i GetCampaignsReadyToSendRow
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
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

const completeFinishedCampaigns = `-- name: CompleteFinishedCampaigns :many
UPDATE campaigns c
SET status = 'completed', updated_at = NOW()
WHERE c.status = 'sending'
  AND NOT EXISTS (
      SELECT 1 FROM outbound_messages m
      WHERE m.campaign_id = c.id
        AND m.status IN ('pending', 'sending')
  )
RETURNING c.id`

// CompleteFinishedCampaigns marks sending campaigns completed once every
// message has reached sent or failed. Messages awaiting a retry stay pending.
func (q *Queries) CompleteFinishedCampaigns(ctx context.Context) ([]int32, error) {
	rows, err := q.db.QueryContext(ctx, completeFinishedCampaigns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
