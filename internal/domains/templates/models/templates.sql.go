package models

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

// Array columns are selected as text so pq.Array can scan them through any
// database/sql driver.
const templateColumns = `id, system_key, name, category, channel, subject, body,
    variables::text, tags::text, is_active, is_system, usage_count, last_used_at,
    created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(row rowScanner) (MessageTemplate, error) {
	var i MessageTemplate
	err := row.Scan(
		&i.ID,
		&i.SystemKey,
		&i.Name,
		&i.Category,
		&i.Channel,
		&i.Subject,
		&i.Body,
		pq.Array(&i.Variables),
		pq.Array(&i.Tags),
		&i.IsActive,
		&i.IsSystem,
		&i.UsageCount,
		&i.LastUsedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createTemplate = `-- name: CreateTemplate :one
INSERT INTO message_templates (name, category, channel, subject, body, variables, tags, is_active)
VALUES ($1, $2, $3, $4, $5, $6::text[], $7::text[], $8)
RETURNING ` + templateColumns

type CreateTemplateParams struct {
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	Channel   string         `json:"channel"`
	Subject   sql.NullString `json:"subject"`
	Body      string         `json:"body"`
	Variables []string       `json:"variables"`
	Tags      []string       `json:"tags"`
	IsActive  bool           `json:"is_active"`
}

func (q *Queries) CreateTemplate(ctx context.Context, arg CreateTemplateParams) (MessageTemplate, error) {
	row := q.db.QueryRowContext(ctx, createTemplate,
		arg.Name,
		arg.Category,
		arg.Channel,
		arg.Subject,
		arg.Body,
		pq.Array(arg.Variables),
		pq.Array(arg.Tags),
		arg.IsActive,
	)
	return scanTemplate(row)
}

const getTemplate = `-- name: GetTemplate :one
SELECT ` + templateColumns + `
FROM message_templates
WHERE id = $1`

func (q *Queries) GetTemplate(ctx context.Context, id int32) (MessageTemplate, error) {
	row := q.db.QueryRowContext(ctx, getTemplate, id)
	return scanTemplate(row)
}

const updateTemplate = `-- name: UpdateTemplate :one
UPDATE message_templates
SET name = $2,
    category = $3,
    channel = $4,
    subject = $5,
    body = $6,
    variables = $7::text[],
    tags = $8::text[],
    is_active = $9,
    updated_at = NOW()
WHERE id = $1 AND NOT is_system
RETURNING ` + templateColumns

type UpdateTemplateParams struct {
	ID        int32          `json:"id"`
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	Channel   string         `json:"channel"`
	Subject   sql.NullString `json:"subject"`
	Body      string         `json:"body"`
	Variables []string       `json:"variables"`
	Tags      []string       `json:"tags"`
	IsActive  bool           `json:"is_active"`
}

func (q *Queries) UpdateTemplate(ctx context.Context, arg UpdateTemplateParams) (MessageTemplate, error) {
	row := q.db.QueryRowContext(ctx, updateTemplate,
		arg.ID,
		arg.Name,
		arg.Category,
		arg.Channel,
		arg.Subject,
		arg.Body,
		pq.Array(arg.Variables),
		pq.Array(arg.Tags),
		arg.IsActive,
	)
	return scanTemplate(row)
}

const deleteTemplate = `-- name: DeleteTemplate :execrows
DELETE FROM message_templates
WHERE id = $1 AND NOT is_system`

func (q *Queries) DeleteTemplate(ctx context.Context, id int32) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTemplate, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listTemplates = `-- name: ListTemplates :many
SELECT ` + templateColumns + `
FROM message_templates
WHERE ($1::text IS NULL OR category = $1)
  AND ($2::text IS NULL OR channel = $2)
  AND ($3::boolean IS NULL OR is_active = $3)
  AND ($4::text IS NULL OR name ILIKE '%' || $4 || '%' OR body ILIKE '%' || $4 || '%')
ORDER BY is_system DESC, usage_count DESC, id DESC
LIMIT $5 OFFSET $6`

type ListTemplatesParams struct {
	Category sql.NullString `json:"category"`
	Channel  sql.NullString `json:"channel"`
	Active   sql.NullBool   `json:"active"`
	Search   sql.NullString `json:"search"`
	Limit    int32          `json:"limit"`
	Offset   int32          `json:"offset"`
}

func (q *Queries) ListTemplates(ctx context.Context, arg ListTemplatesParams) ([]MessageTemplate, error) {
	rows, err := q.db.QueryContext(ctx, listTemplates,
		arg.Category,
		arg.Channel,
		arg.Active,
		arg.Search,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MessageTemplate
	for rows.Next() {
		i, err := scanTemplate(rows)
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

const countTemplates = `-- name: CountTemplates :one
SELECT COUNT(*)
FROM message_templates
WHERE ($1::text IS NULL OR category = $1)
  AND ($2::text IS NULL OR channel = $2)
  AND ($3::boolean IS NULL OR is_active = $3)
  AND ($4::text IS NULL OR name ILIKE '%' || $4 || '%' OR body ILIKE '%' || $4 || '%')`

type CountTemplatesParams struct {
	Category sql.NullString `json:"category"`
	Channel  sql.NullString `json:"channel"`
	Active   sql.NullBool   `json:"active"`
	Search   sql.NullString `json:"search"`
}

func (q *Queries) CountTemplates(ctx context.Context, arg CountTemplatesParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTemplates,
		arg.Category,
		arg.Channel,
		arg.Active,
		arg.Search,
	)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countTemplatesByCategory = `-- name: CountTemplatesByCategory :many
SELECT category, COUNT(*) AS count
FROM message_templates
WHERE is_active
GROUP BY category`

type CountTemplatesByCategoryRow struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

func (q *Queries) CountTemplatesByCategory(ctx context.Context) ([]CountTemplatesByCategoryRow, error) {
	rows, err := q.db.QueryContext(ctx, countTemplatesByCategory)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountTemplatesByCategoryRow
	for rows.Next() {
		var i CountTemplatesByCategoryRow
		if err := rows.Scan(&i.Category, &i.Count); err != nil {
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

const incrementTemplateUsage = `-- name: IncrementTemplateUsage :exec
UPDATE message_templates
SET usage_count = usage_count + 1,
    last_used_at = NOW()
WHERE id = $1`

func (q *Queries) IncrementTemplateUsage(ctx context.Context, id int32) error {
	_, err := q.db.ExecContext(ctx, incrementTemplateUsage, id)
	return err
}

const upsertSystemTemplate = `-- name: UpsertSystemTemplate :one
INSERT INTO message_templates (system_key, name, category, channel, subject, body, variables, tags, is_active, is_system)
VALUES ($1, $2, $3, $4, $5, $6, $7::text[], $8::text[], TRUE, TRUE)
ON CONFLICT (system_key) DO UPDATE
SET name = EXCLUDED.name,
    category = EXCLUDED.category,
    channel = EXCLUDED.channel,
    subject = EXCLUDED.subject,
    body = EXCLUDED.body,
    variables = EXCLUDED.variables,
    tags = EXCLUDED.tags,
    updated_at = NOW()
RETURNING ` + templateColumns

type UpsertSystemTemplateParams struct {
	SystemKey string         `json:"system_key"`
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	Channel   string         `json:"channel"`
	Subject   sql.NullString `json:"subject"`
	Body      string         `json:"body"`
	Variables []string       `json:"variables"`
	Tags      []string       `json:"tags"`
}

func (q *Queries) UpsertSystemTemplate(ctx context.Context, arg UpsertSystemTemplateParams) (MessageTemplate, error) {
	row := q.db.QueryRowContext(ctx, upsertSystemTemplate,
		arg.SystemKey,
		arg.Name,
		arg.Category,
		arg.Channel,
		arg.Subject,
		arg.Body,
		pq.Array(arg.Variables),
		pq.Array(arg.Tags),
	)
	return scanTemplate(row)
}
