package campaigns

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrCampaignNotFound      = errors.New("campaign not found")
	ErrTemplateNotFound      = errors.New("template not found")
	ErrTemplateInactive      = errors.New("template is not active")
	ErrPatientNotFound       = errors.New("patient not found")
	ErrRecipientNotFound     = errors.New("recipient patient or appointment not found")
	ErrNameRequired          = errors.New("name is required")
	ErrTemplateRequired      = errors.New("template_id is required")
	ErrChannelMismatch       = errors.New("channel does not match the template channel")
	ErrNoRecipients          = errors.New("patient_ids or recipients cannot be empty")
	ErrInvalidCampaignStatus = errors.New("campaign must be in draft or scheduled status")
	ErrPublishFailed         = errors.New("failed to publish messages to queue")
)

const pgForeignKeyViolation = "23503"

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
