package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sangkips/patient-reminder-service/internal/domains/messages/models"
	"github.com/sangkips/patient-reminder-service/internal/handlers"
)

const (
	StatusPending = "pending"
	StatusSending = "sending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrInvalidStatus   = errors.New("status must be one of pending, sending, sent, failed")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// MessageResponse is the API shape of an outbound message.
type MessageResponse struct {
	ID                int32   `json:"id"`
	CampaignID        int32   `json:"campaign_id"`
	PatientID         int32   `json:"patient_id"`
	AppointmentID     *int32  `json:"appointment_id,omitempty"`
	Status            string  `json:"status"`
	RenderedContent   *string `json:"rendered_content,omitempty"`
	CharacterCount    *int32  `json:"character_count,omitempty"`
	SegmentCount      *int32  `json:"segment_count,omitempty"`
	ProviderMessageID *string `json:"provider_message_id,omitempty"`
	LastError         *string `json:"last_error,omitempty"`
	RetryCount        int32   `json:"retry_count"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

type ListMessagesResponse struct {
	Data       []MessageResponse   `json:"data"`
	Pagination handlers.Pagination `json:"pagination"`
}

func toMessageResponse(m models.OutboundMessage) MessageResponse {
	resp := MessageResponse{
		ID:         m.ID,
		CampaignID: m.CampaignID,
		PatientID:  m.PatientID,
		Status:     m.Status,
		RetryCount: m.RetryCount,
		CreatedAt:  m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:  m.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if m.AppointmentID.Valid {
		resp.AppointmentID = &m.AppointmentID.Int32
	}
	if m.RenderedContent.Valid {
		resp.RenderedContent = &m.RenderedContent.String
	}
	if m.CharacterCount.Valid {
		resp.CharacterCount = &m.CharacterCount.Int32
	}
	if m.SegmentCount.Valid {
		resp.SegmentCount = &m.SegmentCount.Int32
	}
	if m.ProviderMessageID.Valid {
		resp.ProviderMessageID = &m.ProviderMessageID.String
	}
	if m.LastError.Valid {
		resp.LastError = &m.LastError.String
	}
	return resp
}

func validStatus(status string) bool {
	switch status {
	case StatusPending, StatusSending, StatusSent, StatusFailed:
		return true
	}
	return false
}

func (s *Service) GetMessage(ctx context.Context, id int32) (MessageResponse, error) {
	msg, err := s.repo.GetOutboundMessage(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return MessageResponse{}, ErrMessageNotFound
		}
		return MessageResponse{}, fmt.Errorf("get message %d: %w", id, err)
	}
	return toMessageResponse(msg), nil
}

// ListCampaignMessages pages through a campaign's messages in id order. An
// empty status lists every message.
func (s *Service) ListCampaignMessages(ctx context.Context, campaignID int32, status string, page, pageSize int32) (ListMessagesResponse, error) {
	var statusFilter sql.NullString
	if status != "" {
		if !validStatus(status) {
			return ListMessagesResponse{}, ErrInvalidStatus
		}
		statusFilter = sql.NullString{String: status, Valid: true}
	}

	page, pageSize, offset := handlers.NormalizePage(page, pageSize)

	total, err := s.repo.CountMessagesByCampaignStatus(ctx, campaignID, statusFilter)
	if err != nil {
		return ListMessagesResponse{}, fmt.Errorf("count messages: %w", err)
	}

	rows, err := s.repo.ListMessagesByCampaign(ctx, models.ListMessagesByCampaignParams{
		CampaignID: campaignID,
		Status:     statusFilter,
		Limit:      pageSize,
		Offset:     offset,
	})
	if err != nil {
		return ListMessagesResponse{}, fmt.Errorf("list messages: %w", err)
	}

	data := make([]MessageResponse, 0, len(rows))
	for _, row := range rows {
		data = append(data, toMessageResponse(row))
	}

	return ListMessagesResponse{
		Data:       data,
		Pagination: handlers.NewPagination(page, pageSize, total),
	}, nil
}
