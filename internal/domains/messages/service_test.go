package messages

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/sangkips/patient-reminder-service/internal/domains/messages/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository serves a fixed message list; unused methods return zero values.
type mockRepository struct {
	Repository
	messages   []models.OutboundMessage
	listParams models.ListMessagesByCampaignParams
}

func (m *mockRepository) GetOutboundMessage(ctx context.Context, id int32) (models.OutboundMessage, error) {
	for _, msg := range m.messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return models.OutboundMessage{}, sql.ErrNoRows
}

func (m *mockRepository) ListMessagesByCampaign(ctx context.Context, params models.ListMessagesByCampaignParams) ([]models.OutboundMessage, error) {
	m.listParams = params
	var out []models.OutboundMessage
	for _, msg := range m.messages {
		if msg.CampaignID == params.CampaignID && (!params.Status.Valid || msg.Status == params.Status.String) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockRepository) CountMessagesByCampaignStatus(ctx context.Context, campaignID int32, status sql.NullString) (int64, error) {
	rows, _ := m.ListMessagesByCampaign(ctx, models.ListMessagesByCampaignParams{CampaignID: campaignID, Status: status})
	return int64(len(rows)), nil
}

func fixtureMessages() []models.OutboundMessage {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	return []models.OutboundMessage{
		{
			ID:                1,
			CampaignID:        9,
			PatientID:         3,
			AppointmentID:     sql.NullInt32{Int32: 12, Valid: true},
			Status:            StatusSent,
			RenderedContent:   sql.NullString{String: "Hi Sarah", Valid: true},
			CharacterCount:    sql.NullInt32{Int32: 8, Valid: true},
			SegmentCount:      sql.NullInt32{Int32: 1, Valid: true},
			ProviderMessageID: sql.NullString{String: "prov-1", Valid: true},
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		{
			ID:         2,
			CampaignID: 9,
			PatientID:  4,
			Status:     StatusFailed,
			LastError:  sql.NullString{String: "carrier rejected", Valid: true},
			RetryCount: 3,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		{ID: 3, CampaignID: 10, PatientID: 4, Status: StatusPending, CreatedAt: now, UpdatedAt: now},
	}
}

func TestGetMessage(t *testing.T) {
	svc := NewService(&mockRepository{messages: fixtureMessages()})

	msg, err := svc.GetMessage(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, msg.AppointmentID)
	assert.Equal(t, int32(12), *msg.AppointmentID)
	require.NotNil(t, msg.RenderedContent)
	assert.Equal(t, "Hi Sarah", *msg.RenderedContent)
	assert.Nil(t, msg.LastError)
	assert.Equal(t, "2024-01-15T10:00:00Z", msg.CreatedAt)

	_, err = svc.GetMessage(context.Background(), 99)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestListCampaignMessages(t *testing.T) {
	repo := &mockRepository{messages: fixtureMessages()}
	svc := NewService(repo)

	all, err := svc.ListCampaignMessages(context.Background(), 9, "", 1, 0)
	require.NoError(t, err)
	assert.Len(t, all.Data, 2)
	assert.Equal(t, int64(2), all.Pagination.TotalCount)
	assert.Equal(t, int32(20), repo.listParams.Limit)

	failed, err := svc.ListCampaignMessages(context.Background(), 9, StatusFailed, 1, 10)
	require.NoError(t, err)
	require.Len(t, failed.Data, 1)
	assert.Equal(t, int32(3), failed.Data[0].RetryCount)
	require.NotNil(t, failed.Data[0].LastError)
	assert.Equal(t, "carrier rejected", *failed.Data[0].LastError)

	empty, err := svc.ListCampaignMessages(context.Background(), 77, "", 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty.Data)
	assert.Empty(t, empty.Data)

	_, err = svc.ListCampaignMessages(context.Background(), 9, "bounced", 1, 10)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
