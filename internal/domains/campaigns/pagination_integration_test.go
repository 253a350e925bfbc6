//go:build integration

package campaigns

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/sangkips/patient-reminder-service/internal/db/dbtest"
	"github.com/sangkips/patient-reminder-service/internal/domains/campaigns/models"
	"github.com/sangkips/patient-reminder-service/internal/domains/messages"
	messagesModels "github.com/sangkips/patient-reminder-service/internal/domains/messages/models"
)

func TestPagination(t *testing.T) {
	conn := dbtest.New(t)
	ctx := context.Background()

	// No duplicates across pages
	t.Run("no duplicates", func(t *testing.T) {
		tx := dbtest.Tx(t, conn)
		repo := NewRepository(tx)
		templateID := createTestTemplate(t, tx, "sms")

		campaignIDs := createTestCampaigns(t, ctx, repo, templateID, 25, "sms", StatusDraft)

		seenIDs := make(map[int32]bool)
		for page := int32(0); page < 3; page++ {
			campaigns, err := repo.ListCampaigns(ctx, models.ListCampaignsParams{Limit: 10, Offset: page * 10})
			if err != nil {
				t.Fatalf("Failed to fetch page %d: %v", page+1, err)
			}
			for _, campaign := range campaigns {
				if seenIDs[campaign.ID] {
					t.Errorf("Duplicate campaign ID %d found on page %d", campaign.ID, page+1)
				}
				seenIDs[campaign.ID] = true
			}
		}

		if len(seenIDs) != len(campaignIDs) {
			t.Errorf("Expected %d unique campaigns, got %d", len(campaignIDs), len(seenIDs))
		}
	})

	// Ordered by created_at DESC, id DESC
	t.Run("ordering", func(t *testing.T) {
		tx := dbtest.Tx(t, conn)
		repo := NewRepository(tx)
		templateID := createTestTemplate(t, tx, "sms")
		createTestCampaigns(t, ctx, repo, templateID, 20, "sms", StatusDraft)

		campaigns, err := repo.ListCampaigns(ctx, models.ListCampaignsParams{Limit: 100})
		if err != nil {
			t.Fatalf("Failed to fetch campaigns: %v", err)
		}

		for i := 0; i < len(campaigns)-1; i++ {
			current, next := campaigns[i], campaigns[i+1]
			if current.CreatedAt.Equal(next.CreatedAt) {
				if current.ID < next.ID {
					t.Errorf("ID ordering incorrect at index %d: %d should be >= %d", i, current.ID, next.ID)
				}
			} else if current.CreatedAt.Before(next.CreatedAt) {
				t.Errorf("CreatedAt ordering incorrect at index %d", i)
			}
		}
	})

	// Channel and status filters combine
	t.Run("filters", func(t *testing.T) {
		tx := dbtest.Tx(t, conn)
		repo := NewRepository(tx)
		smsTemplate := createTestTemplate(t, tx, "sms")
		emailTemplate := createTestTemplate(t, tx, "email")

		createTestCampaigns(t, ctx, repo, smsTemplate, 5, "sms", StatusDraft)
		createTestCampaigns(t, ctx, repo, smsTemplate, 3, "sms", StatusScheduled)
		createTestCampaigns(t, ctx, repo, emailTemplate, 4, "email", StatusDraft)
		createTestCampaigns(t, ctx, repo, emailTemplate, 2, "email", StatusSending)

		tests := []struct {
			channel string
			status  string
			want    int
		}{
			{"sms", "", 8},
			{"email", "", 6},
			{"", StatusDraft, 9},
			{"sms", StatusScheduled, 3},
			{"email", StatusSending, 2},
		}
		for _, tt := range tests {
			params := models.ListCampaignsParams{
				Channel: stringToNullString(tt.channel),
				Status:  stringToNullString(tt.status),
				Limit:   100,
			}
			campaigns, err := repo.ListCampaigns(ctx, params)
			if err != nil {
				t.Fatalf("Failed to list %s/%s: %v", tt.channel, tt.status, err)
			}
			if len(campaigns) != tt.want {
				t.Errorf("Expected %d campaigns for %q/%q, got %d", tt.want, tt.channel, tt.status, len(campaigns))
			}

			count, err := repo.CountCampaigns(ctx, models.CountCampaignsParams{Channel: params.Channel, Status: params.Status})
			if err != nil {
				t.Fatalf("Failed to count %s/%s: %v", tt.channel, tt.status, err)
			}
			if count != int64(tt.want) {
				t.Errorf("Expected count %d for %q/%q, got %d", tt.want, tt.channel, tt.status, count)
			}
		}
	})

	// Messages, stats, scheduling and completion
	t.Run("dispatch lifecycle", func(t *testing.T) {
		tx := dbtest.Tx(t, conn)
		repo := NewRepository(tx)
		msgRepo := messages.NewRepository(tx)
		templateID := createTestTemplate(t, tx, "sms")
		patientA := createTestPatient(t, tx, "Ana")
		patientB := createTestPatient(t, tx, "Ben")

		var appointmentID int32
		err := tx.QueryRow(`INSERT INTO appointments (patient_id, appointment_date, appointment_time, service)
			VALUES ($1, '2024-01-15', '14:30', 'HydraFacial') RETURNING id`, patientA).Scan(&appointmentID)
		if err != nil {
			t.Fatalf("Failed to create appointment: %v", err)
		}

		campaign, err := repo.CreateCampaign(ctx, models.CreateCampaignParams{
			Name:        "Due now",
			TemplateID:  templateID,
			Channel:     "sms",
			ScheduledAt: sql.NullTime{Time: time.Now().Add(-time.Minute), Valid: true},
		})
		if err != nil {
			t.Fatalf("Failed to create campaign: %v", err)
		}

		msgs, err := msgRepo.CreateOutboundMessageBatch(ctx, messagesModels.CreateOutboundMessageBatchParams{
			CampaignID:     campaign.ID,
			PatientIds:     []int32{patientA, patientB},
			AppointmentIds: []int32{appointmentID, 0},
		})
		if err != nil {
			t.Fatalf("Failed to create messages: %v", err)
		}
		if len(msgs) != 2 {
			t.Fatalf("Expected 2 messages, got %d", len(msgs))
		}
		if !msgs[0].AppointmentID.Valid || msgs[0].AppointmentID.Int32 != appointmentID {
			t.Errorf("Expected first message to carry appointment %d, got %+v", appointmentID, msgs[0].AppointmentID)
		}
		if msgs[1].AppointmentID.Valid {
			t.Errorf("Expected second message without appointment, got %+v", msgs[1].AppointmentID)
		}

		ready, err := repo.GetCampaignsReadyToSend(ctx)
		if err != nil {
			t.Fatalf("Failed to claim campaigns: %v", err)
		}
		if len(ready) != 1 || ready[0].ID != campaign.ID {
			t.Fatalf("Expected campaign %d to be claimed, got %+v", campaign.ID, ready)
		}

		for _, msg := range msgs {
			if _, err := msgRepo.UpdateOutboundMessageWithRetry(ctx, messagesModels.UpdateOutboundMessageWithRetryParams{
				ID:                msg.ID,
				Status:            messages.StatusSent,
				ProviderMessageID: sql.NullString{String: fmt.Sprintf("prov-%d", msg.ID), Valid: true},
				RenderedContent:   sql.NullString{String: "Hi", Valid: true},
				CharacterCount:    sql.NullInt32{Int32: 2, Valid: true},
				SegmentCount:      sql.NullInt32{Int32: 1, Valid: true},
			}); err != nil {
				t.Fatalf("Failed to mark message sent: %v", err)
			}
		}

		stats, err := repo.GetCampaignStatsBatch(ctx, []int32{campaign.ID})
		if err != nil {
			t.Fatalf("Failed to get stats: %v", err)
		}
		if len(stats) != 1 || stats[0].Sent != 2 || stats[0].Total != 2 {
			t.Errorf("Unexpected stats %+v", stats)
		}

		completed, err := repo.CompleteFinishedCampaigns(ctx)
		if err != nil {
			t.Fatalf("Failed to complete campaigns: %v", err)
		}
		if len(completed) != 1 || completed[0] != campaign.ID {
			t.Errorf("Expected campaign %d completed, got %v", campaign.ID, completed)
		}
	})
}

func createTestTemplate(t *testing.T, tx *sql.Tx, channel string) int32 {
	t.Helper()

	var id int32
	err := tx.QueryRow(`INSERT INTO message_templates (name, category, channel, body)
		VALUES ($1, 'appointment', $2, 'Hi {patient.firstName}') RETURNING id`,
		"Test template "+channel, channel).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test template: %v", err)
	}
	return id
}

func createTestPatient(t *testing.T, tx *sql.Tx, firstName string) int32 {
	t.Helper()

	var id int32
	err := tx.QueryRow(`INSERT INTO patients (first_name, phone) VALUES ($1, '+15550001111') RETURNING id`, firstName).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test patient: %v", err)
	}
	return id
}

func createTestCampaigns(t *testing.T, ctx context.Context, repo Repository, templateID int32, count int, channel, status string) []int32 {
	t.Helper()

	var ids []int32
	for i := 0; i < count; i++ {
		var scheduledAt sql.NullTime
		if status == StatusScheduled {
			scheduledAt = sql.NullTime{Time: time.Now().Add(24 * time.Hour), Valid: true}
		}

		campaign, err := repo.CreateCampaign(ctx, models.CreateCampaignParams{
			Name:        fmt.Sprintf("Test Campaign %s %s %d", channel, status, i),
			TemplateID:  templateID,
			Channel:     channel,
			ScheduledAt: scheduledAt,
		})
		if err != nil {
			t.Fatalf("Failed to create test campaign: %v", err)
		}

		if status != StatusDraft && status != StatusScheduled {
			campaign, err = repo.UpdateCampaignStatus(ctx, models.UpdateCampaignStatusParams{ID: campaign.ID, Status: status})
			if err != nil {
				t.Fatalf("Failed to update campaign status: %v", err)
			}
		}
		ids = append(ids, campaign.ID)
	}

	return ids
}
