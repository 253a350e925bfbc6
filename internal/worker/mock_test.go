package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sangkips/patient-reminder-service/internal/domains/messages"
	messagesModels "github.com/sangkips/patient-reminder-service/internal/domains/messages/models"
	"github.com/sangkips/patient-reminder-service/internal/queue"
	"github.com/sangkips/patient-reminder-service/internal/templating"
	"golang.org/x/time/rate"
)

// Mock Repository
type mockRepository struct {
	getMessageDetails      messagesModels.GetOutboundMessageWithDetailsRow
	getMessageDetailsError error
	updateMessageError     error

	updateCalls  []messagesModels.UpdateOutboundMessageWithRetryParams
	getCalls     []int32
	pendingCalls []messagesModels.GetPendingMessagesForCampaignParams

	// Function hooks for dynamic mocking
	getPendingMessagesFunc func(ctx context.Context, params messagesModels.GetPendingMessagesForCampaignParams) ([]messagesModels.OutboundMessage, error)
}

func (m *mockRepository) GetOutboundMessageWithDetails(ctx context.Context, id int32) (messagesModels.GetOutboundMessageWithDetailsRow, error) {
	m.getCalls = append(m.getCalls, id)
	return m.getMessageDetails, m.getMessageDetailsError
}

// UpdateOutboundMessageWithRetry echoes the update back the way the query
// would, applying the retry increment to the fixture's count.
func (m *mockRepository) UpdateOutboundMessageWithRetry(ctx context.Context, params messagesModels.UpdateOutboundMessageWithRetryParams) (messagesModels.OutboundMessage, error) {
	m.updateCalls = append(m.updateCalls, params)
	if m.updateMessageError != nil {
		return messagesModels.OutboundMessage{}, m.updateMessageError
	}
	retries := m.getMessageDetails.RetryCount
	if params.IncrementRetry {
		retries++
	}
	return messagesModels.OutboundMessage{
		ID:                params.ID,
		Status:            params.Status,
		ProviderMessageID: params.ProviderMessageID,
		LastError:         params.LastError,
		RetryCount:        retries,
	}, nil
}

func (m *mockRepository) CreateOutboundMessage(ctx context.Context, params messagesModels.CreateOutboundMessageParams) (messagesModels.OutboundMessage, error) {
	return messagesModels.OutboundMessage{}, errors.New("not implemented")
}

func (m *mockRepository) CreateOutboundMessageBatch(ctx context.Context, params messagesModels.CreateOutboundMessageBatchParams) ([]messagesModels.OutboundMessage, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRepository) CountOutboundMessagesByCampaign(ctx context.Context, campaignID int32) (int64, error) {
	return 0, errors.New("not implemented")
}

func (m *mockRepository) GetOutboundMessage(ctx context.Context, id int32) (messagesModels.OutboundMessage, error) {
	return messagesModels.OutboundMessage{}, errors.New("not implemented")
}

func (m *mockRepository) GetPendingMessagesForCampaign(ctx context.Context, params messagesModels.GetPendingMessagesForCampaignParams) ([]messagesModels.OutboundMessage, error) {
	m.pendingCalls = append(m.pendingCalls, params)
	if m.getPendingMessagesFunc != nil {
		return m.getPendingMessagesFunc(ctx, params)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) ListMessagesByCampaign(ctx context.Context, params messagesModels.ListMessagesByCampaignParams) ([]messagesModels.OutboundMessage, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRepository) CountMessagesByCampaignStatus(ctx context.Context, campaignID int32, status sql.NullString) (int64, error) {
	return 0, errors.New("not implemented")
}

var _ messages.Repository = (*mockRepository)(nil)

// Mock Sender
type mockSender struct {
	shouldFail   bool
	sendError    error
	sentMessages []Outbound
}

func (m *mockSender) Send(ctx context.Context, msg Outbound) (string, error) {
	m.sentMessages = append(m.sentMessages, msg)
	if m.shouldFail {
		return "", m.sendError
	}
	return "mock-provider-msg-123", nil
}

var _ Sender = (*mockSender)(nil)

// Mock context loader keyed by patient id
type mockLoader struct {
	contexts map[int32]*templating.Context
	err      error

	appointmentIDs []*int32
}

func (m *mockLoader) LoadContext(ctx context.Context, patientID int32, appointmentID *int32) (*templating.Context, error) {
	m.appointmentIDs = append(m.appointmentIDs, appointmentID)
	if m.err != nil {
		return nil, m.err
	}
	tctx, ok := m.contexts[patientID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return tctx, nil
}

// newTestWorker builds a worker without a broker or rate cap.
func newTestWorker(repo messages.Repository, loader *mockLoader, sender Sender, maxRetries int32) *Worker {
	return &Worker{
		repo:       repo,
		loader:     loader,
		engine:     templating.New(),
		sender:     sender,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		maxRetries: maxRetries,
		retryDelay: time.Millisecond,
	}
}

// Mock Delivery tracker - tracks what happened to a delivery
type deliveryTracker struct {
	acked    bool
	nacked   bool
	requeued bool
	rejected bool
}

// Helper function to create a delivery and tracker
func createTestDelivery(messageID int32) (amqp091.Delivery, *deliveryTracker) {
	msg := queue.ReminderSendMessage{
		OutboundMessageID: messageID,
	}
	body, _ := json.Marshal(msg)

	tracker := &deliveryTracker{}

	delivery := amqp091.Delivery{
		Body:         body,
		Acknowledger: &mockAcknowledger{tracker: tracker},
	}

	return delivery, tracker
}

// Mock Acknowledger
type mockAcknowledger struct {
	tracker *deliveryTracker
}

func (m *mockAcknowledger) Ack(tag uint64, multiple bool) error {
	m.tracker.acked = true
	return nil
}

func (m *mockAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	m.tracker.nacked = true
	m.tracker.requeued = requeue
	return nil
}

func (m *mockAcknowledger) Reject(tag uint64, requeue bool) error {
	m.tracker.rejected = true
	m.tracker.requeued = requeue
	return nil
}

var _ amqp091.Acknowledger = (*mockAcknowledger)(nil)

// Mock queue publisher
type mockPublisher struct {
	published []int32
	failIDs   map[int32]bool
}

func (m *mockPublisher) PublishReminderSend(messageID int32) error {
	if m.failIDs[messageID] {
		return errors.New("channel closed")
	}
	m.published = append(m.published, messageID)
	return nil
}

func ptr[T any](v T) *T {
	return &v
}

func smsDetails(id int32, body string) messagesModels.GetOutboundMessageWithDetailsRow {
	return messagesModels.GetOutboundMessageWithDetailsRow{
		ID:             id,
		CampaignID:     100,
		PatientID:      200,
		Status:         "pending",
		PatientPhone:   "+15551234567",
		Channel:        "sms",
		TemplateID:     7,
		TemplateBody:   body,
		TemplateActive: true,
	}
}

func sarahContext() map[int32]*templating.Context {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return map[int32]*templating.Context{
		200: {
			Patient: &templating.Patient{
				FirstName: ptr("Sarah"),
				LastName:  ptr("Johnson"),
				Balance:   ptr(150.5),
			},
			Appointment: &templating.Appointment{
				Date:    &date,
				Time:    ptr("14:30"),
				Service: ptr("HydraFacial"),
			},
			Clinic: &templating.Clinic{Name: ptr("Luxe Medical Spa")},
		},
	}
}
