package campaigns

import (
	"context"
	"database/sql"
	"errors"
	"time"

	appointmentsModels "github.com/sangkips/patient-reminder-service/internal/domains/appointments/models"
	"github.com/sangkips/patient-reminder-service/internal/domains/campaigns/models"
	messagesModels "github.com/sangkips/patient-reminder-service/internal/domains/messages/models"
	templatesModels "github.com/sangkips/patient-reminder-service/internal/domains/templates/models"
	"github.com/sangkips/patient-reminder-service/internal/templating"
)

type mockCampaignRepo struct {
	campaign models.Campaign
	err      error

	created    []models.CreateCampaignParams
	sendingIDs []int32
	stats      []models.GetCampaignStatsBatchRow
	statsErr   error
}

func (m *mockCampaignRepo) GetCampaign(ctx context.Context, id int32) (models.Campaign, error) {
	return m.campaign, m.err
}

func (m *mockCampaignRepo) CreateCampaign(ctx context.Context, params models.CreateCampaignParams) (models.Campaign, error) {
	m.created = append(m.created, params)
	status := StatusDraft
	if params.ScheduledAt.Valid {
		status = StatusScheduled
	}
	return models.Campaign{
		ID:          int32(len(m.created)),
		Name:        params.Name,
		Description: params.Description,
		TemplateID:  params.TemplateID,
		Channel:     params.Channel,
		Status:      status,
		ScheduledAt: params.ScheduledAt,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}, nil
}

func (m *mockCampaignRepo) UpdateCampaignToSending(ctx context.Context, id int32) (models.Campaign, error) {
	m.sendingIDs = append(m.sendingIDs, id)
	c := m.campaign
	c.Status = StatusSending
	return c, nil
}

func (m *mockCampaignRepo) UpdateCampaignStatus(ctx context.Context, params models.UpdateCampaignStatusParams) (models.Campaign, error) {
	c := m.campaign
	c.Status = params.Status
	return c, nil
}

func (m *mockCampaignRepo) ListCampaigns(ctx context.Context, params models.ListCampaignsParams) ([]models.Campaign, error) {
	return []models.Campaign{m.campaign}, nil
}

func (m *mockCampaignRepo) CountCampaigns(ctx context.Context, params models.CountCampaignsParams) (int64, error) {
	return 1, nil
}

func (m *mockCampaignRepo) GetCampaignStats(ctx context.Context, id int32) (models.GetCampaignStatsRow, error) {
	for _, s := range m.stats {
		if s.CampaignID == id {
			return models.GetCampaignStatsRow{Total: s.Total, Pending: s.Pending, Sending: s.Sending, Sent: s.Sent, Failed: s.Failed}, nil
		}
	}
	return models.GetCampaignStatsRow{}, nil
}

func (m *mockCampaignRepo) GetCampaignStatsBatch(ctx context.Context, campaignIDs []int32) ([]models.GetCampaignStatsBatchRow, error) {
	return m.stats, m.statsErr
}

func (m *mockCampaignRepo) GetCampaignsReadyToSend(ctx context.Context) ([]models.GetCampaignsReadyToSendRow, error) {
	return nil, nil
}

func (m *mockCampaignRepo) CompleteFinishedCampaigns(ctx context.Context) ([]int32, error) {
	return nil, nil
}

var _ Repository = (*mockCampaignRepo)(nil)

type mockTemplatesRepo struct {
	template templatesModels.MessageTemplate
	err      error
}

func (m *mockTemplatesRepo) GetTemplate(ctx context.Context, id int32) (templatesModels.MessageTemplate, error) {
	if m.err != nil {
		return templatesModels.MessageTemplate{}, m.err
	}
	if id != m.template.ID {
		return templatesModels.MessageTemplate{}, sql.ErrNoRows
	}
	return m.template, nil
}

var _ TemplatesRepository = (*mockTemplatesRepo)(nil)

type mockMessagesRepo struct {
	batches []messagesModels.CreateOutboundMessageBatchParams
	err     error
}

func (m *mockMessagesRepo) CreateOutboundMessageBatch(ctx context.Context, params messagesModels.CreateOutboundMessageBatchParams) ([]messagesModels.OutboundMessage, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.batches = append(m.batches, params)
	msgs := make([]messagesModels.OutboundMessage, len(params.PatientIds))
	for i, patientID := range params.PatientIds {
		msgs[i] = messagesModels.OutboundMessage{
			ID:         int32(100 + i),
			CampaignID: params.CampaignID,
			PatientID:  patientID,
			Status:     "pending",
		}
		if params.AppointmentIds[i] != 0 {
			msgs[i].AppointmentID = sql.NullInt32{Int32: params.AppointmentIds[i], Valid: true}
		}
	}
	return msgs, nil
}

var _ MessagesRepository = (*mockMessagesRepo)(nil)

type mockQueue struct {
	published []int32
	err       error
}

func (m *mockQueue) PublishReminderSend(messageID int32) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, messageID)
	return nil
}

var _ QueuePublisher = (*mockQueue)(nil)

// mockLoader serves render contexts keyed by patient id.
type mockLoader struct {
	contexts map[int32]*templating.Context
	err      error
}

func (m *mockLoader) LoadContext(ctx context.Context, patientID int32, appointmentID *int32) (*templating.Context, error) {
	if m.err != nil {
		return nil, m.err
	}
	tctx, ok := m.contexts[patientID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return tctx, nil
}

var errDatabase = errors.New("database connection failed")

func ptr[T any](v T) *T {
	return &v
}

func patientContext(first string, balance *float64) *templating.Context {
	return &templating.Context{
		Patient: &templating.Patient{
			FirstName: ptr(first),
			Balance:   balance,
		},
		Clinic: &templating.Clinic{
			Name:  ptr("Luxe Spa"),
			Phone: ptr("(555) 987-6543"),
		},
	}
}

// mockAppointmentsRepo maps appointment id to the owning patient id.
type mockAppointmentsRepo struct {
	owners map[int32]int32
	err    error

	checked []int32
}

func (m *mockAppointmentsRepo) GetPatientAppointment(ctx context.Context, id int32, patientID int32) (appointmentsModels.Appointment, error) {
	m.checked = append(m.checked, id)
	if m.err != nil {
		return appointmentsModels.Appointment{}, m.err
	}
	if owner, ok := m.owners[id]; !ok || owner != patientID {
		return appointmentsModels.Appointment{}, sql.ErrNoRows
	}
	return appointmentsModels.Appointment{ID: id, PatientID: patientID}, nil
}
