package campaigns

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	appointmentsModels "github.com/sangkips/patient-reminder-service/internal/domains/appointments/models"
	"github.com/sangkips/patient-reminder-service/internal/domains/campaigns/models"
	messagesModels "github.com/sangkips/patient-reminder-service/internal/domains/messages/models"
	"github.com/sangkips/patient-reminder-service/internal/domains/templates"
	templatesModels "github.com/sangkips/patient-reminder-service/internal/domains/templates/models"
	"github.com/sangkips/patient-reminder-service/internal/handlers"
	"github.com/sangkips/patient-reminder-service/internal/templating"
)

const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusSending   = "sending"
	StatusCompleted = "completed"
)

type Service struct {
	repo          Repository
	messagesRepo  MessagesRepository
	templatesRepo TemplatesRepository
	apptsRepo     AppointmentsRepository
	loader        templates.ContextLoader
	engine        *templating.Engine
	queue         QueuePublisher
	now           func() time.Time
}

func NewService(repo Repository, messagesRepo MessagesRepository, templatesRepo TemplatesRepository, apptsRepo AppointmentsRepository, loader templates.ContextLoader, engine *templating.Engine, queue QueuePublisher) *Service {
	return &Service{
		repo:          repo,
		messagesRepo:  messagesRepo,
		templatesRepo: templatesRepo,
		apptsRepo:     apptsRepo,
		loader:        loader,
		engine:        engine,
		queue:         queue,
		now:           time.Now,
	}
}

// MessagesRepository interface for message operations
type MessagesRepository interface {
	CreateOutboundMessageBatch(ctx context.Context, params messagesModels.CreateOutboundMessageBatchParams) ([]messagesModels.OutboundMessage, error)
}

// TemplatesRepository looks up the template a campaign sends.
type TemplatesRepository interface {
	GetTemplate(ctx context.Context, id int32) (templatesModels.MessageTemplate, error)
}

// AppointmentsRepository checks that a recipient's appointment is theirs.
type AppointmentsRepository interface {
	GetPatientAppointment(ctx context.Context, id int32, patientID int32) (appointmentsModels.Appointment, error)
}

// QueuePublisher interface for publishing messages to queue
type QueuePublisher interface {
	PublishReminderSend(messageID int32) error
}

type CreateCampaignRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	TemplateID  int32      `json:"template_id"`
	Channel     string     `json:"channel"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// Recipient is one patient to message, optionally about one of their
// appointments.
type Recipient struct {
	PatientID     int32  `json:"patient_id"`
	AppointmentID *int32 `json:"appointment_id,omitempty"`
}

type SendCampaignRequest struct {
	PatientIDs []int32     `json:"patient_ids"`
	Recipients []Recipient `json:"recipients"`
}

type SendCampaignResponse struct {
	CampaignID     int32  `json:"campaign_id"`
	MessagesQueued int    `json:"messages_queued"`
	Status         string `json:"status"`
}

// CreateCampaign checks that the template exists and is active. The channel
// defaults to the template's channel and must match it when given.
func (s *Service) CreateCampaign(ctx context.Context, req CreateCampaignRequest) (models.Campaign, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Campaign{}, ErrNameRequired
	}
	if req.TemplateID == 0 {
		return models.Campaign{}, ErrTemplateRequired
	}

	tmpl, err := s.template(ctx, req.TemplateID)
	if err != nil {
		return models.Campaign{}, err
	}
	if !tmpl.IsActive {
		return models.Campaign{}, ErrTemplateInactive
	}

	channel := strings.TrimSpace(req.Channel)
	if channel == "" {
		channel = tmpl.Channel
	}
	if channel != tmpl.Channel {
		return models.Campaign{}, ErrChannelMismatch
	}

	return s.repo.CreateCampaign(ctx, models.CreateCampaignParams{
		Name:        name,
		Description: stringToNullString(req.Description),
		TemplateID:  tmpl.ID,
		Channel:     channel,
		ScheduledAt: timeToNullTime(req.ScheduledAt),
	})
}

func (s *Service) template(ctx context.Context, id int32) (templatesModels.MessageTemplate, error) {
	tmpl, err := s.templatesRepo.GetTemplate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return templatesModels.MessageTemplate{}, ErrTemplateNotFound
		}
		return templatesModels.MessageTemplate{}, fmt.Errorf("get template %d: %w", id, err)
	}
	return tmpl, nil
}

func (s *Service) campaign(ctx context.Context, id int32) (models.Campaign, error) {
	campaign, err := s.repo.GetCampaign(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Campaign{}, ErrCampaignNotFound
		}
		return models.Campaign{}, fmt.Errorf("get campaign %d: %w", id, err)
	}
	return campaign, nil
}

// recipients merges explicit recipients and bare patient ids, dropping
// duplicates. Appointment id 0 stands for none.
func (req SendCampaignRequest) recipients() ([]int32, []int32) {
	type key struct{ patient, appointment int32 }
	seen := make(map[key]struct{})
	patientIDs := make([]int32, 0, len(req.Recipients)+len(req.PatientIDs))
	appointmentIDs := make([]int32, 0, cap(patientIDs))

	add := func(patientID, appointmentID int32) {
		k := key{patientID, appointmentID}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		patientIDs = append(patientIDs, patientID)
		appointmentIDs = append(appointmentIDs, appointmentID)
	}

	for _, r := range req.Recipients {
		var appointmentID int32
		if r.AppointmentID != nil {
			appointmentID = *r.AppointmentID
		}
		add(r.PatientID, appointmentID)
	}
	for _, id := range req.PatientIDs {
		add(id, 0)
	}
	return patientIDs, appointmentIDs
}

// SendCampaign creates one pending message per recipient. Messages are queued
// at once unless the campaign is scheduled for later, in which case the
// scheduler publishes them when it is due.
func (s *Service) SendCampaign(ctx context.Context, campaignID int32, req SendCampaignRequest) (*SendCampaignResponse, error) {
	patientIDs, appointmentIDs := req.recipients()
	if len(patientIDs) == 0 {
		return nil, ErrNoRecipients
	}

	campaign, err := s.campaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != StatusDraft && campaign.Status != StatusScheduled {
		return nil, ErrInvalidCampaignStatus
	}

	if err := s.checkAppointments(ctx, patientIDs, appointmentIDs); err != nil {
		return nil, err
	}

	messages, err := s.messagesRepo.CreateOutboundMessageBatch(ctx, messagesModels.CreateOutboundMessageBatchParams{
		CampaignID:     campaignID,
		PatientIds:     patientIDs,
		AppointmentIds: appointmentIDs,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("create outbound messages: %w", err)
	}

	if campaign.ScheduledAt.Valid && campaign.ScheduledAt.Time.After(s.now()) {
		log.Info().
			Int32("campaign_id", campaignID).
			Int("messages", len(messages)).
			Time("scheduled_at", campaign.ScheduledAt.Time).
			Msg("Campaign messages created, waiting for schedule")
		return &SendCampaignResponse{
			CampaignID:     campaignID,
			MessagesQueued: len(messages),
			Status:         campaign.Status,
		}, nil
	}

	for _, msg := range messages {
		if err := s.queue.PublishReminderSend(msg.ID); err != nil {
			log.Error().Err(err).Int32("campaign_id", campaignID).Int32("message_id", msg.ID).Msg("Failed to publish message")
			return nil, ErrPublishFailed
		}
	}

	updated, err := s.repo.UpdateCampaignToSending(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("mark campaign sending: %w", err)
	}

	return &SendCampaignResponse{
		CampaignID:     updated.ID,
		MessagesQueued: len(messages),
		Status:         updated.Status,
	}, nil
}

// checkAppointments rejects a recipient whose appointment belongs to another
// patient. Appointment id 0 stands for none.
func (s *Service) checkAppointments(ctx context.Context, patientIDs, appointmentIDs []int32) error {
	for i, appointmentID := range appointmentIDs {
		if appointmentID == 0 {
			continue
		}
		if _, err := s.apptsRepo.GetPatientAppointment(ctx, appointmentID, patientIDs[i]); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: appointment %d for patient %d", ErrRecipientNotFound, appointmentID, patientIDs[i])
			}
			return fmt.Errorf("check appointment %d: %w", appointmentID, err)
		}
	}
	return nil
}

type ListCampaignsParams struct {
	Page     int32  `json:"page"`
	PageSize int32  `json:"page_size"`
	Channel  string `json:"channel"`
	Status   string `json:"status"`
}

type CampaignStats struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
	Sending int64 `json:"sending"`
	Sent    int64 `json:"sent"`
	Failed  int64 `json:"failed"`
}

// CampaignWithStats includes campaign data and message statistics
type CampaignWithStats struct {
	ID          int32         `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	TemplateID  int32         `json:"template_id"`
	Channel     string        `json:"channel"`
	Status      string        `json:"status"`
	ScheduledAt *time.Time    `json:"scheduled_at"`
	CreatedAt   time.Time     `json:"created_at"`
	Stats       CampaignStats `json:"stats"`
}

type ListCampaignsResponse struct {
	Data       []CampaignWithStats `json:"data"`
	Pagination handlers.Pagination `json:"pagination"`
}

func withStats(campaign models.Campaign, stats CampaignStats) CampaignWithStats {
	c := CampaignWithStats{
		ID:         campaign.ID,
		Name:       campaign.Name,
		TemplateID: campaign.TemplateID,
		Channel:    campaign.Channel,
		Status:     campaign.Status,
		CreatedAt:  campaign.CreatedAt,
		Stats:      stats,
	}
	if campaign.Description.Valid {
		c.Description = &campaign.Description.String
	}
	if campaign.ScheduledAt.Valid {
		c.ScheduledAt = &campaign.ScheduledAt.Time
	}
	return c
}

func stringToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (s *Service) ListCampaigns(ctx context.Context, params ListCampaignsParams) (*ListCampaignsResponse, error) {
	page, pageSize, offset := handlers.NormalizePage(params.Page, params.PageSize)

	campaigns, err := s.repo.ListCampaigns(ctx, models.ListCampaignsParams{
		Channel: stringToNullString(params.Channel),
		Status:  stringToNullString(params.Status),
		Limit:   pageSize,
		Offset:  offset,
	})
	if err != nil {
		return nil, err
	}

	totalCount, err := s.repo.CountCampaigns(ctx, models.CountCampaignsParams{
		Channel: stringToNullString(params.Channel),
		Status:  stringToNullString(params.Status),
	})
	if err != nil {
		return nil, err
	}

	campaignIDs := make([]int32, len(campaigns))
	for i, campaign := range campaigns {
		campaignIDs[i] = campaign.ID
	}

	// One query for every page entry; a failure degrades to zero stats.
	statsList, err := s.repo.GetCampaignStatsBatch(ctx, campaignIDs)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load campaign stats")
		statsList = []models.GetCampaignStatsBatchRow{}
	}

	statsMap := make(map[int32]models.GetCampaignStatsBatchRow, len(statsList))
	for _, stat := range statsList {
		statsMap[stat.CampaignID] = stat
	}

	data := make([]CampaignWithStats, 0, len(campaigns))
	for _, campaign := range campaigns {
		stats := statsMap[campaign.ID]
		data = append(data, withStats(campaign, CampaignStats{
			Total:   stats.Total,
			Pending: stats.Pending,
			Sending: stats.Sending,
			Sent:    stats.Sent,
			Failed:  stats.Failed,
		}))
	}

	return &ListCampaignsResponse{
		Data:       data,
		Pagination: handlers.NewPagination(page, pageSize, totalCount),
	}, nil
}

func (s *Service) GetCampaign(ctx context.Context, id int32) (*CampaignWithStats, error) {
	campaign, err := s.campaign(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.GetCampaignStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get campaign stats: %w", err)
	}

	resp := withStats(campaign, CampaignStats{
		Total:   stats.Total,
		Pending: stats.Pending,
		Sending: stats.Sending,
		Sent:    stats.Sent,
		Failed:  stats.Failed,
	})
	return &resp, nil
}

type PersonalizedPreviewRequest struct {
	PatientID        int32   `json:"patient_id"`
	AppointmentID    *int32  `json:"appointment_id,omitempty"`
	OverrideTemplate *string `json:"override_template,omitempty"`
}

type PersonalizedPreviewResponse struct {
	PatientID    int32                    `json:"patient_id"`
	UsedTemplate string                   `json:"used_template"`
	Subject      *templating.RenderResult `json:"subject,omitempty"`
	Result       templating.RenderResult  `json:"result"`
}

// PersonalizedPreview renders the campaign's template, or the override body,
// for one patient exactly as the worker would.
func (s *Service) PersonalizedPreview(ctx context.Context, campaignID int32, req PersonalizedPreviewRequest) (*PersonalizedPreviewResponse, error) {
	campaign, err := s.campaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	tmpl, err := s.template(ctx, campaign.TemplateID)
	if err != nil {
		return nil, err
	}

	tctx, err := s.loader.LoadContext(ctx, req.PatientID, req.AppointmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("load render context: %w", err)
	}

	body := tmpl.Body
	if req.OverrideTemplate != nil && *req.OverrideTemplate != "" {
		body = *req.OverrideTemplate
	}

	resp := &PersonalizedPreviewResponse{
		PatientID:    req.PatientID,
		UsedTemplate: body,
		Result:       s.engine.Render(body, tctx),
	}
	if tmpl.Subject.Valid {
		subject := s.engine.Render(tmpl.Subject.String, tctx)
		resp.Subject = &subject
	}
	return resp, nil
}
