package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/patient-reminder-service/internal/domains/campaigns"
	"github.com/sangkips/patient-reminder-service/internal/domains/messages"
	messagesModels "github.com/sangkips/patient-reminder-service/internal/domains/messages/models"
)

const pendingBatchSize = 500

// Scheduler handles scheduled campaign dispatch
type Scheduler struct {
	campaignRepo campaigns.Repository
	messagesRepo messages.Repository
	queue        campaigns.QueuePublisher
	interval     time.Duration
	stopChan     chan struct{}
}

// NewScheduler creates a new scheduler
func NewScheduler(
	campaignRepo campaigns.Repository,
	messagesRepo messages.Repository,
	queue campaigns.QueuePublisher,
	interval time.Duration,
) *Scheduler {
	return &Scheduler{
		campaignRepo: campaignRepo,
		messagesRepo: messagesRepo,
		queue:        queue,
		interval:     interval,
		stopChan:     make(chan struct{}),
	}
}

// Start runs one tick per interval until Stop is called.
func (s *Scheduler) Start() {
	log.Info().Dur("interval", s.interval).Msg("starting scheduler")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(context.Background())
		case <-s.stopChan:
			log.Info().Msg("stopping scheduler")
			return
		}
	}
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) tick(ctx context.Context) {
	s.processReadyCampaigns(ctx)
	s.completeFinishedCampaigns(ctx)
}

func (s *Scheduler) processReadyCampaigns(ctx context.Context) {
	// Claiming moves the campaigns to sending in the same statement.
	campaigns, err := s.campaignRepo.GetCampaignsReadyToSend(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch ready campaigns")
		return
	}

	if len(campaigns) == 0 {
		return
	}

	log.Info().Int("count", len(campaigns)).Msg("found campaigns ready to send")

	for _, campaign := range campaigns {
		s.processCampaign(ctx, campaign.ID)
	}
}

// processCampaign publishes every pending message of the campaign, one page
// at a time.
func (s *Scheduler) processCampaign(ctx context.Context, campaignID int32) {
	log.Info().Int32("campaign_id", campaignID).Msg("processing scheduled campaign")

	queuedCount := 0
	afterID := int32(0)
	for {
		batch, err := s.messagesRepo.GetPendingMessagesForCampaign(ctx, messagesModels.GetPendingMessagesForCampaignParams{
			CampaignID: campaignID,
			AfterID:    afterID,
			Limit:      pendingBatchSize,
		})
		if err != nil {
			log.Error().Err(err).Int32("campaign_id", campaignID).Msg("failed to fetch pending messages")
			return
		}

		for _, msg := range batch {
			afterID = msg.ID
			if err := s.queue.PublishReminderSend(msg.ID); err != nil {
				log.Error().Err(err).Int32("message_id", msg.ID).Msg("failed to publish message")
				continue
			}
			queuedCount++
		}

		if len(batch) < pendingBatchSize {
			break
		}
	}

	log.Info().Int32("campaign_id", campaignID).Int("queued", queuedCount).Msg("campaign processing complete")
}

func (s *Scheduler) completeFinishedCampaigns(ctx context.Context) {
	ids, err := s.campaignRepo.CompleteFinishedCampaigns(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to complete finished campaigns")
		return
	}
	for _, id := range ids {
		log.Info().Int32("campaign_id", id).Msg("campaign completed")
	}
}
