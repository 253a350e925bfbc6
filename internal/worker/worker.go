package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/patient-reminder-service/internal/domains/messages"
	messagesModels "github.com/sangkips/patient-reminder-service/internal/domains/messages/models"
	"github.com/sangkips/patient-reminder-service/internal/domains/templates"
	"github.com/sangkips/patient-reminder-service/internal/queue"
	"github.com/sangkips/patient-reminder-service/internal/templating"
	"golang.org/x/time/rate"
)

const (
	defaultRetryDelay = time.Second
	defaultPrefetch   = 10
)

// Options tunes delivery.
type Options struct {
	// MaxRetries is how many times a failed send is retried before the
	// message is marked failed.
	MaxRetries int32
	// SendRatePerSecond caps provider calls. Zero or less disables the cap.
	SendRatePerSecond float64
	// RetryDelay is the pause before a failed send is requeued. Defaults to
	// one second.
	RetryDelay time.Duration
}

type Worker struct {
	rabbitMQ *queue.RabbitMQ
	repo     messages.Repository
	loader   templates.ContextLoader
	engine   *templating.Engine
	sender   Sender
	limiter  *rate.Limiter

	maxRetries int32
	retryDelay time.Duration
	prefetch   int
}

func NewWorker(rabbitMQ *queue.RabbitMQ, db messagesModels.DBTX, loader templates.ContextLoader, engine *templating.Engine, sender Sender, opts Options) *Worker {
	w := &Worker{
		rabbitMQ:   rabbitMQ,
		repo:       messages.NewRepository(db),
		loader:     loader,
		engine:     engine,
		sender:     sender,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		prefetch:   defaultPrefetch,
	}
	if opts.SendRatePerSecond > 0 {
		burst := int(opts.SendRatePerSecond)
		if burst < 1 {
			burst = 1
		}
		w.limiter = rate.NewLimiter(rate.Limit(opts.SendRatePerSecond), burst)
		// Prefetch one second of sends.
		w.prefetch = burst
	}
	if w.maxRetries < 0 {
		w.maxRetries = 0
	}
	if w.retryDelay <= 0 {
		w.retryDelay = defaultRetryDelay
	}
	return w
}

func (w *Worker) Start(ctx context.Context) error {
	msgs, err := w.rabbitMQ.Consume(w.prefetch)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	log.Info().Int32("max_retries", w.maxRetries).Msg("worker started, waiting for messages")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("worker shutting down")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("rabbitMQ channel closed")
			}
			w.processMessage(ctx, d)
		}
	}
}

func (w *Worker) processMessage(ctx context.Context, d amqp091.Delivery) {
	msg, err := queue.DecodeReminderSend(d.Body)
	if err != nil {
		log.Error().Err(err).Msg("failed to decode message")
		d.Reject(false)
		return
	}

	logger := log.With().Int32("outbound_message_id", msg.OutboundMessageID).Logger()
	logger.Info().Msg("processing message")

	details, err := w.repo.GetOutboundMessageWithDetails(ctx, msg.OutboundMessageID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch message details")
		// A missing record will never appear; anything else may be transient.
		if errors.Is(err, sql.ErrNoRows) {
			d.Reject(false)
		} else {
			d.Nack(false, true)
		}
		return
	}

	// Redelivery of a message that already reached a final state.
	if details.Status == messages.StatusSent || details.Status == messages.StatusFailed {
		logger.Warn().Str("status", details.Status).Msg("message already processed, skipping")
		d.Ack(false)
		return
	}

	if !details.TemplateActive {
		w.markFailed(ctx, d, details, "template is not active")
		return
	}

	var appointmentID *int32
	if details.AppointmentID.Valid {
		appointmentID = &details.AppointmentID.Int32
	}
	tctx, err := w.loader.LoadContext(ctx, details.PatientID, appointmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			w.markFailed(ctx, d, details, "patient or appointment not found")
			return
		}
		logger.Error().Err(err).Msg("failed to load render context")
		d.Nack(false, true)
		return
	}

	body := w.engine.Render(details.TemplateBody, tctx)
	if !body.Success {
		w.markFailed(ctx, d, details, "render failed: "+strings.Join(body.Errors, "; "))
		return
	}
	for _, warning := range body.Warnings {
		logger.Warn().Str("warning", warning).Msg("render warning")
	}

	out := Outbound{Channel: details.Channel, Body: body.Message, To: details.PatientPhone}
	if details.Channel == templates.ChannelEmail {
		if !details.PatientEmail.Valid || details.PatientEmail.String == "" {
			w.markFailed(ctx, d, details, "patient has no email address")
			return
		}
		out.To = details.PatientEmail.String
		if details.TemplateSubject.Valid {
			subject := w.engine.Render(details.TemplateSubject.String, tctx)
			if !subject.Success {
				w.markFailed(ctx, d, details, "subject render failed: "+strings.Join(subject.Errors, "; "))
				return
			}
			out.Subject = subject.Message
		}
	}

	if _, err := w.repo.UpdateOutboundMessageWithRetry(ctx, messagesModels.UpdateOutboundMessageWithRetryParams{
		ID:              details.ID,
		Status:          messages.StatusSending,
		RenderedContent: sql.NullString{String: body.Message, Valid: true},
		CharacterCount:  sql.NullInt32{Int32: int32(body.CharacterCount), Valid: true},
		SegmentCount:    sql.NullInt32{Int32: int32(body.SegmentCount), Valid: true},
	}); err != nil {
		logger.Error().Err(err).Msg("failed to update status to sending")
		d.Nack(false, true)
		return
	}

	if err := w.limiter.Wait(ctx); err != nil {
		logger.Warn().Err(err).Msg("rate limiter wait aborted")
		w.requeue(ctx, d, details, err, false)
		return
	}

	providerMsgID, err := w.sender.Send(ctx, out)
	if err != nil {
		w.handleFailure(ctx, d, details, err)
		return
	}

	w.handleSuccess(ctx, d, details, providerMsgID)
}

func (w *Worker) handleSuccess(ctx context.Context, d amqp091.Delivery, details messagesModels.GetOutboundMessageWithDetailsRow, providerMsgID string) {
	_, err := w.repo.UpdateOutboundMessageWithRetry(ctx, messagesModels.UpdateOutboundMessageWithRetryParams{
		ID:     details.ID,
		Status: messages.StatusSent,
		ProviderMessageID: sql.NullString{
			String: providerMsgID,
			Valid:  true,
		},
		LastError: sql.NullString{},
	})

	if err != nil {
		// The provider already has the message; requeueing would send it twice.
		log.Error().Err(err).Int32("outbound_message_id", details.ID).Msg("failed to update status to sent")
		d.Ack(false)
		return
	}

	log.Info().Int32("outbound_message_id", details.ID).Msg("message sent successfully")
	d.Ack(false)
}

// markFailed records a failure that retrying cannot fix. The message is never
// handed to the sender.
func (w *Worker) markFailed(ctx context.Context, d amqp091.Delivery, details messagesModels.GetOutboundMessageWithDetailsRow, reason string) {
	log.Warn().Int32("outbound_message_id", details.ID).Str("reason", reason).Msg("message failed permanently")

	_, err := w.repo.UpdateOutboundMessageWithRetry(ctx, messagesModels.UpdateOutboundMessageWithRetryParams{
		ID:     details.ID,
		Status: messages.StatusFailed,
		LastError: sql.NullString{
			String: reason,
			Valid:  true,
		},
	})
	if err != nil {
		log.Error().Err(err).Int32("outbound_message_id", details.ID).Msg("failed to update status to failed")
		d.Nack(false, true)
		return
	}
	d.Ack(false)
}

func (w *Worker) handleFailure(ctx context.Context, d amqp091.Delivery, details messagesModels.GetOutboundMessageWithDetailsRow, sendErr error) {
	log.Warn().Err(sendErr).Int32("outbound_message_id", details.ID).Int32("retry_count", details.RetryCount).Msg("failed to send message")

	if details.RetryCount >= w.maxRetries {
		_, err := w.repo.UpdateOutboundMessageWithRetry(ctx, messagesModels.UpdateOutboundMessageWithRetryParams{
			ID:     details.ID,
			Status: messages.StatusFailed,
			LastError: sql.NullString{
				String: sendErr.Error(),
				Valid:  true,
			},
		})
		if err != nil {
			log.Error().Err(err).Int32("outbound_message_id", details.ID).Msg("failed to update status to failed")
		}
		log.Warn().Int32("outbound_message_id", details.ID).Msg("max retries reached, giving up")
		d.Ack(false)
		return
	}

	w.requeue(ctx, d, details, sendErr, true)
}

// requeue puts the message back to pending and returns the delivery to the
// queue. countRetry is false when the send was never attempted.
func (w *Worker) requeue(ctx context.Context, d amqp091.Delivery, details messagesModels.GetOutboundMessageWithDetailsRow, cause error, countRetry bool) {
	updated, err := w.repo.UpdateOutboundMessageWithRetry(context.WithoutCancel(ctx), messagesModels.UpdateOutboundMessageWithRetryParams{
		ID:     details.ID,
		Status: messages.StatusPending,
		LastError: sql.NullString{
			String: cause.Error(),
			Valid:  true,
		},
		IncrementRetry: countRetry,
	})
	if err != nil {
		log.Error().Err(err).Int32("outbound_message_id", details.ID).Msg("failed to update status to pending")
		d.Nack(false, true)
		return
	}

	log.Info().Int32("outbound_message_id", details.ID).Int32("retry_count", updated.RetryCount).Msg("requeueing for retry")
	if countRetry {
		// Keep a failing provider from spinning the queue.
		select {
		case <-ctx.Done():
		case <-time.After(w.retryDelay):
		}
	}
	d.Nack(false, true)
}
