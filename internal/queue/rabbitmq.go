package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	dialAttempts   = 10
	dialBackoff    = 2 * time.Second
	publishTimeout = 5 * time.Second
)

type RabbitMQ struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	queue   amqp091.Queue
}

// ReminderSendQueue carries one outbound message id per delivery.
const ReminderSendQueue = "reminder_sends"

// ReminderSendType is the AMQP type property of reminder deliveries.
const ReminderSendType = "reminder_send"

var ErrInvalidReminderSend = errors.New("invalid reminder send message")

type ReminderSendMessage struct {
	OutboundMessageID int32 `json:"outbound_message_id"`
}

// EncodeReminderSend builds the persistent publishing for one outbound
// message. The message id doubles as the AMQP message id.
func EncodeReminderSend(messageID int32, now time.Time) (amqp091.Publishing, error) {
	if messageID <= 0 {
		return amqp091.Publishing{}, fmt.Errorf("%w: outbound_message_id %d", ErrInvalidReminderSend, messageID)
	}
	body, err := json.Marshal(ReminderSendMessage{OutboundMessageID: messageID})
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("failed to marshal message: %w", err)
	}
	return amqp091.Publishing{
		DeliveryMode: amqp091.Persistent,
		ContentType:  "application/json",
		Type:         ReminderSendType,
		MessageId:    strconv.Itoa(int(messageID)),
		Timestamp:    now.UTC(),
		Body:         body,
	}, nil
}

// DecodeReminderSend parses a delivery body. Bodies without a positive
// outbound_message_id are invalid.
func DecodeReminderSend(body []byte) (ReminderSendMessage, error) {
	var msg ReminderSendMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrInvalidReminderSend, err)
	}
	if msg.OutboundMessageID <= 0 {
		return msg, fmt.Errorf("%w: missing outbound_message_id", ErrInvalidReminderSend)
	}
	return msg, nil
}

// NewRabbitMQ dials the broker and declares the reminder_sends queue
func NewRabbitMQ(url string) (*RabbitMQ, error) {
	var conn *amqp091.Connection
	var err error

	for i := 0; i < dialAttempts; i++ {
		conn, err = amqp091.Dial(url)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Dur("backoff", dialBackoff).Msg("failed to connect to RabbitMQ, retrying")
		time.Sleep(dialBackoff)
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to connect to RabbitMQ after retries")
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		log.Error().Err(err).Msg("failed to open channel")
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	queue, err := channel.QueueDeclare(
		ReminderSendQueue, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		log.Error().Err(err).Msg("failed to declare queue")
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	log.Info().Str("queue", ReminderSendQueue).Msg("connected to RabbitMQ and declared queue")

	return &RabbitMQ{
		conn:    conn,
		channel: channel,
		queue:   queue,
	}, nil
}

// PublishReminderSend queues one outbound message for the worker.
func (r *RabbitMQ) PublishReminderSend(messageID int32) error {
	publishing, err := EncodeReminderSend(messageID, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = r.channel.PublishWithContext(ctx,
		"",           // exchange
		r.queue.Name, // routing key (queue name)
		false,        // mandatory
		false,        // immediate
		publishing,
	)
	if err != nil {
		log.Error().Err(err).Int32("message_id", messageID).Msg("failed to publish message")
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Debug().Int32("message_id", messageID).Msg("published message to queue")
	return nil
}

// Consume returns manually acknowledged deliveries from the reminder_sends
// queue, with at most prefetch unacknowledged at a time.
func (r *RabbitMQ) Consume(prefetch int) (<-chan amqp091.Delivery, error) {
	if prefetch < 1 {
		prefetch = 1
	}
	if err := r.channel.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}

	msgs, err := r.channel.Consume(
		r.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack (we will manual ack)
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register a consumer: %w", err)
	}
	return msgs, nil
}

// Ping checks if the RabbitMQ connection and channel are open
func (r *RabbitMQ) Ping() error {
	if r.conn == nil || r.conn.IsClosed() {
		return fmt.Errorf("connection is closed")
	}
	if r.channel == nil || r.channel.IsClosed() {
		return fmt.Errorf("channel is closed")
	}
	return nil
}

// Close closes the RabbitMQ connection and channel
func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close channel")
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close connection")
			return err
		}
	}
	log.Info().Msg("closed RabbitMQ connection")
	return nil
}
