package worker

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Outbound is one rendered message ready for a provider.
type Outbound struct {
	Channel string
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Outbound) (string, error)
}

// Simulates an SMS and email provider
type MockSender struct {
	successRate float64
	maxLatency  time.Duration
}

// Create a new mock sender with the given success rate
func NewMockSender(successRate float64) *MockSender {
	return &MockSender{
		successRate: successRate,
		maxLatency:  500 * time.Millisecond,
	}
}

// Send waits a random provider latency and then delivers or fails according
// to the success rate. It returns a provider message ID on success.
func (s *MockSender) Send(ctx context.Context, msg Outbound) (string, error) {
	if s.maxLatency > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(rand.Int63n(int64(s.maxLatency)))):
		}
	}
	if rand.Float64() > s.successRate {
		return "", fmt.Errorf("mock provider error: failed to deliver %s to %s", msg.Channel, msg.To)
	}
	return fmt.Sprintf("mock-%s-%s", msg.Channel, uuid.New().String()), nil
}
