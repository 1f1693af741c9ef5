// Package worker consumes job messages and runs them outside the API process.
package worker

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/airwatch/airwatch/internal/jobs"
)

// Processor runs one decoded job message.
type Processor interface {
	Process(ctx context.Context, msg jobs.Message) error
}

// MessageHandler decodes raw job messages and hands them to a Processor.
type MessageHandler struct {
	processor Processor
	metrics   *Metrics
	logger    zerolog.Logger
}

// NewMessageHandler creates a MessageHandler. A nil metrics uses unregistered collectors.
func NewMessageHandler(processor Processor, metrics *Metrics, logger zerolog.Logger) *MessageHandler {
	if metrics == nil {
		metrics = NewMetricsForTesting()
	}
	return &MessageHandler{processor: processor, metrics: metrics, logger: logger}
}

// Handle processes one raw message and reports whether it should be acked.
// Undecodable messages are acked so they are not redelivered forever.
func (h *MessageHandler) Handle(ctx context.Context, messageID string, data []byte) bool {
	logger := h.logger.With().Str("message_id", messageID).Logger()
	h.metrics.MessagesReceived.Inc()

	msg, err := jobs.DecodeMessage(data)
	if err != nil {
		h.metrics.MessagesInvalid.Inc()
		logger.Error().Err(err).Msg("dropping undecodable job message")
		return true
	}

	if err := h.processor.Process(ctx, msg); err != nil {
		logger.Error().Err(err).Str("job_id", msg.JobID).Msg("job processing failed, requesting redelivery")
		return false
	}
	return true
}

// PubSubHandler receives job messages from a Pub/Sub subscription.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	handler          *MessageHandler
	metrics          *Metrics
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Processor        Processor
	Metrics          *Metrics
	Logger           zerolog.Logger

	// MaxOutstanding bounds concurrently processed messages (default: 10).
	MaxOutstanding int
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	maxOutstanding := cfg.MaxOutstanding
	if maxOutstanding <= 0 {
		maxOutstanding = 10
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = maxOutstanding
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	handler := NewMessageHandler(cfg.Processor, cfg.Metrics, cfg.Logger)

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		handler:          handler,
		metrics:          handler.metrics,
		logger:           cfg.Logger,
	}, nil
}

// Start receives messages until ctx is cancelled.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	h.metrics.WorkerRunning.Set(1)
	defer h.metrics.WorkerRunning.Set(0)

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if h.handler.Handle(ctx, msg.ID, msg.Data) {
			msg.Ack()
		} else {
			msg.Nack()
		}
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}
