package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub/v2"
)

// Dispatcher hands job messages to whatever executes them.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

// ErrQueueClosed is returned when dispatching to a closed queue.
var ErrQueueClosed = errors.New("job queue is closed")

const defaultQueueCapacity = 1024

// QueueOption configures an InMemoryQueue.
type QueueOption func(*InMemoryQueue)

// WithCapacity sets the maximum number of buffered messages.
func WithCapacity(capacity int) QueueOption {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// InMemoryQueue is a bounded, non-blocking Dispatcher backed by a channel.
type InMemoryQueue struct {
	messages chan Message
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory job queue.
func NewInMemoryQueue(opts ...QueueOption) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.messages = make(chan Message, q.capacity)
	return q
}

// Dispatch enqueues msg without blocking. It returns ErrQueueFull when the
// buffer is at capacity.
func (q *InMemoryQueue) Dispatch(ctx context.Context, msg Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case q.messages <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Messages returns the channel consumers read from. It is closed by Close.
func (q *InMemoryQueue) Messages() <-chan Message {
	return q.messages
}

// Len returns the number of buffered messages.
func (q *InMemoryQueue) Len() int {
	return len(q.messages)
}

// Close stops accepting messages and closes the consumer channel.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.messages)
	return nil
}

// PubSubDispatcher publishes job messages to a Google Cloud Pub/Sub topic.
type PubSubDispatcher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
}

// PubSubDispatcherConfig holds configuration for the Pub/Sub dispatcher.
type PubSubDispatcherConfig struct {
	ProjectID string
	Topic     string
}

// NewPubSubDispatcher creates a Pub/Sub client and publisher for cfg.Topic.
func NewPubSubDispatcher(ctx context.Context, cfg PubSubDispatcherConfig) (*PubSubDispatcher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubDispatcher{
		client:    client,
		publisher: client.Publisher(cfg.Topic),
	}, nil
}

// Dispatch publishes msg and waits for the server acknowledgement.
func (d *PubSubDispatcher) Dispatch(ctx context.Context, msg Message) error {
	psMsg, err := EncodePubSubMessage(msg)
	if err != nil {
		return err
	}

	if _, err := d.publisher.Publish(ctx, psMsg).Get(ctx); err != nil {
		return fmt.Errorf("publish job %s: %w", msg.JobID, err)
	}
	return nil
}

// Close flushes pending publishes and closes the client.
func (d *PubSubDispatcher) Close() error {
	d.publisher.Stop()
	return d.client.Close()
}

// EncodePubSubMessage marshals a job message with routing attributes.
func EncodePubSubMessage(msg Message) (*pubsub.Message, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("serialize job message: %w", err)
	}
	return &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"job_id":   msg.JobID,
			"job_name": msg.Name,
		},
	}, nil
}

// DecodeMessage parses a job message produced by EncodePubSubMessage.
func DecodeMessage(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("parse job message: %w", err)
	}
	if msg.JobID == "" || msg.Name == "" {
		return Message{}, errors.New("job message missing job_id or name")
	}
	return msg, nil
}

var (
	_ Dispatcher = (*InMemoryQueue)(nil)
	_ Dispatcher = (*PubSubDispatcher)(nil)
)
