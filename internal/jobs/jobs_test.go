package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwatch/airwatch/internal/jobs"
)

var start = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type echoParams struct {
	Text string `json:"text"`
}

func newRegistry() *jobs.Registry {
	registry := jobs.NewRegistry()
	registry.Register("echo", jobs.Definition{
		Validate: func(params json.RawMessage) error {
			var p echoParams
			if err := json.Unmarshal(params, &p); err != nil {
				return err
			}
			if p.Text == "" {
				return errors.New("text is required")
			}
			return nil
		},
		Handle: func(_ context.Context, params json.RawMessage) (any, error) {
			var p echoParams
			_ = json.Unmarshal(params, &p)
			return map[string]string{"echo": p.Text}, nil
		},
	})
	registry.Register("explode", jobs.Definition{
		Handle: func(_ context.Context, _ json.RawMessage) (any, error) {
			return nil, errors.New("boom")
		},
	})
	registry.Register("panic", jobs.Definition{
		Handle: func(_ context.Context, _ json.RawMessage) (any, error) {
			panic("unexpected")
		},
	})
	return registry
}

type fixture struct {
	clock    *clockwork.FakeClock
	registry *jobs.Registry
	queue    *jobs.InMemoryQueue
	store    *jobs.MemoryStatusStore
	gateway  *jobs.Gateway
	runner   *jobs.Runner
}

func newFixture(opts ...jobs.QueueOption) *fixture {
	f := &fixture{
		clock:    clockwork.NewFakeClockAt(start),
		registry: newRegistry(),
		queue:    jobs.NewInMemoryQueue(opts...),
	}
	f.store = jobs.NewMemoryStatusStore(f.clock, time.Hour)
	f.gateway = jobs.NewGateway(jobs.GatewayConfig{
		Registry:   f.registry,
		Dispatcher: f.queue,
		Store:      f.store,
		Clock:      f.clock,
		Logger:     zerolog.New(io.Discard),
	})
	f.runner = jobs.NewRunner(jobs.RunnerConfig{
		Registry: f.registry,
		Store:    f.store,
		Clock:    f.clock,
		Logger:   zerolog.New(io.Discard),
	})
	return f
}

func (f *fixture) runNext(t *testing.T) {
	t.Helper()
	select {
	case msg := <-f.queue.Messages():
		require.NoError(t, f.runner.Process(context.Background(), msg))
	default:
		t.Fatal("queue is empty")
	}
}

func TestGateway_SubmitAndRun(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	job, err := f.gateway.Submit(ctx, "echo", json.RawMessage(`{"text":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusPending, job.Status)
	assert.NotEmpty(t, job.ID)

	got, err := f.gateway.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusPending, got.Status)

	f.runNext(t)

	got, err = f.gateway.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusSuccess, got.Status)
	assert.JSONEq(t, `{"echo":"hi"}`, string(got.Result))
	assert.True(t, got.Status.Terminal())
}

func TestGateway_StatusIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	job, err := f.gateway.Submit(ctx, "echo", json.RawMessage(`{"text":"hi"}`))
	require.NoError(t, err)

	first, err := f.gateway.Status(ctx, job.ID)
	require.NoError(t, err)
	second, err := f.gateway.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.queue.Len())
}

func TestGateway_SubmitErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.gateway.Submit(ctx, "nope", nil)
	assert.ErrorIs(t, err, jobs.ErrUnknownJob)

	_, err = f.gateway.Submit(ctx, "echo", json.RawMessage(`{"text":""}`))
	assert.ErrorIs(t, err, jobs.ErrInvalidParams)

	assert.Zero(t, f.queue.Len())
}

func TestGateway_QueueFull(t *testing.T) {
	f := newFixture(jobs.WithCapacity(1))
	ctx := context.Background()

	_, err := f.gateway.Submit(ctx, "explode", nil)
	require.NoError(t, err)

	_, err = f.gateway.Submit(ctx, "explode", nil)
	assert.ErrorIs(t, err, jobs.ErrQueueFull)
}

func TestGateway_UnknownID(t *testing.T) {
	f := newFixture()

	_, err := f.gateway.Status(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)

	_, err = f.gateway.Status(context.Background(), "7d444840-9dc0-11d1-b245-5ffdce74fad2")
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)
}

func TestRunner_RecordsFailures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	failing, err := f.gateway.Submit(ctx, "explode", nil)
	require.NoError(t, err)
	panicking, err := f.gateway.Submit(ctx, "panic", nil)
	require.NoError(t, err)

	f.runNext(t)
	f.runNext(t)

	got, err := f.gateway.Status(ctx, failing.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusFailure, got.Status)
	assert.Equal(t, "boom", got.Error)

	got, err = f.gateway.Status(ctx, panicking.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusFailure, got.Status)
	assert.Contains(t, got.Error, "panicked")
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []jobs.Status
}

func (o *recordingObserver) JobFinished(_ string, status jobs.Status, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
}

func TestRunner_Consume(t *testing.T) {
	f := newFixture()
	observer := &recordingObserver{}
	runner := jobs.NewRunner(jobs.RunnerConfig{
		Registry: f.registry,
		Store:    f.store,
		Clock:    f.clock,
		Logger:   zerolog.New(io.Discard),
		Observer: observer,
	})
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		job, err := f.gateway.Submit(ctx, "echo", json.RawMessage(`{"text":"x"}`))
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}
	require.NoError(t, f.queue.Close())

	runner.Consume(ctx, f.queue, 3)

	for _, id := range ids {
		got, err := f.gateway.Status(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, jobs.StatusSuccess, got.Status)
	}
	assert.Len(t, observer.statuses, 5)

	_, err := f.gateway.Submit(ctx, "echo", json.RawMessage(`{"text":"late"}`))
	assert.ErrorIs(t, err, jobs.ErrQueueFull)
}

func TestMemoryStatusStore_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	store := jobs.NewMemoryStatusStore(clock, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, jobs.Job{ID: "a", Status: jobs.StatusPending, UpdatedAt: start}))

	_, err := store.Get(ctx, "a")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)
}

func TestMemoryStatusStore_ExpiryKeepsRefreshedRecord(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	store := jobs.NewMemoryStatusStore(clock, time.Minute)
	ctx := context.Background()
	clock.Advance(time.Hour)

	for i := 0; i < 200; i++ {
		require.NoError(t, store.Put(ctx, jobs.Job{ID: "a", Status: jobs.StatusPending, UpdatedAt: start}))

		var wg sync.WaitGroup
		for r := 0; r < 4; r++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = store.Get(ctx, "a")
			}()
		}
		require.NoError(t, store.Put(ctx, jobs.Job{ID: "a", Status: jobs.StatusSuccess, UpdatedAt: clock.Now()}))
		wg.Wait()

		job, err := store.Get(ctx, "a")
		require.NoError(t, err, "iteration %d", i)
		assert.Equal(t, jobs.StatusSuccess, job.Status)
	}
}

func TestRedisFields_RoundTrip(t *testing.T) {
	job := jobs.Job{
		ID:          "7d444840-9dc0-11d1-b245-5ffdce74fad2",
		Name:        "forecast",
		Status:      jobs.StatusFailure,
		Error:       "city not found",
		SubmittedAt: start,
		UpdatedAt:   start.Add(time.Second),
	}

	fields := jobs.EncodeFields(job)
	assert.Equal(t, "failure", fields["state"])
	assert.NotContains(t, fields, "result")

	values := make(map[string]string, len(fields))
	for k, v := range fields {
		values[k] = v.(string)
	}
	values["state"] = " FAILURE "

	decoded, err := jobs.DecodeFields(values)
	require.NoError(t, err)
	assert.Equal(t, job.ID, decoded.ID)
	assert.Equal(t, jobs.StatusFailure, decoded.Status)
	assert.Equal(t, job.Error, decoded.Error)
	assert.True(t, job.UpdatedAt.Equal(decoded.UpdatedAt))

	assert.Equal(t, "job:abc:status", jobs.StatusKey("abc"))
}

func TestPubSubMessage_Encoding(t *testing.T) {
	msg := jobs.Message{
		JobID:       "7d444840-9dc0-11d1-b245-5ffdce74fad2",
		Name:        "forecast",
		Params:      json.RawMessage(`{"city":"Paris"}`),
		SubmittedAt: start,
	}

	encoded, err := jobs.EncodePubSubMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, "forecast", encoded.Attributes["job_name"])

	decoded, err := jobs.DecodeMessage(encoded.Data)
	require.NoError(t, err)
	assert.Equal(t, msg.JobID, decoded.JobID)
	assert.JSONEq(t, `{"city":"Paris"}`, string(decoded.Params))

	_, err = jobs.DecodeMessage([]byte(`{"name":"forecast"}`))
	assert.Error(t, err)
}
