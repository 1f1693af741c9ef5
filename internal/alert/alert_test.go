package alert_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwatch/airwatch/internal/airquality"
	"github.com/airwatch/airwatch/internal/alert"
	"github.com/airwatch/airwatch/internal/geo"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

func measurement(aqi float64) airquality.Measurement {
	return airquality.Measurement{
		ID:        42,
		Timestamp: now,
		Location:  geo.Point{Lat: 48.8566, Lon: 2.3522},
		AQI:       ptr(aqi),
	}
}

func classify(t *testing.T, aqi float64) airquality.Level {
	t.Helper()
	level, err := airquality.Classify(aqi)
	require.NoError(t, err)
	return level
}

func TestEmitter_Evaluate(t *testing.T) {
	emitter := alert.NewEmitter(alert.EmitterConfig{Clock: clockwork.NewFakeClockAt(now)})

	tests := []struct {
		aqi      float64
		alert    bool
		severity alert.Severity
	}{
		{0, false, ""},
		{65.5, false, ""},
		{100, false, ""},
		{100.01, true, alert.SeverityUnhealthy},
		{145.7, true, alert.SeverityUnhealthy},
		{150, true, alert.SeverityUnhealthy},
		{150.5, true, alert.SeverityHazardous},
		{250, true, alert.SeverityHazardous},
	}

	for _, tt := range tests {
		a := emitter.Evaluate(measurement(tt.aqi), classify(t, tt.aqi))
		if !tt.alert {
			assert.Nil(t, a, "aqi %v", tt.aqi)
			continue
		}
		require.NotNil(t, a, "aqi %v", tt.aqi)
		assert.Equal(t, tt.severity, a.Severity, "aqi %v", tt.aqi)
		assert.Equal(t, tt.aqi, a.AQI)
		assert.Equal(t, now, a.CreatedAt)
		assert.False(t, a.Read)
		assert.NotEmpty(t, a.ID)
	}
}

func TestEmitter_Message(t *testing.T) {
	emitter := alert.NewEmitter(alert.EmitterConfig{})

	a := emitter.Evaluate(measurement(145.7), classify(t, 145.7))
	require.NotNil(t, a)
	assert.Equal(t, "Air quality alert: Unhealthy", a.Message)

	a = emitter.Evaluate(measurement(250), classify(t, 250))
	require.NotNil(t, a)
	assert.Equal(t, "Air quality alert: Very Unhealthy", a.Message)
	assert.Equal(t, alert.SeverityHazardous, a.Severity)
}

func TestEmitter_CustomThresholdAndMissingAQI(t *testing.T) {
	emitter := alert.NewEmitter(alert.EmitterConfig{Threshold: 50})

	assert.NotNil(t, emitter.Evaluate(measurement(60), classify(t, 60)))
	assert.Nil(t, emitter.Evaluate(airquality.Measurement{ID: 1}, airquality.LevelGood))
}

func TestProfile_DisplayName(t *testing.T) {
	var nilProfile *alert.Profile
	assert.Equal(t, alert.UnknownUser, nilProfile.DisplayName())
	assert.Equal(t, alert.UnknownUser, (&alert.Profile{ID: "p1"}).DisplayName())
	assert.Equal(t, "alice", (&alert.Profile{ID: "p1", User: &alert.User{ID: "u1", Username: "alice"}}).DisplayName())

	a := &alert.Alert{}
	assert.Equal(t, alert.UnknownUser, a.Username())
}

type stubChecker struct {
	summary *airquality.Summary
	err     error
}

func (s stubChecker) CheckPoint(_ context.Context, _ geo.Point) (*airquality.Summary, error) {
	return s.summary, s.err
}

type recordingPublisher struct {
	published []*alert.Alert
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, a *alert.Alert) error {
	p.published = append(p.published, a)
	return p.err
}

func summaryFor(t *testing.T, aqi float64) *airquality.Summary {
	return &airquality.Summary{
		Mode:       airquality.ModeNearest,
		AverageAQI: aqi,
		Count:      1,
		Closest: airquality.Reading{
			Measurement: measurement(aqi),
			AQI:         aqi,
			Level:       classify(t, aqi),
		},
	}
}

func TestService_Check(t *testing.T) {
	repo := alert.NewInMemoryRepository()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := alert.NewService(alert.ServiceConfig{
		AirQuality: stubChecker{summary: summaryFor(t, 145.7)},
		Repository: repo,
		Publisher:  pub,
		Logger:     zerolog.New(io.Discard),
	})

	result, err := svc.Check(context.Background(), geo.Point{Lat: 48.8566, Lon: 2.3522})
	require.NoError(t, err)
	require.NotNil(t, result.Alert)
	assert.Equal(t, alert.SeverityUnhealthy, result.Alert.Severity)
	assert.Len(t, pub.published, 1)

	stored, err := repo.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, result.Alert.ID, stored[0].ID)
}

func TestService_CheckBelowThreshold(t *testing.T) {
	repo := alert.NewInMemoryRepository()
	svc := alert.NewService(alert.ServiceConfig{
		AirQuality: stubChecker{summary: summaryFor(t, 65.5)},
		Repository: repo,
		Logger:     zerolog.New(io.Discard),
	})

	result, err := svc.Check(context.Background(), geo.Point{})
	require.NoError(t, err)
	assert.Nil(t, result.Alert)
	assert.Equal(t, 65.5, result.Summary.AverageAQI)

	stored, _ := repo.Recent(context.Background(), 10)
	assert.Empty(t, stored)
}

func TestService_CheckPropagatesQueryErrors(t *testing.T) {
	svc := alert.NewService(alert.ServiceConfig{
		AirQuality: stubChecker{err: airquality.ErrNoDataInRegion},
		Repository: alert.NewInMemoryRepository(),
		Logger:     zerolog.New(io.Discard),
	})

	_, err := svc.Check(context.Background(), geo.Point{})
	assert.ErrorIs(t, err, airquality.ErrNoDataInRegion)
}

func TestService_Recent(t *testing.T) {
	clock := clockwork.NewFakeClockAt(now)
	emitter := alert.NewEmitter(alert.EmitterConfig{Clock: clock})
	repo := alert.NewInMemoryRepository()

	for _, aqi := range []float64{120, 180, 160} {
		a := emitter.Evaluate(measurement(aqi), classify(t, aqi))
		require.NoError(t, repo.Save(context.Background(), a))
		clock.Advance(time.Minute)
	}

	svc := alert.NewService(alert.ServiceConfig{Repository: repo, Logger: zerolog.New(io.Discard)})

	alerts, err := svc.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, 160.0, alerts[0].AQI)
	assert.Equal(t, 180.0, alerts[1].AQI)

	_, err = svc.Recent(context.Background(), 500)
	assert.ErrorIs(t, err, airquality.ErrInvalidInput)
}

func TestEncodeMessage(t *testing.T) {
	emitter := alert.NewEmitter(alert.EmitterConfig{Clock: clockwork.NewFakeClockAt(now)})
	a := emitter.Evaluate(measurement(210), classify(t, 210))
	require.NotNil(t, a)

	msg, err := alert.EncodeMessage(a)
	require.NoError(t, err)
	assert.Equal(t, a.ID, string(msg.Key))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "hazardous", string(msg.Headers[0].Value))
	assert.Equal(t, "2024-05-01T12:00:00Z", string(msg.Headers[1].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "very_unhealthy", decoded["aqi_level"])
	assert.Equal(t, "hazardous", decoded["level"])
	assert.Equal(t, false, decoded["is_read"])
}
