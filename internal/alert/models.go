// Package alert decides when a classified measurement warrants an alert and
// stores and publishes the alerts it produces.
package alert

import (
	"errors"
	"time"

	"github.com/airwatch/airwatch/internal/airquality"
)

// ErrAlertNotFound is returned when an alert doesn't exist.
var ErrAlertNotFound = errors.New("alert not found")

// Severity is the coarse alert scale, distinct from the five AQI levels.
type Severity string

const (
	SeverityModerate  Severity = "moderate"
	SeverityUnhealthy Severity = "unhealthy"
	SeverityHazardous Severity = "hazardous"
)

// Severities returns all alert severities in ascending order.
func Severities() []Severity {
	return []Severity{SeverityModerate, SeverityUnhealthy, SeverityHazardous}
}

// User is the account owning a profile.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Profile is the optional owner of an alert. Its user may be unknown.
type Profile struct {
	ID   string `json:"id"`
	User *User  `json:"user,omitempty"`
}

// UnknownUser is reported when an alert has no resolvable owner.
const UnknownUser = "Unknown"

// DisplayName returns the owning username, or UnknownUser when the profile or
// its user is missing. It is safe to call on a nil Profile.
func (p *Profile) DisplayName() string {
	if p == nil || p.User == nil || p.User.Username == "" {
		return UnknownUser
	}
	return p.User.Username
}

// Alert is an emitted air-quality alert.
type Alert struct {
	ID          string                 `json:"id"`
	Measurement airquality.Measurement `json:"measurement"`
	AQI         float64                `json:"aqi_value"`
	Severity    Severity               `json:"level"`
	AQILevel    airquality.Level       `json:"aqi_level"`
	Message     string                 `json:"message"`
	CreatedAt   time.Time              `json:"created_at"`
	Read        bool                   `json:"is_read"`
	Profile     *Profile               `json:"profile,omitempty"`
}

// Username returns the display name of the alert owner.
func (a *Alert) Username() string {
	return a.Profile.DisplayName()
}
