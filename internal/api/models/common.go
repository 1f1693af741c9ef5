// Package models provides request and response bodies for the AirWatch API.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ResultCode is the machine-readable outcome carried by air quality
// responses and by problem documents.
type ResultCode string

const (
	CodeOK               ResultCode = "ok"
	CodeNoData           ResultCode = "no_data"
	CodeInvalidInput     ResultCode = "invalid_input"
	CodeStoreUnavailable ResultCode = "store_unavailable"
	CodeNotFound         ResultCode = "not_found"
	CodeRateLimited      ResultCode = "rate_limited"
	CodeInternal         ResultCode = "internal_error"
)

// HealthStatus represents the health of the service or a dependency.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Coordinate is a latitude or longitude accepted either as a JSON number or
// as a numeric string. It keeps the raw text so that parsing and range
// checks happen in one place.
type Coordinate string

var errBadCoordinate = errors.New("coordinate must be a number or a numeric string")

// UnmarshalJSON implements json.Unmarshaler.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Coordinate(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return errBadCoordinate
		}
		*c = Coordinate(n.String())
	}
	return nil
}

// String returns the raw coordinate text.
func (c Coordinate) String() string {
	return string(c)
}
