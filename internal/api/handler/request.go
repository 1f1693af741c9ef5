// Package handler provides HTTP handlers for the AirWatch API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/airwatch/airwatch/internal/airquality"
)

const maxBodyBytes = 64 << 10

// decodeJSON decodes a single JSON object from the request body. Failures
// wrap airquality.ErrInvalidInput.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", airquality.ErrInvalidInput)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", airquality.ErrInvalidInput, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: request body must contain a single JSON object", airquality.ErrInvalidInput)
	}
	return nil
}

// parseLimit parses an optional positive limit. Empty means zero, which the
// services treat as their default.
func parseLimit(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: limit must be a positive integer", airquality.ErrInvalidInput)
	}
	return n, nil
}
