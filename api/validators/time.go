package validators

import (
	"strings"
	"time"

	pkgerrors "github.com/shiptrack/shiptrack-backend/pkg/errors"
)

// ParseDateOrTimestamp accepts a calendar date (2006-01-02, read as UTC
// midnight) or an RFC3339 timestamp. Blank input yields nil.
func ParseDateOrTimestamp(field, raw string) (*time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a date (YYYY-MM-DD) or RFC3339 timestamp").
			WithDetails(map[string]any{"field": field})
	}
	t = t.UTC()
	return &t, nil
}

// ParseTimestamp accepts an RFC3339 timestamp. Blank input yields nil.
func ParseTimestamp(field, raw string) (*time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" must be an RFC3339 timestamp").
			WithDetails(map[string]any{"field": field})
	}
	t = t.UTC()
	return &t, nil
}
