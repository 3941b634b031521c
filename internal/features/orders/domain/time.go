package domain

import (
	"strings"
	"time"

	"fulfillment-tracker/internal/core/logger"

	"go.uber.org/zap"
)

// BackendTime handles the marketplace backend's date formats: timestamps
// arrive either as bare ISO8601 ("2025-04-04T14:48:25") or RFC3339 with an
// offset. Null and empty values decode to the zero time.
type BackendTime time.Time

// UnmarshalJSON parses the backend date formats, tolerating unparseable
// values with a warning rather than failing the whole order decode.
func (t *BackendTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "null" || s == "" {
		*t = BackendTime(time.Time{})
		return nil
	}
	parsed, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		logger.Get().Warn("Failed to parse backend date", zap.String("date", s), zap.Error(err))
		return nil
	}
	*t = BackendTime(parsed)
	return nil
}

// MarshalJSON renders the timestamp as RFC3339, or null for the zero time.
func (t BackendTime) MarshalJSON() ([]byte, error) {
	tt := time.Time(t)
	if tt.IsZero() {
		return []byte("null"), nil
	}
	return []byte("\"" + tt.Format(time.RFC3339) + "\""), nil
}

// IsZero reports whether the timestamp is unset.
func (t BackendTime) IsZero() bool {
	return time.Time(t).IsZero()
}
