package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/and161185/paytrack/internal/errs"
)

// ParseID parses a positive integer path parameter.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, errs.Validation("invalid id %q", raw)
	}
	return id, nil
}

// ParseDate parses a YYYY-MM-DD query parameter. An empty value yields nil.
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, errs.Validation("invalid date %q, want YYYY-MM-DD", raw)
	}
	return &d, nil
}
