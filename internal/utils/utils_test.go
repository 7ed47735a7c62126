package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/and161185/paytrack/internal/errs"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		input string
		want  int
		valid bool
	}{
		{"1", 1, true},
		{" 42 ", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseID(tt.input)
		if tt.valid {
			if err != nil || got != tt.want {
				t.Errorf("ParseID(%q) = %d, %v; want %d", tt.input, got, err, tt.want)
			}
			continue
		}
		if !errors.Is(err, errs.ErrValidation) {
			t.Errorf("ParseID(%q) error = %v; want validation error", tt.input, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-14")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date: %v", d)
	}

	d, err = ParseDate("")
	if err != nil || d != nil {
		t.Errorf("ParseDate(\"\") = %v, %v; want nil, nil", d, err)
	}

	if _, err := ParseDate("14/03/2025"); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
