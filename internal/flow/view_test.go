package flow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusColor(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"PENDING", "warning"},
		{"CONFIRMED", "success"},
		{"COMPLETED", "primary"},
		{"CANCELLED", "danger"},
		{"ARCHIVED", "neutral"},
		{"", "neutral"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusColor(tt.status), "status %q", tt.status)
	}
}

func TestFormatDateTime(t *testing.T) {
	when := time.Date(2026, 10, 2, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "Friday, October 2, 2026", FormatDate(when))
	assert.Equal(t, "2:30 PM", FormatClock(when))
	assert.Equal(t, "Friday, October 2, 2026 at 2:30 PM", FormatDateTime(when))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$150", FormatAmount(150))
	assert.Equal(t, "$80", FormatAmount(80))
}
