package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysUntilDeadline(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		deadline string
		want     int
	}{
		{"", DeadlineDaysUnknown},
		{DeadlineUnknown, DeadlineDaysUnknown},
		{"soon", DeadlineDaysUnknown},
		{"2026-13-40", DeadlineDaysUnknown},
		{"2026-10-22", 3},
		{"20261026", 7},
		{"2026-10-19T18:00:00Z", 1},
		{"2026-10-30T00:00:00", 11},
		{"2026-10-01", DeadlineDaysPassed},
	}
	for _, tt := range tests {
		t.Run(tt.deadline, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntilDeadline(tt.deadline, now))
		})
	}
}

func TestDeadlineBadge(t *testing.T) {
	assert.Equal(t, BadgeDanger, DeadlineBadge(0))
	assert.Equal(t, BadgeDanger, DeadlineBadge(3))
	assert.Equal(t, BadgeWarning, DeadlineBadge(7))
	assert.Equal(t, BadgeSuccess, DeadlineBadge(8))
	assert.Equal(t, BadgeMuted, DeadlineBadge(DeadlineDaysPassed))
	assert.Equal(t, BadgeMuted, DeadlineBadge(DeadlineDaysUnknown))
}

func TestFormatPhoneNumber(t *testing.T) {
	assert.Equal(t, "010", FormatPhoneNumber("010"))
	assert.Equal(t, "010-1234", FormatPhoneNumber("0101234"))
	assert.Equal(t, "010-1234-5678", FormatPhoneNumber("01012345678"))
	assert.Equal(t, "010-1234-5678", FormatPhoneNumber("010-1234-5678-999"))
	assert.True(t, ValidPhoneNumber("010-1234-5678"))
	assert.True(t, ValidPhoneNumber("0111234567"))
	assert.False(t, ValidPhoneNumber("020-1234-5678"))
}
