package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/initcareer/init-web/internal/domain/model"
)

func TestFormatNumberTemplate(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{int64(1234567), "1,234,567"},
		{int32(-45000), "-45,000"},
		{"n/a", "n/a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumberTemplate(tt.in), "%v", tt.in)
	}
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "Backe…", TruncateText("Backend engineer", 6))
	assert.Equal(t, "서울특…", TruncateText("서울특별시 강남구", 4))
	assert.Equal(t, "unbounded", TruncateText("unbounded", 0))
}

func TestInitial(t *testing.T) {
	assert.Equal(t, "K", Initial(" kim"))
	assert.Equal(t, "김", Initial("김민지"))
	assert.Equal(t, "?", Initial("  "))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(3, 0))
	assert.Equal(t, 0, Percent(-1, 10))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 100, Percent(12, 10))
}

func TestDeadlineLabel(t *testing.T) {
	assert.Equal(t, "No deadline", DeadlineLabel(model.DeadlineDaysUnknown))
	assert.Equal(t, "Closed", DeadlineLabel(model.DeadlineDaysPassed))
	assert.Equal(t, "D-Day", DeadlineLabel(0))
	assert.Equal(t, "D-5", DeadlineLabel(5))
}

func TestClasses(t *testing.T) {
	assert.Equal(t, "alert-danger", NoticeClass(model.NoticeError))
	assert.Equal(t, "alert-info", NoticeClass(""))
	assert.Equal(t, "badge-muted", BadgeClass(""))
	assert.Equal(t, "badge-danger", BadgeClass(model.BadgeDanger))
}

func TestDeref(t *testing.T) {
	yes := true
	assert.True(t, Deref(&yes))
	assert.False(t, Deref(nil))
}

func TestDict(t *testing.T) {
	m, err := Dict("Profile", 1, "CSRFToken", "tok")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Profile": 1, "CSRFToken": "tok"}, m)

	_, err = Dict("odd")
	require.Error(t, err)

	_, err = Dict(1, "value")
	require.Error(t, err)
}
