package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowBounds(t *testing.T) {
	now := time.Date(2025, time.March, 15, 13, 45, 30, 0, time.Local)

	t.Run("all-time is unbounded", func(t *testing.T) {
		_, _, bounded := WindowAll.Bounds(now)
		assert.False(t, bounded)
	})

	t.Run("month starts on the first", func(t *testing.T) {
		from, to, bounded := WindowMonth.Bounds(now)
		require.True(t, bounded)
		assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.Local), from)
		assert.Equal(t, now, to)
	})

	t.Run("week is a rolling 7 days", func(t *testing.T) {
		from, to, bounded := WindowWeek.Bounds(now)
		require.True(t, bounded)
		assert.Equal(t, now.AddDate(0, 0, -6), from)
		assert.Equal(t, now, to)
	})

	t.Run("day starts at midnight", func(t *testing.T) {
		from, to, bounded := WindowDay.Bounds(now)
		require.True(t, bounded)
		assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.Local), from)
		assert.Equal(t, now, to)
	})

	t.Run("week window can cross a month boundary", func(t *testing.T) {
		early := time.Date(2025, time.March, 2, 8, 0, 0, 0, time.Local)
		from, _, bounded := WindowWeek.Bounds(early)
		require.True(t, bounded)
		assert.Equal(t, time.Date(2025, time.February, 24, 8, 0, 0, 0, time.Local), from)
	})
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in      string
		want    Window
		wantErr bool
	}{
		{"", WindowAll, false},
		{"all", WindowAll, false},
		{"month", WindowMonth, false},
		{"week", WindowWeek, false},
		{"day", WindowDay, false},
		{"year", "", true},
		{"Month", "", true},
	}
	for _, tt := range tests {
		got, err := ParseWindow(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}
