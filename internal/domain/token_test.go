package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "mid month",
			in:   time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC),
			want: time.Date(2024, time.April, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "jan 31 leap year",
			in:   time.Date(2024, time.January, 31, 23, 59, 59, 999_000_000, time.UTC),
			want: time.Date(2024, time.February, 29, 23, 59, 59, 999_000_000, time.UTC),
		},
		{
			name: "jan 31 common year",
			in:   time.Date(2023, time.January, 31, 8, 0, 0, 0, time.UTC),
			want: time.Date(2023, time.February, 28, 8, 0, 0, 0, time.UTC),
		},
		{
			name: "march 31 to april 30",
			in:   time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "december rolls year",
			in:   time.Date(2025, time.December, 31, 12, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.January, 31, 12, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(AddMonths(tt.in, 1)), "got %v", AddMonths(tt.in, 1))
		})
	}
}

func TestRefreshTokenIsValid(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	deleted := now.Add(-time.Minute)

	assert.True(t, RefreshToken{ExpiredAt: now.Add(time.Second)}.IsValid(now))
	assert.False(t, RefreshToken{ExpiredAt: now}.IsValid(now))
	assert.False(t, RefreshToken{ExpiredAt: now.Add(time.Hour), DeletedAt: &deleted}.IsValid(now))
}

func TestMessageRole(t *testing.T) {
	for _, r := range []MessageRole{RoleSystem, RoleUser, RoleAssistant, RoleTool} {
		assert.True(t, r.IsValid(), r)
	}
	assert.False(t, MessageRole("moderator").IsValid())
}
