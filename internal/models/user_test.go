package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestParseISO(t *testing.T) {
	tests := []struct {
		name  string
		input *string
		want  *time.Time
	}{
		{
			name:  "z suffix with millis",
			input: strp("2026-06-01T18:30:00.000Z"),
			want:  timep(time.Date(2026, 6, 1, 18, 30, 0, 0, time.UTC)),
		},
		{
			name:  "explicit offset",
			input: strp("2026-06-01T22:00:00.000+03:30"),
			want:  timep(time.Date(2026, 6, 1, 18, 30, 0, 0, time.UTC)),
		},
		{
			name:  "no fractional seconds",
			input: strp("2026-06-01T18:30:00Z"),
			want:  timep(time.Date(2026, 6, 1, 18, 30, 0, 0, time.UTC)),
		},
		{name: "nil", input: nil},
		{name: "empty", input: strp("")},
		{name: "malformed", input: strp("yesterday")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseISO(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, got.Equal(*tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func timep(t time.Time) *time.Time { return &t }

func TestFormatISO(t *testing.T) {
	instant := time.Date(2026, 6, 1, 22, 0, 0, 0, time.FixedZone("x", 3*3600+30*60))
	assert.Equal(t, "2026-06-01T18:30:00.000Z", FormatISO(instant))
}

func TestFormatISORoundTrip(t *testing.T) {
	s := "2026-06-01T18:30:00.000Z"
	parsed := ParseISO(&s)
	require.NotNil(t, parsed)
	assert.Equal(t, s, FormatISO(*parsed))
}

func TestCreationDate(t *testing.T) {
	u := User{CreatedAt: strp("2026-06-01T10:00:00.000Z")}
	assert.Equal(t, time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC), u.CreationDate().UTC())

	var missing User
	assert.True(t, missing.CreationDate().IsZero(), "absent timestamp sorts as the zero time")
}

func TestIsActive(t *testing.T) {
	assert.True(t, (&User{Status: StatusActive}).IsActive())
	assert.False(t, (&User{Status: "DISABLED"}).IsActive())
	assert.False(t, (&User{}).IsActive())
}
