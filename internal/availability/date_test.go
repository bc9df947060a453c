package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		text string
		want time.Time
	}{
		{"14/02/2026", day(2026, time.February, 14)},
		{"is 14-02-2026 free?", day(2026, time.February, 14)},
		{"14.02.2026", day(2026, time.February, 14)},
		{"14/02/26", day(2026, time.February, 14)},
		{"5-3-27", day(2027, time.March, 5)},
		{"14 feb", day(2026, time.February, 14)},
		{"14feb", day(2026, time.February, 14)},
		{"14 February 2026", day(2026, time.February, 14)},
		{"14th feb 2026", day(2026, time.February, 14)},
		{"  1st MARCH ", day(2026, time.March, 1)},
		{"rooms on 22nd Dec 2027?", day(2027, time.December, 22)},
		{"3 sept", day(2026, time.September, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseDate(tt.text, now)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDateRejects(t *testing.T) {
	now := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	for _, text := range []string{"", "hello", "room available?", "31/02/2026", "32 jan", "14/13/2026", "price for 2 people"} {
		_, ok := ParseDate(text, now)
		assert.False(t, ok, "text %q", text)
	}
}

func TestParseDateLeapDay(t *testing.T) {
	now := time.Date(2028, time.January, 1, 0, 0, 0, 0, time.UTC)
	got, ok := ParseDate("29 feb", now)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2028, time.February, 29, 0, 0, 0, 0, time.UTC), got)

	_, ok = ParseDate("29/02/2027", now)
	assert.False(t, ok)
}
