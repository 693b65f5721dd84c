package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysSince(t *testing.T) {
	assert.Equal(t, 0, DaysSince(Epoch, Epoch))
	assert.Equal(t, 0, DaysSince(Epoch.Add(23*time.Hour), Epoch))
	assert.Equal(t, 59, DaysSince(time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), Epoch))
	assert.Equal(t, 365, DaysSince(time.Date(2024, time.December, 31, 12, 0, 0, 0, time.UTC), Epoch))
	assert.Equal(t, -1, DaysSince(time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC), Epoch))
	assert.Equal(t, 9, DaysSince(time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDateOf(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	in := time.Date(2024, time.March, 3, 22, 0, 0, 0, est)
	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), DateOf(in))
}

func TestFilterYear(t *testing.T) {
	samples := []NormalizedSample{
		{Date: time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}
	got := FilterYear(samples, AnalysisYear)
	assert.Len(t, got, 2)
	for _, s := range got {
		assert.Equal(t, 2024, s.Date.Year())
	}
}
