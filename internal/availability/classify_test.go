package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	slots, err := MakeSlots("08:00", "20:00", 30)
	require.NoError(t, err)

	busy := BusySet{
		Professional: []Interval{
			{Start: day.Add(10 * time.Hour), End: day.Add(10*time.Hour + 30*time.Minute)},
		},
		Patient: []Interval{
			{Start: day.Add(12 * time.Hour), End: day.Add(13 * time.Hour)},
			{Start: day.Add(10*time.Hour + 15*time.Minute), End: day.Add(10*time.Hour + 20*time.Minute)},
		},
	}

	statuses := Classify(day, slots, 30, busy)
	require.Len(t, statuses, len(slots))

	assert.Equal(t, StatusBoth, statuses["10:00:00"], "both sides busy inside the window")
	assert.Equal(t, StatusPatient, statuses["12:00:00"])
	assert.Equal(t, StatusPatient, statuses["12:30:00"])
	assert.Equal(t, StatusFree, statuses["10:30:00"], "window abutting a busy interval stays free")
	assert.Equal(t, StatusFree, statuses["13:00:00"])
	assert.Equal(t, StatusFree, statuses["08:00:00"])
}

func TestClassifyProfessionalOnly(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	slots, err := MakeSlots("08:00", "20:00", 30)
	require.NoError(t, err)

	busy := BusySet{
		Professional: []Interval{
			{Start: day.Add(10 * time.Hour), End: day.Add(10*time.Hour + 30*time.Minute)},
		},
	}

	statuses := Classify(day, slots, 30, busy)
	assert.Equal(t, StatusProfessional, statuses["10:00:00"])
	assert.Equal(t, StatusFree, statuses["10:30:00"])
	assert.Equal(t, StatusFree, statuses["09:30:00"])
}

func TestClassifyEmptyBusySets(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	slots, err := MakeSlots("08:00", "20:00", 30)
	require.NoError(t, err)

	statuses := Classify(day, slots, 30, BusySet{})
	for slot, status := range statuses {
		assert.Equal(t, StatusFree, status, "slot %s", slot)
	}
}
