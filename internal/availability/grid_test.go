package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeSlots(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		step     int
		wantLen  int
		wantHead string
		wantTail string
	}{
		{name: "full working day", start: "08:00", end: "20:00", step: 30, wantLen: 25, wantHead: "08:00:00", wantTail: "20:00:00"},
		{name: "degenerate window", start: "08:00", end: "08:00", step: 30, wantLen: 1, wantHead: "08:00:00", wantTail: "08:00:00"},
		{name: "hour step", start: "09:00", end: "17:00", step: 60, wantLen: 9, wantHead: "09:00:00", wantTail: "17:00:00"},
		{name: "step not dividing window", start: "08:00", end: "09:10", step: 30, wantLen: 3, wantHead: "08:00:00", wantTail: "09:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := MakeSlots(tt.start, tt.end, tt.step)
			require.NoError(t, err)
			require.Len(t, slots, tt.wantLen)
			assert.Equal(t, tt.wantHead, slots[0])
			assert.Equal(t, tt.wantTail, slots[len(slots)-1])
		})
	}
}

func TestNewGridErrors(t *testing.T) {
	_, err := NewGrid("08:00", "20:00", 0)
	assert.Error(t, err)

	_, err = NewGrid("08:00", "20:00", -15)
	assert.Error(t, err)

	_, err = NewGrid("20:00", "08:00", 30)
	assert.Error(t, err, "overnight wraparound is not supported")

	_, err = NewGrid("8am", "20:00", 30)
	assert.Error(t, err)
}

func TestSlotWindow(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	window, err := SlotWindow(day, "10:30:00", 50)
	require.NoError(t, err)
	assert.Equal(t, day.Add(10*time.Hour+30*time.Minute), window.Start)
	assert.Equal(t, day.Add(11*time.Hour+20*time.Minute), window.End)

	_, err = SlotWindow(day, "25:00:00", 30)
	assert.Error(t, err)
}
