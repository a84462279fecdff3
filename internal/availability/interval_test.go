package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iv(t *testing.T, startHour, startMin, endHour, endMin int) Interval {
	t.Helper()
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	interval, err := NewInterval(
		day.Add(time.Duration(startHour)*time.Hour+time.Duration(startMin)*time.Minute),
		day.Add(time.Duration(endHour)*time.Hour+time.Duration(endMin)*time.Minute),
	)
	require.NoError(t, err)
	return interval
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{name: "partial overlap", a: iv(t, 10, 0, 11, 0), b: iv(t, 10, 30, 11, 30), want: true},
		{name: "containment", a: iv(t, 10, 0, 12, 0), b: iv(t, 10, 30, 11, 0), want: true},
		{name: "identical", a: iv(t, 10, 0, 11, 0), b: iv(t, 10, 0, 11, 0), want: true},
		{name: "disjoint", a: iv(t, 8, 0, 9, 0), b: iv(t, 10, 0, 11, 0), want: false},
		{name: "touching endpoints", a: iv(t, 10, 0, 10, 30), b: iv(t, 10, 30, 11, 0), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			assert.Equal(t, Overlaps(tt.a, tt.b), Overlaps(tt.b, tt.a), "overlap must be symmetric")
		})
	}
}

func TestNewIntervalRejectsEmpty(t *testing.T) {
	day := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	_, err := NewInterval(day, day)
	assert.Error(t, err)

	_, err = NewInterval(day.Add(time.Hour), day)
	assert.Error(t, err)
}

func TestOverlapsAny(t *testing.T) {
	busy := []Interval{
		iv(t, 9, 0, 9, 30),
		iv(t, 14, 0, 15, 0),
	}

	assert.True(t, OverlapsAny(iv(t, 14, 30, 15, 30), busy))
	assert.False(t, OverlapsAny(iv(t, 9, 30, 10, 0), busy), "abutting window stays free")
	assert.False(t, OverlapsAny(iv(t, 11, 0, 12, 0), nil))
}

func TestBusySetUnion(t *testing.T) {
	busy := BusySet{
		Professional: []Interval{iv(t, 9, 0, 10, 0)},
		Patient:      []Interval{iv(t, 12, 0, 13, 0)},
	}

	union := busy.Union()
	require.Len(t, union, 2)
	assert.Equal(t, busy.Professional[0], union[0])
	assert.Equal(t, busy.Patient[0], union[1])
}
