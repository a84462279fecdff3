package availability

import (
	"fmt"
	"time"
)

// Interval — полуоткрытый интервал времени [Start, End): начало включается,
// конец исключается. Инвариант: Start < End.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("некорректный интервал: начало %s не раньше конца %s", start, end)
	}
	return Interval{Start: start, End: end}, nil
}

// FromStartDuration строит интервал [start, start+minutes).
func FromStartDuration(start time.Time, minutes int) Interval {
	return Interval{Start: start, End: start.Add(time.Duration(minutes) * time.Minute)}
}

// Overlaps проверяет пересечение двух полуоткрытых интервалов.
// Касание границ (a.End == b.Start) пересечением не считается.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// OverlapsAny возвращает true, если window пересекается хотя бы с одним
// интервалом из набора.
func OverlapsAny(window Interval, intervals []Interval) bool {
	for _, iv := range intervals {
		if Overlaps(window, iv) {
			return true
		}
	}
	return false
}

// BusySet — занятые интервалы для пары (профессионал, дата): собственные
// обязательства профессионала и обязательства текущего пациента. Набор
// целиком заменяется при каждой загрузке.
type BusySet struct {
	Professional []Interval `json:"professional"`
	Patient      []Interval `json:"patient"`
}

// Union возвращает объединенный срез обоих наборов.
func (b BusySet) Union() []Interval {
	union := make([]Interval, 0, len(b.Professional)+len(b.Patient))
	union = append(union, b.Professional...)
	union = append(union, b.Patient...)
	return union
}
