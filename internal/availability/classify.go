package availability

import "time"

// SlotStatus — статус слота относительно занятых интервалов.
type SlotStatus string

const (
	StatusFree         SlotStatus = "free"
	StatusProfessional SlotStatus = "pro"
	StatusPatient      SlotStatus = "patient"
	StatusBoth         SlotStatus = "both"
)

// Classify определяет статус каждого слота сетки: окно слота шириной в шаг
// проверяется на пересечение с обоими наборами занятости. Слот, окно которого
// только касается занятого интервала, остается свободным.
func Classify(day time.Time, slots []string, stepMinutes int, busy BusySet) map[string]SlotStatus {
	statuses := make(map[string]SlotStatus, len(slots))

	for _, slot := range slots {
		window, err := SlotWindow(day, slot, stepMinutes)
		if err != nil {
			continue
		}

		hitPro := OverlapsAny(window, busy.Professional)
		hitPatient := OverlapsAny(window, busy.Patient)

		switch {
		case hitPro && hitPatient:
			statuses[slot] = StatusBoth
		case hitPro:
			statuses[slot] = StatusProfessional
		case hitPatient:
			statuses[slot] = StatusPatient
		default:
			statuses[slot] = StatusFree
		}
	}

	return statuses
}
