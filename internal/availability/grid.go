package availability

import (
	"errors"
	"fmt"
	"time"
)

// Grid — суточная сетка кандидатов времени начала с фиксированным шагом.
// Границы статичны (конфигурация), от занятых интервалов сетка не зависит.
type Grid struct {
	dayStart    int // минуты от полуночи
	dayEnd      int
	stepMinutes int
}

func NewGrid(dayStart, dayEnd string, stepMinutes int) (*Grid, error) {
	if stepMinutes <= 0 {
		return nil, errors.New("шаг сетки должен быть больше нуля")
	}

	start, err := parseHHMM(dayStart)
	if err != nil {
		return nil, fmt.Errorf("неверное время начала дня: %w", err)
	}

	end, err := parseHHMM(dayEnd)
	if err != nil {
		return nil, fmt.Errorf("неверное время конца дня: %w", err)
	}

	if start > end {
		return nil, errors.New("начало дня позже конца дня")
	}

	return &Grid{dayStart: start, dayEnd: end, stepMinutes: stepMinutes}, nil
}

func (g *Grid) StepMinutes() int {
	return g.stepMinutes
}

// Slots возвращает упорядоченные времена начала в формате "HH:MM:SS".
// Верхняя граница включается: курсор, равный концу дня, попадает в сетку.
func (g *Grid) Slots() []string {
	slots := make([]string, 0, (g.dayEnd-g.dayStart)/g.stepMinutes+1)
	for cur := g.dayStart; cur <= g.dayEnd; cur += g.stepMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d:00", cur/60, cur%60))
	}
	return slots
}

// MakeSlots — одноразовый вариант без конструирования Grid.
func MakeSlots(dayStart, dayEnd string, stepMinutes int) ([]string, error) {
	grid, err := NewGrid(dayStart, dayEnd, stepMinutes)
	if err != nil {
		return nil, err
	}
	return grid.Slots(), nil
}

// SlotWindow строит интервал [day+slot, day+slot+minutes) для слота "HH:MM:SS"
// в часовом поясе дня. day — полночь нужной даты.
func SlotWindow(day time.Time, slot string, minutes int) (Interval, error) {
	t, err := time.Parse("15:04:05", slot)
	if err != nil {
		return Interval{}, fmt.Errorf("неверный формат слота %q: %w", slot, err)
	}

	start := day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second)
	return FromStartDuration(start, minutes), nil
}

func parseHHMM(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
