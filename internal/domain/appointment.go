package domain

import (
	"strings"
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	ID              int64             `json:"id"`
	PatientID       int64             `json:"patient"`
	ProfessionalID  int64             `json:"professional"`
	StartDatetime   time.Time         `json:"start_datetime"`
	DurationMinutes int               `json:"duration_minutes"`
	Status          AppointmentStatus `json:"status"`
	Modality        *WorkModality     `json:"modality,omitempty"`
	Reason          string            `json:"reason,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	PaymentID       *string           `json:"payment_id,omitempty"`
	JoinURL         *string           `json:"join_url,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`

	// Заполняется джойном с users
	PatientName      string `json:"patient_name,omitempty"`
	ProfessionalName string `json:"professional_name,omitempty"`
}

// EndDatetime — конец сеанса, производное поле: начало плюс длительность.
func (a *Appointment) EndDatetime() time.Time {
	return a.StartDatetime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

type CreateAppointmentDTO struct {
	ProfessionalID  int64         `json:"professional" binding:"required"`
	StartDatetime   time.Time     `json:"start_datetime" binding:"required"`
	DurationMinutes int           `json:"duration_minutes"`
	Modality        *WorkModality `json:"modality" binding:"omitempty,oneof=in_person online mixed"`
	Reason          string        `json:"reason" binding:"omitempty,max=255"`
}

type UpdateAppointmentDTO struct {
	Status          *AppointmentStatus `json:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	StartDatetime   *time.Time         `json:"start_datetime"`
	DurationMinutes *int               `json:"duration_minutes"`
	Notes           *string            `json:"notes"`
	PaymentID       *string            `json:"payment_id"`
}

type AppointmentFilter struct {
	PatientID      *int64             `json:"patient_id"`
	ProfessionalID *int64             `json:"professional_id"`
	Status         *AppointmentStatus `json:"status"`
	ExcludeStatus  *AppointmentStatus `json:"exclude_status"`
	StartDate      *time.Time         `json:"start_date"`
	EndDate        *time.Time         `json:"end_date"`
	Limit          int                `json:"limit"`
	Offset         int                `json:"offset"`
}

// BusyInterval — занятый интервал в ответе эндпоинта занятости.
type BusyInterval struct {
	ID    int64     `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BusyResponse — занятость на (профессионал, дата): интервалы самого
// профессионала и интервалы спрашивающего пациента.
type BusyResponse struct {
	Professional []BusyInterval `json:"professional"`
	Patient      []BusyInterval `json:"patient"`
}

// FieldErrors — ошибки валидации по полям, в стиле ответов API бронирования.
// Ключ — имя поля ("professional", "start_datetime", ...), значение — список
// сообщений; общие ошибки кладутся под ключ "non_field_errors".
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msgs := range e {
		parts = append(parts, field+": "+strings.Join(msgs, "; "))
	}
	return strings.Join(parts, ", ")
}

func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}
