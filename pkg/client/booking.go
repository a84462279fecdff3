package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"psylink/internal/availability"
)

// Значения сетки по умолчанию: дневное окно 08:00–20:00 с шагом 30 минут.
const (
	DefaultDayStart    = "08:00"
	DefaultDayEnd      = "20:00"
	DefaultStepMinutes = 30
)

// ErrIncompleteForm возвращается из Submit, когда обязательные поля формы
// не заполнены. Проверка выполняется до любого сетевого вызова.
var ErrIncompleteForm = errors.New("форма записи заполнена не полностью")

// Draft — состояние формы записи. Date — полночь выбранной даты в часовом
// поясе сессии, SlotTime — время начала в формате "HH:MM:SS".
type Draft struct {
	ProfessionalID  int64
	Date            time.Time
	SlotTime        string
	DurationMinutes int
	Modality        string
	Reason          string
}

// BookingSession держит форму записи и производное от нее состояние:
// занятые интервалы и статусы слотов. Статусы пересчитываются при любом
// изменении формы, даже когда изменилось нерелевантное поле — пересчет
// дешев, а единый триггер проще выборочного.
type BookingSession struct {
	client  *Client
	session SessionContext
	grid    *availability.Grid
	loc     *time.Location
	logger  *zap.Logger

	mu       sync.Mutex
	draft    Draft
	busy     availability.BusySet
	statuses map[string]availability.SlotStatus

	// Монотонные номера запросов занятости: ответ применяется только если
	// он не старше уже примененного, иначе отбрасывается как устаревший.
	issued  uint64
	applied uint64
}

type BookingOption func(*BookingSession) error

// WithGrid заменяет сетку слотов по умолчанию.
func WithGrid(dayStart, dayEnd string, stepMinutes int) BookingOption {
	return func(s *BookingSession) error {
		grid, err := availability.NewGrid(dayStart, dayEnd, stepMinutes)
		if err != nil {
			return err
		}
		s.grid = grid
		return nil
	}
}

// WithLocation задает часовой пояс, в котором интерпретируются дата и время
// формы. По умолчанию — локальный пояс процесса.
func WithLocation(loc *time.Location) BookingOption {
	return func(s *BookingSession) error {
		s.loc = loc
		return nil
	}
}

func NewBookingSession(c *Client, session SessionContext, opts ...BookingOption) (*BookingSession, error) {
	grid, err := availability.NewGrid(DefaultDayStart, DefaultDayEnd, DefaultStepMinutes)
	if err != nil {
		return nil, err
	}

	s := &BookingSession{
		client:  c,
		session: session,
		grid:    grid,
		loc:     time.Local,
		logger:  c.logger,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.recompute()
	s.mu.Unlock()

	return s, nil
}

// Slots возвращает времена начала дневной сетки.
func (s *BookingSession) Slots() []string {
	return s.grid.Slots()
}

// Draft возвращает снимок текущего состояния формы.
func (s *BookingSession) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *BookingSession) SetProfessional(id int64) {
	s.mutate(func(d *Draft) { d.ProfessionalID = id })
}

// SetDate принимает любую метку времени нужного дня; хранится полночь этого
// дня в поясе сессии.
func (s *BookingSession) SetDate(date time.Time) {
	y, m, d := date.In(s.loc).Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	s.mutate(func(dr *Draft) { dr.Date = midnight })
}

func (s *BookingSession) SetSlot(slotTime string) {
	s.mutate(func(d *Draft) { d.SlotTime = slotTime })
}

func (s *BookingSession) SetDuration(minutes int) {
	s.mutate(func(d *Draft) { d.DurationMinutes = minutes })
}

func (s *BookingSession) SetModality(modality string) {
	s.mutate(func(d *Draft) { d.Modality = modality })
}

func (s *BookingSession) SetReason(reason string) {
	s.mutate(func(d *Draft) { d.Reason = reason })
}

// mutate применяет изменение формы и безусловно пересчитывает статусы.
func (s *BookingSession) mutate(fn func(*Draft)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.draft)
	s.recompute()
}

// RefreshBusy загружает занятость для выбранных профессионала и даты.
// Ошибка загрузки не прерывает работу: подставляются пустые наборы, и
// сетка показывается полностью свободной — сервер все равно отклонит
// конфликтующее бронирование при создании. Устаревшие ответы (выданные
// раньше уже примененного) отбрасываются.
func (s *BookingSession) RefreshBusy(ctx context.Context) {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	professionalID := s.draft.ProfessionalID
	date := s.draft.Date
	s.mu.Unlock()

	var busy availability.BusySet
	if professionalID > 0 && !date.IsZero() {
		fetched, err := s.client.GetBusy(ctx, s.session, professionalID, date)
		if err != nil {
			s.logger.Warn("не удалось загрузить занятость, показываем все слоты свободными",
				zap.Int64("professional_id", professionalID),
				zap.Error(err),
			)
		} else {
			busy = fetched
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.applied {
		return
	}

	s.applied = seq
	s.busy = busy
	s.recompute()
}

// SlotStatuses возвращает копию текущих статусов слотов.
func (s *BookingSession) SlotStatuses() map[string]availability.SlotStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make(map[string]availability.SlotStatus, len(s.statuses))
	for slot, status := range s.statuses {
		statuses[slot] = status
	}
	return statuses
}

// IsStartDisabled решает, можно ли выбрать слот как время начала при текущей
// длительности формы. При незаполненной дате или неположительной длительности
// выбор запрещен: в отличие от отображения сетки, шлюз отправки закрывается
// при неполных данных. Иначе окно [дата+слот, +длительность) проверяется
// на пересечение с объединением обоих наборов занятости.
func (s *BookingSession) IsStartDisabled(slotTime string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft.Date.IsZero() || s.draft.DurationMinutes <= 0 {
		return true
	}

	window, err := availability.SlotWindow(s.draft.Date, slotTime, s.draft.DurationMinutes)
	if err != nil {
		return true
	}

	return availability.OverlapsAny(window, s.busy.Union())
}

// Submit проверяет полноту формы и отправляет запрос на создание записи.
// Время начала сериализуется как ISO-8601 в UTC.
func (s *BookingSession) Submit(ctx context.Context) (*Appointment, error) {
	s.mu.Lock()
	draft := s.draft
	s.mu.Unlock()

	if draft.ProfessionalID <= 0 || draft.Date.IsZero() || draft.SlotTime == "" || draft.DurationMinutes <= 0 {
		return nil, ErrIncompleteForm
	}

	window, err := availability.SlotWindow(draft.Date, draft.SlotTime, draft.DurationMinutes)
	if err != nil {
		return nil, ErrIncompleteForm
	}

	return s.client.CreateAppointment(ctx, s.session, CreateAppointmentRequest{
		Professional:    draft.ProfessionalID,
		StartDatetime:   window.Start.UTC().Format(time.RFC3339),
		DurationMinutes: draft.DurationMinutes,
		Modality:        draft.Modality,
		Reason:          draft.Reason,
	})
}

// recompute пересчитывает статусы всех слотов. Вызывается под s.mu.
func (s *BookingSession) recompute() {
	day := s.draft.Date
	if day.IsZero() {
		day = time.Date(1, 1, 1, 0, 0, 0, 0, s.loc)
	}
	s.statuses = availability.Classify(day, s.grid.Slots(), s.grid.StepMinutes(), s.busy)
}
