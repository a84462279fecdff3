package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"psylink/config"
	"psylink/internal/availability"
	"psylink/internal/domain"
	"psylink/internal/repository"
)

type fakeUserRepo struct {
	repository.UserRepository
	user *domain.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, errors.New("не найден")
	}
	return f.user, nil
}

type fakeProfessionalRepo struct {
	repository.ProfessionalRepository
	professional *domain.Professional
	incremented  int
}

func (f *fakeProfessionalRepo) GetByID(ctx context.Context, id int64) (*domain.Professional, error) {
	if f.professional == nil || f.professional.ID != id {
		return nil, errors.New("не найден")
	}
	return f.professional, nil
}

func (f *fakeProfessionalRepo) IncrementCasesAttended(ctx context.Context, id int64) error {
	f.incremented++
	return nil
}

type fakeAppointmentRepo struct {
	repository.AppointmentRepository

	conflict    bool
	conflictErr error
	busy        *domain.BusyResponse

	stored        map[int64]*domain.Appointment
	nextID        int64
	createCalls   int
	lastExcludeID int64
	joinURLs      map[int64]string
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		stored:   map[int64]*domain.Appointment{},
		nextID:   1,
		joinURLs: map[int64]string{},
	}
}

func (f *fakeAppointmentRepo) HasConflict(ctx context.Context, professionalID, patientID int64, start, end time.Time, excludeID int64) (bool, error) {
	f.lastExcludeID = excludeID
	if f.conflictErr != nil {
		return false, f.conflictErr
	}
	return f.conflict, nil
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, patientID int64, dto domain.CreateAppointmentDTO) (int64, error) {
	f.createCalls++
	id := f.nextID
	f.nextID++
	f.stored[id] = &domain.Appointment{
		ID:              id,
		PatientID:       patientID,
		ProfessionalID:  dto.ProfessionalID,
		StartDatetime:   dto.StartDatetime,
		DurationMinutes: dto.DurationMinutes,
		Status:          domain.AppointmentStatusScheduled,
		Modality:        dto.Modality,
	}
	return id, nil
}

func (f *fakeAppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	appointment, ok := f.stored[id]
	if !ok {
		return nil, errors.New("не найдена")
	}
	copied := *appointment
	return &copied, nil
}

func (f *fakeAppointmentRepo) Update(ctx context.Context, id int64, dto domain.UpdateAppointmentDTO) error {
	appointment, ok := f.stored[id]
	if !ok {
		return errors.New("не найдена")
	}
	if dto.Status != nil {
		appointment.Status = *dto.Status
	}
	if dto.StartDatetime != nil {
		appointment.StartDatetime = *dto.StartDatetime
	}
	if dto.DurationMinutes != nil {
		appointment.DurationMinutes = *dto.DurationMinutes
	}
	return nil
}

func (f *fakeAppointmentRepo) UpdateJoinURL(ctx context.Context, id int64, joinURL string) error {
	f.joinURLs[id] = joinURL
	return nil
}

func (f *fakeAppointmentRepo) GetBusyIntervals(ctx context.Context, professionalID, patientID int64, day time.Time) (*domain.BusyResponse, error) {
	if f.busy == nil {
		return &domain.BusyResponse{Professional: []domain.BusyInterval{}, Patient: []domain.BusyInterval{}}, nil
	}
	return f.busy, nil
}

type fakeVideo struct {
	joinURL string
	err     error
	calls   int
}

func (f *fakeVideo) CreateMeeting(ctx context.Context, topic string, start time.Time, durationMinutes int) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.joinURL, nil
}

type fakeNotification struct{}

func (fakeNotification) SendEmail(ctx context.Context, to, subject, body string) error { return nil }
func (fakeNotification) SendSMS(ctx context.Context, to, body string) error            { return nil }
func (fakeNotification) NotifyAppointmentCreated(ctx context.Context, appointment *domain.Appointment, patientEmail, professionalEmail string) {
}
func (fakeNotification) NotifyAppointmentReminder(ctx context.Context, appointment *domain.Appointment, patientEmail, patientPhone string) {
}
func (fakeNotification) NotifyTicketReply(ctx context.Context, ticket *domain.SupportTicket) {}

func testBookingConfig() config.BookingConfig {
	return config.BookingConfig{
		DayStart:           "08:00",
		DayEnd:             "20:00",
		StepMinutes:        30,
		DefaultDurationMin: 50,
		MinDurationMin:     15,
		MaxDurationMin:     240,
	}
}

type appointmentFixture struct {
	svc   *AppointmentServiceImpl
	repo  *fakeAppointmentRepo
	pros  *fakeProfessionalRepo
	video *fakeVideo
}

func newAppointmentFixture(modality domain.WorkModality) *appointmentFixture {
	repo := newFakeAppointmentRepo()
	pros := &fakeProfessionalRepo{professional: &domain.Professional{
		ID:           42,
		UserID:       100,
		WorkModality: modality,
		Email:        "pro@example.com",
	}}
	users := &fakeUserRepo{user: &domain.User{ID: 7, Email: "patient@example.com"}}
	video := &fakeVideo{joinURL: "https://zoom.us/j/123"}

	svc := NewAppointmentService(repo, pros, users, video, fakeNotification{}, testBookingConfig(), zap.NewNop())
	return &appointmentFixture{svc: svc, repo: repo, pros: pros, video: video}
}

func TestAppointmentCreate(t *testing.T) {
	fx := newAppointmentFixture(domain.WorkModalityMixed)
	start := time.Now().Add(24 * time.Hour)

	appointment, err := fx.svc.Create(context.Background(), 7, domain.CreateAppointmentDTO{
		ProfessionalID: 42,
		StartDatetime:  start,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), appointment.PatientID)
	assert.Equal(t, 50, appointment.DurationMinutes, "zero duration falls back to the default")
	assert.Equal(t, domain.AppointmentStatusScheduled, appointment.Status)
	assert.Equal(t, 0, fx.video.calls, "no meeting without online modality")
}

func TestAppointmentCreateFieldErrors(t *testing.T) {
	start := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name        string
		proModality domain.WorkModality
		dto         domain.CreateAppointmentDTO
		wantField   string
	}{
		{
			name:        "unknown professional",
			proModality: domain.WorkModalityMixed,
			dto:         domain.CreateAppointmentDTO{ProfessionalID: 99, StartDatetime: start},
			wantField:   "professional",
		},
		{
			name:        "start in the past",
			proModality: domain.WorkModalityMixed,
			dto:         domain.CreateAppointmentDTO{ProfessionalID: 42, StartDatetime: time.Now().Add(-time.Hour)},
			wantField:   "start_datetime",
		},
		{
			name:        "duration out of bounds",
			proModality: domain.WorkModalityMixed,
			dto:         domain.CreateAppointmentDTO{ProfessionalID: 42, StartDatetime: start, DurationMinutes: 500},
			wantField:   "duration_minutes",
		},
		{
			name:        "modality not offered",
			proModality: domain.WorkModalityInPerson,
			dto: domain.CreateAppointmentDTO{
				ProfessionalID: 42,
				StartDatetime:  start,
				Modality:       PointerTo(domain.WorkModalityOnline),
			},
			wantField: "modality",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newAppointmentFixture(tt.proModality)

			_, err := fx.svc.Create(context.Background(), 7, tt.dto)
			require.Error(t, err)

			var fieldErrs domain.FieldErrors
			require.True(t, errors.As(err, &fieldErrs))
			assert.Contains(t, fieldErrs, tt.wantField)
			assert.Equal(t, 0, fx.repo.createCalls)
		})
	}
}

func TestAppointmentCreateConflict(t *testing.T) {
	fx := newAppointmentFixture(domain.WorkModalityMixed)
	fx.repo.conflict = true

	_, err := fx.svc.Create(context.Background(), 7, domain.CreateAppointmentDTO{
		ProfessionalID: 42,
		StartDatetime:  time.Now().Add(24 * time.Hour),
	})
	require.Error(t, err)

	var fieldErrs domain.FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Contains(t, fieldErrs, "start_datetime")
	assert.Equal(t, 0, fx.repo.createCalls)
}

func TestAppointmentCreateConflictCheckFailureBlocks(t *testing.T) {
	fx := newAppointmentFixture(domain.WorkModalityMixed)
	fx.repo.conflictErr = errors.New("база недоступна")

	_, err := fx.svc.Create(context.Background(), 7, domain.CreateAppointmentDTO{
		ProfessionalID: 42,
		StartDatetime:  time.Now().Add(24 * time.Hour),
	})
	require.Error(t, err)

	var fieldErrs domain.FieldErrors
	assert.False(t, errors.As(err, &fieldErrs), "infrastructure failure is not a field error")
	assert.Equal(t, 0, fx.repo.createCalls, "creation is blocked when the conflict check is unavailable")
}

func TestAppointmentCreateOnlineAttachesMeeting(t *testing.T) {
	fx := newAppointmentFixture(domain.WorkModalityOnline)

	appointment, err := fx.svc.Create(context.Background(), 7, domain.CreateAppointmentDTO{
		ProfessionalID: 42,
		StartDatetime:  time.Now().Add(24 * time.Hour),
		Modality:       PointerTo(domain.WorkModalityOnline),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, fx.video.calls)
	require.NotNil(t, appointment.JoinURL)
	assert.Equal(t, "https://zoom.us/j/123", *appointment.JoinURL)
	assert.Equal(t, "https://zoom.us/j/123", fx.repo.joinURLs[appointment.ID])
}

func TestAppointmentCreateMeetingFailureDoesNotBlock(t *testing.T) {
	fx := newAppointmentFixture(domain.WorkModalityOnline)
	fx.video.err = errors.New("zoom недоступен")

	appointment, err := fx.svc.Create(context.Background(), 7, domain.CreateAppointmentDTO{
		ProfessionalID: 42,
		StartDatetime:  time.Now().Add(24 * time.Hour),
		Modality:       PointerTo(domain.WorkModalityOnline),
	})
	require.NoError(t, err, "meeting creation is best-effort")
	assert.Nil(t, appointment.JoinURL)
}

func TestAppointmentUpdateReschedule(t *testing.T) {
	fx := newAppointmentFixture(domain.WorkModalityMixed)

	created, err := fx.svc.Create(context.Background(), 7, domain.CreateAppointmentDTO{
		ProfessionalID: 42,
		StartDatetime:  time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	newStart := time.Now().Add(48 * time.Hour)
	updated, err := fx.svc.Update(context.Background(), created.ID, domain.UpdateAppointmentDTO{
		StartDatetime: &newStart,
	})
	require.NoError(t, err)

	assert.True(t, updated.StartDatetime.Equal(newStart))
	assert.Equal(t, created.ID, fx.repo.lastExcludeID, "conflict check must exclude the appointment itself")
}

func TestAppointmentUpdateCompletedIncrementsCases(t *testing.T) {
	fx := newAppointmentFixture(domain.WorkModalityMixed)

	created, err := fx.svc.Create(context.Background(), 7, domain.CreateAppointmentDTO{
		ProfessionalID: 42,
		StartDatetime:  time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = fx.svc.Update(context.Background(), created.ID, domain.UpdateAppointmentDTO{
		Status: PointerTo(domain.AppointmentStatusCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fx.pros.incremented)
}

func TestAppointmentCancelIdempotent(t *testing.T) {
	fx := newAppointmentFixture(domain.WorkModalityMixed)

	created, err := fx.svc.Create(context.Background(), 7, domain.CreateAppointmentDTO{
		ProfessionalID: 42,
		StartDatetime:  time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, fx.svc.Cancel(context.Background(), created.ID))
	require.NoError(t, fx.svc.Cancel(context.Background(), created.ID), "cancelling twice is a no-op")

	stored, err := fx.svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusCancelled, stored.Status)
}

func TestAppointmentGetSlotStatuses(t *testing.T) {
	fx := newAppointmentFixture(domain.WorkModalityMixed)
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	fx.repo.busy = &domain.BusyResponse{
		Professional: []domain.BusyInterval{
			{ID: 1, Start: day.Add(10 * time.Hour), End: day.Add(10*time.Hour + 30*time.Minute)},
		},
		Patient: []domain.BusyInterval{
			{ID: 2, Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour)},
		},
	}

	statuses, err := fx.svc.GetSlotStatuses(context.Background(), 42, 7, day)
	require.NoError(t, err)
	require.Len(t, statuses, 25)

	assert.Equal(t, availability.StatusBoth, statuses["10:00:00"])
	assert.Equal(t, availability.StatusPatient, statuses["10:30:00"])
	assert.Equal(t, availability.StatusFree, statuses["11:00:00"])
	assert.Equal(t, availability.StatusFree, statuses["09:30:00"])
}
