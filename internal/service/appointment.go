package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"psylink/config"
	"psylink/internal/availability"
	"psylink/internal/domain"
	"psylink/internal/repository"
)

type AppointmentServiceImpl struct {
	repo             repository.AppointmentRepository
	professionalRepo repository.ProfessionalRepository
	userRepo         repository.UserRepository
	video            VideoService
	notification     NotificationService
	booking          config.BookingConfig
	logger           *zap.Logger
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	professionalRepo repository.ProfessionalRepository,
	userRepo repository.UserRepository,
	video VideoService,
	notification NotificationService,
	booking config.BookingConfig,
	logger *zap.Logger,
) *AppointmentServiceImpl {
	return &AppointmentServiceImpl{
		repo:             repo,
		professionalRepo: professionalRepo,
		userRepo:         userRepo,
		video:            video,
		notification:     notification,
		booking:          booking,
		logger:           logger,
	}
}

// Create создает запись на приём. Любая ошибка валидации или недоступность
// проверки пересечений блокирует создание: сомнение трактуется в пользу
// отказа. Ошибки возвращаются с привязкой к полям запроса.
func (s *AppointmentServiceImpl) Create(ctx context.Context, patientID int64, dto domain.CreateAppointmentDTO) (*domain.Appointment, error) {
	fieldErrs := domain.FieldErrors{}

	patient, err := s.userRepo.GetByID(ctx, patientID)
	if err != nil {
		s.logger.Error("пациент не найден при создании записи", zap.Int64("patientID", patientID), zap.Error(err))
		return nil, errors.New("пациент не найден")
	}

	professional, err := s.professionalRepo.GetByID(ctx, dto.ProfessionalID)
	if err != nil {
		fieldErrs.Add("professional", "специалист не найден")
		return nil, fieldErrs
	}

	if dto.DurationMinutes == 0 {
		dto.DurationMinutes = s.booking.DefaultDurationMin
	}

	if dto.DurationMinutes < s.booking.MinDurationMin || dto.DurationMinutes > s.booking.MaxDurationMin {
		fieldErrs.Add("duration_minutes", "длительность сеанса вне допустимых границ")
	}

	if !dto.StartDatetime.After(time.Now()) {
		fieldErrs.Add("start_datetime", "время начала должно быть в будущем")
	}

	if dto.Modality != nil && professional.WorkModality != domain.WorkModalityMixed && *dto.Modality != professional.WorkModality {
		fieldErrs.Add("modality", "специалист не принимает в этом формате")
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	end := dto.StartDatetime.Add(time.Duration(dto.DurationMinutes) * time.Minute)
	conflict, err := s.repo.HasConflict(ctx, dto.ProfessionalID, patientID, dto.StartDatetime, end, 0)
	if err != nil {
		s.logger.Error("ошибка проверки пересечений", zap.Error(err))
		return nil, errors.New("не удалось проверить доступность времени")
	}
	if conflict {
		fieldErrs.Add("start_datetime", "выбранное время уже занято")
		return nil, fieldErrs
	}

	id, err := s.repo.Create(ctx, patientID, dto)
	if err != nil {
		s.logger.Error("ошибка создания записи", zap.Error(err))
		return nil, errors.New("ошибка при создании записи")
	}

	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("запись создана, но не прочитана", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("ошибка при создании записи")
	}

	if dto.Modality != nil && *dto.Modality == domain.WorkModalityOnline {
		s.attachMeeting(ctx, appointment)
	}

	go s.notification.NotifyAppointmentCreated(context.WithoutCancel(ctx), appointment, patient.Email, professional.Email)

	return appointment, nil
}

// attachMeeting создает видеовстречу и сохраняет ссылку. Сбой не отменяет
// запись: ссылку можно добавить позже вручную.
func (s *AppointmentServiceImpl) attachMeeting(ctx context.Context, appointment *domain.Appointment) {
	topic := "Сеанс: " + appointment.ProfessionalName
	joinURL, err := s.video.CreateMeeting(ctx, topic, appointment.StartDatetime, appointment.DurationMinutes)
	if err != nil {
		s.logger.Warn("не удалось создать видеовстречу", zap.Int64("appointmentID", appointment.ID), zap.Error(err))
		return
	}

	if err := s.repo.UpdateJoinURL(ctx, appointment.ID, joinURL); err != nil {
		s.logger.Warn("не удалось сохранить ссылку на видеовстречу", zap.Int64("appointmentID", appointment.ID), zap.Error(err))
		return
	}

	appointment.JoinURL = &joinURL
}

func (s *AppointmentServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("запись не найдена", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("запись не найдена")
	}
	return appointment, nil
}

func (s *AppointmentServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateAppointmentDTO) (*domain.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("запись не найдена")
	}

	if appointment.Status != domain.AppointmentStatusScheduled && dto.StartDatetime != nil {
		return nil, errors.New("перенести можно только запланированную запись")
	}

	fieldErrs := domain.FieldErrors{}

	start := appointment.StartDatetime
	duration := appointment.DurationMinutes

	if dto.StartDatetime != nil {
		start = *dto.StartDatetime
		if !start.After(time.Now()) {
			fieldErrs.Add("start_datetime", "время начала должно быть в будущем")
		}
	}

	if dto.DurationMinutes != nil {
		duration = *dto.DurationMinutes
		if duration < s.booking.MinDurationMin || duration > s.booking.MaxDurationMin {
			fieldErrs.Add("duration_minutes", "длительность сеанса вне допустимых границ")
		}
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	if dto.StartDatetime != nil || dto.DurationMinutes != nil {
		end := start.Add(time.Duration(duration) * time.Minute)
		conflict, err := s.repo.HasConflict(ctx, appointment.ProfessionalID, appointment.PatientID, start, end, id)
		if err != nil {
			s.logger.Error("ошибка проверки пересечений", zap.Error(err))
			return nil, errors.New("не удалось проверить доступность времени")
		}
		if conflict {
			fieldErrs.Add("start_datetime", "выбранное время уже занято")
			return nil, fieldErrs
		}
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления записи", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("ошибка при обновлении записи")
	}

	if dto.Status != nil && *dto.Status == domain.AppointmentStatusCompleted && appointment.Status != domain.AppointmentStatusCompleted {
		if err := s.professionalRepo.IncrementCasesAttended(ctx, appointment.ProfessionalID); err != nil {
			s.logger.Warn("не удалось обновить счётчик приёмов", zap.Int64("professionalID", appointment.ProfessionalID), zap.Error(err))
		}
	}

	return s.repo.GetByID(ctx, id)
}

func (s *AppointmentServiceImpl) Cancel(ctx context.Context, id int64) error {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return errors.New("запись не найдена")
	}

	if appointment.Status == domain.AppointmentStatusCancelled {
		return nil
	}

	dto := domain.UpdateAppointmentDTO{
		Status: PointerTo(domain.AppointmentStatusCancelled),
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка отмены записи", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при отмене записи")
	}

	return nil
}

func (s *AppointmentServiceImpl) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	appointments, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка записей", zap.Error(err))
		return nil, 0, errors.New("ошибка при получении списка записей")
	}

	count, err := s.repo.CountByFilter(ctx, filter)
	if err != nil {
		s.logger.Warn("ошибка подсчёта записей", zap.Error(err))
		return appointments, len(appointments), nil
	}

	return appointments, count, nil
}

func (s *AppointmentServiceImpl) GetBusy(ctx context.Context, professionalID, patientID int64, day time.Time) (*domain.BusyResponse, error) {
	if _, err := s.professionalRepo.GetByID(ctx, professionalID); err != nil {
		return nil, errors.New("специалист не найден")
	}

	busy, err := s.repo.GetBusyIntervals(ctx, professionalID, patientID, day)
	if err != nil {
		s.logger.Error("ошибка получения занятости", zap.Int64("professionalID", professionalID), zap.Error(err))
		return nil, errors.New("ошибка при получении занятости")
	}

	return busy, nil
}

// GetSlotStatuses возвращает статус каждого слота дневной сетки для пары
// (специалист, пациент): свободен, занят специалистом, занят пациентом
// или обоими.
func (s *AppointmentServiceImpl) GetSlotStatuses(ctx context.Context, professionalID, patientID int64, day time.Time) (map[string]availability.SlotStatus, error) {
	busy, err := s.GetBusy(ctx, professionalID, patientID, day)
	if err != nil {
		return nil, err
	}

	slots, err := availability.MakeSlots(s.booking.DayStart, s.booking.DayEnd, s.booking.StepMinutes)
	if err != nil {
		s.logger.Error("некорректная конфигурация сетки слотов", zap.Error(err))
		return nil, errors.New("ошибка конфигурации сетки слотов")
	}

	busySet := availability.BusySet{
		Professional: toIntervals(busy.Professional),
		Patient:      toIntervals(busy.Patient),
	}

	return availability.Classify(day, slots, s.booking.StepMinutes, busySet), nil
}

func toIntervals(busy []domain.BusyInterval) []availability.Interval {
	intervals := make([]availability.Interval, 0, len(busy))
	for _, b := range busy {
		intervals = append(intervals, availability.Interval{Start: b.Start, End: b.End})
	}
	return intervals
}
