package service

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"psylink/config"
	"psylink/internal/repository"
)

// Jobs — фоновые задачи планировщика: завершение прошедших приёмов и
// напоминания о предстоящих сеансах.
type Jobs struct {
	cron            *cron.Cron
	appointmentRepo repository.AppointmentRepository
	userRepo        repository.UserRepository
	notification    NotificationService
	booking         config.BookingConfig
	jobsCfg         config.JobsConfig
	logger          *zap.Logger

	mu       sync.Mutex
	reminded map[int64]struct{}
}

func NewJobs(
	appointmentRepo repository.AppointmentRepository,
	userRepo repository.UserRepository,
	notification NotificationService,
	booking config.BookingConfig,
	jobsCfg config.JobsConfig,
	logger *zap.Logger,
) *Jobs {
	return &Jobs{
		cron:            cron.New(),
		appointmentRepo: appointmentRepo,
		userRepo:        userRepo,
		notification:    notification,
		booking:         booking,
		jobsCfg:         jobsCfg,
		logger:          logger,
		reminded:        make(map[int64]struct{}),
	}
}

func (j *Jobs) Start() error {
	if _, err := j.cron.AddFunc(j.jobsCfg.CompleteSpec, j.completePastAppointments); err != nil {
		return err
	}

	if _, err := j.cron.AddFunc(j.jobsCfg.ReminderSpec, j.sendReminders); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("планировщик фоновых задач запущен",
		zap.String("completeSpec", j.jobsCfg.CompleteSpec),
		zap.String("reminderSpec", j.jobsCfg.ReminderSpec))

	return nil
}

func (j *Jobs) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *Jobs) completePastAppointments() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := j.appointmentRepo.CompletePast(ctx, time.Now())
	if err != nil {
		j.logger.Error("ошибка завершения прошедших приёмов", zap.Error(err))
		return
	}

	if n > 0 {
		j.logger.Info("завершены прошедшие приёмы", zap.Int64("count", n))
	}
}

func (j *Jobs) sendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	now := time.Now()
	appointments, err := j.appointmentRepo.ListUpcoming(ctx, now, now.Add(j.booking.ReminderWindow))
	if err != nil {
		j.logger.Error("ошибка выборки предстоящих приёмов", zap.Error(err))
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	for _, appointment := range appointments {
		if _, ok := j.reminded[appointment.ID]; ok {
			continue
		}

		patient, err := j.userRepo.GetByID(ctx, appointment.PatientID)
		if err != nil {
			j.logger.Warn("пациент не найден для напоминания", zap.Int64("patientID", appointment.PatientID), zap.Error(err))
			continue
		}

		j.notification.NotifyAppointmentReminder(ctx, &appointment, patient.Email, patient.Phone)
		j.reminded[appointment.ID] = struct{}{}
	}

	// чистим отметки о прошедших сеансах, чтобы карта не росла бесконечно
	for id := range j.reminded {
		found := false
		for _, appointment := range appointments {
			if appointment.ID == id {
				found = true
				break
			}
		}
		if !found {
			delete(j.reminded, id)
		}
	}
}
