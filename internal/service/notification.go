package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"psylink/config"
	"psylink/internal/domain"
)

type NotificationServiceImpl struct {
	sendgridCfg config.SendGridConfig
	smsClient   *twilio.RestClient
	twilioCfg   config.TwilioConfig
	logger      *zap.Logger
}

func NewNotificationService(sendgridCfg config.SendGridConfig, twilioCfg config.TwilioConfig, logger *zap.Logger) *NotificationServiceImpl {
	var smsClient *twilio.RestClient
	if twilioCfg.AccountSID != "" && twilioCfg.AuthToken != "" {
		smsClient = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username:   twilioCfg.AccountSID,
			Password:   twilioCfg.AuthToken,
			AccountSid: twilioCfg.AccountSID,
		})
	}

	return &NotificationServiceImpl{
		sendgridCfg: sendgridCfg,
		smsClient:   smsClient,
		twilioCfg:   twilioCfg,
		logger:      logger,
	}
}

func (s *NotificationServiceImpl) SendEmail(ctx context.Context, to, subject, body string) error {
	if s.sendgridCfg.APIKey == "" {
		s.logger.Warn("SendGrid не настроен, письмо не отправлено", zap.String("to", to))
		return errors.New("почтовый сервис не настроен")
	}

	from := mail.NewEmail(s.sendgridCfg.FromName, s.sendgridCfg.FromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), body, body)

	client := sendgrid.NewSendClient(s.sendgridCfg.APIKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("ошибка отправки письма: %w", err)
	}

	if response.StatusCode >= 300 {
		return fmt.Errorf("SendGrid вернул статус %d: %s", response.StatusCode, response.Body)
	}

	return nil
}

func (s *NotificationServiceImpl) SendSMS(ctx context.Context, to, body string) error {
	if s.smsClient == nil {
		s.logger.Warn("Twilio не настроен, SMS не отправлено", zap.String("to", to))
		return errors.New("SMS сервис не настроен")
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.twilioCfg.FromNumber)
	params.SetBody(body)

	if _, err := s.smsClient.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("ошибка отправки SMS: %w", err)
	}

	return nil
}

// NotifyAppointmentCreated уведомляет обе стороны о новой записи.
// Сбой доставки логируется и не влияет на саму запись.
func (s *NotificationServiceImpl) NotifyAppointmentCreated(ctx context.Context, appointment *domain.Appointment, patientEmail, professionalEmail string) {
	when := appointment.StartDatetime.Format("02.01.2006 15:04")

	patientBody := fmt.Sprintf("Ваша запись к %s на %s подтверждена. Длительность: %d мин.",
		appointment.ProfessionalName, when, appointment.DurationMinutes)
	if appointment.JoinURL != nil {
		patientBody += " Ссылка на сеанс: " + *appointment.JoinURL
	}

	if err := s.SendEmail(ctx, patientEmail, "Запись подтверждена", patientBody); err != nil {
		s.logger.Warn("не удалось отправить письмо пациенту", zap.Int64("appointmentID", appointment.ID), zap.Error(err))
	}

	professionalBody := fmt.Sprintf("Новая запись: %s, %s, %d мин.",
		appointment.PatientName, when, appointment.DurationMinutes)

	if err := s.SendEmail(ctx, professionalEmail, "Новая запись на приём", professionalBody); err != nil {
		s.logger.Warn("не удалось отправить письмо специалисту", zap.Int64("appointmentID", appointment.ID), zap.Error(err))
	}
}

// NotifyAppointmentReminder отправляет напоминание пациенту: письмо и,
// если указан телефон, SMS.
func (s *NotificationServiceImpl) NotifyAppointmentReminder(ctx context.Context, appointment *domain.Appointment, patientEmail, patientPhone string) {
	when := appointment.StartDatetime.Format("02.01.2006 15:04")
	body := fmt.Sprintf("Напоминание: сеанс с %s в %s.", appointment.ProfessionalName, when)
	if appointment.JoinURL != nil {
		body += " Ссылка: " + *appointment.JoinURL
	}

	if err := s.SendEmail(ctx, patientEmail, "Напоминание о сеансе", body); err != nil {
		s.logger.Warn("не удалось отправить напоминание по почте", zap.Int64("appointmentID", appointment.ID), zap.Error(err))
	}

	if patientPhone != "" {
		if err := s.SendSMS(ctx, patientPhone, body); err != nil {
			s.logger.Warn("не удалось отправить напоминание по SMS", zap.Int64("appointmentID", appointment.ID), zap.Error(err))
		}
	}
}

func (s *NotificationServiceImpl) NotifyTicketReply(ctx context.Context, ticket *domain.SupportTicket) {
	if ticket.Reply == nil {
		return
	}

	body := fmt.Sprintf("Здравствуйте, %s!\n\nОтвет на ваше обращение «%s»:\n\n%s", ticket.Name, ticket.Subject, *ticket.Reply)

	if err := s.SendEmail(ctx, ticket.Email, "Ответ службы поддержки", body); err != nil {
		s.logger.Warn("не удалось отправить ответ на обращение", zap.Int64("ticketID", ticket.ID), zap.Error(err))
	}
}
