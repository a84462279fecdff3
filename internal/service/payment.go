package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"go.uber.org/zap"

	"psylink/config"
	"psylink/internal/domain"
	"psylink/internal/repository"
)

type PaymentServiceImpl struct {
	appointmentRepo repository.AppointmentRepository
	cfg             config.StripeConfig
	logger          *zap.Logger
}

func NewPaymentService(appointmentRepo repository.AppointmentRepository, cfg config.StripeConfig, logger *zap.Logger) *PaymentServiceImpl {
	stripe.Key = cfg.SecretKey

	return &PaymentServiceImpl{
		appointmentRepo: appointmentRepo,
		cfg:             cfg,
		logger:          logger,
	}
}

// CreateCheckoutSession создает платёжную сессию Stripe для записи на приём
// и возвращает URL страницы оплаты.
func (s *PaymentServiceImpl) CreateCheckoutSession(ctx context.Context, appointmentID, patientID int64) (string, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return "", errors.New("запись не найдена")
	}

	if appointment.PatientID != patientID {
		return "", errors.New("нет доступа к записи")
	}

	if appointment.Status != domain.AppointmentStatusScheduled {
		return "", errors.New("оплатить можно только запланированную запись")
	}

	if appointment.PaymentID != nil {
		return "", errors.New("запись уже оплачена")
	}

	description := fmt.Sprintf("Сеанс: %s, %s", appointment.ProfessionalName, appointment.StartDatetime.Format("02.01.2006 15:04"))
	amount := s.cfg.SessionPriceMin * int64(appointment.DurationMinutes)

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(s.cfg.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
					UnitAmount: stripe.Int64(amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		ClientReferenceID: stripe.String(fmt.Sprintf("%d", appointmentID)),
	}

	sess, err := session.New(params)
	if err != nil {
		s.logger.Error("ошибка создания платёжной сессии", zap.Int64("appointmentID", appointmentID), zap.Error(err))
		return "", errors.New("ошибка при создании платёжной сессии")
	}

	return sess.URL, nil
}

// ConfirmPayment сохраняет идентификатор платежа у записи. Вызывается из
// обработчика вебхука checkout.session.completed.
func (s *PaymentServiceImpl) ConfirmPayment(ctx context.Context, appointmentID int64, paymentID string) error {
	if _, err := s.appointmentRepo.GetByID(ctx, appointmentID); err != nil {
		return errors.New("запись не найдена")
	}

	dto := domain.UpdateAppointmentDTO{
		PaymentID: &paymentID,
	}

	if err := s.appointmentRepo.Update(ctx, appointmentID, dto); err != nil {
		s.logger.Error("ошибка сохранения платежа", zap.Int64("appointmentID", appointmentID), zap.Error(err))
		return errors.New("ошибка при подтверждении оплаты")
	}

	return nil
}
