package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"psylink/internal/domain"
	"psylink/internal/repository"
	"psylink/pkg/validator"
)

type TicketServiceImpl struct {
	repo         repository.TicketRepository
	notification NotificationService
	logger       *zap.Logger
}

func NewTicketService(repo repository.TicketRepository, notification NotificationService, logger *zap.Logger) *TicketServiceImpl {
	return &TicketServiceImpl{
		repo:         repo,
		notification: notification,
		logger:       logger,
	}
}

func (s *TicketServiceImpl) Create(ctx context.Context, userID *int64, dto domain.CreateTicketDTO) (int64, error) {
	if !validator.ValidateEmail(dto.Email) {
		return 0, errors.New("некорректный email")
	}

	dto.Name = validator.SanitizeString(dto.Name)
	dto.Subject = validator.SanitizeString(dto.Subject)

	id, err := s.repo.Create(ctx, userID, dto)
	if err != nil {
		s.logger.Error("ошибка создания обращения", zap.Error(err))
		return 0, errors.New("ошибка при создании обращения")
	}

	return id, nil
}

func (s *TicketServiceImpl) GetByID(ctx context.Context, id int64) (*domain.SupportTicket, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("обращение не найдено")
	}
	return ticket, nil
}

func (s *TicketServiceImpl) Reply(ctx context.Context, id int64, dto domain.ReplyTicketDTO) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return errors.New("обращение не найдено")
	}

	if err := s.repo.Reply(ctx, id, dto); err != nil {
		s.logger.Error("ошибка ответа на обращение", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при ответе на обращение")
	}

	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("обращение не прочитано после ответа", zap.Int64("id", id), zap.Error(err))
		return nil
	}

	go s.notification.NotifyTicketReply(context.WithoutCancel(ctx), ticket)

	return nil
}

func (s *TicketServiceImpl) List(ctx context.Context, filter domain.TicketFilter) ([]domain.SupportTicket, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	tickets, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка обращений", zap.Error(err))
		return nil, errors.New("ошибка при получении списка обращений")
	}

	return tickets, nil
}
