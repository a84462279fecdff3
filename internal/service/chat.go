package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"psylink/internal/domain"
	"psylink/internal/repository"
)

type ChatServiceImpl struct {
	repo     repository.ChatRepository
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewChatService(repo repository.ChatRepository, userRepo repository.UserRepository, logger *zap.Logger) *ChatServiceImpl {
	return &ChatServiceImpl{
		repo:     repo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// StartConversation открывает диалог с собеседником противоположной роли.
// Пара (пациент, специалист) уникальна: повторный вызов вернёт
// существующий диалог.
func (s *ChatServiceImpl) StartConversation(ctx context.Context, userID int64, role domain.UserRole, dto domain.StartConversationDTO) (*domain.Conversation, error) {
	counterpart, err := s.userRepo.GetByID(ctx, dto.UserID)
	if err != nil {
		return nil, errors.New("собеседник не найден")
	}

	var patientID, professionalID int64
	switch {
	case role == domain.UserRolePatient && counterpart.Role == domain.UserRoleProfessional:
		patientID, professionalID = userID, counterpart.ID
	case role == domain.UserRoleProfessional && counterpart.Role == domain.UserRolePatient:
		patientID, professionalID = counterpart.ID, userID
	default:
		return nil, errors.New("диалог возможен только между пациентом и специалистом")
	}

	conv, err := s.repo.GetOrCreateConversation(ctx, patientID, professionalID)
	if err != nil {
		s.logger.Error("ошибка создания диалога", zap.Error(err))
		return nil, errors.New("ошибка при создании диалога")
	}

	return conv, nil
}

func (s *ChatServiceImpl) ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	conversations, err := s.repo.ListConversations(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка получения списка диалогов", zap.Int64("userID", userID), zap.Error(err))
		return nil, errors.New("ошибка при получении списка диалогов")
	}
	return conversations, nil
}

func (s *ChatServiceImpl) SendMessage(ctx context.Context, senderID int64, dto domain.SendMessageDTO) (*domain.ChatMessage, error) {
	conv, err := s.repo.GetConversationByID(ctx, dto.ConversationID)
	if err != nil {
		return nil, errors.New("диалог не найден")
	}

	if conv.PatientID != senderID && conv.ProfessionalID != senderID {
		return nil, errors.New("нет доступа к диалогу")
	}

	msg, err := s.repo.CreateMessage(ctx, senderID, dto)
	if err != nil {
		s.logger.Error("ошибка отправки сообщения", zap.Int64("conversationID", dto.ConversationID), zap.Error(err))
		return nil, errors.New("ошибка при отправке сообщения")
	}

	return msg, nil
}

func (s *ChatServiceImpl) ListMessages(ctx context.Context, userID int64, filter domain.ChatMessageFilter) ([]domain.ChatMessage, error) {
	conv, err := s.repo.GetConversationByID(ctx, filter.ConversationID)
	if err != nil {
		return nil, errors.New("диалог не найден")
	}

	if conv.PatientID != userID && conv.ProfessionalID != userID {
		return nil, errors.New("нет доступа к диалогу")
	}

	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	messages, err := s.repo.ListMessages(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения сообщений", zap.Int64("conversationID", filter.ConversationID), zap.Error(err))
		return nil, errors.New("ошибка при получении сообщений")
	}

	return messages, nil
}

func (s *ChatServiceImpl) MarkRead(ctx context.Context, conversationID, readerID int64) error {
	conv, err := s.repo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return errors.New("диалог не найден")
	}

	if conv.PatientID != readerID && conv.ProfessionalID != readerID {
		return errors.New("нет доступа к диалогу")
	}

	if err := s.repo.MarkRead(ctx, conversationID, readerID); err != nil {
		s.logger.Error("ошибка отметки прочитанных", zap.Int64("conversationID", conversationID), zap.Error(err))
		return errors.New("ошибка при отметке сообщений")
	}

	return nil
}

func (s *ChatServiceImpl) CountUnread(ctx context.Context, userID int64) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка подсчёта непрочитанных", zap.Int64("userID", userID), zap.Error(err))
		return 0, errors.New("ошибка при подсчёте непрочитанных")
	}
	return count, nil
}
