package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"psylink/internal/domain"
)

type ChatRepo struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{
		db: db,
	}
}

func (r *ChatRepo) GetOrCreateConversation(ctx context.Context, patientID, professionalID int64) (*domain.Conversation, error) {
	query := `
		INSERT INTO conversations (patient_id, professional_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (patient_id, professional_id) DO UPDATE SET patient_id = EXCLUDED.patient_id
		RETURNING id, patient_id, professional_id, last_message_at, created_at
	`

	var conv domain.Conversation
	err := r.db.QueryRow(ctx, query, patientID, professionalID, time.Now()).Scan(
		&conv.ID,
		&conv.PatientID,
		&conv.ProfessionalID,
		&conv.LastMessageAt,
		&conv.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания диалога: %w", err)
	}

	return &conv, nil
}

func (r *ChatRepo) GetConversationByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	query := `
		SELECT id, patient_id, professional_id, last_message_at, created_at
		FROM conversations
		WHERE id = $1
	`

	var conv domain.Conversation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&conv.ID,
		&conv.PatientID,
		&conv.ProfessionalID,
		&conv.LastMessageAt,
		&conv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("диалог с id %d не найден", id)
		}
		return nil, fmt.Errorf("ошибка получения диалога: %w", err)
	}

	return &conv, nil
}

func (r *ChatRepo) ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	query := `
		SELECT c.id, c.patient_id, c.professional_id, c.last_message_at, c.created_at,
		       pu.first_name || ' ' || pu.last_name AS patient_name,
		       su.first_name || ' ' || su.last_name AS professional_name,
		       COUNT(m.id) FILTER (WHERE m.is_read = false AND m.sender_id != $1) AS unread_count
		FROM conversations c
		JOIN users pu ON c.patient_id = pu.id
		JOIN users su ON c.professional_id = su.id
		LEFT JOIN chat_messages m ON m.conversation_id = c.id
		WHERE c.patient_id = $1 OR c.professional_id = $1
		GROUP BY c.id, pu.first_name, pu.last_name, su.first_name, su.last_name
		ORDER BY c.last_message_at DESC NULLS LAST
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса списка диалогов: %w", err)
	}
	defer rows.Close()

	conversations := make([]domain.Conversation, 0)
	for rows.Next() {
		var conv domain.Conversation
		if err := rows.Scan(
			&conv.ID,
			&conv.PatientID,
			&conv.ProfessionalID,
			&conv.LastMessageAt,
			&conv.CreatedAt,
			&conv.PatientName,
			&conv.ProfessionalName,
			&conv.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("ошибка чтения диалога: %w", err)
		}
		conversations = append(conversations, conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	return conversations, nil
}

func (r *ChatRepo) CreateMessage(ctx context.Context, senderID int64, dto domain.SendMessageDTO) (*domain.ChatMessage, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	msgType := dto.Type
	if msgType == "" {
		msgType = domain.MessageTypeText
	}

	now := time.Now()

	var msg domain.ChatMessage
	query := `
		INSERT INTO chat_messages (conversation_id, sender_id, message_type, body, file_url, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6)
		RETURNING id, conversation_id, sender_id, message_type, body, file_url, is_read, read_at, created_at
	`

	err = tx.QueryRow(ctx, query, dto.ConversationID, senderID, msgType, dto.Body, dto.FileURL, now).Scan(
		&msg.ID,
		&msg.ConversationID,
		&msg.SenderID,
		&msg.Type,
		&msg.Body,
		&msg.FileURL,
		&msg.IsRead,
		&msg.ReadAt,
		&msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания сообщения: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE conversations SET last_message_at = $1 WHERE id = $2`, now, dto.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления диалога: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка коммита транзакции: %w", err)
	}

	return &msg, nil
}

func (r *ChatRepo) ListMessages(ctx context.Context, filter domain.ChatMessageFilter) ([]domain.ChatMessage, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.message_type, m.body, m.file_url, m.is_read, m.read_at, m.created_at,
		       u.first_name || ' ' || u.last_name AS sender_name
		FROM chat_messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, filter.ConversationID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса сообщений: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.ChatMessage, 0)
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.SenderID,
			&msg.Type,
			&msg.Body,
			&msg.FileURL,
			&msg.IsRead,
			&msg.ReadAt,
			&msg.CreatedAt,
			&msg.SenderName,
		); err != nil {
			return nil, fmt.Errorf("ошибка чтения сообщения: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	return messages, nil
}

func (r *ChatRepo) MarkRead(ctx context.Context, conversationID, readerID int64) error {
	query := `
		UPDATE chat_messages
		SET is_read = true, read_at = $1
		WHERE conversation_id = $2 AND sender_id != $3 AND is_read = false
	`

	_, err := r.db.Exec(ctx, query, time.Now(), conversationID, readerID)
	if err != nil {
		return fmt.Errorf("ошибка отметки сообщений прочитанными: %w", err)
	}

	return nil
}

func (r *ChatRepo) CountUnread(ctx context.Context, userID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM chat_messages m
		JOIN conversations c ON m.conversation_id = c.id
		WHERE (c.patient_id = $1 OR c.professional_id = $1)
		  AND m.sender_id != $1
		  AND m.is_read = false
	`

	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта непрочитанных: %w", err)
	}

	return count, nil
}
