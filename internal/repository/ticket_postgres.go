package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"psylink/internal/domain"
)

type TicketRepo struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) *TicketRepo {
	return &TicketRepo{
		db: db,
	}
}

func (r *TicketRepo) Create(ctx context.Context, userID *int64, dto domain.CreateTicketDTO) (int64, error) {
	var id int64
	query := `
		INSERT INTO support_tickets (user_id, name, email, subject, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		ctx,
		query,
		userID,
		dto.Name,
		dto.Email,
		dto.Subject,
		dto.Message,
		domain.TicketStatusOpen,
		now,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания обращения: %w", err)
	}

	return id, nil
}

func (r *TicketRepo) GetByID(ctx context.Context, id int64) (*domain.SupportTicket, error) {
	query := `
		SELECT id, user_id, name, email, subject, message, status, reply, replied_at, created_at, updated_at
		FROM support_tickets
		WHERE id = $1
	`

	var ticket domain.SupportTicket
	err := r.db.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.Name,
		&ticket.Email,
		&ticket.Subject,
		&ticket.Message,
		&ticket.Status,
		&ticket.Reply,
		&ticket.RepliedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("обращение с id %d не найдено", id)
		}
		return nil, fmt.Errorf("ошибка получения обращения: %w", err)
	}

	return &ticket, nil
}

func (r *TicketRepo) Reply(ctx context.Context, id int64, dto domain.ReplyTicketDTO) error {
	status := domain.TicketStatusClosed
	if dto.Status != nil {
		status = *dto.Status
	}

	query := `
		UPDATE support_tickets
		SET reply = $1, replied_at = $2, status = $3, updated_at = $2
		WHERE id = $4
	`

	_, err := r.db.Exec(ctx, query, dto.Reply, time.Now(), status, id)
	if err != nil {
		return fmt.Errorf("ошибка ответа на обращение: %w", err)
	}

	return nil
}

func (r *TicketRepo) List(ctx context.Context, filter domain.TicketFilter) ([]domain.SupportTicket, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argCount := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argCount))
		args = append(args, *filter.UserID)
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT id, user_id, name, email, subject, message, status, reply, replied_at, created_at, updated_at
		FROM support_tickets
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(conditions, " AND "), argCount, argCount+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса списка обращений: %w", err)
	}
	defer rows.Close()

	tickets := make([]domain.SupportTicket, 0)
	for rows.Next() {
		var ticket domain.SupportTicket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.UserID,
			&ticket.Name,
			&ticket.Email,
			&ticket.Subject,
			&ticket.Message,
			&ticket.Status,
			&ticket.Reply,
			&ticket.RepliedAt,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка чтения обращения: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	return tickets, nil
}
