package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"psylink/internal/domain"
)

type Repositories struct {
	User         UserRepository
	Auth         AuthRepository
	Professional ProfessionalRepository
	Appointment  AppointmentRepository
	Ticket       TicketRepository
	Chat         ChatRepository
}

func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Auth:         NewAuthRepository(db),
		Professional: NewProfessionalRepository(db),
		Appointment:  NewAppointmentRepository(db),
		Ticket:       NewTicketRepository(db),
		Chat:         NewChatRepository(db),
	}
}

type UserRepository interface {
	Create(ctx context.Context, user domain.CreateUserDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, id int64, user domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type AuthRepository interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsByUserID(ctx context.Context, userID int64) error
}

type ProfessionalRepository interface {
	Create(ctx context.Context, userID int64, professional domain.CreateProfessionalDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Professional, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Professional, error)
	Update(ctx context.Context, id int64, professional domain.UpdateProfessionalDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.ProfessionalFilter) ([]domain.Professional, error)
	CountByFilter(ctx context.Context, filter domain.ProfessionalFilter) (int, error)

	UpdateCertificateURL(ctx context.Context, id int64, url string) error
	UpdateCVURL(ctx context.Context, id int64, url string) error
	IncrementCasesAttended(ctx context.Context, id int64) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, patientID int64, appointment domain.CreateAppointmentDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	Update(ctx context.Context, id int64, appointment domain.UpdateAppointmentDTO) error
	UpdateJoinURL(ctx context.Context, id int64, joinURL string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error)
	CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error)

	GetBusyIntervals(ctx context.Context, professionalID, patientID int64, day time.Time) (*domain.BusyResponse, error)
	HasConflict(ctx context.Context, professionalID, patientID int64, start, end time.Time, excludeID int64) (bool, error)
	CompletePast(ctx context.Context, before time.Time) (int64, error)
	ListUpcoming(ctx context.Context, from, to time.Time) ([]domain.Appointment, error)
}

type TicketRepository interface {
	Create(ctx context.Context, userID *int64, ticket domain.CreateTicketDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.SupportTicket, error)
	Reply(ctx context.Context, id int64, dto domain.ReplyTicketDTO) error
	List(ctx context.Context, filter domain.TicketFilter) ([]domain.SupportTicket, error)
}

type ChatRepository interface {
	GetOrCreateConversation(ctx context.Context, patientID, professionalID int64) (*domain.Conversation, error)
	GetConversationByID(ctx context.Context, id int64) (*domain.Conversation, error)
	ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error)
	CreateMessage(ctx context.Context, senderID int64, dto domain.SendMessageDTO) (*domain.ChatMessage, error)
	ListMessages(ctx context.Context, filter domain.ChatMessageFilter) ([]domain.ChatMessage, error)
	MarkRead(ctx context.Context, conversationID, readerID int64) error
	CountUnread(ctx context.Context, userID int64) (int, error)
}
