package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"psylink/config"
	"psylink/internal/availability"
	"psylink/internal/domain"
	"psylink/internal/repository"
	"psylink/internal/storage"
)

type Deps struct {
	Repos       *repository.Repositories
	Logger      *zap.Logger
	Config      *config.Config
	FileStorage storage.FileStorage
}

type Services struct {
	User         UserService
	Auth         AuthService
	Professional ProfessionalService
	Appointment  AppointmentService
	Ticket       TicketService
	Chat         ChatService
	Notification NotificationService
	Payment      PaymentService
	Video        VideoService
}

func NewServices(deps Deps) *Services {
	notification := NewNotificationService(deps.Config.SendGrid, deps.Config.Twilio, deps.Logger)
	video := NewVideoService(deps.Config.Zoom, deps.Logger)

	return &Services{
		User:         NewUserService(deps.Repos.User, deps.Logger),
		Auth:         NewAuthService(deps.Repos.Auth, deps.Repos.User, deps.Repos.Professional, deps.Config.JWT, deps.Logger),
		Professional: NewProfessionalService(deps.Repos.Professional, deps.Repos.User, deps.FileStorage, deps.Logger),
		Appointment:  NewAppointmentService(deps.Repos.Appointment, deps.Repos.Professional, deps.Repos.User, video, notification, deps.Config.Booking, deps.Logger),
		Ticket:       NewTicketService(deps.Repos.Ticket, notification, deps.Logger),
		Chat:         NewChatService(deps.Repos.Chat, deps.Repos.User, deps.Logger),
		Notification: notification,
		Payment:      NewPaymentService(deps.Repos.Appointment, deps.Config.Stripe, deps.Logger),
		Video:        video,
	}
}

type UserService interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, dto domain.PasswordUpdateDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type AuthService interface {
	Register(ctx context.Context, dto domain.RegisterRequest) (int64, error)
	Login(ctx context.Context, dto domain.LoginRequest, userAgent, ip string) (*domain.Tokens, error)
	RefreshTokens(ctx context.Context, refreshToken, userAgent, ip string) (*domain.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ParseToken(ctx context.Context, token string) (int64, domain.UserRole, error)
}

type ProfessionalService interface {
	Create(ctx context.Context, userID int64, dto domain.CreateProfessionalDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Professional, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Professional, error)
	Update(ctx context.Context, id int64, dto domain.UpdateProfessionalDTO) error
	List(ctx context.Context, filter domain.ProfessionalFilter) ([]domain.Professional, int, error)

	UploadCertificate(ctx context.Context, professionalID int64, data []byte, filename string) (string, error)
	UploadCV(ctx context.Context, professionalID int64, data []byte, filename string) (string, error)
}

type AppointmentService interface {
	Create(ctx context.Context, patientID int64, dto domain.CreateAppointmentDTO) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	Update(ctx context.Context, id int64, dto domain.UpdateAppointmentDTO) (*domain.Appointment, error)
	Cancel(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error)

	GetBusy(ctx context.Context, professionalID, patientID int64, day time.Time) (*domain.BusyResponse, error)
	GetSlotStatuses(ctx context.Context, professionalID, patientID int64, day time.Time) (map[string]availability.SlotStatus, error)
}

type TicketService interface {
	Create(ctx context.Context, userID *int64, dto domain.CreateTicketDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.SupportTicket, error)
	Reply(ctx context.Context, id int64, dto domain.ReplyTicketDTO) error
	List(ctx context.Context, filter domain.TicketFilter) ([]domain.SupportTicket, error)
}

type ChatService interface {
	StartConversation(ctx context.Context, userID int64, role domain.UserRole, dto domain.StartConversationDTO) (*domain.Conversation, error)
	ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error)
	SendMessage(ctx context.Context, senderID int64, dto domain.SendMessageDTO) (*domain.ChatMessage, error)
	ListMessages(ctx context.Context, userID int64, filter domain.ChatMessageFilter) ([]domain.ChatMessage, error)
	MarkRead(ctx context.Context, conversationID, readerID int64) error
	CountUnread(ctx context.Context, userID int64) (int, error)
}

type NotificationService interface {
	SendEmail(ctx context.Context, to, subject, body string) error
	SendSMS(ctx context.Context, to, body string) error
	NotifyAppointmentCreated(ctx context.Context, appointment *domain.Appointment, patientEmail, professionalEmail string)
	NotifyAppointmentReminder(ctx context.Context, appointment *domain.Appointment, patientEmail, patientPhone string)
	NotifyTicketReply(ctx context.Context, ticket *domain.SupportTicket)
}

type PaymentService interface {
	CreateCheckoutSession(ctx context.Context, appointmentID, patientID int64) (string, error)
	ConfirmPayment(ctx context.Context, appointmentID int64, paymentID string) error
}

type VideoService interface {
	CreateMeeting(ctx context.Context, topic string, start time.Time, durationMinutes int) (string, error)
}

func PointerTo[T any](v T) *T {
	return &v
}
