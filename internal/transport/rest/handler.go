package rest

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"psylink/config"
	"psylink/internal/service"
	"psylink/internal/transport/websocket"
)

type Handler struct {
	services *service.Services
	logger   *zap.Logger
	config   *config.Config
	chatHub  *websocket.Hub
}

func NewHandler(services *service.Services, logger *zap.Logger, config *config.Config, chatHub *websocket.Hub) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		config:   config,
		chatHub:  chatHub,
	}
}

func (h *Handler) InitRoutes(router *gin.Engine) {
	router.Use(h.loggerMiddleware())
	router.Use(h.corsMiddleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)
			auth.POST("/refresh", h.refreshTokens)
			auth.POST("/logout", h.logout)
		}

		users := api.Group("/users")
		users.Use(h.authMiddleware())
		{
			users.GET("/me", h.getCurrentUser)
			users.GET("/:id", h.getUserByID)
			users.PUT("/:id", h.updateUser)
			users.PUT("/:id/password", h.updatePassword)

			admin := users.Group("/")
			admin.Use(h.adminMiddleware())
			{
				admin.GET("/", h.getUsers)
				admin.DELETE("/:id", h.deleteUser)
			}
		}

		api.GET("/specialties", h.getSpecialties)

		professionals := api.Group("/professionals")
		{
			professionals.GET("/", h.getProfessionals)
			professionals.GET("/me", h.authMiddleware(), h.professionalMiddleware(), h.getMyProfessionalProfile)
			professionals.GET("/:id", h.getProfessionalByID)

			auth := professionals.Group("/", h.authMiddleware())
			{
				auth.POST("/", h.professionalMiddleware(), h.createProfessional)
				auth.PUT("/:id", h.updateProfessional)
				auth.POST("/:id/certificate", h.uploadCertificate)
				auth.POST("/:id/cv", h.uploadCV)
			}
		}

		appointments := api.Group("/appointments")
		appointments.Use(h.authMiddleware())
		{
			appointments.GET("/busy/", h.getBusy)
			appointments.GET("/slots/", h.getSlots)
			appointments.POST("/", h.createAppointment)
			appointments.GET("/", h.getAppointments)
			appointments.GET("/:id/", h.getAppointmentByID)
			appointments.PATCH("/:id/", h.updateAppointment)
			appointments.DELETE("/:id/", h.cancelAppointment)
			appointments.POST("/:id/checkout/", h.createCheckoutSession)
		}

		api.POST("/payments/stripe/webhook", h.stripeWebhook)

		tickets := api.Group("/tickets")
		{
			tickets.POST("/", h.createTicket)

			auth := tickets.Group("/", h.authMiddleware())
			{
				auth.GET("/my", h.getMyTickets)

				admin := auth.Group("/", h.adminMiddleware())
				{
					admin.GET("/", h.getTickets)
					admin.GET("/:id", h.getTicketByID)
					admin.POST("/:id/reply", h.replyTicket)
				}
			}
		}

		chat := api.Group("/chat")
		chat.Use(h.authMiddleware())
		{
			chat.POST("/conversations", h.startConversation)
			chat.GET("/conversations", h.listConversations)
			chat.GET("/conversations/:id/messages", h.listMessages)
			chat.POST("/conversations/:id/read", h.markConversationRead)
			chat.POST("/messages", h.sendMessage)
			chat.GET("/unread", h.getUnreadCount)
		}
	}

	// websocket чата проверяет токен сам, из query-параметра
	router.GET("/ws/chat", h.chatHub.HandleWebSocket)
}
