package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"psylink/internal/domain"
)

// @Summary Создать обращение в поддержку
// @Description Доступно и без авторизации: анонимные обращения привязываются только к email
// @Tags Поддержка
// @Accept json
// @Produce json
// @Param input body domain.CreateTicketDTO true "Данные обращения"
// @Success 201 {object} map[string]interface{} "ID созданного обращения"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /tickets [post]
func (h *Handler) createTicket(c *gin.Context) {
	var req domain.CreateTicketDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResponse(c, "неверный формат данных")
		return
	}

	// если запрос пришёл с токеном, привязываем обращение к пользователю
	var userID *int64
	if header := c.GetHeader(authorizationHeader); header != "" {
		h.authMiddleware()(c)
		if c.IsAborted() {
			return
		}
		if id, err := getUserID(c); err == nil {
			userID = &id
		}
	}

	id, err := h.services.Ticket.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.logger.Warn("ошибка создания обращения", zap.Error(err))
		badRequestResponse(c, err.Error())
		return
	}

	createdResponse(c, gin.H{"id": id})
}

// @Summary Мои обращения
// @Tags Поддержка
// @Produce json
// @Success 200 {array} domain.SupportTicket "Список обращений пользователя"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Security ApiKeyAuth
// @Router /tickets/my [get]
func (h *Handler) getMyTickets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	filter := domain.TicketFilter{UserID: &userID, Limit: 50}

	tickets, err := h.services.Ticket.List(c.Request.Context(), filter)
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, tickets)
}

// @Summary Список обращений
// @Tags Поддержка
// @Produce json
// @Param status query string false "Фильтр по статусу" Enums(open, in_progress, closed)
// @Param limit query int false "Лимит (по умолчанию 20)"
// @Param offset query int false "Смещение"
// @Success 200 {array} domain.SupportTicket "Список обращений"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /tickets [get]
func (h *Handler) getTickets(c *gin.Context) {
	var filter domain.TicketFilter

	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.TicketStatus(statusStr)
		filter.Status = &status
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	filter.Limit = limit
	filter.Offset = offset

	tickets, err := h.services.Ticket.List(c.Request.Context(), filter)
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, tickets)
}

// @Summary Получить обращение по ID
// @Tags Поддержка
// @Produce json
// @Param id path int true "ID обращения"
// @Success 200 {object} domain.SupportTicket "Данные обращения"
// @Failure 404 {object} errorResponseBody "Обращение не найдено"
// @Security ApiKeyAuth
// @Router /tickets/{id} [get]
func (h *Handler) getTicketByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	ticket, err := h.services.Ticket.GetByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, "обращение не найдено")
		return
	}

	successResponse(c, http.StatusOK, ticket)
}

// @Summary Ответить на обращение
// @Description Сохраняет ответ и отправляет его автору обращения по почте
// @Tags Поддержка
// @Accept json
// @Produce json
// @Param id path int true "ID обращения"
// @Param input body domain.ReplyTicketDTO true "Текст ответа и новый статус"
// @Success 200 {object} messageResponseType "Сообщение об успешном ответе"
// @Failure 404 {object} errorResponseBody "Обращение не найдено"
// @Security ApiKeyAuth
// @Router /tickets/{id}/reply [post]
func (h *Handler) replyTicket(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	var req domain.ReplyTicketDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Ticket.Reply(c.Request.Context(), id, req); err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "ответ отправлен")
}
