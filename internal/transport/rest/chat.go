package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"psylink/internal/domain"
)

// @Summary Открыть диалог
// @Description Возвращает существующий диалог с собеседником или создает новый
// @Tags Чат
// @Accept json
// @Produce json
// @Param input body domain.StartConversationDTO true "ID собеседника"
// @Success 200 {object} domain.Conversation "Диалог"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Security ApiKeyAuth
// @Router /chat/conversations [post]
func (h *Handler) startConversation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	role, _ := getUserRole(c)

	var req domain.StartConversationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResponse(c, "неверный формат данных")
		return
	}

	conv, err := h.services.Chat.StartConversation(c.Request.Context(), userID, role, req)
	if err != nil {
		h.logger.Warn("ошибка открытия диалога", zap.Error(err))
		badRequestResponse(c, err.Error())
		return
	}

	successResponse(c, http.StatusOK, conv)
}

// @Summary Список диалогов
// @Tags Чат
// @Produce json
// @Success 200 {array} domain.Conversation "Диалоги пользователя с количеством непрочитанных"
// @Security ApiKeyAuth
// @Router /chat/conversations [get]
func (h *Handler) listConversations(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	conversations, err := h.services.Chat.ListConversations(c.Request.Context(), userID)
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, conversations)
}

// @Summary Сообщения диалога
// @Tags Чат
// @Produce json
// @Param id path int true "ID диалога"
// @Param limit query int false "Лимит (по умолчанию 50)"
// @Param offset query int false "Смещение"
// @Success 200 {array} domain.ChatMessage "Сообщения, новые первыми"
// @Failure 403 {object} errorResponseBody "Нет доступа к диалогу"
// @Security ApiKeyAuth
// @Router /chat/conversations/{id}/messages [get]
func (h *Handler) listMessages(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := domain.ChatMessageFilter{
		ConversationID: conversationID,
		Limit:          limit,
		Offset:         offset,
	}

	messages, err := h.services.Chat.ListMessages(c.Request.Context(), userID, filter)
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	successResponse(c, http.StatusOK, messages)
}

// @Summary Отправить сообщение
// @Description Сохраняет сообщение и рассылает его подключенным участникам диалога по websocket
// @Tags Чат
// @Accept json
// @Produce json
// @Param input body domain.SendMessageDTO true "Сообщение"
// @Success 201 {object} domain.ChatMessage "Созданное сообщение"
// @Failure 403 {object} errorResponseBody "Нет доступа к диалогу"
// @Security ApiKeyAuth
// @Router /chat/messages [post]
func (h *Handler) sendMessage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var req domain.SendMessageDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResponse(c, "неверный формат данных")
		return
	}

	msg, err := h.services.Chat.SendMessage(c.Request.Context(), userID, req)
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	h.chatHub.BroadcastMessage(msg)

	createdResponse(c, msg)
}

// @Summary Отметить диалог прочитанным
// @Tags Чат
// @Produce json
// @Param id path int true "ID диалога"
// @Success 200 {object} messageResponseType "Сообщения отмечены прочитанными"
// @Failure 403 {object} errorResponseBody "Нет доступа к диалогу"
// @Security ApiKeyAuth
// @Router /chat/conversations/{id}/read [post]
func (h *Handler) markConversationRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if err := h.services.Chat.MarkRead(c.Request.Context(), conversationID, userID); err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "сообщения отмечены прочитанными")
}

// @Summary Количество непрочитанных
// @Tags Чат
// @Produce json
// @Success 200 {object} map[string]interface{} "Общее количество непрочитанных сообщений"
// @Security ApiKeyAuth
// @Router /chat/unread [get]
func (h *Handler) getUnreadCount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	count, err := h.services.Chat.CountUnread(c.Request.Context(), userID)
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, gin.H{"unread": count})
}
