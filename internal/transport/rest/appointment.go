package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
	"go.uber.org/zap"

	"psylink/internal/domain"
)

// @Summary Занятость на дату
// @Description Возвращает занятые интервалы специалиста и самого пациента на календарные сутки
// @Tags Записи
// @Produce json
// @Param professional query int true "ID специалиста"
// @Param date query string true "Дата в формате YYYY-MM-DD"
// @Success 200 {object} domain.BusyResponse "Занятые интервалы"
// @Failure 400 {object} map[string]interface{} "Ошибка параметров"
// @Security ApiKeyAuth
// @Router /appointments/busy/ [get]
func (h *Handler) getBusy(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	professionalID, err := strconv.ParseInt(c.Query("professional"), 10, 64)
	if err != nil {
		detailErrorResponse(c, http.StatusBadRequest, "неверный параметр professional")
		return
	}

	day, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		detailErrorResponse(c, http.StatusBadRequest, "неверный параметр date, ожидается YYYY-MM-DD")
		return
	}

	busy, err := h.services.Appointment.GetBusy(c.Request.Context(), professionalID, userID, day)
	if err != nil {
		h.logger.Error("ошибка получения занятости", zap.Error(err))
		detailErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, busy)
}

// @Summary Статусы слотов на дату
// @Description Дневная сетка слотов со статусом каждого: free, pro, patient или both
// @Tags Записи
// @Produce json
// @Param professional query int true "ID специалиста"
// @Param date query string true "Дата в формате YYYY-MM-DD"
// @Success 200 {object} map[string]string "Слот -> статус"
// @Failure 400 {object} map[string]interface{} "Ошибка параметров"
// @Security ApiKeyAuth
// @Router /appointments/slots/ [get]
func (h *Handler) getSlots(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	professionalID, err := strconv.ParseInt(c.Query("professional"), 10, 64)
	if err != nil {
		detailErrorResponse(c, http.StatusBadRequest, "неверный параметр professional")
		return
	}

	day, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		detailErrorResponse(c, http.StatusBadRequest, "неверный параметр date, ожидается YYYY-MM-DD")
		return
	}

	statuses, err := h.services.Appointment.GetSlotStatuses(c.Request.Context(), professionalID, userID, day)
	if err != nil {
		h.logger.Error("ошибка расчёта слотов", zap.Error(err))
		detailErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, statuses)
}

// @Summary Создать запись на приём
// @Description Создает запись. Ошибки валидации возвращаются картой "поле -> сообщения"
// @Tags Записи
// @Accept json
// @Produce json
// @Param input body domain.CreateAppointmentDTO true "Данные записи"
// @Success 201 {object} domain.Appointment "Созданная запись"
// @Failure 400 {object} map[string][]string "Ошибки по полям"
// @Security ApiKeyAuth
// @Router /appointments/ [post]
func (h *Handler) createAppointment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var req domain.CreateAppointmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		detailErrorResponse(c, http.StatusBadRequest, "неверный формат данных")
		return
	}

	appointment, err := h.services.Appointment.Create(c.Request.Context(), userID, req)
	if err != nil {
		var fieldErrs domain.FieldErrors
		if errors.As(err, &fieldErrs) {
			fieldErrorResponse(c, fieldErrs)
			return
		}
		h.logger.Error("ошибка создания записи", zap.Error(err))
		detailErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, appointment)
}

// @Summary Список записей
// @Tags Записи
// @Produce json
// @Param status query string false "Фильтр по статусу" Enums(scheduled, completed, cancelled)
// @Param date_from query string false "Начало диапазона, YYYY-MM-DD"
// @Param date_to query string false "Конец диапазона, YYYY-MM-DD"
// @Param limit query int false "Лимит (по умолчанию 20)"
// @Param offset query int false "Смещение"
// @Success 200 {object} paginatedResponse "Список записей"
// @Security ApiKeyAuth
// @Router /appointments/ [get]
func (h *Handler) getAppointments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var filter domain.AppointmentFilter

	role, _ := getUserRole(c)
	switch role {
	case domain.UserRoleProfessional:
		professional, err := h.services.Professional.GetByUserID(c.Request.Context(), userID)
		if err != nil {
			notFoundResponse(c, "профиль специалиста не найден")
			return
		}
		filter.ProfessionalID = &professional.ID
	case domain.UserRoleAdmin:
		// админ видит все записи
	default:
		filter.PatientID = &userID
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.AppointmentStatus(statusStr)
		filter.Status = &status
	}

	if dateFrom := c.Query("date_from"); dateFrom != "" {
		if parsed, err := time.Parse("2006-01-02", dateFrom); err == nil {
			filter.StartDate = &parsed
		}
	}

	if dateTo := c.Query("date_to"); dateTo != "" {
		if parsed, err := time.Parse("2006-01-02", dateTo); err == nil {
			end := parsed.AddDate(0, 0, 1)
			filter.EndDate = &end
		}
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

	appointments, total, err := h.services.Appointment.List(c.Request.Context(), filter)
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	paginatedSuccessResponse(c, appointments, total, offset/limit+1, limit)
}

// @Summary Получить запись по ID
// @Tags Записи
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} domain.Appointment "Данные записи"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Security ApiKeyAuth
// @Router /appointments/{id}/ [get]
func (h *Handler) getAppointmentByID(c *gin.Context) {
	appointment, ok := h.authorizeAppointment(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// @Summary Изменить запись
// @Description Частичное обновление: перенос, смена длительности, статус, заметки. Ошибки валидации возвращаются картой "поле -> сообщения"
// @Tags Записи
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Param input body domain.UpdateAppointmentDTO true "Изменяемые поля"
// @Success 200 {object} domain.Appointment "Обновленная запись"
// @Failure 400 {object} map[string][]string "Ошибки по полям"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /appointments/{id}/ [patch]
func (h *Handler) updateAppointment(c *gin.Context) {
	appointment, ok := h.authorizeAppointment(c)
	if !ok {
		return
	}

	var req domain.UpdateAppointmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		detailErrorResponse(c, http.StatusBadRequest, "неверный формат данных")
		return
	}

	// статус и оплату меняют специалист, админ и вебхуки, но не пациент
	role, _ := getUserRole(c)
	if role == domain.UserRolePatient {
		req.Status = nil
		req.PaymentID = nil
	}

	updated, err := h.services.Appointment.Update(c.Request.Context(), appointment.ID, req)
	if err != nil {
		var fieldErrs domain.FieldErrors
		if errors.As(err, &fieldErrs) {
			fieldErrorResponse(c, fieldErrs)
			return
		}
		detailErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, updated)
}

// @Summary Отменить запись
// @Tags Записи
// @Produce json
// @Param id path int true "ID записи"
// @Success 204 "Запись отменена"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Security ApiKeyAuth
// @Router /appointments/{id}/ [delete]
func (h *Handler) cancelAppointment(c *gin.Context) {
	appointment, ok := h.authorizeAppointment(c)
	if !ok {
		return
	}

	if err := h.services.Appointment.Cancel(c.Request.Context(), appointment.ID); err != nil {
		detailErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Оплатить запись
// @Description Создает платёжную сессию Stripe и возвращает URL страницы оплаты
// @Tags Записи
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} map[string]interface{} "URL страницы оплаты"
// @Failure 400 {object} errorResponseBody "Ошибка создания платёжной сессии"
// @Security ApiKeyAuth
// @Router /appointments/{id}/checkout/ [post]
func (h *Handler) createCheckoutSession(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	url, err := h.services.Payment.CreateCheckoutSession(c.Request.Context(), id, userID)
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	successResponse(c, http.StatusOK, gin.H{"checkout_url": url})
}

// stripeWebhook обрабатывает событие checkout.session.completed и
// привязывает платёж к записи. Событие принимается только с корректной
// подписью Stripe-Signature.
func (h *Handler) stripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequestResponse(c, "не удалось прочитать тело запроса")
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.config.Stripe.WebhookSecret)
	if err != nil {
		h.logger.Warn("событие оплаты не прошло проверку подписи", zap.Error(err))
		badRequestResponse(c, "неверная подпись события")
		return
	}

	if event.Type != "checkout.session.completed" {
		c.Status(http.StatusOK)
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.logger.Error("ошибка разбора checkout.session", zap.Error(err))
		badRequestResponse(c, "неверный формат события")
		return
	}

	appointmentID, err := strconv.ParseInt(session.ClientReferenceID, 10, 64)
	if err != nil {
		h.logger.Warn("событие оплаты без ссылки на запись", zap.String("sessionID", session.ID))
		c.Status(http.StatusOK)
		return
	}

	if err := h.services.Payment.ConfirmPayment(c.Request.Context(), appointmentID, session.ID); err != nil {
		h.logger.Error("ошибка подтверждения оплаты", zap.Int64("appointmentID", appointmentID), zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	c.Status(http.StatusOK)
}

// authorizeAppointment разбирает :id, загружает запись и пускает пациента,
// специалиста этой записи или админа.
func (h *Handler) authorizeAppointment(c *gin.Context) (*domain.Appointment, bool) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return nil, false
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return nil, false
	}

	appointment, err := h.services.Appointment.GetByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, "запись не найдена")
		return nil, false
	}

	role, _ := getUserRole(c)
	if role == domain.UserRoleAdmin || appointment.PatientID == userID {
		return appointment, true
	}

	if role == domain.UserRoleProfessional {
		professional, err := h.services.Professional.GetByUserID(c.Request.Context(), userID)
		if err == nil && professional.ID == appointment.ProfessionalID {
			return appointment, true
		}
	}

	forbiddenResponse(c)
	return nil, false
}
