package rest

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"psylink/internal/domain"
)

// @Summary Каталог специальностей
// @Tags Специалисты
// @Produce json
// @Success 200 {array} domain.Specialty "Фиксированный каталог специальностей"
// @Router /specialties [get]
func (h *Handler) getSpecialties(c *gin.Context) {
	successResponse(c, http.StatusOK, domain.Specialties)
}

// @Summary Список специалистов
// @Tags Специалисты
// @Produce json
// @Param specialty query string false "Фильтр по специальности"
// @Param work_modality query string false "Фильтр по формату работы" Enums(in_person, online, mixed)
// @Param q query string false "Поиск по имени и направлению"
// @Param limit query int false "Лимит (по умолчанию 20)"
// @Param offset query int false "Смещение"
// @Success 200 {object} paginatedResponse "Список специалистов"
// @Router /professionals [get]
func (h *Handler) getProfessionals(c *gin.Context) {
	var filter domain.ProfessionalFilter

	if specialty := c.Query("specialty"); specialty != "" {
		filter.Specialty = &specialty
	}

	if modality := c.Query("work_modality"); modality != "" {
		m := domain.WorkModality(modality)
		filter.WorkModality = &m
	}

	if query := c.Query("q"); query != "" {
		filter.Query = &query
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

	professionals, total, err := h.services.Professional.List(c.Request.Context(), filter)
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	paginatedSuccessResponse(c, professionals, total, offset/limit+1, limit)
}

// @Summary Профиль специалиста по ID
// @Tags Специалисты
// @Produce json
// @Param id path int true "ID специалиста"
// @Success 200 {object} domain.Professional "Профиль специалиста"
// @Failure 404 {object} errorResponseBody "Специалист не найден"
// @Router /professionals/{id} [get]
func (h *Handler) getProfessionalByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	professional, err := h.services.Professional.GetByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, "специалист не найден")
		return
	}

	successResponse(c, http.StatusOK, professional)
}

// @Summary Мой профиль специалиста
// @Tags Специалисты
// @Produce json
// @Success 200 {object} domain.Professional "Профиль специалиста"
// @Failure 404 {object} errorResponseBody "Профиль не найден"
// @Security ApiKeyAuth
// @Router /professionals/me [get]
func (h *Handler) getMyProfessionalProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	professional, err := h.services.Professional.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		notFoundResponse(c, "профиль специалиста не найден")
		return
	}

	successResponse(c, http.StatusOK, professional)
}

// @Summary Создать профиль специалиста
// @Tags Специалисты
// @Accept json
// @Produce json
// @Param input body domain.CreateProfessionalDTO true "Данные профиля"
// @Success 201 {object} map[string]interface{} "ID созданного профиля"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Security ApiKeyAuth
// @Router /professionals [post]
func (h *Handler) createProfessional(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var req domain.CreateProfessionalDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Professional.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.logger.Warn("ошибка создания профиля специалиста", zap.Error(err))
		badRequestResponse(c, err.Error())
		return
	}

	createdResponse(c, gin.H{"id": id})
}

// @Summary Обновить профиль специалиста
// @Tags Специалисты
// @Accept json
// @Produce json
// @Param id path int true "ID специалиста"
// @Param input body domain.UpdateProfessionalDTO true "Данные для обновления"
// @Success 200 {object} messageResponseType "Сообщение об успешном обновлении"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /professionals/{id} [put]
func (h *Handler) updateProfessional(c *gin.Context) {
	id, ok := h.authorizeProfessional(c)
	if !ok {
		return
	}

	var req domain.UpdateProfessionalDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Professional.Update(c.Request.Context(), id, req); err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "профиль обновлен")
}

// @Summary Загрузить сертификат
// @Tags Специалисты
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID специалиста"
// @Param file formData file true "PDF или изображение"
// @Success 200 {object} map[string]interface{} "URL документа"
// @Failure 400 {object} errorResponseBody "Ошибка загрузки"
// @Security ApiKeyAuth
// @Router /professionals/{id}/certificate [post]
func (h *Handler) uploadCertificate(c *gin.Context) {
	h.uploadProfessionalDocument(c, h.services.Professional.UploadCertificate)
}

// @Summary Загрузить резюме
// @Tags Специалисты
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID специалиста"
// @Param file formData file true "PDF или изображение"
// @Success 200 {object} map[string]interface{} "URL документа"
// @Failure 400 {object} errorResponseBody "Ошибка загрузки"
// @Security ApiKeyAuth
// @Router /professionals/{id}/cv [post]
func (h *Handler) uploadCV(c *gin.Context) {
	h.uploadProfessionalDocument(c, h.services.Professional.UploadCV)
}

func (h *Handler) uploadProfessionalDocument(c *gin.Context, upload func(ctx context.Context, professionalID int64, data []byte, filename string) (string, error)) {
	id, ok := h.authorizeProfessional(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequestResponse(c, "файл не передан")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		badRequestResponse(c, "не удалось открыть файл")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	url, err := upload(c.Request.Context(), id, data, fileHeader.Filename)
	if err != nil {
		h.logger.Warn("ошибка загрузки документа", zap.Int64("professionalID", id), zap.Error(err))
		badRequestResponse(c, err.Error())
		return
	}

	successResponse(c, http.StatusOK, gin.H{"url": url})
}

// authorizeProfessional разбирает :id и пускает владельца профиля или админа.
func (h *Handler) authorizeProfessional(c *gin.Context) (int64, bool) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return 0, false
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return 0, false
	}

	role, _ := getUserRole(c)
	if role == domain.UserRoleAdmin {
		return id, true
	}

	professional, err := h.services.Professional.GetByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, "специалист не найден")
		return 0, false
	}

	if professional.UserID != userID {
		forbiddenResponse(c)
		return 0, false
	}

	return id, true
}
