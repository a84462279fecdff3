package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"psylink/internal/domain"
	"psylink/internal/repository"
	"psylink/internal/storage"
)

const maxUploadSize = 10 << 20

type ProfessionalServiceImpl struct {
	repo        repository.ProfessionalRepository
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
	logger      *zap.Logger
}

func NewProfessionalService(
	repo repository.ProfessionalRepository,
	userRepo repository.UserRepository,
	fileStorage storage.FileStorage,
	logger *zap.Logger,
) *ProfessionalServiceImpl {
	return &ProfessionalServiceImpl{
		repo:        repo,
		userRepo:    userRepo,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

func (s *ProfessionalServiceImpl) Create(ctx context.Context, userID int64, dto domain.CreateProfessionalDTO) (int64, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, errors.New("пользователь не найден")
	}

	if user.Role != domain.UserRoleProfessional {
		return 0, errors.New("пользователь не является специалистом")
	}

	if existing, err := s.repo.GetByUserID(ctx, userID); err == nil && existing != nil {
		return 0, errors.New("профиль специалиста уже существует")
	}

	if !domain.IsValidSpecialty(dto.Specialty) {
		return 0, errors.New("неизвестная специальность")
	}

	if dto.Specialty == "otro" && (dto.SpecialtyOther == nil || *dto.SpecialtyOther == "") {
		return 0, errors.New("уточните специальность")
	}

	id, err := s.repo.Create(ctx, userID, dto)
	if err != nil {
		s.logger.Error("ошибка создания профиля специалиста", zap.Int64("userID", userID), zap.Error(err))
		return 0, errors.New("ошибка при создании профиля специалиста")
	}

	return id, nil
}

func (s *ProfessionalServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Professional, error) {
	professional, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("специалист не найден", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("специалист не найден")
	}
	return professional, nil
}

func (s *ProfessionalServiceImpl) GetByUserID(ctx context.Context, userID int64) (*domain.Professional, error) {
	professional, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, errors.New("профиль специалиста не найден")
	}
	return professional, nil
}

func (s *ProfessionalServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateProfessionalDTO) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return errors.New("специалист не найден")
	}

	if dto.Specialty != nil && !domain.IsValidSpecialty(*dto.Specialty) {
		return errors.New("неизвестная специальность")
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления специалиста", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при обновлении специалиста")
	}

	return nil
}

func (s *ProfessionalServiceImpl) List(ctx context.Context, filter domain.ProfessionalFilter) ([]domain.Professional, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	professionals, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка специалистов", zap.Error(err))
		return nil, 0, errors.New("ошибка при получении списка специалистов")
	}

	count, err := s.repo.CountByFilter(ctx, filter)
	if err != nil {
		s.logger.Warn("ошибка подсчёта специалистов", zap.Error(err))
		return professionals, len(professionals), nil
	}

	return professionals, count, nil
}

func (s *ProfessionalServiceImpl) UploadCertificate(ctx context.Context, professionalID int64, data []byte, filename string) (string, error) {
	return s.uploadDocument(ctx, professionalID, storage.FileKindCertificate, data, filename)
}

func (s *ProfessionalServiceImpl) UploadCV(ctx context.Context, professionalID int64, data []byte, filename string) (string, error) {
	return s.uploadDocument(ctx, professionalID, storage.FileKindCV, data, filename)
}

func (s *ProfessionalServiceImpl) uploadDocument(ctx context.Context, professionalID int64, kind storage.FileKind, data []byte, filename string) (string, error) {
	professional, err := s.repo.GetByID(ctx, professionalID)
	if err != nil {
		return "", errors.New("специалист не найден")
	}

	if len(data) > maxUploadSize {
		return "", errors.New("файл слишком большой")
	}

	url, err := s.fileStorage.UploadFile(ctx, kind, data, filename)
	if err != nil {
		s.logger.Error("ошибка загрузки документа", zap.Int64("professionalID", professionalID), zap.Error(err))
		return "", errors.New("ошибка при загрузке файла")
	}

	var oldURL *string
	switch kind {
	case storage.FileKindCertificate:
		oldURL = professional.CertificateURL
		err = s.repo.UpdateCertificateURL(ctx, professionalID, url)
	case storage.FileKindCV:
		oldURL = professional.CVURL
		err = s.repo.UpdateCVURL(ctx, professionalID, url)
	default:
		err = errors.New("неизвестный тип документа")
	}
	if err != nil {
		s.logger.Error("ошибка сохранения ссылки на документ", zap.Error(err))
		return "", errors.New("ошибка при сохранении документа")
	}

	if oldURL != nil && *oldURL != "" {
		if err := s.fileStorage.DeleteFile(ctx, *oldURL); err != nil {
			s.logger.Warn("не удалось удалить старый документ", zap.String("url", *oldURL), zap.Error(err))
		}
	}

	return url, nil
}
