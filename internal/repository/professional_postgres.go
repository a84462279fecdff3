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

type ProfessionalRepo struct {
	db *pgxpool.Pool
}

func NewProfessionalRepository(db *pgxpool.Pool) *ProfessionalRepo {
	return &ProfessionalRepo{
		db: db,
	}
}

const professionalColumns = `
	p.id, p.user_id, p.specialty, p.specialty_other, p.license_number, p.main_focus,
	p.work_modality, p.languages, p.experience_years, p.certificate_url, p.cv_url,
	p.cases_attended, p.rating, p.created_at, p.updated_at,
	u.first_name || ' ' || u.last_name AS full_name, u.email, u.phone
`

func scanProfessional(row pgx.Row) (*domain.Professional, error) {
	var p domain.Professional
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Specialty,
		&p.SpecialtyOther,
		&p.LicenseNumber,
		&p.MainFocus,
		&p.WorkModality,
		&p.Languages,
		&p.ExperienceYears,
		&p.CertificateURL,
		&p.CVURL,
		&p.CasesAttended,
		&p.Rating,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.FullName,
		&p.Email,
		&p.Phone,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfessionalRepo) Create(ctx context.Context, userID int64, dto domain.CreateProfessionalDTO) (int64, error) {
	var id int64
	query := `
		INSERT INTO professionals (user_id, specialty, specialty_other, license_number, main_focus, work_modality, languages, experience_years, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		ctx,
		query,
		userID,
		dto.Specialty,
		dto.SpecialtyOther,
		dto.LicenseNumber,
		dto.MainFocus,
		dto.WorkModality,
		dto.Languages,
		dto.ExperienceYears,
		now,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания профиля специалиста: %w", err)
	}

	return id, nil
}

func (r *ProfessionalRepo) GetByID(ctx context.Context, id int64) (*domain.Professional, error) {
	query := `
		SELECT ` + professionalColumns + `
		FROM professionals p
		JOIN users u ON p.user_id = u.id
		WHERE p.id = $1
	`

	p, err := scanProfessional(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("специалист с id %d не найден", id)
		}
		return nil, fmt.Errorf("ошибка получения специалиста: %w", err)
	}

	return p, nil
}

func (r *ProfessionalRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Professional, error) {
	query := `
		SELECT ` + professionalColumns + `
		FROM professionals p
		JOIN users u ON p.user_id = u.id
		WHERE p.user_id = $1
	`

	p, err := scanProfessional(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("профиль специалиста для пользователя %d не найден", userID)
		}
		return nil, fmt.Errorf("ошибка получения специалиста: %w", err)
	}

	return p, nil
}

func (r *ProfessionalRepo) Update(ctx context.Context, id int64, dto domain.UpdateProfessionalDTO) error {
	setValues := []string{}
	args := []interface{}{id}
	argId := 2

	if dto.Specialty != nil {
		setValues = append(setValues, fmt.Sprintf("specialty = $%d", argId))
		args = append(args, *dto.Specialty)
		argId++
	}

	if dto.SpecialtyOther != nil {
		setValues = append(setValues, fmt.Sprintf("specialty_other = $%d", argId))
		args = append(args, *dto.SpecialtyOther)
		argId++
	}

	if dto.LicenseNumber != nil {
		setValues = append(setValues, fmt.Sprintf("license_number = $%d", argId))
		args = append(args, *dto.LicenseNumber)
		argId++
	}

	if dto.MainFocus != nil {
		setValues = append(setValues, fmt.Sprintf("main_focus = $%d", argId))
		args = append(args, *dto.MainFocus)
		argId++
	}

	if dto.WorkModality != nil {
		setValues = append(setValues, fmt.Sprintf("work_modality = $%d", argId))
		args = append(args, *dto.WorkModality)
		argId++
	}

	if dto.Languages != nil {
		setValues = append(setValues, fmt.Sprintf("languages = $%d", argId))
		args = append(args, *dto.Languages)
		argId++
	}

	if dto.ExperienceYears != nil {
		setValues = append(setValues, fmt.Sprintf("experience_years = $%d", argId))
		args = append(args, *dto.ExperienceYears)
		argId++
	}

	if len(setValues) == 0 {
		return nil
	}

	setValues = append(setValues, fmt.Sprintf("updated_at = $%d", argId))
	args = append(args, time.Now())

	setQuery := "UPDATE professionals SET " + strings.Join(setValues, ", ") + " WHERE id = $1"

	_, err := r.db.Exec(ctx, setQuery, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления специалиста: %w", err)
	}

	return nil
}

func (r *ProfessionalRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM professionals WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления специалиста: %w", err)
	}

	return nil
}

func buildProfessionalConditions(filter domain.ProfessionalFilter) ([]string, []interface{}) {
	conditions := []string{"u.is_active = true"}
	args := []interface{}{}
	argCount := 1

	if filter.Specialty != nil {
		conditions = append(conditions, fmt.Sprintf("p.specialty = $%d", argCount))
		args = append(args, *filter.Specialty)
		argCount++
	}

	if filter.WorkModality != nil {
		conditions = append(conditions, fmt.Sprintf("p.work_modality = $%d", argCount))
		args = append(args, *filter.WorkModality)
		argCount++
	}

	if filter.Query != nil {
		conditions = append(conditions, fmt.Sprintf("(u.first_name ILIKE $%d OR u.last_name ILIKE $%d OR p.main_focus ILIKE $%d)", argCount, argCount, argCount))
		args = append(args, "%"+*filter.Query+"%")
		argCount++
	}

	return conditions, args
}

func (r *ProfessionalRepo) List(ctx context.Context, filter domain.ProfessionalFilter) ([]domain.Professional, error) {
	conditions, args := buildProfessionalConditions(filter)
	argCount := len(args) + 1

	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT `+professionalColumns+`
		FROM professionals p
		JOIN users u ON p.user_id = u.id
		WHERE %s
		ORDER BY p.rating DESC, p.id
		LIMIT $%d OFFSET $%d
	`, strings.Join(conditions, " AND "), argCount, argCount+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса списка специалистов: %w", err)
	}
	defer rows.Close()

	professionals := make([]domain.Professional, 0)
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения данных специалиста: %w", err)
		}
		professionals = append(professionals, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	return professionals, nil
}

func (r *ProfessionalRepo) CountByFilter(ctx context.Context, filter domain.ProfessionalFilter) (int, error) {
	conditions, args := buildProfessionalConditions(filter)

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM professionals p
		JOIN users u ON p.user_id = u.id
		WHERE %s
	`, strings.Join(conditions, " AND "))

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта специалистов: %w", err)
	}

	return count, nil
}

func (r *ProfessionalRepo) UpdateCertificateURL(ctx context.Context, id int64, url string) error {
	query := `UPDATE professionals SET certificate_url = $1, updated_at = $2 WHERE id = $3`

	_, err := r.db.Exec(ctx, query, url, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка обновления сертификата: %w", err)
	}

	return nil
}

func (r *ProfessionalRepo) UpdateCVURL(ctx context.Context, id int64, url string) error {
	query := `UPDATE professionals SET cv_url = $1, updated_at = $2 WHERE id = $3`

	_, err := r.db.Exec(ctx, query, url, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка обновления резюме: %w", err)
	}

	return nil
}

func (r *ProfessionalRepo) IncrementCasesAttended(ctx context.Context, id int64) error {
	query := `UPDATE professionals SET cases_attended = cases_attended + 1, updated_at = $1 WHERE id = $2`

	_, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка обновления счётчика приёмов: %w", err)
	}

	return nil
}
