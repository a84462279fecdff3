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

type AppointmentRepo struct {
	db *pgxpool.Pool
}

func NewAppointmentRepository(db *pgxpool.Pool) *AppointmentRepo {
	return &AppointmentRepo{
		db: db,
	}
}

const appointmentColumns = `
	a.id, a.patient_id, a.professional_id, a.start_datetime, a.duration_minutes,
	a.status, a.modality, a.reason, a.notes, a.payment_id, a.join_url,
	a.created_at, a.updated_at,
	pu.first_name || ' ' || pu.last_name AS patient_name,
	su.first_name || ' ' || su.last_name AS professional_name
`

const appointmentJoins = `
	FROM appointments a
	JOIN users pu ON a.patient_id = pu.id
	JOIN professionals p ON a.professional_id = p.id
	JOIN users su ON p.user_id = su.id
`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.ProfessionalID,
		&a.StartDatetime,
		&a.DurationMinutes,
		&a.Status,
		&a.Modality,
		&a.Reason,
		&a.Notes,
		&a.PaymentID,
		&a.JoinURL,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.PatientName,
		&a.ProfessionalName,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepo) Create(ctx context.Context, patientID int64, dto domain.CreateAppointmentDTO) (int64, error) {
	var id int64
	query := `
		INSERT INTO appointments (patient_id, professional_id, start_datetime, duration_minutes, status, modality, reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		ctx,
		query,
		patientID,
		dto.ProfessionalID,
		dto.StartDatetime,
		dto.DurationMinutes,
		domain.AppointmentStatusScheduled,
		dto.Modality,
		dto.Reason,
		now,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания записи на приём: %w", err)
	}

	return id, nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + appointmentJoins + ` WHERE a.id = $1`

	appointment, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("запись с id %d не найдена", id)
		}
		return nil, fmt.Errorf("ошибка получения записи: %w", err)
	}

	return appointment, nil
}

func (r *AppointmentRepo) Update(ctx context.Context, id int64, dto domain.UpdateAppointmentDTO) error {
	setValues := []string{}
	args := []interface{}{id}
	argId := 2

	if dto.Status != nil {
		setValues = append(setValues, fmt.Sprintf("status = $%d", argId))
		args = append(args, *dto.Status)
		argId++
	}

	if dto.StartDatetime != nil {
		setValues = append(setValues, fmt.Sprintf("start_datetime = $%d", argId))
		args = append(args, *dto.StartDatetime)
		argId++
	}

	if dto.DurationMinutes != nil {
		setValues = append(setValues, fmt.Sprintf("duration_minutes = $%d", argId))
		args = append(args, *dto.DurationMinutes)
		argId++
	}

	if dto.Notes != nil {
		setValues = append(setValues, fmt.Sprintf("notes = $%d", argId))
		args = append(args, *dto.Notes)
		argId++
	}

	if dto.PaymentID != nil {
		setValues = append(setValues, fmt.Sprintf("payment_id = $%d", argId))
		args = append(args, *dto.PaymentID)
		argId++
	}

	if len(setValues) == 0 {
		return nil
	}

	setValues = append(setValues, fmt.Sprintf("updated_at = $%d", argId))
	args = append(args, time.Now())

	setQuery := "UPDATE appointments SET " + strings.Join(setValues, ", ") + " WHERE id = $1"

	_, err := r.db.Exec(ctx, setQuery, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления записи: %w", err)
	}

	return nil
}

func (r *AppointmentRepo) UpdateJoinURL(ctx context.Context, id int64, joinURL string) error {
	query := `UPDATE appointments SET join_url = $1, updated_at = $2 WHERE id = $3`

	_, err := r.db.Exec(ctx, query, joinURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка сохранения ссылки на сеанс: %w", err)
	}

	return nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM appointments WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления записи: %w", err)
	}

	return nil
}

func buildAppointmentConditions(filter domain.AppointmentFilter) ([]string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}
	argCount := 1

	if filter.PatientID != nil {
		conditions = append(conditions, fmt.Sprintf("a.patient_id = $%d", argCount))
		args = append(args, *filter.PatientID)
		argCount++
	}

	if filter.ProfessionalID != nil {
		conditions = append(conditions, fmt.Sprintf("a.professional_id = $%d", argCount))
		args = append(args, *filter.ProfessionalID)
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	if filter.ExcludeStatus != nil {
		conditions = append(conditions, fmt.Sprintf("a.status != $%d", argCount))
		args = append(args, *filter.ExcludeStatus)
		argCount++
	}

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("a.start_datetime >= $%d", argCount))
		args = append(args, *filter.StartDate)
		argCount++
	}

	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("a.start_datetime < $%d", argCount))
		args = append(args, *filter.EndDate)
		argCount++
	}

	if len(conditions) == 0 {
		conditions = append(conditions, "TRUE")
	}

	return conditions, args
}

func (r *AppointmentRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	conditions, args := buildAppointmentConditions(filter)
	argCount := len(args) + 1

	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT `+appointmentColumns+appointmentJoins+`
		WHERE %s
		ORDER BY a.start_datetime DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(conditions, " AND "), argCount, argCount+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса списка записей: %w", err)
	}
	defer rows.Close()

	appointments := make([]domain.Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения данных записи: %w", err)
		}
		appointments = append(appointments, *appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	return appointments, nil
}

func (r *AppointmentRepo) CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	conditions, args := buildAppointmentConditions(filter)

	query := fmt.Sprintf(`
		SELECT COUNT(*)`+appointmentJoins+`
		WHERE %s
	`, strings.Join(conditions, " AND "))

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта записей: %w", err)
	}

	return count, nil
}

// GetBusyIntervals возвращает занятость на календарные сутки дня day:
// активные записи специалиста плюс активные записи самого пациента
// (у любых специалистов). Учитываются только записи со статусом scheduled.
func (r *AppointmentRepo) GetBusyIntervals(ctx context.Context, professionalID, patientID int64, day time.Time) (*domain.BusyResponse, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
		SELECT id, start_datetime, start_datetime + duration_minutes * INTERVAL '1 minute' AS end_datetime, professional_id, patient_id
		FROM appointments
		WHERE status = 'scheduled'
		  AND start_datetime >= $1 AND start_datetime < $2
		  AND (professional_id = $3 OR patient_id = $4)
	`

	rows, err := r.db.Query(ctx, query, dayStart, dayEnd, professionalID, patientID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса занятости: %w", err)
	}
	defer rows.Close()

	busy := &domain.BusyResponse{
		Professional: make([]domain.BusyInterval, 0),
		Patient:      make([]domain.BusyInterval, 0),
	}

	for rows.Next() {
		var (
			interval domain.BusyInterval
			proID    int64
			patID    int64
		)
		if err := rows.Scan(&interval.ID, &interval.Start, &interval.End, &proID, &patID); err != nil {
			return nil, fmt.Errorf("ошибка чтения интервала занятости: %w", err)
		}

		if proID == professionalID {
			busy.Professional = append(busy.Professional, interval)
		}
		if patID == patientID {
			busy.Patient = append(busy.Patient, interval)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	return busy, nil
}

// HasConflict проверяет пересечение полуоткрытого окна [start, end) с
// активными записями специалиста или пациента. excludeID исключает саму
// переносимую запись из проверки.
func (r *AppointmentRepo) HasConflict(ctx context.Context, professionalID, patientID int64, start, end time.Time, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM appointments
			WHERE status = 'scheduled'
			  AND id != $1
			  AND (professional_id = $2 OR patient_id = $3)
			  AND start_datetime < $5
			  AND start_datetime + duration_minutes * INTERVAL '1 minute' > $4
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, excludeID, professionalID, patientID, start, end).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки пересечений: %w", err)
	}

	return exists, nil
}

// CompletePast переводит в completed записи, закончившиеся до before.
func (r *AppointmentRepo) CompletePast(ctx context.Context, before time.Time) (int64, error) {
	query := `
		UPDATE appointments
		SET status = 'completed', updated_at = $1
		WHERE status = 'scheduled'
		  AND start_datetime + duration_minutes * INTERVAL '1 minute' <= $2
	`

	tag, err := r.db.Exec(ctx, query, time.Now(), before)
	if err != nil {
		return 0, fmt.Errorf("ошибка завершения прошедших записей: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *AppointmentRepo) ListUpcoming(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + appointmentJoins + `
		WHERE a.status = 'scheduled'
		  AND a.start_datetime >= $1 AND a.start_datetime < $2
		ORDER BY a.start_datetime
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса предстоящих записей: %w", err)
	}
	defer rows.Close()

	appointments := make([]domain.Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения данных записи: %w", err)
		}
		appointments = append(appointments, *appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	return appointments, nil
}
