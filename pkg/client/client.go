// Package client — Go-клиент API записи: загрузка занятости, расчет статусов
// слотов и отправка бронирования. Сетевые операции принимают context.Context,
// сессия передается явно через SessionContext.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"psylink/internal/availability"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient создает клиент API. baseURL — адрес сервера без пути API
// (например, "http://localhost:8080").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL + "/api/v1",
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BusyInterval — занятый интервал из ответа эндпоинта занятости.
type BusyInterval struct {
	ID    int64     `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type busyResponse struct {
	Professional []BusyInterval `json:"professional"`
	Patient      []BusyInterval `json:"patient"`
}

// Appointment — запись на сеанс в ответах API. JoinURL присутствует только
// для онлайн-сеансов; его отсутствие — валидный ответ, не ошибка.
type Appointment struct {
	ID              int64     `json:"id"`
	PatientID       int64     `json:"patient"`
	ProfessionalID  int64     `json:"professional"`
	StartDatetime   time.Time `json:"start_datetime"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	Modality        *string   `json:"modality,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	JoinURL         *string   `json:"join_url,omitempty"`
}

// GetBusy запрашивает занятость профессионала и самого пациента на дату.
func (c *Client) GetBusy(ctx context.Context, session SessionContext, professionalID int64, date time.Time) (availability.BusySet, error) {
	query := url.Values{}
	query.Set("professional", strconv.FormatInt(professionalID, 10))
	query.Set("date", date.Format("2006-01-02"))

	var resp busyResponse
	if err := c.do(ctx, session, http.MethodGet, "/appointments/busy/?"+query.Encode(), nil, &resp); err != nil {
		return availability.BusySet{}, err
	}

	return availability.BusySet{
		Professional: toIntervals(resp.Professional),
		Patient:      toIntervals(resp.Patient),
	}, nil
}

// CreateAppointmentRequest — тело запроса создания записи. StartDatetime —
// ISO-8601 в UTC.
type CreateAppointmentRequest struct {
	Professional    int64  `json:"professional"`
	StartDatetime   string `json:"start_datetime"`
	DurationMinutes int    `json:"duration_minutes"`
	Modality        string `json:"modality,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

// CreateAppointment отправляет запрос на создание записи. Ошибки валидации
// сервера возвращаются как *APIError с пополевыми сообщениями.
func (c *Client) CreateAppointment(ctx context.Context, session SessionContext, req CreateAppointmentRequest) (*Appointment, error) {
	var appt Appointment
	if err := c.do(ctx, session, http.MethodPost, "/appointments/", req, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// UpdateAppointment частично обновляет запись (PATCH-семантика: передаются
// только изменяемые поля).
func (c *Client) UpdateAppointment(ctx context.Context, session SessionContext, id int64, patch map[string]any) (*Appointment, error) {
	var appt Appointment
	path := fmt.Sprintf("/appointments/%d/", id)
	if err := c.do(ctx, session, http.MethodPatch, path, patch, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// CancelAppointment отменяет запись через частичное обновление статуса.
func (c *Client) CancelAppointment(ctx context.Context, session SessionContext, id int64) (*Appointment, error) {
	return c.UpdateAppointment(ctx, session, id, map[string]any{"status": "cancelled"})
}

func (c *Client) do(ctx context.Context, session SessionContext, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return parseAPIError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("ошибка разбора ответа: %w", err)
		}
	}

	return nil
}

func toIntervals(items []BusyInterval) []availability.Interval {
	intervals := make([]availability.Interval, 0, len(items))
	for _, item := range items {
		iv, err := availability.NewInterval(item.Start, item.End)
		if err != nil {
			continue
		}
		intervals = append(intervals, iv)
	}
	return intervals
}
