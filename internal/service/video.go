package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"psylink/config"
)

const zoomAPIBase = "https://api.zoom.us/v2"
const zoomTokenURL = "https://zoom.us/oauth/token"

// VideoServiceImpl создает видеовстречи через server-to-server OAuth Zoom.
// Токен кешируется до истечения срока действия.
type VideoServiceImpl struct {
	cfg        config.ZoomConfig
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewVideoService(cfg config.ZoomConfig, logger *zap.Logger) *VideoServiceImpl {
	return &VideoServiceImpl{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

func (s *VideoServiceImpl) CreateMeeting(ctx context.Context, topic string, start time.Time, durationMinutes int) (string, error) {
	if s.cfg.ClientID == "" || s.cfg.ClientSecret == "" {
		return "", errors.New("видеосервис не настроен")
	}

	token, err := s.getAccessToken(ctx)
	if err != nil {
		return "", err
	}

	payload := map[string]interface{}{
		"topic":      topic,
		"type":       2,
		"start_time": start.UTC().Format("2006-01-02T15:04:05Z"),
		"duration":   durationMinutes,
		"timezone":   "UTC",
		"settings": map[string]interface{}{
			"join_before_host":  false,
			"waiting_room":      true,
			"approval_type":     2,
			"audio":             "both",
			"auto_recording":    "none",
			"participant_video": true,
			"host_video":        true,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	endpoint := fmt.Sprintf("%s/users/%s/meetings", zoomAPIBase, url.PathEscape(s.cfg.AccountUser))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка запроса к Zoom: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("Zoom вернул статус %d", resp.StatusCode)
	}

	var meeting struct {
		ID      int64  `json:"id"`
		JoinURL string `json:"join_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meeting); err != nil {
		return "", fmt.Errorf("ошибка разбора ответа Zoom: %w", err)
	}

	if meeting.JoinURL == "" {
		return "", errors.New("Zoom не вернул ссылку на встречу")
	}

	s.logger.Info("создана видеовстреча", zap.Int64("meetingID", meeting.ID))

	return meeting.JoinURL, nil
}

func (s *VideoServiceImpl) getAccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		return s.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "account_credentials")
	form.Set("account_id", s.cfg.AccountUser)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, zoomTokenURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса токена: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(s.cfg.ClientID + ":" + s.cfg.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка получения токена Zoom: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Zoom OAuth вернул статус %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("ошибка разбора токена Zoom: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return "", errors.New("Zoom не вернул токен")
	}

	s.accessToken = tokenResp.AccessToken
	// минута запаса до фактического истечения
	s.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)

	return s.accessToken, nil
}
