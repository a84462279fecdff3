package client

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIErrorMessagePriority(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "professional beats everything",
			body:     `{"detail":"общая ошибка","start_datetime":["время занято"],"professional":["специалист не найден"]}`,
			expected: "специалист не найден",
		},
		{
			name:     "start_datetime beats duration",
			body:     `{"duration_minutes":["слишком долго"],"start_datetime":["время занято"]}`,
			expected: "время занято",
		},
		{
			name:     "duration beats modality",
			body:     `{"modality":["недоступный формат"],"duration_minutes":["слишком долго"]}`,
			expected: "слишком долго",
		},
		{
			name:     "modality beats non_field_errors",
			body:     `{"non_field_errors":["конфликт"],"modality":["недоступный формат"]}`,
			expected: "недоступный формат",
		},
		{
			name:     "non_field_errors beats detail",
			body:     `{"detail":"общая ошибка","non_field_errors":["конфликт"]}`,
			expected: "конфликт",
		},
		{
			name:     "detail alone",
			body:     `{"detail":"учетные данные не предоставлены"}`,
			expected: "учетные данные не предоставлены",
		},
		{
			name:     "unknown fields fall back to generic",
			body:     `{"reason":["слишком длинная причина"]}`,
			expected: genericErrorMessage,
		},
		{
			name:     "non-json body falls back to generic",
			body:     `<html>502 Bad Gateway</html>`,
			expected: genericErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := parseAPIError(http.StatusBadRequest, []byte(tt.body))
			assert.Equal(t, tt.expected, apiErr.Message())
		})
	}
}

func TestParseAPIErrorStringAndArrayValues(t *testing.T) {
	apiErr := parseAPIError(http.StatusBadRequest, []byte(`{"detail":"строка","start_datetime":["первое","второе"]}`))

	assert.Equal(t, []string{"строка"}, apiErr.FieldMessages("detail"))
	assert.Equal(t, []string{"первое", "второе"}, apiErr.FieldMessages("start_datetime"))
	assert.Nil(t, apiErr.FieldMessages("modality"))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}
