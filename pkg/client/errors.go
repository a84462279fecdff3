package client

import (
	"encoding/json"
	"fmt"
)

const genericErrorMessage = "не удалось выполнить запрос, попробуйте еще раз"

// Порядок извлечения сообщения из тела ошибки: первое непустое поле
// в этом списке определяет текст для пользователя.
var messageFieldOrder = []string{
	"professional",
	"start_datetime",
	"duration_minutes",
	"modality",
	"non_field_errors",
	"detail",
}

// APIError — ошибка, возвращенная сервером. Fields содержит пополевые
// сообщения валидации, если сервер их прислал.
type APIError struct {
	StatusCode int
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: статус %d: %s", e.StatusCode, e.Message())
}

// Message возвращает сообщение для пользователя: первое доступное поле
// в порядке professional, start_datetime, duration_minutes, modality,
// non_field_errors, detail; иначе общее сообщение.
func (e *APIError) Message() string {
	for _, field := range messageFieldOrder {
		if msgs, ok := e.Fields[field]; ok && len(msgs) > 0 && msgs[0] != "" {
			return msgs[0]
		}
	}
	return genericErrorMessage
}

// FieldMessages возвращает сообщения для конкретного поля формы.
func (e *APIError) FieldMessages(field string) []string {
	return e.Fields[field]
}

// parseAPIError разбирает тело ошибки. Значения полей могут быть строкой
// или массивом строк; оба варианта приводятся к срезу.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Fields: map[string][]string{}}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return apiErr
	}

	for field, value := range raw {
		var single string
		if err := json.Unmarshal(value, &single); err == nil {
			apiErr.Fields[field] = []string{single}
			continue
		}

		var many []string
		if err := json.Unmarshal(value, &many); err == nil {
			apiErr.Fields[field] = many
		}
	}

	return apiErr
}
