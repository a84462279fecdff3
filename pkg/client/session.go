package client

// SessionContext — явное состояние сессии, передаваемое в вызовы клиента
// вместо чтения из глобального окружения. Значение, а не ссылка: обновление
// токена — это новый SessionContext.
type SessionContext struct {
	AccessToken string
	UserID      int64
	Role        string
}

// Authenticated сообщает, есть ли у сессии токен доступа.
func (s SessionContext) Authenticated() bool {
	return s.AccessToken != ""
}
