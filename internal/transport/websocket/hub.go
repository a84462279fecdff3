package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"psylink/internal/domain"
	"psylink/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	maxMessageSize = 64 * 1024
)

// Event — кадр протокола чата поверх websocket.
type Event struct {
	Type           string      `json:"type"`
	ConversationID int64       `json:"conversation_id,omitempty"`
	From           int64       `json:"from,omitempty"`
	Data           interface{} `json:"data,omitempty"`
	Timestamp      string      `json:"timestamp"`
}

const (
	EventMessage = "message"
	EventTyping  = "typing"
	EventRead    = "read"
	EventPing    = "ping"
	EventPong    = "pong"
)

type Client struct {
	UserID int64
	Role   domain.UserRole
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
}

// Hub держит активные websocket-подключения чата и раздаёт события
// участникам диалогов.
type Hub struct {
	clients map[int64]*Client

	register   chan *Client
	unregister chan *Client

	chatSvc service.ChatService
	authSvc service.AuthService
	logger  *zap.Logger

	mutex sync.RWMutex
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

func NewHub(chatSvc service.ChatService, authSvc service.AuthService, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		chatSvc:    chatSvc,
		authSvc:    authSvc,
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			if old, ok := h.clients[client.UserID]; ok {
				close(old.Send)
			}
			h.clients[client.UserID] = client
			h.mutex.Unlock()
			h.logger.Info("клиент чата подключен", zap.Int64("userID", client.UserID))

		case client := <-h.unregister:
			h.mutex.Lock()
			if current, ok := h.clients[client.UserID]; ok && current == client {
				delete(h.clients, client.UserID)
				close(client.Send)
			}
			h.mutex.Unlock()
			h.logger.Info("клиент чата отключен", zap.Int64("userID", client.UserID))
		}
	}
}

// BroadcastMessage доставляет сохраненное сообщение подключенному
// собеседнику. Отправитель получает его в ответе REST-запроса.
func (h *Hub) BroadcastMessage(msg *domain.ChatMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conversations, err := h.chatSvc.ListConversations(ctx, msg.SenderID)
	if err != nil {
		h.logger.Warn("не удалось определить участников диалога", zap.Int64("conversationID", msg.ConversationID), zap.Error(err))
		return
	}

	var recipientID int64
	for _, conv := range conversations {
		if conv.ID != msg.ConversationID {
			continue
		}
		if conv.PatientID == msg.SenderID {
			recipientID = conv.ProfessionalID
		} else {
			recipientID = conv.PatientID
		}
		break
	}

	if recipientID == 0 {
		return
	}

	h.sendEvent(recipientID, &Event{
		Type:           EventMessage,
		ConversationID: msg.ConversationID,
		From:           msg.SenderID,
		Data:           msg,
		Timestamp:      time.Now().Format(time.RFC3339),
	})
}

func (h *Hub) sendEvent(userID int64, event *Event) {
	h.mutex.RLock()
	client, ok := h.clients[userID]
	h.mutex.RUnlock()

	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("ошибка сериализации события", zap.Error(err))
		return
	}

	select {
	case client.Send <- data:
	default:
		h.logger.Warn("канал клиента переполнен, событие отброшено", zap.Int64("userID", userID))
	}
}

// handleEvent обрабатывает входящий кадр: typing и read ретранслируются
// собеседнику, ping получает pong. Сами сообщения ходят через REST.
func (h *Hub) handleEvent(client *Client, event *Event) {
	event.From = client.UserID
	event.Timestamp = time.Now().Format(time.RFC3339)

	switch event.Type {
	case EventTyping, EventRead:
		h.relayToCounterpart(client, event)
	case EventPing:
		h.sendEvent(client.UserID, &Event{
			Type:      EventPong,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	default:
		h.logger.Warn("неизвестный тип события", zap.String("type", event.Type))
	}
}

func (h *Hub) relayToCounterpart(client *Client, event *Event) {
	if event.ConversationID == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conversations, err := h.chatSvc.ListConversations(ctx, client.UserID)
	if err != nil {
		h.logger.Warn("не удалось проверить доступ к диалогу", zap.Int64("userID", client.UserID), zap.Error(err))
		return
	}

	for _, conv := range conversations {
		if conv.ID != event.ConversationID {
			continue
		}
		if conv.PatientID == client.UserID {
			h.sendEvent(conv.ProfessionalID, event)
		} else {
			h.sendEvent(conv.PatientID, event)
		}
		return
	}
}

// HandleWebSocket апгрейдит соединение. Токен передается query-параметром:
// заголовки при websocket-подключении из браузера недоступны.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "требуется токен"})
		return
	}

	userID, role, err := h.authSvc.ParseToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "недействительный токен"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("ошибка апгрейда соединения", zap.Error(err))
		return
	}

	client := &Client{
		UserID: userID,
		Role:   role,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Hub:    h,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("ошибка чтения websocket", zap.Int64("userID", c.UserID), zap.Error(err))
			}
			break
		}

		var event Event
		if err := json.Unmarshal(message, &event); err != nil {
			c.Hub.logger.Warn("неразборчивый кадр", zap.Int64("userID", c.UserID), zap.Error(err))
			continue
		}

		c.Hub.handleEvent(c, &event)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
