package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vnkhanh/pathfinder-backend/utils"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 256

	AdminTopic = "admin"
)

func QuizTopic(sessionID string) string {
	return "quiz:" + sessionID
}

func UserTopic(userID string) string {
	return "user:" + userID
}

type Client struct {
	conn  *websocket.Conn
	send  chan []byte
	topic string
}

// Hub giữ các kết nối theo topic (quiz:<sessionId>, admin).
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*Client]struct{})}
}

var H = NewHub()

func (h *Hub) Register(topic string, conn *websocket.Conn) *Client {
	client := &Client{
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
		topic: topic,
	}

	h.mu.Lock()
	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = make(map[*Client]struct{})
	}
	h.topics[topic][client] = struct{}{}
	h.mu.Unlock()

	go client.writePump()
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.topics[client.topic]
	if !ok {
		return
	}
	if _, ok := clients[client]; ok {
		close(client.send)
		delete(clients, client)
	}
	if len(clients) == 0 {
		delete(h.topics, client.topic)
	}
}

// Broadcast gửi data tới mọi client của topic; client chậm sẽ bị bỏ qua message.
func (h *Hub) Broadcast(topic string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.topics[topic] {
		select {
		case client.send <- data:
		default:
		}
	}
}

func (h *Hub) BroadcastJSON(topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		utils.Log.Error().Err(err).Str("topic", topic).Msg("JSON marshal error")
		return
	}
	h.Broadcast(topic, data)
}

// Stats trả về số kết nối theo từng topic.
func (h *Hub) Stats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := make(map[string]int, len(h.topics))
	for topic, clients := range h.topics {
		stats[topic] = len(clients)
	}
	return stats
}

// Enqueue gửi riêng cho một client; an toàn khi client chưa bị Unregister.
func (c *Client) Enqueue(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) writePump() {
	defer func() {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
		c.conn.Close()
	}()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

type QuizAnswerEvent struct {
	Type       string `json:"type"`
	SessionID  string `json:"sessionId"`
	QuestionID string `json:"questionId"`
	IsCorrect  bool   `json:"isCorrect"`
	Score      int    `json:"score"`
}

type QuizEndedEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	HistoryID string `json:"historyId"`
	Score     int    `json:"score"`
}

type AdminRequestEvent struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Status   string `json:"status"`
}

func SendQuizAnswer(sessionID, questionID string, isCorrect bool, score int) {
	H.BroadcastJSON(QuizTopic(sessionID), QuizAnswerEvent{
		Type:       "answer_submitted",
		SessionID:  sessionID,
		QuestionID: questionID,
		IsCorrect:  isCorrect,
		Score:      score,
	})
}

func SendQuizEnded(sessionID, historyID string, score int) {
	H.BroadcastJSON(QuizTopic(sessionID), QuizEndedEvent{
		Type:      "quiz_ended",
		SessionID: sessionID,
		HistoryID: historyID,
		Score:     score,
	})
}

// BroadcastAdminRequest báo cho superuser khi có yêu cầu admin mới hoặc đã xử lý.
func BroadcastAdminRequest(eventType, userID, username, email, status string) {
	H.BroadcastJSON(AdminTopic, AdminRequestEvent{
		Type:     eventType,
		UserID:   userID,
		Username: username,
		Email:    email,
		Status:   status,
	})
}

type BadgeEvent struct {
	Type        string `json:"type"`
	UnreadCount int64  `json:"unreadCount"`
}

type NotificationEvent struct {
	Type         string      `json:"type"`
	Notification interface{} `json:"notification"`
}

// SendNotification đẩy thông báo mới tới user đang online.
func SendNotification(userID string, notification interface{}) {
	H.BroadcastJSON(UserTopic(userID), NotificationEvent{
		Type:         "notification",
		Notification: notification,
	})
}

// SendBadgeUpdate cập nhật số thông báo chưa đọc.
func SendBadgeUpdate(userID string, unread int64) {
	H.BroadcastJSON(UserTopic(userID), BadgeEvent{
		Type:        "badge_update",
		UnreadCount: unread,
	})
}
