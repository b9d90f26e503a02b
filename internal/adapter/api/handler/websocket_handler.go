package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"gigspace/internal/infrastructure/changefeed"
	ws "gigspace/internal/infrastructure/websocket"
	"gigspace/internal/realtime"
	"gigspace/internal/usecase"
	"gigspace/pkg/errors"
)

// WebSocketHandler upgrades connections and routes client frames to the
// realtime session bound to each one.
type WebSocketHandler struct {
	wsManager   *ws.Manager
	rtManager   *realtime.Manager
	chatUseCase *usecase.ChatUseCase
	jobUseCase  *usecase.JobUseCase
	userUseCase *usecase.UserUseCase

	mu       sync.Mutex
	sessions map[*realtime.Session]struct{}
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // You should restrict this in production
	},
}

func NewWebSocketHandler(
	feed *changefeed.Feed,
	wsManager *ws.Manager,
	rtManager *realtime.Manager,
	chatUseCase *usecase.ChatUseCase,
	jobUseCase *usecase.JobUseCase,
	userUseCase *usecase.UserUseCase,
) *WebSocketHandler {
	h := &WebSocketHandler{
		wsManager:   wsManager,
		rtManager:   rtManager,
		chatUseCase: chatUseCase,
		jobUseCase:  jobUseCase,
		userUseCase: userUseCase,
		sessions:    make(map[*realtime.Session]struct{}),
	}

	// Feed health changes reach every connected client so the UI can show
	// a stale-data banner while delivery is degraded.
	feed.OnStatusChange(func(s changefeed.Status) {
		h.mu.Lock()
		sessions := make([]*realtime.Session, 0, len(h.sessions))
		for session := range h.sessions {
			sessions = append(sessions, session)
		}
		h.mu.Unlock()

		for _, session := range sessions {
			session.OnStatus(s)
		}
	})

	return h
}

type clientFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	JobID          string `json:"job_id,omitempty"`
	Topic          string `json:"topic,omitempty"`
	ID             string `json:"id,omitempty"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := ws.NewClient(userID, conn)

	session := realtime.NewSession(userID, h.rtManager, func(frame []byte) {
		select {
		case client.Send <- frame:
		default:
			// Slow consumer; keepalive timeouts will reap the connection.
		}
	})

	client.OnMessage = func(data []byte) {
		h.handleFrame(client, session, data)
	}
	client.OnClose = func() {
		h.mu.Lock()
		delete(h.sessions, session)
		h.mu.Unlock()
		session.Close()
	}

	h.mu.Lock()
	h.sessions[session] = struct{}{}
	h.mu.Unlock()

	h.wsManager.Register <- client

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	go h.userUseCase.Touch(context.Background(), userID)

	// The notification stream rides along for the whole session.
	if err := session.Start(context.Background()); err != nil {
		log.Printf("WebSocket Error: Failed to start session for %s: %v", userID, err)
	}

	// A client that connects mid-outage still learns about it.
	if status := h.rtManager.Status(); status == changefeed.StatusDegraded {
		session.OnStatus(status)
	}

	return nil
}

func (h *WebSocketHandler) handleFrame(client *ws.Client, session *realtime.Session, data []byte) {
	var frame clientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		h.sendError(client, "Malformed frame")
		return
	}

	ctx := context.Background()

	switch frame.Type {
	case "join_conversation":
		// Membership check before the topic attaches.
		if _, err := h.chatUseCase.GetConversation(ctx, client.UserID, frame.ConversationID); err != nil {
			h.sendError(client, "Conversation unavailable")
			return
		}
		if err := session.JoinConversation(ctx, frame.ConversationID); err != nil {
			log.Printf("WebSocket Error: join conversation %s for %s: %v", frame.ConversationID, client.UserID, err)
			h.sendError(client, "Failed to join conversation")
		}

	case "leave_conversation":
		session.LeaveConversation(frame.ConversationID)

	case "watch_bids":
		job, err := h.jobUseCase.GetJob(ctx, frame.JobID)
		if err != nil || job.ClientID != client.UserID {
			h.sendError(client, "Job unavailable")
			return
		}
		if err := session.WatchJobBids(ctx, frame.JobID); err != nil {
			log.Printf("WebSocket Error: watch bids %s for %s: %v", frame.JobID, client.UserID, err)
			h.sendError(client, "Failed to watch bids")
		}

	case "unwatch_bids":
		session.UnwatchJobBids(frame.JobID)

	case "mark_read":
		if err := session.MarkRead(ctx, realtime.Topic(frame.Topic), frame.ID); err != nil {
			h.sendError(client, "Failed to mark read")
		}

	case "ping":
		go h.userUseCase.Touch(ctx, client.UserID)
		h.send(client, map[string]string{"type": "pong"})

	default:
		h.sendError(client, "Unknown frame type")
	}
}

func (h *WebSocketHandler) send(client *ws.Client, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

func (h *WebSocketHandler) sendError(client *ws.Client, message string) {
	h.send(client, errorFrame{Type: "error", Message: message})
}
