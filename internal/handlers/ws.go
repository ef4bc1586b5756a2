package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lynk-app/backend/internal/middleware"
	"github.com/lynk-app/backend/internal/models"
	"github.com/lynk-app/backend/internal/realtime"
	"github.com/lynk-app/backend/internal/repositories"
	"github.com/lynk-app/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// WSHandler upgrades authenticated connections and routes gateway events.
// Event errors are logged and swallowed; the connection stays up.
type WSHandler struct {
	hub            *realtime.Hub
	chatRepository repositories.ChatRepository
	userRepository repositories.UserRepository
	jwtSecret      string
}

func NewWSHandler(hub *realtime.Hub, chatRepo repositories.ChatRepository, userRepo repositories.UserRepository, jwtSecret string) *WSHandler {
	return &WSHandler{
		hub:            hub,
		chatRepository: chatRepo,
		userRepository: userRepo,
		jwtSecret:      jwtSecret,
	}
}

// inboundEvent is a raw gateway frame before its data is decoded
type inboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinRoomPayload struct {
	ChatID string `json:"chatId"`
}

type sendMessagePayload struct {
	ChatID string `json:"chatId"`
	Text   string `json:"text"`
}

// Serve handles GET /ws. The token travels in the query string because
// browser websocket clients cannot set headers.
func (h *WSHandler) Serve(c echo.Context) error {
	userID, err := middleware.ParseToken(c.QueryParam("token"), h.jwtSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return nil
	}

	client := h.hub.Register(userID, conn)
	go client.WriteLoop()
	go client.KeepAlive()
	defer h.hub.Unregister(client)

	logger.L().Info("websocket connected", zap.String("user", userID.Hex()))

	ctx := c.Request().Context()
	for {
		var ev inboundEvent
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			logger.L().Debug("websocket closed", zap.String("user", userID.Hex()), zap.Error(err))
			return nil
		}
		h.dispatch(ctx, client, ev)
	}
}

func (h *WSHandler) dispatch(ctx context.Context, client *realtime.Client, ev inboundEvent) {
	switch ev.Event {
	case "joinRoom":
		h.handleJoin(ctx, client, ev.Data)
	case "sendMessage":
		h.handleSend(ctx, client, ev.Data)
	default:
		logger.L().Debug("unknown websocket event", zap.String("event", ev.Event))
	}
}

func (h *WSHandler) handleJoin(ctx context.Context, client *realtime.Client, data json.RawMessage) {
	var payload joinRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.L().Warn("joinRoom: bad payload", zap.Error(err))
		return
	}
	chatID, err := primitive.ObjectIDFromHex(payload.ChatID)
	if err != nil {
		logger.L().Warn("joinRoom: invalid chat ID", zap.String("chatId", payload.ChatID))
		return
	}

	chat, err := h.chatRepository.GetChatByID(ctx, chatID)
	if err != nil {
		logger.L().Warn("joinRoom: chat lookup failed", zap.String("chatId", payload.ChatID), zap.Error(err))
		return
	}
	if !chat.HasParticipant(client.UserID) {
		logger.L().Warn("joinRoom: not a participant",
			zap.String("user", client.UserID.Hex()), zap.String("chatId", payload.ChatID))
		return
	}

	h.hub.Join(client, chatID)
}

func (h *WSHandler) handleSend(ctx context.Context, client *realtime.Client, data json.RawMessage) {
	var payload sendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.L().Warn("sendMessage: bad payload", zap.Error(err))
		return
	}
	chatID, err := primitive.ObjectIDFromHex(payload.ChatID)
	if err != nil || payload.Text == "" {
		logger.L().Warn("sendMessage: invalid payload", zap.String("chatId", payload.ChatID))
		return
	}

	sender, err := h.userRepository.GetUserByID(ctx, client.UserID)
	if err != nil {
		logger.L().Warn("sendMessage: sender lookup failed", zap.Error(err))
		return
	}

	err = h.hub.Publish(chatID, func() (realtime.Event, error) {
		msg := models.ChatMessage{
			ID:        primitive.NewObjectID(),
			Sender:    client.UserID,
			Text:      payload.Text,
			CreatedAt: time.Now().UTC(),
		}
		if _, err := h.chatRepository.AppendMessage(ctx, chatID, msg); err != nil {
			return realtime.Event{}, err
		}
		return realtime.Event{
			Event: "receiveMessage",
			Data: echo.Map{
				"chatId": chatID,
				"message": models.PopulatedMessage{
					ID:        msg.ID,
					Sender:    sender.ToCompact(),
					Text:      msg.Text,
					CreatedAt: msg.CreatedAt,
				},
			},
		}, nil
	})
	if err != nil {
		logger.L().Error("sendMessage: append failed",
			zap.String("chatId", payload.ChatID), zap.Error(err))
	}
}
