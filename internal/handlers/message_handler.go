package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lynk-app/backend/internal/apperrors"
	"github.com/lynk-app/backend/internal/models"
	"github.com/lynk-app/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MessageHandler exposes the flat point-to-point message log and the
// per-counterpart chat list. Both are projections over the chat store;
// there is no second message collection.
type MessageHandler struct {
	chatRepository repositories.ChatRepository
	userRepository repositories.UserRepository
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(chatRepo repositories.ChatRepository, userRepo repositories.UserRepository) *MessageHandler {
	return &MessageHandler{
		chatRepository: chatRepo,
		userRepository: userRepo,
	}
}

// RegisterMessageRoutes registers message-related routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.POST("", h.SendMessage)
	g.GET("/chats/:userId", h.GetChatsForUser)
	g.PUT("/read/:sender/:receiver", h.MarkAsRead)
	g.GET("/:userId1/:userId2", h.GetMessages)
}

// flattenMessages projects a chat's embedded messages into direction-tagged
// records
func flattenMessages(chat *models.Chat) []models.DirectMessage {
	out := make([]models.DirectMessage, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		receiver, _ := chat.OtherParticipant(m.Sender)
		out = append(out, models.DirectMessage{
			ID:        m.ID,
			Sender:    m.Sender,
			Receiver:  receiver,
			Text:      m.Text,
			Read:      m.Read,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}

// chatEntry is the unresolved per-counterpart derivation
type chatEntry struct {
	Other       primitive.ObjectID
	LastMessage string
	UpdatedAt   time.Time
}

// deriveChatEntries reduces a user's rooms (newest activity first) to one
// entry per counterpart. Rooms without messages yet produce no entry.
func deriveChatEntries(chats []models.Chat, userID primitive.ObjectID) []chatEntry {
	entries := make([]chatEntry, 0, len(chats))
	seen := map[primitive.ObjectID]struct{}{}
	for _, chat := range chats {
		if len(chat.Messages) == 0 {
			continue
		}
		other, ok := chat.OtherParticipant(userID)
		if !ok {
			continue
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		last := chat.Messages[len(chat.Messages)-1]
		entries = append(entries, chatEntry{
			Other:       other,
			LastMessage: last.Text,
			UpdatedAt:   last.CreatedAt,
		})
	}
	return entries
}

// SendMessage appends a message to the pair's room, creating the room on
// first contact
func (h *MessageHandler) SendMessage(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}

	var req models.SendDirectMessageRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.ErrValidation, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	senderID, err := parseObjectID(req.Sender, "sender")
	if err != nil {
		return err
	}
	receiverID, err := parseObjectID(req.Receiver, "receiver")
	if err != nil {
		return err
	}

	chat, err := h.chatRepository.FindByParticipants(c.Request().Context(), senderID, receiverID)
	if err == mongo.ErrNoDocuments {
		chat, err = h.chatRepository.CreateChat(c.Request().Context(), senderID, receiverID)
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	msg := models.ChatMessage{
		ID:        primitive.NewObjectID(),
		Sender:    senderID,
		Text:      req.Text,
		Read:      false,
		CreatedAt: time.Now(),
	}
	if _, err := h.chatRepository.AppendMessage(c.Request().Context(), chat.ID, msg); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	return c.JSON(http.StatusOK, models.DirectMessage{
		ID:        msg.ID,
		Sender:    senderID,
		Receiver:  receiverID,
		Text:      msg.Text,
		Read:      msg.Read,
		CreatedAt: msg.CreatedAt,
	})
}

// GetMessages returns the pair's messages ascending by time. No room yet
// means an empty list, not an error.
func (h *MessageHandler) GetMessages(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	userID1, err := parseObjectID(c.Param("userId1"), "userId")
	if err != nil {
		return err
	}
	userID2, err := parseObjectID(c.Param("userId2"), "userId")
	if err != nil {
		return err
	}

	chat, err := h.chatRepository.FindByParticipants(c.Request().Context(), userID1, userID2)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusOK, []models.DirectMessage{})
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	return c.JSON(http.StatusOK, flattenMessages(chat))
}

// MarkAsRead flips read=true only on messages sent by :sender to :receiver
func (h *MessageHandler) MarkAsRead(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	senderID, err := parseObjectID(c.Param("sender"), "sender")
	if err != nil {
		return err
	}
	receiverID, err := parseObjectID(c.Param("receiver"), "receiver")
	if err != nil {
		return err
	}

	chat, err := h.chatRepository.FindByParticipants(c.Request().Context(), senderID, receiverID)
	if err == mongo.ErrNoDocuments {
		// nothing to mark
		return c.JSON(http.StatusOK, echo.Map{"status": 1, "message": "Messages marked as read"})
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	if err := h.chatRepository.MarkReadFromSender(c.Request().Context(), chat.ID, senderID); err != nil && err != mongo.ErrNoDocuments {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "message": "Messages marked as read"})
}

// GetChatsForUser returns one entry per counterpart, most recently active
// first, with counterpart identities resolved
func (h *MessageHandler) GetChatsForUser(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	userID, err := parseObjectID(c.Param("userId"), "userId")
	if err != nil {
		return err
	}

	chats, err := h.chatRepository.GetChatsForUser(c.Request().Context(), userID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	entries := deriveChatEntries(chats, userID)
	ids := make([]primitive.ObjectID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.Other)
	}
	compacts, err := h.userRepository.GetCompacts(c.Request().Context(), ids)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	byID := make(map[primitive.ObjectID]models.UserCompact, len(compacts))
	for _, compact := range compacts {
		byID[compact.ID] = compact
	}

	result := make([]models.ChatListEntry, 0, len(entries))
	for _, e := range entries {
		compact := byID[e.Other]
		username := compact.Username
		if username == "" {
			username = "User"
		}
		result = append(result, models.ChatListEntry{
			ID:          e.Other,
			Username:    username,
			ProfilePic:  compact.ProfilePic,
			LastMessage: e.LastMessage,
			UpdatedAt:   e.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, result)
}
