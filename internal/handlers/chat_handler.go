package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lynk-app/backend/internal/apperrors"
	"github.com/lynk-app/backend/internal/models"
	"github.com/lynk-app/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ChatHandler handles the room surface of the conversation store
type ChatHandler struct {
	chatRepository repositories.ChatRepository
	userRepository repositories.UserRepository
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatRepo repositories.ChatRepository, userRepo repositories.UserRepository) *ChatHandler {
	return &ChatHandler{
		chatRepository: chatRepo,
		userRepository: userRepo,
	}
}

// RegisterChatRoutes registers chat-related routes
func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.POST("/createOrGet", h.CreateOrGetChat)
	g.POST("/message", h.AddMessage)
	g.GET("", h.GetChats)
	g.PUT("/read/:chatId", h.MarkMessagesAsRead)
	g.GET("/:chatId", h.GetChatByID)
	g.DELETE("/:chatId", h.DeleteChat)
}

// populateChats resolves participant and message-sender identities for a
// batch of chats
func (h *ChatHandler) populateChats(c echo.Context, chats []models.Chat) ([]models.PopulatedChat, error) {
	idSet := map[primitive.ObjectID]struct{}{}
	for _, chat := range chats {
		for _, p := range chat.Participants {
			idSet[p] = struct{}{}
		}
		for _, m := range chat.Messages {
			idSet[m.Sender] = struct{}{}
		}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	compacts, err := h.userRepository.GetCompacts(c.Request().Context(), ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	byID := make(map[primitive.ObjectID]models.UserCompact, len(compacts))
	for _, compact := range compacts {
		byID[compact.ID] = compact
	}

	populated := make([]models.PopulatedChat, len(chats))
	for i, chat := range chats {
		participants := make([]models.UserCompact, 0, len(chat.Participants))
		for _, p := range chat.Participants {
			participants = append(participants, byID[p])
		}
		messages := make([]models.PopulatedMessage, 0, len(chat.Messages))
		for _, m := range chat.Messages {
			messages = append(messages, models.PopulatedMessage{
				ID:        m.ID,
				Sender:    byID[m.Sender],
				Text:      m.Text,
				Read:      m.Read,
				CreatedAt: m.CreatedAt,
			})
		}
		populated[i] = models.PopulatedChat{
			ID:            chat.ID,
			Participants:  participants,
			Messages:      messages,
			LatestMessage: chat.LatestMessage,
			CreatedAt:     chat.CreatedAt,
			UpdatedAt:     chat.UpdatedAt,
		}
	}
	return populated, nil
}

func (h *ChatHandler) populateChat(c echo.Context, chat *models.Chat) (*models.PopulatedChat, error) {
	populated, err := h.populateChats(c, []models.Chat{*chat})
	if err != nil {
		return nil, err
	}
	return &populated[0], nil
}

// CreateOrGetChat returns the room for the caller and the given user,
// creating it on first contact. Repeated calls with the same pair return
// the same room regardless of argument order.
func (h *ChatHandler) CreateOrGetChat(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.CreateOrGetChatRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.ErrValidation, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	otherID, err := parseObjectID(req.UserID, "userId")
	if err != nil {
		return err
	}

	chat, err := h.chatRepository.FindByParticipants(c.Request().Context(), userID, otherID)
	if err == mongo.ErrNoDocuments {
		chat, err = h.chatRepository.CreateChat(c.Request().Context(), userID, otherID)
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	populated, err := h.populateChat(c, chat)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "chat": populated})
}

// AddMessage appends a message to an existing chat and returns the updated
// room with identities resolved
func (h *ChatHandler) AddMessage(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.AddChatMessageRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.ErrValidation, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Text) == "" {
		return apperrors.New(apperrors.ErrValidation, "chatId and text required")
	}
	chatID, err := parseObjectID(req.ChatID, "chatId")
	if err != nil {
		return err
	}

	msg := models.ChatMessage{
		ID:        primitive.NewObjectID(),
		Sender:    userID,
		Text:      req.Text,
		Read:      false,
		CreatedAt: time.Now(),
	}
	chat, err := h.chatRepository.AppendMessage(c.Request().Context(), chatID, msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.New(apperrors.ErrNotFound, "Chat not found")
		}
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	populated, err := h.populateChat(c, chat)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "chat": populated})
}

// GetChats lists the caller's rooms, newest activity first
func (h *ChatHandler) GetChats(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	chats, err := h.chatRepository.GetChatsForUser(c.Request().Context(), userID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	populated, err := h.populateChats(c, chats)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "chats": populated})
}

// GetChatByID retrieves a single room
func (h *ChatHandler) GetChatByID(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	chatID, err := parseObjectID(c.Param("chatId"), "chat ID")
	if err != nil {
		return err
	}

	chat, err := h.chatRepository.GetChatByID(c.Request().Context(), chatID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.New(apperrors.ErrNotFound, "Chat not found")
		}
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	populated, err := h.populateChat(c, chat)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "chat": populated})
}

// MarkMessagesAsRead flips read=true on every message not authored by the
// caller. Calling it again changes nothing.
func (h *ChatHandler) MarkMessagesAsRead(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	chatID, err := parseObjectID(c.Param("chatId"), "chat ID")
	if err != nil {
		return err
	}

	if err := h.chatRepository.MarkRead(c.Request().Context(), chatID, userID); err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.New(apperrors.ErrNotFound, "Chat not found")
		}
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "message": "Messages marked as read"})
}

// DeleteChat hard-deletes a room
func (h *ChatHandler) DeleteChat(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	chatID, err := parseObjectID(c.Param("chatId"), "chat ID")
	if err != nil {
		return err
	}

	if err := h.chatRepository.DeleteChat(c.Request().Context(), chatID); err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.New(apperrors.ErrNotFound, "Chat not found")
		}
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "message": "Chat deleted successfully"})
}
