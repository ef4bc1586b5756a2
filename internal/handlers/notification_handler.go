package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/lynk-app/backend/internal/apperrors"
	"github.com/lynk-app/backend/internal/models"
	"github.com/lynk-app/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("", h.GetNotifications)
	g.GET("/unread-count", h.GetUnreadCount)
	g.PATCH("/read-all", h.MarkAllAsRead)
	g.PATCH("/read/:id", h.MarkAsRead)
	g.DELETE("/:id", h.DeleteNotification)
}

// EnrichedNotification includes sender info
type EnrichedNotification struct {
	models.Notification
	SenderInfo models.UserCompact `json:"senderInfo"`
}

func (h *NotificationHandler) enrichNotifications(c echo.Context, notifications []models.Notification) ([]EnrichedNotification, error) {
	idSet := map[primitive.ObjectID]struct{}{}
	for _, n := range notifications {
		if !n.Sender.IsZero() {
			idSet[n.Sender] = struct{}{}
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

	enriched := make([]EnrichedNotification, len(notifications))
	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n, SenderInfo: byID[n.Sender]}
	}
	return enriched, nil
}

// GetNotifications returns paginated notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	notifications, total, err := h.notificationRepository.GetByReceiver(c.Request().Context(), userID, page, limit)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	enriched, err := h.enrichNotifications(c, notifications)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":        1,
		"notifications": enriched,
		"total":         total,
		"page":          page,
		"limit":         limit,
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), userID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "count": count})
}

// getOwned loads a notification and checks the caller owns it
func (h *NotificationHandler) getOwned(c echo.Context, userID primitive.ObjectID) (*models.Notification, error) {
	notifID, err := parseObjectID(c.Param("id"), "notification ID")
	if err != nil {
		return nil, err
	}
	notification, err := h.notificationRepository.GetByID(c.Request().Context(), notifID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.New(apperrors.ErrNotFound, "Notification not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	if notification.Receiver != userID {
		return nil, apperrors.New(apperrors.ErrForbidden, "Forbidden")
	}
	return notification, nil
}

// MarkAsRead marks one notification as read; receiver-scoped
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	notification, err := h.getOwned(c, userID)
	if err != nil {
		return err
	}

	if err := h.notificationRepository.MarkAsRead(c.Request().Context(), notification.ID); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "message": "Notification marked as read"})
}

// MarkAllAsRead marks all of the caller's notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	if err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), userID); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "message": "All notifications marked as read"})
}

// DeleteNotification deletes one notification; receiver-scoped
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	notification, err := h.getOwned(c, userID)
	if err != nil {
		return err
	}

	if err := h.notificationRepository.DeleteNotification(c.Request().Context(), notification.ID); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "message": "Notification deleted"})
}
