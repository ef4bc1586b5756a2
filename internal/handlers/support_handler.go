package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lynk-app/backend/internal/apperrors"
	"github.com/lynk-app/backend/internal/models"
	"github.com/lynk-app/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SupportHandler handles helpdesk tickets and their message threads.
// Admin replies are stored under the pre-provisioned system identity and
// every admin-authored message is presented under the system username.
type SupportHandler struct {
	supportRepository repositories.SupportRepository
	userRepository    repositories.UserRepository
	notifier          *Notifier
	systemUserID      primitive.ObjectID
}

// NewSupportHandler creates a new SupportHandler. systemUserID is resolved
// once at startup.
func NewSupportHandler(supportRepo repositories.SupportRepository, userRepo repositories.UserRepository, notifier *Notifier, systemUserID primitive.ObjectID) *SupportHandler {
	return &SupportHandler{
		supportRepository: supportRepo,
		userRepository:    userRepo,
		notifier:          notifier,
		systemUserID:      systemUserID,
	}
}

// RegisterSupportRoutes registers user-facing support routes
func (h *SupportHandler) RegisterSupportRoutes(g *echo.Group) {
	g.POST("/ticket", h.CreateTicket)
	g.GET("/my", h.GetMyTickets)
	g.GET("/messages/:ticketId", h.GetTicketMessages)
	g.POST("/messages/:ticketId", h.PostMessage)
}

// RegisterAdminRoutes registers admin-only support routes
func (h *SupportHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/all", h.ListAllTickets)
	g.PATCH("/status/:ticketId", h.UpdateTicketStatus)
}

// CreateTicket opens a new ticket with its first message
func (h *SupportHandler) CreateTicket(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.CreateTicketRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.ErrValidation, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Message) == "" {
		return apperrors.New(apperrors.ErrValidation, "Message required")
	}

	ticket := &models.SupportTicket{User: userID, Subject: req.Subject}
	if err := h.supportRepository.CreateTicket(c.Request().Context(), ticket); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	msg := &models.SupportMessage{Ticket: ticket.ID, Sender: userID, Text: req.Message}
	if err := h.supportRepository.CreateMessage(c.Request().Context(), msg); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"status": 1, "ticket": ticket, "firstMessage": msg})
}

// GetMyTickets lists the caller's tickets with their last messages
func (h *SupportHandler) GetMyTickets(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	tickets, err := h.supportRepository.GetTicketsByUser(c.Request().Context(), userID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	result, err := h.withLastMessages(c, tickets)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "tickets": result})
}

func (h *SupportHandler) withLastMessages(c echo.Context, tickets []models.SupportTicket) ([]models.TicketWithLastMessage, error) {
	ticketIDs := make([]primitive.ObjectID, 0, len(tickets))
	userIDs := make([]primitive.ObjectID, 0, len(tickets))
	for _, t := range tickets {
		ticketIDs = append(ticketIDs, t.ID)
		userIDs = append(userIDs, t.User)
	}

	lastByTicket, err := h.supportRepository.GetLastMessages(c.Request().Context(), ticketIDs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	compacts, err := h.userRepository.GetCompacts(c.Request().Context(), userIDs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	userByID := make(map[primitive.ObjectID]models.UserCompact, len(compacts))
	for _, compact := range compacts {
		userByID[compact.ID] = compact
	}

	result := make([]models.TicketWithLastMessage, len(tickets))
	for i, t := range tickets {
		result[i] = models.TicketWithLastMessage{SupportTicket: t, User: userByID[t.User]}
		if last, ok := lastByTicket[t.ID]; ok {
			msg := last
			result[i].LastMessage = &msg
		}
	}
	return result, nil
}

// requireTicketAccess loads a ticket and checks the caller is its owner or
// an admin. Returns the ticket and whether the caller is an admin.
func (h *SupportHandler) requireTicketAccess(c echo.Context, userID primitive.ObjectID) (*models.SupportTicket, bool, error) {
	ticketID, err := parseObjectID(c.Param("ticketId"), "ticket ID")
	if err != nil {
		return nil, false, err
	}
	ticket, err := h.supportRepository.GetTicketByID(c.Request().Context(), ticketID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, false, apperrors.New(apperrors.ErrNotFound, "Ticket not found")
		}
		return nil, false, apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	if ticket.User != userID && !user.IsAdmin() {
		return nil, false, apperrors.New(apperrors.ErrForbidden, "Forbidden")
	}
	return ticket, user.IsAdmin(), nil
}

// GetTicketMessages returns a ticket's thread with senders resolved.
// Admin senders are presented under the system username; the stored sender
// account is untouched.
func (h *SupportHandler) GetTicketMessages(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	ticket, _, err := h.requireTicketAccess(c, userID)
	if err != nil {
		return err
	}

	messages, err := h.supportRepository.GetMessagesByTicket(c.Request().Context(), ticket.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	populated, err := h.populateMessages(c, messages)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "ticket": ticket, "messages": populated})
}

func (h *SupportHandler) populateMessages(c echo.Context, messages []models.SupportMessage) ([]models.PopulatedSupportMessage, error) {
	idSet := map[primitive.ObjectID]struct{}{}
	for _, m := range messages {
		idSet[m.Sender] = struct{}{}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	senders := make(map[primitive.ObjectID]models.SupportSender, len(ids))
	for _, id := range ids {
		user, err := h.userRepository.GetUserByID(c.Request().Context(), id)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				continue
			}
			return nil, apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
		}
		sender := models.SupportSender{
			ID:         user.ID,
			Username:   user.Username,
			Role:       user.Role,
			ProfilePic: user.ProfilePic,
		}
		if user.IsAdmin() {
			sender.Username = models.SystemUsername
		}
		senders[id] = sender
	}

	populated := make([]models.PopulatedSupportMessage, len(messages))
	for i, m := range messages {
		populated[i] = models.PopulatedSupportMessage{
			ID:        m.ID,
			Ticket:    m.Ticket,
			Sender:    senders[m.Sender],
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		}
	}
	return populated, nil
}

// PostMessage adds a reply to a ticket. Admin replies are stored under the
// system identity and notify the ticket owner.
func (h *SupportHandler) PostMessage(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.PostTicketMessageRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.ErrValidation, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Text) == "" {
		return apperrors.New(apperrors.ErrValidation, "Message required")
	}

	ticket, isAdmin, err := h.requireTicketAccess(c, userID)
	if err != nil {
		return err
	}

	senderID := userID
	if isAdmin {
		senderID = h.systemUserID
	}

	msg := &models.SupportMessage{Ticket: ticket.ID, Sender: senderID, Text: req.Text}
	if err := h.supportRepository.CreateMessage(c.Request().Context(), msg); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	if isAdmin {
		h.notifier.NotifySupportReply(c.Request().Context(), senderID, ticket.User, req.Text)
	}

	populated, err := h.populateMessages(c, []models.SupportMessage{*msg})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "message": populated[0]})
}

// ListAllTickets returns every ticket; admin only
func (h *SupportHandler) ListAllTickets(c echo.Context) error {
	tickets, err := h.supportRepository.GetAllTickets(c.Request().Context())
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	result, err := h.withLastMessages(c, tickets)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "tickets": result})
}

// UpdateTicketStatus transitions a ticket between open and closed; admin only
func (h *SupportHandler) UpdateTicketStatus(c echo.Context) error {
	ticketID, err := parseObjectID(c.Param("ticketId"), "ticket ID")
	if err != nil {
		return err
	}

	var req models.UpdateTicketStatusRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.ErrValidation, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ticket, err := h.supportRepository.UpdateTicketStatus(c.Request().Context(), ticketID, req.Status)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.New(apperrors.ErrNotFound, "Ticket not found")
		}
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "ticket": ticket})
}
