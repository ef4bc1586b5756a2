package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ticket statuses
const (
	TicketOpen   = "open"
	TicketClosed = "closed"
)

// SupportTicket represents a helpdesk ticket owned by one user
type SupportTicket struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Subject   string             `json:"subject" bson:"subject"`
	Status    string             `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// SupportMessage is one reply in a ticket thread, immutable once created
type SupportMessage struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Ticket    primitive.ObjectID `json:"ticket" bson:"ticket"`
	Sender    primitive.ObjectID `json:"sender" bson:"sender"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// PopulatedSupportMessage is a support message with its sender resolved.
// Admin senders are presented under the system identity's username.
type PopulatedSupportMessage struct {
	ID        primitive.ObjectID `json:"id"`
	Ticket    primitive.ObjectID `json:"ticket"`
	Sender    SupportSender      `json:"sender"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"createdAt"`
}

// SupportSender carries the display identity of a support message author
type SupportSender struct {
	ID         primitive.ObjectID `json:"id"`
	Username   string             `json:"username"`
	Role       string             `json:"role"`
	ProfilePic string             `json:"profilePic"`
}

// TicketWithLastMessage pairs a ticket with its most recent reply
type TicketWithLastMessage struct {
	SupportTicket `bson:",inline"`
	User          UserCompact     `json:"userInfo" bson:"-"`
	LastMessage   *SupportMessage `json:"lastMessage" bson:"-"`
}

type CreateTicketRequest struct {
	Subject string `json:"subject" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"required,max=2000"`
}

type PostTicketMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type UpdateTicketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open closed"`
}
