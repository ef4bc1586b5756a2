package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is the authoritative conversation record: exactly two participants
// and the full embedded message history in append order. The flat message
// log and the per-counterpart chat list are projections over this one
// collection.
type Chat struct {
	ID            primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Participants  []primitive.ObjectID `json:"participants" bson:"participants"`
	Messages      []ChatMessage        `json:"messages" bson:"messages"`
	LatestMessage string               `json:"latestMessage,omitempty" bson:"latest_message,omitempty"`
	CreatedAt     time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time            `json:"updatedAt" bson:"updated_at"`
}

// ChatMessage is embedded in a chat, append-ordered and never reordered
type ChatMessage struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Sender    primitive.ObjectID `json:"sender" bson:"sender"`
	Text      string             `json:"text" bson:"text"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// OtherParticipant returns the counterpart of userID in a two-party chat
func (c *Chat) OtherParticipant(userID primitive.ObjectID) (primitive.ObjectID, bool) {
	for _, p := range c.Participants {
		if p != userID {
			return p, true
		}
	}
	return primitive.NilObjectID, false
}

// HasParticipant reports whether userID belongs to the chat
func (c *Chat) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// PopulatedChat carries a chat with participant and sender identities
// resolved to display fields
type PopulatedChat struct {
	ID            primitive.ObjectID `json:"id"`
	Participants  []UserCompact      `json:"participants"`
	Messages      []PopulatedMessage `json:"messages"`
	LatestMessage string             `json:"latestMessage,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// PopulatedMessage is a chat message with its sender resolved
type PopulatedMessage struct {
	ID        primitive.ObjectID `json:"id"`
	Sender    UserCompact        `json:"sender"`
	Text      string             `json:"text"`
	Read      bool               `json:"read"`
	CreatedAt time.Time          `json:"createdAt"`
}

// DirectMessage is the flat-log projection of one embedded chat message,
// tagged with both endpoints of the pair
type DirectMessage struct {
	ID        primitive.ObjectID `json:"id"`
	Sender    primitive.ObjectID `json:"sender"`
	Receiver  primitive.ObjectID `json:"receiver"`
	Text      string             `json:"text"`
	Read      bool               `json:"read"`
	CreatedAt time.Time          `json:"createdAt"`
}

// ChatListEntry is the per-counterpart view derived from a user's chats
type ChatListEntry struct {
	ID          primitive.ObjectID `json:"id"` // counterpart user id
	Username    string             `json:"username"`
	ProfilePic  string             `json:"profilePic"`
	LastMessage string             `json:"lastMessage"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// CreateOrGetChatRequest identifies the other participant
type CreateOrGetChatRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// AddChatMessageRequest appends a message to an existing chat
type AddChatMessageRequest struct {
	ChatID string `json:"chatId" validate:"required"`
	Text   string `json:"text" validate:"required,max=2000"`
}

// SendDirectMessageRequest is the flat-log send surface
type SendDirectMessageRequest struct {
	Sender   string `json:"sender" validate:"required"`
	Receiver string `json:"receiver" validate:"required"`
	Text     string `json:"text" validate:"required,max=2000"`
}
