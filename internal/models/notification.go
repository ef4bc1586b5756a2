package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationLike         = "like"
	NotificationComment      = "comment"
	NotificationFollow       = "follow"
	NotificationSupportReply = "support_reply"
)

// Notification represents a user notification stored in MongoDB
type Notification struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Type      string             `json:"type" bson:"type"`
	Sender    primitive.ObjectID `json:"sender,omitempty" bson:"sender,omitempty"`
	Receiver  primitive.ObjectID `json:"receiver" bson:"receiver"`
	PostID    primitive.ObjectID `json:"postId,omitempty" bson:"post_id,omitempty"`
	Text      string             `json:"text,omitempty" bson:"text,omitempty"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}
