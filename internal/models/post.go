package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a social media post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Author    primitive.ObjectID   `json:"author" bson:"author"`
	Content   string               `json:"content" bson:"content"`
	Image     string               `json:"image,omitempty" bson:"image,omitempty"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments  []Comment            `json:"comments" bson:"comments"`
	CreatedAt time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updated_at"`
}

// Comment is embedded in a post, append-ordered
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Author    primitive.ObjectID `json:"author" bson:"author"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// HasLike reports whether userID is in the like set
func (p *Post) HasLike(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content string `json:"content" form:"content" validate:"max=2000"`
}

// AddCommentRequest defines the request body for commenting on a post
type AddCommentRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}
