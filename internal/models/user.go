package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// SystemUsername is the reserved account name used to present admin support
// replies. The account is provisioned at startup, never created on demand.
const SystemUsername = "Lynk"

// User represents an account stored in the users collection
type User struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Username   string               `json:"username" bson:"username"`
	Email      string               `json:"email" bson:"email"`
	Password   string               `json:"-" bson:"password"` // bcrypt hash, never serialized
	ProfilePic string               `json:"profilePic" bson:"profile_pic"`
	Bio        string               `json:"bio" bson:"bio"`
	Role       string               `json:"role" bson:"role"`
	Followers  []primitive.ObjectID `json:"followers" bson:"followers"`
	Following  []primitive.ObjectID `json:"following" bson:"following"`
	Blocked    []primitive.ObjectID `json:"blocked" bson:"blocked"`
	CreatedAt  time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time            `json:"updatedAt" bson:"updated_at"`
}

// UserCompact is the reduced identity shape embedded in populated responses
type UserCompact struct {
	ID         primitive.ObjectID `json:"id" bson:"_id"`
	Username   string             `json:"username" bson:"username"`
	ProfilePic string             `json:"profilePic" bson:"profile_pic"`
}

// ToCompact reduces a user to its display fields
func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username, ProfilePic: u.ProfilePic}
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest applies only the fields that are set
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=30"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=300"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// DeleteAccountRequest re-verifies the password before deletion
type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
