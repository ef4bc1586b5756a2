package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lynk-app/backend/internal/apperrors"
	"github.com/lynk-app/backend/internal/models"
	"github.com/lynk-app/backend/internal/repositories"
	"github.com/lynk-app/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	notifier       *Notifier
	fileStorage    storage.FileStorage
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, notifier *Notifier, fileStorage storage.FileStorage) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		notifier:       notifier,
		fileStorage:    fileStorage,
	}
}

// RegisterUserRoutes registers profile and social-graph routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.POST("/profile/pic", h.UploadProfilePic)
	g.PUT("/change-password", h.ChangePassword)
	g.DELETE("/profile", h.DeleteAccount)
	g.POST("/follow/:id", h.FollowUser)
	g.POST("/unfollow/:id", h.UnfollowUser)
	g.POST("/block/:id", h.BlockUser)
	g.POST("/unblock/:id", h.UnblockUser)
	g.GET("/followers", h.GetFollowers)
	g.GET("/search", h.SearchUsers)
	g.GET("/:id/followers", h.GetFollowersByID)
	g.GET("/:id/following", h.GetFollowingByID)
	g.GET("/:id", h.GetProfileByID)
}

// PopulatedProfile is a user with follower/following identities resolved
type PopulatedProfile struct {
	models.User
	FollowerUsers  []models.UserCompact `json:"followerUsers"`
	FollowingUsers []models.UserCompact `json:"followingUsers"`
}

func (h *UserHandler) populateProfile(c echo.Context, user *models.User) (*PopulatedProfile, error) {
	followers, err := h.userRepository.GetCompacts(c.Request().Context(), user.Followers)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	following, err := h.userRepository.GetCompacts(c.Request().Context(), user.Following)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	return &PopulatedProfile{User: *user, FollowerUsers: followers, FollowingUsers: following}, nil
}

func (h *UserHandler) profileResponse(c echo.Context, userID primitive.ObjectID) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.New(apperrors.ErrNotFound, "User not found")
		}
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	profile, err := h.populateProfile(c, user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "user": profile})
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	return h.profileResponse(c, userID)
}

// GetProfileByID retrieves any user's profile
func (h *UserHandler) GetProfileByID(c echo.Context) error {
	targetID, err := parseObjectID(c.Param("id"), "user ID")
	if err != nil {
		return err
	}
	return h.profileResponse(c, targetID)
}

// UpdateProfile applies a partial update; only set fields are written
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.ErrValidation, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updates := bson.M{}
	if req.Username != nil {
		existing, err := h.userRepository.GetUserByUsername(c.Request().Context(), *req.Username)
		if err == nil && existing.ID != userID {
			return apperrors.New(apperrors.ErrValidation, "Username already taken")
		}
		updates["username"] = *req.Username
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if len(updates) == 0 {
		return h.profileResponse(c, userID)
	}

	user, err := h.userRepository.UpdateFields(c.Request().Context(), userID, updates)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to update profile", err)
	}
	profile, err := h.populateProfile(c, user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "user": profile})
}

// UploadProfilePic stores an uploaded image and writes its URL to the profile
func (h *UserHandler) UploadProfilePic(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("profilePic")
	if err != nil {
		return apperrors.New(apperrors.ErrValidation, "Image missing")
	}

	path := fmt.Sprintf("profiles/%s_%d%s", userID.Hex(), time.Now().UnixNano(), filepath.Ext(file.Filename))
	url, err := h.fileStorage.UploadFile(file, path)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to store image", err)
	}

	user, err := h.userRepository.UpdateFields(c.Request().Context(), userID, bson.M{"profile_pic": url})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to update profile", err)
	}
	profile, err := h.populateProfile(c, user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "user": profile})
}

// ChangePassword verifies the old password before setting a new one
func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.ErrValidation, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return apperrors.New(apperrors.ErrNotFound, "User not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return apperrors.New(apperrors.ErrValidation, "Old password incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to hash password", err)
	}
	if _, err := h.userRepository.UpdateFields(c.Request().Context(), userID, bson.M{"password": string(hashed)}); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to update password", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"status": 1, "message": "Password updated"})
}

// DeleteAccount removes the account after password re-verification
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.DeleteAccountRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.ErrValidation, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return apperrors.New(apperrors.ErrNotFound, "User not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return apperrors.New(apperrors.ErrValidation, "Password incorrect")
	}

	if err := h.userRepository.DeleteUser(c.Request().Context(), userID); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to delete account", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "message": "Account deleted"})
}

// FollowUser records a follow edge and notifies the target
func (h *UserHandler) FollowUser(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	targetID, err := parseObjectID(c.Param("id"), "user ID")
	if err != nil {
		return err
	}
	if targetID == userID {
		return apperrors.New(apperrors.ErrValidation, "Can't follow yourself")
	}

	me, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return apperrors.New(apperrors.ErrNotFound, "User not found")
	}
	if _, err := h.userRepository.GetUserByID(c.Request().Context(), targetID); err != nil {
		return apperrors.New(apperrors.ErrNotFound, "User not found")
	}

	alreadyFollowing := false
	for _, id := range me.Following {
		if id == targetID {
			alreadyFollowing = true
			break
		}
	}
	if !alreadyFollowing {
		if err := h.userRepository.AddFollow(c.Request().Context(), userID, targetID); err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, "Failed to follow", err)
		}
		h.notifier.NotifyFollow(c.Request().Context(), userID, targetID)
	}

	return h.profileResponse(c, targetID)
}

// UnfollowUser removes a follow edge
func (h *UserHandler) UnfollowUser(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	targetID, err := parseObjectID(c.Param("id"), "user ID")
	if err != nil {
		return err
	}

	if err := h.userRepository.RemoveFollow(c.Request().Context(), userID, targetID); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to unfollow", err)
	}
	return h.profileResponse(c, targetID)
}

// BlockUser adds the target to the blocked set and severs follow edges
func (h *UserHandler) BlockUser(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	targetID, err := parseObjectID(c.Param("id"), "user ID")
	if err != nil {
		return err
	}
	if targetID == userID {
		return apperrors.New(apperrors.ErrValidation, "Can't block yourself")
	}
	if _, err := h.userRepository.GetUserByID(c.Request().Context(), targetID); err != nil {
		return apperrors.New(apperrors.ErrNotFound, "User not found")
	}

	if err := h.userRepository.BlockUser(c.Request().Context(), userID, targetID); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to block", err)
	}
	return h.profileResponse(c, targetID)
}

// UnblockUser removes the target from the blocked set
func (h *UserHandler) UnblockUser(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	targetID, err := parseObjectID(c.Param("id"), "user ID")
	if err != nil {
		return err
	}

	if err := h.userRepository.UnblockUser(c.Request().Context(), userID, targetID); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to unblock", err)
	}
	return h.profileResponse(c, targetID)
}

// GetFollowers lists the authenticated user's followers
func (h *UserHandler) GetFollowers(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	return h.followList(c, userID, "followers")
}

// GetFollowersByID lists any user's followers
func (h *UserHandler) GetFollowersByID(c echo.Context) error {
	targetID, err := parseObjectID(c.Param("id"), "user ID")
	if err != nil {
		return err
	}
	return h.followList(c, targetID, "followers")
}

// GetFollowingByID lists the accounts any user follows
func (h *UserHandler) GetFollowingByID(c echo.Context) error {
	targetID, err := parseObjectID(c.Param("id"), "user ID")
	if err != nil {
		return err
	}
	return h.followList(c, targetID, "following")
}

func (h *UserHandler) followList(c echo.Context, userID primitive.ObjectID, which string) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return apperrors.New(apperrors.ErrNotFound, "User not found")
	}
	ids := user.Followers
	if which == "following" {
		ids = user.Following
	}
	compacts, err := h.userRepository.GetCompacts(c.Request().Context(), ids)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, which: compacts})
}

// SearchUsers finds users by username substring, case-insensitive
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return c.JSON(http.StatusOK, echo.Map{"status": 1, "users": []models.UserCompact{}})
	}

	users, err := h.userRepository.SearchUsers(c.Request().Context(), query)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "users": users})
}
