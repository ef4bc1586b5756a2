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

// CommentHandler handles HTTP requests related to post comments
type CommentHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	notifier       *Notifier
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, notifier *Notifier) *CommentHandler {
	return &CommentHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		notifier:       notifier,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/:postId/comment", h.AddComment)
	g.DELETE("/:postId/comment/:commentId", h.DeleteComment)
}

// AddComment appends a comment and notifies the post author
func (h *CommentHandler) AddComment(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := parseObjectID(c.Param("postId"), "post ID")
	if err != nil {
		return err
	}

	var req models.AddCommentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.ErrValidation, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.New(apperrors.ErrNotFound, "Post not found")
		}
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		Author:    userID,
		Text:      req.Text,
		CreatedAt: time.Now(),
	}
	if err := h.postRepository.AddComment(c.Request().Context(), postID, comment); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to add comment", err)
	}

	h.notifier.NotifyPost(c.Request().Context(), models.NotificationComment, userID, post.Author, post.ID)

	updated, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "comments": updated.Comments})
}

// DeleteComment removes a comment from the embedded list
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	postID, err := parseObjectID(c.Param("postId"), "post ID")
	if err != nil {
		return err
	}
	commentID, err := parseObjectID(c.Param("commentId"), "comment ID")
	if err != nil {
		return err
	}

	if err := h.postRepository.RemoveComment(c.Request().Context(), postID, commentID); err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.New(apperrors.ErrNotFound, "Post not found")
		}
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to delete comment", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "message": "Comment deleted"})
}
