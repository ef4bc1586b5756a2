package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lynk-app/backend/internal/apperrors"
	"github.com/lynk-app/backend/internal/models"
	"github.com/lynk-app/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	postRepository repositories.PostRepository
	notifier       *Notifier
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(postRepo repositories.PostRepository, notifier *Notifier) *LikeHandler {
	return &LikeHandler{
		postRepository: postRepo,
		notifier:       notifier,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/:postId/like", h.ToggleLike)
}

// ToggleLike likes the post if the caller has not liked it, unlikes it
// otherwise. A first-time like on someone else's post notifies the author.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := parseObjectID(c.Param("postId"), "post ID")
	if err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.New(apperrors.ErrNotFound, "Post not found")
		}
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}

	alreadyLiked := post.HasLike(userID)
	if alreadyLiked {
		err = h.postRepository.RemoveLike(c.Request().Context(), postID, userID)
	} else {
		err = h.postRepository.AddLike(c.Request().Context(), postID, userID)
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to like post", err)
	}

	if !alreadyLiked {
		h.notifier.NotifyPost(c.Request().Context(), models.NotificationLike, userID, post.Author, post.ID)
	}

	updated, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "likes": updated.Likes})
}
