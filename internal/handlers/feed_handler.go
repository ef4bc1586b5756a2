package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lynk-app/backend/internal/apperrors"
	"github.com/lynk-app/backend/internal/models"
	"github.com/lynk-app/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	postHandler    *PostHandler
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, postHandler *PostHandler) *FeedHandler {
	return &FeedHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		postHandler:    postHandler,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns posts authored by followees, newest first, excluding
// authors in a mutual-block relation with the caller. The caller's own
// block set is applied at query time; the reverse direction needs one
// lookup over the author set.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	me, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return apperrors.New(apperrors.ErrNotFound, "User not found")
	}

	blocked := make(map[primitive.ObjectID]struct{}, len(me.Blocked))
	for _, id := range me.Blocked {
		blocked[id] = struct{}{}
	}
	authors := make([]primitive.ObjectID, 0, len(me.Following))
	for _, id := range me.Following {
		if _, isBlocked := blocked[id]; !isBlocked {
			authors = append(authors, id)
		}
	}

	blockers, err := h.userRepository.FindBlockers(c.Request().Context(), authors, userID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to fetch feed", err)
	}
	if len(blockers) > 0 {
		blockerSet := make(map[primitive.ObjectID]struct{}, len(blockers))
		for _, id := range blockers {
			blockerSet[id] = struct{}{}
		}
		filtered := authors[:0]
		for _, id := range authors {
			if _, blocks := blockerSet[id]; !blocks {
				filtered = append(filtered, id)
			}
		}
		authors = filtered
	}

	posts, err := h.postRepository.GetPostsByAuthors(c.Request().Context(), authors)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to fetch feed", err)
	}
	if posts == nil {
		posts = []models.Post{}
	}

	populated, err := h.postHandler.populatePosts(c, posts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "feed": populated})
}
