package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lynk-app/backend/internal/apperrors"
	"github.com/lynk-app/backend/internal/models"
	"github.com/lynk-app/backend/internal/repositories"
	"github.com/lynk-app/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	fileStorage    storage.FileStorage
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, fileStorage storage.FileStorage) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		fileStorage:    fileStorage,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("", h.CreatePost)
	g.GET("/user/:userId", h.GetUserPosts)
	g.GET("/:id", h.GetPostByID)
	g.DELETE("/:postId", h.DeletePost)
}

// PopulatedPost is a post with author and comment-author identities resolved
type PopulatedPost struct {
	models.Post
	AuthorInfo     models.UserCompact            `json:"authorInfo"`
	CommentAuthors map[string]models.UserCompact `json:"commentAuthors,omitempty"`
}

// populatePosts resolves author identities for a batch of posts
func (h *PostHandler) populatePosts(c echo.Context, posts []models.Post) ([]PopulatedPost, error) {
	idSet := map[primitive.ObjectID]struct{}{}
	for _, p := range posts {
		idSet[p.Author] = struct{}{}
		for _, cm := range p.Comments {
			idSet[cm.Author] = struct{}{}
		}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	compacts, err := h.userRepository.GetCompacts(c.Request().Context(), ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Server error", err)
	}
	byID := make(map[primitive.ObjectID]models.UserCompact, len(compacts))
	for _, compact := range compacts {
		byID[compact.ID] = compact
	}

	populated := make([]PopulatedPost, len(posts))
	for i, p := range posts {
		populated[i] = PopulatedPost{Post: p, AuthorInfo: byID[p.Author]}
		if len(p.Comments) > 0 {
			authors := make(map[string]models.UserCompact, len(p.Comments))
			for _, cm := range p.Comments {
				authors[cm.Author.Hex()] = byID[cm.Author]
			}
			populated[i].CommentAuthors = authors
		}
	}
	return populated, nil
}

// CreatePost creates a post with optional image upload
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.ErrValidation, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	imageURL := ""
	if file, err := c.FormFile("image"); err == nil {
		path := fmt.Sprintf("posts/%s_%d%s", userID.Hex(), time.Now().UnixNano(), filepath.Ext(file.Filename))
		imageURL, err = h.fileStorage.UploadFile(file, path)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, "Failed to store image", err)
		}
	}

	post := &models.Post{
		Author:  userID,
		Content: req.Content,
		Image:   imageURL,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to create post", err)
	}

	populated, err := h.populatePosts(c, []models.Post{*post})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "message": "Post uploaded successfully", "post": populated[0]})
}

// GetPostByID retrieves a single post
func (h *PostHandler) GetPostByID(c echo.Context) error {
	postID, err := parseObjectID(c.Param("id"), "post ID")
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

	populated, err := h.populatePosts(c, []models.Post{*post})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "post": populated[0]})
}

// GetUserPosts lists one user's posts, newest first
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	authorID, err := parseObjectID(c.Param("userId"), "user ID")
	if err != nil {
		return err
	}

	posts, err := h.postRepository.GetPostsByAuthor(c.Request().Context(), authorID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to fetch user posts", err)
	}

	populated, err := h.populatePosts(c, posts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "posts": populated})
}

// DeletePost deletes a post; only the author may delete it
func (h *PostHandler) DeletePost(c echo.Context) error {
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
	if post.Author != userID {
		return apperrors.New(apperrors.ErrForbidden, "Not authorized")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to delete post", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "message": "Post deleted"})
}
