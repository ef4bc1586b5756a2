package handlers

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/lynk-app/backend/internal/apperrors"
	"github.com/lynk-app/backend/internal/models"
	"github.com/lynk-app/backend/internal/repositories"
	"github.com/lynk-app/backend/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles signup and login
type AuthHandler struct {
	userRepository repositories.UserRepository
	jwtSecret      string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		jwtSecret:      jwtSecret,
	}
}

// RegisterAuthRoutes registers the unauthenticated routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
}

// Signup handles user registration with username, email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.ErrValidation, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	exists, err := h.userRepository.UsernameOrEmailExists(c.Request().Context(), req.Username, req.Email)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Signup failed", err)
	}
	if exists {
		return apperrors.New(apperrors.ErrValidation, "Username or email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to hash password", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(c.Request().Context(), user); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Signup failed", err)
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to generate token", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"status": 1, "user": user, "token": token})
}

// Login handles username/password authentication
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.ErrValidation, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), req.Username)
	if err != nil {
		return apperrors.New(apperrors.ErrValidation, "Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return apperrors.New(apperrors.ErrValidation, "Invalid credentials")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to generate token", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"status": 1, "user": user, "token": token})
}

// generateJWT issues a bearer token for a user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
