package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/lynk-app/backend/internal/apperrors"
	"github.com/lynk-app/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func TestSignup(t *testing.T) {
	e := newTestEcho()
	mockRepo := new(MockUserRepository)
	handler := NewAuthHandler(mockRepo, "test-secret")

	mockRepo.On("UsernameOrEmailExists", mock.Anything, "alice", "alice@example.com").Return(false, nil)
	mockRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Run(func(args mock.Arguments) {
		u := args.Get(1).(*models.User)
		u.ID = primitive.NewObjectID()
	})

	body := `{"username":"alice","email":"alice@example.com","password":"password123"}`
	c, rec := newTestContext(e, http.MethodPost, "/api/users/signup", body, primitive.NilObjectID)

	err := handler.Signup(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["status"])
	assert.NotEmpty(t, resp["token"])

	// password never leaves the server
	user := resp["user"].(map[string]interface{})
	_, leaked := user["password"]
	assert.False(t, leaked)
	mockRepo.AssertExpectations(t)
}

func TestSignupDuplicate(t *testing.T) {
	e := newTestEcho()
	mockRepo := new(MockUserRepository)
	handler := NewAuthHandler(mockRepo, "test-secret")

	mockRepo.On("UsernameOrEmailExists", mock.Anything, "alice", "alice@example.com").Return(true, nil)

	body := `{"username":"alice","email":"alice@example.com","password":"password123"}`
	c, _ := newTestContext(e, http.MethodPost, "/api/users/signup", body, primitive.NilObjectID)

	err := handler.Signup(c)
	appErr, ok := apperrors.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	assert.Equal(t, "Username or email already exists", appErr.Message)
}

func TestLogin(t *testing.T) {
	e := newTestEcho()
	mockRepo := new(MockUserRepository)
	handler := NewAuthHandler(mockRepo, "test-secret")

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "alice",
		Password: string(hash),
	}
	mockRepo.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil)

	body := `{"username":"alice","password":"password123"}`
	c, rec := newTestContext(e, http.MethodPost, "/api/users/login", body, primitive.NilObjectID)

	assert.NoError(t, handler.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
}

func TestLoginWrongPassword(t *testing.T) {
	e := newTestEcho()
	mockRepo := new(MockUserRepository)
	handler := NewAuthHandler(mockRepo, "test-secret")

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{ID: primitive.NewObjectID(), Username: "alice", Password: string(hash)}
	mockRepo.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil)

	body := `{"username":"alice","password":"wrong"}`
	c, _ := newTestContext(e, http.MethodPost, "/api/users/login", body, primitive.NilObjectID)

	err := handler.Login(c)
	appErr, ok := apperrors.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, "Invalid credentials", appErr.Message)
}
