package handlers

import (
	"context"

	"github.com/lynk-app/backend/internal/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UsernameOrEmailExists(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.User, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) AddFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	args := m.Called(ctx, followerID, targetID)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	args := m.Called(ctx, followerID, targetID)
	return args.Error(0)
}

func (m *MockUserRepository) BlockUser(ctx context.Context, userID, targetID primitive.ObjectID) error {
	args := m.Called(ctx, userID, targetID)
	return args.Error(0)
}

func (m *MockUserRepository) UnblockUser(ctx context.Context, userID, targetID primitive.ObjectID) error {
	args := m.Called(ctx, userID, targetID)
	return args.Error(0)
}

func (m *MockUserRepository) GetCompacts(ctx context.Context, ids []primitive.ObjectID) ([]models.UserCompact, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.UserCompact), args.Error(1)
}

func (m *MockUserRepository) SearchUsers(ctx context.Context, query string) ([]models.UserCompact, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]models.UserCompact), args.Error(1)
}

func (m *MockUserRepository) FindBlockers(ctx context.Context, candidates []primitive.ObjectID, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, candidates, userID)
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}

// MockChatRepository is a mock implementation of ChatRepository
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) FindByParticipants(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockChatRepository) CreateChat(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockChatRepository) GetChatByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockChatRepository) GetChatsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Chat), args.Error(1)
}

func (m *MockChatRepository) AppendMessage(ctx context.Context, chatID primitive.ObjectID, msg models.ChatMessage) (*models.Chat, error) {
	args := m.Called(ctx, chatID, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockChatRepository) MarkRead(ctx context.Context, chatID, readerID primitive.ObjectID) error {
	args := m.Called(ctx, chatID, readerID)
	return args.Error(0)
}

func (m *MockChatRepository) MarkReadFromSender(ctx context.Context, chatID, senderID primitive.ObjectID) error {
	args := m.Called(ctx, chatID, senderID)
	return args.Error(0)
}

func (m *MockChatRepository) DeleteChat(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPostRepository is a mock implementation of PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetPostsByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Post, error) {
	args := m.Called(ctx, authorID)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) GetPostsByAuthors(ctx context.Context, authorIDs []primitive.ObjectID) ([]models.Post, error) {
	args := m.Called(ctx, authorIDs)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	args := m.Called(ctx, postID, userID)
	return args.Error(0)
}

func (m *MockPostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	args := m.Called(ctx, postID, userID)
	return args.Error(0)
}

func (m *MockPostRepository) AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) error {
	args := m.Called(ctx, postID, comment)
	return args.Error(0)
}

func (m *MockPostRepository) RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	args := m.Called(ctx, postID, commentID)
	return args.Error(0)
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByReceiver(ctx context.Context, receiverID primitive.ObjectID, page, limit int) ([]models.Notification, int64, error) {
	args := m.Called(ctx, receiverID, page, limit)
	return args.Get(0).([]models.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) GetUnreadCount(ctx context.Context, receiverID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, receiverID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, receiverID primitive.ObjectID) error {
	args := m.Called(ctx, receiverID)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteNotification(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSupportRepository is a mock implementation of SupportRepository
type MockSupportRepository struct {
	mock.Mock
}

func (m *MockSupportRepository) CreateTicket(ctx context.Context, ticket *models.SupportTicket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockSupportRepository) GetTicketByID(ctx context.Context, id primitive.ObjectID) (*models.SupportTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupportTicket), args.Error(1)
}

func (m *MockSupportRepository) GetTicketsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.SupportTicket, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.SupportTicket), args.Error(1)
}

func (m *MockSupportRepository) GetAllTickets(ctx context.Context) ([]models.SupportTicket, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.SupportTicket), args.Error(1)
}

func (m *MockSupportRepository) UpdateTicketStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.SupportTicket, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupportTicket), args.Error(1)
}

func (m *MockSupportRepository) CreateMessage(ctx context.Context, msg *models.SupportMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockSupportRepository) GetMessagesByTicket(ctx context.Context, ticketID primitive.ObjectID) ([]models.SupportMessage, error) {
	args := m.Called(ctx, ticketID)
	return args.Get(0).([]models.SupportMessage), args.Error(1)
}

func (m *MockSupportRepository) GetLastMessages(ctx context.Context, ticketIDs []primitive.ObjectID) (map[primitive.ObjectID]models.SupportMessage, error) {
	args := m.Called(ctx, ticketIDs)
	return args.Get(0).(map[primitive.ObjectID]models.SupportMessage), args.Error(1)
}
