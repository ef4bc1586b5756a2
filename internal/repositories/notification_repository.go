package repositories

import (
	"context"
	"time"

	"github.com/lynk-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByReceiver(ctx context.Context, receiverID primitive.ObjectID, page, limit int) ([]models.Notification, int64, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	GetUnreadCount(ctx context.Context, receiverID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, id primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, receiverID primitive.ObjectID) error
	DeleteNotification(ctx context.Context, id primitive.ObjectID) error
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// CreateNotification inserts a notification record
func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// GetByReceiver returns paginated notifications, newest first, plus the total
func (r *MongoNotificationRepository) GetByReceiver(ctx context.Context, receiverID primitive.ObjectID, page, limit int) ([]models.Notification, int64, error) {
	filter := bson.M{"receiver": receiverID}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := int64((page - 1) * limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// GetByID retrieves a single notification
func (r *MongoNotificationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var notification models.Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&notification)
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// GetUnreadCount counts unread notifications for a receiver
func (r *MongoNotificationRepository) GetUnreadCount(ctx context.Context, receiverID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"receiver": receiverID, "read": false})
}

// MarkAsRead sets read=true on one notification
func (r *MongoNotificationRepository) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkAllAsRead sets read=true on every unread notification for a receiver
func (r *MongoNotificationRepository) MarkAllAsRead(ctx context.Context, receiverID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"receiver": receiverID, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	return err
}

// DeleteNotification removes a notification record
func (r *MongoNotificationRepository) DeleteNotification(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
