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

// ChatRepository is the single authoritative store for conversations. The
// flat message log and the per-counterpart chat list are derived from it.
type ChatRepository interface {
	FindByParticipants(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error)
	CreateChat(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error)
	GetChatByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	GetChatsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error)
	AppendMessage(ctx context.Context, chatID primitive.ObjectID, msg models.ChatMessage) (*models.Chat, error)
	MarkRead(ctx context.Context, chatID, readerID primitive.ObjectID) error
	MarkReadFromSender(ctx context.Context, chatID, senderID primitive.ObjectID) error
	DeleteChat(ctx context.Context, id primitive.ObjectID) error
}

// MongoChatRepository implements ChatRepository for MongoDB
type MongoChatRepository struct {
	collection *mongo.Collection
}

// NewMongoChatRepository creates a new MongoChatRepository
func NewMongoChatRepository(db *mongo.Database) *MongoChatRepository {
	return &MongoChatRepository{collection: db.Collection("chats")}
}

// FindByParticipants looks up the room for an unordered pair
func (r *MongoChatRepository) FindByParticipants(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	filter := bson.M{"participants": bson.M{"$all": bson.A{a, b}}}
	err := r.collection.FindOne(ctx, filter).Decode(&chat)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// CreateChat inserts an empty room for the pair
func (r *MongoChatRepository) CreateChat(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error) {
	chat := &models.Chat{
		ID:           primitive.NewObjectID(),
		Participants: []primitive.ObjectID{a, b},
		Messages:     []models.ChatMessage{},
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if _, err := r.collection.InsertOne(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// GetChatByID retrieves a chat by ID
func (r *MongoChatRepository) GetChatByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetChatsForUser retrieves every room containing the user, newest
// activity first
func (r *MongoChatRepository) GetChatsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var chats []models.Chat
	if err = cursor.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// AppendMessage pushes a message, refreshes the cached latest-message text
// and returns the updated chat
func (r *MongoChatRepository) AppendMessage(ctx context.Context, chatID primitive.ObjectID, msg models.ChatMessage) (*models.Chat, error) {
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"latest_message": msg.Text, "updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var chat models.Chat
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": chatID}, update, opts).Decode(&chat)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// MarkRead flips read=true on every message not authored by readerID
func (r *MongoChatRepository) MarkRead(ctx context.Context, chatID, readerID primitive.ObjectID) error {
	return r.markRead(ctx, chatID, bson.M{"m.sender": bson.M{"$ne": readerID}})
}

// MarkReadFromSender flips read=true only on messages authored by senderID
func (r *MongoChatRepository) MarkReadFromSender(ctx context.Context, chatID, senderID primitive.ObjectID) error {
	return r.markRead(ctx, chatID, bson.M{"m.sender": senderID})
}

func (r *MongoChatRepository) markRead(ctx context.Context, chatID primitive.ObjectID, arrayFilter bson.M) error {
	update := bson.M{"$set": bson.M{"messages.$[m].read": true}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{Filters: bson.A{arrayFilter}})
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": chatID}, update, opts)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteChat hard-deletes a room
func (r *MongoChatRepository) DeleteChat(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
