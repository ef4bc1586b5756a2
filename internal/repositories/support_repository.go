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

// SupportRepository defines the interface for helpdesk operations
type SupportRepository interface {
	CreateTicket(ctx context.Context, ticket *models.SupportTicket) error
	GetTicketByID(ctx context.Context, id primitive.ObjectID) (*models.SupportTicket, error)
	GetTicketsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.SupportTicket, error)
	GetAllTickets(ctx context.Context) ([]models.SupportTicket, error)
	UpdateTicketStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.SupportTicket, error)
	CreateMessage(ctx context.Context, msg *models.SupportMessage) error
	GetMessagesByTicket(ctx context.Context, ticketID primitive.ObjectID) ([]models.SupportMessage, error)
	GetLastMessages(ctx context.Context, ticketIDs []primitive.ObjectID) (map[primitive.ObjectID]models.SupportMessage, error)
}

// MongoSupportRepository implements SupportRepository for MongoDB
type MongoSupportRepository struct {
	tickets  *mongo.Collection
	messages *mongo.Collection
}

// NewMongoSupportRepository creates a new MongoSupportRepository
func NewMongoSupportRepository(db *mongo.Database) *MongoSupportRepository {
	return &MongoSupportRepository{
		tickets:  db.Collection("support_tickets"),
		messages: db.Collection("support_messages"),
	}
}

// CreateTicket inserts a ticket with open status
func (r *MongoSupportRepository) CreateTicket(ctx context.Context, ticket *models.SupportTicket) error {
	ticket.ID = primitive.NewObjectID()
	if ticket.Subject == "" {
		ticket.Subject = "Support Request"
	}
	ticket.Status = models.TicketOpen
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = time.Now()
	_, err := r.tickets.InsertOne(ctx, ticket)
	return err
}

// GetTicketByID retrieves a ticket
func (r *MongoSupportRepository) GetTicketByID(ctx context.Context, id primitive.ObjectID) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := r.tickets.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetTicketsByUser returns one user's tickets, newest first
func (r *MongoSupportRepository) GetTicketsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.SupportTicket, error) {
	return r.findTickets(ctx, bson.M{"user": userID})
}

// GetAllTickets returns every ticket, newest first
func (r *MongoSupportRepository) GetAllTickets(ctx context.Context) ([]models.SupportTicket, error) {
	return r.findTickets(ctx, bson.M{})
}

func (r *MongoSupportRepository) findTickets(ctx context.Context, filter bson.M) ([]models.SupportTicket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.tickets.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tickets []models.SupportTicket
	if err = cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// UpdateTicketStatus transitions a ticket and returns the updated record
func (r *MongoSupportRepository) UpdateTicketStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.SupportTicket, error) {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ticket models.SupportTicket
	err := r.tickets.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&ticket)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// CreateMessage inserts a reply into a ticket thread
func (r *MongoSupportRepository) CreateMessage(ctx context.Context, msg *models.SupportMessage) error {
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now()
	_, err := r.messages.InsertOne(ctx, msg)
	return err
}

// GetMessagesByTicket returns a ticket's messages in thread order
func (r *MongoSupportRepository) GetMessagesByTicket(ctx context.Context, ticketID primitive.ObjectID) ([]models.SupportMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.messages.Find(ctx, bson.M{"ticket": ticketID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.SupportMessage
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// GetLastMessages aggregates the most recent message per ticket
func (r *MongoSupportRepository) GetLastMessages(ctx context.Context, ticketIDs []primitive.ObjectID) (map[primitive.ObjectID]models.SupportMessage, error) {
	result := make(map[primitive.ObjectID]models.SupportMessage)
	if len(ticketIDs) == 0 {
		return result, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ticket": bson.M{"$in": ticketIDs}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":  "$ticket",
			"last": bson.M{"$first": "$$ROOT"},
		}}},
	}
	cursor, err := r.messages.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID   primitive.ObjectID    `bson:"_id"`
		Last models.SupportMessage `bson:"last"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = row.Last
	}
	return result, nil
}
