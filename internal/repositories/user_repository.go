package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/lynk-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameOrEmailExists(ctx context.Context, username, email string) (bool, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	AddFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	RemoveFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	BlockUser(ctx context.Context, userID, targetID primitive.ObjectID) error
	UnblockUser(ctx context.Context, userID, targetID primitive.ObjectID) error
	GetCompacts(ctx context.Context, ids []primitive.ObjectID) ([]models.UserCompact, error)
	SearchUsers(ctx context.Context, query string) ([]models.UserCompact, error)
	FindBlockers(ctx context.Context, candidates []primitive.ObjectID, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser inserts a new user
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.Blocked == nil {
		user.Blocked = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

// GetUserByID retrieves a user by ID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by exact username
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameOrEmailExists reports whether either identifier is already taken
func (r *MongoUserRepository) UsernameOrEmailExists(ctx context.Context, username, email string) (bool, error) {
	filter := bson.M{"$or": bson.A{bson.M{"username": username}, bson.M{"email": email}}}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateFields applies a partial update and returns the updated user
func (r *MongoUserRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.User, error) {
	updates["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": updates}, opts).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user document
func (r *MongoUserRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddFollow records the follow edge on both sides. $addToSet keeps the sets
// duplicate-free under repeated calls.
func (r *MongoUserRepository) AddFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": followerID},
		bson.M{"$addToSet": bson.M{"following": targetID}})
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": targetID},
		bson.M{"$addToSet": bson.M{"followers": followerID}})
	return err
}

// RemoveFollow deletes the follow edge on both sides
func (r *MongoUserRepository) RemoveFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": followerID},
		bson.M{"$pull": bson.M{"following": targetID}})
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": targetID},
		bson.M{"$pull": bson.M{"followers": followerID}})
	return err
}

// BlockUser adds targetID to the blocked set and severs follow edges in
// both directions
func (r *MongoUserRepository) BlockUser(ctx context.Context, userID, targetID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$addToSet": bson.M{"blocked": targetID},
		"$pull":     bson.M{"following": targetID, "followers": targetID},
	})
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": targetID}, bson.M{
		"$pull": bson.M{"following": userID, "followers": userID},
	})
	return err
}

// UnblockUser removes targetID from the blocked set
func (r *MongoUserRepository) UnblockUser(ctx context.Context, userID, targetID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"blocked": targetID}})
	return err
}

// GetCompacts resolves a set of user IDs to display fields
func (r *MongoUserRepository) GetCompacts(ctx context.Context, ids []primitive.ObjectID) ([]models.UserCompact, error) {
	if len(ids) == 0 {
		return []models.UserCompact{}, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "username": 1, "profile_pic": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var compacts []models.UserCompact
	if err = cursor.All(ctx, &compacts); err != nil {
		return nil, err
	}
	return compacts, nil
}

// SearchUsers finds users by case-insensitive username match
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string) ([]models.UserCompact, error) {
	filter := bson.M{"username": bson.M{"$regex": query, "$options": "i"}}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "username": 1, "profile_pic": 1}).SetLimit(50)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var compacts []models.UserCompact
	if err = cursor.All(ctx, &compacts); err != nil {
		return nil, err
	}
	return compacts, nil
}

// FindBlockers returns the subset of candidates whose blocked set contains
// userID. Used as the reverse-block predicate for feed filtering.
func (r *MongoUserRepository) FindBlockers(ctx context.Context, candidates []primitive.ObjectID, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	filter := bson.M{"_id": bson.M{"$in": candidates}, "blocked": userID}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// EnsureSystemUser resolves the reserved system identity, creating it once
// if the deployment has never seen it. Called at startup only.
func (r *MongoUserRepository) EnsureSystemUser(ctx context.Context, passwordHash string) (*models.User, error) {
	user, err := r.GetUserByUsername(ctx, models.SystemUsername)
	if err == nil {
		return user, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("lookup system user: %w", err)
	}

	system := &models.User{
		Username: models.SystemUsername,
		Email:    "lynk@system.com",
		Password: passwordHash,
		Role:     models.RoleAdmin,
	}
	if err := r.CreateUser(ctx, system); err != nil {
		return nil, fmt.Errorf("create system user: %w", err)
	}
	return system, nil
}
