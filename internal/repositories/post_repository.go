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

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetPostsByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Post, error)
	GetPostsByAuthors(ctx context.Context, authorIDs []primitive.ObjectID) ([]models.Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error
	AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) error
	RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPostsByAuthor retrieves one user's posts, newest first
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{"author": authorID})
}

// GetPostsByAuthors retrieves posts from a set of authors, newest first
func (r *MongoPostRepository) GetPostsByAuthors(ctx context.Context, authorIDs []primitive.ObjectID) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	return r.findPosts(ctx, bson.M{"author": bson.M{"$in": authorIDs}})
}

func (r *MongoPostRepository) findPosts(ctx context.Context, filter bson.M) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddLike adds userID to the like set. $addToSet keeps it duplicate-free.
func (r *MongoPostRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID},
		bson.M{"$addToSet": bson.M{"likes": userID}})
	return err
}

// RemoveLike removes userID from the like set
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"likes": userID}})
	return err
}

// AddComment appends a comment to the embedded list
func (r *MongoPostRepository) AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": comment}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RemoveComment deletes a comment from the embedded list by its ID
func (r *MongoPostRepository) RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
