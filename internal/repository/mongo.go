package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shelfmark/shelfmark-go/internal/model"
)

const usersCollection = "users"

// userDocument is the stored shape of a user in MongoDB.
type userDocument struct {
	ID         string    `bson:"_id"`
	UserName   string    `bson:"userName"`
	Password   string    `bson:"password"`
	Email      string    `bson:"email"`
	Favourites []string  `bson:"favourites"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

// MongoUserRepository is the MongoDB UserStore. Uniqueness of userName is
// enforced by a unique index created when the repository is opened.
type MongoUserRepository struct {
	client *mongo.Client
	users  *mongo.Collection
}

// NewMongoUserRepository connects to MongoDB, verifies the server is
// reachable and ensures the users indexes exist.
func NewMongoUserRepository(ctx context.Context, uri, database string) (*MongoUserRepository, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	r := &MongoUserRepository{
		client: client,
		users:  client.Database(database).Collection(usersCollection),
	}

	_, err = r.users.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userName", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("userName_unique"),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("creating userName index: %w", err)
	}

	return r, nil
}

// DialMongo returns a Dialer that opens a MongoDB-backed UserStore.
func DialMongo(uri, database string) Dialer {
	return func(ctx context.Context) (UserStore, error) {
		return NewMongoUserRepository(ctx, uri, database)
	}
}

// Create inserts a new user document.
func (r *MongoUserRepository) Create(ctx context.Context, user *model.User) error {
	doc := userDocument{
		ID:         user.ID,
		UserName:   user.UserName,
		Password:   user.PasswordHash,
		Email:      user.Email,
		Favourites: user.Favourites,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
	if doc.Favourites == nil {
		doc.Favourites = []string{}
	}

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateUserName
		}
		return err
	}
	return nil
}

// GetByUserName retrieves a user by user name.
func (r *MongoUserRepository) GetByUserName(ctx context.Context, userName string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"userName": userName})
}

// GetByID retrieves a user by ID.
func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// SaveFavourites replaces the favourites array of the user with the given ID.
func (r *MongoUserRepository) SaveFavourites(ctx context.Context, id string, favourites []string) error {
	if favourites == nil {
		favourites = []string{}
	}

	result, err := r.users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"favourites": favourites, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Close disconnects the client.
func (r *MongoUserRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user := &model.User{
		ID:           doc.ID,
		UserName:     doc.UserName,
		PasswordHash: doc.Password,
		Email:        doc.Email,
		Favourites:   doc.Favourites,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
	if user.Favourites == nil {
		user.Favourites = []string{}
	}
	return user, nil
}
