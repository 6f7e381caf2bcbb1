package repository

import (
	"context"
	"errors"
	"time"

	"conditions-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrDuplicateEmail  = errors.New("email already registered")
)

// AccountRepo stores accounts for the local identity backend.
type AccountRepo struct {
	collection *mongo.Collection
}

func NewAccountRepo(db *mongo.Database) *AccountRepo {
	return &AccountRepo{
		collection: db.Collection("accounts"),
	}
}

func (r *AccountRepo) Create(ctx context.Context, account *models.LocalAccount) error {
	account.CreatedAt = time.Now().UTC()
	result, err := r.collection.InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	account.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*models.LocalAccount, error) {
	var account models.LocalAccount
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepo) DeleteByUID(ctx context.Context, uid string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"uid": uid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// EnsureIndexes creates necessary indexes for the accounts collection
func (r *AccountRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "uid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
