package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"soundstream/internal/domain"
)

type UserRepository struct {
	collection *mongo.Collection
}

type userDoc struct {
	ID   int64  `bson:"_id"`
	Name string `bson:"name"`
}

func NewUserRepository(client *mongo.Client, dbName string) *UserRepository {
	return &UserRepository{collection: client.Database(dbName).Collection("users")}
}

func (r *UserRepository) Get(ctx context.Context, id domain.UserID) (domain.User, error) {
	var doc userDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return domain.User{ID: domain.UserID(doc.ID), Name: doc.Name}, nil
}
