package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"soundstream/internal/domain"
)

type CollaboratorRepository struct {
	collection *mongo.Collection
}

type collaboratorDoc struct {
	SongID   int64  `bson:"songId"`
	UserID   int64  `bson:"userId"`
	Name     string `bson:"name"`
	JoinedAt int64  `bson:"joinedAt"`
}

func NewCollaboratorRepository(client *mongo.Client, dbName string) *CollaboratorRepository {
	return &CollaboratorRepository{collection: client.Database(dbName).Collection("collaborators")}
}

func (r *CollaboratorRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "songId", Value: 1}, {Key: "joinedAt", Value: 1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, models)
	return err
}

// ListBySong returns collaborators in join order. Ordering matters: the
// attribution string credits collaborators in the order they joined.
func (r *CollaboratorRepository) ListBySong(ctx context.Context, id domain.SongID) ([]domain.Collaborator, error) {
	opts := options.Find().SetSort(bson.D{{Key: "joinedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"songId": int64(id)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []collaboratorDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	collabs := make([]domain.Collaborator, 0, len(docs))
	for _, doc := range docs {
		collabs = append(collabs, domain.Collaborator{
			SongID:   domain.SongID(doc.SongID),
			UserID:   domain.UserID(doc.UserID),
			Name:     doc.Name,
			JoinedAt: time.Unix(doc.JoinedAt, 0).UTC(),
		})
	}
	return collabs, nil
}
