package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"soundstream/internal/domain"
)

type ArtistStatsRepository struct {
	collection *mongo.Collection
}

func NewArtistStatsRepository(client *mongo.Client, dbName string) *ArtistStatsRepository {
	return &ArtistStatsRepository{collection: client.Database(dbName).Collection("artist_stats")}
}

// IncrementTotals bumps the aggregate field for every listed user that
// already has a stats record. No upsert: artists without a record are
// skipped, matching the aggregate's write-only-increment contract.
func (r *ArtistStatsRepository) IncrementTotals(ctx context.Context, users []domain.UserID, counter domain.Counter) error {
	if len(users) == 0 {
		return nil
	}
	field := counter.AggregateField()
	if field == "" {
		return fmt.Errorf("unknown counter %q", counter)
	}

	ids := make([]int64, 0, len(users))
	for _, id := range users {
		ids = append(ids, int64(id))
	}

	_, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$inc": bson.M{field: 1}},
	)
	return err
}

// Get reads a single artist's aggregate, mostly for tests and diagnostics.
func (r *ArtistStatsRepository) Get(ctx context.Context, id domain.UserID) (domain.ArtistStats, error) {
	var doc struct {
		ID             int64 `bson:"_id"`
		TotalPlays     int64 `bson:"total_plays"`
		TotalDownloads int64 `bson:"total_downloads"`
	}
	if err := r.collection.FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ArtistStats{}, domain.ErrNotFound
		}
		return domain.ArtistStats{}, err
	}
	return domain.ArtistStats{
		UserID:         domain.UserID(doc.ID),
		TotalPlays:     doc.TotalPlays,
		TotalDownloads: doc.TotalDownloads,
	}, nil
}
