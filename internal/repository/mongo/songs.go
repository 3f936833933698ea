package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"soundstream/internal/domain"
)

type SongRepository struct {
	collection *mongo.Collection
}

type songDoc struct {
	ID         int64  `bson:"_id"`
	Title      string `bson:"title"`
	Artist     string `bson:"artist"`
	FilePath   string `bson:"filePath"`
	CoverPath  string `bson:"coverPath,omitempty"`
	UploaderID int64  `bson:"uploaderId"`
	Plays      int64  `bson:"plays"`
	Downloads  int64  `bson:"downloads"`
	CreatedAt  int64  `bson:"createdAt"`
	UpdatedAt  int64  `bson:"updatedAt"`
}

func NewSongRepository(client *mongo.Client, dbName string) *SongRepository {
	return &SongRepository{collection: client.Database(dbName).Collection("songs")}
}

func (r *SongRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "uploaderId", Value: 1}}},
		{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, models)
	return err
}

func (r *SongRepository) Get(ctx context.Context, id domain.SongID) (domain.Song, error) {
	var doc songDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Song{}, domain.ErrNotFound
		}
		return domain.Song{}, err
	}
	return songFromDoc(doc), nil
}

// IncrementCounter performs the counter update as a single atomic
// read-modify-write on the song document. FindOneAndUpdate with $inc locks
// the document for the duration of the update, so N concurrent increments
// always land as +N — the document-level equivalent of a select-for-update
// row lock.
func (r *SongRepository) IncrementCounter(ctx context.Context, id domain.SongID, counter domain.Counter) (domain.Song, error) {
	if !counter.Valid() {
		return domain.Song{}, fmt.Errorf("unknown counter %q", counter)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$inc": bson.M{string(counter): 1},
		"$set": bson.M{"updatedAt": time.Now().UTC().Unix()},
	}

	var doc songDoc
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": int64(id)}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Song{}, domain.ErrNotFound
		}
		return domain.Song{}, err
	}
	return songFromDoc(doc), nil
}

func songFromDoc(doc songDoc) domain.Song {
	return domain.Song{
		ID:         domain.SongID(doc.ID),
		Title:      doc.Title,
		Artist:     doc.Artist,
		FilePath:   doc.FilePath,
		CoverPath:  doc.CoverPath,
		UploaderID: domain.UserID(doc.UploaderID),
		Plays:      doc.Plays,
		Downloads:  doc.Downloads,
		CreatedAt:  time.Unix(doc.CreatedAt, 0).UTC(),
		UpdatedAt:  time.Unix(doc.UpdatedAt, 0).UTC(),
	}
}
