package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"soundstream/internal/domain"
)

// testMongoURI returns the MongoDB connection URI for integration tests.
// Defaults to localhost:27017. Set MONGO_TEST_URI to override.
func testMongoURI() string {
	if uri := os.Getenv("MONGO_TEST_URI"); uri != "" {
		return uri
	}
	return "mongodb://localhost:27017"
}

// setupTestDB connects to MongoDB and returns the client plus a unique test
// database name. The cleanup drops the database and disconnects. Skips the
// test if MongoDB is unreachable.
func setupTestDB(t *testing.T) (*mongo.Client, string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	uri := testMongoURI()
	client, err := Connect(ctx, uri, options.Client().SetConnectTimeout(3*time.Second))
	if err != nil {
		t.Skipf("MongoDB not available at %s: %v", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		t.Skipf("MongoDB ping failed at %s: %v", uri, err)
	}

	dbName := fmt.Sprintf("soundstream_test_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = client.Database(dbName).Drop(ctx2)
		_ = client.Disconnect(ctx2)
	})
	return client, dbName
}

func insertSong(t *testing.T, client *mongo.Client, dbName string, doc songDoc) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Database(dbName).Collection("songs").InsertOne(ctx, doc); err != nil {
		t.Fatalf("insert song: %v", err)
	}
}

func TestIncrementCounterConcurrentNoLostUpdates(t *testing.T) {
	client, dbName := setupTestDB(t)
	repo := NewSongRepository(client, dbName)
	insertSong(t, client, dbName, songDoc{ID: 1, Title: "Race", UploaderID: 10, Downloads: 7})

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if _, err := repo.IncrementCounter(ctx, 1, domain.CounterDownloads); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	song, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if song.Downloads != 7+workers {
		t.Fatalf("downloads = %d, want %d", song.Downloads, 7+workers)
	}
	if song.Plays != 0 {
		t.Fatalf("plays = %d, want untouched", song.Plays)
	}
}

func TestIncrementCounterReturnsPostIncrementValue(t *testing.T) {
	client, dbName := setupTestDB(t)
	repo := NewSongRepository(client, dbName)
	insertSong(t, client, dbName, songDoc{ID: 2, Title: "Once", Plays: 41})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	song, err := repo.IncrementCounter(ctx, 2, domain.CounterPlays)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if song.Plays != 42 {
		t.Fatalf("plays = %d, want 42", song.Plays)
	}
	if song.UpdatedAt.IsZero() {
		t.Fatal("UpdatedAt not set by increment")
	}
}

func TestIncrementCounterUnknownSong(t *testing.T) {
	client, dbName := setupTestDB(t)
	repo := NewSongRepository(client, dbName)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := repo.IncrementCounter(ctx, 999, domain.CounterPlays); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := repo.Get(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get err = %v, want ErrNotFound", err)
	}
}

func TestArtistStatsIncrementSkipsMissingRecords(t *testing.T) {
	client, dbName := setupTestDB(t)
	stats := NewArtistStatsRepository(client, dbName)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	coll := client.Database(dbName).Collection("artist_stats")
	if _, err := coll.InsertOne(ctx, map[string]interface{}{"_id": int64(10), "total_plays": int64(5)}); err != nil {
		t.Fatalf("insert stats: %v", err)
	}

	// User 20 has no aggregate record and must not be created.
	if err := stats.IncrementTotals(ctx, []domain.UserID{10, 20}, domain.CounterPlays); err != nil {
		t.Fatalf("increment totals: %v", err)
	}

	existing, err := stats.Get(ctx, 10)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if existing.TotalPlays != 6 {
		t.Fatalf("total plays = %d, want 6", existing.TotalPlays)
	}
	if _, err := stats.Get(ctx, 20); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("user 20 err = %v, want ErrNotFound (no upsert)", err)
	}
}

func TestCollaboratorsListedInJoinOrder(t *testing.T) {
	client, dbName := setupTestDB(t)
	repo := NewCollaboratorRepository(client, dbName)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	coll := client.Database(dbName).Collection("collaborators")
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Unix()
	docs := []interface{}{
		collaboratorDoc{SongID: 1, UserID: 30, Name: "Late", JoinedAt: base + 3600},
		collaboratorDoc{SongID: 1, UserID: 20, Name: "Early", JoinedAt: base},
		collaboratorDoc{SongID: 2, UserID: 40, Name: "Other Song", JoinedAt: base},
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		t.Fatalf("insert collaborators: %v", err)
	}

	collabs, err := repo.ListBySong(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(collabs) != 2 {
		t.Fatalf("got %d collaborators, want 2", len(collabs))
	}
	if collabs[0].Name != "Early" || collabs[1].Name != "Late" {
		t.Fatalf("order = %q, %q; want Early, Late", collabs[0].Name, collabs[1].Name)
	}
}
