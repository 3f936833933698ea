package ports

import (
	"context"

	"soundstream/internal/domain"
)

type SongStore interface {
	Get(ctx context.Context, id domain.SongID) (domain.Song, error)
	// IncrementCounter atomically adds one to the named counter and returns
	// the song as of after the increment. Concurrent increments must not
	// lose updates.
	IncrementCounter(ctx context.Context, id domain.SongID, counter domain.Counter) (domain.Song, error)
}

type UserStore interface {
	Get(ctx context.Context, id domain.UserID) (domain.User, error)
}

type CollaboratorStore interface {
	// ListBySong returns the song's collaborators ordered by join time.
	ListBySong(ctx context.Context, id domain.SongID) ([]domain.Collaborator, error)
}

type ArtistStatsStore interface {
	// IncrementTotals adds one to the aggregate field for every listed user
	// that has an aggregate record. Users without a record are skipped, not
	// created.
	IncrementTotals(ctx context.Context, users []domain.UserID, counter domain.Counter) error
}
