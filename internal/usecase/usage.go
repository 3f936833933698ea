package usecase

import (
	"context"
	"errors"
	"log/slog"

	"soundstream/internal/domain"
	"soundstream/internal/domain/ports"
)

// IncrementUsage bumps a song's plays/downloads counter and cascades the
// increment to every contributing artist's aggregate totals. The primary
// increment is the transaction: its failure propagates. The cascade is a
// side channel: its failure is logged and swallowed so bookkeeping can never
// block media delivery.
type IncrementUsage struct {
	Songs         ports.SongStore
	Collaborators ports.CollaboratorStore
	Stats         ports.ArtistStatsStore
	Logger        *slog.Logger
}

// Execute returns the counter value after the increment.
func (uc IncrementUsage) Execute(ctx context.Context, id domain.SongID, counter domain.Counter) (int64, error) {
	if !counter.Valid() {
		return 0, ErrInvalidCounter
	}

	song, err := uc.Songs.IncrementCounter(ctx, id, counter)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, err
		}
		return 0, wrapRepo(err)
	}

	uc.cascade(ctx, song, counter)

	switch counter {
	case domain.CounterDownloads:
		return song.Downloads, nil
	default:
		return song.Plays, nil
	}
}

// cascade increments total_plays/total_downloads for the uploader and every
// collaborator that has an aggregate record. Best effort only.
func (uc IncrementUsage) cascade(ctx context.Context, song domain.Song, counter domain.Counter) {
	if uc.Stats == nil {
		return
	}

	users := []domain.UserID{song.UploaderID}
	if uc.Collaborators != nil {
		collabs, err := uc.Collaborators.ListBySong(ctx, song.ID)
		if err != nil {
			uc.log(ctx, "usage cascade collaborator lookup failed", song.ID, counter, err)
		} else {
			seen := map[domain.UserID]struct{}{song.UploaderID: {}}
			for _, c := range collabs {
				if _, dup := seen[c.UserID]; dup {
					continue
				}
				seen[c.UserID] = struct{}{}
				users = append(users, c.UserID)
			}
		}
	}

	if err := uc.Stats.IncrementTotals(ctx, users, counter); err != nil {
		uc.log(ctx, "usage cascade aggregate update failed", song.ID, counter, err)
	}
}

func (uc IncrementUsage) log(ctx context.Context, msg string, id domain.SongID, counter domain.Counter, err error) {
	if uc.Logger == nil {
		return
	}
	uc.Logger.WarnContext(ctx, msg,
		slog.Int64("songId", int64(id)),
		slog.String("counter", string(counter)),
		slog.String("error", err.Error()),
	)
}
