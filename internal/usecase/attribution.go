package usecase

import (
	"context"
	"log/slog"

	"soundstream/internal/domain"
	"soundstream/internal/domain/ports"
)

// ResolveAttribution builds the canonical artist credit for a song: the
// uploader's display name first, then collaborators in join order. Lookup
// failures degrade the list instead of failing the request — attribution is
// never the reason a download or search result errors out.
type ResolveAttribution struct {
	Users         ports.UserStore
	Collaborators ports.CollaboratorStore
	Logger        *slog.Logger
}

func (uc ResolveAttribution) Execute(ctx context.Context, song domain.Song) domain.Attribution {
	var contributors []domain.Contributor

	if uc.Users != nil {
		uploader, err := uc.Users.Get(ctx, song.UploaderID)
		if err != nil {
			uc.log(ctx, "attribution uploader lookup failed", song.ID, err)
		} else {
			contributors = append(contributors, domain.Contributor{ID: uploader.ID, Name: uploader.Name})
		}
	}

	if uc.Collaborators != nil {
		collabs, err := uc.Collaborators.ListBySong(ctx, song.ID)
		if err != nil {
			uc.log(ctx, "attribution collaborator lookup failed", song.ID, err)
		} else {
			for _, c := range collabs {
				contributors = append(contributors, domain.Contributor{ID: c.UserID, Name: c.Name})
			}
		}
	}

	return domain.BuildAttribution(contributors, song.Artist)
}

func (uc ResolveAttribution) log(ctx context.Context, msg string, id domain.SongID, err error) {
	if uc.Logger == nil {
		return
	}
	uc.Logger.WarnContext(ctx, msg,
		slog.Int64("songId", int64(id)),
		slog.String("error", err.Error()),
	)
}
