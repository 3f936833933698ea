package domain

import "time"

// SongID is the integer identity a song keeps across the whole system.
type SongID int64

type Song struct {
	ID         SongID
	Title      string
	Artist     string // stored artist text; attribution fallback only
	FilePath   string // as stored: may be absolute, relative or backslash-separated
	CoverPath  string
	UploaderID UserID
	Plays      int64
	Downloads  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type UserID int64

type User struct {
	ID   UserID
	Name string
}

// Collaborator credits a user on a song in addition to its uploader.
// JoinedAt ordering is significant: attribution lists collaborators in
// join order.
type Collaborator struct {
	SongID   SongID
	UserID   UserID
	Name     string
	JoinedAt time.Time
}

// ArtistStats is the per-artist aggregate, incremented whenever any song
// the artist uploaded or collaborated on is played or downloaded. It is
// never recomputed from per-song counters.
type ArtistStats struct {
	UserID         UserID
	TotalPlays     int64
	TotalDownloads int64
}
