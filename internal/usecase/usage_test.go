package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"soundstream/internal/domain"
)

type fakeSongStore struct {
	mu    sync.Mutex
	songs map[domain.SongID]domain.Song
	err   error
}

func newFakeSongStore(songs ...domain.Song) *fakeSongStore {
	s := &fakeSongStore{songs: make(map[domain.SongID]domain.Song)}
	for _, song := range songs {
		s.songs[song.ID] = song
	}
	return s
}

func (s *fakeSongStore) Get(ctx context.Context, id domain.SongID) (domain.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.Song{}, s.err
	}
	song, ok := s.songs[id]
	if !ok {
		return domain.Song{}, domain.ErrNotFound
	}
	return song, nil
}

func (s *fakeSongStore) IncrementCounter(ctx context.Context, id domain.SongID, counter domain.Counter) (domain.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.Song{}, s.err
	}
	song, ok := s.songs[id]
	if !ok {
		return domain.Song{}, domain.ErrNotFound
	}
	switch counter {
	case domain.CounterDownloads:
		song.Downloads++
	default:
		song.Plays++
	}
	s.songs[id] = song
	return song, nil
}

type fakeCollaboratorStore struct {
	collabs []domain.Collaborator
	err     error
}

func (s *fakeCollaboratorStore) ListBySong(ctx context.Context, id domain.SongID) ([]domain.Collaborator, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.collabs, nil
}

type fakeStatsStore struct {
	mu     sync.Mutex
	calls  [][]domain.UserID
	counts map[domain.UserID]int
	err    error
}

func (s *fakeStatsStore) IncrementTotals(ctx context.Context, users []domain.UserID, counter domain.Counter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.counts == nil {
		s.counts = make(map[domain.UserID]int)
	}
	s.calls = append(s.calls, users)
	for _, u := range users {
		s.counts[u]++
	}
	return nil
}

func TestIncrementUsagePlays(t *testing.T) {
	songs := newFakeSongStore(domain.Song{ID: 1, UploaderID: 10, Plays: 41})
	uc := IncrementUsage{Songs: songs}

	value, err := uc.Execute(context.Background(), 1, domain.CounterPlays)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if value != 42 {
		t.Fatalf("plays = %d, want 42", value)
	}
}

func TestIncrementUsageConcurrentIncrementsDoNotLoseUpdates(t *testing.T) {
	songs := newFakeSongStore(domain.Song{ID: 1, UploaderID: 10, Downloads: 7})
	uc := IncrementUsage{Songs: songs}

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := uc.Execute(context.Background(), 1, domain.CounterDownloads); err != nil {
				t.Errorf("execute failed: %v", err)
			}
		}()
	}
	wg.Wait()

	song, _ := songs.Get(context.Background(), 1)
	if song.Downloads != 7+workers {
		t.Fatalf("downloads = %d, want %d", song.Downloads, 7+workers)
	}
}

func TestIncrementUsageCascadesToAllContributors(t *testing.T) {
	songs := newFakeSongStore(domain.Song{ID: 1, UploaderID: 10})
	collabs := &fakeCollaboratorStore{collabs: []domain.Collaborator{
		{SongID: 1, UserID: 20, Name: "A"},
		{SongID: 1, UserID: 30, Name: "B"},
		{SongID: 1, UserID: 10, Name: "Uploader Again"},
	}}
	stats := &fakeStatsStore{}
	uc := IncrementUsage{Songs: songs, Collaborators: collabs, Stats: stats}

	if _, err := uc.Execute(context.Background(), 1, domain.CounterDownloads); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if len(stats.calls) != 1 {
		t.Fatalf("expected one aggregate call, got %d", len(stats.calls))
	}
	got := stats.calls[0]
	if len(got) != 3 {
		t.Fatalf("expected 3 deduped users, got %v", got)
	}
	if got[0] != 10 {
		t.Fatalf("uploader must come first, got %v", got)
	}
}

func TestIncrementUsageAggregateFailureIsSwallowed(t *testing.T) {
	songs := newFakeSongStore(domain.Song{ID: 1, UploaderID: 10, Plays: 5})
	stats := &fakeStatsStore{err: errors.New("aggregate write failed")}
	uc := IncrementUsage{Songs: songs, Stats: stats}

	value, err := uc.Execute(context.Background(), 1, domain.CounterPlays)
	if err != nil {
		t.Fatalf("aggregate failure must not fail the increment: %v", err)
	}
	if value != 6 {
		t.Fatalf("plays = %d, want 6", value)
	}
}

func TestIncrementUsagePrimaryFailurePropagates(t *testing.T) {
	songs := newFakeSongStore()
	songs.err = errors.New("connection reset")
	uc := IncrementUsage{Songs: songs}

	_, err := uc.Execute(context.Background(), 1, domain.CounterPlays)
	if !errors.Is(err, ErrRepository) {
		t.Fatalf("err = %v, want ErrRepository", err)
	}
}

func TestIncrementUsageUnknownSong(t *testing.T) {
	uc := IncrementUsage{Songs: newFakeSongStore()}
	_, err := uc.Execute(context.Background(), 99, domain.CounterPlays)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestIncrementUsageRejectsUnknownCounter(t *testing.T) {
	uc := IncrementUsage{Songs: newFakeSongStore(domain.Song{ID: 1})}
	_, err := uc.Execute(context.Background(), 1, domain.Counter("likes"))
	if !errors.Is(err, ErrInvalidCounter) {
		t.Fatalf("err = %v, want ErrInvalidCounter", err)
	}
}
