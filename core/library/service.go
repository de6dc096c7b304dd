package library

import (
	"context"
	"sync"

	"melofm/logger"
	"melofm/model"

	"golang.org/x/sync/singleflight"
)

// API is the slice of the gateway the library consumes.
type API interface {
	Songs(ctx context.Context) ([]model.Track, error)
	Trending(ctx context.Context, limit int) ([]model.Track, error)
	NewReleases(ctx context.Context, limit int) ([]model.Track, error)
	Playlists(ctx context.Context) ([]model.Playlist, error)
	CreatePlaylist(ctx context.Context, req *model.CreatePlaylistRequest) (*model.Playlist, error)
	AddSongToPlaylist(ctx context.Context, playlistID, songID string) (*model.Playlist, error)
	RemoveSongFromPlaylist(ctx context.Context, playlistID, songID string) (*model.Playlist, error)
}

// Service implements like/unlike and the home feed. "Liked Songs" is a
// regular playlist with a reserved name; liking is add/remove against it.
type Service struct {
	api   API
	group singleflight.Group

	mu              sync.RWMutex
	likedPlaylistID string
	likedSongIDs    map[string]bool
	onChange        func()
}

// NewService creates the library service. onChange fires when the liked set
// changes and may be nil.
func NewService(api API, onChange func()) *Service {
	if onChange == nil {
		onChange = func() {}
	}
	return &Service{
		api:          api,
		likedSongIDs: make(map[string]bool),
		onChange:     onChange,
	}
}

// GetOrCreateLikedPlaylist resolves the reserved playlist's id, creating it
// on first use. Concurrent callers share one lookup/create flight, so two
// rapid first likes cannot create two playlists.
func (s *Service) GetOrCreateLikedPlaylist(ctx context.Context) (string, error) {
	s.mu.RLock()
	if id := s.likedPlaylistID; id != "" {
		s.mu.RUnlock()
		return id, nil
	}
	s.mu.RUnlock()

	id, err, _ := s.group.Do("liked-playlist", func() (interface{}, error) {
		playlists, err := s.api.Playlists(ctx)
		if err != nil {
			return "", err
		}
		for i := range playlists {
			if playlists[i].Name == model.LikedPlaylistName {
				s.adopt(&playlists[i])
				return playlists[i].Key(), nil
			}
		}

		created, err := s.api.CreatePlaylist(ctx, &model.CreatePlaylistRequest{
			Name:     model.LikedPlaylistName,
			IsPublic: false,
		})
		if err != nil {
			return "", err
		}
		s.adopt(created)
		return created.Key(), nil
	})
	if err != nil {
		return "", err
	}
	return id.(string), nil
}

// adopt caches the liked playlist and rebuilds the liked set from it.
func (s *Service) adopt(p *model.Playlist) {
	s.mu.Lock()
	s.likedPlaylistID = p.Key()
	s.likedSongIDs = make(map[string]bool, len(p.Songs))
	for _, song := range p.Songs {
		s.likedSongIDs[song.ID] = true
	}
	s.mu.Unlock()
	s.onChange()
}

// ToggleLike likes or unlikes a song. Two rapid toggles can race on the
// backend; the last response is authoritative and the local liked set is
// rebuilt from it, not from the request we happened to send.
func (s *Service) ToggleLike(ctx context.Context, songID string) (liked bool, err error) {
	playlistID, err := s.GetOrCreateLikedPlaylist(ctx)
	if err != nil {
		return false, err
	}

	s.mu.RLock()
	currentlyLiked := s.likedSongIDs[songID]
	s.mu.RUnlock()

	var updated *model.Playlist
	if currentlyLiked {
		updated, err = s.api.RemoveSongFromPlaylist(ctx, playlistID, songID)
	} else {
		updated, err = s.api.AddSongToPlaylist(ctx, playlistID, songID)
	}
	if err != nil {
		return currentlyLiked, err
	}

	s.adopt(updated)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.likedSongIDs[songID], nil
}

// IsLiked reports whether a song is in the liked set.
func (s *Service) IsLiked(songID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.likedSongIDs[songID]
}

// LikedSongIDs returns a copy of the liked set.
func (s *Service) LikedSongIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.likedSongIDs))
	for id := range s.likedSongIDs {
		out = append(out, id)
	}
	return out
}

// Home is the home page payload.
type Home struct {
	Trending    []model.Track    `json:"trending"`
	NewReleases []model.Track    `json:"newReleases"`
	Playlists   []model.Playlist `json:"playlists"`
}

// LoadHome fetches the home sections in parallel. One failing section
// degrades to empty without blocking or failing the others.
func (s *Service) LoadHome(ctx context.Context, limit int) *Home {
	home := &Home{
		Trending:    []model.Track{},
		NewReleases: []model.Track{},
		Playlists:   []model.Playlist{},
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		if items, err := s.api.Trending(ctx, limit); err != nil {
			logger.Warn("trending section failed", logger.ErrorField(err))
		} else {
			home.Trending = items
		}
	}()
	go func() {
		defer wg.Done()
		if items, err := s.api.NewReleases(ctx, limit); err != nil {
			logger.Warn("new releases section failed", logger.ErrorField(err))
		} else {
			home.NewReleases = items
		}
	}()
	go func() {
		defer wg.Done()
		if items, err := s.api.Playlists(ctx); err != nil {
			logger.Warn("playlists section failed", logger.ErrorField(err))
		} else {
			home.Playlists = items
		}
	}()

	wg.Wait()
	return home
}
