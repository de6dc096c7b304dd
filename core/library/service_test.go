package library

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"melofm/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu        sync.Mutex
	playlists []model.Playlist
	creates   int

	trendingErr   error
	newReleaseErr error
	playlistsErr  error
}

func (f *fakeAPI) Songs(ctx context.Context) ([]model.Track, error) { return nil, nil }

func (f *fakeAPI) Trending(ctx context.Context, limit int) ([]model.Track, error) {
	if f.trendingErr != nil {
		return nil, f.trendingErr
	}
	return []model.Track{{ID: "t1"}}, nil
}

func (f *fakeAPI) NewReleases(ctx context.Context, limit int) ([]model.Track, error) {
	if f.newReleaseErr != nil {
		return nil, f.newReleaseErr
	}
	return []model.Track{{ID: "r1"}}, nil
}

func (f *fakeAPI) Playlists(ctx context.Context) ([]model.Playlist, error) {
	if f.playlistsErr != nil {
		return nil, f.playlistsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	// 模拟一点网络延迟，放大并发窗口
	time.Sleep(5 * time.Millisecond)
	out := make([]model.Playlist, len(f.playlists))
	copy(out, f.playlists)
	return out, nil
}

func (f *fakeAPI) CreatePlaylist(ctx context.Context, req *model.CreatePlaylistRequest) (*model.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	p := model.Playlist{ID: fmt.Sprintf("pl%d", f.creates), Name: req.Name}
	f.playlists = append(f.playlists, p)
	return &p, nil
}

func (f *fakeAPI) AddSongToPlaylist(ctx context.Context, playlistID, songID string) (*model.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.playlists {
		if f.playlists[i].ID == playlistID {
			f.playlists[i].Songs = append(f.playlists[i].Songs, model.Track{ID: songID})
			out := f.playlists[i]
			return &out, nil
		}
	}
	return nil, fmt.Errorf("playlist %s not found", playlistID)
}

func (f *fakeAPI) RemoveSongFromPlaylist(ctx context.Context, playlistID, songID string) (*model.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.playlists {
		if f.playlists[i].ID != playlistID {
			continue
		}
		kept := f.playlists[i].Songs[:0]
		for _, s := range f.playlists[i].Songs {
			if s.ID != songID {
				kept = append(kept, s)
			}
		}
		f.playlists[i].Songs = kept
		out := f.playlists[i]
		return &out, nil
	}
	return nil, fmt.Errorf("playlist %s not found", playlistID)
}

func TestGetOrCreateLikedPlaylistConcurrent(t *testing.T) {
	api := &fakeAPI{}
	s := NewService(api, nil)

	// 两次几乎同时的首次点赞只能建一个歌单
	var wg sync.WaitGroup
	ids := make([]string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := s.GetOrCreateLikedPlaylist(context.Background())
			require.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, api.creates, "concurrent callers must share one create")
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestGetOrCreateLikedPlaylistFindsExisting(t *testing.T) {
	api := &fakeAPI{playlists: []model.Playlist{
		{ID: "other", Name: "Roadtrip"},
		{ID: "liked", Name: model.LikedPlaylistName, Songs: []model.Track{{ID: "s1"}}},
	}}
	s := NewService(api, nil)

	id, err := s.GetOrCreateLikedPlaylist(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "liked", id)
	assert.Zero(t, api.creates)
	assert.True(t, s.IsLiked("s1"), "liked set rebuilt from the found playlist")
}

func TestToggleLikeReconcilesFromResponse(t *testing.T) {
	api := &fakeAPI{}
	s := NewService(api, nil)

	liked, err := s.ToggleLike(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, s.IsLiked("s1"))

	liked, err = s.ToggleLike(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.False(t, s.IsLiked("s1"))
}

func TestToggleLikeKeepsStateOnError(t *testing.T) {
	api := &fakeAPI{playlists: []model.Playlist{
		{ID: "liked", Name: model.LikedPlaylistName, Songs: []model.Track{{ID: "s1"}}},
	}}
	s := NewService(api, nil)
	_, err := s.GetOrCreateLikedPlaylist(context.Background())
	require.NoError(t, err)

	// 后端失败时本地点赞集不动
	api.mu.Lock()
	api.playlists = nil
	api.mu.Unlock()
	liked, err := s.ToggleLike(context.Background(), "s1")

	assert.Error(t, err)
	assert.True(t, liked, "error reports the unchanged state")
	assert.True(t, s.IsLiked("s1"))
}

func TestLoadHomeDegradesPerSection(t *testing.T) {
	api := &fakeAPI{
		trendingErr: fmt.Errorf("backend down"),
		playlists:   []model.Playlist{{ID: "p1", Name: "Mix"}},
	}
	s := NewService(api, nil)

	home := s.LoadHome(context.Background(), 10)

	require.NotNil(t, home)
	assert.Empty(t, home.Trending, "failed section degrades to empty")
	require.Len(t, home.NewReleases, 1)
	assert.Len(t, home.Playlists, 1)
}
