package player

import (
	"testing"

	"melofm/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records verb calls and never emits events on its own; tests
// feed events through HandleEvent directly.
type fakeBackend struct {
	loads   []loadCall
	seeks   []float64
	volumes []float64
	pauses  int
	resumes int
}

type loadCall struct {
	url    string
	volume float64
}

func (b *fakeBackend) Load(url string, startAt, volume float64) error {
	b.loads = append(b.loads, loadCall{url: url, volume: volume})
	return nil
}
func (b *fakeBackend) Pause() error           { b.pauses++; return nil }
func (b *fakeBackend) Resume() error          { b.resumes++; return nil }
func (b *fakeBackend) Seek(pos float64) error { b.seeks = append(b.seeks, pos); return nil }
func (b *fakeBackend) SetVolume(v float64) error {
	b.volumes = append(b.volumes, v)
	return nil
}
func (b *fakeBackend) Stop() error { return nil }

func testQueue(n int) []model.Track {
	tracks := make([]model.Track, n)
	for i := range tracks {
		tracks[i] = model.Track{
			ID:              string(rune('a' + i)),
			AudioURL:        "http://stream/" + string(rune('a'+i)),
			DurationSeconds: 180,
		}
	}
	return tracks
}

func TestLoopModeCycle(t *testing.T) {
	c := NewController(&fakeBackend{}, nil)

	assert.Equal(t, LoopOne, c.CycleLoopMode())
	assert.Equal(t, LoopAll, c.CycleLoopMode())
	assert.Equal(t, LoopOff, c.CycleLoopMode())
}

func TestPlaySongStartsAtIndex(t *testing.T) {
	backend := &fakeBackend{}
	c := NewController(backend, nil)
	queue := testQueue(3)

	require.NoError(t, c.PlaySong(queue[1], 1, queue))

	state := c.State()
	assert.Equal(t, "playing", state.Status)
	assert.Equal(t, 1, state.CurrentIndex)
	require.Len(t, backend.loads, 1)
	assert.Equal(t, queue[1].AudioURL, backend.loads[0].url)
}

func TestPlaySongRejectsBadIndex(t *testing.T) {
	c := NewController(&fakeBackend{}, nil)
	queue := testQueue(2)

	assert.Error(t, c.PlaySong(queue[0], 5, queue))
	assert.Equal(t, -1, c.State().CurrentIndex)
}

func TestLoopOneReplaysWithoutAdvancing(t *testing.T) {
	backend := &fakeBackend{}
	c := NewController(backend, nil)
	queue := testQueue(3)
	require.NoError(t, c.PlaySong(queue[0], 0, queue))
	c.CycleLoopMode() // one

	c.HandleEvent(Event{Type: EventEnded})

	state := c.State()
	assert.Equal(t, 0, state.CurrentIndex, "loop-one must not advance the queue")
	assert.Equal(t, "playing", state.Status)
	assert.Len(t, backend.loads, 2, "track restarted")
	assert.Equal(t, queue[0].AudioURL, backend.loads[1].url)
}

func TestEndOfQueueStopsWhenNotLooping(t *testing.T) {
	backend := &fakeBackend{}
	c := NewController(backend, nil)
	queue := testQueue(2)
	require.NoError(t, c.PlaySong(queue[1], 1, queue))

	c.HandleEvent(Event{Type: EventEnded})

	state := c.State()
	assert.Equal(t, "paused", state.Status)
	assert.Equal(t, 1, state.CurrentIndex)
	assert.Equal(t, state.Duration, state.Position, "position parks at the end")
	assert.Len(t, backend.loads, 1, "nothing restarted")
}

func TestLoopAllWrapsToStart(t *testing.T) {
	backend := &fakeBackend{}
	c := NewController(backend, nil)
	queue := testQueue(2)
	require.NoError(t, c.PlaySong(queue[1], 1, queue))
	c.CycleLoopMode() // one
	c.CycleLoopMode() // all

	c.HandleEvent(Event{Type: EventEnded})

	assert.Equal(t, 0, c.State().CurrentIndex)
	assert.Equal(t, "playing", c.State().Status)
}

func TestNextPrevBoundaries(t *testing.T) {
	backend := &fakeBackend{}
	c := NewController(backend, nil)
	queue := testQueue(2)
	require.NoError(t, c.PlaySong(queue[0], 0, queue))

	// 队首向前：无循环时不动
	require.NoError(t, c.PlayPrev())
	assert.Equal(t, 0, c.State().CurrentIndex)

	require.NoError(t, c.PlayNext())
	assert.Equal(t, 1, c.State().CurrentIndex)

	// 队尾向后：无循环时不动
	require.NoError(t, c.PlayNext())
	assert.Equal(t, 1, c.State().CurrentIndex)

	c.CycleLoopMode() // one
	c.CycleLoopMode() // all
	require.NoError(t, c.PlayNext())
	assert.Equal(t, 0, c.State().CurrentIndex, "loop-all wraps forward")

	require.NoError(t, c.PlayPrev())
	assert.Equal(t, 1, c.State().CurrentIndex, "loop-all wraps backward")
}

func TestSeekToMapsPercentOntoDuration(t *testing.T) {
	backend := &fakeBackend{}
	c := NewController(backend, nil)
	queue := testQueue(1)
	require.NoError(t, c.PlaySong(queue[0], 0, queue))
	c.HandleEvent(Event{Type: EventReady, Duration: 200})

	require.NoError(t, c.SeekTo(50))

	require.Len(t, backend.seeks, 1)
	assert.InDelta(t, 100, backend.seeks[0], 0.001)
	assert.InDelta(t, 100, c.State().Position, 0.001)

	// 越界百分比被钳制
	require.NoError(t, c.SeekTo(150))
	assert.InDelta(t, 200, backend.seeks[1], 0.001)
}

func TestShufflePlaysEveryTrackOnce(t *testing.T) {
	backend := &fakeBackend{}
	c := NewController(backend, nil)
	queue := testQueue(4)
	require.NoError(t, c.PlaySong(queue[0], 0, queue))
	c.ToggleShuffle()

	seen := map[int]bool{0: true}
	for i := 0; i < 3; i++ {
		c.HandleEvent(Event{Type: EventEnded})
		idx := c.State().CurrentIndex
		assert.False(t, seen[idx], "shuffle repeated index %d before exhausting the queue", idx)
		seen[idx] = true
	}
	assert.Len(t, seen, 4)

	// 全部放完且无循环：停止
	c.HandleEvent(Event{Type: EventEnded})
	assert.Equal(t, "paused", c.State().Status)
}

func TestVolumePersistsAcrossTracks(t *testing.T) {
	backend := &fakeBackend{}
	c := NewController(backend, nil)
	queue := testQueue(2)
	require.NoError(t, c.PlaySong(queue[0], 0, queue))

	require.NoError(t, c.SetVolume(0.4))
	require.NoError(t, c.PlayNext())

	require.Len(t, backend.loads, 2)
	assert.InDelta(t, 0.4, backend.loads[1].volume, 0.001)
}

func TestSetVolumeClamps(t *testing.T) {
	c := NewController(&fakeBackend{}, nil)

	require.NoError(t, c.SetVolume(1.7))
	assert.InDelta(t, 1.0, c.State().Volume, 0.001)

	require.NoError(t, c.SetVolume(-0.3))
	assert.InDelta(t, 0.0, c.State().Volume, 0.001)
}

func TestPauseResume(t *testing.T) {
	backend := &fakeBackend{}
	c := NewController(backend, nil)
	queue := testQueue(1)
	require.NoError(t, c.PlaySong(queue[0], 0, queue))

	require.NoError(t, c.PauseSong())
	assert.Equal(t, "paused", c.State().Status)

	// 重复暂停是幂等的
	require.NoError(t, c.PauseSong())
	assert.Equal(t, 1, backend.pauses)

	require.NoError(t, c.ResumeSong())
	assert.Equal(t, "playing", c.State().Status)
}

func TestOnChangeFiresWithSnapshot(t *testing.T) {
	var states []State
	backend := &fakeBackend{}
	c := NewController(backend, func(s State) { states = append(states, s) })
	queue := testQueue(1)

	require.NoError(t, c.PlaySong(queue[0], 0, queue))
	c.HandleEvent(Event{Type: EventTime, Position: 42})

	require.NotEmpty(t, states)
	last := states[len(states)-1]
	assert.InDelta(t, 42, last.Position, 0.001)
	require.NotNil(t, last.Track)
	assert.Equal(t, queue[0].ID, last.Track.ID)
}
