package player

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"melofm/logger"
	"melofm/model"
)

// Controller owns the play queue and transport state. It is the single
// authoritative owner of playback state: every consumer reads snapshots and
// mutates through the verb set, never through direct field access. All verbs
// are synchronous from the caller's perspective; the backend's progress
// arrives asynchronously via HandleEvent.
//
// Invariant: current is -1 with an empty queue, otherwise a valid index.
type Controller struct {
	mu      sync.Mutex
	backend Backend

	queue   []model.Track
	current int
	played  map[int]bool // shuffle模式下已播放的下标

	status   Status
	loop     LoopMode
	shuffle  bool
	volume   float64
	position float64
	duration float64

	rng      *rand.Rand
	onChange func(State)
}

// NewController creates a controller around an audio backend. onChange fires
// after every state mutation and may be nil.
func NewController(backend Backend, onChange func(State)) *Controller {
	if onChange == nil {
		onChange = func(State) {}
	}
	return &Controller{
		backend:  backend,
		current:  -1,
		played:   make(map[int]bool),
		volume:   1.0,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		onChange: onChange,
	}
}

// PlaySong replaces the queue with list and starts playback at index.
func (c *Controller) PlaySong(track model.Track, index int, list []model.Track) error {
	c.mu.Lock()
	if index < 0 || index >= len(list) {
		c.mu.Unlock()
		return fmt.Errorf("queue index %d out of range (%d tracks)", index, len(list))
	}

	c.queue = make([]model.Track, len(list))
	copy(c.queue, list)
	// 调用方给出的track以队列里的为准
	c.queue[index] = track
	c.current = index
	c.played = map[int]bool{index: true}
	err := c.startCurrentLocked()
	state := c.snapshotLocked()
	c.mu.Unlock()

	c.onChange(state)
	return err
}

// PlayNext advances the queue. A no-op at the end unless loopMode is all.
func (c *Controller) PlayNext() error {
	return c.advance(false)
}

// PlayPrev steps back. A no-op at the start unless loopMode is all.
func (c *Controller) PlayPrev() error {
	return c.advance(true)
}

func (c *Controller) advance(backwards bool) error {
	c.mu.Lock()
	var idx int
	if backwards {
		idx = c.prevIndexLocked()
	} else {
		idx = c.nextIndexLocked()
	}
	if idx < 0 {
		// 队列边界，保持现状
		c.mu.Unlock()
		return nil
	}
	c.current = idx
	c.played[idx] = true
	err := c.startCurrentLocked()
	state := c.snapshotLocked()
	c.mu.Unlock()

	c.onChange(state)
	return err
}

// PauseSong pauses playback.
func (c *Controller) PauseSong() error {
	c.mu.Lock()
	if c.status != StatusPlaying {
		c.mu.Unlock()
		return nil
	}
	err := c.backend.Pause()
	if err == nil {
		c.status = StatusPaused
	}
	state := c.snapshotLocked()
	c.mu.Unlock()

	c.onChange(state)
	return err
}

// ResumeSong resumes a paused track.
func (c *Controller) ResumeSong() error {
	c.mu.Lock()
	if c.status != StatusPaused || c.current < 0 {
		c.mu.Unlock()
		return nil
	}
	err := c.backend.Resume()
	if err == nil {
		c.status = StatusPlaying
	}
	state := c.snapshotLocked()
	c.mu.Unlock()

	c.onChange(state)
	return err
}

// SeekTo maps percent (0–100) onto the track duration. The reported position
// is provisional until the next backend time event.
func (c *Controller) SeekTo(percent float64) error {
	c.mu.Lock()
	if c.current < 0 {
		c.mu.Unlock()
		return nil
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	target := percent / 100 * c.duration
	err := c.backend.Seek(target)
	if err == nil {
		c.position = target
	}
	state := c.snapshotLocked()
	c.mu.Unlock()

	c.onChange(state)
	return err
}

// CycleLoopMode advances the loop mode: off → one → all → off.
func (c *Controller) CycleLoopMode() LoopMode {
	c.mu.Lock()
	c.loop = c.loop.Next()
	mode := c.loop
	state := c.snapshotLocked()
	c.mu.Unlock()

	c.onChange(state)
	return mode
}

// ToggleShuffle flips shuffle and resets the played set so the next pick
// draws from the whole queue again.
func (c *Controller) ToggleShuffle() bool {
	c.mu.Lock()
	c.shuffle = !c.shuffle
	c.played = make(map[int]bool)
	if c.current >= 0 {
		c.played[c.current] = true
	}
	on := c.shuffle
	state := c.snapshotLocked()
	c.mu.Unlock()

	c.onChange(state)
	return on
}

// SetVolume sets playback volume, clamped to 0..1. Volume persists across
// track changes.
func (c *Controller) SetVolume(v float64) error {
	c.mu.Lock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.volume = v
	var err error
	if c.current >= 0 {
		err = c.backend.SetVolume(v)
	}
	state := c.snapshotLocked()
	c.mu.Unlock()

	c.onChange(state)
	return err
}

// HandleEvent consumes one backend event. Called from the backend goroutine.
func (c *Controller) HandleEvent(ev Event) {
	c.mu.Lock()
	if c.current < 0 {
		c.mu.Unlock()
		return
	}

	switch ev.Type {
	case EventReady:
		if ev.Duration > 0 {
			c.duration = ev.Duration
		}
	case EventTime:
		c.position = ev.Position
	case EventEnded:
		c.handleEndedLocked()
	}
	state := c.snapshotLocked()
	c.mu.Unlock()

	c.onChange(state)
}

func (c *Controller) handleEndedLocked() {
	if c.loop == LoopOne {
		// 单曲循环：重新进入同一首，不推进队列下标
		if err := c.startCurrentLocked(); err != nil {
			logger.Warn("loop-one restart failed", logger.ErrorField(err))
		}
		return
	}

	idx := c.nextIndexLocked()
	if idx < 0 {
		// 队尾且不循环：停在已加载暂停态
		c.status = StatusPaused
		c.position = c.duration
		return
	}
	c.current = idx
	c.played[idx] = true
	if err := c.startCurrentLocked(); err != nil {
		logger.Warn("auto-advance failed", logger.ErrorField(err))
	}
}

// startCurrentLocked loads and plays the current track. Position resets;
// volume, loop and shuffle persist.
func (c *Controller) startCurrentLocked() error {
	track := c.queue[c.current]
	c.position = 0
	c.duration = track.DurationSeconds

	if err := c.backend.Load(track.AudioURL, 0, c.volume); err != nil {
		c.status = StatusPaused
		return fmt.Errorf("failed to start track %s: %w", track.ID, err)
	}
	c.status = StatusPlaying
	return nil
}

func (c *Controller) nextIndexLocked() int {
	n := len(c.queue)
	if n == 0 || c.current < 0 {
		return -1
	}

	if c.shuffle {
		unplayed := make([]int, 0, n)
		for i := 0; i < n; i++ {
			if !c.played[i] {
				unplayed = append(unplayed, i)
			}
		}
		if len(unplayed) == 0 {
			if c.loop != LoopAll {
				return -1
			}
			// 列表循环：重置已播放集合再抽
			c.played = make(map[int]bool)
			for i := 0; i < n; i++ {
				if i != c.current {
					unplayed = append(unplayed, i)
				}
			}
			if len(unplayed) == 0 {
				return c.current
			}
		}
		return unplayed[c.rng.Intn(len(unplayed))]
	}

	if c.current+1 < n {
		return c.current + 1
	}
	if c.loop == LoopAll {
		return 0
	}
	return -1
}

func (c *Controller) prevIndexLocked() int {
	if len(c.queue) == 0 || c.current < 0 {
		return -1
	}
	if c.current > 0 {
		return c.current - 1
	}
	if c.loop == LoopAll {
		return len(c.queue) - 1
	}
	return -1
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	state := State{
		Status:       c.status.String(),
		CurrentIndex: c.current,
		Position:     c.position,
		Duration:     c.duration,
		Volume:       c.volume,
		LoopMode:     c.loop.String(),
		Shuffle:      c.shuffle,
	}
	state.Queue = make([]model.Track, len(c.queue))
	copy(state.Queue, c.queue)
	if c.current >= 0 && c.current < len(c.queue) {
		track := c.queue[c.current]
		state.Track = &track
	}
	return state
}
