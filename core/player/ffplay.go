package player

import (
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"melofm/logger"
)

// FFplayBackend drives playback through an ffplay child process. Pause and
// seek restart the process at the wanted offset; position is estimated from
// wall time and reported through periodic time events. Events are always
// emitted from the backend's own goroutines, never from inside a verb call.
type FFplayBackend struct {
	mu   sync.Mutex
	path string
	emit func(Event)

	cmd       *exec.Cmd
	url       string
	offset    float64 // 当前进程的起播偏移（秒）
	startedAt time.Time
	volume    float64
	playing   bool
	gen       int // 进程代次，旧进程退出时据此丢弃其事件
}

// NewFFplayBackend creates a backend spawning the given ffplay binary.
func NewFFplayBackend(path string, emit func(Event)) *FFplayBackend {
	if emit == nil {
		emit = func(Event) {}
	}
	return &FFplayBackend{path: path, emit: emit, volume: 1.0}
}

// Load starts playback of url at startAt seconds.
func (b *FFplayBackend) Load(url string, startAt, volume float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopLocked()
	b.url = url
	b.volume = volume
	return b.startLocked(startAt)
}

// Pause kills the player process, remembering the estimated position.
func (b *FFplayBackend) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.playing {
		return nil
	}
	b.offset = b.positionLocked()
	b.stopLocked()
	return nil
}

// Resume restarts playback from the paused position.
func (b *FFplayBackend) Resume() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.playing || b.url == "" {
		return nil
	}
	return b.startLocked(b.offset)
}

// Seek restarts playback at the given position.
func (b *FFplayBackend) Seek(seconds float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.url == "" {
		return nil
	}
	if b.playing {
		b.stopLocked()
		return b.startLocked(seconds)
	}
	b.offset = seconds
	return nil
}

// SetVolume applies on the next (re)start; ffplay has no live volume control.
func (b *FFplayBackend) SetVolume(volume float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.volume = volume
	return nil
}

// Stop kills the player process and forgets the loaded URL.
func (b *FFplayBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopLocked()
	b.url = ""
	b.offset = 0
	return nil
}

func (b *FFplayBackend) startLocked(startAt float64) error {
	args := []string{
		"-nodisp",
		"-autoexit",
		"-loglevel", "quiet",
		"-volume", strconv.Itoa(int(b.volume * 100)),
	}
	if startAt > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.2f", startAt))
	}
	args = append(args, b.url)

	cmd := exec.Command(b.path, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffplay: %w", err)
	}

	b.cmd = cmd
	b.offset = startAt
	b.startedAt = time.Now()
	b.playing = true
	b.gen++
	gen := b.gen

	go b.wait(cmd, gen)
	go b.tick(gen)
	return nil
}

// wait reaps the child and reports a natural end of track. A process killed
// by pause/seek/stop belongs to an older generation and stays silent.
func (b *FFplayBackend) wait(cmd *exec.Cmd, gen int) {
	err := cmd.Wait()

	b.mu.Lock()
	if b.gen != gen {
		b.mu.Unlock()
		return
	}
	b.playing = false
	pos := b.positionLocked()
	b.mu.Unlock()

	if err != nil {
		logger.Debug("ffplay exited", logger.ErrorField(err))
		return
	}
	b.emit(Event{Type: EventEnded, Position: pos})
}

func (b *FFplayBackend) tick(gen int) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		b.mu.Lock()
		if b.gen != gen || !b.playing {
			b.mu.Unlock()
			return
		}
		pos := b.positionLocked()
		b.mu.Unlock()

		b.emit(Event{Type: EventTime, Position: pos})
	}
}

func (b *FFplayBackend) positionLocked() float64 {
	if !b.playing {
		return b.offset
	}
	return b.offset + time.Since(b.startedAt).Seconds()
}

func (b *FFplayBackend) stopLocked() {
	if b.cmd != nil && b.cmd.Process != nil {
		_ = b.cmd.Process.Kill()
	}
	b.cmd = nil
	b.playing = false
	b.gen++ // 使旧进程的wait/tick失效
}
