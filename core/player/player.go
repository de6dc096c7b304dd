package player

import "melofm/model"

// LoopMode 循环模式
type LoopMode int

const (
	LoopOff LoopMode = iota
	LoopOne
	LoopAll
)

// Next cycles off → one → all → off.
func (m LoopMode) Next() LoopMode {
	switch m {
	case LoopOff:
		return LoopOne
	case LoopOne:
		return LoopAll
	default:
		return LoopOff
	}
}

func (m LoopMode) String() string {
	switch m {
	case LoopOne:
		return "one"
	case LoopAll:
		return "all"
	default:
		return "off"
	}
}

// Status 播放状态
type Status int

const (
	StatusEmpty Status = iota
	StatusPaused
	StatusPlaying
)

func (s Status) String() string {
	switch s {
	case StatusPaused:
		return "paused"
	case StatusPlaying:
		return "playing"
	default:
		return "empty"
	}
}

// State is a read-only snapshot of the controller, as pushed to the UI.
type State struct {
	Status       string        `json:"status"`
	Track        *model.Track  `json:"track,omitempty"`
	Queue        []model.Track `json:"queue"`
	CurrentIndex int           `json:"currentIndex"`
	Position     float64       `json:"position"`
	Duration     float64       `json:"duration"`
	Volume       float64       `json:"volume"`
	LoopMode     string        `json:"loopMode"`
	Shuffle      bool          `json:"shuffle"`
}

// EventType identifies an audio backend event.
type EventType int

const (
	// EventReady fires once the backend knows the real duration. Until then
	// the controller's position/duration are best-effort.
	EventReady EventType = iota
	// EventTime is a periodic position update.
	EventTime
	// EventEnded fires when the current track plays to its end.
	EventEnded
)

// Event is one audio backend notification.
type Event struct {
	Type     EventType
	Position float64
	Duration float64
}

// Backend is the audio element abstraction the controller drives. Load
// starts playback of a URL; the backend reports progress asynchronously
// through the event callback it was constructed with.
type Backend interface {
	Load(url string, startAt, volume float64) error
	Pause() error
	Resume() error
	Seek(seconds float64) error
	SetVolume(volume float64) error
	Stop() error
}
