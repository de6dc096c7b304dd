package feed

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefresherCoalescesBurst(t *testing.T) {
	var calls int32
	r := NewRefresher(30*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
	})

	// 一波密集触发只换来一次refetch
	for i := 0; i < 10; i++ {
		r.Trigger()
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRefresherFiresAgainAfterQuiet(t *testing.T) {
	var calls int32
	r := NewRefresher(20*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
	})

	r.Trigger()
	time.Sleep(100 * time.Millisecond)
	r.Trigger()
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
