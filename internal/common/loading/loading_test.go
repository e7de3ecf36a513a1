package loading

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingIndicator struct {
	mu    sync.Mutex
	shows int
	hides int
}

func (r *recordingIndicator) Show() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shows++
}

func (r *recordingIndicator) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hides++
}

func (r *recordingIndicator) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shows, r.hides
}

func TestCoordinatorShowsOnFirstBeginOnly(t *testing.T) {
	ind := &recordingIndicator{}
	c := NewCoordinator(ind)

	c.Begin()
	c.Begin()
	c.Begin()

	shows, hides := ind.counts()
	assert.Equal(t, 1, shows)
	assert.Equal(t, 0, hides)
	assert.Equal(t, 3, c.Count())
	assert.True(t, c.Visible())

	c.End()
	c.End()
	_, hides = ind.counts()
	assert.Equal(t, 0, hides, "indicator must stay visible while requests remain")

	c.End()
	shows, hides = ind.counts()
	assert.Equal(t, 1, shows)
	assert.Equal(t, 1, hides)
	assert.False(t, c.Visible())
}

func TestCoordinatorClampsAtZero(t *testing.T) {
	ind := &recordingIndicator{}
	c := NewCoordinator(ind)

	c.End()
	c.End()
	assert.Equal(t, 0, c.Count())

	c.Begin()
	assert.Equal(t, 1, c.Count())
	shows, _ := ind.counts()
	assert.Equal(t, 1, shows, "clamped End calls must not eat the next Show")

	c.End()
	assert.Equal(t, 0, c.Count())
	_, hides := ind.counts()
	assert.Equal(t, 1, hides)
}

func TestCoordinatorConcurrentPairing(t *testing.T) {
	ind := &recordingIndicator{}
	c := NewCoordinator(ind)

	const workers = 64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Begin()
				c.End()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, c.Count())
	assert.False(t, c.Visible())
	shows, hides := ind.counts()
	assert.Equal(t, shows, hides, "every Show must have a matching Hide once idle")
}

func TestNilIndicatorIsSafe(t *testing.T) {
	c := NewCoordinator(nil)
	c.Begin()
	c.End()
	assert.Equal(t, 0, c.Count())
}
