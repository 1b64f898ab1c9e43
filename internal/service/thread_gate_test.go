package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// latest is the newest turn handed out for key while any message holds it
func (g *threadGate) latest(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if e, ok := g.entries[key]; ok {
		return e.turn
	}
	return 0
}

func TestThreadGate_SerializesPerKey(t *testing.T) {
	g := newThreadGate()
	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, leave := g.enter("t1")
			defer leave()
			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, g.entries)
}

func TestThreadGate_Superseded(t *testing.T) {
	g := newThreadGate()
	turn, leave := g.enter("t1")
	assert.False(t, g.superseded("t1", turn))

	done := make(chan struct{})
	go func() {
		_, leave2 := g.enter("t1")
		leave2()
		close(done)
	}()
	require.Eventually(t, func() bool { return g.latest("t1") == turn+1 }, time.Second, time.Millisecond)
	assert.True(t, g.superseded("t1", turn))

	leave()
	<-done

	other, leaveOther := g.enter("t2")
	defer leaveOther()
	assert.Equal(t, uint64(1), other)
}
