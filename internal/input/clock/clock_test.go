package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeAdvance(t *testing.T) {
	c := NewFake(epoch)
	var order []string

	c.AfterFunc(300*time.Millisecond, func() { order = append(order, "b") })
	c.AfterFunc(100*time.Millisecond, func() { order = append(order, "a") })
	c.AfterFunc(300*time.Millisecond, func() { order = append(order, "c") })
	require.Equal(t, 3, c.Pending())

	c.Advance(99 * time.Millisecond)
	assert.Empty(t, order)

	c.Advance(time.Millisecond)
	assert.Equal(t, []string{"a"}, order)

	c.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, c.Pending())
	assert.Equal(t, epoch.Add(1100*time.Millisecond), c.Now())
}

func TestFakeCallbackSeesDeadline(t *testing.T) {
	c := NewFake(epoch)
	var at time.Time
	c.AfterFunc(time.Second, func() { at = c.Now() })
	c.Advance(5 * time.Second)
	assert.Equal(t, epoch.Add(time.Second), at)
}

func TestFakeStop(t *testing.T) {
	c := NewFake(epoch)
	fired := false
	tm := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())
	c.Advance(2 * time.Second)
	assert.False(t, fired)

	tm = c.AfterFunc(time.Second, func() { fired = true })
	c.Advance(time.Second)
	assert.True(t, fired)
	assert.False(t, tm.Stop(), "already fired")
}

func TestFakeRescheduleInCallback(t *testing.T) {
	c := NewFake(epoch)
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			c.AfterFunc(time.Second, tick)
		}
	}
	c.AfterFunc(time.Second, tick)

	c.Advance(10 * time.Second)
	assert.Equal(t, 3, count)
}

func TestReal(t *testing.T) {
	var fired atomic.Bool
	done := make(chan struct{})
	Real().AfterFunc(time.Millisecond, func() {
		fired.Store(true)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timer did not fire")
	}
	assert.True(t, fired.Load())
	assert.False(t, Real().Now().IsZero())
}
