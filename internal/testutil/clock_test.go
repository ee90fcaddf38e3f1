package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepClockAdvances(t *testing.T) {
	c := NewStepClock(time.Millisecond)

	first := c.Now()
	second := c.Now()

	assert.Equal(t, Epoch, first)
	assert.Equal(t, time.Millisecond, second.Sub(first))
}

func TestStepClockReset(t *testing.T) {
	c := NewStepClock(time.Second)
	c.Now()
	c.Now()
	c.Reset()

	assert.Equal(t, Epoch, c.Now())
}

func TestStepClockConcurrent(t *testing.T) {
	c := NewStepClock(time.Nanosecond)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, Epoch.Add(100*time.Nanosecond), c.Now())
}
