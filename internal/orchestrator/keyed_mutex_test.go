package orchestrator

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	t.Parallel()

	km := newKeyedMutex()
	id := uuid.New()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		current int
		max     int
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.lock(id)
			defer unlock()

			mu.Lock()
			current++
			if current > max {
				max = current
			}
			mu.Unlock()

			mu.Lock()
			current--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, max)
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	t.Parallel()

	km := newKeyedMutex()
	for i := 0; i < 10; i++ {
		unlock := km.lock(uuid.New())
		unlock()
	}

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.entries)
}

func TestKeyedMutexDistinctKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	km := newKeyedMutex()
	unlockA := km.lock(uuid.New())
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := km.lock(uuid.New())
		unlockB()
		close(done)
	}()

	<-done
}
