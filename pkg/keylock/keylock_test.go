package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMutexMapSerializesSameKey(t *testing.T) {
	m := NewMutexMap()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("trip-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	require.Equal(t, 50, counter)
	require.Equal(t, 0, m.Len())
}

func TestMutexMapIndependentKeys(t *testing.T) {
	m := NewMutexMap()
	unlockA := m.Lock("a")
	unlockB := m.Lock("b")
	require.Equal(t, 2, m.Len())

	unlockA()
	unlockA()
	require.Equal(t, 1, m.Len())
	unlockB()
	require.Equal(t, 0, m.Len())
}
