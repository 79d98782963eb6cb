package common

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_AccountLocker_Concurrent(t *testing.T) {
	locker := NewAccountLocker()

	counter := 0
	var wait sync.WaitGroup
	for i := 0; i < 100; i++ {
		wait.Add(1)
		go func() {
			defer wait.Done()
			locker.Lock("a")
			defer locker.Unlock("a")
			counter++
		}()
	}

	wait.Wait()
	require.Equal(t, 100, counter)
}

func Test_AccountLocker_LockMany(t *testing.T) {
	locker := NewAccountLocker()

	// Duplicates collapse; opposite orders must not deadlock.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			unlock := locker.LockMany("b", "a", "a")
			unlock()
		}
		done <- struct{}{}
	}()

	for i := 0; i < 100; i++ {
		unlock := locker.LockMany("a", "b")
		unlock()
	}
	<-done
}
