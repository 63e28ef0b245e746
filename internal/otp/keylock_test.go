package otp

import (
	"sync"
	"testing"
)

func TestKeyLock_SerialisesSameKey(t *testing.T) {
	k := newKeyLock()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("same")
			counter++
			unlock()
		}()
	}
	wg.Wait()
	if counter != 100 {
		t.Fatalf("counter=%d want 100", counter)
	}
	if k.size() != 0 {
		t.Fatalf("entries left=%d", k.size())
	}
}

func TestKeyLock_DistinctKeysDoNotBlock(t *testing.T) {
	k := newKeyLock()
	unlockA := k.Lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := k.Lock("b")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}
