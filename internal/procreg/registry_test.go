package procreg

import (
	"sync"
	"testing"
)

func TestRegisterAndPID(t *testing.T) {
	r := New()

	if _, ok := r.PID("a"); ok {
		t.Error("empty registry must not resolve a pid")
	}

	r.Register("a", 1234)
	pid, ok := r.PID("a")
	if !ok || pid != 1234 {
		t.Errorf("PID() = %d, %v, want 1234, true", pid, ok)
	}

	// Re-registering overwrites, matching a restarted process.
	r.Register("a", 5678)
	if pid, _ := r.PID("a"); pid != 5678 {
		t.Errorf("PID() after re-register = %d, want 5678", pid)
	}
}

func TestUnregister(t *testing.T) {
	r := New()
	r.Register("a", 1234)
	r.Unregister("a")
	if _, ok := r.PID("a"); ok {
		t.Error("pid still resolvable after Unregister")
	}

	// Unregistering an absent id is a no-op.
	r.Unregister("missing")
}

func TestKillUnknownJob(t *testing.T) {
	r := New()
	if r.Kill("missing") {
		t.Error("Kill() of an unregistered job must report false")
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%26))
			r.Register(id, n)
			r.PID(id)
			r.Unregister(id)
		}(i)
	}
	wg.Wait()
}
