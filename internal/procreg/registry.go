// Package procreg tracks the OS processes spawned for download jobs so
// they can be signaled later. Entries are a pure lookup table; the
// registry never owns or reaps the processes themselves.
package procreg

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry maps job ids to OS process ids.
type Registry struct {
	mu        sync.RWMutex
	processes map[string]int
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{processes: make(map[string]int)}
}

// Register records the process id spawned for a job.
func (r *Registry) Register(jobID string, pid int) {
	r.mu.Lock()
	r.processes[jobID] = pid
	r.mu.Unlock()
	logrus.WithFields(logrus.Fields{"job": jobID, "pid": pid}).Debug("registered process")
}

// Unregister removes the entry for a job, if any.
func (r *Registry) Unregister(jobID string) {
	r.mu.Lock()
	pid, ok := r.processes[jobID]
	delete(r.processes, jobID)
	r.mu.Unlock()
	if ok {
		logrus.WithFields(logrus.Fields{"job": jobID, "pid": pid}).Debug("unregistered process")
	}
}

// PID returns the registered process id for a job.
func (r *Registry) PID(jobID string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pid, ok := r.processes[jobID]
	return pid, ok
}

// Kill delivers a best-effort termination signal to the process registered
// for the job and unregisters it. There is no acknowledgement handshake;
// the caller must treat subsequent process output as already cancelled.
// A missing entry returns false and is not an error.
func (r *Registry) Kill(jobID string) bool {
	r.mu.RLock()
	pid, ok := r.processes[jobID]
	r.mu.RUnlock()
	if !ok {
		logrus.WithField("job", jobID).Warn("no process registered")
		return false
	}

	logrus.WithFields(logrus.Fields{"job": jobID, "pid": pid}).Info("killing process")
	killed := killProcess(pid)
	r.Unregister(jobID)
	return killed
}
