package domain

import "context"

// Executor is the driven port that runs one download job end to end: it
// builds the external command from the job's options, spawns and registers
// the process, streams progress samples, and returns the resolved artifact
// path. Implementations must close samples before returning.
type Executor interface {
	Run(ctx context.Context, job Job, samples chan<- ProgressSample) (string, error)
}

// Notifier is the outbound notification sink; it receives exactly one
// sample per job state change.
type Notifier interface {
	Publish(sample ProgressSample)
}

// ProcessRegistry tracks the OS process id behind each in-flight job so it
// can be signaled later. It is a lookup table, not an ownership relation.
type ProcessRegistry interface {
	Register(jobID string, pid int)
	Unregister(jobID string)
	// Kill delivers a best-effort termination signal to the registered
	// process and unregisters it. Absence of an entry is not an error.
	Kill(jobID string) bool
	PID(jobID string) (int, bool)
}

// LibraryStore is the driven port for the persistent library of completed
// downloads. Writes are fire-and-forget from the engine's point of view.
type LibraryStore interface {
	Add(ctx context.Context, video *LibraryVideo) error
	List(ctx context.Context) ([]LibraryVideo, error)
	Remove(ctx context.Context, id string) error
}
