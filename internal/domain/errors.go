package domain

import "errors"

var (
	// ErrInvalidURL is returned when a submitted URL fails basic validation.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrDuplicateJob is returned when a job id already exists in either the
	// pending sequence or the active set.
	ErrDuplicateJob = errors.New("download already in queue")

	// ErrJobNotFound is returned when an id is in neither set.
	ErrJobNotFound = errors.New("download not found")

	// ErrJobNotPaused is returned by resume for a job that is not currently
	// active with status paused.
	ErrJobNotPaused = errors.New("download not active or not paused")

	// ErrJobNotFailed is returned by retry for a job that is not failed.
	ErrJobNotFailed = errors.New("download is not in failed state")

	// ErrSpawnFailed is returned when the external process cannot be started.
	ErrSpawnFailed = errors.New("failed to spawn external process")

	// ErrProcessFailed is returned when the external process exits non-zero;
	// wrapping errors carry the captured error text.
	ErrProcessFailed = errors.New("external process failed")

	// ErrOutputNotFound is returned when the process exited cleanly but no
	// output artifact could be resolved.
	ErrOutputNotFound = errors.New("could not find downloaded file")

	// ErrRegistryUnavailable is returned when an executor is constructed
	// without a process registry.
	ErrRegistryUnavailable = errors.New("process registry not initialized")
)
