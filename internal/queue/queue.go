// Package queue implements the download scheduler: it owns the pending
// sequence and the active set, enforces the concurrency bound, and drives
// admission into the executor. All mutation happens under one lock; the
// external process I/O runs outside it, one goroutine per admitted job.
package queue

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/BankkRoll/clipy/internal/domain"
)

// Queue schedules download jobs against a bounded set of active slots.
type Queue struct {
	mu            sync.RWMutex
	pending       []*domain.Job
	active        map[string]*domain.Job
	maxConcurrent int

	executor domain.Executor
	registry domain.ProcessRegistry
	notifier domain.Notifier
	library  domain.LibraryStore
}

// New creates a queue with the given concurrency bound. The library store
// and notifier may be nil; their absence only suppresses the side effect.
func New(executor domain.Executor, registry domain.ProcessRegistry, notifier domain.Notifier, library domain.LibraryStore, maxConcurrent int) *Queue {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Queue{
		active:        make(map[string]*domain.Job),
		maxConcurrent: maxConcurrent,
		executor:      executor,
		registry:      registry,
		notifier:      notifier,
		library:       library,
	}
}

// Submit appends a job to the tail of the pending sequence and runs an
// admission pass. The id must not exist in either the pending sequence or
// the active set.
func (q *Queue) Submit(job *domain.Job) error {
	q.mu.Lock()
	if q.existsLocked(job.ID) {
		q.mu.Unlock()
		return domain.ErrDuplicateJob
	}

	j := *job
	j.Status = domain.StatusPending
	q.pending = append(q.pending, &j)
	logrus.WithFields(logrus.Fields{"job": j.ID, "title": j.Title}).Info("download queued")

	started := q.admitLocked()
	q.mu.Unlock()

	q.launch(started)
	return nil
}

// Pause kills the job's external process, best-effort, and marks the
// record paused. A pending job is moved into the active set as paused so
// it can be resumed through the same path.
func (q *Queue) Pause(id string) error {
	q.mu.Lock()
	if j, ok := q.active[id]; ok {
		q.registry.Kill(id)
		j.Status = domain.StatusPaused
		j.Speed, j.ETA = 0, 0
		sample := snapshotSample(j)
		q.mu.Unlock()
		q.publish(sample)
		logrus.WithField("job", id).Info("download paused")
		return nil
	}
	if j := q.removePendingLocked(id); j != nil {
		j.Status = domain.StatusPaused
		q.active[id] = j
		sample := snapshotSample(j)
		q.mu.Unlock()
		q.publish(sample)
		logrus.WithField("job", id).Info("download paused")
		return nil
	}
	q.mu.Unlock()
	return domain.ErrJobNotFound
}

// Resume re-dispatches a paused job straight through the executor, the
// same as a fresh admission. It does not pass back through the pending
// sequence, so it does not wait on the concurrency bound.
func (q *Queue) Resume(id string) error {
	q.mu.Lock()
	j, ok := q.active[id]
	if !ok || j.Status != domain.StatusPaused {
		q.mu.Unlock()
		return domain.ErrJobNotPaused
	}
	j.Status = domain.StatusDownloading
	j.Speed, j.ETA = 0, 0
	q.mu.Unlock()

	logrus.WithField("job", id).Info("download resumed")
	q.launch([]*domain.Job{j})
	return nil
}

// Cancel kills and removes an active job, or removes a pending one.
// Either way a terminal cancelled sample is published.
func (q *Queue) Cancel(id string) error {
	q.mu.Lock()
	if _, ok := q.active[id]; ok {
		q.registry.Kill(id)
		delete(q.active, id)
		q.mu.Unlock()
		q.publish(syntheticSample(id, domain.StatusCancelled))
		logrus.WithField("job", id).Info("download cancelled")
		return nil
	}
	if j := q.removePendingLocked(id); j != nil {
		q.mu.Unlock()
		q.publish(syntheticSample(id, domain.StatusCancelled))
		logrus.WithField("job", id).Info("download cancelled")
		return nil
	}
	q.mu.Unlock()
	return domain.ErrJobNotFound
}

// Retry submits a brand-new pending job with a fresh id and the failed
// job's options. The failed record is left in place as history.
func (q *Queue) Retry(id string) (string, error) {
	q.mu.RLock()
	src := q.findLocked(id)
	if src == nil {
		q.mu.RUnlock()
		return "", domain.ErrJobNotFound
	}
	if src.Status != domain.StatusFailed {
		q.mu.RUnlock()
		return "", domain.ErrJobNotFailed
	}
	fresh := *src
	q.mu.RUnlock()

	fresh.ID = uuid.NewString()
	fresh.Status = domain.StatusPending
	fresh.Progress = 0
	fresh.DownloadedBytes = 0
	fresh.TotalBytes = 0
	fresh.Speed = 0
	fresh.ETA = 0
	fresh.Error = ""
	fresh.OutputPath = fresh.Options.OutputDir
	fresh.CreatedAt = time.Now().UTC()
	fresh.CompletedAt = nil

	if err := q.Submit(&fresh); err != nil {
		return "", err
	}
	return fresh.ID, nil
}

// SetMaxConcurrent updates the concurrency bound and immediately runs an
// admission pass. Lowering the bound never preempts active jobs.
func (q *Queue) SetMaxConcurrent(n int) {
	if n < 1 {
		n = 1
	}
	q.mu.Lock()
	q.maxConcurrent = n
	started := q.admitLocked()
	q.mu.Unlock()

	logrus.WithField("max", n).Info("concurrency limit changed")
	q.launch(started)
}

// MaxConcurrent returns the current concurrency bound.
func (q *Queue) MaxConcurrent() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.maxConcurrent
}

// ListAll returns value copies of every tracked job, active first, then
// pending in arrival order.
func (q *Queue) ListAll() []domain.Job {
	q.mu.RLock()
	defer q.mu.RUnlock()

	jobs := make([]domain.Job, 0, len(q.active)+len(q.pending))
	for _, j := range q.active {
		jobs = append(jobs, *j)
	}
	for _, j := range q.pending {
		jobs = append(jobs, *j)
	}
	return jobs
}

// ListActive returns value copies of the active set.
func (q *Queue) ListActive() []domain.Job {
	q.mu.RLock()
	defer q.mu.RUnlock()

	jobs := make([]domain.Job, 0, len(q.active))
	for _, j := range q.active {
		jobs = append(jobs, *j)
	}
	return jobs
}

// ClearTerminal drops every active-set entry whose status is completed,
// failed, or cancelled. Pending entries cannot be terminal.
func (q *Queue) ClearTerminal() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for id, j := range q.active {
		if j.Status.IsTerminal() {
			delete(q.active, id)
		}
	}
}

// Shutdown cancels every active job.
func (q *Queue) Shutdown() {
	logrus.Info("shutting down download queue")
	q.mu.RLock()
	ids := make([]string, 0, len(q.active))
	for id := range q.active {
		ids = append(ids, id)
	}
	q.mu.RUnlock()

	for _, id := range ids {
		_ = q.Cancel(id)
	}
}

// existsLocked reports whether the id is tracked in either set.
func (q *Queue) existsLocked(id string) bool {
	if _, ok := q.active[id]; ok {
		return true
	}
	for _, j := range q.pending {
		if j.ID == id {
			return true
		}
	}
	return false
}

// findLocked returns the tracked job for the id, or nil.
func (q *Queue) findLocked(id string) *domain.Job {
	if j, ok := q.active[id]; ok {
		return j
	}
	for _, j := range q.pending {
		if j.ID == id {
			return j
		}
	}
	return nil
}

// removePendingLocked removes and returns the pending job with the id.
func (q *Queue) removePendingLocked(id string) *domain.Job {
	for i, j := range q.pending {
		if j.ID == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return j
		}
	}
	return nil
}

// admitLocked moves jobs from the head of the pending sequence into the
// active set until the bound is reached or pending is empty, and returns
// the admitted jobs for the caller to launch outside the lock.
func (q *Queue) admitLocked() []*domain.Job {
	var started []*domain.Job
	for len(q.active) < q.maxConcurrent && len(q.pending) > 0 {
		j := q.pending[0]
		q.pending = q.pending[1:]
		j.Status = domain.StatusDownloading
		q.active[j.ID] = j
		started = append(started, j)
	}
	return started
}

// launch publishes the admission transition for each job and starts its
// executor goroutine.
func (q *Queue) launch(jobs []*domain.Job) {
	for _, j := range jobs {
		q.mu.RLock()
		sample := snapshotSample(j)
		jobCopy := *j
		q.mu.RUnlock()

		q.publish(sample)
		logrus.WithFields(logrus.Fields{"job": jobCopy.ID, "title": jobCopy.Title}).Info("starting download")
		go q.run(jobCopy)
	}
}

// run drives one executor invocation: it drains progress samples into the
// job record, then finalizes the outcome. The terminal sample is always
// the last one published for the job.
func (q *Queue) run(job domain.Job) {
	samples := make(chan domain.ProgressSample, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for s := range samples {
			q.applySample(s)
		}
	}()

	path, err := q.executor.Run(context.Background(), job, samples)
	<-done
	q.finalize(job.ID, path, err)
}

// applySample folds one executor progress sample into the job record and
// republishes it. Samples for jobs that were cancelled, paused, or already
// terminal are swallowed; with kill-based cancellation a few queued lines
// can still arrive after the fact.
func (q *Queue) applySample(s domain.ProgressSample) {
	q.mu.Lock()
	j, ok := q.active[s.JobID]
	if !ok || (j.Status != domain.StatusDownloading && j.Status != domain.StatusProcessing) {
		q.mu.Unlock()
		return
	}
	j.Status = s.Status
	j.Progress = s.Percentage
	j.DownloadedBytes = s.BytesDownloaded
	j.TotalBytes = s.BytesTotal
	j.Speed = s.Rate
	j.ETA = s.ETA
	q.mu.Unlock()

	q.publish(s)
}

// finalize records the executor outcome, publishes the terminal sample,
// and on success writes the library record.
func (q *Queue) finalize(id, path string, runErr error) {
	q.mu.Lock()
	j, ok := q.active[id]
	if !ok {
		// Cancelled and removed while running; the cancelled sample
		// was already published.
		q.mu.Unlock()
		return
	}
	if j.Status == domain.StatusPaused {
		// The kill that paused the job surfaced as a process failure.
		q.mu.Unlock()
		return
	}

	if runErr != nil {
		j.Status = domain.StatusFailed
		j.Error = runErr.Error()
		j.Speed, j.ETA = 0, 0
		sample := snapshotSample(j)
		title := j.Title
		q.mu.Unlock()

		q.publish(sample)
		logrus.WithFields(logrus.Fields{"job": id, "title": title, "error": runErr}).Error("download failed")
		return
	}

	now := time.Now().UTC()
	j.Status = domain.StatusCompleted
	j.Progress = 100
	j.Speed, j.ETA = 0, 0
	j.OutputPath = path
	j.CompletedAt = &now
	sample := snapshotSample(j)
	sample.OutputPath = path
	jobCopy := *j
	q.mu.Unlock()

	q.publish(sample)
	logrus.WithFields(logrus.Fields{"job": id, "path": path}).Info("download completed")
	q.addToLibrary(&jobCopy, path)
}

// addToLibrary writes the completed download's record, fire-and-forget.
func (q *Queue) addToLibrary(job *domain.Job, path string) {
	if q.library == nil {
		return
	}
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	video := domain.NewLibraryVideo(job, path, size)
	if err := q.library.Add(context.Background(), video); err != nil {
		logrus.WithFields(logrus.Fields{"job": job.ID, "error": err}).Error("failed to add video to library")
	}
}

func (q *Queue) publish(s domain.ProgressSample) {
	if q.notifier != nil {
		q.notifier.Publish(s)
	}
}

// snapshotSample builds a sample from the job's current figures.
func snapshotSample(j *domain.Job) domain.ProgressSample {
	return domain.ProgressSample{
		JobID:           j.ID,
		Status:          j.Status,
		Percentage:      j.Progress,
		BytesDownloaded: j.DownloadedBytes,
		BytesTotal:      j.TotalBytes,
		Rate:            j.Speed,
		ETA:             j.ETA,
	}
}

// syntheticSample is a zero-figure sample for transitions that do not
// correspond to a progress observation.
func syntheticSample(id string, status domain.DownloadStatus) domain.ProgressSample {
	return domain.ProgressSample{JobID: id, Status: status}
}
