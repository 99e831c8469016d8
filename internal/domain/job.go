package domain

import (
	"time"

	"github.com/google/uuid"
)

// DownloadStatus represents the lifecycle state of a download job.
type DownloadStatus string

const (
	StatusPending     DownloadStatus = "pending"
	StatusFetching    DownloadStatus = "fetching"
	StatusDownloading DownloadStatus = "downloading"
	StatusProcessing  DownloadStatus = "processing"
	StatusCompleted   DownloadStatus = "completed"
	StatusFailed      DownloadStatus = "failed"
	StatusCancelled   DownloadStatus = "cancelled"
	StatusPaused      DownloadStatus = "paused"
)

// String returns the string representation of the status.
func (s DownloadStatus) String() string {
	return string(s)
}

// IsTerminal returns true once no further transitions can occur.
func (s DownloadStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Job represents one media download tracked through its full lifecycle.
// The queue owns the record while it is pending or active; callers only
// ever see value copies.
type Job struct {
	ID        string `json:"id"`
	VideoID   string `json:"videoId"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`

	Status          DownloadStatus `json:"status"`
	Progress        float64        `json:"progress"`
	DownloadedBytes int64          `json:"downloadedBytes"`
	TotalBytes      int64          `json:"totalBytes"`
	Speed           int64          `json:"speed"`
	ETA             int64          `json:"eta"`

	Quality    string `json:"quality"`
	Format     string `json:"format"`
	OutputPath string `json:"outputPath"`
	Error      string `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// Descriptive fields copied at submission time, never re-fetched.
	Duration int64  `json:"duration"`
	Channel  string `json:"channel"`

	// Options is the immutable snapshot the external command is built from.
	Options DownloadOptions `json:"options"`
}

// NewJob builds a pending job from fetched video metadata and an options
// snapshot. Descriptive fields are copied here and never re-fetched.
func NewJob(url string, info *VideoInfo, opts DownloadOptions) *Job {
	return &Job{
		ID:         uuid.NewString(),
		VideoID:    info.ID,
		Title:      info.Title,
		Thumbnail:  info.Thumbnail,
		URL:        url,
		Status:     StatusPending,
		Quality:    opts.Quality,
		Format:     opts.Format,
		OutputPath: opts.OutputDir,
		CreatedAt:  time.Now().UTC(),
		Duration:   info.Duration,
		Channel:    info.Channel,
		Options:    opts,
	}
}

// ProgressSample is one progress observation published to the notification
// sink. OutputPath is set only on the terminal completed sample.
type ProgressSample struct {
	JobID           string         `json:"jobId"`
	Status          DownloadStatus `json:"status"`
	Percentage      float64        `json:"percentage"`
	BytesDownloaded int64          `json:"bytesDownloaded"`
	BytesTotal      int64          `json:"bytesTotal"`
	Rate            int64          `json:"rate"`
	ETA             int64          `json:"eta"`
	OutputPath      string         `json:"outputPath,omitempty"`
}
