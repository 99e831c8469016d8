package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// VideoFormat describes one downloadable format reported by the extractor.
type VideoFormat struct {
	FormatID   string  `json:"formatId"`
	Extension  string  `json:"extension"`
	Resolution string  `json:"resolution"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	FPS        int     `json:"fps"`
	VCodec     string  `json:"vcodec"`
	ACodec     string  `json:"acodec"`
	Filesize   int64   `json:"filesize"`
	TBR        float64 `json:"tbr"`
	HasVideo   bool    `json:"hasVideo"`
	HasAudio   bool    `json:"hasAudio"`
}

// VideoInfo is the metadata fetched for a URL before submission.
type VideoInfo struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Thumbnail   string        `json:"thumbnail"`
	Duration    int64         `json:"duration"`
	Channel     string        `json:"channel"`
	ChannelID   string        `json:"channelId"`
	UploadDate  string        `json:"uploadDate"`
	ViewCount   int64         `json:"viewCount"`
	Formats     []VideoFormat `json:"formats"`
	IsLive      bool          `json:"isLive"`
	IsPrivate   bool          `json:"isPrivate"`
}

// AvailableQualities returns the distinct video heights of the info's
// formats, highest first, formatted as "1080p" style labels.
func (v *VideoInfo) AvailableQualities() []string {
	seen := make(map[int]bool)
	var heights []int
	for _, f := range v.Formats {
		if f.HasVideo && f.Height > 0 && !seen[f.Height] {
			seen[f.Height] = true
			heights = append(heights, f.Height)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(heights)))

	qualities := make([]string, 0, len(heights))
	for _, h := range heights {
		qualities = append(qualities, fmt.Sprintf("%dp", h))
	}
	return qualities
}

// LibraryVideo is one persistent record of a completed download.
type LibraryVideo struct {
	ID           string    `json:"id"`
	VideoID      string    `json:"videoId"`
	Title        string    `json:"title"`
	Thumbnail    string    `json:"thumbnail"`
	Duration     int64     `json:"duration"`
	Channel      string    `json:"channel"`
	FilePath     string    `json:"filePath"`
	FileSize     int64     `json:"fileSize"`
	Format       string    `json:"format"`
	Resolution   string    `json:"resolution"`
	DownloadedAt time.Time `json:"downloadedAt"`
	SourceURL    string    `json:"sourceUrl"`
}

// NewLibraryVideo creates a library record for a finished job and its
// resolved artifact.
func NewLibraryVideo(job *Job, filePath string, fileSize int64) *LibraryVideo {
	return &LibraryVideo{
		ID:           uuid.NewString(),
		VideoID:      job.VideoID,
		Title:        job.Title,
		Thumbnail:    job.Thumbnail,
		Duration:     job.Duration,
		Channel:      job.Channel,
		FilePath:     filePath,
		FileSize:     fileSize,
		Format:       job.Format,
		Resolution:   job.Quality + "p",
		DownloadedAt: time.Now().UTC(),
		SourceURL:    job.URL,
	}
}
