package domain

import (
	"slices"
	"testing"
)

func TestAvailableQualities(t *testing.T) {
	info := &VideoInfo{
		Formats: []VideoFormat{
			{Height: 720, HasVideo: true},
			{Height: 1080, HasVideo: true},
			{Height: 1080, HasVideo: true}, // duplicate height
			{Height: 0, HasVideo: true},    // audio muxed oddity, no height
			{Height: 480, HasVideo: false}, // audio-only entry
			{Height: 2160, HasVideo: true},
		},
	}

	got := info.AvailableQualities()
	want := []string{"2160p", "1080p", "720p"}
	if !slices.Equal(got, want) {
		t.Errorf("AvailableQualities() = %v, want %v", got, want)
	}
}

func TestAvailableQualitiesEmpty(t *testing.T) {
	info := &VideoInfo{}
	if got := info.AvailableQualities(); len(got) != 0 {
		t.Errorf("AvailableQualities() on empty info = %v", got)
	}
}

func TestNewLibraryVideo(t *testing.T) {
	job := &Job{
		ID:      "job-1",
		VideoID: "abc",
		Title:   "A Video",
		URL:     "https://example.com/v",
		Quality: "1080",
		Format:  "mp4",
	}

	v := NewLibraryVideo(job, "/downloads/a.mp4", 2048)
	if v.ID == "" || v.ID == job.ID {
		t.Errorf("library record must get its own id, got %q", v.ID)
	}
	if v.FilePath != "/downloads/a.mp4" || v.FileSize != 2048 {
		t.Errorf("artifact fields = %q, %d", v.FilePath, v.FileSize)
	}
	if v.Resolution != "1080p" {
		t.Errorf("Resolution = %q, want 1080p", v.Resolution)
	}
	if v.SourceURL != job.URL || v.VideoID != job.VideoID {
		t.Errorf("source fields not copied: %+v", v)
	}
	if v.DownloadedAt.IsZero() {
		t.Error("DownloadedAt not set")
	}
}
