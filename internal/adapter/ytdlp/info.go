package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/BankkRoll/clipy/internal/domain"
)

// rawVideoInfo mirrors the fields of yt-dlp's --dump-json document that the
// engine cares about.
type rawVideoInfo struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Thumbnail    string      `json:"thumbnail"`
	Duration     float64     `json:"duration"`
	Channel      string      `json:"channel"`
	ChannelID    string      `json:"channel_id"`
	UploadDate   string      `json:"upload_date"`
	ViewCount    int64       `json:"view_count"`
	Formats      []rawFormat `json:"formats"`
	IsLive       bool        `json:"is_live"`
	Availability string      `json:"availability"`
}

type rawFormat struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	Resolution     string  `json:"resolution"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	FPS            float64 `json:"fps"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
	TBR            float64 `json:"tbr"`
}

// FetchVideoInfo runs yt-dlp in metadata-only mode and decodes the result.
func (e *Executor) FetchVideoInfo(ctx context.Context, url string) (*domain.VideoInfo, error) {
	logrus.WithField("url", url).Info("fetching video info")

	cmd := exec.CommandContext(ctx, e.bin, "--dump-json", "--no-playlist", "--no-warnings", url)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		text := strings.TrimSpace(stderr.String())
		if text == "" {
			text = err.Error()
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrProcessFailed, text)
	}

	var raw rawVideoInfo
	if err := json.Unmarshal(stdout.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("parse video info: %w", err)
	}
	return convertVideoInfo(raw), nil
}

// convertVideoInfo maps the raw document to the domain model, keeping only
// formats that carry video or audio.
func convertVideoInfo(raw rawVideoInfo) *domain.VideoInfo {
	var formats []domain.VideoFormat
	for _, f := range raw.Formats {
		hasVideo := f.VCodec != "" && f.VCodec != "none"
		hasAudio := f.ACodec != "" && f.ACodec != "none"
		if f.Height == 0 && !hasAudio {
			continue
		}

		resolution := f.Resolution
		if resolution == "" {
			if f.Width > 0 && f.Height > 0 {
				resolution = fmt.Sprintf("%dx%d", f.Width, f.Height)
			} else {
				resolution = "unknown"
			}
		}
		ext := f.Ext
		if ext == "" {
			ext = "mp4"
		}
		filesize := f.Filesize
		if filesize == 0 {
			filesize = f.FilesizeApprox
		}

		formats = append(formats, domain.VideoFormat{
			FormatID:   f.FormatID,
			Extension:  ext,
			Resolution: resolution,
			Width:      f.Width,
			Height:     f.Height,
			FPS:        int(f.FPS),
			VCodec:     f.VCodec,
			ACodec:     f.ACodec,
			Filesize:   filesize,
			TBR:        f.TBR,
			HasVideo:   hasVideo,
			HasAudio:   hasAudio,
		})
	}

	return &domain.VideoInfo{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		Thumbnail:   raw.Thumbnail,
		Duration:    int64(raw.Duration),
		Channel:     raw.Channel,
		ChannelID:   raw.ChannelID,
		UploadDate:  raw.UploadDate,
		ViewCount:   raw.ViewCount,
		Formats:     formats,
		IsLive:      raw.IsLive,
		IsPrivate:   raw.Availability == "private",
	}
}
