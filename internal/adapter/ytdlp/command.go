package ytdlp

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BankkRoll/clipy/internal/domain"
)

// BuildArgs constructs the yt-dlp argument vector for a download. The
// mapping is deterministic: each option contributes zero or one flag, and
// absent or default values omit the flag entirely.
func BuildArgs(url string, opts domain.DownloadOptions) []string {
	outputTemplate := filepath.Join(opts.OutputDir, "%(title)s.%(ext)s")
	if opts.Filename != "" {
		outputTemplate = filepath.Join(opts.OutputDir, opts.Filename)
	}

	args := []string{
		"--newline",
		"--progress",
		"--print", "after_move:filepath",
		"-f", FormatSelector(opts),
		"-o", outputTemplate,
	}

	if opts.NoPlaylist {
		args = append(args, "--no-playlist")
	}
	if opts.PlaylistItems != "" {
		args = append(args, "--playlist-items", opts.PlaylistItems)
	}

	if opts.AudioOnly {
		args = append(args, "-x")
		if opts.AudioFormat != "" && opts.AudioFormat != "best" {
			args = append(args, "--audio-format", opts.AudioFormat)
		}
		if opts.AudioBitrate != "" {
			args = append(args, "--audio-quality", opts.AudioBitrate+"K")
		}
	} else if opts.Format != "" && opts.Format != "best" {
		args = append(args, "--merge-output-format", opts.Format)
	}

	if opts.VideoCodec != "" && opts.VideoCodec != "auto" {
		args = append(args, "--format-sort", "vcodec:"+opts.VideoCodec)
	}

	if opts.EmbedThumbnail {
		args = append(args, "--embed-thumbnail")
	}
	if opts.EmbedMetadata {
		args = append(args, "--embed-metadata")
	}
	if opts.EmbedChapters {
		args = append(args, "--embed-chapters")
	}
	if opts.SplitChapters {
		args = append(args, "--split-chapters")
	}

	if opts.DownloadSubtitles {
		args = append(args, "--write-subs")
		if opts.AutoSubtitles {
			args = append(args, "--write-auto-subs")
		}
		if len(opts.SubtitleLanguages) > 0 {
			args = append(args, "--sub-langs", strings.Join(opts.SubtitleLanguages, ","))
		}
		if opts.SubtitleFormat != "" {
			args = append(args, "--sub-format", opts.SubtitleFormat)
		}
		if opts.EmbedSubtitles {
			args = append(args, "--embed-subs")
		}
	}

	if opts.SponsorBlock {
		categories := "sponsor"
		if len(opts.SponsorBlockCategories) > 0 {
			categories = strings.Join(opts.SponsorBlockCategories, ",")
		}
		args = append(args, "--sponsorblock-remove", categories)
	}

	if opts.WriteDescription {
		args = append(args, "--write-description")
	}
	if opts.WriteComments {
		args = append(args, "--write-comments")
	}
	if opts.WriteThumbnail {
		args = append(args, "--write-thumbnail")
	}
	if opts.KeepOriginal {
		args = append(args, "-k")
	}

	if opts.MaxFilesize != "" {
		args = append(args, "--max-filesize", opts.MaxFilesize)
	}
	if opts.RateLimit != "" {
		args = append(args, "-r", opts.RateLimit)
	}
	if opts.RemuxVideo != "" {
		args = append(args, "--remux-video", opts.RemuxVideo)
	}
	if opts.CookiesFromBrowser != "" {
		args = append(args, "--cookies-from-browser", opts.CookiesFromBrowser)
	}
	if opts.ConcurrentFragments > 1 {
		args = append(args, "-N", strconv.Itoa(opts.ConcurrentFragments))
	}
	if opts.ProxyURL != "" {
		args = append(args, "--proxy", opts.ProxyURL)
	}
	if opts.RestrictFilenames {
		args = append(args, "--restrict-filenames")
	}
	if opts.DownloadArchive != "" {
		args = append(args, "--download-archive", opts.DownloadArchive)
	}
	if opts.GeoBypass {
		args = append(args, "--geo-bypass")
	}

	return append(args, url)
}

// FormatSelector builds the yt-dlp format-selector expression for the
// option set.
func FormatSelector(opts domain.DownloadOptions) string {
	if opts.AudioOnly {
		audioExt := opts.AudioFormat
		if audioExt == "" || audioExt == "best" {
			audioExt = "m4a"
		}
		return fmt.Sprintf("bestaudio[ext=%s]/bestaudio/best", audioExt)
	}

	var vcodec string
	switch opts.VideoCodec {
	case "h264":
		vcodec = "[vcodec^=avc]"
	case "h265":
		vcodec = "[vcodec^=hev]"
	case "vp9":
		vcodec = "[vcodec^=vp9]"
	case "av1":
		vcodec = "[vcodec^=av01]"
	}

	var height int
	switch opts.Quality {
	case "2160", "4k":
		height = 2160
	case "1440", "2k":
		height = 1440
	case "1080":
		height = 1080
	case "720":
		height = 720
	case "480":
		height = 480
	case "360":
		height = 360
	case "240":
		height = 240
	case "144":
		height = 144
	default:
		return fmt.Sprintf("bestvideo%s+bestaudio/best", vcodec)
	}
	return fmt.Sprintf("bestvideo[height<=%d]%s+bestaudio/best[height<=%d]", height, vcodec, height)
}
