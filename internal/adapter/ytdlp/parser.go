package ytdlp

import (
	"strconv"
	"strings"
	"unicode"
)

// Progress holds the fields parsed from a single progress line.
type Progress struct {
	Percentage      float64
	DownloadedBytes int64
	TotalBytes      int64
	Rate            int64
	ETA             int64
}

// mediaExtensions are the artifact extensions the engine recognizes, both
// when spotting paths in process output and when scanning the destination
// directory.
var mediaExtensions = []string{
	"mp4", "mkv", "webm", "avi", "mov", "m4a", "mp3", "opus", "flac", "wav",
}

// ParseProgressLine extracts a progress sample from one line of yt-dlp
// output. Lines look like:
//
//	[download]  50.0% of 100.00MiB at 5.00MiB/s ETA 00:10
//
// Downloaded bytes are derived from the percentage and the total, not read
// from the line; yt-dlp does not print them separately. Lines without a
// positive percentage are treated as noise unless they carry the literal
// "100%" marker.
func ParseProgressLine(line string) (Progress, bool) {
	if !strings.Contains(line, "[download]") || !strings.Contains(line, "%") {
		return Progress{}, false
	}

	var p Progress

	if pctIdx := strings.Index(line, "%"); pctIdx >= 0 {
		start := strings.LastIndexFunc(line[:pctIdx], unicode.IsSpace) + 1
		if pct, err := strconv.ParseFloat(line[start:pctIdx], 64); err == nil {
			p.Percentage = pct
		}
	}

	if total := tokenAfter(line, " of "); total != "" {
		p.TotalBytes = parseSize(total)
		p.DownloadedBytes = int64(p.Percentage / 100 * float64(p.TotalBytes))
	}
	if rate := tokenAfter(line, " at "); rate != "" {
		p.Rate = parseRate(rate)
	}
	if eta := tokenAfter(line, "ETA "); eta != "" {
		p.ETA = parseETA(eta)
	}

	if p.Percentage > 0 || strings.Contains(line, "100%") {
		return p, true
	}
	return Progress{}, false
}

// tokenAfter returns the first whitespace-delimited token following marker.
func tokenAfter(line, marker string) string {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(line[idx+len(marker):])
	if sp := strings.IndexFunc(rest, unicode.IsSpace); sp >= 0 {
		rest = rest[:sp]
	}
	return rest
}

// parseSize converts a size token like "123.45MiB" to bytes. Decimal and
// binary unit spellings both map to the binary multiplier, matching how the
// figures are consumed downstream.
func parseSize(s string) int64 {
	s = strings.TrimSpace(s)
	alpha := strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r)
	})
	numStr, unit := s, ""
	if alpha >= 0 {
		numStr, unit = s[:alpha], s[alpha:]
	}
	num, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0
	}

	multiplier := 1.0
	switch strings.ToUpper(unit) {
	case "KIB", "KB":
		multiplier = 1024
	case "MIB", "MB":
		multiplier = 1024 * 1024
	case "GIB", "GB":
		multiplier = 1024 * 1024 * 1024
	}
	return int64(num * multiplier)
}

// parseRate converts a rate token like "1.23MiB/s" to bytes per second.
func parseRate(s string) int64 {
	return parseSize(strings.TrimSuffix(strings.TrimSpace(s), "/s"))
}

// parseETA converts "mm:ss" or "hh:mm:ss" to seconds. "Unknown" and empty
// strings yield zero.
func parseETA(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "Unknown" {
		return 0
	}

	parts := strings.Split(s, ":")
	var seconds int64
	switch len(parts) {
	case 2:
		m, _ := strconv.ParseInt(parts[0], 10, 64)
		sec, _ := strconv.ParseInt(parts[1], 10, 64)
		seconds = m*60 + sec
	case 3:
		h, _ := strconv.ParseInt(parts[0], 10, 64)
		m, _ := strconv.ParseInt(parts[1], 10, 64)
		sec, _ := strconv.ParseInt(parts[2], 10, 64)
		seconds = h*3600 + m*60 + sec
	}
	return seconds
}

// ExtractPathCandidate pulls a destination-path hint out of one line of
// process output. Recognized shapes, strongest first:
//
//   - a bare printed filepath (from --print after_move:filepath): any
//     non-bracketed line with a path separator and a media extension
//   - "[download] Destination: <path>"
//   - `[Merger] Merging formats into "<path>"`
//   - `[MoveFiles] Moving file <src> to <path>`
func ExtractPathCandidate(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}

	if !strings.HasPrefix(trimmed, "[") {
		hasSep := strings.ContainsAny(trimmed, `/\`)
		if hasSep && hasMediaExtension(trimmed) {
			return trimmed, true
		}
		return "", false
	}

	switch {
	case strings.Contains(trimmed, "[download] Destination:"):
		_, path, _ := strings.Cut(trimmed, "Destination:")
		return strings.TrimSpace(path), true

	case strings.Contains(trimmed, "[Merger] Merging formats into"):
		start := strings.Index(trimmed, `"`)
		end := strings.LastIndex(trimmed, `"`)
		if start >= 0 && end > start {
			return trimmed[start+1 : end], true
		}

	case strings.Contains(trimmed, "[MoveFiles] Moving file") && strings.Contains(trimmed, " to "):
		idx := strings.LastIndex(trimmed, " to ")
		path := strings.Trim(strings.TrimSpace(trimmed[idx+4:]), `"`)
		if path != "" {
			return path, true
		}
	}
	return "", false
}

// IsPostProcessingLine reports whether the line marks the start of a
// post-download processing step (merge, audio extraction, file move).
func IsPostProcessingLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "[Merger]") ||
		strings.HasPrefix(trimmed, "[ExtractAudio]") ||
		strings.HasPrefix(trimmed, "[MoveFiles]")
}

func hasMediaExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range mediaExtensions {
		if strings.HasSuffix(lower, "."+ext) {
			return true
		}
	}
	return false
}
