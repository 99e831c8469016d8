package ytdlp

import (
	"fmt"
	"os/exec"
)

// DependencyReport lists the external binaries the engine depends on and
// where they were found.
type DependencyReport struct {
	YTDLPFound  bool   `json:"ytDlpFound"`
	YTDLPPath   string `json:"ytDlpPath,omitempty"`
	FFmpegFound bool   `json:"ffmpegFound"`
	FFmpegPath  string `json:"ffmpegPath,omitempty"`
}

// DependencyStatus probes for the yt-dlp binary (the configured name, or
// "yt-dlp" when empty) and for ffmpeg on PATH.
func DependencyStatus(ytdlpBin string) DependencyReport {
	if ytdlpBin == "" {
		ytdlpBin = "yt-dlp"
	}
	report := DependencyReport{}
	if path, err := exec.LookPath(ytdlpBin); err == nil {
		report.YTDLPFound = true
		report.YTDLPPath = path
	}
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		report.FFmpegFound = true
		report.FFmpegPath = path
	}
	return report
}

// CheckDependencies fails when yt-dlp is missing. ffmpeg is only needed
// for merged formats, so its absence is left to the caller to report.
func CheckDependencies(ytdlpBin string) (DependencyReport, error) {
	report := DependencyStatus(ytdlpBin)
	if !report.YTDLPFound {
		return report, fmt.Errorf("missing dependency: yt-dlp is not installed or not on PATH")
	}
	return report, nil
}
