package ytdlp

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BankkRoll/clipy/internal/domain"
)

// ResolveOutputPath reconciles the final artifact location for a finished
// download. A marker candidate captured from process output wins when the
// file it names exists; otherwise the destination directory is scanned,
// non-recursively, for the most recently modified media file.
func ResolveOutputPath(marker, destDir string) (string, error) {
	if marker != "" {
		if _, err := os.Stat(marker); err == nil {
			return marker, nil
		}
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", fmt.Errorf("%w: output directory %s", domain.ErrOutputNotFound, destDir)
	}

	var newest string
	var newestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !hasMediaExtension(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = filepath.Join(destDir, entry.Name())
			newestMod = info.ModTime()
		}
	}

	if newest == "" {
		return "", fmt.Errorf("%w: no media files in %s", domain.ErrOutputNotFound, destDir)
	}
	return newest, nil
}
