package ytdlp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/BankkRoll/clipy/internal/domain"
)

// Executor runs yt-dlp for one job at a time. It is safe for concurrent
// use; each Run call owns its own process and buffers.
type Executor struct {
	bin      string
	registry domain.ProcessRegistry
}

// NewExecutor creates an executor that spawns the given yt-dlp binary and
// registers its processes for later signaling.
func NewExecutor(bin string, registry domain.ProcessRegistry) (*Executor, error) {
	if registry == nil {
		return nil, domain.ErrRegistryUnavailable
	}
	if bin == "" {
		bin = "yt-dlp"
	}
	return &Executor{bin: bin, registry: registry}, nil
}

// Run spawns yt-dlp for the job, streams progress samples while draining
// both output streams, and resolves the final artifact path after a clean
// exit. The samples channel is closed before Run returns. The process id
// is unregistered unconditionally, success or failure.
func (e *Executor) Run(ctx context.Context, job domain.Job, samples chan<- domain.ProgressSample) (string, error) {
	defer close(samples)

	log := logrus.WithField("job", job.ID)
	args := BuildArgs(job.URL, job.Options)
	log.WithField("args", strings.Join(args, " ")).Debug("spawning yt-dlp")

	cmd := exec.CommandContext(ctx, e.bin, args...)
	cmd.SysProcAttr = sysProcAttr()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("%w: stdout pipe: %v", domain.ErrSpawnFailed, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("%w: stderr pipe: %v", domain.ErrSpawnFailed, err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSpawnFailed, err)
	}

	e.registry.Register(job.ID, cmd.Process.Pid)
	defer e.registry.Unregister(job.ID)

	var mu sync.Mutex
	var marker string
	var errText strings.Builder
	processing := false

	drain := func(r io.Reader, isStderr bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		scanner.Split(splitByNewlineOrCR)
		for scanner.Scan() {
			line := scanner.Text()

			mu.Lock()
			if isStderr {
				appendLimited(&errText, line)
			}
			if candidate, ok := ExtractPathCandidate(line); ok {
				marker = candidate
			}
			firstProcessing := false
			if !processing && IsPostProcessingLine(line) {
				processing = true
				firstProcessing = true
			}
			mu.Unlock()

			if firstProcessing {
				samples <- domain.ProgressSample{
					JobID:      job.ID,
					Status:     domain.StatusProcessing,
					Percentage: 100,
				}
			}

			if p, ok := ParseProgressLine(line); ok {
				samples <- domain.ProgressSample{
					JobID:           job.ID,
					Status:          domain.StatusDownloading,
					Percentage:      p.Percentage,
					BytesDownloaded: p.DownloadedBytes,
					BytesTotal:      p.TotalBytes,
					Rate:            p.Rate,
					ETA:             p.ETA,
				}
			}
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); drain(stdout, false) }()
	go func() { defer wg.Done(); drain(stderr, true) }()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		text := strings.TrimSpace(errText.String())
		if text == "" {
			text = err.Error()
		}
		return "", fmt.Errorf("%w: %s", domain.ErrProcessFailed, text)
	}

	return ResolveOutputPath(marker, job.Options.OutputDir)
}

// splitByNewlineOrCR is a bufio.SplitFunc that also breaks on carriage
// returns, so progress lines yt-dlp rewrites in place are observed.
func splitByNewlineOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' || data[i] == '\r' {
			if i == 0 {
				return 1, nil, nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// appendLimited caps the captured error output at 8KiB.
func appendLimited(b *strings.Builder, line string) {
	const maxKeep = 8192
	if b.Len() >= maxKeep {
		return
	}
	toWrite := line + "\n"
	if remain := maxKeep - b.Len(); len(toWrite) > remain {
		toWrite = toWrite[:remain]
	}
	b.WriteString(toWrite)
}
