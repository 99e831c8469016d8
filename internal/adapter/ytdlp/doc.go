// Package ytdlp adapts the yt-dlp command-line tool into the engine's
// executor port. It owns the text-scraping contract with the tool: the
// deterministic argument vector, the progress-line vocabulary, and the
// destination-announcement shapes an output path is reconciled from.
// Alternate progress sources can replace this package without touching
// the queue.
package ytdlp
