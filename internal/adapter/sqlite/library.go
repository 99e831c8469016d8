package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/BankkRoll/clipy/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS library_videos (
    id            TEXT PRIMARY KEY,
    video_id      TEXT NOT NULL,
    title         TEXT NOT NULL,
    thumbnail     TEXT,
    duration      INTEGER NOT NULL DEFAULT 0,
    channel       TEXT,
    file_path     TEXT NOT NULL,
    file_size     INTEGER NOT NULL DEFAULT 0,
    format        TEXT,
    resolution    TEXT,
    downloaded_at DATETIME NOT NULL,
    source_url    TEXT
);
CREATE INDEX IF NOT EXISTS idx_library_videos_video_id ON library_videos(video_id);
`

// Library implements domain.LibraryStore using SQLite.
type Library struct {
	db *sql.DB
}

// New opens (and if necessary initializes) the library database.
func New(dbPath string) (*Library, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Library{db: db}, nil
}

// Close closes the database connection.
func (l *Library) Close() error {
	return l.db.Close()
}

// Add inserts a completed download's record, replacing any previous record
// with the same id.
func (l *Library) Add(ctx context.Context, video *domain.LibraryVideo) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO library_videos
		 (id, video_id, title, thumbnail, duration, channel, file_path, file_size, format, resolution, downloaded_at, source_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.ID, video.VideoID, video.Title, video.Thumbnail, video.Duration,
		video.Channel, video.FilePath, video.FileSize, video.Format,
		video.Resolution, video.DownloadedAt, video.SourceURL,
	)
	return err
}

// List returns every library record, newest first.
func (l *Library) List(ctx context.Context) ([]domain.LibraryVideo, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, video_id, title, COALESCE(thumbnail, ''), duration, COALESCE(channel, ''),
		        file_path, file_size, COALESCE(format, ''), COALESCE(resolution, ''),
		        downloaded_at, COALESCE(source_url, '')
		 FROM library_videos ORDER BY downloaded_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []domain.LibraryVideo
	for rows.Next() {
		var v domain.LibraryVideo
		if err := rows.Scan(&v.ID, &v.VideoID, &v.Title, &v.Thumbnail, &v.Duration,
			&v.Channel, &v.FilePath, &v.FileSize, &v.Format, &v.Resolution,
			&v.DownloadedAt, &v.SourceURL); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// Remove deletes a library record. The file on disk is untouched.
func (l *Library) Remove(ctx context.Context, id string) error {
	result, err := l.db.ExecContext(ctx, `DELETE FROM library_videos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}
