package domain

// DownloadOptions is the full configuration an external download command is
// built from. The zero value is not useful; start from DefaultOptions.
type DownloadOptions struct {
	// Basic options
	Quality   string `json:"quality" toml:"quality"`
	Format    string `json:"format" toml:"format"`
	AudioOnly bool   `json:"audioOnly" toml:"audio_only"`
	OutputDir string `json:"outputDir" toml:"output_dir"`
	Filename  string `json:"filename" toml:"filename"`

	// Audio options
	AudioFormat  string `json:"audioFormat" toml:"audio_format"`
	AudioBitrate string `json:"audioBitrate" toml:"audio_bitrate"`

	// Video options
	VideoCodec string `json:"videoCodec" toml:"video_codec"`

	// Metadata options
	EmbedThumbnail bool `json:"embedThumbnail" toml:"embed_thumbnail"`
	EmbedMetadata  bool `json:"embedMetadata" toml:"embed_metadata"`
	EmbedChapters  bool `json:"embedChapters" toml:"embed_chapters"`
	SplitChapters  bool `json:"splitChapters" toml:"split_chapters"`

	// Subtitle options
	DownloadSubtitles bool     `json:"downloadSubtitles" toml:"download_subtitles"`
	AutoSubtitles     bool     `json:"autoSubtitles" toml:"auto_subtitles"`
	SubtitleLanguages []string `json:"subtitleLanguages" toml:"subtitle_languages"`
	SubtitleFormat    string   `json:"subtitleFormat" toml:"subtitle_format"`
	EmbedSubtitles    bool     `json:"embedSubtitles" toml:"embed_subtitles"`

	// SponsorBlock
	SponsorBlock           bool     `json:"sponsorBlock" toml:"sponsor_block"`
	SponsorBlockCategories []string `json:"sponsorBlockCategories" toml:"sponsor_block_categories"`

	// Extra artifacts
	WriteDescription bool `json:"writeDescription" toml:"write_description"`
	WriteComments    bool `json:"writeComments" toml:"write_comments"`
	WriteThumbnail   bool `json:"writeThumbnail" toml:"write_thumbnail"`
	KeepOriginal     bool `json:"keepOriginal" toml:"keep_original"`

	// Limits
	MaxFilesize string `json:"maxFilesize" toml:"max_filesize"`
	RateLimit   string `json:"rateLimit" toml:"rate_limit"`

	// Playlist handling
	NoPlaylist    bool   `json:"noPlaylist" toml:"no_playlist"`
	PlaylistItems string `json:"playlistItems" toml:"playlist_items"`

	// Post-processing
	RemuxVideo string `json:"remuxVideo" toml:"remux_video"`

	// Network
	CookiesFromBrowser  string `json:"cookiesFromBrowser" toml:"cookies_from_browser"`
	ConcurrentFragments int    `json:"concurrentFragments" toml:"concurrent_fragments"`
	ProxyURL            string `json:"proxyUrl" toml:"proxy_url"`

	// File handling
	RestrictFilenames bool   `json:"restrictFilenames" toml:"restrict_filenames"`
	DownloadArchive   string `json:"downloadArchive" toml:"download_archive"`

	GeoBypass bool `json:"geoBypass" toml:"geo_bypass"`
}

// DefaultOptions returns the stock option set used when the caller supplies
// nothing of its own.
func DefaultOptions() DownloadOptions {
	return DownloadOptions{
		Quality:                "1080",
		Format:                 "mp4",
		AudioFormat:            "m4a",
		AudioBitrate:           "192",
		VideoCodec:             "auto",
		SubtitleLanguages:      []string{"en"},
		SubtitleFormat:         "srt",
		SponsorBlockCategories: []string{"sponsor"},
		NoPlaylist:             true,
		ConcurrentFragments:    1,
	}
}
