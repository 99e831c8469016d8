package config

import (
	"flag"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/BankkRoll/clipy/internal/domain"
)

// Config holds application configuration.
type Config struct {
	Port          int                    `toml:"port"`
	DBPath        string                 `toml:"db_path"`
	DownloadDir   string                 `toml:"download_dir"`
	MaxConcurrent int                    `toml:"max_concurrent"`
	YTDLPPath     string                 `toml:"ytdlp_path"`
	LogLevel      string                 `toml:"log_level"`
	Defaults      domain.DownloadOptions `toml:"defaults"`
}

// DefaultDBPath returns the default library database path using
// XDG_DATA_HOME.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "clipy", "library.db")
}

// DefaultDownloadDir returns the default destination directory.
func DefaultDownloadDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Downloads")
}

// DefaultConfigPath returns the default config file location using
// XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "clipy", "config.toml")
}

// Load builds the configuration: defaults, then the optional TOML file,
// then flags and environment overrides.
func Load() (*Config, error) {
	var configPath string
	flag.StringVar(&configPath, "config", DefaultConfigPath(), "Config file path")

	cfg := defaults()
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Library database path")
	flag.StringVar(&cfg.DownloadDir, "download-dir", cfg.DownloadDir, "Download destination directory")
	flag.IntVar(&cfg.MaxConcurrent, "max-concurrent", cfg.MaxConcurrent, "Maximum concurrent downloads")
	flag.StringVar(&cfg.YTDLPPath, "ytdlp", cfg.YTDLPPath, "yt-dlp binary (resolved on PATH when empty)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.Parse()

	// File values fill in anything the flags left at their defaults only
	// when the file exists; a missing default-location file is fine.
	fileCfg := defaults()
	loaded, err := LoadFile(configPath, fileCfg)
	if err != nil {
		return nil, err
	}
	if loaded {
		applyFile(cfg, fileCfg)
	}

	applyEnv(cfg)
	return cfg, nil
}

// LoadFile decodes the TOML file at path into cfg. Returns false without
// error when the file does not exist.
func LoadFile(path string, cfg *Config) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, err
	}
	return true, nil
}

func defaults() *Config {
	return &Config{
		Port:          8090,
		DBPath:        DefaultDBPath(),
		DownloadDir:   DefaultDownloadDir(),
		MaxConcurrent: 3,
		LogLevel:      "info",
		Defaults:      domain.DefaultOptions(),
	}
}

// applyFile copies file values over cfg fields still holding their stock
// defaults, so explicit flags win over the file.
func applyFile(cfg, file *Config) {
	stock := defaults()
	if cfg.Port == stock.Port {
		cfg.Port = file.Port
	}
	if cfg.DBPath == stock.DBPath {
		cfg.DBPath = file.DBPath
	}
	if cfg.DownloadDir == stock.DownloadDir {
		cfg.DownloadDir = file.DownloadDir
	}
	if cfg.MaxConcurrent == stock.MaxConcurrent {
		cfg.MaxConcurrent = file.MaxConcurrent
	}
	if cfg.YTDLPPath == stock.YTDLPPath {
		cfg.YTDLPPath = file.YTDLPPath
	}
	if cfg.LogLevel == stock.LogLevel {
		cfg.LogLevel = file.LogLevel
	}
	cfg.Defaults = file.Defaults
}

// applyEnv applies CLIPY_* environment overrides.
func applyEnv(cfg *Config) {
	if port := os.Getenv("CLIPY_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if db := os.Getenv("CLIPY_DB"); db != "" {
		cfg.DBPath = db
	}
	if dir := os.Getenv("CLIPY_DOWNLOAD_DIR"); dir != "" {
		cfg.DownloadDir = dir
	}
	if max := os.Getenv("CLIPY_MAX_CONCURRENT"); max != "" {
		if n, err := strconv.Atoi(max); err == nil {
			cfg.MaxConcurrent = n
		}
	}
	if bin := os.Getenv("CLIPY_YTDLP"); bin != "" {
		cfg.YTDLPPath = bin
	}
	if level := os.Getenv("CLIPY_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
}
