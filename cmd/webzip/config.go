package main

import (
	"os"
	"time"

	"github.com/go-shiori/webzip"
	"github.com/go-shiori/webzip/matrixbot"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables which override secrets from the config file.
const (
	envPDFAPIKey       = "WEBZIP_PDF_API_KEY"
	envScreenshotToken = "WEBZIP_SCREENSHOT_TOKEN"
	envMatrixToken     = "WEBZIP_MATRIX_TOKEN"
)

var (
	ErrMissingHomeserver  = errors.New("homeserver is required")
	ErrMissingUserID      = errors.New("user_id is required")
	ErrMissingAccessToken = errors.New("access_token is required")
	ErrInvalidLogLevel    = errors.New("log_level must be one of: debug, info, warn, error")
	ErrInvalidConcurrency = errors.New("max_concurrent_requests and max_queued_requests must not be negative")
)

type config struct {
	Homeserver            string         `yaml:"homeserver"`
	UserID                string         `yaml:"user_id"`
	AccessToken           string         `yaml:"access_token"`
	AutoJoin              bool           `yaml:"auto_join"`
	MaxConcurrentRequests int64          `yaml:"max_concurrent_requests"`
	MaxQueuedRequests     int64          `yaml:"max_queued_requests"`
	LogLevel              string         `yaml:"log_level"`
	Archiver              archiverConfig `yaml:"archiver"`
}

type archiverConfig struct {
	Command   string `yaml:"command"`
	BotName   string `yaml:"bot_name"`
	UserAgent string `yaml:"user_agent"`

	SnapshotEndpoint   string `yaml:"snapshot_endpoint"`
	PDFEndpoint        string `yaml:"pdf_endpoint"`
	PDFAPIKey          string `yaml:"pdf_api_key"`
	ScreenshotEndpoint string `yaml:"screenshot_endpoint"`
	ScreenshotToken    string `yaml:"screenshot_token"`

	SnapshotTimeout   time.Duration `yaml:"snapshot_timeout"`
	PDFTimeout        time.Duration `yaml:"pdf_timeout"`
	HTMLTimeout       time.Duration `yaml:"html_timeout"`
	ScreenshotTimeout time.Duration `yaml:"screenshot_timeout"`
	DownloadTimeout   time.Duration `yaml:"download_timeout"`

	MaxFileSize int64 `yaml:"max_file_size"`
	Insecure    bool  `yaml:"insecure"`
	Verbose     bool  `yaml:"verbose"`
}

func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML")
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return &cfg, nil
}

// applyEnv overrides secrets with the ones from environment, if set.
func (c *config) applyEnv() {
	if value := os.Getenv(envMatrixToken); value != "" {
		c.AccessToken = value
	}
	c.Archiver.applyEnv()
}

func (c *archiverConfig) applyEnv() {
	if value := os.Getenv(envPDFAPIKey); value != "" {
		c.PDFAPIKey = value
	}

	if value := os.Getenv(envScreenshotToken); value != "" {
		c.ScreenshotToken = value
	}
}

func (c *config) validate() error {
	if c.Homeserver == "" {
		return ErrMissingHomeserver
	}

	if c.UserID == "" {
		return ErrMissingUserID
	}

	if c.AccessToken == "" {
		return ErrMissingAccessToken
	}

	if c.MaxConcurrentRequests < 0 || c.MaxQueuedRequests < 0 {
		return ErrInvalidConcurrency
	}

	if _, err := c.logLevel(); err != nil {
		return err
	}

	return nil
}

func (c *config) logLevel() (logrus.Level, error) {
	switch c.LogLevel {
	case "":
		return logrus.InfoLevel, nil
	case "debug", "info", "warn", "error":
		return logrus.ParseLevel(c.LogLevel)
	default:
		return logrus.InfoLevel, ErrInvalidLogLevel
	}
}

func (c *config) botConfig() matrixbot.Config {
	return matrixbot.Config{
		Homeserver:            c.Homeserver,
		UserID:                c.UserID,
		AccessToken:           c.AccessToken,
		AutoJoin:              c.AutoJoin,
		MaxConcurrentRequests: c.MaxConcurrentRequests,
		MaxQueuedRequests:     c.MaxQueuedRequests,
	}
}

// newArchiver creates a validated archiver from this config.
func (c archiverConfig) newArchiver() *webzip.Archiver {
	arc := &webzip.Archiver{
		Command:   c.Command,
		BotName:   c.BotName,
		UserAgent: c.UserAgent,

		EnableLog:        true,
		EnableVerboseLog: c.Verbose,

		SnapshotEndpoint:   c.SnapshotEndpoint,
		PDFEndpoint:        c.PDFEndpoint,
		PDFAPIKey:          c.PDFAPIKey,
		ScreenshotEndpoint: c.ScreenshotEndpoint,
		ScreenshotToken:    c.ScreenshotToken,

		SnapshotTimeout:   c.SnapshotTimeout,
		PDFTimeout:        c.PDFTimeout,
		HTMLTimeout:       c.HTMLTimeout,
		ScreenshotTimeout: c.ScreenshotTimeout,
		DownloadTimeout:   c.DownloadTimeout,

		MaxFileSize:         c.MaxFileSize,
		SkipTLSVerification: c.Insecure,
	}

	arc.Validate()
	return arc
}
