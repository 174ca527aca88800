package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDir         = ".claude-done"
	DefaultFile        = "config.json"
	DefaultHistoryFile = "history.db"
	DefaultAPIURL      = "https://api.notion.com/v1"
	DefaultAPIVersion  = "2022-06-28"
	DefaultTimeout     = 30 * time.Second

	CodeUnreadable = "CONFIG_UNREADABLE"
	CodeInvalid    = "CONFIG_INVALID"
)

// Config is the process-wide configuration store, loaded once at startup.
// The file is JSON in practice; yaml.v3 reads it as a YAML subset.
type Config struct {
	NotionToken    string `yaml:"notion_token"`
	NotionPageID   string `yaml:"notion_page_id"`
	NotionAPIURL   string `yaml:"notion_api_url"`
	NotionVersion  string `yaml:"notion_version"`
	HistoryDB      string `yaml:"history_db"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DefaultPath returns ~/.claude-done/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDir, DefaultFile), nil
}

// LoadConfig reads path, applies environment overrides and validates the
// result. An empty path selects DefaultPath.
func LoadConfig(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.NotionPageID = NormalizePageID(cfg.NotionPageID)
	return cfg, nil
}

// Read is LoadConfig without credential validation. Dry runs use it since
// they never reach the host.
func Read(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	if strings.TrimSpace(path) == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, unreadable(err, "cannot resolve home directory")
		}
		path = p
	}

	// 2. Load config file
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, unreadable(err, "cannot read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, unreadable(err, "cannot parse config file "+path)
	}

	// 3. Override with Environment Variables if present
	cfg.applyEnv()
	cfg.applyDefaults(filepath.Dir(path))
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("NOTION_TOKEN"); v != "" {
		c.NotionToken = v
	}
	if v := os.Getenv("NOTION_PAGE_ID"); v != "" {
		c.NotionPageID = v
	}
	if v := os.Getenv("DONESYNC_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DONESYNC_HISTORY_DB"); v != "" {
		c.HistoryDB = v
	}
}

func (c *Config) applyDefaults(dir string) {
	if c.NotionAPIURL == "" {
		c.NotionAPIURL = DefaultAPIURL
	}
	if c.NotionVersion == "" {
		c.NotionVersion = DefaultAPIVersion
	}
	if c.HistoryDB == "" {
		c.HistoryDB = filepath.Join(dir, DefaultHistoryFile)
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Validate checks the required credential and parent page.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.NotionToken, validation.Required.Error("notion_token not found in config")),
		validation.Field(&c.NotionPageID, validation.Required.Error("notion_page_id not found in config")),
		validation.Field(&c.TimeoutSeconds, validation.Min(0)),
	)
	if err == nil {
		return nil
	}

	msg := err.Error()
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		// ozzo keys field errors by Go field name since Config has no json tags.
		for _, key := range []string{"NotionToken", "NotionPageID", "TimeoutSeconds"} {
			if fe, ok := fieldErrs[key]; ok {
				msg = fe.Error()
				break
			}
		}
	}
	return goerrors.New(msg, goerrors.CategoryValidation).WithTextCode(CodeInvalid)
}

// Timeout returns the HTTP timeout for host calls.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NormalizePageID renders a page id in dashed UUID form when it parses as
// one, and returns it unchanged otherwise.
func NormalizePageID(id string) string {
	id = strings.TrimSpace(id)
	parsed, err := uuid.Parse(id)
	if err != nil {
		return id
	}
	return parsed.String()
}

func unreadable(err error, msg string) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, msg).WithTextCode(CodeUnreadable)
}
