/*
Package config resolves the data directory, timeouts, upstream provider and
notification settings. Values are layered: defaults, then an optional YAML
file, then the environment (including a .env file).
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	AppName = "earningswatch"

	ProviderYahoo = "yahoo"
	ProviderFMP   = "fmp"

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	watchlistFileName = "watchlist.json"
	historyFileName   = "notify_history.json"
	configFileName    = "config.yaml"
	pdfDirName        = "pdfs"
	chartDirName      = "charts"
)

type Email struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	SMTPUser   string `yaml:"smtp_user"`
	SMTPPass   string `yaml:"smtp_pass"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (e Email) Enabled() bool {
	return e.SMTPServer != "" && e.SMTPUser != "" && e.SMTPPass != "" && e.ToEmail != ""
}

type Config struct {
	DataHome string `yaml:"data_home"`
	Provider string `yaml:"provider"`
	FMPKey   string `yaml:"fmp_key"`

	UserAgent       string        `yaml:"user_agent"`
	ResolveTimeout  time.Duration `yaml:"resolve_timeout"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`
	NotifyInterval  time.Duration `yaml:"notify_interval"`

	Email Email `yaml:"email"`
}

func Default() Config {
	return Config{
		DataHome:        defaultDataHome(),
		Provider:        ProviderYahoo,
		UserAgent:       DefaultUserAgent,
		ResolveTimeout:  20 * time.Second,
		FetchTimeout:    15 * time.Second,
		DownloadTimeout: 30 * time.Second,
		NotifyInterval:  25 * time.Second,
		Email: Email{
			SMTPServer: "smtp.gmail.com",
			SMTPPort:   587,
		},
	}
}

// Load layers the YAML file at path (or <data home>/config.yaml when path is
// empty) and the environment over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	// .env is optional
	_ = godotenv.Load()

	if home := os.Getenv("EARNINGSWATCH_HOME"); home != "" {
		cfg.DataHome = home
	}

	explicit := path != ""
	if !explicit {
		path = filepath.Join(cfg.DataHome, configFileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("EARNINGSWATCH_HOME"); v != "" {
		c.DataHome = v
	}
	if v := os.Getenv("EARNINGSWATCH_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("FMP_KEY"); v != "" {
		c.FMPKey = v
	}
	if v := os.Getenv("SMTP_SERVER"); v != "" {
		c.Email.SMTPServer = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SMTP_PORT %q: %w", v, err)
		}
		c.Email.SMTPPort = port
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		c.Email.SMTPUser = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		c.Email.SMTPPass = v
	}
	if v := os.Getenv("TO_EMAIL"); v != "" {
		c.Email.ToEmail = v
	}
	if v := os.Getenv("FROM_EMAIL"); v != "" {
		c.Email.FromEmail = v
	}
	return nil
}

func (c *Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	switch c.Provider {
	case ProviderYahoo:
	case ProviderFMP:
		if c.FMPKey == "" {
			return fmt.Errorf("provider %q requires an API key (fmp_key or FMP_KEY)", c.Provider)
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	if c.DataHome == "" {
		return errors.New("data home is empty")
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.ResolveTimeout <= 0 || c.FetchTimeout <= 0 || c.DownloadTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.NotifyInterval <= 0 {
		return errors.New("notify interval must be positive")
	}
	if c.Email.FromEmail == "" {
		c.Email.FromEmail = c.Email.SMTPUser
	}
	return nil
}

func (c Config) WatchlistPath() string { return filepath.Join(c.DataHome, watchlistFileName) }
func (c Config) HistoryPath() string   { return filepath.Join(c.DataHome, historyFileName) }
func (c Config) PDFDir() string        { return filepath.Join(c.DataHome, pdfDirName) }
func (c Config) ChartDir() string      { return filepath.Join(c.DataHome, chartDirName) }

// EnsureDirs creates the data home and its artifact directories.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.DataHome, c.PDFDir(), c.ChartDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func defaultDataHome() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), AppName)
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Local", AppName)
	}
	return filepath.Join(home, ".local", "share", AppName)
}
