package config

import (
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Scraper    ScraperConfig    `yaml:"scraper"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Import     ImportConfig     `yaml:"import"`
}

// WorkerPoolConfig holds the configuration for the price alert worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are present.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	SSL             bool     `yaml:"ssl"`
	ScrapeLogLimit  int      `yaml:"scrape_log_limit"`
}

// CacheTTL returns the response cache lifetime.
func (s ServerConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// ScraperConfig holds the scraper-related configuration.
type ScraperConfig struct {
	Enabled         bool           `yaml:"enabled"`
	IntervalSeconds int            `yaml:"interval_seconds"`
	Interval        time.Duration  `yaml:"-"` // Ignored by YAML parser
	HTTPProxy       string         `yaml:"http_proxy"`
	TimeoutSeconds  int            `yaml:"timeout_seconds"`
	MaxRetries      int            `yaml:"max_retries"`
	DelayMinSeconds int            `yaml:"request_delay_min_seconds"`
	DelayMaxSeconds int            `yaml:"request_delay_max_seconds"`
	UserAgents      []string       `yaml:"user_agents"`
	Sources         []SourceConfig `yaml:"sources"`
}

// SourceConfig describes one listing site to scrape.
type SourceConfig struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// EnabledSources returns the sources that should be scraped, in config order.
func (s ScraperConfig) EnabledSources() []SourceConfig {
	var out []SourceConfig
	for _, src := range s.Sources {
		if src.Enabled {
			out = append(out, src)
		}
	}
	return out
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
	ApplyIndexes           bool   `yaml:"apply_indexes"`
}

// ImportConfig guards the manual import endpoint.
type ImportConfig struct {
	Token string `yaml:"token"`
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14.7; rv:133.0) Gecko/20100101 Firefox/133.0",
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.ApplyDefaults()
	return &cfg, nil
}

// applyEnv lets secrets live in the environment (or a .env file) instead of the YAML.
func (cfg *Config) applyEnv() {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("IMPORT_TOKEN"); v != "" {
		cfg.Import.Token = v
	}
	if v := os.Getenv("VAPID_PUBLIC_KEY"); v != "" {
		cfg.Push.PublicKey = v
	}
	if v := os.Getenv("VAPID_PRIVATE_KEY"); v != "" {
		cfg.Push.PrivateKey = v
	}
}

// ApplyDefaults fills zero values. Load calls it; tests building a Config by hand may too.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}
	if cfg.Server.ScrapeLogLimit <= 0 {
		cfg.Server.ScrapeLogLimit = 50
	}

	if cfg.Scraper.IntervalSeconds <= 0 {
		cfg.Scraper.IntervalSeconds = 6 * 60 * 60
	}
	cfg.Scraper.Interval = time.Duration(cfg.Scraper.IntervalSeconds) * time.Second
	if cfg.Scraper.TimeoutSeconds <= 0 {
		cfg.Scraper.TimeoutSeconds = 30
	}
	if cfg.Scraper.MaxRetries <= 0 {
		cfg.Scraper.MaxRetries = 3
	}
	if cfg.Scraper.DelayMinSeconds == 0 && cfg.Scraper.DelayMaxSeconds == 0 {
		cfg.Scraper.DelayMinSeconds, cfg.Scraper.DelayMaxSeconds = 2, 5
	}
	if cfg.Scraper.DelayMinSeconds < 0 {
		cfg.Scraper.DelayMinSeconds = 0
	}
	if cfg.Scraper.DelayMaxSeconds < cfg.Scraper.DelayMinSeconds {
		cfg.Scraper.DelayMaxSeconds = cfg.Scraper.DelayMinSeconds
	}
	if len(cfg.Scraper.UserAgents) == 0 {
		cfg.Scraper.UserAgents = defaultUserAgents
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}
}
