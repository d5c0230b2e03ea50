// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Engine names the scraper implementation serving /pbfcm/scrape.
const (
	EngineHeadless = "headless"
	EngineStatic   = "static"
)

// DefaultTargetURL is the page this service exists to scrape.
const DefaultTargetURL = "https://www.pbfcm.com/taxsale.html"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124 Safari/537.36"

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Scraper ScraperConfig `mapstructure:"scraper"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// ScraperConfig governs the scrape pipeline and browser behavior.
type ScraperConfig struct {
	Engine            string  `mapstructure:"engine"`
	TargetURL         string  `mapstructure:"target_url"`
	UserAgent         string  `mapstructure:"user_agent"`
	NavTimeoutSeconds int     `mapstructure:"nav_timeout_seconds"`
	SettleMillis      int     `mapstructure:"settle_ms"`
	BlockResources    bool    `mapstructure:"block_resources"`
	TargetQPS         float64 `mapstructure:"target_qps"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PBFCM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Deployment convention: a bare PORT overrides the listen port.
	if err := v.BindEnv("server.port", "PBFCM_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind port env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("scraper.engine", EngineHeadless)
	v.SetDefault("scraper.target_url", DefaultTargetURL)
	v.SetDefault("scraper.user_agent", defaultUserAgent)
	v.SetDefault("scraper.nav_timeout_seconds", 30)
	v.SetDefault("scraper.settle_ms", 400)
	v.SetDefault("scraper.block_resources", true)
	v.SetDefault("scraper.target_qps", 1.0)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Scraper.Engine != EngineHeadless && c.Scraper.Engine != EngineStatic {
		return fmt.Errorf("scraper.engine must be %q or %q", EngineHeadless, EngineStatic)
	}
	if c.Scraper.TargetURL == "" {
		return fmt.Errorf("scraper.target_url must be set")
	}
	if c.Scraper.NavTimeoutSeconds <= 0 {
		return fmt.Errorf("scraper.nav_timeout_seconds must be > 0")
	}
	return nil
}

// NavTimeout converts the navigation timeout config into a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Scraper.NavTimeoutSeconds) * time.Second
}

// SettleDelay converts the post-load settle config into a duration.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.Scraper.SettleMillis) * time.Millisecond
}
