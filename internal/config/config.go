// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/landing-preview/internal/detector"
)

// Pre-warm modes.
const (
	PrewarmModeSimulate = "simulate"
	PrewarmModeLive     = "live"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Registry RegistryConfig `mapstructure:"registry"`
	Detector DetectorConfig `mapstructure:"detector"`
	Prewarm  PrewarmConfig  `mapstructure:"prewarm"`
	Site     SiteConfig     `mapstructure:"site"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int    `mapstructure:"port"`
	PublicBaseURL         string `mapstructure:"public_base_url"`
	StaticDir             string `mapstructure:"static_dir"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds"`
}

// RegistryConfig selects the test data registry.
type RegistryConfig struct {
	Preset string `mapstructure:"preset"`
	File   string `mapstructure:"file"`
}

// DetectorConfig lists crawler signatures.
type DetectorConfig struct {
	Signatures      []string `mapstructure:"signatures"`
	ExtraSignatures []string `mapstructure:"extra_signatures"`
}

// PrewarmConfig controls the pre-warm fan-out.
type PrewarmConfig struct {
	Mode             string   `mapstructure:"mode"`
	SimulatedDelayMs int      `mapstructure:"simulated_delay_ms"`
	FetchTimeoutMs   int      `mapstructure:"fetch_timeout_ms"`
	Policy           string   `mapstructure:"policy"`
	UserAgents       []string `mapstructure:"user_agents"`
}

// SiteConfig holds the constant parts of rendered documents.
type SiteConfig struct {
	Name     string `mapstructure:"name"`
	HomePath string `mapstructure:"home_path"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PREVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "PREVIEW_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind port env: %w", err)
	}

	setDefaults(v)

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
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.public_base_url", "")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.request_timeout_seconds", 60)
	v.SetDefault("registry.preset", "picsum")
	v.SetDefault("registry.file", "")
	v.SetDefault("detector.signatures", detector.DefaultSignatures)
	v.SetDefault("detector.extra_signatures", []string{})
	v.SetDefault("prewarm.mode", PrewarmModeSimulate)
	v.SetDefault("prewarm.simulated_delay_ms", 100)
	v.SetDefault("prewarm.fetch_timeout_ms", 2000)
	v.SetDefault("prewarm.policy", "all")
	v.SetDefault("prewarm.user_agents", detector.DefaultUserAgents)
	v.SetDefault("site.name", "Twitter OG Test")
	v.SetDefault("site.home_path", "/")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("server.request_timeout_seconds must be > 0")
	}
	if c.Registry.File == "" && c.Registry.Preset == "" {
		return fmt.Errorf("registry.preset or registry.file must be set")
	}
	switch c.Prewarm.Mode {
	case PrewarmModeSimulate, PrewarmModeLive:
	default:
		return fmt.Errorf("prewarm.mode must be %q or %q, got %q", PrewarmModeSimulate, PrewarmModeLive, c.Prewarm.Mode)
	}
	switch c.Prewarm.Policy {
	case "all", "any":
	default:
		return fmt.Errorf("prewarm.policy must be \"all\" or \"any\", got %q", c.Prewarm.Policy)
	}
	if c.Prewarm.SimulatedDelayMs < 0 {
		return fmt.Errorf("prewarm.simulated_delay_ms must be >= 0")
	}
	if c.Prewarm.FetchTimeoutMs <= 0 {
		return fmt.Errorf("prewarm.fetch_timeout_ms must be > 0")
	}
	if len(c.Prewarm.UserAgents) == 0 {
		return fmt.Errorf("prewarm.user_agents must not be empty")
	}
	if !strings.HasPrefix(c.Site.HomePath, "/") {
		return fmt.Errorf("site.home_path must start with /")
	}
	return nil
}

// Signatures merges the base and extra crawler signatures.
func (c Config) Signatures() []string {
	out := make([]string, 0, len(c.Detector.Signatures)+len(c.Detector.ExtraSignatures))
	out = append(out, c.Detector.Signatures...)
	return append(out, c.Detector.ExtraSignatures...)
}

// FetchTimeout is the per-fetch pre-warm bound.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Prewarm.FetchTimeoutMs) * time.Millisecond
}

// SimulatedDelay is the placeholder fetch latency.
func (c Config) SimulatedDelay() time.Duration {
	return time.Duration(c.Prewarm.SimulatedDelayMs) * time.Millisecond
}

// RequestTimeout bounds each HTTP request.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}
