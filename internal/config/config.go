package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "RIVALWATCH_CONFIG"
	llmProviderEnv  = "LLM_PROVIDER"
	llmAPIKeyEnv    = "LLM_API_KEY"
	llmModelEnv     = "LLM_MODEL"
	serverAddrEnv   = "RIVALWATCH_ADDR"
	upstreamEnv     = "RIVALWATCH_UPSTREAM"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Collector CollectorConfig `yaml:"collector"`
	LLM       LLMConfig       `yaml:"llm"`
	Server    ServerConfig    `yaml:"server"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines when collection runs execute.
type SchedulerConfig struct {
	Interval string         `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// IntervalDuration parses the configured interval, defaulting to daily.
func (s SchedulerConfig) IntervalDuration() time.Duration {
	if d, err := time.ParseDuration(s.Interval); err == nil && d > 0 {
		return d
	}
	return 24 * time.Hour
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// CollectorConfig groups settings for the collection pipeline.
type CollectorConfig struct {
	CompetitorsPath string `yaml:"competitorsPath"`
	ProfilePath     string `yaml:"profilePath"`
	DataDir         string `yaml:"dataDir"`
	SearchEndpoint  string `yaml:"searchEndpoint"`
	MaxRecords      int    `yaml:"maxRecords"`
	GeoScope        string `yaml:"geoScope"`
	MaxConcurrent   int    `yaml:"maxConcurrent"`
	RunTimeout      string `yaml:"runTimeout"`
}

// RunTimeoutDuration parses the per-run deadline; zero means no deadline.
func (c CollectorConfig) RunTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.RunTimeout); err == nil && d > 0 {
		return d
	}
	return 0
}

// LLMConfig selects and configures the model-backed summarizer variant.
// An empty provider or key keeps the rule-based variant.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
	BaseURL  string `yaml:"baseUrl"`
}

// ServerConfig describes the offline-serving cache layer.
type ServerConfig struct {
	Addr       string      `yaml:"addr"`
	Upstream   string      `yaml:"upstream"`
	DataPrefix string      `yaml:"dataPrefix"`
	CacheDir   string      `yaml:"cacheDir"`
	Shell      ShellConfig `yaml:"shell"`
}

// ShellConfig pins the static application resource set and its version.
type ShellConfig struct {
	Version     string   `yaml:"version"`
	Assets      []string `yaml:"assets"`
	OfflinePath string   `yaml:"offlinePath"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(llmProviderEnv); v != "" {
		c.LLM.Provider = v
	}

	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}

	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(upstreamEnv); v != "" {
		c.Server.Upstream = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Scheduler.Interval != "" {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Collector.CompetitorsPath != "" {
		base.Collector.CompetitorsPath = override.Collector.CompetitorsPath
	}
	if override.Collector.ProfilePath != "" {
		base.Collector.ProfilePath = override.Collector.ProfilePath
	}
	if override.Collector.DataDir != "" {
		base.Collector.DataDir = override.Collector.DataDir
	}
	if override.Collector.SearchEndpoint != "" {
		base.Collector.SearchEndpoint = override.Collector.SearchEndpoint
	}
	if override.Collector.MaxRecords > 0 {
		base.Collector.MaxRecords = override.Collector.MaxRecords
	}
	if override.Collector.GeoScope != "" {
		base.Collector.GeoScope = override.Collector.GeoScope
	}
	if override.Collector.MaxConcurrent > 0 {
		base.Collector.MaxConcurrent = override.Collector.MaxConcurrent
	}
	if override.Collector.RunTimeout != "" {
		base.Collector.RunTimeout = override.Collector.RunTimeout
	}

	if override.LLM.Provider != "" {
		base.LLM.Provider = override.LLM.Provider
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.BaseURL != "" {
		base.LLM.BaseURL = override.LLM.BaseURL
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.Upstream != "" {
		base.Server.Upstream = override.Server.Upstream
	}
	if override.Server.DataPrefix != "" {
		base.Server.DataPrefix = override.Server.DataPrefix
	}
	if override.Server.CacheDir != "" {
		base.Server.CacheDir = override.Server.CacheDir
	}
	if override.Server.Shell.Version != "" {
		base.Server.Shell.Version = override.Server.Shell.Version
	}
	if len(override.Server.Shell.Assets) > 0 {
		base.Server.Shell.Assets = override.Server.Shell.Assets
	}
	if override.Server.Shell.OfflinePath != "" {
		base.Server.Shell.OfflinePath = override.Server.Shell.OfflinePath
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{Interval: "24h", Timezone: defaultTimezone, location: tz},
		Collector: CollectorConfig{
			CompetitorsPath: "competitors.json",
			ProfilePath:     "config/profile.json",
			DataDir:         "data",
			SearchEndpoint:  "https://api.gdeltproject.org/api/v2/doc/doc",
			MaxRecords:      50,
			GeoScope:        `(sourcecountry:ZA OR "South Africa" OR Gauteng)`,
			MaxConcurrent:   6,
			RunTimeout:      "10m",
		},
		LLM: LLMConfig{
			Provider: "",
			Model:    "gpt-4o-mini",
		},
		Server: ServerConfig{
			Addr:       ":8080",
			Upstream:   "",
			DataPrefix: "/data/",
			CacheDir:   ".rivalwatch",
			Shell: ShellConfig{
				Version:     "v1.0.0",
				Assets:      []string{"/index.html", "/styles.css", "/app.js", "/manifest.webmanifest", "/offline.html"},
				OfflinePath: "/offline.html",
			},
		},
	}
}
