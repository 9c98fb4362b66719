package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for worktime
type Config struct {
	// Sensing
	TargetApps    []Pattern     `yaml:"target_apps"`
	IdleSensor    string        `yaml:"idle_sensor" env:"WORKTIME_IDLE_SENSOR"`
	IdleThreshold time.Duration `yaml:"idle_threshold" env:"WORKTIME_IDLE_THRESHOLD"`
	TickInterval  time.Duration `yaml:"tick_interval" env:"WORKTIME_TICK_INTERVAL"`
	SensorTimeout time.Duration `yaml:"sensor_timeout" env:"WORKTIME_SENSOR_TIMEOUT"`

	// Daily milestones
	Thresholds []Threshold `yaml:"thresholds"`

	// Storage
	DataFile string `yaml:"data_file" env:"WORKTIME_DATA_FILE"`

	// Notification settings
	Notifier   string          `yaml:"notifier" env:"WORKTIME_NOTIFIER"`
	NtfyTopic  string          `yaml:"ntfy_topic" env:"WORKTIME_NTFY_TOPIC"`
	NtfyServer string          `yaml:"ntfy_server" env:"WORKTIME_NTFY_SERVER"`
	Quiet      bool            `yaml:"quiet" env:"WORKTIME_QUIET"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`

	// Output
	LogLevel   string `yaml:"log_level" env:"WORKTIME_LOG_LEVEL"`
	LogFormat  string `yaml:"log_format" env:"WORKTIME_LOG_FORMAT"`
	StatusLine bool   `yaml:"status_line" env:"WORKTIME_STATUS_LINE"`
}

// Pattern matches the name or command line of the target application.
type Pattern struct {
	Name        string         `yaml:"name"`
	Regex       string         `yaml:"regex"`
	Description string         `yaml:"description"`
	Enabled     bool           `yaml:"enabled"`
	compiled    *regexp.Regexp `yaml:"-"`
}

// CompiledRegex returns the compiled regular expression
func (p *Pattern) CompiledRegex() *regexp.Regexp {
	return p.compiled
}

// SetCompiledRegex sets the compiled regular expression
func (p *Pattern) SetCompiledRegex(re *regexp.Regexp) {
	p.compiled = re
}

// Threshold is a named daily work-time milestone.
type Threshold struct {
	Name  string        `yaml:"name"`
	After time.Duration `yaml:"after"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxMessages int           `yaml:"max_messages"`
}

// Notifier kinds.
const (
	NotifierDesktop = "desktop"
	NotifierNtfy    = "ntfy"
	NotifierStdout  = "stdout"
	NotifierNone    = "none"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TargetApps: []Pattern{
			{
				Name:        "code",
				Regex:       `^(code|Code|code-oss|Code Helper)$`,
				Description: "Visual Studio Code",
				Enabled:     true,
			},
		},
		IdleSensor:    "auto",
		IdleThreshold: 120 * time.Second,
		TickInterval:  time.Second,
		SensorTimeout: 5 * time.Second,
		Thresholds: []Threshold{
			{Name: "6h", After: 6 * time.Hour},
			{Name: "8h", After: 8 * time.Hour},
			{Name: "10h", After: 10 * time.Hour},
		},
		DataFile:   defaultDataFile(),
		Notifier:   NotifierDesktop,
		NtfyServer: "https://ntfy.sh",
		RateLimit: RateLimitConfig{
			Window:      time.Minute,
			MaxMessages: 5,
		},
		LogLevel:   "info",
		LogFormat:  "text",
		StatusLine: true,
	}
}

// Load loads configuration from file, .env and environment. Flags, if any,
// are applied afterwards with ApplyFlags.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Try to load from config file
	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := loadDotEnv(configPath); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	// Override with environment variables
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := Finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize compiles patterns and validates cfg. Call it again after
// changing fields by hand.
func Finalize(cfg *Config) error {
	if err := compilePatterns(cfg); err != nil {
		return fmt.Errorf("failed to compile patterns: %w", err)
	}
	if err := validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	// Check for explicit config path
	if path := os.Getenv("WORKTIME_CONFIG"); path != "" {
		return path
	}

	// Check XDG config directory
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "worktime", "config.yaml")
	}

	// Fall back to home directory
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "worktime", "config.yaml")
	}

	return ""
}

// defaultDataFile returns the session log location under XDG_DATA_HOME.
func defaultDataFile() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "worktime", "sessions.json")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "worktime", "sessions.json")
	}
	return "sessions.json"
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadDotEnv loads WORKTIME_ENV_FILE, or a .env next to the config file.
// Variables already set in the environment win.
func loadDotEnv(configPath string) error {
	path := os.Getenv("WORKTIME_ENV_FILE")
	explicit := path != ""
	if !explicit && configPath != "" {
		path = filepath.Join(filepath.Dir(configPath), ".env")
	}
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("WORKTIME_IDLE_SENSOR"); v != "" {
		cfg.IdleSensor = v
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"WORKTIME_IDLE_THRESHOLD", &cfg.IdleThreshold},
		{"WORKTIME_TICK_INTERVAL", &cfg.TickInterval},
		{"WORKTIME_SENSOR_TIMEOUT", &cfg.SensorTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	if v := os.Getenv("WORKTIME_TARGET_APPS"); v != "" {
		cfg.TargetApps = nil
		for _, name := range strings.Split(v, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			cfg.TargetApps = append(cfg.TargetApps, Pattern{
				Name:    name,
				Regex:   "^" + regexp.QuoteMeta(name) + "$",
				Enabled: true,
			})
		}
	}

	if v := os.Getenv("WORKTIME_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("WORKTIME_NOTIFIER"); v != "" {
		cfg.Notifier = v
	}
	if v := os.Getenv("WORKTIME_NTFY_TOPIC"); v != "" {
		cfg.NtfyTopic = v
	}
	if v := os.Getenv("WORKTIME_NTFY_SERVER"); v != "" {
		cfg.NtfyServer = v
	}
	if v := os.Getenv("WORKTIME_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("WORKTIME_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"WORKTIME_QUIET", &cfg.Quiet},
		{"WORKTIME_STATUS_LINE", &cfg.StatusLine},
	}
	for _, b := range bools {
		v := os.Getenv(b.key)
		if v == "" {
			continue
		}
		switch v {
		case "true", "1", "yes":
			*b.dst = true
		case "false", "0", "no":
			*b.dst = false
		default:
			return fmt.Errorf("invalid %s value: %q (use true/false)", b.key, v)
		}
	}

	return nil
}

// Flags are command-line overrides bound by BindFlags.
type Flags struct {
	ConfigPath    string
	DataFile      string
	TargetApps    []string
	IdleSensor    string
	IdleThreshold time.Duration
	Notifier      string
	Quiet         bool
	LogLevel      string
	NoStatusLine  bool
}

// BindFlags registers the overrides on fs.
func BindFlags(fs *flag.FlagSet, f *Flags) {
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.StringVar(&f.DataFile, "data-file", "", "Path to the session log")
	fs.StringSliceVar(&f.TargetApps, "app", nil, "Target application process name (repeatable)")
	fs.StringVar(&f.IdleSensor, "idle-sensor", "", "Idle sensor: auto|xprintidle|mutter|tmux|ioreg|none")
	fs.DurationVar(&f.IdleThreshold, "idle-threshold", 0, "Idle time after which work pauses")
	fs.StringVar(&f.Notifier, "notifier", "", "Notifier: desktop|ntfy|stdout|none")
	fs.BoolVar(&f.Quiet, "quiet", false, "Disable all notifications")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	fs.BoolVar(&f.NoStatusLine, "no-status", false, "Do not draw the terminal status line")
}

// LoadWithFlags points the loader at --config, loads, then applies the
// flags that were actually set on fs.
func LoadWithFlags(fs *flag.FlagSet, f *Flags) (*Config, error) {
	if f.ConfigPath != "" {
		if err := os.Setenv("WORKTIME_CONFIG", f.ConfigPath); err != nil {
			return nil, fmt.Errorf("error setting config path: %w", err)
		}
	}

	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	changed := func(name string) bool {
		fl := fs.Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("data-file") {
		cfg.DataFile = f.DataFile
	}
	if changed("app") {
		cfg.TargetApps = nil
		for _, name := range f.TargetApps {
			cfg.TargetApps = append(cfg.TargetApps, Pattern{
				Name:    name,
				Regex:   "^" + regexp.QuoteMeta(name) + "$",
				Enabled: true,
			})
		}
	}
	if changed("idle-sensor") {
		cfg.IdleSensor = f.IdleSensor
	}
	if changed("idle-threshold") {
		cfg.IdleThreshold = f.IdleThreshold
	}
	if changed("notifier") {
		cfg.Notifier = f.Notifier
	}
	if changed("quiet") {
		cfg.Quiet = f.Quiet
	}
	if changed("log-level") {
		cfg.LogLevel = f.LogLevel
	}
	if changed("no-status") {
		cfg.StatusLine = !f.NoStatusLine
	}

	if err := Finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// compilePatterns compiles all regex patterns
func compilePatterns(cfg *Config) error {
	for i := range cfg.TargetApps {
		pattern := &cfg.TargetApps[i]
		if pattern.Enabled && pattern.Regex != "" {
			re, err := regexp.Compile(pattern.Regex)
			if err != nil {
				return fmt.Errorf("failed to compile pattern %q: %w", pattern.Name, err)
			}
			pattern.SetCompiledRegex(re)
		}
	}
	return nil
}

// validate validates the configuration
func validate(cfg *Config) error {
	enabled := 0
	for _, p := range cfg.TargetApps {
		if p.Enabled && p.Regex != "" {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one enabled target_apps pattern is required")
	}

	if cfg.IdleThreshold <= 0 {
		return fmt.Errorf("idle_threshold must be positive")
	}
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}
	if cfg.SensorTimeout < 0 {
		return fmt.Errorf("sensor_timeout must be non-negative")
	}

	seen := make(map[string]bool)
	for _, th := range cfg.Thresholds {
		if th.Name == "" {
			return fmt.Errorf("thresholds need a name")
		}
		if seen[th.Name] {
			return fmt.Errorf("duplicate threshold %q", th.Name)
		}
		seen[th.Name] = true
		if th.After <= 0 {
			return fmt.Errorf("threshold %q must be positive", th.Name)
		}
	}

	if cfg.DataFile == "" {
		return fmt.Errorf("data_file is required")
	}

	switch cfg.Notifier {
	case NotifierDesktop, NotifierStdout, NotifierNone:
	case NotifierNtfy:
		if cfg.NtfyTopic == "" && !cfg.Quiet {
			return fmt.Errorf("ntfy_topic is required when notifier is ntfy")
		}
	default:
		return fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}

	if cfg.RateLimit.MaxMessages < 0 {
		return fmt.Errorf("rate_limit.max_messages must be non-negative")
	}
	if cfg.RateLimit.Window < 0 {
		return fmt.Errorf("rate_limit.window must be non-negative")
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", cfg.LogFormat)
	}

	return nil
}
