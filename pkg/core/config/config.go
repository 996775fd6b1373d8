package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
	mdwlog "github.com/msto63/kylang/foundation/core/log"
)

// EnvConfigPath names the environment variable holding the config file path
const EnvConfigPath = "KYLANG_CONFIG"

// Prompt modes for input statements
const (
	PromptAuto   = "auto"
	PromptAlways = "always"
	PromptNever  = "never"
)

// Config holds the complete application configuration
type Config struct {
	Interpreter InterpreterConfig `toml:"interpreter" yaml:"interpreter"`
	Logging     LoggingConfig     `toml:"logging" yaml:"logging"`
	History     HistoryConfig     `toml:"history" yaml:"history"`
	Server      ServerConfig      `toml:"server" yaml:"server"`
	Watch       WatchConfig       `toml:"watch" yaml:"watch"`
}

// InterpreterConfig holds settings for local runs
type InterpreterConfig struct {
	// PromptInput is auto (prompt when stdin is a terminal), always or never
	PromptInput       string `toml:"prompt_input" yaml:"prompt_input"`
	InputPromptFormat string `toml:"input_prompt_format" yaml:"input_prompt_format"`
	MaxSteps          int64  `toml:"max_steps" yaml:"max_steps"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	Output string `toml:"output" yaml:"output"`
}

// HistoryConfig holds run history settings
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// ServerConfig holds playground server settings
type ServerConfig struct {
	Host           string   `toml:"host" yaml:"host"`
	Port           int      `toml:"port" yaml:"port"`
	ReadTimeout    Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout" yaml:"write_timeout"`
	MaxSourceBytes int      `toml:"max_source_bytes" yaml:"max_source_bytes"`
	MaxSteps       int64    `toml:"max_steps" yaml:"max_steps"`
	RunTimeout     Duration `toml:"run_timeout" yaml:"run_timeout"`
}

// WatchConfig holds settings for run --watch
type WatchConfig struct {
	Debounce Duration `toml:"debounce" yaml:"debounce"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalYAML formats the duration as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, mdwerror.Newf("config file not found: %s", path).
			WithCode(mdwerror.CodeFileNotFound).
			WithOperation("config.load").
			WithDetail("path", path)
	}
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to read config").
			WithCode(mdwerror.CodeIOError).
			WithOperation("config.load")
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return nil, mdwerror.Newf("unsupported config format %q", filepath.Ext(path)).
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.load").
			WithDetail("path", path)
	}
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse config").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.load").
			WithDetail("path", path)
	}

	// Apply defaults
	cfg.applyDefaults()

	// Expand environment variables in paths
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from the KYLANG_CONFIG environment variable
// or the first default location that exists
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		// Try default locations
		defaultPaths := []string{
			"./kylang.toml",
			"./kylang.yaml",
			"./configs/kylang.toml",
			filepath.Join(os.Getenv("HOME"), ".config/kylang/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return nil, mdwerror.New("no config file found, set KYLANG_CONFIG or create kylang.toml").
			WithCode(mdwerror.CodeFileNotFound).
			WithOperation("config.load")
	}

	return Load(path)
}

// Resolve loads path when given; otherwise it searches like LoadFromEnv and
// falls back to Default when no file exists
func Resolve(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg, err := LoadFromEnv()
	if err != nil && mdwerror.GetCode(err) == mdwerror.CodeFileNotFound && os.Getenv(EnvConfigPath) == "" {
		return Default(), nil
	}
	return cfg, err
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// Interpreter
	if c.Interpreter.PromptInput == "" {
		c.Interpreter.PromptInput = PromptAuto
	}
	if c.Interpreter.InputPromptFormat == "" {
		c.Interpreter.InputPromptFormat = "Enter value for %s: "
	}

	// Logging
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}

	// History
	if c.History.Path == "" {
		c.History.Path = "./data/kylang-history.db"
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8420
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 60 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 10 * time.Second
	}
	if c.Server.MaxSourceBytes == 0 {
		c.Server.MaxSourceBytes = 64 * 1024
	}
	if c.Server.MaxSteps == 0 {
		c.Server.MaxSteps = 1_000_000
	}
	if c.Server.RunTimeout.Duration == 0 {
		c.Server.RunTimeout.Duration = 5 * time.Second
	}

	// Watch
	if c.Watch.Debounce.Duration == 0 {
		c.Watch.Debounce.Duration = 200 * time.Millisecond
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.History.Path = os.ExpandEnv(c.History.Path)
	c.Logging.Output = os.ExpandEnv(c.Logging.Output)
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	var problems []string

	switch c.Interpreter.PromptInput {
	case PromptAuto, PromptAlways, PromptNever:
	default:
		problems = append(problems, fmt.Sprintf("interpreter.prompt_input must be auto, always or never, got %q", c.Interpreter.PromptInput))
	}
	if strings.Count(c.Interpreter.InputPromptFormat, "%s") != 1 {
		problems = append(problems, "interpreter.input_prompt_format must contain exactly one %s")
	}
	if c.Interpreter.MaxSteps < 0 {
		problems = append(problems, "interpreter.max_steps must not be negative")
	}
	if _, err := mdwlog.ParseLevel(c.Logging.Level); err != nil {
		problems = append(problems, "logging.level: "+err.Error())
	}
	if _, err := mdwlog.ParseFormat(c.Logging.Format); err != nil {
		problems = append(problems, "logging.format: "+err.Error())
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.MaxSourceBytes < 0 {
		problems = append(problems, "server.max_source_bytes must not be negative")
	}
	if c.Server.MaxSteps < 0 {
		problems = append(problems, "server.max_steps must not be negative")
	}

	if len(problems) > 0 {
		return mdwerror.New("invalid configuration: "+strings.Join(problems, "; ")).
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.validate").
			WithDetail("problems", problems)
	}
	return nil
}

// ServerAddress returns the listen address of the playground server
func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
