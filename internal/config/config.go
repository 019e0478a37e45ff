package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where the CLI looks for configuration when --config is not given.
const DefaultConfigPath = "ferlint.yaml"

// Config holds all ferlint configuration.
type Config struct {
	// Analyzer settings
	Analyzer AnalyzerConfig `yaml:"analyzer"`

	// CPython syntax confirmation
	Syntax SyntaxConfig `yaml:"syntax"`

	// External style checker (pylint)
	Style StyleConfig `yaml:"style"`

	// Analysis artifact
	Output OutputConfig `yaml:"output"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Submission watcher
	Watch WatchConfig `yaml:"watch"`
}

// AnalyzerConfig configures source acquisition.
type AnalyzerConfig struct {
	// ExerciseFile is read when the analyzed path is a directory.
	ExerciseFile string `yaml:"exercise_file"`
}

// SyntaxConfig configures the CPython compile check that backs up the
// tree-sitter parse. The submission is parsed, never executed.
type SyntaxConfig struct {
	Enabled bool `yaml:"enabled"`
	// Command is the binary followed by its arguments; the submission path is appended.
	Command []string `yaml:"command"`
	Timeout string   `yaml:"timeout"`
}

// StyleConfig configures the pylint pass.
type StyleConfig struct {
	Enabled bool `yaml:"enabled"`
	// Command is the binary followed by its arguments; the submission path is appended.
	Command        []string `yaml:"command"`
	Timeout        string   `yaml:"timeout"`
	MaxOutputBytes int64    `yaml:"max_output_bytes"`
}

// OutputConfig configures the analysis.json artifact.
type OutputConfig struct {
	ArtifactPath string `yaml:"artifact_path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// WatchConfig configures the submission watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// DefaultPylintCommand mirrors the parseable output pylint's epylint wrapper produced.
var DefaultPylintCommand = []string{
	"pylint",
	"--reports=n",
	"--score=n",
	"--msg-template={path}:{line}: {category} ({msg_id}, {symbol}, {obj}) {msg}",
}

// DefaultSyntaxCommand exits 3 and prints the error when the file does not compile.
var DefaultSyntaxCommand = []string{
	"python3",
	"-c",
	"import ast, sys\n" +
		"try:\n" +
		"    ast.parse(open(sys.argv[1], 'rb').read(), sys.argv[1])\n" +
		"except (SyntaxError, ValueError) as e:\n" +
		"    print(e)\n" +
		"    sys.exit(3)\n",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Analyzer: AnalyzerConfig{
			ExerciseFile: "two_fer.py",
		},
		Syntax: SyntaxConfig{
			Enabled: true,
			Command: append([]string(nil), DefaultSyntaxCommand...),
			Timeout: "10s",
		},
		Style: StyleConfig{
			Enabled:        true,
			Command:        append([]string(nil), DefaultPylintCommand...),
			Timeout:        "30s",
			MaxOutputBytes: 1024 * 1024,
		},
		Output: OutputConfig{
			ArtifactPath: "analysis.json",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("FERLINT_ARTIFACT"); path != "" {
		c.Output.ArtifactPath = path
	}
	// Swap only the binary; keep the configured arguments.
	if bin := os.Getenv("FERLINT_PYLINT"); bin != "" {
		if len(c.Style.Command) == 0 {
			c.Style.Command = []string{bin}
		} else {
			c.Style.Command[0] = bin
		}
	}
	if bin := os.Getenv("FERLINT_PYTHON"); bin != "" {
		if len(c.Syntax.Command) == 0 {
			c.Syntax.Command = []string{bin}
		} else {
			c.Syntax.Command[0] = bin
		}
	}
	if level := os.Getenv("FERLINT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if isTruthy(os.Getenv("FERLINT_STYLE_DISABLED")) {
		c.Style.Enabled = false
	}
	if isTruthy(os.Getenv("FERLINT_SYNTAX_DISABLED")) {
		c.Syntax.Enabled = false
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// GetSyntaxTimeout returns the syntax check timeout as a duration.
func (c *Config) GetSyntaxTimeout() time.Duration {
	d, err := time.ParseDuration(c.Syntax.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// GetStyleTimeout returns the style checker timeout as a duration.
func (c *Config) GetStyleTimeout() time.Duration {
	d, err := time.ParseDuration(c.Style.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetWatchDebounce returns the watcher debounce window as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats lists the accepted logging formats.
var ValidLogFormats = []string{"json", "console"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Output.ArtifactPath == "" {
		return fmt.Errorf("output.artifact_path must not be empty")
	}
	if c.Analyzer.ExerciseFile == "" {
		return fmt.Errorf("analyzer.exercise_file must not be empty")
	}

	if c.Syntax.Enabled {
		if len(c.Syntax.Command) == 0 || c.Syntax.Command[0] == "" {
			return fmt.Errorf("syntax.command must name a binary when syntax checking is enabled")
		}
		if _, err := time.ParseDuration(c.Syntax.Timeout); err != nil {
			return fmt.Errorf("invalid syntax.timeout %q: %w", c.Syntax.Timeout, err)
		}
	}

	if c.Style.Enabled {
		if len(c.Style.Command) == 0 || c.Style.Command[0] == "" {
			return fmt.Errorf("style.command must name a binary when style checking is enabled")
		}
		if _, err := time.ParseDuration(c.Style.Timeout); err != nil {
			return fmt.Errorf("invalid style.timeout %q: %w", c.Style.Timeout, err)
		}
	}

	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("invalid watch.debounce %q: %w", c.Watch.Debounce, err)
	}

	if !contains(ValidLogLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if !contains(ValidLogFormats, strings.ToLower(c.Logging.Format)) {
		return fmt.Errorf("invalid logging format: %s (valid: %v)", c.Logging.Format, ValidLogFormats)
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
