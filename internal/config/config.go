package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Pipeline Pipeline `yaml:"pipeline"`
	Writer   Writer   `yaml:"writer"`
	Safety   Safety   `yaml:"safety"`
	Batch    Batch    `yaml:"batch"`
	Output   Output   `yaml:"output"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
}

// Pipeline holds the evaluation thresholds of the production loop.
type Pipeline struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MinPUIScore         int     `yaml:"min_pui_score"`
	CorpusLimit         int     `yaml:"corpus_limit"`
}

// Writer configures the drafting LLM.
type Writer struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	OllamaURL   string `yaml:"ollama_url"`
	OpenAIModel string `yaml:"openai_model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	MaxTokens   int    `yaml:"max_tokens"`
}

// Safety configures the compliance-review LLM. Disabled means the semantic
// stage is skipped and denylist-clean content passes.
type Safety struct {
	Enabled     bool   `yaml:"enabled"`
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	OllamaURL   string `yaml:"ollama_url"`
	OpenAIModel string `yaml:"openai_model"`
	APIKeyEnv   string `yaml:"api_key_env"`
}

// Batch controls daily production volume.
type Batch struct {
	TargetPerDay       int    `yaml:"target_per_day"`
	MaxRefillLoops     int    `yaml:"max_refill_loops"`
	DomainType         string `yaml:"domain_type"`
	InitialLaunchLimit int    `yaml:"initial_launch_limit"`
}

type Output struct {
	DataDir   string `yaml:"data_dir"`
	PublicDir string `yaml:"public_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for casefactory.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "casefactory")
}

// DataDir returns the XDG data directory for casefactory.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "casefactory")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/casefactory/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'casefactory init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Pipeline: Pipeline{
			SimilarityThreshold: 0.4,
			MinPUIScore:         80,
			CorpusLimit:         100,
		},
		Writer: Writer{
			Provider:    "ollama",
			Model:       "qwen2.5:7b",
			OllamaURL:   "http://localhost:11434",
			OpenAIModel: "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			MaxTokens:   4000,
		},
		Safety: Safety{
			Enabled:     true,
			Provider:    "ollama",
			Model:       "qwen2.5:7b",
			OllamaURL:   "http://localhost:11434",
			OpenAIModel: "gpt-4.1-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
		},
		Batch: Batch{
			TargetPerDay:       10,
			MaxRefillLoops:     3,
			DomainType:         "debt",
			InitialLaunchLimit: 100,
		},
		Output:  Output{PublicDir: "public"},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// DBPath returns the SQLite database path under the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "cases.db")
}

// MetricsPath returns the metrics CSV path under the data directory.
func (c *Config) MetricsPath() string {
	return filepath.Join(c.GetDataDir(), "content_metrics.csv")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
