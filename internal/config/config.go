// Package config handles kubesleuth configuration.
//
// Sources, in priority order: environment variables (KUBESLEUTH_* prefix),
// an optional YAML config file, built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all kubesleuth configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm"`
	Agent   AgentConfig   `mapstructure:"agent" yaml:"agent"`
	Tools   ToolsConfig   `mapstructure:"tools" yaml:"tools"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// LLMConfig configures the model completion endpoint.
type LLMConfig struct {
	Endpoint       string  `mapstructure:"endpoint" yaml:"endpoint"`
	Model          string  `mapstructure:"model" yaml:"model"`
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Temperature    float32 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// AgentConfig configures the reasoning loop.
type AgentConfig struct {
	MaxIterations      int `mapstructure:"max_iterations" yaml:"max_iterations"`
	ToolTimeoutSeconds int `mapstructure:"tool_timeout_seconds" yaml:"tool_timeout_seconds"`
	DisplayTruncate    int `mapstructure:"display_truncate" yaml:"display_truncate"`
}

// ToolsConfig configures the diagnostic tool set.
type ToolsConfig struct {
	// Catalog is an optional YAML file overriding tool descriptions
	// and output limits.
	Catalog string `mapstructure:"catalog" yaml:"catalog"`
	LogTail int    `mapstructure:"log_tail" yaml:"log_tail"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	// File enables rotated file output when set.
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8000",
			AllowedOrigins: []string{"*"},
		},
		LLM: LLMConfig{
			Endpoint:       "https://api.groq.com/openai/v1",
			Model:          "llama-3.3-70b-versatile",
			TimeoutSeconds: 60,
			Temperature:    0.0,
			MaxTokens:      1024,
		},
		Agent: AgentConfig{
			MaxIterations:      10,
			ToolTimeoutSeconds: 10,
			DisplayTruncate:    200,
		},
		Tools: ToolsConfig{
			LogTail: 50,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}
}

// Load reads configuration from the given file (optional), environment,
// and defaults. Pass an empty path to search the working directory for
// config.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("KUBESLEUTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// GROQ_API_KEY is the conventional variable for the hosted endpoint;
	// accept it when llm.api_key is not set explicitly.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GROQ_API_KEY")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)

	v.SetDefault("llm.endpoint", d.LLM.Endpoint)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.timeout_seconds", d.LLM.TimeoutSeconds)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)

	v.SetDefault("agent.max_iterations", d.Agent.MaxIterations)
	v.SetDefault("agent.tool_timeout_seconds", d.Agent.ToolTimeoutSeconds)
	v.SetDefault("agent.display_truncate", d.Agent.DisplayTruncate)

	v.SetDefault("tools.log_tail", d.Tools.LogTail)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Validate checks startup preconditions. A missing LLM API key is a fatal
// startup error, not a per-request error.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not set: set llm.api_key or the GROQ_API_KEY environment variable")
	}
	if c.LLM.Endpoint == "" {
		return fmt.Errorf("llm.endpoint must not be empty")
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive, got %d", c.Agent.MaxIterations)
	}
	if c.Agent.ToolTimeoutSeconds <= 0 {
		return fmt.Errorf("agent.tool_timeout_seconds must be positive, got %d", c.Agent.ToolTimeoutSeconds)
	}
	return nil
}
