package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"fitgap/internal/llm"
)

// Config models fitgap.yml.
type Config struct {
	Engagement struct {
		ID string `yaml:"id"`
	} `yaml:"engagement"`
	Provider llm.Config `yaml:"provider"`
	Server   struct {
		Addr      string `yaml:"addr"`
		JWTSecret string `yaml:"-"`
		JWTEnv    string `yaml:"jwt_secret_env"`
	} `yaml:"server"`
	Pricing struct {
		InputPerMillion  float64 `yaml:"input_per_million"`
		OutputPerMillion float64 `yaml:"output_per_million"`
	} `yaml:"pricing"`
}

// Load reads and validates config from workspace, resolving secrets from the
// environment. Secrets never live in the file itself.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with fg init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	cfg.resolveEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolveEnv() {
	keyEnv := c.Provider.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "FITGAP_API_KEY"
	}
	c.Provider.APIKey = os.Getenv(keyEnv)
	jwtEnv := c.Server.JWTEnv
	if jwtEnv == "" {
		jwtEnv = "FITGAP_JWT_SECRET"
	}
	c.Server.JWTSecret = os.Getenv(jwtEnv)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	switch c.Provider.Kind {
	case "", "anthropic", "openai":
	default:
		return fmt.Errorf("config.provider.kind must be anthropic or openai, got %q", c.Provider.Kind)
	}
	if c.Provider.MaxTokens < 0 {
		return fmt.Errorf("config.provider.max_tokens must not be negative")
	}
	if c.Provider.TimeoutSeconds < 0 {
		return fmt.Errorf("config.provider.timeout_seconds must not be negative")
	}
	if c.Pricing.InputPerMillion < 0 || c.Pricing.OutputPerMillion < 0 {
		return fmt.Errorf("config.pricing rates must not be negative")
	}
	return nil
}

// Addr returns the listen address, defaulting to :8742.
func (c *Config) Addr() string {
	if c.Server.Addr == "" {
		return ":8742"
	}
	return c.Server.Addr
}

// EstimatedCost prices a usage snapshot with the configured per-million
// token rates. Zero rates yield zero cost.
func (c *Config) EstimatedCost(u llm.Usage) float64 {
	return float64(u.InputTokens)/1e6*c.Pricing.InputPerMillion +
		float64(u.OutputTokens)/1e6*c.Pricing.OutputPerMillion
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "fitgap.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault(engagementID string) string {
	return fmt.Sprintf(defaultTemplate, engagementID)
}

const defaultTemplate = `engagement:
  id: %s

provider:
  kind: anthropic
  model: ""
  api_key_env: FITGAP_API_KEY
  max_tokens: 1024
  timeout_seconds: 60

server:
  addr: ":8742"
  jwt_secret_env: FITGAP_JWT_SECRET

pricing:
  input_per_million: 0.80
  output_per_million: 4.00
`
