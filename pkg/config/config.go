// Package config provides the configuration of the chat client and the tool host.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpvolume/mcp"
	"github.com/effective-security/mcpvolume/orchestrator"
	"github.com/effective-security/mcpvolume/pkg/llmfactory"
	"github.com/effective-security/mcpvolume/pkg/mixer"
	"github.com/effective-security/x/configloader"
	"github.com/effective-security/x/values"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	// DefaultProviderName is the name of the provider built from the environment
	DefaultProviderName = "openai"
	// ClientComponent is the name of the client in the llm models mapping
	ClientComponent = "mcpclient"
)

// Config of the client and the host
type Config struct {
	// LLM specifies the model providers
	LLM llmfactory.Config `json:"llm" yaml:"llm"`
	// Client specifies the chat client
	Client Client `json:"client" yaml:"client"`
	// Host specifies the tool host
	Host Host `json:"host" yaml:"host"`
}

// Client config
type Client struct {
	orchestrator.Config `json:",inline" yaml:",inline"`

	// Servers specifies the tool host scripts to connect to,
	// used when none are provided on the command line
	Servers []string `json:"servers,omitempty" yaml:"servers,omitempty"`
}

// Host config
type Host struct {
	mcp.ServerConfig `json:",inline" yaml:",inline"`

	// Mixer specifies the volume endpoint
	Mixer mixer.Config `json:"mixer" yaml:"mixer"`
}

// LoadDotEnv loads the environment from the file, if it exists.
// Variables already set in the environment are not overridden.
func LoadDotEnv(files ...string) error {
	var existing []string
	for _, f := range files {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return errors.WithMessage(err, "failed to load env file")
	}
	return nil
}

// Load returns the config from the file, or from the environment
// when the file is not specified.
func Load(file string) (*Config, error) {
	cfg := new(Config)
	if file != "" {
		if err := configloader.UnmarshalAndExpand(file, cfg); err != nil {
			return nil, errors.WithMessagef(err, "failed to load config %s", file)
		}
	}

	if len(cfg.LLM.Providers) == 0 {
		cfg.LLM.Providers = []*llmfactory.ProviderConfig{FromEnv()}
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv returns the OpenAI provider from
// OPENAI_API_KEY, OPENAI_MODEL and OPENAI_BASE_URL
func FromEnv() *llmfactory.ProviderConfig {
	model := values.StringsCoalesce(os.Getenv("OPENAI_MODEL"), orchestrator.DefaultModel)
	return &llmfactory.ProviderConfig{
		Name:            DefaultProviderName,
		Token:           os.Getenv("OPENAI_API_KEY"),
		DefaultModel:    model,
		AvailableModels: []string{model},
		OpenAI: llmfactory.OpenAIConfig{
			APIType: "OPENAI",
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
		},
	}
}

func (c *Config) setDefaults() {
	c.Client.MaxTokens = values.NumbersCoalesce(c.Client.MaxTokens, orchestrator.DefaultMaxTokens)
	if len(c.Client.Interpreters) == 0 {
		c.Client.Interpreters = make(map[string]string, len(orchestrator.DefaultInterpreters))
		for k, v := range orchestrator.DefaultInterpreters {
			c.Client.Interpreters[k] = v
		}
	}
	c.Host.Name = values.StringsCoalesce(c.Host.Name, mcp.DefaultServerName)
	c.Host.Version = values.StringsCoalesce(c.Host.Version, mcp.DefaultVersion)
	c.Host.Mixer.Kind = values.StringsCoalesce(c.Host.Mixer.Kind, mixer.KindSystem)
}

// Validate returns error if the config is invalid
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.WithMessage(err, "invalid config")
	}
	return nil
}

// RequireToken returns error if the providers have no token
func (c *Config) RequireToken() error {
	for _, p := range c.LLM.Providers {
		if p.Token == "" {
			return errors.Errorf("missing API token for provider %s, set OPENAI_API_KEY", p.Name)
		}
	}
	return nil
}
