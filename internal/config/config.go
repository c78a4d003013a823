// Package config provides configuration loading for regwatchd.
//
// Configuration is loaded from a YAML file and overridden by environment
// variables. This package covers the HTTP server, logging, MongoDB
// connections, the completion service, matching behavior, and the RegComply
// webhook.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete regwatchd configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
	Mongo   MongoConfig   `koanf:"mongo"`
	LLM     LLMConfig     `koanf:"llm"`
	Match   MatchConfig   `koanf:"match"`
	Webhook WebhookConfig `koanf:"webhook"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MongoConfig holds connection settings for the two document stores:
// the regwatch store (regulations, pre-assessments) and the ecosystem
// store (companies).
type MongoConfig struct {
	RegwatchURI       Secret        `koanf:"regwatch_uri"`
	EcosystemURI      Secret        `koanf:"ecosystem_uri"`
	RegwatchDatabase  string        `koanf:"regwatch_database"`
	EcosystemDatabase string        `koanf:"ecosystem_database"`
	ConnectTimeout    time.Duration `koanf:"connect_timeout"`
}

// LLMConfig holds completion-service settings.
//
// Provider selects the wire protocol: "openai" for any OpenAI-compatible
// endpoint, "azure" for Azure OpenAI deployments (APIVersion applies to
// azure only).
type LLMConfig struct {
	Provider          string        `koanf:"provider"`
	BaseURL           string        `koanf:"base_url"`
	APIKey            Secret        `koanf:"api_key"`
	Model             string        `koanf:"model"`
	APIVersion        string        `koanf:"api_version"`
	CompletionTimeout time.Duration `koanf:"completion_timeout"`
}

// MatchConfig holds matching pipeline configuration.
type MatchConfig struct {
	// FallbackCountry is used when a company document has no country field.
	FallbackCountry string `koanf:"fallback_country"`
}

// WebhookConfig holds RegComply webhook forwarding configuration.
// An empty URL disables forwarding.
type WebhookConfig struct {
	RegComplyURL    string        `koanf:"regcomply_url"`
	RegComplySecret Secret        `koanf:"regcomply_secret"`
	Timeout         time.Duration `koanf:"timeout"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.http_port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout cannot be negative"))
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	if !c.Mongo.RegwatchURI.IsSet() {
		errs = append(errs, errors.New("mongo.regwatch_uri is required"))
	}
	if !c.Mongo.EcosystemURI.IsSet() {
		errs = append(errs, errors.New("mongo.ecosystem_uri is required"))
	}

	switch c.LLM.Provider {
	case "openai", "azure":
	default:
		errs = append(errs, fmt.Errorf("llm.provider must be openai or azure, got %q", c.LLM.Provider))
	}
	if c.LLM.BaseURL == "" {
		errs = append(errs, errors.New("llm.base_url is required"))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}
	if c.LLM.CompletionTimeout <= 0 {
		errs = append(errs, errors.New("llm.completion_timeout must be positive"))
	}

	if c.Webhook.Timeout <= 0 {
		errs = append(errs, errors.New("webhook.timeout must be positive"))
	}

	return errors.Join(errs...)
}
