package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent leadline configuration stored as
// config.toml in the .leadline/ directory.
type Config struct {
	Version    int              `toml:"version"`
	Server     ServerConfig     `toml:"server"`
	Assistant  AssistantConfig  `toml:"assistant"`
	Generation GenerationConfig `toml:"generation"`
	Retrieval  RetrievalConfig  `toml:"retrieval"`
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Analytics  AnalyticsConfig  `toml:"analytics"`
	Prompt     PromptConfig     `toml:"prompt"`
	Client     ClientConfig     `toml:"client"`
}

// ServerConfig holds the HTTP entrypoint settings.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// AssistantConfig holds the persona and conversation settings.
type AssistantConfig struct {
	Name          string `toml:"name,omitempty"`
	School        string `toml:"school,omitempty"`
	HistoryWindow uint   `toml:"history_window,omitempty"`
}

// GenerationConfig holds the Gemini on Vertex AI settings. Endpoint overrides
// the regional aiplatform host and is mostly useful for tests.
type GenerationConfig struct {
	Project          string  `toml:"project,omitempty"`
	Location         string  `toml:"location,omitempty"`
	Model            string  `toml:"model,omitempty"`
	Endpoint         string  `toml:"endpoint,omitempty"`
	MaxOutputTokens  uint    `toml:"max_output_tokens,omitempty"`
	Temperature      float64 `toml:"temperature,omitempty"`
	TopP             float64 `toml:"top_p,omitempty"`
	DisableStreaming bool    `toml:"disable_streaming,omitempty"`
}

// RetrievalConfig selects and configures the knowledge-base backend.
// Provider is one of "vertexsearch", "qdrant" or "none".
type RetrievalConfig struct {
	Provider       string `toml:"provider,omitempty"`
	Engine         string `toml:"engine,omitempty"`
	Endpoint       string `toml:"endpoint,omitempty"`
	Target         string `toml:"target,omitempty"`
	Collection     string `toml:"collection,omitempty"`
	TopK           uint   `toml:"top_k,omitempty"`
	TimeoutSeconds uint   `toml:"timeout_seconds,omitempty"`
}

// EmbeddingConfig holds embedding provider settings used by the qdrant
// retrieval backend.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// AnalyticsConfig selects the warehouse for conversation events.
// Provider is one of "none", "sqlite", "postgres" or "kafka".
type AnalyticsConfig struct {
	Provider  string `toml:"provider,omitempty"`
	Target    string `toml:"target,omitempty"`
	Topic     string `toml:"topic,omitempty"`
	Workers   uint   `toml:"workers,omitempty"`
	QueueSize uint   `toml:"queue_size,omitempty"`
}

// PromptConfig holds prompt overrides. PolicyFile replaces the built-in
// policy document and is reloaded when it changes.
type PromptConfig struct {
	PolicyFile string `toml:"policy_file,omitempty"`
}

// ClientConfig holds settings for "leadline chat" and "leadline retrieve".
type ClientConfig struct {
	ServerTarget string `toml:"server_target,omitempty"`
	HistoryFile  string `toml:"history_file,omitempty"`
	Audience     string `toml:"audience,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

func floatKey(name string, field func(c *Config) *float64) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatFloat(*field(c), 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = f
			return nil
		},
	}
}

func boolKey(name string, field func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"server.listen": stringKey(func(c *Config) *string { return &c.Server.Listen }),

	"assistant.name":           stringKey(func(c *Config) *string { return &c.Assistant.Name }),
	"assistant.school":         stringKey(func(c *Config) *string { return &c.Assistant.School }),
	"assistant.history_window": uintKey("assistant.history_window", func(c *Config) *uint { return &c.Assistant.HistoryWindow }),

	"generation.project":           stringKey(func(c *Config) *string { return &c.Generation.Project }),
	"generation.location":          stringKey(func(c *Config) *string { return &c.Generation.Location }),
	"generation.model":             stringKey(func(c *Config) *string { return &c.Generation.Model }),
	"generation.endpoint":          stringKey(func(c *Config) *string { return &c.Generation.Endpoint }),
	"generation.max_output_tokens": uintKey("generation.max_output_tokens", func(c *Config) *uint { return &c.Generation.MaxOutputTokens }),
	"generation.temperature":       floatKey("generation.temperature", func(c *Config) *float64 { return &c.Generation.Temperature }),
	"generation.top_p":             floatKey("generation.top_p", func(c *Config) *float64 { return &c.Generation.TopP }),
	"generation.disable_streaming": boolKey("generation.disable_streaming", func(c *Config) *bool { return &c.Generation.DisableStreaming }),

	"retrieval.provider":        stringKey(func(c *Config) *string { return &c.Retrieval.Provider }),
	"retrieval.engine":          stringKey(func(c *Config) *string { return &c.Retrieval.Engine }),
	"retrieval.endpoint":        stringKey(func(c *Config) *string { return &c.Retrieval.Endpoint }),
	"retrieval.target":          stringKey(func(c *Config) *string { return &c.Retrieval.Target }),
	"retrieval.collection":      stringKey(func(c *Config) *string { return &c.Retrieval.Collection }),
	"retrieval.top_k":           uintKey("retrieval.top_k", func(c *Config) *uint { return &c.Retrieval.TopK }),
	"retrieval.timeout_seconds": uintKey("retrieval.timeout_seconds", func(c *Config) *uint { return &c.Retrieval.TimeoutSeconds }),

	"embedding.provider":   stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":     stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":      stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"embedding.dimensions": uintKey("embedding.dimensions", func(c *Config) *uint { return &c.Embedding.Dimensions }),

	"analytics.provider":   stringKey(func(c *Config) *string { return &c.Analytics.Provider }),
	"analytics.target":     stringKey(func(c *Config) *string { return &c.Analytics.Target }),
	"analytics.topic":      stringKey(func(c *Config) *string { return &c.Analytics.Topic }),
	"analytics.workers":    uintKey("analytics.workers", func(c *Config) *uint { return &c.Analytics.Workers }),
	"analytics.queue_size": uintKey("analytics.queue_size", func(c *Config) *uint { return &c.Analytics.QueueSize }),

	"prompt.policy_file": stringKey(func(c *Config) *string { return &c.Prompt.PolicyFile }),

	"client.server_target": stringKey(func(c *Config) *string { return &c.Client.ServerTarget }),
	"client.history_file":  stringKey(func(c *Config) *string { return &c.Client.HistoryFile }),
	"client.audience":      stringKey(func(c *Config) *string { return &c.Client.Audience }),
}

// orderedKeys matches the TOML section layout.
var orderedKeys = []string{
	"server.listen",
	"assistant.name",
	"assistant.school",
	"assistant.history_window",
	"generation.project",
	"generation.location",
	"generation.model",
	"generation.endpoint",
	"generation.max_output_tokens",
	"generation.temperature",
	"generation.top_p",
	"generation.disable_streaming",
	"retrieval.provider",
	"retrieval.engine",
	"retrieval.endpoint",
	"retrieval.target",
	"retrieval.collection",
	"retrieval.top_k",
	"retrieval.timeout_seconds",
	"embedding.provider",
	"embedding.target",
	"embedding.model",
	"embedding.dimensions",
	"analytics.provider",
	"analytics.target",
	"analytics.topic",
	"analytics.workers",
	"analytics.queue_size",
	"prompt.policy_file",
	"client.server_target",
	"client.history_file",
	"client.audience",
}
