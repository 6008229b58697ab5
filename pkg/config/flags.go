package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag. Commands reference flags
// by registry key so the same logical flag cannot drift between "leadline
// serve", "leadline chat" and "leadline retrieve".
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "server.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagListen            = "listen"
	FlagProject           = "project"
	FlagLocation          = "location"
	FlagModel             = "model"
	FlagGenerationTarget  = "generation-endpoint"
	FlagRetrievalProvider = "retrieval-provider"
	FlagRetrievalEngine   = "retrieval-engine"
	FlagRetrievalTarget   = "retrieval-target"
	FlagCollection        = "collection"
	FlagTopK              = "top-k"
	FlagEmbeddingProv     = "embedding-provider"
	FlagEmbeddingTgt      = "embedding-target"
	FlagEmbeddingModel    = "embedding-model"
	FlagAnalyticsProvider = "analytics-provider"
	FlagAnalyticsTarget   = "analytics-target"
	FlagAnalyticsTopic    = "analytics-topic"
	FlagPolicyFile        = "policy-file"
	FlagServerTarget      = "server"
	FlagHistoryFile       = "history-file"
	FlagAudience          = "audience"
)

// Flags is the shared registry used by leadline commands.
var Flags = FlagSet{
	FlagListen:            {Name: "listen", Shorthand: "l", ViperKey: "server.listen", Description: "Address for the chat server to listen on"},
	FlagProject:           {Name: "project", ViperKey: "generation.project", Description: "Google Cloud project hosting the model"},
	FlagLocation:          {Name: "location", ViperKey: "generation.location", Description: "Vertex AI region"},
	FlagModel:             {Name: "model", Shorthand: "m", ViperKey: "generation.model", Description: "Gemini model name"},
	FlagGenerationTarget:  {Name: "generation-endpoint", ViperKey: "generation.endpoint", Description: "Override the Vertex AI endpoint base URL"},
	FlagRetrievalProvider: {Name: "retrieval-provider", ViperKey: "retrieval.provider", Description: "Knowledge-base backend (vertexsearch, qdrant, none)"},
	FlagRetrievalEngine:   {Name: "retrieval-engine", ViperKey: "retrieval.engine", Description: "Vertex AI Search engine resource name"},
	FlagRetrievalTarget:   {Name: "retrieval-target", ViperKey: "retrieval.target", Description: "Qdrant host:port"},
	FlagCollection:        {Name: "collection", ViperKey: "retrieval.collection", Description: "Qdrant collection name"},
	FlagTopK:              {Name: "top-k", ViperKey: "retrieval.top_k", Description: "Results requested for early-stage conversations"},
	FlagEmbeddingProv:     {Name: "embedding-provider", ViperKey: "embedding.provider", Description: "Embedding provider for the qdrant backend"},
	FlagEmbeddingTgt:      {Name: "embedding-target", ViperKey: "embedding.target", Description: "Embedding provider URL"},
	FlagEmbeddingModel:    {Name: "embedding-model", ViperKey: "embedding.model", Description: "Embedding model name"},
	FlagAnalyticsProvider: {Name: "analytics-provider", ViperKey: "analytics.provider", Description: "Analytics warehouse (none, sqlite, postgres, kafka)"},
	FlagAnalyticsTarget:   {Name: "analytics-target", ViperKey: "analytics.target", Description: "Warehouse DSN, SQLite path or Kafka brokers"},
	FlagAnalyticsTopic:    {Name: "analytics-topic", ViperKey: "analytics.topic", Description: "Kafka topic for conversation events"},
	FlagPolicyFile:        {Name: "policy-file", ViperKey: "prompt.policy_file", Description: "Policy document replacing the built-in one"},
	FlagServerTarget:      {Name: "server", Shorthand: "s", ViperKey: "client.server_target", Description: "leadline server URL"},
	FlagHistoryFile:       {Name: "history-file", ViperKey: "client.history_file", Description: "Chat history file (default .leadline/history.json)"},
	FlagAudience:          {Name: "audience", ViperKey: "client.audience", Description: "ID token audience for authenticated deployments"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper. Call it in
// PreRunE after InitViper (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
