package config

const (
	defaultListen = ":8080"

	defaultAssistantName = "Sophia"
	defaultSchool        = "Christine Valmy"
	defaultHistoryWindow = 12

	defaultProject         = "christinevalmy"
	defaultLocation        = "us-central1"
	defaultModel           = "gemini-2.5-flash"
	defaultMaxOutputTokens = 1000
	defaultTemperature     = 0.2
	defaultTopP            = 0.8

	defaultRetrievalProvider = "vertexsearch"
	defaultEngine            = "projects/christinevalmy/locations/global/collections/default_collection/engines/cv-aug27_1756347217695"
	defaultTopK              = 5
	defaultRetrievalTimeout  = 8

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "embeddinggemma"
	defaultEmbeddingDimensions = 768

	defaultAnalyticsProvider = "none"
	defaultAnalyticsTopic    = "leadline.conversations"
	defaultAnalyticsWorkers  = 3
	defaultAnalyticsQueue    = 256

	defaultServerTarget = "http://localhost:8080"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen: defaultListen,
		},
		Assistant: AssistantConfig{
			Name:          defaultAssistantName,
			School:        defaultSchool,
			HistoryWindow: defaultHistoryWindow,
		},
		Generation: GenerationConfig{
			Project:         defaultProject,
			Location:        defaultLocation,
			Model:           defaultModel,
			MaxOutputTokens: defaultMaxOutputTokens,
			Temperature:     defaultTemperature,
			TopP:            defaultTopP,
		},
		Retrieval: RetrievalConfig{
			Provider:       defaultRetrievalProvider,
			Engine:         defaultEngine,
			TopK:           defaultTopK,
			TimeoutSeconds: defaultRetrievalTimeout,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Analytics: AnalyticsConfig{
			Provider:  defaultAnalyticsProvider,
			Topic:     defaultAnalyticsTopic,
			Workers:   defaultAnalyticsWorkers,
			QueueSize: defaultAnalyticsQueue,
		},
		Client: ClientConfig{
			ServerTarget: defaultServerTarget,
		},
	}
}
