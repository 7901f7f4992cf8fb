package model

// ================ Config ================

// LLMConfig drives the translation model call. The endpoint shape follows
// the Anthropic messages protocol.
type LLMConfig struct {
	BaseURL        string `envconfig:"LLM_BASE_URL" default:"https://api.anthropic.com"`
	Model          string `envconfig:"LLM_MODEL" default:"claude-sonnet-4-20250514"`
	MaxTokens      int    `envconfig:"LLM_MAX_TOKENS" default:"1000"`
	Version        string `envconfig:"LLM_API_VERSION" default:"2023-06-01"`
	TimeoutSeconds int    `envconfig:"LLM_TIMEOUT_SECONDS" default:"60"`
}

// ArcGISConfig bounds the feature-query call.
type ArcGISConfig struct {
	TimeoutSeconds int `envconfig:"ARCGIS_TIMEOUT_SECONDS" default:"30"`
}

// SessionConfig controls transcript persistence.
type SessionConfig struct {
	TTL string `envconfig:"SESSION_TTL" default:"24h"`
}
