package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server       ServerConfig       `mapstructure:"server" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database" validate:"required"`
	Auth         AuthConfig         `mapstructure:"auth" validate:"required"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Gamification GamificationConfig `mapstructure:"gamification" validate:"required"`
	Retrieval    RetrievalConfig    `mapstructure:"retrieval" validate:"required"`
	Document     DocumentConfig     `mapstructure:"document"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret        string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMin int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all settings for the text-generation collaborator.
// The API key may be empty, in which case grounded answering is disabled
// and the chat endpoint reports the feature as unavailable.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name"`
	MaxRetries        int    `mapstructure:"max_retries"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds"`
}

// GamificationConfig contains the point values granted for engagement
// events. The defaults mirror the values the achievement catalog was
// balanced against.
type GamificationConfig struct {
	DailyStreakPoints     int `mapstructure:"daily_streak_points" validate:"required,gt=0"`
	FlashcardReviewPoints int `mapstructure:"flashcard_review_points" validate:"required,gt=0"`
}

// RetrievalConfig contains settings for the lexical retrieval engine.
type RetrievalConfig struct {
	// ChunkChars is the approximate character budget per document chunk.
	// The engine converts it to a word count assuming five characters
	// per word on average.
	ChunkChars int `mapstructure:"chunk_chars" validate:"required,gt=0"`
}

// DocumentConfig points at the knowledge-base document the retrieval
// engine indexes at startup.
type DocumentConfig struct {
	Path string `mapstructure:"path"`
}
