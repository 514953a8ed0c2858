package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	GeminiKey    string
	GeminiModel  string
	LLMMaxTokens int

	PerplexityKey     string
	PerplexityBase    string
	PerplexityResults int

	PlacesKey string

	MaxAttempts int
	RetryDelay  time.Duration

	Workers   int
	OutputDir string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env file")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:            env("APP_ENV", "prod"),
		HTTPAddr:          env("HTTP_ADDR", ":8080"),
		MetricsAddr:       env("METRICS_ADDR", ":9100"),
		GeminiKey:         env("GEMINI_API_KEY", ""),
		GeminiModel:       env("GEMINI_MODEL", "gemini-2.0-flash"),
		LLMMaxTokens:      atoi("LLM_MAX_TOKENS", 4000),
		PerplexityKey:     env("PERPLEXITY_API_KEY", ""),
		PerplexityBase:    env("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
		PerplexityResults: atoi("PERPLEXITY_MAX_RESULTS", 10),
		PlacesKey:         env("GOOGLE_PLACES_API_KEY", ""),
		MaxAttempts:       atoi("MAX_ATTEMPTS", 3),
		RetryDelay:        time.Duration(atoi("RETRY_DELAY_SECONDS", 1)) * time.Second,
		Workers:           atoi("SEARCH_WORKERS", 4),
		OutputDir:         env("OUTPUT_DIR", "output"),
	}
	if c.GeminiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is empty")
	}
	if c.PerplexityKey == "" {
		log.Warn().Msg("PERPLEXITY_API_KEY is empty")
	}
	if c.PlacesKey == "" {
		log.Info().Msg("GOOGLE_PLACES_API_KEY is empty, enrichment disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
