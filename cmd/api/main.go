package main

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"hotel_scout/internal/adapters/gemini"
	"hotel_scout/internal/adapters/googleplaces"
	server "hotel_scout/internal/adapters/http_server"
	"hotel_scout/internal/adapters/observability"
	"hotel_scout/internal/adapters/perplexity"
	"hotel_scout/internal/pipeline"
	"hotel_scout/internal/shared"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// providers
	llm, err := gemini.New(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.LLMMaxTokens)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Gemini client")
	}
	search, err := perplexity.New(cfg.PerplexityBase, cfg.PerplexityKey, cfg.PerplexityResults, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Perplexity client")
	}
	places := googleplaces.New(cfg.PlacesKey, 5)

	p := pipeline.New(llm, search, places, pipeline.Options{
		MaxAttempts: cfg.MaxAttempts,
		RetryDelay:  cfg.RetryDelay,
	}, log.Logger)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{P: p})

	log.Info().Str("addr", cfg.HTTPAddr).Str("model", cfg.GeminiModel).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
