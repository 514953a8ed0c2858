// Command search runs hotel searches from the command line. Each argument is
// one free-text query; results are printed and written to the output
// directory as JSON artifacts.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_scout/internal/adapters/gemini"
	"hotel_scout/internal/adapters/googleplaces"
	"hotel_scout/internal/adapters/observability"
	"hotel_scout/internal/adapters/perplexity"
	"hotel_scout/internal/artifact"
	"hotel_scout/internal/pipeline"
	"hotel_scout/internal/shared"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	queries := os.Args[1:]
	if len(queries) == 0 {
		fmt.Fprintln(os.Stderr, "usage: search \"<query>\" [\"<query>\" ...]")
		os.Exit(2)
	}

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
	writer := artifact.NewWriter(cfg.OutputDir)

	log.Info().Int("queries", len(queries)).Int("workers", cfg.Workers).Msg("search starting")

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for _, q := range queries {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(query string) {
			defer wg.Done()
			defer sem.Release(1)

			resp := p.Response(p.Run(ctx, query))
			path, err := writer.Write(resp)
			if err != nil {
				log.Warn().Str("query", query).Err(err).Msg("artifact write failed")
			} else {
				log.Info().Str("query", query).Str("artifact", path).Msg("result saved")
			}

			mu.Lock()
			defer mu.Unlock()
			if !resp.Success {
				failed++
				if resp.Error != nil {
					log.Warn().Str("query", query).Str("error", *resp.Error).Msg("search failed")
				}
				return
			}
			out, _ := json.MarshalIndent(resp, "", "  ")
			fmt.Println(string(out))
		}(q)
	}

	wg.Wait()
	log.Info().Int("failed", failed).Msg("search completed")
	if failed == len(queries) {
		os.Exit(1)
	}
}
