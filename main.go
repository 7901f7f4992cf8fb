package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/geoassist/server/internal/assistant/arcgis"
	"github.com/geoassist/server/internal/assistant/llm"
	"github.com/geoassist/server/internal/assistant/model"
	"github.com/geoassist/server/internal/assistant/repo"
	"github.com/geoassist/server/internal/assistant/session"
	"github.com/geoassist/server/internal/assistant/translate"
	"github.com/geoassist/server/internal/catalog"
	"github.com/geoassist/server/internal/core"
	logx "github.com/geoassist/server/pkg/logger"
	pkgredis "github.com/geoassist/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the assistant, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider; the env credential bootstraps the persisted one.
	APIKey string `envconfig:"ANTHROPIC_API_KEY"`
	LLM    model.LLMConfig

	// Feature service and session
	ArcGIS  model.ArcGISConfig
	Session model.SessionConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: cfg.Environment})

	rdb, err := cfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	ttl, err := time.ParseDuration(cfg.Session.TTL)
	if err != nil {
		log.Fatalf("Invalid SESSION_TTL %q: %v", cfg.Session.TTL, err)
	}

	datasets := catalog.MustLoad()

	controller, err := session.New(ctx, session.Config{
		Translator: translate.New(llm.New(cfg.LLM)),
		Executor:   arcgis.New(cfg.ArcGIS),
		Transcript: repo.NewRedisTranscriptRepository(rdb, ttl),
		Credential: repo.NewRedisCredentialStore(rdb),
		OnCredentialRequired: func() {
			fmt.Println("No API credential configured. Set ANTHROPIC_API_KEY or save one via the controller.")
		},
	})
	if err != nil {
		log.Fatalf("Failed to build session controller: %v", err)
	}

	// Bootstrap the persisted credential from the environment on first run.
	if !controller.HasCredential() && cfg.APIKey != "" {
		if err := controller.SaveCredential(ctx, cfg.APIKey); err != nil {
			log.Fatalf("Failed to save credential: %v", err)
		}
	}

	hospitals, ok := catalog.ByID(datasets, "hospitals")
	if !ok {
		log.Fatalf("hospitals dataset missing from catalog")
	}
	if err := controller.SelectDataset(ctx, hospitals); err != nil {
		log.Fatalf("Failed to select dataset: %v", err)
	}

	fmt.Printf("Session %s — dataset %q\n", controller.SessionID(), hospitals.Name)

	for i, question := range hospitals.ExampleQuestions {
		fmt.Printf("\nQuestion %d: %s\n", i+1, question)

		if err := controller.Ask(ctx, question); err != nil {
			log.Fatalf("Failed to process question %d: %v", i+1, err)
		}

		transcript, err := controller.Transcript(ctx)
		if err != nil {
			log.Fatalf("Failed to load transcript: %v", err)
		}
		if n := len(transcript.Messages); n > 0 {
			last := transcript.Messages[n-1]
			fmt.Printf("Assistant: %s\n", last.Text)
		}
		if q := controller.CurrentQuery(); q != nil {
			fmt.Printf("Query: where=%q outFields=%q count=%d\n", q.Where, q.OutFields, q.ResultRecordCount)
		}

		time.Sleep(500 * time.Millisecond)
	}
}
