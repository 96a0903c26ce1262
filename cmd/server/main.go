package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lalmajed/camera-health-digital-twin/config"
	"github.com/lalmajed/camera-health-digital-twin/internal/agent"
	"github.com/lalmajed/camera-health-digital-twin/internal/memory"
	"github.com/lalmajed/camera-health-digital-twin/internal/server"
	"github.com/lalmajed/camera-health-digital-twin/internal/tracing"
	"github.com/lalmajed/camera-health-digital-twin/internal/twin"
)

func main() {
	cfg := config.Load()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(&tracing.Config{
			ServiceName:    cfg.Tracing.ServiceName,
			ServiceVersion: "1.0.0",
			Environment:    "development",
			OTLPEndpoint:   cfg.Tracing.Endpoint,
			Enabled:        true,
		})
		if err != nil {
			log.Fatalf("Failed to initialize tracing: %v", err)
		}
		defer shutdown(context.Background())
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open memory store: %v", err)
	}
	defer store.Close()

	client := twin.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)

	var provider agent.Provider
	if cfg.LLM.Provider == "mock" {
		provider = agent.NewMockProvider()
		log.Println("Using mock LLM provider")
	} else {
		provider = agent.NewAnthropicProvider(cfg.LLM.APIKey, cfg.LLM.Model)
		log.Printf("Using Anthropic provider with model: %s", cfg.LLM.Model)
	}

	a := agent.New(provider, client, agent.Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	sessions := agent.NewSessionManager(24 * time.Hour)

	srv := server.NewServer(a, sessions, store, cfg)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down server...")
		if err := srv.Shutdown(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting agent API server (backend: %s)", cfg.Backend.URL)
	if err := srv.Start(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}

func openStore(cfg *config.Config) (memory.Store, error) {
	if cfg.Memory.Store == "postgres" {
		return memory.NewPostgresStore(&memory.ConnectionConfig{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			Database:        cfg.Database.Database,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 5 * time.Minute,
		})
	}
	return memory.NewFileStore(cfg.Memory.Path)
}
