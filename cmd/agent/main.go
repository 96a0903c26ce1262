package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/lalmajed/camera-health-digital-twin/config"
	"github.com/lalmajed/camera-health-digital-twin/internal/agent"
	"github.com/lalmajed/camera-health-digital-twin/internal/twin"
)

var (
	backendURL = flag.String("backend", "", "Twin backend URL (overrides TWIN_BACKEND_URL)")
	oneShot    = flag.String("question", "", "Ask a single question and exit")
	showRaw    = flag.Bool("raw", true, "Print the raw backend payload")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	if *backendURL != "" {
		cfg.Backend.URL = *backendURL
	}

	client := twin.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)

	var provider agent.Provider
	if cfg.LLM.Provider == "mock" {
		provider = agent.NewMockProvider()
		log.Println("Using mock LLM provider")
	} else {
		if cfg.LLM.APIKey == "" {
			log.Fatal("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
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

	if *oneShot != "" {
		if err := ask(a, *oneShot); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	interactive(a, cfg.Backend.URL)
}

func interactive(a *agent.Agent, backend string) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)

	cyan.Println("\nCamera Health Digital Twin Agent")
	green.Printf("Backend: %s\n", backend)
	fmt.Println()
	fmt.Println("Ask about city-wide degradation, site status, vehicle health, or trips.")
	fmt.Println("  exit/quit  - Exit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		cyan.Print("> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit":
			fmt.Println("Goodbye!")
			return
		}

		if err := ask(a, input); err != nil {
			color.Red("Error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
	}
}

func ask(a *agent.Agent, question string) error {
	answer, err := a.Ask(context.Background(), question)
	if err != nil {
		return err
	}

	fmt.Println()
	if answer.Tool != "none" {
		color.Yellow("Tool: %s", answer.Tool)
		if len(answer.Params) > 0 {
			params, _ := json.Marshal(answer.Params)
			fmt.Printf("Params: %s\n", params)
		}
		if *showRaw && answer.Payload != nil {
			raw, _ := json.MarshalIndent(answer.Payload, "", "  ")
			fmt.Println(string(raw))
		}
		fmt.Println()
	}

	color.New(color.FgGreen, color.Bold).Println("Answer:")
	fmt.Println(answer.Narrative)
	fmt.Println()

	return nil
}
