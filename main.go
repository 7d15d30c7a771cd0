package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "go.uber.org/automaxprocs"

	"supervision_record_studio/config"
	"supervision_record_studio/generator"
	"supervision_record_studio/logger"
	"supervision_record_studio/server"
)

func main() {
	configPath := flag.String("config", "config/config.json", "path to config.json")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	notesPath := flag.String("notes", "", "path to a notes file for one-shot record generation")
	mock := flag.Bool("mock", false, "use the mock model instead of the real provider")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	llm, err := buildLLM(cfg, *mock)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	agent, err := generator.NewAgent(llm, cfg.LLM.APIKey)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serve {
		srv, err := server.New(agent)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = ":8080"
		}
		log.Info().Str("addr", listen).Msg("starting web server")
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *notesPath == "" {
		fmt.Fprintln(os.Stderr, "either --serve or --notes is required")
		os.Exit(1)
	}

	notes, err := os.ReadFile(*notesPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	sess := generator.NewSession(uuid.NewString(), agent)
	if err := sess.GenerateRecord(ctx, string(notes), ""); err != nil {
		fmt.Fprintln(os.Stderr, generator.UserMessage(err))
		os.Exit(1)
	}
	fmt.Println(sess.FormalRecord)
}

func buildLLM(cfg config.Config, mock bool) (generator.LLMClient, error) {
	if mock {
		return generator.MockLLM{}, nil
	}
	if cfg.LLM == nil || cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("llm config missing; set llm.provider/model or the matching env vars")
	}
	settings := &generator.LLMSettings{
		Provider:   cfg.LLM.Provider,
		Model:      cfg.LLM.Model,
		ImageModel: cfg.LLM.ImageModel,
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
	}
	switch cfg.LLM.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "compatible":
		// any OpenAI-compatible gateway; base_url is mandatory then
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider compatible requires base_url")
		}
		return generator.NewOpenAILLMFromConfig(settings)
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}
