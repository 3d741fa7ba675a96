package main

// @title           Voxmail Core API
// @version         1.0
// @description     Voice inbox assistant API. Answers questions about an email inbox, deferring attachment-heavy work to polled background jobs.

// @contact.name   Voxmail OSS
// @contact.url    https://github.com/custodia-labs/voxmail-core/issues

// @host      localhost:8080
// @schemes   http https

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/voxmail-core/internal/adapters/driven/ai"
	"github.com/custodia-labs/voxmail-core/internal/adapters/driven/auth"
	"github.com/custodia-labs/voxmail-core/internal/adapters/driven/extract"
	"github.com/custodia-labs/voxmail-core/internal/adapters/driven/jobstore"
	redisjobs "github.com/custodia-labs/voxmail-core/internal/adapters/driven/jobstore/redis"
	"github.com/custodia-labs/voxmail-core/internal/adapters/driven/mailapi"
	httpserver "github.com/custodia-labs/voxmail-core/internal/adapters/driving/http"
	"github.com/custodia-labs/voxmail-core/internal/core/domain"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driving"
	"github.com/custodia-labs/voxmail-core/internal/core/services"
	"github.com/custodia-labs/voxmail-core/internal/realtime"
	"github.com/custodia-labs/voxmail-core/internal/runtime"
	"github.com/custodia-labs/voxmail-core/internal/worker"
)

var version = "dev"

func main() {
	// Get run mode from environment (RUN_MODE) or command line arg
	mode := getEnv("RUN_MODE", "all")
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	log.Printf("voxmail-core %s starting in %s mode", version, mode)

	// Configuration from environment
	port := getEnvInt("PORT", 8080)
	mailAPIURL := getEnv("MAIL_API_URL", "http://localhost:3000/api/mail")
	mailAPIKey := getEnv("MAIL_API_KEY", "")
	openAIKey := getEnv("OPENAI_API_KEY", "")
	openAIModel := getEnv("OPENAI_MODEL", "")
	openAIBaseURL := getEnv("OPENAI_BASE_URL", "")
	realtimeURL := getEnv("REALTIME_URL", "ws://localhost:7880")
	realtimeAPIKey := getEnv("REALTIME_API_KEY", "devkey")
	realtimeSecret := getEnv("REALTIME_API_SECRET", "devsecret")
	roomName := getEnv("ROOM_NAME", "inbox")
	redisURL := getEnv("REDIS_URL", "")
	debug := getEnvBool("DEBUG", false)
	retention := time.Duration(getEnvInt("JOB_RETENTION_SEC", int(domain.JobRetentionDefault/time.Second))) * time.Second

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if redisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== Driven adapters (infrastructure) =====
	mailbox := mailapi.NewClient(mailAPIKey, mailAPIURL)
	extractor := extract.NewService(int64(getEnvInt("EXTRACT_MAX_BYTES", extract.DefaultMaxSize)))

	tokenIssuer, err := auth.NewRoomTokenIssuer(realtimeAPIKey, realtimeSecret)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	// Runtime configuration: language model plus live voice settings
	runtimeServices := runtime.NewServices(domain.TTSConfig{
		Model: getEnv("TTS_MODEL", "sonic"),
		Voice: getEnv("TTS_VOICE", "alloy"),
	})
	var llmPinger httpserver.Pinger
	if openAIKey != "" {
		llm, err := ai.NewOpenAILLM(openAIKey, openAIModel, openAIBaseURL)
		if err != nil {
			log.Fatalf("Failed to create LLM service: %v", err)
		}
		runtimeServices.SetLLMService(llm)
		llmPinger = llm
		log.Printf("LLM configured (model=%s)", llm.Model())
	} else {
		log.Println("Warning: OPENAI_API_KEY not set, answers will degrade to the fallback response")
	}
	defer runtimeServices.Close()

	// ===== Job Store (Redis if available, otherwise in-memory) =====
	var jobs driven.JobStore
	if redisClient != nil {
		jobs = redisjobs.NewStore(redisClient, retention)
		log.Println("Using Redis job store")
	} else {
		jobs = jobstore.NewMemoryStore()
		log.Println("Using in-memory job store")
	}

	// ===== Background runner =====
	runner := worker.NewRunner(worker.RunnerConfig{
		Logger:      slog.Default(),
		Concurrency: getEnvInt("RUNNER_CONCURRENCY", 4),
	})
	runner.Start(ctx)
	defer runner.Stop()

	// ===== Core services =====
	planner := services.NewPlanner(runtimeServices)
	engine := services.NewAnswerEngine(services.AnswerEngineConfig{
		Mailbox:   mailbox,
		Extractor: extractor,
		Planner:   planner,
		Services:  runtimeServices,
		Logger:    slog.Default(),
	})
	assistant := services.NewAssistantService(services.AssistantConfig{
		Engine:    engine,
		Jobs:      jobs,
		Runner:    runner,
		Logger:    slog.Default(),
		Retention: retention,
		Debug:     debug,
	})

	serverCfg := httpserver.Config{
		Host:        "0.0.0.0",
		Port:        port,
		Version:     version,
		RealtimeURL: realtimeURL,
		RoomName:    roomName,
	}

	agentCfg := agentConfig{
		assistant:   assistant,
		tokenIssuer: tokenIssuer,
		services:    runtimeServices,
		realtimeURL: realtimeURL,
		roomName:    roomName,
	}

	switch mode {
	case "api":
		runAPI(serverCfg, assistant, tokenIssuer, mailbox, llmPinger, redisClient)

	case "agent":
		runAgent(ctx, agentCfg)

	case "all":
		go runAgent(ctx, agentCfg)
		runAPI(serverCfg, assistant, tokenIssuer, mailbox, llmPinger, redisClient)

	default:
		log.Fatalf("Unknown mode: %s (use: api, agent, or all)", mode)
	}
}

func runAPI(
	cfg httpserver.Config,
	assistant driving.AssistantService,
	tokenIssuer driven.RoomTokenIssuer,
	mailbox httpserver.Pinger,
	llm httpserver.Pinger,
	redisClient *redis.Client,
) {
	var redisPinger httpserver.Pinger
	if redisClient != nil {
		redisPinger = redisPing{client: redisClient}
	}

	server := httpserver.NewServer(
		cfg,
		assistant,
		tokenIssuer,
		slog.Default(),
		mailbox,
		llm,
		redisPinger,
	)

	log.Printf("API server starting on :%d", cfg.Port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

type redisPing struct {
	client *redis.Client
}

func (p redisPing) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

type agentConfig struct {
	assistant   driving.AssistantService
	tokenIssuer driven.RoomTokenIssuer
	services    *runtime.Services
	realtimeURL string
	roomName    string
}

// runAgent joins the realtime room and answers final user transcripts,
// publishing replies, agent state, and sources back over the channel.
func runAgent(ctx context.Context, cfg agentConfig) {
	log.Println("Starting agent mode...")
	logger := slog.Default()

	token, err := cfg.tokenIssuer.Mint("inbox-agent", "Voice Inbox Agent", driven.RoomGrants{
		Room:           cfg.roomName,
		RoomJoin:       true,
		CanPublish:     true,
		CanSubscribe:   true,
		CanPublishData: true,
	}, 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to mint agent token: %v", err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	transport := realtime.NewWebsocketTransport(cfg.realtimeURL, header)

	channel := realtime.NewChannel(realtime.ChannelConfig{
		Transport: transport,
		Services:  cfg.services,
		Logger:    logger,
	})
	if err := channel.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect realtime channel: %v", err)
	}
	defer channel.Close()

	// Announce the initial voice configuration for the session
	if err := channel.PublishTTSConfig(ctx, cfg.services.TTSConfig()); err != nil {
		logger.Warn("failed to publish initial tts config", "error", err)
	}
	channel.PublishAgentState(ctx, domain.AgentStateListening)

	log.Printf("Agent connected to room %s", cfg.roomName)

	for {
		select {
		case <-ctx.Done():
			log.Println("Agent stopping...")
			return
		case <-channel.Done():
			log.Println("Realtime channel closed, agent stopping")
			return
		case event, ok := <-channel.Events():
			if !ok {
				return
			}
			transcript, isTranscript := event.(realtime.TranscriptEvent)
			if !isTranscript || !transcript.Final {
				continue
			}
			handleQuestion(ctx, cfg.assistant, channel, transcript.Text, logger)
		}
	}
}

// handleQuestion answers one transcribed question, waiting on deferred jobs
// so the eventual answer still reaches the room.
func handleQuestion(ctx context.Context, assistant driving.AssistantService, channel *realtime.Channel, question string, logger *slog.Logger) {
	channel.PublishAgentState(ctx, domain.AgentStateThinking)
	defer channel.PublishAgentState(ctx, domain.AgentStateListening)

	outcome, err := assistant.Ask(ctx, question)
	if err != nil {
		logger.Error("ask failed", "error", err)
		channel.PublishError(ctx, domain.FallbackAnswer)
		return
	}

	if outcome.Status == driving.OutcomeDone {
		speak(ctx, channel, outcome.Answer, outcome.Sources)
		return
	}

	// Deferred: speak the holding line, then poll until the job lands.
	speak(ctx, channel, outcome.Message, nil)

	job, err := services.WaitForJob(ctx, assistant, outcome.JobID, 0, 0)
	if err != nil {
		logger.Warn("deferred answer did not complete", "job_id", outcome.JobID, "error", err)
		channel.PublishError(ctx, "This is taking longer than expected. Please try asking again.")
		return
	}

	if job.Status == domain.JobStatusError {
		channel.PublishError(ctx, domain.FallbackAnswer)
		return
	}
	speak(ctx, channel, job.Answer, job.Sources)
}

func speak(ctx context.Context, channel *realtime.Channel, text string, sources []domain.SourceInfo) {
	channel.PublishAgentState(ctx, domain.AgentStateSpeaking)
	channel.PublishReply(ctx, text)
	if len(sources) > 0 {
		channel.PublishSources(ctx, sources)
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
