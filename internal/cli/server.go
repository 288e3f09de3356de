package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trivia-quiz-bot/internal/app"
	"trivia-quiz-bot/internal/config"
	"trivia-quiz-bot/internal/infra/memory"
	pgstore "trivia-quiz-bot/internal/infra/postgres"
	redisstore "trivia-quiz-bot/internal/infra/redis"
	transport "trivia-quiz-bot/internal/transport/http"
	"trivia-quiz-bot/internal/transport/telegram"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the bot transports.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz dialogue transports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	questions, sessions, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	// Questions are immutable after ingestion; a short memory cache keeps
	// repeated store hits off the hot path.
	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	cached := memory.NewQuestionCache(questions, cacheTTL)

	engine := app.NewEngine(cached, sessions, cfg.Quiz.QuestionsTotal)
	wsHandler := transport.NewWSHandler(engine)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz dialogue service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	botCtx, stopBot := context.WithCancel(ctx)
	defer stopBot()
	if cfg.Telegram.Token != "" {
		bot, err := telegram.New(cfg.Telegram.Token, engine)
		if err != nil {
			return err
		}
		go func() {
			if err := bot.Run(botCtx); err != nil && err != context.Canceled {
				log.Printf("telegram bot stopped: %v", err)
			}
		}()
	} else {
		log.Printf("no telegram token configured, serving websocket transport only")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down...")
	}
	stopBot()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildStores picks the persistence backend: Redis when configured (the
// shared deployment), Postgres for the question bank otherwise, in-memory as
// a last resort for local experiments.
func buildStores(ctx context.Context, cfg config.Config) (app.QuestionStore, app.SessionStore, func(), error) {
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cleanup := func() { _ = client.Close() }
		return redisstore.NewQuestionStore(client), redisstore.NewSessionStore(client), cleanup, nil
	}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Printf("postgres question bank configured; sessions stay in memory and will not survive restarts")
		return pgstore.NewQuestionStore(pool), memory.NewSessionStore(), pool.Close, nil
	}

	log.Printf("no store configured, using in-memory stores")
	return memory.NewQuestionStore(), memory.NewSessionStore(), func() {}, nil
}
