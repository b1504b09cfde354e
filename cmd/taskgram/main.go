package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/AndriyMV/task-manager-bot/internal/config"
	"github.com/AndriyMV/task-manager-bot/internal/dialog"
	"github.com/AndriyMV/task-manager-bot/internal/handlers"
	"github.com/AndriyMV/task-manager-bot/internal/middleware"
	"github.com/AndriyMV/task-manager-bot/internal/server"
	"github.com/AndriyMV/task-manager-bot/store"
	"github.com/AndriyMV/task-manager-bot/types"
)

func main() {
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var (
		tasks types.TaskStore
		users types.UserStore
	)
	switch cfg.Storage {
	case "postgres":
		pgStore, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer pgStore.Close()
		tasks, users = pgStore, pgStore
	case "sqlite":
		sqStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open SQLite store: %v", err)
		}
		defer sqStore.Close()
		tasks, users = sqStore, sqStore
	case "memory":
		memStore := store.NewMemoryStore()
		tasks, users = memStore, memStore
	default:
		log.Fatalf("Unknown STORAGE %q (want postgres, sqlite or memory)", cfg.Storage)
	}

	var sessions dialog.SessionStore
	switch cfg.Sessions {
	case "redis":
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "taskgram")
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		sessions = store.NewRedisSessionStore(rdb, cfg.SessionTTL)
	case "memory":
		sessions = store.NewMemorySessionStore(cfg.SessionTTL)
	default:
		log.Fatalf("Unknown SESSIONS %q (want redis or memory)", cfg.Sessions)
	}

	machine := dialog.NewMachine(sessions, tasks, users)
	h := handlers.NewHandlers(machine)
	middlewares := middleware.NewMessageAnalyzer(users)

	handlerChain := middlewares.TraceMiddleware(
		middlewares.ResolveUserMiddleware(
			h.MainHandler,
		),
	)

	botOpts := []bot.Option{}
	if cfg.BotMode == "webhook" {
		botOpts = append(botOpts, bot.WithSkipGetMe())
	}
	if cfg.BotToken == "" {
		log.Fatalf("BOT_TOKEN is required")
	}
	b, err := bot.New(cfg.BotToken, botOpts...)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil
	}, handlerChain)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, handlerChain)

	apiHandler := server.New(server.Config{
		Tasks:    tasks,
		Users:    users,
		BasePath: "/api",
	})

	mux := http.NewServeMux()
	mux.Handle("/", apiHandler)
	if cfg.BotMode == "webhook" {
		mux.Handle(cfg.WebhookPath, b.WebhookHandler())
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server: %v", err)
		}
	}()

	log.Printf("Bot started in %s mode. Press Ctrl+C to stop.", cfg.BotMode)
	if cfg.BotMode == "webhook" {
		b.StartWebhook(ctx)
	} else {
		b.Start(ctx)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}
}
