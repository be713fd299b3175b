package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	server "github.com/taskpilot/taskpilot/internal"
	"github.com/taskpilot/taskpilot/internal/ai"
	"github.com/taskpilot/taskpilot/internal/auth"
	"github.com/taskpilot/taskpilot/internal/chat"
	"github.com/taskpilot/taskpilot/internal/config"
	conversationrepo "github.com/taskpilot/taskpilot/internal/conversation/repositoryimpl"
	"github.com/taskpilot/taskpilot/internal/interpreter"
	"github.com/taskpilot/taskpilot/internal/task"
	taskrepo "github.com/taskpilot/taskpilot/internal/task/repositoryimpl"
	userrepo "github.com/taskpilot/taskpilot/internal/user/repositoryimpl"
	"github.com/taskpilot/taskpilot/pkg/clog"
	"github.com/taskpilot/taskpilot/pkg/storage"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	// Setup storage
	var store storage.Storage
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3Storage(context.Background(), env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 storage", "error", err)
			os.Exit(1)
		}
	default:
		store, err = storage.NewLocalStorage(env.StorageEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local storage", "error", err)
			os.Exit(1)
		}
	}

	// Setup repositories
	taskRepo := taskrepo.NewYAMLRepository(store)
	userRepo := userrepo.NewYAMLRepository(store)
	conversationRepo := conversationrepo.NewYAMLRepository(store)

	// Setup services
	taskService := task.NewService(taskRepo)
	interp := interpreter.New(taskService)
	issuer := auth.NewTokenIssuer(env.AuthEnv.JWTSecret, env.AuthEnv.TokenTTL)

	var generator ai.Generator = ai.Disabled{}
	if env.AIEnv.Enabled {
		generator = ai.NewClaudeGenerator(env.AIEnv.SystemPrompt)
	}

	// Setup servers
	authServer := auth.NewServer(userRepo, issuer)
	taskServer := task.NewServer(taskService)
	chatServer := chat.NewServer(interp, generator, conversationRepo)

	srv := server.NewServer(env, issuer, authServer, taskServer, chatServer)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
