package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"

	"github.com/kennyanoano/GeminiReImage/pkg/api"
	"github.com/kennyanoano/GeminiReImage/pkg/api/handler"
	"github.com/kennyanoano/GeminiReImage/pkg/domain"
	"github.com/kennyanoano/GeminiReImage/pkg/gemini"
	"github.com/kennyanoano/GeminiReImage/pkg/logger"
	"github.com/kennyanoano/GeminiReImage/pkg/repository"
	"github.com/kennyanoano/GeminiReImage/pkg/service"
	"github.com/kennyanoano/GeminiReImage/pkg/services"
	"github.com/kennyanoano/GeminiReImage/pkg/storage"
	"github.com/kennyanoano/GeminiReImage/pkg/workers"
)

type Config struct {
	GoogleAPIKey      string        `env:"GOOGLE_API_KEY,required"`
	GeminiModel       string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash-exp"`
	GeminiBackupModel string        `env:"GEMINI_BACKUP_MODEL" envDefault:"gemini-2.0-flash-exp-image-generation"`
	APITimeout        time.Duration `env:"API_TIMEOUT" envDefault:"60s"`
	SaveDirectory     string        `env:"SAVE_DIRECTORY" envDefault:"~/Pictures/GeminiReImage"`
	HistoryFile       string        `env:"HISTORY_FILE"`
	HistoryMaxItems   int           `env:"HISTORY_MAX_ITEMS" envDefault:"20"`
	ListenAddr        string        `env:"LISTEN_ADDR" envDefault:":8080"`
	LogFile           string        `env:"LOG_FILE"`
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain() error {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parsing env config: %w", err)
	}
	cfg.SaveDirectory = expandHome(cfg.SaveDirectory)
	if cfg.HistoryFile == "" {
		cfg.HistoryFile = filepath.Join(cfg.SaveDirectory, "data", "history.json")
	}

	logHandler, closeLog := logger.Setup(cfg.LogFile)
	defer closeLog()
	slog.SetDefault(slog.New(logHandler))

	serviceGroup, err := setupServices(cfg)
	if err != nil {
		return err
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return serviceGroup.Run(ctx)
}

func setupServices(cfg Config) (service.Group, error) {
	var serviceGroup service.Group

	geminiClient, err := gemini.NewClient(cfg.GoogleAPIKey, cfg.GeminiModel, cfg.GeminiBackupModel, cfg.APITimeout)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	fileStore := storage.NewFileStore(
		filepath.Join(cfg.SaveDirectory, "threads"),
		cfg.SaveDirectory,
		cfg.HistoryFile,
	)

	threadRepository := repository.NewThreadRepository(fileStore)
	historyRepository := repository.NewHistoryRepository(fileStore, cfg.HistoryMaxItems)

	// Single-slot: the edit service admits one request at a time, so a
	// buffered send always lands even if the listener stopped first.
	responseCh := make(chan domain.EditResponse, 1)

	editService := services.NewEditService(
		geminiClient,
		threadRepository,
		historyRepository,
		fileStore,
		responseCh,
	)

	router := api.NewRouter(
		handler.NewThreads(threadRepository),
		handler.NewEdits(editService, threadRepository),
		handler.NewHistory(historyRepository),
	)

	if listener, err := workers.NewEditResponseListener(editService, responseCh); err == nil {
		serviceGroup = append(serviceGroup, listener)
	} else {
		return nil, fmt.Errorf("creating edit response listener: %w", err)
	}

	if server, err := workers.NewHTTPServer(cfg.ListenAddr, router); err == nil {
		serviceGroup = append(serviceGroup, server)
	} else {
		return nil, fmt.Errorf("creating http server: %w", err)
	}

	return serviceGroup, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
