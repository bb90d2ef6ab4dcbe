package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"autoserve/backend/internal/adapters/indexfile"
	"autoserve/backend/internal/adapters/indexredis"
	"autoserve/backend/internal/adapters/oracle"
	"autoserve/backend/internal/adapters/persistence"
	"autoserve/backend/internal/adapters/telemetry"
	"autoserve/backend/internal/assignment"
	"autoserve/backend/internal/domain"
	"autoserve/backend/internal/httpapi"
	"autoserve/backend/internal/logger"
	"autoserve/backend/internal/ports"
	"autoserve/backend/internal/service"
)

var (
	runServer         = run
	loadRuntimeConfig = httpapi.LoadRuntimeConfigFromEnv
	exitProcess       = os.Exit
	signalNotify      = signal.Notify
	signalStop        = signal.Stop
)

const shutdownTimeout = 30 * time.Second

func main() {
	_ = godotenv.Load()
	log := logger.Setup()

	runtimeConfig, err := loadRuntimeConfig()
	if err != nil {
		log.Error("failed to load runtime config", "err", err)
		exitProcess(1)
		return
	}
	if runtimeConfig.Mode.IsDevelopment() {
		log.Warn("backend is running in development mode with permissive CORS defaults")
	}

	router, err := buildRouter(context.Background(), runtimeConfig)
	if err != nil {
		log.Error("failed to initialize router", "err", err)
		exitProcess(1)
		return
	}

	addr := getenv("AUTOSERVE_ADDR", httpapi.DefaultListenAddr(runtimeConfig.Mode))
	if err := runServer(addr, router, log.Info); err != nil {
		log.Error("server failed", "err", err)
		exitProcess(1)
	}
}

// buildRouter wires the full stack: repository, index blob backend,
// Prometheus telemetry, the deterministic oracle and the assignment
// store.
func buildRouter(ctx context.Context, runtimeConfig httpapi.RuntimeConfig) (http.Handler, error) {
	repo, err := persistence.NewFileRepository(strings.TrimSpace(os.Getenv("AUTOSERVE_DATA_FILE")))
	if err != nil {
		return nil, fmt.Errorf("create repository: %w", err)
	}

	blob, err := openIndexBlob(ctx)
	if err != nil {
		return nil, err
	}

	k, err := topKFromEnv()
	if err != nil {
		return nil, err
	}

	metrics := telemetry.NewPrometheus()
	store, err := assignment.NewStore(repo, blob, metrics, k)
	if err != nil {
		return nil, err
	}

	svc, err := service.New(repo, metrics, oracle.NewKeywordOracle(), store)
	if err != nil {
		return nil, err
	}

	return httpapi.NewRouter(svc, runtimeConfig, metrics.Handler()), nil
}

func openIndexBlob(ctx context.Context) (ports.IndexBlob, error) {
	backend := strings.ToLower(strings.TrimSpace(getenv("AUTOSERVE_INDEX_BACKEND", "file")))
	switch backend {
	case "file":
		return indexfile.New(strings.TrimSpace(os.Getenv("AUTOSERVE_INDEX_FILE"))), nil
	case "redis":
		client, err := indexredis.OpenFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("open redis index backend: %w", err)
		}
		return indexredis.New(client, ""), nil
	default:
		return nil, fmt.Errorf("unknown index backend %q (want file or redis)", backend)
	}
}

func topKFromEnv() (int, error) {
	raw := strings.TrimSpace(os.Getenv("AUTOSERVE_TOPK"))
	if raw == "" {
		return domain.DefaultTopK, nil
	}
	k, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse AUTOSERVE_TOPK: %w", err)
	}
	return k, nil
}

func getenv(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func run(addr string, handler http.Handler, logf func(string, ...any)) error {
	server := &http.Server{
		Addr:    addr,
		Handler: handler,
		// Limits time to read request headers and reduces slowloris risk.
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer func() {
		_ = listener.Close()
	}()

	if logf != nil {
		logf("autoserve backend listening", "addr", addr)
	}

	serveErr := make(chan error, 1)
	go func() {
		if startErr := server.Serve(listener); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
			serveErr <- startErr
			return
		}
		serveErr <- nil
	}()

	quit := make(chan os.Signal, 1)
	signalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signalStop(quit)

	select {
	case err = <-serveErr:
		return err
	case shutdownSignal := <-quit:
		if logf != nil {
			logf("shutdown signal received, draining in-flight requests", "signal", shutdownSignal.String())
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = server.Shutdown(ctx); err != nil {
		if logf != nil {
			logf("server forced to shutdown", "err", err)
		}
	} else if logf != nil {
		logf("server exited gracefully")
	}

	select {
	case err = <-serveErr:
		return err
	case <-ctx.Done():
		if logf != nil {
			logf("timed out waiting for server goroutine to exit", "err", ctx.Err())
		}
	}

	return nil
}
