package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomz197/bugzapper/internal/api"
	"github.com/tomz197/bugzapper/internal/config"
	"github.com/tomz197/bugzapper/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stderr, cfg.Log, "web")

	st, err := openStore(cfg.Store)
	if err != nil {
		logger.Fatal("failed to open store", "driver", cfg.Store.Driver, "err", err)
	}
	defer st.Close()

	apiServer := api.NewServer(st, logger)
	mux := http.NewServeMux()
	apiServer.RegisterHandlers(mux)
	mux.HandleFunc("GET /{$}", landingPage(cfg))

	srv := &http.Server{
		Addr:              cfg.Web.Addr(),
		Handler:           apiServer.LogRequests(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Bugzapper score server running", "url", "http://"+cfg.Web.Addr(), "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}

// openStore creates the configured storage backend.
func openStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := store.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

// landingPage tells visitors how to reach the game over SSH.
func landingPage(cfg config.Config) http.HandlerFunc {
	page := fmt.Sprintf("Bugzapper\n\nPlay in your terminal:\n\n    ssh -t -p %d %s\n\nScores: /api/scores\nRecent games: /api/playerStats\n",
		cfg.SSH.Port, cfg.Web.SSHDisplayHost)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, page)
	}
}
