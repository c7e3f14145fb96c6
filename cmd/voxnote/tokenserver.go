// ABOUTME: The token-server command: serve temporary streaming credentials
// ABOUTME: Runs the tokensvc handler with graceful shutdown

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fatih/color"

	"github.com/voxnote/voxnote/internal/tokensvc"
)

func runTokenServer(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.TokenServer.ListenAddr == "" {
		return fmt.Errorf("token server is not configured (set token_server.listen_addr)")
	}

	handler, err := tokensvc.New(cfg.TokenServer.ProviderURL, cfg.TokenServer.APIKey, nil)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/token", handler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	server := &http.Server{
		Addr:    cfg.TokenServer.ListenAddr,
		Handler: mux,
	}

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	color.New(color.FgHiBlack).Printf("    version: %s\n\n", version)
	color.New(color.FgGreen).Print("    ▶ ")
	fmt.Printf("Token server: %s\n\n", cfg.TokenServer.ListenAddr)

	slog.Info("starting token server", "addr", cfg.TokenServer.ListenAddr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("token server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down token server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
