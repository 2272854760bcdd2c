package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"academic-dashboard/internal/config"
	"academic-dashboard/internal/devapi"
)

func main() {
	cfg := config.Load()
	addr := flag.String("addr", cfg.DevAPIAddr, "listen address")
	publicURL := flag.String("public-url", "", "base url used in uploaded photo links")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := devapi.NewStore(devapi.DefaultUsers, time.Now())
	if err != nil {
		log.Fatalf("seed store: %v", err)
	}
	opts := devapi.OptionsFromConfig(cfg)
	opts.PublicURL = *publicURL
	server := devapi.NewServer(opts, store)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("devapi listening on %s", *addr)
		for _, u := range devapi.DefaultUsers {
			log.Printf("  %-20s %-10s password=%s", u.Email, u.Role, u.Password)
		}
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("devapi: %v", err)
	}
}
