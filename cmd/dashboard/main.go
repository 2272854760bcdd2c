package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"academic-dashboard/internal/apiclient"
	"academic-dashboard/internal/config"
	"academic-dashboard/internal/dashboard"
	"academic-dashboard/internal/tokenstore"
	"academic-dashboard/internal/view"
)

func main() {
	var (
		screenName = flag.String("screen", "", "screen to render: "+strings.Join(dashboard.Names(), ", "))
		search     = flag.String("search", "", "case-insensitive search term")
		category   = flag.String("category", view.CategoryAll, `category filter ("all" = no filter)`)
		format     = flag.String("format", "table", "output format: table, json or yaml")
		fields     = flag.String("fields", "", "comma separated row fields to keep (json/yaml only)")
		list       = flag.Bool("list", false, "list screens and exit")
	)
	flag.Parse()

	if *list {
		for _, name := range dashboard.Names() {
			s, _ := dashboard.Lookup(name)
			fmt.Printf("%-20s %-10s %s\n", s.Name, s.Role, s.Title)
		}
		return
	}

	screen, err := dashboard.Lookup(*screenName)
	if err != nil {
		log.Fatal(err)
	}
	render, err := renderer(*format)
	if err != nil {
		log.Fatal(err)
	}
	if keys := splitFields(*fields); len(keys) > 0 {
		render = projected(render, keys)
	}

	if !run(screen, view.Filter{Search: *search, Category: *category}, render) {
		os.Exit(1)
	}
}

func run(screen dashboard.Screen, filter view.Filter, render renderFunc) bool {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	tokens, closeTokens, err := tokenstore.Open(cfg)
	if err != nil {
		log.Printf("token store: %v", err)
		return false
	}
	defer closeTokens()

	redirected := make(chan string, 1)
	client := apiclient.NewFromConfig(cfg, tokens)
	runner := dashboard.NewRunner(cfg, tokens, client, func(target string) { redirected <- target })
	defer runner.Close()

	v, err := runner.Run(ctx, screen, filter)
	if err != nil {
		var serr *dashboard.SessionError
		var ferr *dashboard.FetchError
		switch {
		case errors.As(err, &serr):
			fmt.Fprintln(os.Stderr, serr.Session.Message)
		case errors.As(err, &ferr):
			fmt.Fprintln(os.Stderr, ferr.Message)
		default:
			fmt.Fprintln(os.Stderr, err)
		}
		if !isAuthenticated(runner) {
			waitRedirect(ctx, redirected, cfg.RedirectDelay)
		}
		return false
	}

	if err := render(os.Stdout, v); err != nil {
		log.Printf("render: %v", err)
		return false
	}
	return true
}

func isAuthenticated(r *dashboard.Runner) bool {
	_, ok := r.Guard.Session().Profile()
	return ok
}

// waitRedirect is the terminal version of the login redirect: once the
// guard's timer fires the user is pointed at the login command.
func waitRedirect(ctx context.Context, redirected <-chan string, delay time.Duration) {
	select {
	case target := <-redirected:
		fmt.Fprintf(os.Stderr, "redirecting to %s: run `login -email <you>` to sign in again\n", target)
	case <-time.After(delay + time.Second):
	case <-ctx.Done():
	}
}
