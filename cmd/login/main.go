package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"academic-dashboard/internal/apiclient"
	"academic-dashboard/internal/config"
	"academic-dashboard/internal/tokenstore"
)

func main() {
	var (
		email    = flag.String("email", "", "account email")
		password = flag.String("password", "", "account password (default $DASHBOARD_PASSWORD)")
	)
	flag.Parse()

	pwd := *password
	if pwd == "" {
		pwd = os.Getenv("DASHBOARD_PASSWORD")
	}
	if *email == "" || pwd == "" {
		log.Fatal("login: -email and -password (or DASHBOARD_PASSWORD) are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := config.Load()
	tokens, closeTokens, err := tokenstore.Open(cfg)
	if err != nil {
		log.Fatalf("token store: %v", err)
	}
	defer closeTokens()

	client := apiclient.NewFromConfig(cfg, tokens)
	ident, err := client.Login(ctx, *email, pwd)
	if err != nil {
		if msg := apiclient.ServerMessage(err); msg != "" {
			log.Fatalf("login failed: %s", msg)
		}
		log.Fatalf("login failed: %v", err)
	}
	log.Printf("logged in as %s (%s), credential stored in %s store", ident.Email, ident.Role, cfg.TokenStore)
}
