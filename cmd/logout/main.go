package main

import (
	"context"
	"log"
	"time"

	"academic-dashboard/internal/apiclient"
	"academic-dashboard/internal/config"
	"academic-dashboard/internal/tokenstore"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config.Load()
	tokens, closeTokens, err := tokenstore.Open(cfg)
	if err != nil {
		log.Fatalf("token store: %v", err)
	}
	defer closeTokens()

	if err := apiclient.NewFromConfig(cfg, tokens).Logout(ctx); err != nil {
		log.Fatalf("logout: %v", err)
	}
	log.Printf("logged out")
}
