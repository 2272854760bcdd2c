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
	file := flag.String("file", "", "image to upload as profile photo")
	flag.Parse()
	if *file == "" {
		log.Fatal("photo: -file is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := config.Load()
	tokens, closeTokens, err := tokenstore.Open(cfg)
	if err != nil {
		log.Fatalf("token store: %v", err)
	}
	defer closeTokens()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	url, err := apiclient.NewFromConfig(cfg, tokens).UploadProfilePhoto(ctx, *file, f)
	if err != nil {
		if msg := apiclient.ServerMessage(err); msg != "" {
			log.Fatalf("upload failed: %s", msg)
		}
		log.Fatalf("upload failed: %v", err)
	}
	log.Printf("profile photo updated: %s", url)
}
