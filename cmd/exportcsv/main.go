package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"academic-dashboard/internal/apiclient"
	"academic-dashboard/internal/concurrency"
	"academic-dashboard/internal/config"
	"academic-dashboard/internal/dashboard"
	"academic-dashboard/internal/domain"
	"academic-dashboard/internal/export"
	"academic-dashboard/internal/sftpclient"
	"academic-dashboard/internal/tokenstore"
	"academic-dashboard/internal/view"
)

type screenResult struct {
	screen string
	path   string
	rows   int
}

func main() {
	var (
		screenList = flag.String("screens", "", "comma separated screens (default: every screen of your role)")
		roleFlag   = flag.String("role", "", "export every screen of this role instead of the logged-in one")
		outDir     = flag.String("out", "exports", "output directory")
		search     = flag.String("search", "", "search term applied to every screen")
		category   = flag.String("category", view.CategoryAll, "category filter applied to every screen")
		format     = flag.String("format", "csv", "report format: csv or xml")
		uploadSFTP = flag.Bool("sftp", false, "upload the generated reports via SFTP")
	)
	flag.Parse()

	write, err := reportWriter(*format)
	if err != nil {
		log.Fatal(err)
	}

	rootCtx, rootCancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer rootCancel()

	cfg := config.Load()
	tokens, closeTokens, err := tokenstore.Open(cfg)
	if err != nil {
		log.Fatalf("token store: %v", err)
	}
	defer closeTokens()

	client := apiclient.NewFromConfig(cfg, tokens)

	role, err := domain.ParseRoleFlag(*roleFlag)
	if err != nil {
		log.Fatal(err)
	}
	if strings.TrimSpace(*screenList) == "" && role == "" {
		ident, err := client.VerifyIdentity(rootCtx)
		if err != nil {
			log.Fatalf("resolve role: %v (run login first)", err)
		}
		if role, err = domain.ParseRole(ident.Role.String()); err != nil {
			log.Fatalf("resolve role: %v", err)
		}
	}
	screens, err := selectScreens(*screenList, role)
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	filter := view.Filter{Search: *search, Category: *category}
	now := time.Now()

	// one runner per screen: guards and fetchers are never shared
	results, errs := concurrency.ProcessParallel(rootCtx, screens, concurrency.ParallelOptions{MaxWorkers: 4},
		func(ctx context.Context, _ int, s dashboard.Screen) (screenResult, error) {
			runner := dashboard.NewRunner(cfg, tokens, client, nil)
			defer runner.Close()

			v, err := runner.Run(ctx, s, filter)
			if err != nil {
				return screenResult{}, fmt.Errorf("%s: %w", s.Name, err)
			}
			out := filepath.Join(*outDir, export.FileName(s.Name, *format, now))
			if err := write(out, s.Name, now, v.Table); err != nil {
				return screenResult{}, fmt.Errorf("%s: %w", s.Name, err)
			}
			return screenResult{screen: s.Name, path: out, rows: len(v.Table.Rows)}, nil
		})

	for _, err := range errs {
		log.Printf("WARN: %v", err)
	}

	var written []screenResult
	for _, r := range results {
		if r.path == "" {
			continue
		}
		written = append(written, r)
		log.Printf("wrote %d rows for %s to %s", r.rows, r.screen, r.path)
	}
	if len(written) == 0 {
		log.Fatal("no report written")
	}

	if *uploadSFTP {
		upCfg := sftpclient.ConfigFrom(cfg)
		upCtx, upCancel := context.WithTimeout(rootCtx, 5*time.Minute)
		defer upCancel()

		for _, r := range written {
			remoteName := filepath.Base(r.path)
			if err := sftpclient.UploadFile(upCtx, upCfg, r.path, remoteName); err != nil {
				log.Fatal(err)
			}
			log.Printf("uploaded to sftp://%s:%d%s/%s", upCfg.Host, upCfg.Port, upCfg.RemoteDir, remoteName)
		}
	}
}

type writeFunc func(outPath, screen string, at time.Time, t export.Table) error

func reportWriter(format string) (writeFunc, error) {
	switch format {
	case "csv":
		return func(outPath, _ string, _ time.Time, t export.Table) error {
			return export.WriteCSVFile(outPath, t)
		}, nil
	case "xml":
		return export.WriteXMLFile, nil
	}
	return nil, fmt.Errorf("unknown format %q (csv, xml)", format)
}

// selectScreens resolves an explicit comma list, or every screen for role
// when the list is empty.
func selectScreens(list string, role domain.Role) ([]dashboard.Screen, error) {
	var out []dashboard.Screen
	if strings.TrimSpace(list) == "" {
		for _, name := range dashboard.Names() {
			s, _ := dashboard.Lookup(name)
			if s.Role == role {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("no screens for role %q", role)
		}
		return out, nil
	}

	seen := map[string]bool{}
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		s, err := dashboard.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no screens selected")
	}
	return out, nil
}
