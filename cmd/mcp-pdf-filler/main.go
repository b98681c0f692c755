package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/mcp-pdf-filler/internal/config"
	"github.com/a3tai/mcp-pdf-filler/internal/forms"
	"github.com/a3tai/mcp-pdf-filler/internal/mcp"
	"github.com/a3tai/mcp-pdf-filler/internal/pdf"
	"github.com/a3tai/mcp-pdf-filler/internal/web"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the server mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// stdout carries the MCP protocol
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(io.Discard)
		}
	} else {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// newService builds the filling service described by cfg
func newService(cfg *config.Config) (*pdf.Service, error) {
	store, err := pdf.NewDirectoryStore(cfg.TemplateDirectory, cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}

	svc, err := pdf.NewService(store, forms.Default(), pdf.Options{
		Workers:    cfg.Workers,
		Defaults:   cfg.DefaultValues(),
		Language:   cfg.Language(),
		Companions: cfg.Companions,
	})
	if err != nil {
		return nil, err
	}

	report := svc.CheckTemplates()
	for _, t := range report.Templates {
		if !t.Available {
			log.Printf("[WARN] template %s of %s unavailable: %s", t.File, t.Document, t.Error)
		}
	}
	log.Printf("[INFO] %d template file(s) checked in %s, %d unavailable",
		len(report.Templates), report.Directory, report.Missing)

	return svc, nil
}

// runServerMode serves HTTP until SIGINT or SIGTERM
func runServerMode(cfg *config.Config, svc *pdf.Service) error {
	server, err := web.NewServer(cfg, svc)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx)
}

// runStdioMode serves MCP until stdin closes
func runStdioMode(cfg *config.Config, svc *pdf.Service) error {
	server, err := mcp.NewServer(cfg, svc)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server.Run(context.Background())
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion()
		return
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		log.Printf("[INFO] Starting with configuration: %s", cfg.String())
	}

	svc, err := newService(cfg)
	if err != nil {
		log.Fatalf("Failed to create form service: %v", err)
	}

	if cfg.IsServerMode() {
		err = runServerMode(cfg, svc)
	} else {
		err = runStdioMode(cfg, svc)
	}
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("MCP PDF Filler\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
