package main

import (
	"fmt"
	"os"

	"github.com/ironsheep/vanishing-point-mcp/internal/config"
	"github.com/ironsheep/vanishing-point-mcp/internal/logging"
	"github.com/ironsheep/vanishing-point-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("vanishing-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("vanishing-mcp - MCP server for vanishing point estimation")
			fmt.Println()
			fmt.Println("Usage: vanishing-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  VP_MCP_LOG_LEVEL=debug         Log level: debug, info, warn, error")
			fmt.Println("  VP_MCP_CONFIG=/path/cfg.json   Base pipeline configuration")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Logs are written to stderr.")
			return
		}
	}

	logger, err := logging.New(os.Getenv("VP_MCP_LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "vanishing-mcp: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Default()
	if path := os.Getenv("VP_MCP_CONFIG"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			logger.Fatalw("failed to load configuration", "path", path, "error", err)
		}
	}

	logger.Infow("starting vanishing point MCP server",
		"version", Version,
		"build_time", BuildTime,
		"commit", GitCommit,
	)

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatalw("failed to create server", "error", err)
	}
	if err := srv.Run(); err != nil {
		logger.Fatalw("server error", "error", err)
	}
}
