package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"

	"github.com/wagnerlima/pocketnetwork/internal/config"
	"github.com/wagnerlima/pocketnetwork/internal/server"
	"github.com/wagnerlima/pocketnetwork/internal/storage"
)

func main() {
	transport := pflag.String("transport", "stdio", "Transport mode: stdio or http")
	port := pflag.String("port", "8081", "HTTP port (only used with --transport http)")
	dataDir := pflag.String("data-dir", "./data", "Directory for the SQLite database")
	configPath := pflag.String("config", "", "Settings file (default <data-dir>/settings.json)")
	pflag.Parse()

	if *configPath == "" {
		*configPath = filepath.Join(*dataDir, "settings.json")
	}

	store, err := storage.Open(*dataDir)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	settings, err := config.NewHolder(*configPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	srv, feed := server.New(store, settings)
	defer feed.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch *transport {
	case "stdio":
		log.Println("PocketNetwork MCP server starting (stdio)")
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case "http":
		addr := ":" + *port
		handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
			return srv
		}, nil)
		log.Printf("PocketNetwork MCP server listening on %s", addr)
		if err := http.ListenAndServe(addr, handler); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	default:
		log.Fatalf("Unknown transport: %s (use stdio or http)", *transport)
	}
}
