// Command bmi-server is an MCP server on stdio exposing calculate_bmi.
//
// It is the reference server for exercising a registry end to end:
//
//	mcpreg call bmi calculate_bmi --args '{"height": 1.75, "weight": 70}'
//	22.86
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	mcpregistry "github.com/wagiedev/mcp-registry-go"
)

// Build information injected via ldflags at build time.
var version = "dev"

func main() {
	// stdout carries the protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: mcpregistry.ParseLogLevel(os.Getenv("BMI_SERVER_LOG_LEVEL")),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting BMI server", "version", version)

	if err := mcpregistry.NewBMIServer(version).Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Error("BMI server stopped", "error", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop() called explicitly above
	}
}
