// Command rtldoc-mcp is an MCP (Model Context Protocol) server that exposes
// Persian document generation to AI assistants.
//
// # Installation
//
//	go install github.com/lvillar/rtldoc/cmd/rtldoc-mcp@latest
//
// # Configuration for Claude Desktop
//
// Add to ~/.config/claude/claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "rtldoc": {
//	      "command": "rtldoc-mcp",
//	      "args": ["-config", "/etc/rtldoc.yaml"]
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - generate_document: Generate a contract or estimate as PDF or DOCX
//   - shape_text: Shape mixed Persian/Latin text for display
//   - to_jalali: Convert an ISO-8601 date to a Jalali date
//   - to_gregorian: Convert a Jalali date to an ISO-8601 date
//   - split_installments: Split an amount into a payment schedule
//
// # Available Resources
//
//   - template://contract : Contract template as YAML
//   - template://estimate : Estimate template as YAML
//   - template://generators : Generator and resolver names
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lvillar/rtldoc/config"
	"github.com/lvillar/rtldoc/internal/app"
	"github.com/lvillar/rtldoc/internal/logger"
	"github.com/lvillar/rtldoc/mcp"
)

func main() {
	configPath := flag.String("config", os.Getenv("RTLDOC_CONFIG"), "Path to the YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "rtldoc-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// Stdout carries the protocol; the logger writes to stderr.
	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := app.NewEngine(cfg, log, nil)
	if err != nil {
		return err
	}
	src, release, err := app.NewSource(ctx, cfg.Records, log)
	if err != nil {
		return err
	}
	defer release()

	server := mcp.NewServer(mcp.WithLogger(log))
	mcp.RegisterDefaultTools(server, eng, src)
	mcp.RegisterDefaultResources(server, eng)

	log.Info("mcp server started", zap.String("records", sourceName(cfg.Records)))
	return server.Run(ctx)
}

func sourceName(r config.Records) string {
	if r.DSN != "" {
		return "postgres"
	}
	return r.Dir
}
