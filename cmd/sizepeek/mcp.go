package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/sizepeek/internal/ipc"
	"github.com/1broseidon/sizepeek/internal/logging"
	"github.com/1broseidon/sizepeek/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sizepeek mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'sizepeek mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	fs := newFlagSet("mcp serve", "mcp serve [--path PATH]", "Start the MCP server on stdio. The sizepeek daemon must be running.")
	path := fs.String("path", "", "Config file path, read for logging settings")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 1
	}

	// stdout carries the protocol, so logs always go to stderr or the log file.
	logger, closer, err := logging.New(res.Config.GetLoggingConfig(), os.Stderr)
	if err != nil {
		log.Printf("Failed to open log file: %v", err)
		return 1
	}
	defer closer.Close()

	server := mcp.NewServer(ipc.NewClient(), logger.With("component", "mcp"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("MCP server error: %v", err)
		return 1
	}
	return 0
}
