// Warrantyd is a conversational customer-support agent for car warranty
// services. It answers warranty and coverage questions, sells Car Care
// Package (CCP) plans, files claims, and books service appointments, all
// through an LLM bound to a fixed tool catalog over a CSV record store.
//
// Usage:
//
//	warrantyd serve          Start the API server
//	warrantyd ask <prompt>   Run a single conversational turn (for testing)
//	warrantyd version        Print version and build information
//	warrantyd -o json version  Output version information as JSON
//
// Configuration is loaded from a single YAML file discovered
// automatically (see [config.DefaultSearchPaths]).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ashwink/warranty-agent/internal/agent"
	"github.com/ashwink/warranty-agent/internal/api"
	"github.com/ashwink/warranty-agent/internal/booking"
	"github.com/ashwink/warranty-agent/internal/buildinfo"
	"github.com/ashwink/warranty-agent/internal/calcs"
	"github.com/ashwink/warranty-agent/internal/config"
	"github.com/ashwink/warranty-agent/internal/events"
	"github.com/ashwink/warranty-agent/internal/llm"
	"github.com/ashwink/warranty-agent/internal/memory"
	"github.com/ashwink/warranty-agent/internal/notify"
	"github.com/ashwink/warranty-agent/internal/store"
	"github.com/ashwink/warranty-agent/internal/tools"
	"github.com/ashwink/warranty-agent/internal/warranty"
)

// main constructs the OS-level environment (context, stdio, argv) and
// delegates immediately to [run]. This keeps os.Exit, os.Stdout, and
// os.Args out of the application logic so the full startup-to-shutdown
// lifecycle can be driven from tests.
func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point for the warrantyd command. Arguments are
// parsed by hand: the flag package relies on package-level globals,
// which makes it impossible to call run() concurrently from tests, and
// the argument surface here is small enough that manual parsing is
// clearer than bringing in a CLI framework.
func run(ctx context.Context, stdout io.Writer, stderr io.Writer, args []string) error {
	var configPath string
	var outputFmt string // "text" (default) or "json"
	var command string
	var cmdArgs []string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++ // skip the value
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case (args[i] == "-o" || args[i] == "--output") && i+1 < len(args):
			outputFmt = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-o="):
			outputFmt = strings.TrimPrefix(args[i], "-o=")
		case strings.HasPrefix(args[i], "--output="):
			outputFmt = strings.TrimPrefix(args[i], "--output=")
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		default:
			if command != "" {
				cmdArgs = append(cmdArgs, args[i])
			} else {
				return fmt.Errorf("unknown flag: %s", args[i])
			}
		}
	}

	if outputFmt == "" {
		outputFmt = "text"
	}
	if outputFmt != "text" && outputFmt != "json" {
		return fmt.Errorf("unknown output format: %q (expected text or json)", outputFmt)
	}

	switch command {
	case "serve":
		return runServe(ctx, stdout, configPath)
	case "ask":
		if len(cmdArgs) == 0 {
			return fmt.Errorf("usage: warrantyd ask <prompt>")
		}
		return runAsk(ctx, stdout, configPath, cmdArgs)
	case "version":
		return runVersion(stdout, outputFmt)
	case "":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// runVersion prints build metadata in the requested output format.
func runVersion(w io.Writer, outputFmt string) error {
	info := buildinfo.Info()
	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintln(w, buildinfo.String())
	// Print fields in a stable order for human readability.
	for _, k := range []string{"version", "git_commit", "build_time", "go_version", "os", "arch"} {
		if v, ok := info[k]; ok {
			fmt.Fprintf(w, "  %-12s %s\n", k+":", v)
		}
	}
	return nil
}

// printUsage writes the top-level help text to w. It is called when
// warrantyd is invoked with no arguments, or with -h / --help.
func printUsage(w io.Writer) error {
	fmt.Fprintln(w, "warrantyd - Car Warranty Support Agent")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: warrantyd [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve        Start the API server")
	fmt.Fprintln(w, "  ask          Run a single conversational turn (for testing)")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>    Path to config file (default: auto-discover)")
	fmt.Fprintln(w, "  -o, --output fmt  Output format: text (default) or json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config search order:")
	fmt.Fprintln(w, "  ./config.yaml, ~/.config/warrantyd/config.yaml, /etc/warrantyd/config.yaml")
	return nil
}

// runAsk handles the "warrantyd ask <prompt>" subcommand. It boots a
// minimal agent (in-memory sessions, no event publisher, no HTTP server)
// and processes a single turn as the default demo customer, printing the
// reply to stdout. Useful for smoke tests without starting the server.
func runAsk(ctx context.Context, stdout io.Writer, configPath string, args []string) error {
	logger := newLogger(stdout, slog.LevelWarn)

	prompt := strings.Join(args, " ")

	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	records, err := store.Open(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("open record store %s: %w", cfg.Data.Dir, err)
	}

	notifier := notify.New(cfg.SMTP, logger)
	client := llm.NewAnthropicClient(cfg.Anthropic.APIKey, logger)
	registry := buildRegistry(records, notifier, nil, logger)

	assistant := agent.NewAssistant(client, cfg.Model, registry, agentOptions(cfg), logger)
	driver := agent.NewDriver(assistant, memory.NewStore(), nil, records, cfg.Agent.TurnRetries, logger)

	reply := driver.RunTurn(ctx, "cli", api.DefaultUserID, prompt)
	fmt.Fprintln(stdout, reply)
	return nil
}

// runServe handles the "warrantyd serve" subcommand, the primary
// operating mode. The shutdown sequence is:
//  1. SIGINT or SIGTERM cancels the context
//  2. The HTTP server drains in-flight requests
//  3. The event publisher announces offline and disconnects
func runServe(ctx context.Context, stdout io.Writer, configPath string) error {
	logger := newLogger(stdout, slog.LevelInfo)
	logger.Info("starting warrantyd", "version", buildinfo.Version, "commit", buildinfo.GitCommit, "built", buildinfo.BuildTime)

	cfg, cfgPath, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Reconfigure the logger now that the desired level is known. The
	// initial Info-level logger covers only the startup banner.
	if cfg.LogLevel != "" {
		level, err := config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = newLogger(stdout, level)
	}

	logger.Info("config loaded",
		"path", cfgPath,
		"port", cfg.Listen.Port,
		"model", cfg.Model,
		"data_dir", cfg.Data.Dir,
	)

	// --- Record store ---
	// Flat CSV tables holding vehicles, warranties, claims, appointments,
	// packages, service centers, and customers.
	records, err := store.Open(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("open record store %s: %w", cfg.Data.Dir, err)
	}

	// --- Outbound email ---
	// Runs in mock-delivery mode when no SMTP host is configured, so the
	// agent still reports email outcomes in development.
	notifier := notify.New(cfg.SMTP, logger)
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP not configured, email delivery runs in mock mode")
	}

	// --- Business events ---
	// Optional MQTT publisher for purchases, claims, and bookings. A nil
	// publisher (no broker configured) disables publishing entirely.
	publisher := events.New(cfg.MQTT, logger)
	if publisher != nil {
		go func() {
			if err := publisher.Start(ctx); err != nil {
				logger.Error("event publisher failed", "error", err)
			}
		}()
	}

	// --- LLM client ---
	client := llm.NewAnthropicClient(cfg.Anthropic.APIKey, logger)
	if err := client.Ping(ctx); err != nil {
		logger.Warn("anthropic API not reachable at startup", "error", err)
	}

	// --- Tool catalog ---
	registry := buildRegistry(records, notifier, publisher, logger)
	logger.Info("tool catalog bound", "tools", len(registry.List()))

	// --- Session persistence ---
	// SQLite-backed checkpoints restore conversations across restarts.
	// An empty path keeps sessions in memory only.
	sessions := memory.NewStore()
	var checkpoints *memory.CheckpointStore
	if cfg.Sessions.Path != "" {
		db, err := memory.OpenCheckpointDB(cfg.Sessions.Path)
		if err != nil {
			return fmt.Errorf("open session database %s: %w", cfg.Sessions.Path, err)
		}
		defer db.Close()

		checkpoints, err = memory.NewCheckpointStore(db)
		if err != nil {
			return fmt.Errorf("init session checkpoints: %w", err)
		}

		restored, err := checkpoints.LoadSessions()
		if err != nil {
			return fmt.Errorf("restore sessions: %w", err)
		}
		sessions.Restore(restored)
		logger.Info("sessions restored", "path", cfg.Sessions.Path, "count", len(restored))
	}

	// --- Conversation driver ---
	assistant := agent.NewAssistant(client, cfg.Model, registry, agentOptions(cfg), logger)
	driver := agent.NewDriver(assistant, sessions, checkpoints, records, cfg.Agent.TurnRetries, logger)

	// --- HTTP server ---
	server := api.NewServer(cfg.Listen.Address, cfg.Listen.Port, driver, logger)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx := context.Background()
		_ = server.Shutdown(shutdownCtx)
		_ = publisher.Stop(shutdownCtx)
	}()

	// Blocks until the server is shut down via context cancellation or
	// a fatal listener error.
	if err := server.Start(ctx); err != nil {
		if ctx.Err() == nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	logger.Info("warrantyd stopped")
	return nil
}

// buildRegistry binds the full tool catalog: warranty operations, service
// appointments, date calculations, and email notification. The event
// publisher may be nil.
func buildRegistry(records *store.Store, notifier *notify.Notifier, publisher *events.Publisher, logger *slog.Logger) *tools.Registry {
	registry := tools.NewRegistry()

	warranty.New(records, notifier, publisher, logger).Register(registry)
	booking.New(records, notifier, publisher, logger).Register(registry)
	calcs.New(nil).Register(registry)
	notifier.Register(registry)

	return registry
}

// agentOptions maps the config tunables onto assistant options. Zero
// values select the built-in defaults.
func agentOptions(cfg *config.Config) agent.Options {
	return agent.Options{
		Compaction: memory.CompactionConfig{
			TruncateTokens: cfg.Agent.TruncateTokens,
			StrictTokens:   cfg.Agent.StrictTokens,
		},
		MaxReprompts: cfg.Agent.MaxReprompts,
		ModelTimeout: cfg.Agent.ModelTimeout(),
	}
}

// newLogger creates a structured text logger writing to w at the given
// level. All warrantyd log output goes through slog; this helper
// standardizes the handler configuration across subcommands.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadConfig locates and parses the YAML configuration file. If explicit
// is non-empty, that exact path is used (and must exist). Otherwise,
// [config.FindConfig] searches the default locations.
func loadConfig(explicit string) (*config.Config, string, error) {
	cfgPath, err := config.FindConfig(explicit)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfgPath, fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	return cfg, cfgPath, nil
}
