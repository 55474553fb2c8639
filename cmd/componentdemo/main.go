// Package main is the entry point for componentdemo, a small two-
// component pipeline (ping echo -> counter) that exercises the full
// runtime: ordered/sliding channels, firehose observability, and state
// snapshot publication.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nugget/compruntime/internal/applog"
	"github.com/nugget/compruntime/internal/buildinfo"
	"github.com/nugget/compruntime/internal/runtimeconfig"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		return
	}

	switch flag.Arg(0) {
	case "serve":
		runServe(*configPath)
	case "ping":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "usage: componentdemo ping <n>")
			os.Exit(1)
		}
		n, err := strconv.Atoi(flag.Arg(1))
		if err != nil || n < 1 {
			fmt.Fprintln(os.Stderr, "usage: componentdemo ping <n>, n must be a positive integer")
			os.Exit(1)
		}
		runPing(*configPath, n)
	case "version":
		fmt.Println(buildinfo.String())
		for k, v := range buildinfo.BuildInfo() {
			fmt.Printf("  %-12s %s\n", k+":", v)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", flag.Arg(0))
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("componentdemo - message-passing component runtime demo")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve    Start the demo pipeline and block until interrupted")
	fmt.Println("  ping N   Send N ping messages through the pipeline and print the result")
	fmt.Println("  version  Show version")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

func loadConfig(logger *slog.Logger, explicit string) runtimeconfig.Config {
	path, err := runtimeconfig.FindConfig(explicit)
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}
	if path == "" {
		return runtimeconfig.Default()
	}
	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		logger.Error("failed to load config", "path", path, "error", err)
		os.Exit(1)
	}
	return cfg
}

func runServe(configPath string) {
	cfg := loadConfig(slog.Default(), configPath)
	logger := applog.New(cfg.LogLevel)
	logger.Info("starting componentdemo", "version", buildinfo.Version)

	ctx, cancel := context.WithCancel(context.Background())

	pipeline := newPingPongPipeline(ctx, cfg, logger)
	defer pipeline.Shutdown()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	logger.Info("pipeline ready, send SIGINT/SIGTERM to stop")
	<-ctx.Done()
}

func runPing(configPath string, n int) {
	cfg := loadConfig(slog.Default(), configPath)
	logger := applog.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipeline := newPingPongPipeline(ctx, cfg, logger)
	defer pipeline.Shutdown()

	for i := 0; i < n; i++ {
		pipeline.SendPing(i)
	}

	// Give the pipeline a moment to settle: N pings through two
	// dispatch loops and a relay goroutine.
	time.Sleep(200 * time.Millisecond)

	snap := pipeline.CounterSnapshot()
	fmt.Printf("counter state after %d pings: %v\n", n, snap)

	if cfg.Firehose.Enabled {
		entries := pipeline.FirehoseEntries()
		fmt.Printf("firehose recorded %d envelopes\n", len(entries))
	}
}
