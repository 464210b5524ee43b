package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/term"

	"pollwatch/internal/cli_plugins"
	"pollwatch/internal/config"
	"pollwatch/internal/util/logger/handlers/slogpretty"
	"pollwatch/pkg/cli"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	// --config is read before cobra parses flags: the config decides the logger.
	cfg, err := config.Load(configPathFromArgs(os.Args[1:]))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := setupLogger(cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signalChan
		log.Info("shutdown signal received", slog.Any("signal", sig))
		cancel()
	}()

	useColor := term.IsTerminal(int(os.Stdout.Fd()))
	color.NoColor = !useColor

	appCtx := cliplugins.NewAppContext(cfg, log, os.Stdout, useColor)

	app := cli.NewCLI("pollwatch", "Portable polling directory watcher")
	app.Root().PersistentFlags().String("config", "", "path to config file")
	app.RegisterPlugin(cliplugins.NewWatchCommand(appCtx))
	app.RegisterPlugin(cliplugins.NewScanCommand(appCtx))
	app.RegisterPlugin(cliplugins.NewJournalCommand(appCtx))

	if err := app.Run(ctx, nil); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// configPathFromArgs finds --config value or --config=value.
func configPathFromArgs(args []string) string {
	for i, a := range args {
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
	}
	return ""
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stderr)

	return slog.New(handler)
}
