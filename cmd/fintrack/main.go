package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/idilsaglam/fintrack/internal/app"
	"github.com/idilsaglam/fintrack/internal/cli"
	"github.com/idilsaglam/fintrack/internal/config"
	"github.com/idilsaglam/fintrack/internal/logger"
	"github.com/idilsaglam/fintrack/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// Root flags (apply to every subcommand)
	group := flag.Bool("group", false, "group list output by status")
	theme := flag.String("theme", cfg.UI.Theme, "color theme: classic, neon or mono")
	apiURL := flag.String("api", cfg.API.BaseURL, "API base URL")
	noColor := flag.Bool("no-color", false, "disable colors")
	flag.Parse()

	cfg.API.BaseURL = strings.TrimRight(*apiURL, "/")
	ui.SetTheme(*theme)
	ui.SetColorForcing(false, *noColor)

	log, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Output:   cfg.Logger.Output,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}

	a, err := app.New(cfg, log)
	if err != nil {
		ui.Fail(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	log.Debug("starting", zap.String("api", cfg.API.BaseURL), zap.Strings("args", flag.Args()))
	code := cli.Run(ctx, a, flag.Args(), cli.Options{Group: *group})
	stop()
	_ = log.Sync()
	os.Exit(code)
}
