package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/idilsaglam/adminpanel/internal/cli"
	"github.com/idilsaglam/adminpanel/internal/config"
	"github.com/idilsaglam/adminpanel/internal/logging"
	"github.com/idilsaglam/adminpanel/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	configPath := flag.String("config", "", "config file (default $"+config.EnvConfigPath+" or ~/.adminpanel/config.yaml)")
	theme := flag.String("theme", "", "color theme: classic, neon or mono")
	ephemeral := flag.Bool("ephemeral", false, "keep the session in memory for this run only")
	flag.Usage = func() {
		cli.PrintHelp(os.Stderr)
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		os.Exit(1)
	}
	if *theme != "" {
		cfg.UI.Theme = *theme
	}
	if *ephemeral {
		cfg.Session.Backend = config.BackendMemory
	}
	ui.SetTheme(cfg.UI.Theme)

	args := flag.Args()
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	fullscreen := (len(args) == 0 && interactive) || (len(args) > 0 && args[0] == "tui")

	logger, closer, err := logging.Open(cfg.Log, fullscreen)
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Hand the remaining args to the CLI runner.
	code := cli.Run(ctx, args, cli.Options{
		Config:      cfg,
		Logger:      logger,
		Interactive: interactive,
	})
	stop()
	_ = closer.Close()
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
