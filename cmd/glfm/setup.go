package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/glfm/internal/logger"
)

// loadedConfig is the config file read by setup, shared with subcommands.
var loadedConfig Config

// stderrIsTTY is a small seam for tests.
var stderrIsTTY = func() bool { return isTerminal(os.Stderr) }

func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("config: %v", err), 1)
	}
	loadedConfig = cfg
	applyLoggingConfig(cmd, cfg)

	log, err := buildLogger(os.Stderr, logLevel, logFormat, debug, stderrIsTTY())
	if err != nil {
		return ctx, cli.Exit(err.Error(), 1)
	}
	return logger.WithContext(ctx, log), nil
}

func buildLogger(w io.Writer, level, format string, debug, tty bool) (logger.Logger, error) {
	lvl, err := logger.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if debug {
		lvl = slog.LevelDebug
	}
	if format == "" {
		format = "text"
		if tty {
			format = "pretty"
		}
	}
	return logger.ForFormat(format, w, lvl, tty)
}
