package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/glfm/pkg/glfm"
)

var (
	configFile string
	logLevel   string
	logFormat  string
	debug      bool

	dataPath  string
	typeCodes string
	initZPath string
	outPath   string
	maxSweeps int
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Usage:       "path to config.yaml (default: $XDG_CONFIG_HOME/glfm/config.yaml)",
		Destination: &configFile,
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text); pretty on a terminal, text otherwise",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// dataFlags select the observation matrix every model command works on.
func dataFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "data",
			Aliases:     []string{"x"},
			Usage:       "CSV observation matrix, one row per observation (- for stdin)",
			Required:    required,
			Destination: &dataPath,
		},
		&cli.StringFlag{
			Name:        "types",
			Aliases:     []string{"t"},
			Usage:       "one type code per column: g real, p positive, n count, c categorical, o ordinal",
			Required:    required,
			Destination: &typeCodes,
		},
		&cli.StringFlag{
			Name:        "init-z",
			Usage:       "CSV initial binary feature matrix (N rows)",
			Destination: &initZPath,
		},
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "write output to this file instead of stdout",
			Destination: &outPath,
		},
	}
}

func modelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{Name: "missing", Usage: "sentinel marking missing cells (NaN cells are always missing)", Value: glfm.DefaultMissing},
		&cli.Float64Flag{Name: "alpha", Usage: "concentration of the feature prior", Value: glfm.DefaultAlpha},
		&cli.IntFlag{Name: "bias", Usage: "1 adds an always-active feature", Value: 0},
		&cli.Float64Flag{Name: "s2u", Usage: "auxiliary noise variance", Value: glfm.DefaultS2U},
		&cli.Float64Flag{Name: "s2b", Usage: "prior variance of the weights", Value: glfm.DefaultS2B},
		&cli.IntFlag{Name: "niter", Usage: "inference iterations", Value: glfm.DefaultNIter},
		&cli.IntFlag{Name: "maxk", Usage: "maximum number of features (default: number of columns)"},
		&cli.IntFlag{Name: "verbose", Usage: "1 logs inference progress at info level", Value: glfm.DefaultVerbose},
		&cli.Int64Flag{Name: "seed", Usage: "seed for the random initial feature matrix"},
		&cli.IntFlag{
			Name:        "max-sweeps",
			Usage:       "cap on the engine's fit sweeps (0 for no cap)",
			Value:       50,
			Destination: &maxSweeps,
		},
	}
}

// flagParams collects the model flags the user set explicitly.
func flagParams(cmd *cli.Command) glfm.Params {
	var p glfm.Params
	if cmd.IsSet("missing") {
		p.Missing = glfm.Ptr(cmd.Float64("missing"))
	}
	if cmd.IsSet("alpha") {
		p.Alpha = glfm.Ptr(cmd.Float64("alpha"))
	}
	if cmd.IsSet("bias") {
		p.Bias = glfm.Ptr(cmd.Int("bias"))
	}
	if cmd.IsSet("s2u") {
		p.S2U = glfm.Ptr(cmd.Float64("s2u"))
	}
	if cmd.IsSet("s2b") {
		p.S2B = glfm.Ptr(cmd.Float64("s2b"))
	}
	if cmd.IsSet("niter") {
		p.NIter = glfm.Ptr(cmd.Int("niter"))
	}
	if cmd.IsSet("maxk") {
		p.MaxK = glfm.Ptr(cmd.Int("maxk"))
	}
	if cmd.IsSet("verbose") {
		p.Verbose = glfm.Ptr(cmd.Int("verbose"))
	}
	if cmd.IsSet("seed") {
		p.Seed = glfm.Ptr(cmd.Int64("seed"))
	}
	if cmd.IsSet("nums") {
		p.NumS = glfm.Ptr(cmd.Int("nums"))
	}
	return p
}
