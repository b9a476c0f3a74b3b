package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/glfm/pkg/glfm"
)

type patternsResult struct {
	Patterns [][]float64 `json:"patterns"`
	Assign   []int       `json:"assign"`
	Counts   []int       `json:"counts"`
}

func patternsCmd() *cli.Command {
	var (
		zPath  string
		asText bool
	)

	return &cli.Command{
		Name:  "patterns",
		Usage: "Group observations by their latent feature pattern",
		Flags: append(append(dataFlags(false), modelFlags()...),
			&cli.StringFlag{
				Name:        "z",
				Usage:       "CSV binary feature matrix; without it Z is learned from --data",
				Destination: &zPath,
			},
			&cli.BoolFlag{
				Name:        "text",
				Usage:       "print one line per pattern instead of JSON",
				Destination: &asText,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var z mat.Matrix
			switch {
			case zPath != "":
				m, err := readMatrix(zPath)
				if err != nil {
					return cli.Exit(fmt.Sprintf("read Z: %v", err), 1)
				}
				z = m
			case dataPath != "" && typeCodes != "":
				s, err := newSession(cmd)
				if err != nil {
					return err
				}
				st, err := s.infer(ctx)
				if err != nil {
					return exitOnError(err)
				}
				z = st.Z
			default:
				return cli.Exit("patterns needs --z, or --data and --types", 1)
			}

			p, err := glfm.FeaturePatterns(z)
			if err != nil {
				return exitOnError(err)
			}
			if asText {
				w, done, err := openOutput()
				if err != nil {
					return exitOnError(err)
				}
				if _, err := fmt.Fprint(w, p.String()); err != nil {
					_ = done()
					return exitOnError(err)
				}
				return exitOnError(done())
			}
			return exitOnError(writeJSON(patternsResult{
				Patterns: rows(p.Rows),
				Assign:   p.Assign,
				Counts:   p.Counts,
			}))
		},
	}
}
