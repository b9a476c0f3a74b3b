package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/glfm/pkg/glfm"
)

type pdfResult struct {
	Dim  int         `json:"dim"`
	Grid []float64   `json:"grid"`
	PDF  [][]float64 `json:"pdf"`
}

func pdfCmd() *cli.Command {
	var (
		query string
		dim   int
	)

	return &cli.Command{
		Name:  "pdf",
		Usage: "Evaluate the predictive density of one dimension",
		Flags: append(append(dataFlags(true), modelFlags()...),
			queryFlag(&query),
			&cli.IntFlag{
				Name:        "dim",
				Usage:       "dimension to evaluate (0-based)",
				Destination: &dim,
			},
			&cli.IntFlag{
				Name:  "nums",
				Usage: "grid points for real and positive dimensions",
				Value: glfm.DefaultNumS,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			opts, err := s.options()
			if err != nil {
				return exitOnError(err)
			}
			st, err := s.infer(ctx)
			if err != nil {
				return exitOnError(err)
			}
			zp, err := queryMatrix(query, st)
			if err != nil {
				return err
			}
			dens, err := glfm.ComputePDF(s.data, dim, zp, st, opts)
			if err != nil {
				return exitOnError(err)
			}
			return exitOnError(writeJSON(pdfResult{Dim: dim, Grid: dens.Grid, PDF: rows(dens.PDF)}))
		},
	}
}
