package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/glfm/pkg/glfm"
)

type mapResult struct {
	Dims []int       `json:"dims"`
	X    [][]float64 `json:"x"`
}

// queryFlag selects the latent feature rows to decode.
func queryFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "query",
		Aliases:     []string{"q"},
		Usage:       "CSV of latent feature rows (default: the learned Z)",
		Destination: dst,
	}
}

// queryMatrix reads --query, falling back to the learned features.
func queryMatrix(path string, st *glfm.LatentState) (mat.Matrix, error) {
	if path == "" {
		return st.Z, nil
	}
	q, err := readMatrix(path)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("read query: %v", err), 1)
	}
	return q, nil
}

func mapCmd() *cli.Command {
	var (
		query string
		asCSV bool
	)

	return &cli.Command{
		Name:  "map",
		Usage: "Decode the most likely observation for latent feature rows",
		Flags: append(append(dataFlags(true), modelFlags()...),
			queryFlag(&query),
			&cli.IntSliceFlag{
				Name:  "dims",
				Usage: "dimensions to decode (default: all)",
			},
			&cli.BoolFlag{
				Name:        "csv",
				Usage:       "write the estimates as CSV instead of JSON",
				Destination: &asCSV,
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

			dims := cmd.IntSlice("dims")
			est, err := glfm.ComputeMAP(s.data.Types, zp, st, opts, dims...)
			if err != nil {
				return exitOnError(err)
			}
			st.Relabel(s.data.Types, est, dims...)
			if asCSV {
				return exitOnError(writeCSV(est))
			}
			if len(dims) == 0 {
				d, _ := st.Dims()
				dims = make([]int, d)
				for i := range dims {
					dims[i] = i
				}
			}
			return exitOnError(writeJSON(mapResult{Dims: dims, X: rows(est)}))
		},
	}
}
