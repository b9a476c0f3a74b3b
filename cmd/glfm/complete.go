package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/glfm/internal/logger"
)

type completion struct {
	Completed bool        `json:"completed"`
	StateID   string      `json:"state_id,omitempty"`
	X         [][]float64 `json:"x"`
}

func completeCmd() *cli.Command {
	var asCSV bool

	return &cli.Command{
		Name:  "complete",
		Usage: "Fill the missing cells of a dataset with their MAP estimates",
		Flags: append(append(dataFlags(true), modelFlags()...),
			&cli.BoolFlag{
				Name:        "csv",
				Usage:       "write the completed matrix as CSV instead of JSON",
				Destination: &asCSV,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			out, st, err := s.model.Complete(ctx, s.data, s.hidden)
			if err != nil {
				return exitOnError(err)
			}
			res := completion{X: rows(s.data.X)}
			if out == nil {
				logger.FromContext(ctx).Info("nothing to complete")
			} else {
				res = completion{Completed: true, StateID: st.ID, X: rows(out)}
			}
			if asCSV {
				if out == nil {
					return exitOnError(writeCSV(s.data.X))
				}
				return exitOnError(writeCSV(out))
			}
			return exitOnError(writeJSON(res))
		},
	}
}
