package main

import (
	"context"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/glfm/pkg/glfm"
	"github.com/samcharles93/glfm/pkg/glfm/link"
)

// stateSummary is the JSON form of a learned latent state.
type stateSummary struct {
	ID        string      `json:"id"`
	Types     string      `json:"types"`
	N         int         `json:"n"`
	D         int         `json:"d"`
	K         int         `json:"k"`
	ElapsedMS int64       `json:"elapsed_ms"`
	Z         [][]float64 `json:"z"`
	Mu        []float64   `json:"mu"`
	W         []float64   `json:"w"`
	S2Y       []float64   `json:"s2y"`
	R         []int       `json:"r"`
	Offset    []float64   `json:"offset"`
	Labels    [][]float64 `json:"labels,omitempty"`
	Theta     [][]float64 `json:"theta,omitempty"`
}

func summarize(types []link.DataType, st *glfm.LatentState) stateSummary {
	n, _ := st.Z.Dims()
	d, k := st.Dims()
	sum := stateSummary{
		ID:        st.ID,
		Types:     link.FormatTypes(types),
		N:         n,
		D:         d,
		K:         k,
		ElapsedMS: st.Elapsed.Milliseconds(),
		Z:         rows(st.Z),
		Mu:        st.Mu,
		W:         st.W,
		S2Y:       st.S2Y,
		R:         st.R,
		Offset:    st.Offset,
		Labels:    st.Labels,
	}
	if slices.Contains(types, link.Ordinal) {
		sum.Theta = st.Theta
	}
	return sum
}

func inferCmd() *cli.Command {
	return &cli.Command{
		Name:  "infer",
		Usage: "Learn the latent features of a dataset",
		Flags: append(dataFlags(true), modelFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			st, err := s.infer(ctx)
			if err != nil {
				return exitOnError(err)
			}
			return exitOnError(writeJSON(summarize(s.data.Types, st)))
		},
	}
}
