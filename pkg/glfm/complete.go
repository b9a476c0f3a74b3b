package glfm

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/glfm/internal/logger"
)

// Complete fills every missing cell of data with its MAP estimate. It runs
// inference first, using hidden as the initial state, and returns the
// completed copy of X together with the learned state. Observed cells are
// copied unchanged and categorical/ordinal estimates are returned in the
// caller's label space.
//
// If data has no missing cells Complete returns a nil matrix and hidden
// as given, without running inference.
func (m *Model) Complete(ctx context.Context, data Data, hidden *LatentState) (*mat.Dense, *LatentState, error) {
	if err := data.validate(); err != nil {
		return nil, nil, err
	}
	_, dims := data.X.Dims()
	opts, err := Resolve(dims, m.Params)
	if err != nil {
		return nil, nil, err
	}
	if !data.HasMissing(opts.Missing) {
		logger.FromContext(ctx).Debug("the input matrix has no missing values to complete")
		return nil, hidden, nil
	}

	st, ds, opts, err := m.infer(ctx, data, hidden)
	if err != nil {
		return nil, nil, err
	}

	out := mat.DenseCopyOf(data.X)
	for _, cell := range ds.missingCells() {
		r, d := cell[0], cell[1]
		est, err := ComputeMAP(data.Types, st.Z.RowView(r), st, opts, d)
		if err != nil {
			return nil, nil, err
		}
		st.Relabel(data.Types, est, d)
		out.Set(r, d, est.At(0, 0))
	}
	return out, st, nil
}
