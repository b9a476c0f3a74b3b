package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/glfm/internal/dataio"
	"github.com/samcharles93/glfm/internal/logger"
	"github.com/samcharles93/glfm/pkg/glfm"
	"github.com/samcharles93/glfm/pkg/glfm/link"
	"github.com/samcharles93/glfm/pkg/ridge"
)

// stdin and stdout are small seams for tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// session is the data and model every model command starts from.
type session struct {
	data   glfm.Data
	model  *glfm.Model
	hidden *glfm.LatentState
}

func newSession(c *cli.Command) (*session, error) {
	x, err := readMatrix(dataPath)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("read data: %v", err), 1)
	}
	types, err := link.ParseTypes(typeCodes)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("types: %v", err), 1)
	}
	params := modelParams(c, loadedConfig)
	eng := ridge.New(ridge.Config{MaxSweeps: maxSweeps})

	s := &session{
		data:  glfm.Data{X: x, Types: types},
		model: &glfm.Model{Engine: eng, Params: params},
	}
	if initZPath != "" {
		z, err := readMatrix(initZPath)
		if err != nil {
			return nil, cli.Exit(fmt.Sprintf("read initial Z: %v", err), 1)
		}
		s.hidden = &glfm.LatentState{Z: z}
	}
	return s, nil
}

func (s *session) options() (glfm.Options, error) {
	_, dims := s.data.X.Dims()
	return glfm.Resolve(dims, s.model.Params)
}

func (s *session) infer(ctx context.Context) (*glfm.LatentState, error) {
	log := logger.FromContext(ctx)
	n, d := s.data.X.Dims()
	log.Debug("starting inference", "n", n, "d", d, "types", link.FormatTypes(s.data.Types))
	st, err := s.model.Infer(ctx, s.data, s.hidden)
	if err != nil {
		return nil, err
	}
	_, k := st.Dims()
	log.Info("inference finished", "id", st.ID, "k", k, "elapsed", st.Elapsed)
	return st, nil
}

func readMatrix(path string) (*mat.Dense, error) {
	if path == "-" {
		return dataio.ReadMatrix(stdin)
	}
	return dataio.ReadFile(path)
}

// openOutput returns the writer for --out, or stdout when it is unset.
func openOutput() (io.Writer, func() error, error) {
	if outPath == "" || outPath == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func writeJSON(v any) error {
	w, done, err := openOutput()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = done()
		return err
	}
	return done()
}

func writeCSV(m mat.Matrix) error {
	w, done, err := openOutput()
	if err != nil {
		return err
	}
	if err := dataio.WriteMatrix(w, m); err != nil {
		_ = done()
		return err
	}
	return done()
}

// rows converts m into nested slices for JSON output.
func rows(m mat.Matrix) [][]float64 {
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		mat.Row(out[i], i, m)
	}
	return out
}

// exitOnError turns library errors into a non-zero exit with a message.
func exitOnError(err error) error {
	if err == nil {
		return nil
	}
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return err
	}
	return cli.Exit(err.Error(), 1)
}
