package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/glfm/internal/logger"
	"github.com/samcharles93/glfm/pkg/glfm"
	"github.com/samcharles93/glfm/pkg/glfm/link"
)

type Server struct {
	store   *StateStore
	engine  glfm.Engine
	log     logger.Logger
	metrics *Metrics
	clock   func() time.Time
}

func NewServer(store *StateStore, engine glfm.Engine, log logger.Logger) *Server {
	if store == nil {
		store = NewStateStore()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		store:   store,
		engine:  engine,
		log:     log,
		metrics: NewMetrics(store.Len),
		clock:   time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	m := s.metrics
	e.POST("/v1/states", m.instrument("infer", s.handleCreateState))
	e.GET("/v1/states/:id", m.instrument("get_state", s.handleGetState))
	e.DELETE("/v1/states/:id", m.instrument("delete_state", s.handleDeleteState))
	e.POST("/v1/states/:id/map", m.instrument("map", s.handleMAP))
	e.POST("/v1/states/:id/pdf", m.instrument("pdf", s.handlePDF))

	e.POST("/v1/complete", m.instrument("complete", s.handleComplete))
	e.POST("/v1/patterns", m.instrument("patterns", s.handlePatterns))

	e.GET("/metrics", m.handler)
}

func (s *Server) handleCreateState(c *echo.Context) error {
	if s.engine == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "inference engine not configured")
	}
	req, err := decodeJSON[InferRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	data, err := decodeData(req.X, req.Types)
	if err != nil {
		return writeFailure(c, err)
	}
	hidden, err := decodeHidden(req.Z)
	if err != nil {
		return writeFailure(c, err)
	}

	m := &glfm.Model{Engine: s.engine, Params: req.Params}
	st, err := m.Infer(s.context(c), data, hidden)
	if err != nil {
		return writeFailure(c, err)
	}
	rec := &stateRecord{State: st, X: data.X, Types: data.Types, Params: req.Params, CreatedAt: s.clock()}
	s.store.Save(rec)
	s.log.Info("latent state stored", "id", st.ID, "k", st.B.K, "elapsed", st.Elapsed)
	return writeJSON(c, http.StatusOK, stateResponse(rec))
}

func (s *Server) handleGetState(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "latent state not found")
	}
	return writeJSON(c, http.StatusOK, stateResponse(rec))
}

func (s *Server) handleDeleteState(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "latent state not found")
	}
	return writeJSON(c, http.StatusOK, DeleteStateResponse{
		ID:      id,
		Object:  "latent_state.deleted",
		Deleted: true,
	})
}

func (s *Server) handleMAP(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "latent state not found")
	}
	req, err := decodeJSON[MAPRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	zp, err := req.Z.Dense("z")
	if err != nil {
		return writeFailure(c, err)
	}
	_, dims := rec.X.Dims()
	opts, err := glfm.Resolve(dims, rec.Params)
	if err != nil {
		return writeFailure(c, err)
	}
	est, err := glfm.ComputeMAP(rec.Types, zp, rec.State, opts, req.Dims...)
	if err != nil {
		return writeFailure(c, err)
	}
	rec.State.Relabel(rec.Types, est, req.Dims...)

	out := req.Dims
	if len(out) == 0 {
		out = make([]int, dims)
		for i := range out {
			out[i] = i
		}
	}
	return writeJSON(c, http.StatusOK, MAPResponse{Object: "map", Dims: out, X: toMatrix(est)})
}

func (s *Server) handlePDF(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "latent state not found")
	}
	req, err := decodeJSON[PDFRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	zp, err := req.Z.Dense("z")
	if err != nil {
		return writeFailure(c, err)
	}
	data := glfm.Data{X: rec.X, Types: rec.Types}
	if req.X != nil {
		if data.X, err = req.X.Dense("x"); err != nil {
			return writeFailure(c, err)
		}
	}
	_, dims := rec.X.Dims()
	opts, err := glfm.Resolve(dims, rec.Params.Merge(glfm.Params{NumS: req.NumS}))
	if err != nil {
		return writeFailure(c, err)
	}
	dens, err := glfm.ComputePDF(data, req.Dim, zp, rec.State, opts)
	if err != nil {
		return writeFailure(c, err)
	}
	return writeJSON(c, http.StatusOK, PDFResponse{
		Object: "pdf",
		Dim:    req.Dim,
		Grid:   dens.Grid,
		PDF:    toMatrix(dens.PDF),
	})
}

func (s *Server) handleComplete(c *echo.Context) error {
	if s.engine == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "inference engine not configured")
	}
	req, err := decodeJSON[CompleteRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	data, err := decodeData(req.X, req.Types)
	if err != nil {
		return writeFailure(c, err)
	}
	hidden, err := decodeHidden(req.Z)
	if err != nil {
		return writeFailure(c, err)
	}

	m := &glfm.Model{Engine: s.engine, Params: req.Params}
	out, st, err := m.Complete(s.context(c), data, hidden)
	if err != nil {
		return writeFailure(c, err)
	}
	if out == nil {
		return writeJSON(c, http.StatusOK, CompleteResponse{Object: "completion", X: req.X})
	}
	s.store.Save(&stateRecord{State: st, X: data.X, Types: data.Types, Params: req.Params, CreatedAt: s.clock()})
	return writeJSON(c, http.StatusOK, CompleteResponse{
		Object:    "completion",
		Completed: true,
		StateID:   st.ID,
		X:         toMatrix(out),
	})
}

func (s *Server) handlePatterns(c *echo.Context) error {
	req, err := decodeJSON[PatternsRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	z, err := req.Z.Dense("z")
	if err != nil {
		return writeFailure(c, err)
	}
	p, err := glfm.FeaturePatterns(z)
	if err != nil {
		return writeFailure(c, err)
	}
	return writeJSON(c, http.StatusOK, PatternsResponse{
		Object:   "patterns",
		Patterns: toMatrix(p.Rows),
		Assign:   p.Assign,
		Counts:   p.Counts,
	})
}

// context carries the server logger into library calls.
func (s *Server) context(c *echo.Context) context.Context {
	return logger.WithContext(c.Request().Context(), s.log)
}

func decodeData(x Matrix, types string) (glfm.Data, error) {
	m, err := x.Dense("x")
	if err != nil {
		return glfm.Data{}, err
	}
	if types == "" {
		return glfm.Data{}, newInvalidRequest("types is required")
	}
	ts, err := link.ParseTypes(types)
	if err != nil {
		return glfm.Data{}, err
	}
	return glfm.Data{X: m, Types: ts}, nil
}

func decodeHidden(z Matrix) (*glfm.LatentState, error) {
	if z == nil {
		return nil, nil
	}
	m, err := z.Dense("z")
	if err != nil {
		return nil, err
	}
	return &glfm.LatentState{Z: m}, nil
}

func stateResponse(rec *stateRecord) StateResponse {
	st := rec.State
	n, _ := st.Z.Dims()
	d, k := st.Dims()
	return StateResponse{
		ID:        st.ID,
		Object:    "latent_state",
		CreatedAt: rec.CreatedAt.Unix(),
		Types:     link.FormatTypes(rec.Types),
		N:         n,
		D:         d,
		K:         k,
		ElapsedMS: st.Elapsed.Milliseconds(),
		Z:         toMatrix(st.Z),
		Mu:        st.Mu,
		W:         st.W,
		S2Y:       st.S2Y,
		R:         st.R,
		Offset:    st.Offset,
		Labels:    st.Labels,
		Params:    rec.Params,
	}
}
