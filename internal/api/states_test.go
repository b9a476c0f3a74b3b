package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/glfm/internal/logger"
	"github.com/samcharles93/glfm/pkg/glfm"
	"github.com/samcharles93/glfm/pkg/ridge"
)

const mixedBody = `{
	"x": [[1, 0], [2, 1], [null, 0], [1, 1]],
	"types": "gc",
	"params": {"niter": 3, "verbose": 0, "seed": 1, "bias": 1}
}`

func newTestEcho() (*echo.Echo, *StateStore) {
	store := NewStateStore()
	server := NewServer(store, ridge.New(ridge.DefaultConfig()), logger.Discard())
	e := echo.New()
	server.Register(e)
	return e, store
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v body=%s", err, rec.Body.String())
	}
	return out
}

func TestStateLifecycle(t *testing.T) {
	t.Parallel()

	e, store := newTestEcho()
	createRec := doJSON(t, e, http.MethodPost, "/v1/states", mixedBody)
	if createRec.Code != http.StatusOK {
		t.Fatalf("create status: got %d body=%s", createRec.Code, createRec.Body.String())
	}
	created := decode[StateResponse](t, createRec)
	if created.ID == "" {
		t.Fatalf("expected state id")
	}
	if created.N != 4 || created.D != 2 || created.K != 3 {
		t.Fatalf("shape: n=%d d=%d k=%d", created.N, created.D, created.K)
	}
	if created.R[1] != 2 || created.Offset[1] != -1 {
		t.Fatalf("categorical column: R=%v offset=%v", created.R, created.Offset)
	}
	if store.Len() != 1 {
		t.Fatalf("store holds %d states", store.Len())
	}

	getRec := doJSON(t, e, http.MethodGet, "/v1/states/"+created.ID, "")
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status: got %d body=%s", getRec.Code, getRec.Body.String())
	}

	mapBody, err := json.Marshal(MAPRequest{Z: created.Z[:2], Dims: []int{1}})
	if err != nil {
		t.Fatal(err)
	}
	mapRec := doJSON(t, e, http.MethodPost, "/v1/states/"+created.ID+"/map", string(mapBody))
	if mapRec.Code != http.StatusOK {
		t.Fatalf("map status: got %d body=%s", mapRec.Code, mapRec.Body.String())
	}
	est := decode[MAPResponse](t, mapRec)
	if len(est.X) != 2 || len(est.X[0]) != 1 {
		t.Fatalf("map shape: %v", est.X)
	}
	for _, row := range est.X {
		if v := *row[0]; v != 0 && v != 1 {
			t.Fatalf("categorical estimate %v outside the data labels", v)
		}
	}

	pdfBody, err := json.Marshal(PDFRequest{Dim: 1, Z: created.Z[:1]})
	if err != nil {
		t.Fatal(err)
	}
	pdfRec := doJSON(t, e, http.MethodPost, "/v1/states/"+created.ID+"/pdf", string(pdfBody))
	if pdfRec.Code != http.StatusOK {
		t.Fatalf("pdf status: got %d body=%s", pdfRec.Code, pdfRec.Body.String())
	}
	dens := decode[PDFResponse](t, pdfRec)
	if len(dens.Grid) != 2 || dens.Grid[0] != 0 || dens.Grid[1] != 1 {
		t.Fatalf("grid: got %v want [0 1]", dens.Grid)
	}

	delRec := doJSON(t, e, http.MethodDelete, "/v1/states/"+created.ID, "")
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete status: got %d body=%s", delRec.Code, delRec.Body.String())
	}
	if !strings.Contains(delRec.Body.String(), `"deleted":true`) {
		t.Fatalf("delete response missing deleted=true: %s", delRec.Body.String())
	}

	getDeletedRec := doJSON(t, e, http.MethodGet, "/v1/states/"+created.ID, "")
	if getDeletedRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d body=%s", getDeletedRec.Code, getDeletedRec.Body.String())
	}
}

func TestCreateValidationErrors(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho()
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown type", `{"x": [[1]], "types": "x"}`, "unknown data type"},
		{"missing types", `{"x": [[1]]}`, "types is required"},
		{"ragged", `{"x": [[1, 2], [3]], "types": "gg"}`, "row 1 has 1 cells"},
		{"empty", `{"x": [], "types": "g"}`, "x is required"},
		{"unknown field", `{"x": [[1]], "types": "g", "colour": 1}`, ""},
		{"bad bias", `{"x": [[1]], "types": "g", "params": {"bias": 4}}`, "bias"},
		{"short z", `{"x": [[1], [2]], "types": "g", "z": [[1, 0]]}`, "dimension mismatch"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, e, http.MethodPost, "/v1/states", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tc.want) {
				t.Fatalf("expected %q in body: %s", tc.want, rec.Body.String())
			}
		})
	}
}

func TestUnknownState(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho()
	for _, path := range []string{"/v1/states/nope/map", "/v1/states/nope/pdf"} {
		rec := doJSON(t, e, http.MethodPost, path, `{"z": [[1]]}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rec.Code)
		}
	}
	if rec := doJSON(t, e, http.MethodDelete, "/v1/states/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("delete: expected 404, got %d", rec.Code)
	}
}

func TestMAPRejectsWrongFeatureCount(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho()
	created := decode[StateResponse](t, doJSON(t, e, http.MethodPost, "/v1/states", mixedBody))
	rec := doJSON(t, e, http.MethodPost, "/v1/states/"+created.ID+"/map", `{"z": [[1, 0]]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestComplete(t *testing.T) {
	t.Parallel()

	e, store := newTestEcho()
	rec := doJSON(t, e, http.MethodPost, "/v1/complete", mixedBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status: got %d body=%s", rec.Code, rec.Body.String())
	}
	got := decode[CompleteResponse](t, rec)
	if !got.Completed || got.StateID == "" {
		t.Fatalf("expected a completion with a state id: %+v", got)
	}
	if got.X[2][0] == nil {
		t.Fatalf("missing cell not filled")
	}
	for i, want := range []float64{0, 1, 0, 1} {
		if *got.X[i][1] != want {
			t.Fatalf("categorical row %d changed: %v", i, *got.X[i][1])
		}
	}
	if _, ok := store.Get(got.StateID); !ok {
		t.Fatalf("completion state not stored")
	}

	full := doJSON(t, e, http.MethodPost, "/v1/complete", `{"x": [[1, 2]], "types": "gn"}`)
	if full.Code != http.StatusOK {
		t.Fatalf("complete status: got %d body=%s", full.Code, full.Body.String())
	}
	if got := decode[CompleteResponse](t, full); got.Completed || got.StateID != "" {
		t.Fatalf("expected data returned untouched: %+v", got)
	}
}

func TestPatterns(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho()
	rec := doJSON(t, e, http.MethodPost, "/v1/patterns", `{"z": [[1, 0], [1, 0], [0, 1]]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patterns status: got %d body=%s", rec.Code, rec.Body.String())
	}
	got := decode[PatternsResponse](t, rec)
	if fmt.Sprint(got.Counts) != "[2 1]" || fmt.Sprint(got.Assign) != "[0 0 1]" {
		t.Fatalf("counts=%v assign=%v", got.Counts, got.Assign)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{newInvalidRequest("bad"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", glfm.ErrDimensionMismatch), http.StatusBadRequest},
		{glfm.ErrUnknownType, http.StatusBadRequest},
		{glfm.ErrNonFinite, http.StatusUnprocessableEntity},
		{fmt.Errorf("sampler diverged"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got, _ := classify(tc.err); got != tc.want {
			t.Errorf("classify(%v): got %d want %d", tc.err, got, tc.want)
		}
	}
}

func TestMatrixNulls(t *testing.T) {
	t.Parallel()

	var m Matrix
	if err := json.Unmarshal([]byte(`[[1, null], [null, 4]]`), &m); err != nil {
		t.Fatal(err)
	}
	d, err := m.Dense("x")
	if err != nil {
		t.Fatalf("Dense: %v", err)
	}
	back := toMatrix(d)
	if back[0][1] != nil || back[1][0] != nil || *back[1][1] != 4 {
		t.Fatalf("round trip lost cells: %v", d)
	}
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho()
	doJSON(t, e, http.MethodPost, "/v1/patterns", `{"z": [[1, 0]]}`)
	doJSON(t, e, http.MethodPost, "/v1/patterns", `{"z": []}`)
	doJSON(t, e, http.MethodPost, "/v1/states", mixedBody)

	rec := doJSON(t, e, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`glfm_operations_total{operation="patterns",status="ok"} 1`,
		`glfm_operations_total{operation="patterns",status="error"} 1`,
		`glfm_operations_total{operation="infer",status="ok"} 1`,
		"glfm_latent_states 1",
		`glfm_operation_latency_seconds_count{operation="infer"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q:\n%s", want, body)
		}
	}
}
