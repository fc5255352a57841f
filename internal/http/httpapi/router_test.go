package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"homedesign/internal/domain"
	"homedesign/internal/generators"
	"homedesign/internal/http/handlers"
	"homedesign/internal/kv"
	"homedesign/internal/middleware"
	"homedesign/internal/runs"
	"homedesign/internal/status"
	"homedesign/internal/video"
)

type stubGenerator struct {
	objects *video.ObjectStore
	gate    chan struct{}
}

func (g *stubGenerator) Generate(ctx context.Context, spec domain.HouseSpec, sink status.Sink) (*domain.DesignPackage, error) {
	sink.Report(status.StageInitialization, "Crafting the perfect design brief...")
	if g.gate != nil {
		<-g.gate
	}
	img := generators.DataURL("image/png", []byte("png"))
	return &domain.DesignPackage{
		Images:            []string{img, img},
		VideoURL:          g.objects.Put([]byte("mp4-bytes"), "video/mp4"),
		WalkthroughScript: "Welcome **home**.",
		ShoppingList:      []domain.ShoppingListItem{},
		Plan2D:            domain.Plan{Description: "2D", ImageURL: img},
		Plan3D:            domain.Plan{Description: "3D", ImageURL: img},
	}, nil
}

type testServer struct {
	handler http.Handler
	runs    *runs.Manager
	objects *video.ObjectStore
	gen     *stubGenerator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	objects := video.NewObjectStore()
	gen := &stubGenerator{objects: objects}
	manager := runs.NewManager(gen, objects, runs.Options{MaxConcurrent: 1})
	t.Cleanup(func() { _ = manager.Close(context.Background()) })
	app := &handlers.App{Runs: manager, Objects: objects, Store: kv.NewMemoryStore(), Version: "test"}
	return &testServer{
		handler: NewRouter(app, Options{AllowedOrigins: []string{"http://localhost:5173"}, RateLimitPerMin: 100}),
		runs:    manager,
		objects: objects,
		gen:     gen,
	}
}

func (s *testServer) do(t *testing.T, method, path, session string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if session != "" {
		req.Header.Set(middleware.SessionHeader, session)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rr.Body.String())
	}
	return v
}

func TestHealthAndCatalog(t *testing.T) {
	s := newTestServer(t)
	if rr := s.do(t, http.MethodGet, "/v1/healthz", "", nil); rr.Code != http.StatusOK || rr.Header().Get(middleware.RequestIDHeader) == "" {
		t.Fatalf("healthz = %d %v", rr.Code, rr.Header())
	}
	rr := s.do(t, http.MethodGet, "/v1/catalog", "", nil)
	catalog := decodeBody[map[string]json.RawMessage](t, rr)
	for _, key := range []string{"orientations", "styles", "outdoorFeatures", "specialRooms", "defaults"} {
		if _, ok := catalog[key]; !ok {
			t.Errorf("catalog missing %q", key)
		}
	}
}

func TestDesignLifecycle(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/v1/designs", "alice", domain.DefaultHouseSpec())
	if rr.Code != http.StatusAccepted {
		t.Fatalf("create status = %d body=%s", rr.Code, rr.Body.String())
	}
	created := decodeBody[struct {
		RunID string `json:"run_id"`
	}](t, rr)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.runs.Wait(ctx, created.RunID); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}

	if rr := s.do(t, http.MethodGet, "/v1/designs/"+created.RunID, "bob", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("foreign session status = %d", rr.Code)
	}

	rr = s.do(t, http.MethodGet, "/v1/designs/"+created.RunID, "alice", nil)
	run := decodeBody[runs.Run](t, rr)
	if run.State != runs.StateSucceeded || run.Package == nil || len(run.Status.Messages) != 1 {
		t.Fatalf("run = %+v", run)
	}

	objectPath := "/v1/objects/" + video.ObjectID(run.Package.VideoURL)
	rr = s.do(t, http.MethodGet, objectPath, "alice", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "mp4-bytes" || rr.Header().Get("Content-Type") != "video/mp4" {
		t.Fatalf("object = %d %q %v", rr.Code, rr.Body.String(), rr.Header())
	}

	rr = s.do(t, http.MethodGet, "/v1/designs/"+created.RunID+"/report", "alice", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `src="`+objectPath+`"`) {
		t.Fatalf("report = %d\n%s", rr.Code, rr.Body.String())
	}

	if rr := s.do(t, http.MethodDelete, "/v1/designs/"+created.RunID, "alice", nil); rr.Code != http.StatusNoContent {
		t.Fatalf("reset status = %d body=%s", rr.Code, rr.Body.String())
	}
	if s.objects.Len() != 0 {
		t.Fatalf("objects left after reset: %d", s.objects.Len())
	}
	if rr := s.do(t, http.MethodGet, objectPath, "alice", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("released object status = %d", rr.Code)
	}
}

func TestCreateDesignConflictsWhileRunning(t *testing.T) {
	s := newTestServer(t)
	s.gen.gate = make(chan struct{})
	defer close(s.gen.gate)

	if rr := s.do(t, http.MethodPost, "/v1/designs", "", domain.DefaultHouseSpec()); rr.Code != http.StatusAccepted {
		t.Fatalf("first create = %d", rr.Code)
	}
	rr := s.do(t, http.MethodPost, "/v1/designs", "", domain.DefaultHouseSpec())
	if rr.Code != http.StatusConflict {
		t.Fatalf("second create = %d, want 409", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "run_in_progress") {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestCreateDesignValidation(t *testing.T) {
	s := newTestServer(t)
	spec := domain.DefaultHouseSpec()
	spec.Orientation = "Up"
	rr := s.do(t, http.MethodPost, "/v1/designs", "", spec)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	body := decodeBody[struct {
		Error struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}](t, rr)
	if body.Error.Code != "invalid_house_spec" || body.Error.Fields["orientation"] == "" {
		t.Fatalf("error body = %+v", body)
	}

	rr = s.do(t, http.MethodPost, "/v1/designs", "", map[string]any{"floors": 2, "unexpected": true})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d, want 400", rr.Code)
	}
}

func TestThemePreference(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, http.MethodGet, "/v1/preferences/theme", "", nil)
	if got := decodeBody[map[string]string](t, rr)["theme"]; got != "light" {
		t.Fatalf("default theme = %q", got)
	}
	if rr := s.do(t, http.MethodPut, "/v1/preferences/theme", "", map[string]string{"theme": "dark"}); rr.Code != http.StatusOK {
		t.Fatalf("put theme = %d", rr.Code)
	}
	rr = s.do(t, http.MethodGet, "/v1/preferences/theme", "", nil)
	if got := decodeBody[map[string]string](t, rr)["theme"]; got != "dark" {
		t.Fatalf("theme = %q, want dark", got)
	}
	if rr := s.do(t, http.MethodPut, "/v1/preferences/theme", "", map[string]string{"theme": "neon"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid theme status = %d", rr.Code)
	}
}
