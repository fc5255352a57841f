package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRequestIDAndSessionPropagate(t *testing.T) {
	var gotRID, gotSession string
	h := RequestID(Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRID = RequestIDFromContext(r.Context())
		gotSession = SessionFromContext(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	req.Header.Set(RequestIDHeader, "abcd1234-trace")
	req.Header.Set(SessionHeader, "tab-7")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if gotRID != "abcd1234-trace" || rr.Header().Get(RequestIDHeader) != "abcd1234-trace" {
		t.Fatalf("request id = %q header %q", gotRID, rr.Header().Get(RequestIDHeader))
	}
	if gotSession != "tab-7" {
		t.Fatalf("session = %q", gotSession)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	req.Header.Set(RequestIDHeader, "<bad id>")
	req.Header.Set(SessionHeader, "../../etc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if gotRID == "<bad id>" || len(gotRID) != 36 {
		t.Fatalf("malformed request id was not replaced: %q", gotRID)
	}
	if gotSession != DefaultSession {
		t.Fatalf("session = %q, want %q", gotSession, DefaultSession)
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/v1/designs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent || rr.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("preflight = %d %v", rr.Code, rr.Header())
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Headers"), SessionHeader) {
		t.Fatalf("allow headers = %q", rr.Header().Get("Access-Control-Allow-Headers"))
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/designs", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTeapot || rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign origin = %d %v", rr.Code, rr.Header())
	}
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	h := RequestID(Logger(&l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/designs/x", nil))

	line := buf.String()
	for _, want := range []string{`"level":"warn"`, `"status":404`, `"bytes":7`, `"path":"/v1/designs/x"`, `"request_id":"`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %s missing %s", line, want)
		}
	}
}
