package observability

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestServeHTTP(t *testing.T) {
	m := NewMetrics(testLogger)
	m.ImportsTotal.Add(2)
	m.ArticlesExtracted.Add(5)

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"# TYPE sporhaber_imports_total counter",
		"sporhaber_imports_total 2\n",
		"sporhaber_articles_extracted_total 5\n",
		"sporhaber_sink_errors_total 0\n",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in output", want)
		}
	}
}

func TestRecordResponse(t *testing.T) {
	m := NewMetrics(testLogger)
	for _, code := range []int{200, 201, 302, 400, 404, 500, 503} {
		m.RecordResponse(code)
	}

	snap := m.Snapshot()
	if snap["responses_2xx"] != 2 || snap["responses_4xx"] != 2 || snap["responses_5xx"] != 2 {
		t.Errorf("unexpected response classes: %v", snap)
	}
}
