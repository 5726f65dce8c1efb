package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Дымовой тест: проверяем, что мидлварь логирования не паникует и корректно проксирует ответ
func TestWithLogging_Smoke(t *testing.T) {
	SetLogger(zap.NewNop().Sugar())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot) // 418
		_, _ = w.Write([]byte("hello"))
	})

	h := WithLogging(next)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("status passthrough failed: got %d", rr.Code)
	}
	if rr.Body.String() != "hello" {
		t.Fatalf("body passthrough failed: %q", rr.Body.String())
	}
}

// Раздача блоба: в лог попадают путь, статус и реальный размер тела
func TestWithLogging_RecordsBlobDownload(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core).Sugar())
	t.Cleanup(func() { SetLogger(nil) })

	payload := []byte("\x89PNG fake image bytes")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload[:4])
		_, _ = w.Write(payload[4:])
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/blobs/gophbox/u1/cat.png", nil)
	WithLogging(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || rr.Body.Len() != len(payload) {
		t.Fatalf("passthrough failed: status %d, %d bytes", rr.Code, rr.Body.Len())
	}
	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("want one request entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["uri"] != "/blobs/gophbox/u1/cat.png" {
		t.Fatalf("unexpected uri: %v", fields["uri"])
	}
	if fields["status"] != int64(http.StatusOK) {
		t.Fatalf("unexpected status: %v", fields["status"])
	}
	if fields["size"] != int64(len(payload)) {
		t.Fatalf("unexpected size: %v", fields["size"])
	}
}
