package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/moyoez/diary-upload-go/transfer"
	"github.com/moyoez/diary-upload-go/types"
	"github.com/moyoez/diary-upload-go/weather"
)

// fakeDiary accepts any upload and completes it on the second check.
func fakeDiary(t *testing.T) *httptest.Server {
	t.Helper()
	var checks atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/data/upload", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"upload_id":"srv-1"}`)
	})
	mux.HandleFunc("/data/upload/progress/srv-1", func(w http.ResponseWriter, r *http.Request) {
		if checks.Add(1) < 2 {
			_, _ = io.WriteString(w, `{"progress":50,"status":"in_progress"}`)
			return
		}
		_, _ = io.WriteString(w, `{"progress":100,"status":"completed"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	diarySrv := fakeDiary(t)
	s := NewServer(Options{
		Endpoints:  transfer.DefaultEndpoints(diarySrv.URL),
		Poll:       transfer.PollOptions{Interval: 5 * time.Millisecond, MaxAttempts: 20},
		HTTPClient: diarySrv.Client(),
		Weather:    weather.NewClient(types.WeatherConfig{BaseURL: "http://127.0.0.1:1"}, nil),
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return s.Handler(ctx)
}

func doLocal(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	req.RemoteAddr = "127.0.0.1:12345"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func multipartFile(t *testing.T, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(content)
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

type dataEnvelope[T any] struct {
	Data  T      `json:"data"`
	Error string `json:"error"`
}

func TestUploadRunsToCompletion(t *testing.T) {
	h := newTestHandler(t)

	body, contentType := multipartFile(t, "entries.txt", []byte("dear diary\ntoday was calm\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/self/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := doLocal(h, req)
	if w.Code != http.StatusOK {
		t.Fatalf("start: status %d, body %s", w.Code, w.Body.String())
	}
	var started dataEnvelope[types.UploadStartResponse]
	if err := sonic.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatalf("start: bad body: %v", err)
	}
	if started.Data.SessionId == "" || !strings.HasSuffix(started.Data.StatusUrl, started.Data.SessionId) {
		t.Fatalf("start: unexpected response %+v", started.Data)
	}

	var snap dataEnvelope[types.UploadSnapshot]
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		w = doLocal(h, httptest.NewRequest(http.MethodGet, "/api/self/v1/upload/"+started.Data.SessionId, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("snapshot: status %d", w.Code)
		}
		_ = sonic.Unmarshal(w.Body.Bytes(), &snap)
		if snap.Data.Status == string(transfer.StatusCompleted) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if snap.Data.Status != string(transfer.StatusCompleted) || snap.Data.UploadId != "srv-1" || snap.Data.Progress != 100 {
		t.Fatalf("final snapshot = %+v", snap.Data)
	}

	w = doLocal(h, httptest.NewRequest(http.MethodGet, "/api/self/v1/upload/"+started.Data.SessionId+"/qrcode?size=128", nil))
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Errorf("qrcode: status %d, type %s", w.Code, w.Header().Get("Content-Type"))
	}

	w = doLocal(h, httptest.NewRequest(http.MethodDelete, "/api/self/v1/upload/"+started.Data.SessionId, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("remove: status %d, body %s", w.Code, w.Body.String())
	}
	w = doLocal(h, httptest.NewRequest(http.MethodGet, "/api/self/v1/upload/"+started.Data.SessionId, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("snapshot after remove: status %d, want 404", w.Code)
	}
	w = doLocal(h, httptest.NewRequest(http.MethodDelete, "/api/self/v1/upload/"+started.Data.SessionId, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("second remove: status %d, want 404", w.Code)
	}
}

func TestForeignOriginCannotStartUpload(t *testing.T) {
	h := newTestHandler(t)

	body, contentType := multipartFile(t, "entries.txt", []byte("dear diary\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/self/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Origin", "https://evil.example")
	w := doLocal(h, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status %d, want 403", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/self/v1/notify-ws", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	w = doLocal(h, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("websocket from foreign origin: status %d, want 403", w.Code)
	}
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	h := newTestHandler(t)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	body, contentType := multipartFile(t, "photo.png", png)
	req := httptest.NewRequest(http.MethodPost, "/api/self/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := doLocal(h, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not allowed") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestUploadWithoutFile(t *testing.T) {
	h := newTestHandler(t)
	w := doLocal(h, httptest.NewRequest(http.MethodPost, "/api/self/v1/upload", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", w.Code)
	}
}

func TestUnknownSnapshot(t *testing.T) {
	h := newTestHandler(t)
	w := doLocal(h, httptest.NewRequest(http.MethodGet, "/api/self/v1/upload/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", w.Code)
	}
}

func TestRemoteCallerIsForbidden(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/self/v1/status", nil)
	req.RemoteAddr = "10.0.0.7:4000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("status %d, want 403", w.Code)
	}
}

func TestWeatherWithoutLocation(t *testing.T) {
	h := newTestHandler(t)
	w := doLocal(h, httptest.NewRequest(http.MethodGet, "/api/self/v1/weather", nil))
	var resp dataEnvelope[map[string]string]
	_ = sonic.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp.Data["text"] != weather.TextPermissionDenied {
		t.Errorf("status %d, body %s", w.Code, w.Body.String())
	}

	w = doLocal(h, httptest.NewRequest(http.MethodGet, "/api/self/v1/weather?lat=abc&lon=1", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad coordinates: status %d, want 400", w.Code)
	}
}

func TestDiaryEndpoints(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/self/v1/diary/sort",
		strings.NewReader(`{"cards":[{"id":"a","datetime":"2024-01-01"},{"id":"b","datetime":"2024-03-05"},{"id":"c","datetime":"2024-02-10"}]}`))
	w := doLocal(h, req)
	var sorted dataEnvelope[[]types.DiaryCard]
	if err := sonic.Unmarshal(w.Body.Bytes(), &sorted); err != nil || w.Code != http.StatusOK {
		t.Fatalf("sort: status %d, body %s", w.Code, w.Body.String())
	}
	if len(sorted.Data) != 3 || sorted.Data[0].ID != "b" || sorted.Data[1].ID != "c" || sorted.Data[2].ID != "a" {
		t.Errorf("sort: got %+v", sorted.Data)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/self/v1/diary/validate", strings.NewReader(`{"text":"   "}`))
	w = doLocal(h, req)
	var validated dataEnvelope[types.DiaryValidateResponse]
	_ = sonic.Unmarshal(w.Body.Bytes(), &validated)
	if validated.Data.Valid || validated.Data.Message != "Please write something before submitting!" {
		t.Errorf("validate: got %+v", validated.Data)
	}

	w = doLocal(h, httptest.NewRequest(http.MethodPost, "/api/self/v1/diary/sort", strings.NewReader(`not json`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("sort with bad body: status %d, want 400", w.Code)
	}
}

func TestCORSPreflightForConfiguredOrigin(t *testing.T) {
	s := NewServer(Options{
		AllowOrigins: []string{"http://localhost:5001"},
		Weather:      weather.NewClient(types.WeatherConfig{BaseURL: "http://127.0.0.1:1"}, nil),
	})
	h := s.Handler(context.Background())

	req := httptest.NewRequest(http.MethodOptions, "/api/self/v1/upload", nil)
	req.Header.Set("Origin", "http://localhost:5001")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := doLocal(h, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5001" {
		t.Errorf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/self/v1/status", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = doLocal(h, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign origin: status %d, want 403", w.Code)
	}
}

func TestStatus(t *testing.T) {
	h := newTestHandler(t)
	w := doLocal(h, httptest.NewRequest(http.MethodGet, "/api/self/v1/status", nil))
	var resp dataEnvelope[map[string]any]
	if err := sonic.Unmarshal(w.Body.Bytes(), &resp); err != nil || w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	if resp.Data["running"] != true {
		t.Errorf("running = %v", resp.Data["running"])
	}
}
