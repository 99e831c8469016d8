package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BankkRoll/clipy/internal/domain"
)

// mockEngine implements Engine for testing.
type mockEngine struct {
	jobs      []domain.Job
	max       int
	submitted []*domain.Job
	submitErr error
	actionErr error
	cleared   bool
	retryID   string
}

func (m *mockEngine) Submit(job *domain.Job) error {
	if m.submitErr != nil {
		return m.submitErr
	}
	m.submitted = append(m.submitted, job)
	return nil
}

func (m *mockEngine) Pause(id string) error  { return m.actionErr }
func (m *mockEngine) Resume(id string) error { return m.actionErr }
func (m *mockEngine) Cancel(id string) error { return m.actionErr }

func (m *mockEngine) Retry(id string) (string, error) {
	if m.actionErr != nil {
		return "", m.actionErr
	}
	return m.retryID, nil
}

func (m *mockEngine) SetMaxConcurrent(n int)   { m.max = n }
func (m *mockEngine) MaxConcurrent() int       { return m.max }
func (m *mockEngine) ListAll() []domain.Job    { return m.jobs }
func (m *mockEngine) ListActive() []domain.Job { return m.jobs }
func (m *mockEngine) ClearTerminal()           { m.cleared = true }

// mockFetcher implements InfoFetcher for testing.
type mockFetcher struct {
	info *domain.VideoInfo
	err  error
}

func (m *mockFetcher) FetchVideoInfo(ctx context.Context, url string) (*domain.VideoInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.info, nil
}

// mockLibrary implements domain.LibraryStore for testing.
type mockLibrary struct {
	videos    []domain.LibraryVideo
	removeErr error
	removed   []string
}

func (m *mockLibrary) Add(ctx context.Context, v *domain.LibraryVideo) error { return nil }

func (m *mockLibrary) List(ctx context.Context) ([]domain.LibraryVideo, error) {
	return m.videos, nil
}

func (m *mockLibrary) Remove(ctx context.Context, id string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	m.removed = append(m.removed, id)
	return nil
}

func setupServer(engine *mockEngine, fetcher *mockFetcher, library *mockLibrary) *Server {
	if engine == nil {
		engine = &mockEngine{max: 3}
	}
	if fetcher == nil {
		fetcher = &mockFetcher{info: &domain.VideoInfo{ID: "abc", Title: "A Video"}}
	}
	if library == nil {
		library = &mockLibrary{}
	}
	return NewServer(engine, fetcher, library, NewHub(), domain.DefaultOptions(), "/downloads", ":0")
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestSubmitDownload(t *testing.T) {
	engine := &mockEngine{max: 3}
	srv := setupServer(engine, nil, nil)

	rec := doJSON(t, srv, http.MethodPost, "/downloads", submitRequest{
		URL: "https://example.com/watch?v=abc",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var job domain.Job
	if err := json.NewDecoder(rec.Body).Decode(&job); err != nil {
		t.Fatal(err)
	}
	if job.Title != "A Video" || job.Status != domain.StatusPending {
		t.Errorf("job = %+v", job)
	}

	if len(engine.submitted) != 1 {
		t.Fatalf("submitted %d jobs, want 1", len(engine.submitted))
	}
	// Default destination applies when the caller sends no options.
	if got := engine.submitted[0].Options.OutputDir; got != "/downloads" {
		t.Errorf("OutputDir = %q, want the configured default", got)
	}
}

func TestSubmitDownloadInvalidURL(t *testing.T) {
	srv := setupServer(nil, nil, nil)
	rec := doJSON(t, srv, http.MethodPost, "/downloads", submitRequest{URL: "ftp://nope"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitDownloadDuplicate(t *testing.T) {
	engine := &mockEngine{max: 3, submitErr: domain.ErrDuplicateJob}
	srv := setupServer(engine, nil, nil)
	rec := doJSON(t, srv, http.MethodPost, "/downloads", submitRequest{
		URL: "https://example.com/v",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestSubmitDownloadInfoFetchFails(t *testing.T) {
	fetcher := &mockFetcher{err: domain.ErrProcessFailed}
	srv := setupServer(nil, fetcher, nil)
	rec := doJSON(t, srv, http.MethodPost, "/downloads", submitRequest{
		URL: "https://example.com/v",
	})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestSubmitDownloadCustomOptions(t *testing.T) {
	engine := &mockEngine{max: 3}
	srv := setupServer(engine, nil, nil)

	opts := domain.DefaultOptions()
	opts.Quality = "720"
	opts.OutputDir = "/elsewhere"
	rec := doJSON(t, srv, http.MethodPost, "/downloads", submitRequest{
		URL:     "https://example.com/v",
		Options: &opts,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	got := engine.submitted[0].Options
	if got.Quality != "720" || got.OutputDir != "/elsewhere" {
		t.Errorf("options = %+v", got)
	}
}

func TestActionEndpoints(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		want int
	}{
		{"pause ok", "/downloads/a/pause", nil, http.StatusNoContent},
		{"resume ok", "/downloads/a/resume", nil, http.StatusNoContent},
		{"cancel ok", "/downloads/a/cancel", nil, http.StatusNoContent},
		{"pause unknown", "/downloads/a/pause", domain.ErrJobNotFound, http.StatusNotFound},
		{"resume not paused", "/downloads/a/resume", domain.ErrJobNotPaused, http.StatusConflict},
		{"cancel unknown", "/downloads/a/cancel", domain.ErrJobNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{max: 3, actionErr: tt.err}
			srv := setupServer(engine, nil, nil)
			rec := doJSON(t, srv, http.MethodPost, tt.path, nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRetryEndpoint(t *testing.T) {
	engine := &mockEngine{max: 3, retryID: "fresh-id"}
	srv := setupServer(engine, nil, nil)

	rec := doJSON(t, srv, http.MethodPost, "/downloads/old-id/retry", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["id"] != "fresh-id" {
		t.Errorf("retry id = %q", resp["id"])
	}
}

func TestRetryNotFailed(t *testing.T) {
	engine := &mockEngine{max: 3, actionErr: domain.ErrJobNotFailed}
	srv := setupServer(engine, nil, nil)
	rec := doJSON(t, srv, http.MethodPost, "/downloads/a/retry", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestListDownloads(t *testing.T) {
	engine := &mockEngine{max: 3, jobs: []domain.Job{
		{ID: "a", Status: domain.StatusDownloading},
		{ID: "b", Status: domain.StatusPending},
	}}
	srv := setupServer(engine, nil, nil)

	rec := doJSON(t, srv, http.MethodGet, "/downloads", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var jobs []domain.Job
	if err := json.NewDecoder(rec.Body).Decode(&jobs); err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 {
		t.Errorf("got %d jobs, want 2", len(jobs))
	}
}

func TestGetDownload(t *testing.T) {
	engine := &mockEngine{max: 3, jobs: []domain.Job{{ID: "a", Title: "found"}}}
	srv := setupServer(engine, nil, nil)

	rec := doJSON(t, srv, http.MethodGet, "/downloads/a", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/downloads/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestClearCompleted(t *testing.T) {
	engine := &mockEngine{max: 3}
	srv := setupServer(engine, nil, nil)
	rec := doJSON(t, srv, http.MethodDelete, "/downloads/completed", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if !engine.cleared {
		t.Error("ClearTerminal not invoked")
	}
}

func TestConcurrencyEndpoints(t *testing.T) {
	engine := &mockEngine{max: 3}
	srv := setupServer(engine, nil, nil)

	rec := doJSON(t, srv, http.MethodGet, "/settings/concurrency", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]int
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["max"] != 3 {
		t.Errorf("max = %d, want 3", resp["max"])
	}

	rec = doJSON(t, srv, http.MethodPut, "/settings/concurrency", map[string]int{"max": 5})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if engine.max != 5 {
		t.Errorf("max after PUT = %d, want 5", engine.max)
	}

	rec = doJSON(t, srv, http.MethodPut, "/settings/concurrency", map[string]int{"max": 0})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for max below 1", rec.Code)
	}
}

func TestVideoInfoEndpoint(t *testing.T) {
	srv := setupServer(nil, nil, nil)

	rec := doJSON(t, srv, http.MethodGet, "/videos/info?url=https%3A%2F%2Fexample.com%2Fv", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var info domain.VideoInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.Title != "A Video" {
		t.Errorf("info = %+v", info)
	}

	rec = doJSON(t, srv, http.MethodGet, "/videos/info?url=nope", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLibraryEndpoints(t *testing.T) {
	library := &mockLibrary{videos: []domain.LibraryVideo{{ID: "v1", Title: "kept"}}}
	srv := setupServer(nil, nil, library)

	rec := doJSON(t, srv, http.MethodGet, "/library", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var videos []domain.LibraryVideo
	if err := json.NewDecoder(rec.Body).Decode(&videos); err != nil {
		t.Fatal(err)
	}
	if len(videos) != 1 || videos[0].ID != "v1" {
		t.Errorf("videos = %+v", videos)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/library/v1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(library.removed) != 1 || library.removed[0] != "v1" {
		t.Errorf("removed = %v", library.removed)
	}
}

func TestLibraryRemoveUnknown(t *testing.T) {
	library := &mockLibrary{removeErr: domain.ErrJobNotFound}
	srv := setupServer(nil, nil, library)
	rec := doJSON(t, srv, http.MethodDelete, "/library/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := setupServer(nil, nil, nil)
	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	sample := domain.ProgressSample{JobID: "a", Status: domain.StatusDownloading, Percentage: 50}
	hub.Publish(sample)

	got := <-ch
	if got != sample {
		t.Errorf("received %+v, want %+v", got, sample)
	}
}

func TestHubDropsWhenSubscriberFull(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish(domain.ProgressSample{JobID: "a", Percentage: float64(i)})
	}

	// The slow subscriber lost samples but the publisher never blocked.
	if len(ch) != subscriberBuffer {
		t.Errorf("buffered %d samples, want %d", len(ch), subscriberBuffer)
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe()
	hub.Unsubscribe(ch)

	if _, open := <-ch; open {
		t.Error("channel left open after Unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	hub.Publish(domain.ProgressSample{JobID: "a"})
}
