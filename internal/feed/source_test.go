package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/course-feed/internal/schedule"
)

const sampleFeed = `{"Report_Entry":[{"Course_Title":"CS 1101 - Intro","Subject":"Computer Science"}]}`

func TestHTTPSourceFetch(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Requested-With")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, 5*time.Second, zerolog.Nop())
	doc, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.ReportEntry) != 1 {
		t.Fatalf("got %d entries, want 1", len(doc.ReportEntry))
	}
	if doc.ReportEntry[0].CourseTitle != "CS 1101 - Intro" {
		t.Errorf("title = %q", doc.ReportEntry[0].CourseTitle)
	}
	if gotHeader != "XMLHttpRequest" {
		t.Errorf("X-Requested-With = %q", gotHeader)
	}
}

func TestHTTPSourceNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, 5*time.Second, zerolog.Nop()).Fetch(context.Background())
	var pe *schedule.PayloadError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *schedule.PayloadError", err)
	}
	if pe.Status != http.StatusServiceUnavailable {
		t.Errorf("status = %d", pe.Status)
	}
	if string(pe.Body) != "maintenance" {
		t.Errorf("body = %q", pe.Body)
	}
	if pe.Header.Get("Retry-After") != "30" {
		t.Errorf("headers not carried: %v", pe.Header)
	}
}

func TestHTTPSourceInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := Load(context.Background(), NewHTTPSource(srv.URL, 5*time.Second, zerolog.Nop()))
	var pe *schedule.PayloadError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *schedule.PayloadError", err)
	}
	if pe.Status != http.StatusOK {
		t.Errorf("status = %d, want 200", pe.Status)
	}
}

func TestHTTPSourceTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewHTTPSource(url, time.Second, zerolog.Nop()).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error from closed server")
	}
	var pe *schedule.PayloadError
	if errors.As(err, &pe) {
		t.Errorf("transport failure should not be a payload error: %v", err)
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.json")
	if err := os.WriteFile(path, []byte(sampleFeed), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(context.Background(), NewFileSource(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.ReportEntry) != 1 {
		t.Errorf("got %d entries, want 1", len(doc.ReportEntry))
	}

	if _, err := NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}
