package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/course-feed/internal/schedule"
)

// maxBodyBytes caps how much of a feed response is read into memory.
const maxBodyBytes = 256 << 20

// Source hands over one raw feed payload per call.
type Source interface {
	Fetch(ctx context.Context) (schedule.Payload, error)
	String() string
}

// HTTPSource downloads the feed with a single GET request. It does not retry.
type HTTPSource struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

// NewHTTPSource creates an HTTPSource with the given request timeout.
func NewHTTPSource(url string, timeout time.Duration, log zerolog.Logger) *HTTPSource {
	return &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log.With().Str("component", "feed_http").Logger(),
	}
}

func (s *HTTPSource) String() string { return s.url }

// Fetch performs the request. Transport failures come back as plain errors;
// a response with a non-2xx status comes back as a *schedule.PayloadError.
func (s *HTTPSource) Fetch(ctx context.Context) (schedule.Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return schedule.Payload{}, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return schedule.Payload{}, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return schedule.Payload{}, fmt.Errorf("read feed body: %w", err)
	}

	payload := schedule.Payload{Body: body, Header: resp.Header, Status: resp.StatusCode}

	s.log.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("Feed downloaded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return payload, payload.Reject(fmt.Errorf("unexpected status %s", resp.Status))
	}
	return payload, nil
}

// FileSource reads a feed saved to disk, e.g. for offline ingestion.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) String() string { return s.path }

func (s *FileSource) Fetch(ctx context.Context) (schedule.Payload, error) {
	if err := ctx.Err(); err != nil {
		return schedule.Payload{}, err
	}
	body, err := os.ReadFile(s.path)
	if err != nil {
		return schedule.Payload{}, fmt.Errorf("read feed file: %w", err)
	}
	return schedule.Payload{
		Body:   body,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Status: http.StatusOK,
	}, nil
}

// Load fetches from src and decodes the payload into a document.
func Load(ctx context.Context, src Source) (*schedule.Document, error) {
	payload, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.Decode(payload)
}
