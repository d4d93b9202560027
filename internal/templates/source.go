// Package templates fetches letter templates by their deterministic names.
package templates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Source fetches template bytes by name. Names use forward slashes.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// ErrNotFound is the category of failed template fetches.
var ErrNotFound = errors.New("template not found")

// NotFoundError lists the names that were tried.
type NotFoundError struct {
	Names []string
	Err   error
}

func (e *NotFoundError) Error() string {
	msg := "template not found: " + strings.Join(e.Names, ", ")
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NotFoundError) Unwrap() error { return e.Err }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DefaultFetchTimeout bounds a single HTTP template fetch.
const DefaultFetchTimeout = 15 * time.Second

// maxTemplateSize caps a template download.
const maxTemplateSize = 64 << 20

// HTTPSource fetches templates relative to a base URL.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource returns a source whose requests time out after timeout.
// A non-positive timeout uses DefaultFetchTimeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// URL returns the address of template name.
func (s *HTTPSource) URL(name string) string {
	segments := strings.Split(name, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.Join(segments, "/")
}

// Fetch downloads name. Any transport failure or non-2xx status is a
// NotFoundError.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(name), nil)
	if err != nil {
		return nil, &NotFoundError{Names: []string{name}, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &NotFoundError{Names: []string{name}, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NotFoundError{Names: []string{name}, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTemplateSize))
	if err != nil {
		return nil, &NotFoundError{Names: []string{name}, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	return data, nil
}

// DirSource reads templates from a local directory.
type DirSource struct {
	Root string
}

// Fetch reads name below Root. Names may not leave Root.
func (s DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := path.Clean("/" + name)[1:]
	if clean == "" || clean != name {
		return nil, &NotFoundError{Names: []string{name}, Err: errors.New("invalid template name")}
	}
	data, err := os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(clean)))
	if err != nil {
		return nil, &NotFoundError{Names: []string{name}, Err: err}
	}
	return data, nil
}

// FetchFirst returns the first candidate the source can fetch, along with
// its name. It never falls back to a name outside candidates.
func FetchFirst(ctx context.Context, src Source, candidates []string) (string, []byte, error) {
	var lastErr error
	for _, name := range candidates {
		data, err := src.Fetch(ctx, name)
		if err == nil {
			return name, data, nil
		}
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		lastErr = err
	}
	var cause error
	var nf *NotFoundError
	if errors.As(lastErr, &nf) {
		cause = nf.Err
	} else {
		cause = lastErr
	}
	return "", nil, &NotFoundError{Names: candidates, Err: cause}
}
