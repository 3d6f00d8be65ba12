package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/david/licita-radar/internal/models"
)

// FetchError reports a data document that answered with a non-2xx status.
type FetchError struct {
	Path       string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed: HTTP %d", e.Path, e.StatusCode)
}

// HTTPFetcher reads the pipeline's JSON documents relative to a base URL.
type HTTPFetcher struct {
	Client    *http.Client
	BaseURL   *url.URL
	UserAgent string

	now func() time.Time
}

// NewHTTPFetcher accepts an http(s) URL, a file:// URL or a plain local
// directory as base. Local bases go through http.NewFileTransport so they
// fail with the same FetchError as a remote server would.
func NewHTTPFetcher(base, userAgent string) (*HTTPFetcher, error) {
	baseURL, err := parseBase(base)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	return &HTTPFetcher{
		// No client timeout: the caller's context bounds the request.
		Client:    &http.Client{Transport: transport},
		BaseURL:   baseURL,
		UserAgent: userAgent,
		now:       time.Now,
	}, nil
}

func parseBase(base string) (*url.URL, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return nil, fmt.Errorf("empty data base url")
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid data base url %q: %w", base, err)
	}

	switch u.Scheme {
	case "http", "https", "file":
	case "":
		abs, err := filepath.Abs(base)
		if err != nil {
			return nil, fmt.Errorf("invalid data directory %q: %w", base, err)
		}
		u = &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	default:
		return nil, fmt.Errorf("unsupported data base url scheme %q", u.Scheme)
	}

	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// Resolve returns the cache-busted URL for a document path.
func (f *HTTPFetcher) Resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid document path %q: %w", path, err)
	}

	u := f.BaseURL.ResolveReference(ref)
	q := u.Query()
	q.Set("_", strconv.FormatInt(f.now().UnixNano(), 10))
	u.RawQuery = q.Encode()
	return u, nil
}

// FetchJSON GETs path with caching disabled and decodes the body into v.
// Decode errors are returned as produced by encoding/json.
func (f *HTTPFetcher) FetchJSON(ctx context.Context, path string, v any) error {
	u, err := f.Resolve(path)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{Path: path, StatusCode: resp.StatusCode}
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

func (f *HTTPFetcher) LoadMeta(ctx context.Context, path string) (models.Meta, error) {
	var meta models.Meta
	if err := f.FetchJSON(ctx, path, &meta); err != nil {
		return models.Meta{}, err
	}
	return meta, nil
}

func (f *HTTPFetcher) LoadOpportunities(ctx context.Context, path string) ([]models.Opportunity, error) {
	var opps []models.Opportunity
	if err := f.FetchJSON(ctx, path, &opps); err != nil {
		return nil, err
	}
	if opps == nil {
		opps = []models.Opportunity{}
	}
	return opps, nil
}
