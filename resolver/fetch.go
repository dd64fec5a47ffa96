package resolver

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mdhitche/jsonref"
	"github.com/mdhitche/jsonref/referrors"
)

// Fetcher retrieves the document identified by uri (which has no fragment).
// It returns the raw body and, when known, its Content-Type.
type Fetcher interface {
	Fetch(uri string) ([]byte, string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(uri string) ([]byte, string, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(uri string) ([]byte, string, error) {
	return f(uri)
}

// fetch retrieves uri with the configured Fetcher, or with the built-in
// http(s) and file fetchers.
func (d *Dereferencer) fetch(uri string) ([]byte, string, error) {
	if d.Fetcher != nil {
		return d.Fetcher.Fetch(uri)
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, "", &referrors.FetchError{URI: uri, Message: "invalid URI", Cause: err}
	}
	switch u.Scheme {
	case "http", "https":
		if d.DisableHTTP {
			return nil, "", &referrors.FetchError{URI: uri, Message: "http references are disabled"}
		}
		return d.fetchURL(uri)
	case "file", "":
		if d.FileBaseDir == "" {
			return nil, "", &referrors.FetchError{URI: uri, Message: "file references are disabled"}
		}
		data, err := d.readFile(u)
		return data, "", err
	default:
		return nil, "", &referrors.FetchError{URI: uri, Message: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
}

// httpClient returns the configured client, or a default one with timeout
func (d *Dereferencer) httpClient() *http.Client {
	if d.HTTPClient != nil {
		if d.InsecureSkipVerify {
			d.log().Warn("InsecureSkipVerify ignored when HTTPClient provided; configure TLS on your client's transport")
		}
		return d.HTTPClient
	}
	if d.client != nil {
		return d.client
	}
	d.client = &http.Client{Timeout: 30 * time.Second}
	if d.InsecureSkipVerify {
		d.client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, //nolint:gosec // User explicitly requested insecure mode
				MinVersion:         tls.VersionTLS12,
			},
		}
	}
	return d.client
}

// fetchURL fetches content from a URL and returns the bytes and Content-Type header
func (d *Dereferencer) fetchURL(urlStr string) ([]byte, string, error) {
	req, err := http.NewRequest(http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, "", &referrors.FetchError{URI: urlStr, Message: "failed to create request", Cause: err}
	}
	userAgent := d.UserAgent
	if userAgent == "" {
		userAgent = jsonref.UserAgent()
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.1")

	resp, err := d.httpClient().Do(req) //nolint:gosec // URL comes from the document being resolved
	if err != nil {
		return nil, "", &referrors.FetchError{URI: urlStr, Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &referrors.FetchError{URI: urlStr, StatusCode: resp.StatusCode, Message: resp.Status}
	}

	// Read one byte past the limit so oversized bodies are detected.
	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxFileSize()+1))
	if err != nil {
		return nil, "", &referrors.FetchError{URI: urlStr, Message: "failed to read response body", Cause: err}
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// readFile reads a file reference, confined to FileBaseDir.
func (d *Dereferencer) readFile(u *url.URL) ([]byte, error) {
	filePath := filepath.FromSlash(u.Path)
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(d.FileBaseDir, filePath)
	}
	filePath = filepath.Clean(filePath)

	absBase, err := filepath.Abs(d.FileBaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file path: %w", err)
	}

	// filepath.Rel also fails for paths on different volumes
	relPath, err := filepath.Rel(absBase, absPath)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return nil, &referrors.ReferenceError{
			Ref:             u.String(),
			IsPathTraversal: true,
			Message:         "file is outside " + absBase,
		}
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if info.Size() > d.maxFileSize() {
		return nil, &referrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        d.maxFileSize(),
			Actual:       info.Size(),
			Message:      "document too large",
		}
	}
	return os.ReadFile(absPath)
}

// fileURI returns the file:// URI for a local path.
func fileURI(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}
	return u.String(), nil
}
