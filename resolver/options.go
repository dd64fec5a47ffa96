package resolver

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mdhitche/jsonref/internal/options"
	"github.com/mdhitche/jsonref/referrors"
	"github.com/mdhitche/jsonref/uristore"
)

// Option is a function that configures a load operation
type Option func(*loadConfig) error

// loadConfig holds configuration for a load operation
type loadConfig struct {
	// Input source (exactly one must be set)
	filePath *string
	reader   io.Reader
	bytes    []byte
	tree     any
	hasTree  bool

	baseURI *string

	// Dereferencer settings; an explicit dereferencer excludes them
	dereferencer *Dereferencer
	configured   []string
	seed         map[string]any
	store        *uristore.Store
	fetcher      Fetcher
	httpClient   *http.Client
	userAgent    string
	insecure     bool
	disableHTTP  bool
	fileBaseDir  string
	loadFetched  bool
	logger       Logger
	maxRefDepth  int
	maxFileSize  int64
}

// LoadResult is a loaded document together with the Dereferencer its
// references resolve through.
type LoadResult struct {
	// SourcePath is the file path or URL the document was read from, or a
	// synthetic name ("LoadBytes.json", "LoadReader.yaml", "LoadTree")
	SourcePath string
	// SourceFormat is the detected serialization format (empty for trees)
	SourceFormat SourceFormat
	// BaseURI is the URI relative references were joined against
	BaseURI string
	// Data is the document tree with every reference object replaced by a *Ref
	Data any
	// Dereferencer resolves the Refs in Data
	Dereferencer *Dereferencer
	// LoadTime is the time taken to read the source
	LoadTime time.Duration
	// SourceSize is the size of the source in bytes (0 for trees)
	SourceSize int64
}

// Load decodes a JSON or YAML document and replaces its references with lazy
// Refs, using a new Dereferencer with default settings. Same-document
// references ("#/...") resolve against the document itself.
func Load(data []byte) (any, error) {
	return New(nil).Load(data, "")
}

// LoadParsed is Load for a tree that is already decoded.
func LoadParsed(tree any) (any, error) {
	return New(nil).LoadParsed(tree, "")
}

// LoadWithOptions loads a document using functional options.
//
// Example:
//
//	result, err := resolver.LoadWithOptions(
//	    resolver.WithFilePath("schema.json"),
//	    resolver.WithLogger(resolver.NewSlogAdapter(slog.Default())),
//	)
//	name, err := resolver.Get(result.Data, "properties", "name")
func LoadWithOptions(opts ...Option) (*LoadResult, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("resolver: invalid options: %w", err)
	}

	d := cfg.dereferencer
	if d == nil {
		d = cfg.newDereferencer()
	}
	result := &LoadResult{Dereferencer: d}

	var data []byte
	loadStart := time.Now()
	switch {
	case cfg.hasTree:
		result.SourcePath = "LoadTree"
		result.BaseURI = cfg.base("")
		result.Data, err = d.LoadParsed(cfg.tree, result.BaseURI)
		if err != nil {
			return nil, err
		}
		return result, nil
	case cfg.filePath != nil:
		result.SourcePath = *cfg.filePath
		data, result.BaseURI, err = cfg.readPath(d, *cfg.filePath)
	case cfg.reader != nil:
		data, err = io.ReadAll(cfg.reader)
		if err != nil {
			err = fmt.Errorf("resolver: failed to read data: %w", err)
		}
		result.SourcePath = "LoadReader"
		result.BaseURI = cfg.base("")
	default:
		data = cfg.bytes
		result.SourcePath = "LoadBytes"
		result.BaseURI = cfg.base("")
	}
	result.LoadTime = time.Since(loadStart)
	if err != nil {
		return nil, err
	}
	result.SourceSize = int64(len(data))

	if err := d.claimRoot(result.BaseURI); err != nil {
		return nil, err
	}
	format := detectFormat(result.SourcePath, "", data)
	doc, format, err := decodeDocument(data, format, result.SourcePath, d.refHook(result.BaseURI))
	if err != nil {
		return nil, err
	}
	d.setRoot(result.BaseURI, doc)

	result.Data = doc
	result.SourceFormat = format
	if cfg.filePath == nil {
		result.SourcePath += "." + string(format)
	}
	return result, nil
}

// readPath reads a local file or fetches a URL and returns its content and
// the base URI for its references.
func (cfg *loadConfig) readPath(d *Dereferencer, p string) ([]byte, string, error) {
	if isURL(p) {
		fetch := d.fetchURL
		if d.Fetcher != nil {
			fetch = d.Fetcher.Fetch
		}
		data, _, err := fetch(p)
		if err != nil {
			return nil, "", asFetchError(p, err)
		}
		if int64(len(data)) > d.maxFileSize() {
			return nil, "", &referrors.ResourceLimitError{
				ResourceType: "file_size",
				Limit:        d.maxFileSize(),
				Actual:       int64(len(data)),
				Message:      "document too large",
			}
		}
		return data, cfg.base(p), nil
	}

	info, err := os.Stat(p)
	if err != nil {
		return nil, "", fmt.Errorf("resolver: failed to read file: %w", err)
	}
	if info.Size() > d.maxFileSize() {
		return nil, "", &referrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        d.maxFileSize(),
			Actual:       info.Size(),
			Message:      "document too large",
		}
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, "", fmt.Errorf("resolver: failed to read file: %w", err)
	}
	uri, err := fileURI(p)
	if err != nil {
		return nil, "", fmt.Errorf("resolver: failed to resolve file path: %w", err)
	}
	if d.FileBaseDir == "" && cfg.dereferencer == nil {
		d.FileBaseDir = filepath.Dir(p)
	}
	return data, cfg.base(uri), nil
}

// base returns the configured base URI, or def.
func (cfg *loadConfig) base(def string) string {
	if cfg.baseURI != nil {
		return *cfg.baseURI
	}
	return def
}

func (cfg *loadConfig) newDereferencer() *Dereferencer {
	var d *Dereferencer
	if cfg.store != nil {
		d = NewWithStore(cfg.store)
	} else {
		d = New(cfg.seed)
	}
	d.Fetcher = cfg.fetcher
	d.HTTPClient = cfg.httpClient
	if cfg.userAgent != "" {
		d.UserAgent = cfg.userAgent
	}
	d.InsecureSkipVerify = cfg.insecure
	d.DisableHTTP = cfg.disableHTTP
	d.FileBaseDir = cfg.fileBaseDir
	d.LoadFetched = cfg.loadFetched
	d.Logger = cfg.logger
	d.MaxRefDepth = cfg.maxRefDepth
	d.MaxFileSize = cfg.maxFileSize
	return d
}

// applyOptions applies option functions and validates configuration
func applyOptions(opts ...Option) (*loadConfig, error) {
	cfg := &loadConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := options.ValidateSingleInputSource(
		"must specify an input source (use WithFilePath, WithReader, WithBytes or WithTree)",
		"must specify exactly one input source",
		cfg.filePath != nil, cfg.reader != nil, cfg.bytes != nil, cfg.hasTree,
	); err != nil {
		return nil, err
	}
	if cfg.dereferencer != nil && len(cfg.configured) > 0 {
		return nil, &referrors.ConfigError{
			Option:  cfg.configured[0],
			Message: "cannot be combined with WithDereferencer; configure the Dereferencer directly",
		}
	}
	if cfg.seed != nil && cfg.store != nil {
		return nil, &referrors.ConfigError{Option: "WithStore", Message: "cannot be combined with WithSharedStore"}
	}
	return cfg, nil
}

// configure marks a Dereferencer setting as used.
func (cfg *loadConfig) configure(name string) {
	cfg.configured = append(cfg.configured, name)
}

// WithFilePath specifies a file path or http(s) URL as the input source.
// For local files, file references are enabled below the file's directory
// unless WithFileRefs says otherwise.
func WithFilePath(path string) Option {
	return func(cfg *loadConfig) error {
		cfg.filePath = &path
		return nil
	}
}

// WithReader specifies an io.Reader as the input source
func WithReader(r io.Reader) Option {
	return func(cfg *loadConfig) error {
		if r == nil {
			return &referrors.ConfigError{Option: "WithReader", Message: "reader cannot be nil"}
		}
		cfg.reader = r
		return nil
	}
}

// WithBytes specifies a byte slice as the input source
func WithBytes(data []byte) Option {
	return func(cfg *loadConfig) error {
		if data == nil {
			return &referrors.ConfigError{Option: "WithBytes", Message: "bytes cannot be nil"}
		}
		cfg.bytes = data
		return nil
	}
}

// WithTree specifies an already decoded document as the input source
func WithTree(tree any) Option {
	return func(cfg *loadConfig) error {
		cfg.tree = tree
		cfg.hasTree = true
		return nil
	}
}

// WithBaseURI sets the URI relative references are joined against.
// Default: the file:// URI or URL of WithFilePath, otherwise empty.
func WithBaseURI(uri string) Option {
	return func(cfg *loadConfig) error {
		cfg.baseURI = &uri
		return nil
	}
}

// WithDereferencer loads into an existing Dereferencer, sharing its store
// with earlier loads. It cannot be combined with options that configure a
// new Dereferencer.
func WithDereferencer(d *Dereferencer) Option {
	return func(cfg *loadConfig) error {
		if d == nil {
			return &referrors.ConfigError{Option: "WithDereferencer", Message: "dereferencer cannot be nil"}
		}
		cfg.dereferencer = d
		return nil
	}
}

// WithStore pre-seeds the document store, keyed by URI
func WithStore(seed map[string]any) Option {
	return func(cfg *loadConfig) error {
		cfg.configure("WithStore")
		cfg.seed = seed
		return nil
	}
}

// WithSharedStore uses an existing store, so fetched documents are reused
// across loads
func WithSharedStore(s *uristore.Store) Option {
	return func(cfg *loadConfig) error {
		if s == nil {
			return &referrors.ConfigError{Option: "WithSharedStore", Message: "store cannot be nil"}
		}
		cfg.configure("WithSharedStore")
		cfg.store = s
		return nil
	}
}

// WithFetcher replaces the built-in http(s) and file fetching
func WithFetcher(f Fetcher) Option {
	return func(cfg *loadConfig) error {
		cfg.configure("WithFetcher")
		cfg.fetcher = f
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client for fetching documents.
// If the client is nil, the default client is used.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *loadConfig) error {
		cfg.configure("WithHTTPClient")
		cfg.httpClient = client
		return nil
	}
}

// WithUserAgent sets the User-Agent string for HTTP requests
// Default: "jsonref/vX.Y.Z"
func WithUserAgent(ua string) Option {
	return func(cfg *loadConfig) error {
		cfg.configure("WithUserAgent")
		cfg.userAgent = ua
		return nil
	}
}

// WithInsecureSkipVerify disables TLS certificate verification for HTTPS fetches.
// Use with caution - only enable for testing or internal servers with self-signed certs
func WithInsecureSkipVerify(enabled bool) Option {
	return func(cfg *loadConfig) error {
		cfg.configure("WithInsecureSkipVerify")
		cfg.insecure = enabled
		return nil
	}
}

// WithHTTPRefs enables or disables fetching of http and https references.
// A WithFilePath URL is fetched either way.
// Default: true
func WithHTTPRefs(enabled bool) Option {
	return func(cfg *loadConfig) error {
		cfg.configure("WithHTTPRefs")
		cfg.disableHTTP = !enabled
		return nil
	}
}

// WithFileRefs enables file references confined to baseDir
func WithFileRefs(baseDir string) Option {
	return func(cfg *loadConfig) error {
		if baseDir == "" {
			return &referrors.ConfigError{Option: "WithFileRefs", Message: "base directory cannot be empty"}
		}
		cfg.configure("WithFileRefs")
		cfg.fileBaseDir = baseDir
		return nil
	}
}

// WithLoadFetched substitutes references inside fetched documents too.
// Default: false
func WithLoadFetched(enabled bool) Option {
	return func(cfg *loadConfig) error {
		cfg.configure("WithLoadFetched")
		cfg.loadFetched = enabled
		return nil
	}
}

// WithLogger sets a structured logger. By default nothing is logged.
func WithLogger(l Logger) Option {
	return func(cfg *loadConfig) error {
		cfg.configure("WithLogger")
		cfg.logger = l
		return nil
	}
}

// WithMaxRefDepth bounds nested dereferencing.
// A value of 0 means use the default (100).
func WithMaxRefDepth(depth int) Option {
	return func(cfg *loadConfig) error {
		if depth < 0 {
			return &referrors.ConfigError{Option: "WithMaxRefDepth", Value: depth, Message: "cannot be negative"}
		}
		cfg.configure("WithMaxRefDepth")
		cfg.maxRefDepth = depth
		return nil
	}
}

// WithMaxFileSize bounds the size of loaded and fetched documents in bytes.
// A value of 0 means use the default (10MB).
func WithMaxFileSize(size int64) Option {
	return func(cfg *loadConfig) error {
		if size < 0 {
			return &referrors.ConfigError{Option: "WithMaxFileSize", Value: size, Message: "cannot be negative"}
		}
		cfg.configure("WithMaxFileSize")
		cfg.maxFileSize = size
		return nil
	}
}
