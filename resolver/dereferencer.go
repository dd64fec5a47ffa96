package resolver

import (
	"errors"
	"net/http"

	"github.com/mdhitche/jsonref"
	"github.com/mdhitche/jsonref/internal/uriutil"
	"github.com/mdhitche/jsonref/pointer"
	"github.com/mdhitche/jsonref/referrors"
	"github.com/mdhitche/jsonref/uristore"
)

const (
	// DefaultMaxRefDepth is the maximum number of nested dereferences in
	// progress at once. It bounds reference chains that keep pointing through
	// further references.
	DefaultMaxRefDepth = 100

	// DefaultMaxFileSize is the maximum size (in bytes) of a fetched document.
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB
)

// Dereferencer turns reference URIs into values. It owns a document store
// keyed by normalized URI: documents are looked up there first and fetched
// (then stored) on a miss. Every Ref created by a Dereferencer's loads
// shares it.
//
// A Dereferencer is not safe for concurrent use.
type Dereferencer struct {
	// Fetcher retrieves remote documents. If nil, http(s) URIs are fetched
	// with HTTPClient and file URIs are read when FileBaseDir is set.
	Fetcher Fetcher
	// HTTPClient is the HTTP client used by the built-in fetcher.
	// If nil, a client with a 30-second timeout is created.
	// When set, InsecureSkipVerify is ignored.
	HTTPClient *http.Client
	// UserAgent is sent with HTTP requests. Defaults to jsonref.UserAgent().
	UserAgent string
	// InsecureSkipVerify disables TLS certificate verification for HTTPS fetches.
	InsecureSkipVerify bool
	// DisableHTTP makes the built-in fetcher refuse http and https references.
	DisableHTTP bool
	// FileBaseDir enables file references. Relative and file:// URIs are read
	// from disk but must stay inside this directory. Empty disables them.
	FileBaseDir string
	// LoadFetched runs fetched documents through the tree loader, so that
	// references inside them become Refs relative to the fetched URI.
	LoadFetched bool
	// Logger is the structured logger. If nil, logging is disabled.
	Logger Logger
	// MaxRefDepth bounds nested dereferencing. 0 means DefaultMaxRefDepth.
	MaxRefDepth int
	// MaxFileSize bounds fetched documents in bytes. 0 means DefaultMaxFileSize.
	MaxFileSize int64

	store   *uristore.Store
	root    string
	depth   int
	fetches int
	client  *http.Client
}

// New creates a Dereferencer whose store is pre-seeded with the given
// documents, keyed by URI. A nil seed starts with an empty store.
func New(seed map[string]any) *Dereferencer {
	return NewWithStore(uristore.New(seed))
}

// NewWithStore creates a Dereferencer that shares an existing store, so
// documents fetched by one session are visible to the next.
func NewWithStore(s *uristore.Store) *Dereferencer {
	if s == nil {
		s = uristore.New(nil)
	}
	return &Dereferencer{
		UserAgent: jsonref.UserAgent(),
		store:     s,
	}
}

// Store returns the document store.
func (d *Dereferencer) Store() *uristore.Store {
	return d.store
}

// Fetches returns the number of documents fetched and stored because they
// were missing from the store. Failed fetches are not counted.
func (d *Dereferencer) Fetches() int {
	return d.fetches
}

// log returns the configured logger, or a no-op logger if none is set.
func (d *Dereferencer) log() Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return NopLogger{}
}

func (d *Dereferencer) maxRefDepth() int {
	if d.MaxRefDepth > 0 {
		return d.MaxRefDepth
	}
	return DefaultMaxRefDepth
}

func (d *Dereferencer) maxFileSize() int64 {
	if d.MaxFileSize > 0 {
		return d.MaxFileSize
	}
	return DefaultMaxFileSize
}

// Dereference returns the value fullURI points to. The document part of the
// URI is looked up in the store, or fetched and stored on a miss; the fragment
// is then evaluated as a JSON pointer. An empty document part refers to the
// root document of the most recent load.
//
// References met in the middle of the pointer walk are resolved; the value
// finally returned is not, so it may itself be a *Ref.
func (d *Dereferencer) Dereference(fullURI string) (any, error) {
	if d.depth >= d.maxRefDepth() {
		return nil, &referrors.ResourceLimitError{
			ResourceType: "ref_depth",
			Limit:        int64(d.maxRefDepth()),
			Actual:       int64(d.depth + 1),
			Message:      "reference chain too deep",
		}
	}
	d.depth++
	defer func() { d.depth-- }()

	base, fragment := uriutil.Split(fullURI)
	doc, err := d.document(base)
	if err != nil {
		return nil, err
	}
	return pointer.ResolveWith(doc, fragment, Value)
}

// document returns the document stored for base, fetching it if needed.
func (d *Dereferencer) document(base string) (any, error) {
	if base == "" && !d.store.Contains("") {
		base = d.root
	}
	if doc, ok := d.store.Get(base); ok {
		return doc, nil
	}
	if base == "" {
		return nil, &referrors.ReferenceError{Message: "same-document reference but no root document is loaded"}
	}

	d.log().Debug("fetching document", "uri", base)
	data, contentType, err := d.fetch(base)
	if err != nil {
		return nil, asFetchError(base, err)
	}
	if int64(len(data)) > d.maxFileSize() {
		return nil, &referrors.FetchError{URI: base, Cause: &referrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        d.maxFileSize(),
			Actual:       int64(len(data)),
			Message:      "document too large",
		}}
	}

	var hook objectHook
	if d.LoadFetched {
		hook = d.refHook(base)
	}
	doc, _, err := decodeDocument(data, detectFormat(base, contentType, data), base, hook)
	if err != nil {
		if errors.Is(err, referrors.ErrParse) {
			return nil, &referrors.FetchError{URI: base, Message: "invalid document body", Cause: err}
		}
		return nil, err
	}

	d.store.Set(base, doc)
	d.fetches++
	return doc, nil
}

// setRoot stores a freshly loaded document under its base URI and makes it
// the target of same-document references with no base.
func (d *Dereferencer) setRoot(baseURI string, doc any) {
	if !d.store.Set(baseURI, doc) {
		d.log().Debug("root document already stored, keeping existing", "uri", baseURI)
	}
	d.root = uristore.Normalize(baseURI)
}

// claimRoot checks that a document can be loaded under baseURI.
// Documents without a base URI share the empty key, so only one can be loaded
// per store.
func (d *Dereferencer) claimRoot(baseURI string) error {
	if uristore.Normalize(baseURI) == "" && d.store.Contains("") {
		return &referrors.ConfigError{
			Option:  "baseURI",
			Message: "a document without base URI is already loaded in this store; supply a base URI",
		}
	}
	return nil
}

func asFetchError(uri string, err error) error {
	var fetchErr *referrors.FetchError
	if errors.As(err, &fetchErr) {
		return err
	}
	var refErr *referrors.ReferenceError
	if errors.As(err, &refErr) {
		return err
	}
	return &referrors.FetchError{URI: uri, Cause: err}
}
