// Package uristore provides the document store used during reference
// resolution: a map from normalized document URI to parsed document.
//
// Keys are passed through [Normalize] on every operation, so syntactically
// different spellings of one URI share an entry:
//
//	s := uristore.New(nil)
//	s.Set("HTTP://Example.com:80/a.json", doc)
//	_, ok := s.Get("http://example.com/a.json#/definitions") // ok == true
//
// A Store is append-only: once a document is stored under a URI it is never
// replaced. There is no eviction. A Store is not safe for concurrent use.
package uristore

import (
	"sort"

	"github.com/mdhitche/jsonref/internal/uriutil"
)

// Store maps normalized URIs (without fragment) to parsed documents.
type Store struct {
	docs map[string]any
}

// New creates a Store pre-seeded with the given documents.
// Seed keys are normalized; when two seed keys normalize to the same URI the
// one that sorts first wins.
func New(seed map[string]any) *Store {
	s := &Store{docs: make(map[string]any, len(seed))}
	keys := make([]string, 0, len(seed))
	for k := range seed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.Set(k, seed[k])
	}
	return s
}

// Normalize returns the key under which uri is stored.
func Normalize(uri string) string {
	return uriutil.Normalize(uri)
}

// Get returns the document stored for uri.
func (s *Store) Get(uri string) (any, bool) {
	doc, ok := s.docs[Normalize(uri)]
	return doc, ok
}

// Set stores doc under uri and reports whether it was inserted.
// If a document is already stored for uri it is kept and Set returns false.
func (s *Store) Set(uri string, doc any) bool {
	key := Normalize(uri)
	if _, ok := s.docs[key]; ok {
		return false
	}
	s.docs[key] = doc
	return true
}

// Contains reports whether a document is stored for uri.
func (s *Store) Contains(uri string) bool {
	_, ok := s.docs[Normalize(uri)]
	return ok
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	return len(s.docs)
}

// Keys returns the normalized keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.docs))
	for k := range s.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
