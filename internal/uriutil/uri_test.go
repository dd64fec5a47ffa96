package uriutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		uri, base, fragment string
	}{
		{"http://example.com/s.json#/a/b", "http://example.com/s.json", "/a/b"},
		{"http://example.com/s.json", "http://example.com/s.json", ""},
		{"#/y", "", "/y"},
		{"", "", ""},
		{"s.json#", "s.json", ""},
		{"s.json#/a%20b#c", "s.json", "/a%20b#c"},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			base, fragment := Split(tt.uri)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.fragment, fragment)
		})
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		name, base, ref, want string
	}{
		{"empty base keeps ref", "", "#/y", "#/y"},
		{"empty base keeps relative path", "", "other.json#/a", "other.json#/a"},
		{"same document fragment", "http://example.com/a.json", "#/y", "http://example.com/a.json#/y"},
		{"sibling document", "http://example.com/schemas/root.json", "other.json#/a", "http://example.com/schemas/other.json#/a"},
		{"parent directory", "http://example.com/schemas/v1/root.json", "../common.json", "http://example.com/schemas/common.json"},
		{"absolute ref unchanged", "http://example.com/a.json", "https://other.org/b.json#/c", "https://other.org/b.json#/c"},
		{"host-only base", "mem://x", "#/a/b", "mem://x#/a/b"},
		{"relative base stays relative", "schemas/root.json", "other.json", "schemas/other.json"},
		{"root-relative ref", "http://example.com/a/b.json", "/c.json", "http://example.com/c.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Join(tt.base, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJoinInvalid(t *testing.T) {
	_, err := Join("http://example.com/", "http://[::1")
	assert.Error(t, err)

	_, err = Join("", "%zz")
	assert.Error(t, err)

	_, err = Join("http://[bad", "#/a")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name, uri, want string
	}{
		{"empty", "", ""},
		{"fragment only", "#/a", ""},
		{"drops fragment", "http://example.com/s.json#/a", "http://example.com/s.json"},
		{"drops empty fragment", "http://example.com/s.json#", "http://example.com/s.json"},
		{"drops empty query", "http://example.com/s.json?", "http://example.com/s.json"},
		{"keeps query", "http://example.com/s.json?v=1", "http://example.com/s.json?v=1"},
		{"lowercases scheme and host", "HTTP://Example.COM/S.json", "http://example.com/S.json"},
		{"removes default port", "http://example.com:80/s.json", "http://example.com/s.json"},
		{"removes default https port", "https://example.com:443/s.json", "https://example.com/s.json"},
		{"keeps other port", "http://example.com:8080/s.json", "http://example.com:8080/s.json"},
		{"empty path becomes slash", "http://example.com", "http://example.com/"},
		{"dot segments", "http://example.com/a/./b/../c.json", "http://example.com/a/c.json"},
		{"decodes unreserved escapes", "http://example.com/%7Euser/%61.json", "http://example.com/~user/a.json"},
		{"uppercases escape hex", "http://example.com/a%2fb", "http://example.com/a%2Fb"},
		{"idna host", "http://bücher.example/s.json", "http://xn--bcher-kva.example/s.json"},
		{"ipv6 host", "http://[::1]:80/s.json", "http://[::1]/s.json"},
		{"relative path unchanged", "schemas/a.json", "schemas/a.json"},
		{"opaque", "urn:example:doc#x", "urn:example:doc"},
		{"escapes space", "http://example.com/a b.json", "http://example.com/a%20b.json"},
		{"keeps encoded slash beside space", "http://x/a%2fb/c d", "http://x/a%2Fb/c%20d"},
		{"keeps encoded slash beside non-ascii", "http://x/a%2Fb/é.json", "http://x/a%2Fb/%C3%A9.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.uri))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, uri := range []string{
		"HTTP://Example.COM:80/a/../b.json?",
		"http://example.com/%7e/a%2fb",
		"mem://x",
		"file:///tmp/a.json",
		"http://x/a%2fb/c d",
	} {
		once := Normalize(uri)
		assert.Equal(t, once, Normalize(once), uri)
	}
}

func TestNormalizeEquivalentURIsCollide(t *testing.T) {
	a := Normalize("http://example.com/schemas/a.json")
	assert.Equal(t, a, Normalize("http://EXAMPLE.com:80/schemas/./a.json#/definitions"))
	assert.Equal(t, a, Normalize("http://example.com/schemas/x/../a.json?"))
	assert.Equal(t, a, Normalize("http://example.com/schem%61s/a.json"))
}

func TestNormalizeEncodedSlashIsDistinct(t *testing.T) {
	assert.NotEqual(t, Normalize("http://x/a/b/c d"), Normalize("http://x/a%2fb/c d"))
	assert.Equal(t, Normalize("http://x/a%2Fb/c%20d"), Normalize("http://x/a%2fb/c d"))
}

func TestEscapeStray(t *testing.T) {
	assert.Equal(t, "http://bücher.example/a%20b", escapeStray("http://bücher.example/a b"))
	assert.Equal(t, "http://example.com", escapeStray("http://example.com"))
	assert.Equal(t, "dir/a%7Bb%7D.json?q=%22x%22", escapeStray(`dir/a{b}.json?q="x"`))
	assert.Equal(t, "a%2Fb", escapeStray("a%2Fb"))
}

func TestRemoveDotSegments(t *testing.T) {
	tests := map[string]string{
		"/a/b/c/./../../g": "/a/g",
		"/a/.":             "/a/",
		"/a/b/..":          "/a/",
		"/..":              "/",
		"/":                "/",
		"//x":              "//x",
		"a/../b":           "a/../b",
	}
	for in, want := range tests {
		assert.Equal(t, want, removeDotSegments(in), in)
	}
}
