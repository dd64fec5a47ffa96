// Package uriutil splits, joins and normalizes the URIs used as $ref targets
// and document store keys.
package uriutil

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// defaultPorts lists ports that are dropped during normalization.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Split separates a URI into its document part and its fragment.
// The fragment is returned as written (still percent-encoded) and without
// the leading '#'.
func Split(uri string) (base, fragment string) {
	base, fragment, _ = strings.Cut(uri, "#")
	return base, fragment
}

// Join resolves ref against base using RFC 3986 reference resolution.
// An absolute ref is returned unchanged, an empty base leaves ref as is, and
// a relative base stays relative.
func Join(base, ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if base == "" {
		return ref, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if r.IsAbs() {
		return r.String(), nil
	}

	joined := b.ResolveReference(r)
	// ResolveReference always roots the merged path. Undo that when both
	// sides were relative paths so "dir/a.json" + "b.json" is "dir/b.json".
	if !b.IsAbs() && b.Host == "" && !strings.HasPrefix(b.Path, "/") &&
		!strings.HasPrefix(r.Path, "/") && strings.HasPrefix(joined.Path, "/") {
		joined.Path = strings.TrimPrefix(joined.Path, "/")
		joined.RawPath = strings.TrimPrefix(joined.RawPath, "/")
	}
	return joined.String(), nil
}

// Normalize returns the canonical store key for uri: the fragment is dropped,
// scheme and host are lowercased, IDNA hosts are converted to ASCII, default
// ports are removed, percent-escapes are canonicalized and dot segments are
// removed from absolute paths. A URI that cannot be parsed is returned
// without its fragment.
func Normalize(uri string) string {
	base, _ := Split(uri)
	if base == "" {
		return ""
	}
	base = escapeStray(norm.NFC.String(base))

	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Fragment, u.RawFragment = "", ""
	u.ForceQuery = false

	if u.Host != "" {
		u.Host = normalizeHost(u.Scheme, u.Hostname(), u.Port())
	}
	if u.Opaque == "" {
		p := removeDotSegments(normalizeEscapes(u.EscapedPath()))
		if p == "" && u.Host != "" {
			p = "/"
		}
		if decoded, err := url.PathUnescape(p); err == nil {
			u.Path, u.RawPath = decoded, p
		}
	}
	u.RawQuery = normalizeEscapes(u.RawQuery)
	return u.String()
}

func normalizeHost(scheme, hostname, port string) string {
	hostname = strings.ToLower(hostname)
	if !strings.Contains(hostname, ":") {
		if ascii, err := idna.ToASCII(hostname); err == nil {
			hostname = ascii
		}
	}
	if port != "" && defaultPorts[scheme] == port {
		port = ""
	}
	if port != "" {
		return net.JoinHostPort(hostname, port)
	}
	if strings.Contains(hostname, ":") {
		return "[" + hostname + "]"
	}
	return hostname
}

// escapeStray percent-encodes bytes after the authority that are never valid
// unescaped in a URI, such as spaces and non-ASCII. url.Parse discards the
// escaped form of a path holding such bytes, which would turn "%2F" into '/'.
func escapeStray(s string) string {
	start := 0
	if i := strings.Index(s, "://"); i > 0 && !strings.ContainsAny(s[:i], "/?") {
		j := strings.IndexAny(s[i+3:], "/?")
		if j < 0 {
			return s
		}
		start = i + 3 + j
	}
	first := -1
	for i := start; i < len(s); i++ {
		if isStray(s[i]) {
			first = i
			break
		}
	}
	if first < 0 {
		return s
	}

	const hex = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	sb.WriteString(s[:first])
	for i := first; i < len(s); i++ {
		c := s[i]
		if !isStray(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hex[c>>4])
		sb.WriteByte(hex[c&0x0f])
	}
	return sb.String()
}

func isStray(c byte) bool {
	return c <= ' ' || c >= 0x7f || strings.IndexByte("\"<>\\^`{|}", c) >= 0
}

// normalizeEscapes uppercases percent-escape hex digits and decodes escapes
// of unreserved characters (RFC 3986 section 6.2.2).
func normalizeEscapes(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' || i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) {
			sb.WriteByte(c)
			continue
		}
		b := unhex(s[i+1])<<4 | unhex(s[i+2])
		if isUnreserved(b) {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('%')
			sb.WriteString(strings.ToUpper(s[i+1 : i+3]))
		}
		i += 2
	}
	return sb.String()
}

// removeDotSegments implements RFC 3986 section 5.2.4 for absolute paths.
// Relative paths are returned unchanged.
func removeDotSegments(p string) string {
	if !strings.HasPrefix(p, "/") {
		return p
	}
	segs := strings.Split(p[1:], "/")
	out := make([]string, 0, len(segs))
	for i, s := range segs {
		last := i == len(segs)-1
		switch s {
		case ".":
			if last {
				out = append(out, "")
			}
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			if last {
				out = append(out, "")
			}
		default:
			out = append(out, s)
		}
	}
	return "/" + strings.Join(out, "/")
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func isUnreserved(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}
