package crawler

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/purell"
)

// pathNormalization only rewrites the path component. Scheme, host, query
// and fragment are left exactly as the reference resolution produced them.
// Repeated slashes are collapsed the way os.path.normpath collapses them.
const pathNormalization = purell.FlagRemoveDotSegments | purell.FlagRemoveDuplicateSlashes

// Resolve joins candidate against base and returns the absolute URL with a
// normalized path.
//
// Resolution follows RFC 3986 (relative paths, absolute paths,
// scheme-relative references, query and fragment preserved). After joining,
// "." and ".." segments and repeated slashes are collapsed in the path.
//
// An error is returned only when candidate cannot be parsed as a URL
// reference at all; callers skip such links.
func Resolve(base *url.URL, candidate string) (*url.URL, error) {
	ref, err := url.Parse(candidate)
	if err != nil {
		return nil, fmt.Errorf("invalid link %q: %w", candidate, err)
	}

	joined := base.ResolveReference(ref)
	if joined.RawPath != "" {
		// purell rebuilds the path from its decoded form, which would turn
		// an escaped "%2F" into a real separator.
		return normalizeEscapedPath(joined)
	}
	normalized := purell.NormalizeURL(joined, pathNormalization)

	u, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("invalid resolved URL %q: %w", normalized, err)
	}
	return u, nil
}

// normalizeEscapedPath collapses dot segments and repeated slashes of u
// working on the escaped path, so escaped separators stay escaped.
func normalizeEscapedPath(u *url.URL) (*url.URL, error) {
	escaped := u.EscapedPath()
	cleaned := path.Clean(escaped)
	if strings.HasSuffix(escaped, "/") && cleaned != "/" {
		cleaned += "/"
	}

	decoded, err := url.PathUnescape(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid resolved path %q: %w", cleaned, err)
	}
	u.Path = decoded
	u.RawPath = cleaned
	return u, nil
}

// ResolveString is Resolve for callers that hold the base as a string.
func ResolveString(base, candidate string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	u, err := Resolve(b, candidate)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
