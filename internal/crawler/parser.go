package crawler

import (
	"bytes"
	"io"
	"log/slog"
	"mime"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// HTML content types whose bodies are parsed for links.
const (
	contentTypeHTML  = "text/html"
	contentTypeXHTML = "application/xhtml+xml"
)

// linkSource names an element and the attribute that holds its link.
type linkSource struct {
	element   string
	attribute string
}

// linkSources lists the elements scanned for links, in output order.
// Links are grouped by element kind rather than emitted in document order.
var linkSources = []linkSource{
	{element: "a", attribute: "href"},
	{element: "link", attribute: "href"},
	{element: "script", attribute: "src"},
	{element: "img", attribute: "src"},
}

// LinkExtractor pulls raw link strings out of fetched HTML.
// The returned links are not resolved; see Resolve.
type LinkExtractor struct {
	logger *slog.Logger
}

// NewLinkExtractor creates a LinkExtractor that reports skipped elements to
// logger at debug level. A nil logger uses slog.Default().
func NewLinkExtractor(logger *slog.Logger) *LinkExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkExtractor{logger: logger}
}

// IsHTML reports whether contentType is a media type that can carry links.
// Parameters such as charset are ignored.
func IsHTML(contentType string) bool {
	mediaType := MediaType(contentType)
	return mediaType == contentTypeHTML || mediaType == contentTypeXHTML
}

// MediaType returns the lowercased primary media type of a Content-Type
// value, without parameters. Unparsable values fall back to the text before
// the first ';'.
func MediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// Extract returns the raw link strings found in content.
//
// contentType may be a bare media type or a full Content-Type header value;
// a charset parameter, when present, is used to decode the body.
//
// Only HTML content yields links; any other content type gives an empty
// result without looking at the body. Elements missing their link attribute
// are skipped, and links using the javascript: pseudo-scheme are dropped.
// The slice is built once per call and is meant to be consumed once.
func (e *LinkExtractor) Extract(content []byte, contentType string) []string {
	links := make([]string, 0)
	if !IsHTML(contentType) || len(content) == 0 {
		return links
	}

	doc, err := goquery.NewDocumentFromReader(e.decode(content, contentType))
	if err != nil {
		e.logger.Debug("failed to parse HTML", "error", err)
		return links
	}

	for _, src := range linkSources {
		doc.Find(src.element).Each(func(_ int, s *goquery.Selection) {
			link, ok := s.Attr(src.attribute)
			if !ok {
				e.logger.Debug("attribute not found",
					"element", src.element,
					"attribute", src.attribute,
				)
				return
			}
			link = strings.TrimSpace(link)
			if !isFollowable(link) {
				return
			}
			links = append(links, link)
		})
	}

	return links
}

// decode converts content to UTF-8. The encoding comes from a BOM, the
// charset parameter of contentType or a <meta> declaration, in that order.
func (e *LinkExtractor) decode(content []byte, contentType string) io.Reader {
	enc, name, _ := charset.DetermineEncoding(content, contentType)
	if name == "utf-8" {
		return bytes.NewReader(content)
	}
	return transform.NewReader(bytes.NewReader(content), enc.NewDecoder())
}

// isFollowable filters out link values that can never name a fetchable page.
func isFollowable(link string) bool {
	if link == "" {
		return false
	}
	if len(link) >= len("javascript:") && strings.EqualFold(link[:len("javascript:")], "javascript:") {
		return false
	}
	return true
}
