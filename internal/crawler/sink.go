package crawler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPersist wraps every PageSink failure. It marks the error as run-fatal:
// a crawl whose output location cannot be written stops.
var ErrPersist = errors.New("failed to persist page")

// PageSink stores the body of a page whose URL matched the target pattern.
// Save returns the path (or other location) the page was written to.
type PageSink interface {
	Save(rawURL string, body []byte) (string, error)
}

// FileSink writes each page to its own file under a directory.
// The file name is the percent-encoded URL, so every URL maps to exactly
// one file and two URLs never share one.
type FileSink struct {
	dir string
}

// NewFileSink creates a FileSink writing under dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Dir returns the output directory.
func (s *FileSink) Dir() string {
	return s.dir
}

// Save writes body to dir/EncodeFileName(rawURL), creating missing
// directories. A crash mid-write can leave a partial file behind.
func (s *FileSink) Save(rawURL string, body []byte) (string, error) {
	path := filepath.Join(s.dir, EncodeFileName(rawURL))

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", fmt.Errorf("%w: create directory for %s: %w", ErrPersist, rawURL, err)
	}
	if err := os.WriteFile(path, body, 0600); err != nil {
		return "", fmt.Errorf("%w: write %s: %w", ErrPersist, path, err)
	}
	return path, nil
}

// fileNameSafe holds the bytes EncodeFileName leaves as they are.
const fileNameSafe = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_.-"

// EncodeFileName percent-encodes every byte of rawURL outside letters,
// digits and "_.-". Slashes are encoded too, so the result is a single
// path element.
func EncodeFileName(rawURL string) string {
	const hex = "0123456789ABCDEF"

	var sb strings.Builder
	sb.Grow(len(rawURL) * 3)
	for i := 0; i < len(rawURL); i++ {
		c := rawURL[i]
		if strings.IndexByte(fileNameSafe, c) >= 0 {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hex[c>>4])
		sb.WriteByte(hex[c&0x0F])
	}
	return sb.String()
}
