package model

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/sha3"
)

// FetchRecord describes what happened to one crawled URL.
// Records are written to the crawl journal and rendered in run reports.
type FetchRecord struct {
	// URL is the absolute URL that was fetched.
	URL string `json:"url"`

	// Depth is the breadth-first distance from the seed.
	Depth int `json:"depth"`

	// StatusCode is the HTTP status, 0 when no response arrived.
	StatusCode int `json:"status_code"`

	// ContentType is the media type of the response without parameters.
	ContentType string `json:"content_type,omitempty"`

	// Success is true when the fetch returned a 2xx status.
	Success bool `json:"success"`

	// SavedPath is the file the page was written to; empty if not saved.
	SavedPath string `json:"saved_path,omitempty"`

	// Digest is the SHA3-256 of the body for successful fetches.
	Digest string `json:"digest,omitempty"`

	// Error explains a failed fetch.
	Error string `json:"error,omitempty"`

	// FetchedAt is when the fetch finished.
	FetchedAt time.Time `json:"fetched_at"`
}

// Saved reports whether the page was written to the output directory.
func (r FetchRecord) Saved() bool {
	return r.SavedPath != ""
}

// ComputeDigest returns the hex-encoded SHA3-256 digest of body.
// Two saved files with the same digest hold identical content.
func ComputeDigest(body []byte) string {
	sum := sha3.Sum256(body)
	return hex.EncodeToString(sum[:])
}
