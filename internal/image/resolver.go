// Package image resolves a token's display image from either an uploaded
// file or a user-supplied URL. The two sources are mutually exclusive.
package image

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sync"
)

// MaxUploadBytes is the upload size limit.
const MaxUploadBytes = 5_000_000

// Image source errors.
var (
	// ErrTooLarge is returned for uploads over MaxUploadBytes.
	ErrTooLarge = fmt.Errorf("image must be at most %d bytes", MaxUploadBytes)

	// ErrUnsupportedFormat is returned for uploads that are not one of the
	// accepted image encodings.
	ErrUnsupportedFormat = errors.New("only jpg, jpeg, png and webp images are supported")

	// ErrInvalidURL is returned when the URL source is not a well-formed
	// absolute URL.
	ErrInvalidURL = errors.New("image URL is not a valid URL")
)

// Resolver holds the current image source. Setting an upload clears any URL
// and vice versa; the mutual exclusion invariant is enforced on every
// mutation, not just at submission.
type Resolver struct {
	mu     sync.Mutex
	gen    uint64 // bumped on every mutation, for last-write-wins on async reads
	upload []byte
	mime   string
	url    string
}

// NewResolver creates an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// SetUpload validates data as an accepted image and makes it the active
// source, clearing any URL. Returns the data-URL preview.
func (r *Resolver) SetUpload(data []byte) (string, error) {
	mime, err := validateUpload(data)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.upload = data
	r.mime = mime
	r.url = ""
	return dataURL(mime, data), nil
}

// SetURL makes url the active source, clearing any upload. An empty string
// clears both sources; a non-empty value must be a well-formed absolute URL.
func (r *Resolver) SetURL(raw string) (string, error) {
	if raw != "" {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return "", ErrInvalidURL
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.upload = nil
	r.mime = ""
	r.url = raw
	return raw, nil
}

// Clear removes any image source.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.upload = nil
	r.mime = ""
	r.url = ""
}

// Preview returns the current preview: the data URL of an upload, the URL
// itself in URL mode, or "" when no source is set.
func (r *Resolver) Preview() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upload != nil {
		return dataURL(r.mime, r.upload)
	}
	return r.url
}

// Upload returns the uploaded bytes, if an upload is the active source.
func (r *Resolver) Upload() ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upload, r.upload != nil
}

// URL returns the URL source, if one is set.
func (r *Resolver) URL() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.url, r.url != ""
}

// ReadResult is the outcome of an asynchronous upload read.
type ReadResult struct {
	Preview string
	Err     error
}

// SetUploadFile reads path asynchronously and, when the read completes,
// applies it as the upload source. The returned channel delivers exactly one
// result. Rapid re-selection races resolve last-write-wins: a read that
// finishes after a newer mutation still validates and reports its outcome
// but does not become the source. In-flight reads are not cancelled.
func (r *Resolver) SetUploadFile(path string) <-chan ReadResult {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	ch := make(chan ReadResult, 1)
	go func() {
		data, err := os.ReadFile(path)
		if err != nil {
			ch <- ReadResult{Err: fmt.Errorf("read image file: %w", err)}
			return
		}

		mime, err := validateUpload(data)
		if err != nil {
			ch <- ReadResult{Err: err}
			return
		}

		r.mu.Lock()
		if r.gen == gen {
			r.upload = data
			r.mime = mime
			r.url = ""
		}
		r.mu.Unlock()

		ch <- ReadResult{Preview: dataURL(mime, data)}
	}()
	return ch
}

func validateUpload(data []byte) (string, error) {
	if len(data) > MaxUploadBytes {
		return "", ErrTooLarge
	}
	mime, ok := sniffImageType(data)
	if !ok {
		return "", ErrUnsupportedFormat
	}
	return mime, nil
}

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
