package image

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// pngBytes is a minimal PNG header followed by padding, enough for content
// type sniffing.
func pngBytes(size int) []byte {
	header := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	if size < len(header) {
		size = len(header)
	}
	data := make([]byte, size)
	copy(data, header)
	return data
}

func jpegBytes() []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 16)...)
}

func webpBytes() []byte {
	data := make([]byte, 16)
	copy(data, "RIFF")
	copy(data[8:], "WEBP")
	copy(data[12:], "VP8 ")
	return data
}

func TestResolver_SetUpload(t *testing.T) {
	r := NewResolver()

	preview, err := r.SetUpload(pngBytes(64))
	if err != nil {
		t.Fatalf("SetUpload: %v", err)
	}
	if !strings.HasPrefix(preview, "data:image/png;base64,") {
		t.Errorf("preview = %q, want data URL", preview)
	}

	upload, ok := r.Upload()
	if !ok {
		t.Fatal("expected upload source")
	}
	if !bytes.Equal(upload, pngBytes(64)) {
		t.Error("upload bytes mismatch")
	}
	if r.Preview() != preview {
		t.Error("Preview should match SetUpload result")
	}
}

func TestResolver_SetUpload_Formats(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		mime string
	}{
		{"png", pngBytes(64), "image/png"},
		{"jpeg", jpegBytes(), "image/jpeg"},
		{"webp", webpBytes(), "image/webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preview, err := NewResolver().SetUpload(tt.data)
			if err != nil {
				t.Fatalf("SetUpload: %v", err)
			}
			if !strings.HasPrefix(preview, "data:"+tt.mime+";base64,") {
				t.Errorf("preview = %q, want %s data URL", preview[:40], tt.mime)
			}
		})
	}
}

func TestResolver_SetUpload_RejectsUnsupported(t *testing.T) {
	r := NewResolver()

	_, err := r.SetUpload([]byte("plain text, not an image"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, ok := r.Upload(); ok {
		t.Error("rejected upload must not become the source")
	}
}

func TestResolver_SetUpload_RejectsOversized(t *testing.T) {
	_, err := NewResolver().SetUpload(pngBytes(MaxUploadBytes + 1))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestResolver_SetUpload_AcceptsLimit(t *testing.T) {
	if _, err := NewResolver().SetUpload(pngBytes(MaxUploadBytes)); err != nil {
		t.Fatalf("upload at the limit should pass: %v", err)
	}
}

func TestResolver_MutualExclusion(t *testing.T) {
	r := NewResolver()

	if _, err := r.SetUpload(pngBytes(32)); err != nil {
		t.Fatalf("SetUpload: %v", err)
	}

	// Setting a URL clears the upload.
	if _, err := r.SetURL("https://example.com/logo.png"); err != nil {
		t.Fatalf("SetURL: %v", err)
	}
	if _, ok := r.Upload(); ok {
		t.Error("upload should be cleared by SetURL")
	}
	if u, ok := r.URL(); !ok || u != "https://example.com/logo.png" {
		t.Errorf("URL = %q, %v", u, ok)
	}
	if r.Preview() != "https://example.com/logo.png" {
		t.Errorf("Preview = %q", r.Preview())
	}

	// Setting an upload clears the URL.
	if _, err := r.SetUpload(pngBytes(32)); err != nil {
		t.Fatalf("SetUpload: %v", err)
	}
	if _, ok := r.URL(); ok {
		t.Error("URL should be cleared by SetUpload")
	}
}

func TestResolver_SetURL_EmptyClears(t *testing.T) {
	r := NewResolver()
	if _, err := r.SetUpload(pngBytes(32)); err != nil {
		t.Fatalf("SetUpload: %v", err)
	}

	if _, err := r.SetURL(""); err != nil {
		t.Fatalf("SetURL(\"\"): %v", err)
	}
	if _, ok := r.Upload(); ok {
		t.Error("upload should be cleared")
	}
	if _, ok := r.URL(); ok {
		t.Error("URL should not be set")
	}
	if r.Preview() != "" {
		t.Errorf("Preview = %q, want empty", r.Preview())
	}
}

func TestResolver_SetURL_Invalid(t *testing.T) {
	r := NewResolver()
	if _, err := r.SetUpload(pngBytes(32)); err != nil {
		t.Fatalf("SetUpload: %v", err)
	}

	if _, err := r.SetURL("not a url"); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}

	// A rejected URL must not disturb the existing source.
	if _, ok := r.Upload(); !ok {
		t.Error("upload should survive a rejected SetURL")
	}
}

func TestResolver_Clear(t *testing.T) {
	r := NewResolver()
	if _, err := r.SetUpload(pngBytes(32)); err != nil {
		t.Fatalf("SetUpload: %v", err)
	}

	r.Clear()
	if r.Preview() != "" {
		t.Error("Preview should be empty after Clear")
	}
}

func TestResolver_SetUploadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(path, pngBytes(64), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	r := NewResolver()
	select {
	case result := <-r.SetUploadFile(path):
		if result.Err != nil {
			t.Fatalf("SetUploadFile: %v", result.Err)
		}
		if !strings.HasPrefix(result.Preview, "data:image/png;base64,") {
			t.Errorf("preview = %q", result.Preview)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for read result")
	}

	if _, ok := r.Upload(); !ok {
		t.Error("upload should be the source after the read completes")
	}
}

func TestResolver_SetUploadFile_MissingFile(t *testing.T) {
	r := NewResolver()
	result := <-r.SetUploadFile(filepath.Join(t.TempDir(), "absent.png"))
	if result.Err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, ok := r.Upload(); ok {
		t.Error("failed read must not set a source")
	}
}

func TestResolver_SetUploadFile_LastWriteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(path, pngBytes(64), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	r := NewResolver()
	ch := r.SetUploadFile(path)

	// A newer mutation supersedes the in-flight read.
	if _, err := r.SetURL("https://example.com/logo.png"); err != nil {
		t.Fatalf("SetURL: %v", err)
	}

	result := <-ch
	if result.Err != nil {
		t.Fatalf("stale read should still report its outcome: %v", result.Err)
	}

	if _, ok := r.Upload(); ok {
		t.Error("stale read must not replace the newer URL source")
	}
	if u, ok := r.URL(); !ok || u != "https://example.com/logo.png" {
		t.Errorf("URL = %q, %v", u, ok)
	}
}
