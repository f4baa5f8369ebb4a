package image

import "net/http"

// acceptedTypes is the fixed allow-list of image encodings. jpg and jpeg
// share the image/jpeg MIME type.
var acceptedTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// sniffImageType detects the content type from the data itself rather than
// trusting a file extension. Returns the MIME type and whether it is an
// accepted image encoding.
func sniffImageType(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	mime := http.DetectContentType(data)
	return mime, acceptedTypes[mime]
}
