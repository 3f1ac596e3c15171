// Package attachment keeps uploaded files inline in a record, as data URL:
// data:<mime>;base64,<payload>.
package attachment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultLimit is the maximum file size accepted, if no other limit is given.
const DefaultLimit = 5 << 20

var (
	ErrTooLarge       = errors.New("attachment too large")
	ErrInvalidDataURL = errors.New("invalid data url")
)

// Encode reads all of r and returns it as data URL.
// The media type is detected from the content. If limit is < 1, DefaultLimit is used.
func Encode(r io.Reader, limit int64) (string, error) {
	if limit < 1 {
		limit = DefaultLimit
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("could not read attachment: %w", err)
	}

	if int64(len(data)) > limit {
		return "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}

	mime, _ := Detect(data)

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Detect returns the media type of data, sniffed from its content, and the matching file extension.
// Spaces are removed from the media type, so it can be used in a data URL.
func Detect(data []byte) (string, string) {
	detected := mimetype.Detect(data)

	return strings.ReplaceAll(detected.String(), " ", ""), detected.Extension()
}

// FromFileHeader encodes an uploaded multipart file.
func FromFileHeader(fh *multipart.FileHeader, limit int64) (string, error) {
	if limit < 1 {
		limit = DefaultLimit
	}

	if fh.Size > limit {
		return "", fmt.Errorf("%w: %s has %d bytes", ErrTooLarge, fh.Filename, fh.Size)
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("could not open attachment %s: %w", fh.Filename, err)
	}
	defer f.Close()

	return Encode(f, limit)
}

// Decode returns the media type and the content of a base64 data URL.
func Decode(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURL)
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", ErrInvalidDataURL)
	}

	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: only base64 is supported", ErrInvalidDataURL)
	}

	if mime == "" {
		mime = "text/plain;charset=US-ASCII"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidDataURL, err)
	}

	return mime, data, nil
}
