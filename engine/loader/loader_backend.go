package loader

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/h2non/filetype"
)

// imageBackend decodes one family of image formats into CPU-side pixel data.
type imageBackend interface {
	// Decode reads the whole image from r.
	//
	// Parameters:
	//   - name: the name the image is cached under
	//   - r: the encoded image
	//   - flip: true to store the bottom row first
	//
	// Returns:
	//   - *common.ImageData: the decoded pixels
	//   - error: an error if the data is malformed
	Decode(name string, r io.Reader, flip bool) (*common.ImageData, error)
}

// modelBackend parses one model format into CPU-side meshes and materials.
type modelBackend interface {
	// Parse reads the model from r. open resolves files the model references, such as material
	// libraries, relative to the model.
	Parse(name string, r io.Reader, open func(path string) (io.ReadCloser, error)) (*common.ImportedModel, error)
}

// radianceMagic prefixes every Radiance HDR file. filetype has no matcher for it.
var radianceMagic = [][]byte{[]byte("#?RADIANCE"), []byte("#?RGBE")}

// sniffHeaderSize is how many leading bytes are inspected to detect a format.
const sniffHeaderSize = 262

// detectImageFormat names the image format from the leading bytes of the file, falling back to the
// file extension when the content is not recognised.
//
// Parameters:
//   - name: the file name, used for the extension fallback
//   - head: the first bytes of the file
//
// Returns:
//   - string: a lower-case format name ("png", "jpg", "gif", "bmp", "tif", "webp" or "hdr")
//   - error: an error if neither content nor extension identify a supported format
func detectImageFormat(name string, head []byte) (string, error) {
	for _, magic := range radianceMagic {
		if bytes.HasPrefix(head, magic) {
			return "hdr", nil
		}
	}

	kind, err := filetype.Match(head)
	if err == nil && kind != filetype.Unknown {
		if format, ok := normalizeFormat(kind.Extension); ok {
			return format, nil
		}
		return "", fmt.Errorf("%s: unsupported image type %s", name, kind.MIME.Value)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if format, ok := normalizeFormat(ext); ok {
		return format, nil
	}
	return "", fmt.Errorf("%s: unrecognised image format", name)
}

func normalizeFormat(ext string) (string, bool) {
	switch ext {
	case "png", "gif", "bmp", "webp", "hdr":
		return ext, true
	case "jpg", "jpeg":
		return "jpg", true
	case "tif", "tiff":
		return "tif", true
	case "pic":
		return "hdr", true
	}
	return "", false
}

// modelFormat maps a model file name to its backend key.
func modelFormat(name string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".obj":
		return "obj", nil
	default:
		return "", fmt.Errorf("unsupported model format: %q", ext)
	}
}
