// Package media sniffs uploaded documents and recompresses images to WebP.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Content types handled by this package. WebP is produced, never accepted
// as an upload.
const (
	TypePDF  = "application/pdf"
	TypeJPEG = "image/jpeg"
	TypePNG  = "image/png"
	TypeWebP = "image/webp"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("empty file")
)

// Options controls WebP output.
type Options struct {
	Quality float32
	// MaxDim caps the longer edge; 0 keeps the original size.
	MaxDim int
}

// DetectType sniffs the content type from the first bytes of a file and
// returns it when it is PDF, JPEG or PNG.
func DetectType(head []byte) (string, error) {
	if len(head) == 0 {
		return "", ErrEmptyFile
	}
	ct := sniff(head)
	switch ct {
	case TypePDF, TypeJPEG, TypePNG:
		return ct, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
}

func sniff(head []byte) string {
	ct := http.DetectContentType(head)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// IsImage reports whether ct is a raster image type.
func IsImage(ct string) bool {
	return ct == TypeJPEG || ct == TypePNG || ct == TypeWebP
}

// ConvertToWebP decodes a JPEG, PNG or WebP image, applies its EXIF
// orientation, shrinks it to fit MaxDim and encodes it as lossy WebP.
func ConvertToWebP(data []byte, opts Options) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	ct := sniff(data[:min(len(data), 512)])
	if !IsImage(ct) {
		return nil, fmt.Errorf("%w: %s is not an image", ErrUnsupportedType, ct)
	}

	var (
		img image.Image
		err error
	)
	if ct == TypeWebP {
		img, err = webp.Decode(bytes.NewReader(data))
	} else {
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrUnsupportedType, ct, err)
	}

	if opts.MaxDim > 0 {
		b := img.Bounds()
		if b.Dx() > opts.MaxDim || b.Dy() > opts.MaxDim {
			img = imaging.Fit(img, opts.MaxDim, opts.MaxDim, imaging.CatmullRom)
		}
	}

	q := opts.Quality
	if q <= 0 || q > 100 {
		q = 80
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: q}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
