package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDetectType(t *testing.T) {
	ct, err := DetectType([]byte("%PDF-1.7\n%âãÏÓ"))
	require.NoError(t, err)
	assert.Equal(t, TypePDF, ct)

	ct, err = DetectType(pngBytes(t, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, TypePNG, ct)

	_, err = DetectType([]byte("PK\x03\x04 word document"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	webpFile, err := ConvertToWebP(pngBytes(t, 8, 8), Options{})
	require.NoError(t, err)
	_, err = DetectType(webpFile)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = DetectType(nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestConvertToWebP_Downscales(t *testing.T) {
	out, err := ConvertToWebP(pngBytes(t, 400, 200), Options{Quality: 75, MaxDim: 100})
	require.NoError(t, err)
	assert.Equal(t, TypeWebP, sniff(out))

	img, err := webp.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestConvertToWebP_KeepsSmallImages(t *testing.T) {
	out, err := ConvertToWebP(pngBytes(t, 40, 30), Options{MaxDim: 1600})
	require.NoError(t, err)

	img, err := webp.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())
}

func TestConvertToWebP_RejectsPDF(t *testing.T) {
	_, err := ConvertToWebP([]byte("%PDF-1.4 body"), Options{})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
