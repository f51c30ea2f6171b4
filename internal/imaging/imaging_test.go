package imaging

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareForAnalysis_DownscalesLongEdge(t *testing.T) {
	out, err := PrepareForAnalysis(pngBytes(t, 3000, 1500), "image/png")
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1024, decoded.Bounds().Dx())
	assert.Equal(t, 512, decoded.Bounds().Dy())
}

func TestPrepareForAnalysis_KeepsSmallImages(t *testing.T) {
	out, err := PrepareForAnalysis(pngBytes(t, 200, 300), "")
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, decoded.Bounds().Dx())
	assert.Equal(t, 300, decoded.Bounds().Dy())
}

func TestDecode_Rejections(t *testing.T) {
	_, _, err := Decode(nil, "")
	assert.ErrorIs(t, err, ErrEmpty)

	_, _, err = Decode([]byte("plain text, not an image"), "")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, _, err = Decode(pngBytes(t, 4, 4), "image/jpeg")
	assert.ErrorIs(t, err, ErrMismatch)

	_, mimeType, err := Decode(pngBytes(t, 4, 4), "image/png; charset=binary")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
}

func TestEncodeWebP(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	out, err := EncodeWebP(img, WebPQuality)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(out[:4]))
}

// pngHeader returns a PNG that declares w x h RGBA pixels but carries no
// image data.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // truecolor with alpha
	chunk := append([]byte("IHDR"), ihdr...)

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestDecode_RejectsOversizedDimensions(t *testing.T) {
	_, _, err := Decode(pngHeader(30000, 30000), "image/png")
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = PrepareForAnalysis(pngHeader(100000, 500), "")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestCheckDimensions(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		expect error
	}{
		{"typical photo", 4032, 3024, nil},
		{"at the limit", 8000, 5000, nil},
		{"one row over", 8000, 5001, ErrTooLarge},
		{"huge square", 30000, 30000, ErrTooLarge},
		{"zero width", 0, 10, ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDimensions(tt.w, tt.h)
			if tt.expect == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expect)
		})
	}
}

func TestAnalysisJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2048, 1024))
	out, err := AnalysisJPEG(img)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, AnalysisMaxSize, decoded.Bounds().Dx())
}
