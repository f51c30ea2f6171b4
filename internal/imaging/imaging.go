// Package imaging decodes, resizes and re-encodes uploaded garment photos.
package imaging

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"mime"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// AnalysisMaxSize bounds the long edge of images sent for classification.
	AnalysisMaxSize = 1024
	// StoredMaxSize bounds the long edge of images kept on disk.
	StoredMaxSize = 2048
	JPEGQuality   = 82
	WebPQuality   = 70
	// MaxPixels bounds the decoded size of an upload (width x height).
	MaxPixels = 40_000_000
)

var (
	ErrEmpty       = errors.New("no image data")
	ErrUnsupported = errors.New("unsupported image type")
	ErrMismatch    = errors.New("image content type mismatch")
	ErrTooLarge    = errors.New("image dimensions too large")
)

// Decode sniffs and decodes data. A declared contentType, when it names an
// image type, must agree with the detected one.
func Decode(data []byte, contentType string) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmpty
	}
	detected := http.DetectContentType(data)
	if !IsAllowedMIME(detected) {
		return nil, "", ErrUnsupported
	}
	// The header is read first so oversized images are refused before any
	// pixel buffer is allocated.
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	if err := CheckDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, "", err
	}
	sourceMime := FormatToMIME(format)
	if sourceMime == "" {
		return nil, "", ErrUnsupported
	}
	if provided := NormalizeContentType(contentType); strings.HasPrefix(provided, "image/") && !matchingContentType(provided, sourceMime) {
		return nil, "", ErrMismatch
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	return decoded, sourceMime, nil
}

// CheckDimensions rejects empty images and images above MaxPixels.
func CheckDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrUnsupported
	}
	if int64(width)*int64(height) > MaxPixels {
		return ErrTooLarge
	}
	return nil
}

// ResizeToFit scales src down so neither edge exceeds max. Smaller images are returned as is.
func ResizeToFit(src image.Image, max int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 || (w <= max && h <= max) {
		return src
	}

	scale := float64(max) / float64(w)
	if s := float64(max) / float64(h); s < scale {
		scale = s
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

// PrepareForAnalysis decodes data, bounds it to AnalysisMaxSize and returns JPEG bytes.
func PrepareForAnalysis(data []byte, contentType string) ([]byte, error) {
	decoded, _, err := Decode(data, contentType)
	if err != nil {
		return nil, err
	}
	return AnalysisJPEG(decoded)
}

// AnalysisJPEG bounds an already decoded image to AnalysisMaxSize and returns JPEG bytes.
func AnalysisJPEG(img image.Image) ([]byte, error) {
	return EncodeJPEG(ResizeToFit(img, AnalysisMaxSize), JPEGQuality)
}

func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func EncodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func IsAllowedMIME(contentType string) bool {
	switch NormalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func NormalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func matchingContentType(provided, detected string) bool {
	p := NormalizeContentType(provided)
	d := NormalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

// FormatToMIME maps an image.Decode format name to its MIME type.
func FormatToMIME(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}
