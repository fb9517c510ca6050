package storage

import (
	"bytes"
	"image"
	"io"
	"strings"

	// Decoders for accepted upload formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"vidtube/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const webpQuality = 80

type bounds struct{ w, h int }

var maxBounds = map[Kind]bounds{
	KindThumbnail: {1280, 720},
	KindAvatar:    {512, 512},
	KindCover:     {2048, 1152},
}

// NormalizeImage decodes an uploaded image, scales it down to fit the
// kind's bounds and re-encodes it as WebP.
func NormalizeImage(r io.Reader, kind Kind) ([]byte, error) {
	decoded, format, err := image.Decode(r)
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	switch strings.ToLower(format) {
	case "jpeg", "png", "gif", "webp":
	default:
		return nil, models.NewValidationError("Unsupported image format")
	}

	b, ok := maxBounds[kind]
	if !ok {
		b = bounds{2048, 2048}
	}
	resized := resizeToFit(decoded, b.w, b.h)

	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, resized, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, models.NewInternalError(err)
	}
	return buf.Bytes(), nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
