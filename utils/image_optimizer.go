package utils

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/nfnt/resize"
)

// IsImage checks if the content type is a supported image format
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/jpeg") ||
		strings.HasPrefix(contentType, "image/png")
}

// OptimizeImage resizes and compresses a profile image so stored avatars
// stay small. Images already within maxWidth are returned untouched.
func OptimizeImage(data []byte, maxWidth uint) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if uint(bounds.Dx()) <= maxWidth {
		return data, nil
	}

	// Lanczos3 for quality
	m := resize.Resize(maxWidth, 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, m, &jpeg.Options{Quality: 85})
	case "png":
		err = png.Encode(&buf, m)
	default:
		// Decodable but not re-encodable here; keep the original bytes.
		return data, nil
	}

	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
