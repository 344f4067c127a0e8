// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder for DecodeConfig
)

// Supported formats as reported by sniffFormat.
const (
	formatJPEG = "jpeg"
	formatPNG  = "png"
	formatGIF  = "gif"
	formatWebP = "webp"
)

// jpegQuality is used when a JPEG is re-encoded after rotation.
const jpegQuality = 92

// sniffFormat detects the image format from raw bytes. SVG and TIFF sniff
// as text or tiff and are rejected.
func sniffFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch contentType {
	case "image/jpeg":
		return formatJPEG
	case "image/png":
		return formatPNG
	case "image/gif":
		return formatGIF
	case "image/webp":
		return formatWebP
	default:
		return ""
	}
}

// mediaTypeOf converts a format to its media type.
func mediaTypeOf(format string) string {
	return "image/" + format
}

// extensionOf returns the file extension used in object keys.
func extensionOf(format string) string {
	if format == formatJPEG {
		return "jpg"
	}
	return format
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil || orientation < 1 || orientation > 8 {
		return 1
	}

	return orientation
}

// applyOrientation undoes an EXIF orientation so the pixels are upright.
// 2 and 4 are mirrors, 3 is a half turn, 5 to 8 involve a quarter turn.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// normalizeOrientation rotates a JPEG according to its EXIF orientation and
// re-encodes it. Data without an orientation tag is returned unchanged.
func normalizeOrientation(data []byte) ([]byte, image.Point, bool, error) {
	orientation := readExifOrientation(bytes.NewReader(data))
	if orientation == 1 {
		return data, image.Point{}, false, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, image.Point{}, false, fmt.Errorf("decoding image: %w", err)
	}
	img = applyOrientation(img, orientation)

	out, err := encode(img, formatJPEG)
	if err != nil {
		return nil, image.Point{}, false, err
	}
	b := img.Bounds()
	return out, image.Point{X: b.Dx(), Y: b.Dy()}, true, nil
}

// encode writes img in the given format. Pure Go has no WebP encoder, so
// WebP is never re-encoded.
func encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case formatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	case formatPNG:
		err = png.Encode(&buf, img)
	case formatGIF:
		err = gif.Encode(&buf, img, nil)
	default:
		err = fmt.Errorf("no encoder for %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
