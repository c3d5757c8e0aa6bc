package qrtoken

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const (
	DefaultImageSize = 256
	minImageSize     = 128
	maxImageSize     = 1024
)

// RenderPNG encodes payload as a PNG QR image. Out of range sizes fall back to the default.
func RenderPNG(payload string, size int) ([]byte, error) {
	if size < minImageSize || size > maxImageSize {
		size = DefaultImageSize
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr image: %w", err)
	}
	return png, nil
}
