package pose

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	// frame codecs
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// DecodeFrame decodes an inbound frame into an image. It accepts raw encoded
// image bytes as well as base64 payloads, optionally with a data-URI prefix
// (data:image/jpeg;base64,...). A failure here means "no pose this frame" for
// the caller, never a fatal stream error.
func DecodeFrame(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty frame data")
	}

	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	return DecodeFrameBase64(string(data))
}

// DecodeFrameBase64 decodes a base64 (or data-URI) encoded frame.
func DecodeFrameBase64(data string) (image.Image, error) {
	if data == "" {
		return nil, fmt.Errorf("empty frame data")
	}

	// strip a data URI prefix, if present
	if idx := strings.Index(data, ","); idx != -1 && strings.Contains(data[:idx], ";base64") {
		data = data[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode base64 frame: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode frame image: %w", err)
	}
	return img, nil
}
