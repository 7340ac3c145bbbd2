package recognition

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// Kind tells which half of a Payload is populated
type Kind int

const (
	KindImage Kind = iota
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Payload is one unit of work for the recognition service: either an encoded
// still image or raw text to extract from.
type Payload struct {
	Kind     Kind
	Image    []byte
	MIMEType string
	Text     string
}

// ImagePayload wraps encoded image bytes
func ImagePayload(data []byte, mimeType string) Payload {
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return Payload{Kind: KindImage, Image: data, MIMEType: mimeType}
}

// TextPayload wraps raw tag text
func TextPayload(text string) Payload {
	return Payload{Kind: KindText, Text: text}
}

// ImageFromDataURL builds an image payload from a base64 string that may carry
// a "data:<mime>;base64," prefix, as browser screenshots do.
func ImageFromDataURL(s string) (Payload, error) {
	data, mimeType, err := DecodeDataURL(s)
	if err != nil {
		return Payload{}, err
	}
	return ImagePayload(data, mimeType), nil
}

// StripDataURLPrefix drops a leading "data:...," header if present
func StripDataURLPrefix(s string) (body, mimeType string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return s, ""
	}
	idx := strings.IndexByte(s, ',')
	if idx < 0 {
		return s, ""
	}
	meta := s[len("data:"):idx]
	if semi := strings.IndexByte(meta, ';'); semi >= 0 {
		meta = meta[:semi]
	}
	return s[idx+1:], meta
}

// DecodeDataURL decodes standard or URL-safe base64, with or without a data
// URL header. The MIME type is the header's when present.
func DecodeDataURL(s string) ([]byte, string, error) {
	body, mimeType := StripDataURLPrefix(s)
	if body == "" {
		return nil, "", fmt.Errorf("empty image data")
	}
	if b, err := base64.StdEncoding.DecodeString(body); err == nil {
		return b, mimeType, nil
	}
	b, err := base64.URLEncoding.DecodeString(body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64 image: %w", err)
	}
	return b, mimeType, nil
}
