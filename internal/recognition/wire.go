package recognition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/cartdanawa/pricescan/internal/models"
)

// Request is the body sent to the recognition service. Exactly one field is set.
type Request struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// Response is the success body of the recognition service
type Response struct {
	ProductName *string `json:"productName"`
	Price       *int    `json:"price"`
}

// ErrorResponse is the failure body of the recognition service
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewRequest encodes a payload for the wire. Images go out as bare base64.
func NewRequest(p Payload) Request {
	if p.Kind == KindText {
		return Request{Text: p.Text}
	}
	return Request{Image: encodeBase64(p.Image)}
}

// DecodeResult validates a success body against the {productName, price}
// shape. Anything else is ErrMalformedResponse.
func DecodeResult(body []byte) (models.RecognitionResult, error) {
	body = bytes.TrimSpace(body)
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return models.RecognitionResult{}, fmt.Errorf("%w: body is not a JSON object", ErrMalformedResponse)
	}

	rawName, hasName := fields["productName"]
	rawPrice, hasPrice := fields["price"]
	if !hasName && !hasPrice {
		return models.RecognitionResult{}, fmt.Errorf("%w: neither productName nor price present", ErrMalformedResponse)
	}

	var result models.RecognitionResult

	if hasName && !isNull(rawName) {
		var name string
		if err := json.Unmarshal(rawName, &name); err != nil {
			return models.RecognitionResult{}, fmt.Errorf("%w: productName is not a string", ErrMalformedResponse)
		}
		if name = strings.TrimSpace(name); name != "" {
			result.ProductName = &name
		}
	}

	if hasPrice && !isNull(rawPrice) {
		var price float64
		if err := json.Unmarshal(rawPrice, &price); err != nil {
			return models.RecognitionResult{}, fmt.Errorf("%w: price is not a number", ErrMalformedResponse)
		}
		if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 || price > math.MaxInt32 {
			return models.RecognitionResult{}, fmt.Errorf("%w: price %v out of range", ErrMalformedResponse, price)
		}
		if p := int(math.Round(price)); p > 0 {
			result.Price = &p
		}
	}

	return result, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
