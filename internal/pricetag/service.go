// Package pricetag is the in-process recognition service: it asks an LLM
// provider to read a price tag and validates the answer.
package pricetag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/cartdanawa/pricescan/internal/gemini"
	"github.com/cartdanawa/pricescan/internal/models"
	"github.com/cartdanawa/pricescan/internal/ollama"
	"github.com/cartdanawa/pricescan/internal/openai"
	"github.com/cartdanawa/pricescan/internal/providers"
	"github.com/cartdanawa/pricescan/internal/recognition"
)

// DefaultProvider is used when PRICESCAN_PROVIDER is unset
const DefaultProvider = "gemini"

var codeFence = regexp.MustCompile("```json|```")

// Service reads price tags through an LLM provider
type Service struct {
	provider    providers.Provider
	model       string
	temperature float64
	timeout     time.Duration
}

// NewService builds the service for the named provider. An empty name reads
// PRICESCAN_PROVIDER. Missing credentials surface as a
// *recognition.ConfigurationError.
func NewService(name string) (*Service, error) {
	if name == "" {
		name = os.Getenv("PRICESCAN_PROVIDER")
	}
	if name == "" {
		name = DefaultProvider
	}

	var (
		p     providers.Provider
		model string
		err   error
	)
	switch name {
	case "gemini":
		p, err = newGemini()
		model = gemini.Model()
	case "openai":
		p, err = newOpenAI()
		model = openai.Model()
	case "ollama":
		p = ollama.New()
		model = ollama.Model()
	default:
		return nil, fmt.Errorf("unsupported provider: %s (supported: %s)", name, strings.Join(providers.Names, ", "))
	}
	if err != nil {
		if errors.Is(err, providers.ErrMissingCredentials) {
			return nil, &recognition.ConfigurationError{ID: recognition.CredentialsMissing, Detail: err.Error()}
		}
		return nil, err
	}

	slog.Info("Recognition service configured", "provider", name, "model", model)
	return NewServiceWithProvider(p, model), nil
}

// NewServiceWithProvider wraps an already constructed provider
func NewServiceWithProvider(p providers.Provider, model string) *Service {
	return &Service{provider: p, model: model, temperature: 0.1, timeout: recognition.DefaultTimeout}
}

// SetTimeout bounds each provider call. Zero or less restores the default.
func (s *Service) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = recognition.DefaultTimeout
	}
	s.timeout = d
}

// Model is the provider model the service asks
func (s *Service) Model() string {
	return s.model
}

// gemini.New returns a typed nil on error, which must not become a non-nil
// interface.
func newGemini() (providers.Provider, error) {
	g, err := gemini.New()
	if err != nil {
		return nil, err
	}
	return g, nil
}

func newOpenAI() (providers.Provider, error) {
	o, err := openai.New()
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Recognize extracts {productName, price} from a text or image payload
func (s *Service) Recognize(ctx context.Context, p recognition.Payload) (models.RecognitionResult, error) {
	req := providers.Request{
		Model:       s.model,
		Temperature: s.temperature,
		JSON:        true,
	}
	switch p.Kind {
	case recognition.KindText:
		if strings.TrimSpace(p.Text) == "" {
			return models.RecognitionResult{}, fmt.Errorf("%w: empty text", recognition.ErrMalformedResponse)
		}
		req.Prompt = TextPrompt(p.Text)
	case recognition.KindImage:
		if len(p.Image) == 0 {
			return models.RecognitionResult{}, fmt.Errorf("%w: empty image", recognition.ErrMalformedResponse)
		}
		req.Prompt = ImagePrompt()
		req.Image = p.Image
		req.MIMEType = p.MIMEType
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.provider.Extract(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return models.RecognitionResult{}, fmt.Errorf("%w: %v", recognition.ErrTimeout, err)
		}
		return models.RecognitionResult{}, fmt.Errorf("%w: %v", recognition.ErrServiceUnavailable, err)
	}

	result, err := recognition.DecodeResult([]byte(StripCodeFences(raw)))
	if err != nil {
		slog.Warn("Provider answer did not match the price tag schema", "kind", p.Kind, "response", raw)
		return models.RecognitionResult{}, err
	}
	if p.Kind == recognition.KindText {
		result.RawText = p.Text
	}
	return result, nil
}

// StripCodeFences removes Markdown code fences around a JSON answer
func StripCodeFences(s string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(s, ""))
}

const promptRules = `Rules:
1. **Price**: Look for the largest number that likely represents a price (e.g., 4830, 10000). Ignore small numbers like "100g", "1등급".
2. **Product Name**: Look for the main product description (e.g., "한우 등심", "서울우유"). Ignore "Price", "Discount", "Origin".
3. **Correction**: Fix obvious OCR typos (e.g., "한우 둥심" -> "한우 등심").

Return ONLY a JSON object with this format:
{
  "productName": "string",
  "price": number
}
Use null for a field you cannot find.`

// TextPrompt asks for the product and price in OCR text
func TextPrompt(text string) string {
	return fmt.Sprintf(`You are a smart shopping assistant.
Extract the "Product Name" and "Price" from the following OCR text.
The text might be messy, contain random characters, or be a mix of Korean and English.

%s

OCR Text:
"""
%s
"""`, promptRules, text)
}

// ImagePrompt asks for the product and price on a photographed tag
func ImagePrompt() string {
	return fmt.Sprintf(`You are a smart shopping assistant.
The image is a photo of a supermarket price tag, cropped to the tag.
Read it and extract the "Product Name" and "Price". Labels may mix Korean and English.

%s`, promptRules)
}
