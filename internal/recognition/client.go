package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cartdanawa/pricescan/internal/models"
)

// DefaultTimeout bounds a single recognition call
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 1 << 20

// HTTPClient calls a recognition service over HTTP
type HTTPClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewHTTPClient creates a client for the service at baseURL
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("recognition service URL not set")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Recognize sends one payload and returns the validated result
func (c *HTTPClient) Recognize(ctx context.Context, p Payload) (models.RecognitionResult, error) {
	requestBody, err := json.Marshal(NewRequest(p))
	if err != nil {
		return models.RecognitionResult{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/parse", bytes.NewReader(requestBody))
	if err != nil {
		return models.RecognitionResult{}, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return models.RecognitionResult{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return models.RecognitionResult{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return models.RecognitionResult{}, fmt.Errorf("%w: failed to read response: %v", ErrServiceUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp ErrorResponse
		_ = json.Unmarshal(body, &errResp)
		if errResp.Error == CredentialsMissing {
			return models.RecognitionResult{}, &ConfigurationError{ID: CredentialsMissing, Detail: errResp.Message}
		}
		return models.RecognitionResult{}, fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	result, err := DecodeResult(body)
	if err != nil {
		return models.RecognitionResult{}, err
	}
	if p.Kind == KindText {
		result.RawText = p.Text
	}

	slog.Debug("Recognition call finished", "kind", p.Kind, "duration", time.Since(start), "has_price", result.HasPrice())
	return result, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func encodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
