package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/cartdanawa/pricescan/internal/providers"
)

const (
	// DefaultModel is used when OLLAMA_MODEL is unset
	DefaultModel = "mistral-small3.2:24b"
	// DefaultURL is a local Ollama daemon
	DefaultURL = "http://localhost:11434"
)

// Ollama is a provider for a self-hosted Ollama daemon. It needs no
// credentials.
type Ollama struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a new Ollama provider, reading OLLAMA_URL or OLLAMA_HOST
func New() *Ollama {
	url := os.Getenv("OLLAMA_URL")
	if url == "" {
		url = os.Getenv("OLLAMA_HOST")
	}
	if url == "" {
		url = DefaultURL
	}
	return &Ollama{BaseURL: url, HTTPClient: &http.Client{}}
}

// Model returns OLLAMA_MODEL or the default
func Model() string {
	if m := os.Getenv("OLLAMA_MODEL"); m != "" {
		return m
	}
	return DefaultModel
}

// Extract sends the prompt, and the image when present, to /api/generate
func (o *Ollama) Extract(ctx context.Context, req providers.Request) (string, error) {
	model := req.Model
	if model == "" {
		model = Model()
	}

	body := map[string]interface{}{
		"model":  model,
		"prompt": req.Prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": req.Temperature,
		},
	}
	if len(req.Image) > 0 {
		body["images"] = []string{base64.StdEncoding.EncodeToString(req.Image)}
	}
	if req.JSON {
		body["format"] = "json"
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(o.BaseURL, "/")+"/api/generate", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.HTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}
