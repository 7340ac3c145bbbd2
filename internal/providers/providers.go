package providers

import (
	"context"
	"errors"
)

// ErrMissingCredentials is returned by a provider constructor when its API
// key is not configured
var ErrMissingCredentials = errors.New("missing provider credentials")

// Request represents one call to an LLM provider. Image is optional; when set
// the provider sends it alongside the prompt.
type Request struct {
	Model       string
	Temperature float64
	Prompt      string
	Image       []byte
	MIMEType    string
	// JSON asks the provider for a JSON-only answer where it supports that
	JSON bool
}

// Provider defines the interface for an LLM provider
type Provider interface {
	Extract(ctx context.Context, req Request) (string, error)
}

// Names lists the supported provider names
var Names = []string{"gemini", "openai", "ollama"}
