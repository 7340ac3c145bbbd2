package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cartdanawa/pricescan/internal/dispatch"
	"github.com/cartdanawa/pricescan/internal/recognition"
)

// spacingFromEnv reads DISPATCH_SPACING as a Go duration
func spacingFromEnv() (time.Duration, error) {
	raw := os.Getenv("DISPATCH_SPACING")
	if raw == "" {
		return dispatch.DefaultSpacing, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid DISPATCH_SPACING %q: %w", raw, err)
	}
	return d, nil
}

// remoteRecognizer returns an HTTP client for the recognition service at
// url, or nil when url is empty
func remoteRecognizer(url string) (dispatch.Recognizer, error) {
	if url == "" {
		return nil, nil
	}
	client, err := recognition.NewHTTPClient(url, recognition.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	slog.Info("Using remote recognition service", "url", client.BaseURL)
	return client, nil
}
