package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cartdanawa/pricescan/internal/providers"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name       string
		req        providers.Request
		wantImages bool
		wantFormat bool
	}{
		{name: "text only", req: providers.Request{Prompt: "hello"}},
		{name: "image and json", req: providers.Request{Prompt: "hello", Image: []byte("ABC"), JSON: true}, wantImages: true, wantFormat: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/generate" {
					t.Errorf("Expected /api/generate, got %s", r.URL.Path)
				}
				_ = json.NewDecoder(r.Body).Decode(&got)
				_, _ = w.Write([]byte(`{"response":"ok"}`))
			}))
			defer srv.Close()

			t.Setenv("OLLAMA_URL", srv.URL)
			t.Setenv("OLLAMA_MODEL", "")
			out, err := New().Extract(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if out != "ok" {
				t.Errorf("Expected ok, got %q", out)
			}
			if got["model"] != DefaultModel {
				t.Errorf("Expected default model, got %v", got["model"])
			}
			if got["stream"] != false {
				t.Errorf("Expected stream false, got %v", got["stream"])
			}
			images, hasImages := got["images"].([]interface{})
			if hasImages != tt.wantImages {
				t.Errorf("Expected images present=%v, got %v", tt.wantImages, hasImages)
			}
			if hasImages && images[0] != "QUJD" {
				t.Errorf("Expected base64 image, got %v", images[0])
			}
			if _, hasFormat := got["format"]; hasFormat != tt.wantFormat {
				t.Errorf("Expected format present=%v, got %v", tt.wantFormat, hasFormat)
			}
		})
	}
}
