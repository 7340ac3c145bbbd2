package cmd

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cartdanawa/pricescan/internal/models"
	"github.com/cartdanawa/pricescan/internal/scan"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	out, err := execute(t, "신라면\n4,830원\n", "parse", "--output", "json")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	var result models.RecognitionResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", out, err)
	}
	if result.Price == nil || *result.Price != 4830 {
		t.Errorf("Expected price 4830, got %v", result.Price)
	}
	if result.ProductName == nil || *result.ProductName != "신라면" {
		t.Errorf("Expected name 신라면, got %v", result.ProductName)
	}
}

func TestParseCommandYAMLFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tag.txt")
	if err := os.WriteFile(path, []byte("두부\n1,500원"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", "parse", path)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !strings.Contains(out, "price: 1500") {
		t.Errorf("Expected YAML with price, got %q", out)
	}
}

func TestScanCommandWithoutCredentials(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("RECOGNITION_URL", "")

	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.White)
		}
	}
	path := filepath.Join(t.TempDir(), "tag.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	out, err := execute(t, "", "scan", path, "--provider", "gemini")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	var n scan.Notification
	if err := json.Unmarshal([]byte(out), &n); err != nil {
		t.Fatalf("Expected JSON notification, got %q: %v", out, err)
	}
	if n.Outcome != scan.OutcomeFailed {
		t.Errorf("Expected failed outcome for blank image, got %s", n.Outcome)
	}
}

func TestParseFloats(t *testing.T) {
	tests := []struct {
		input   string
		n       int
		wantErr bool
	}{
		{"45,300,300,150", 4, false},
		{" 390 , 844 ", 2, false},
		{"1,2,3", 4, true},
		{"a,b", 2, true},
	}
	for _, tt := range tests {
		_, err := parseFloats(tt.input, tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseFloats(%q, %d): expected error %v, got %v", tt.input, tt.n, tt.wantErr, err)
		}
	}
}

func TestSetupLoggingRejectsUnknownLevel(t *testing.T) {
	if err := setupLogging("loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
	if err := setupLogging("debug"); err != nil {
		t.Errorf("Expected debug to be accepted, got %v", err)
	}
}
