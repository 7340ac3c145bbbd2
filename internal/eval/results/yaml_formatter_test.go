package results

import (
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/cartdanawa/pricescan/internal/eval/metrics"
	"github.com/cartdanawa/pricescan/internal/models"
)

func TestSaveToYAML(t *testing.T) {
	price := 4830
	name := "신라면"
	actual := models.RecognitionResult{Price: &price, ProductName: &name}
	results := []metrics.EvaluationResult{
		{
			ID:            "tag-1",
			ExpectedName:  "신라면",
			ExpectedPrice: 4830,
			Actual:        actual,
			Comparison:    metrics.CompareTag("신라면", 4830, actual),
		},
		{ID: "tag-2", Error: "record has no text"},
	}

	dir := t.TempDir()
	path, err := SaveToYAML(dir, "gemini", "models/gemini-1.5-flash", "tags.jsonl", results)
	if err != nil {
		t.Fatalf("SaveToYAML failed: %v", err)
	}
	if !strings.HasPrefix(path, dir) || !strings.Contains(path, "models_gemini-1.5-flash-") {
		t.Errorf("Unexpected output path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var report EvalReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		t.Fatalf("Failed to read back YAML: %v", err)
	}

	if report.Config.SampleSize != 2 {
		t.Errorf("Expected sample size 2, got %d", report.Config.SampleSize)
	}
	if len(report.Results) != 1 || report.Results[0].OverallScore != 1.0 {
		t.Errorf("Expected one perfect result, got %+v", report.Results)
	}
	if len(report.Failed) != 1 || report.Failed[0] != "tag-2" {
		t.Errorf("Expected tag-2 listed as failed, got %v", report.Failed)
	}
}
