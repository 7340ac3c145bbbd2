package results

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cartdanawa/pricescan/internal/eval/metrics"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Source      string `yaml:"source"`
	Model       string `yaml:"model,omitempty"`
	DatasetPath string `yaml:"datasetpath"`
	SampleSize  int    `yaml:"samplesize"`
	Timestamp   string `yaml:"timestamp"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	Identifier    string  `yaml:"identifier"`
	ExpectedName  string  `yaml:"expectedname,omitempty"`
	ExpectedPrice int     `yaml:"expectedprice"`
	ActualName    string  `yaml:"actualname,omitempty"`
	ActualPrice   *int    `yaml:"actualprice"`
	PriceMethod   string  `yaml:"pricemethod"`
	NameMethod    string  `yaml:"namemethod"`
	NameScore     float64 `yaml:"namescore"`
	OverallScore  float64 `yaml:"overallscore"`
}

// EvalReport represents the complete evaluation file
type EvalReport struct {
	Config  EvalConfig   `yaml:"config"`
	Failed  []string     `yaml:"failed,omitempty"`
	Results []EvalResult `yaml:"results"`
}

// SaveToYAML writes evaluation results to <dir>/<label>-<timestamp>.yaml and
// returns the written path
func SaveToYAML(dir, source, model, datasetPath string, results []metrics.EvaluationResult) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	report := EvalReport{
		Config: EvalConfig{
			Source:      source,
			Model:       model,
			DatasetPath: datasetPath,
			SampleSize:  len(results),
			Timestamp:   timestamp,
		},
		Results: make([]EvalResult, 0, len(results)),
	}

	for _, r := range results {
		if r.Error != "" || r.Comparison == nil {
			report.Failed = append(report.Failed, r.ID)
			continue
		}

		evalResult := EvalResult{
			Identifier:    r.ID,
			ExpectedName:  r.ExpectedName,
			ExpectedPrice: r.ExpectedPrice,
			ActualPrice:   r.Actual.Price,
			PriceMethod:   r.Comparison.PriceMatch.Method,
			NameMethod:    r.Comparison.NameMatch.Method,
			NameScore:     r.Comparison.NameMatch.Score,
			OverallScore:  r.Comparison.OverallScore,
		}
		if r.Actual.ProductName != nil {
			evalResult.ActualName = *r.Actual.ProductName
		}
		report.Results = append(report.Results, evalResult)
	}

	label := source
	if model != "" {
		label = model
	}
	label = strings.NewReplacer("/", "_", ":", "_").Replace(label)
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", label, timestamp))

	data, err := yaml.Marshal(&report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return filename, nil
}
