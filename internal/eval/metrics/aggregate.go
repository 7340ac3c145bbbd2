package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cartdanawa/pricescan/internal/models"
)

// EvaluationResult is the outcome for one labeled price tag
type EvaluationResult struct {
	ID             string                   `json:"id"`
	ExpectedName   string                   `json:"expected_name"`
	ExpectedPrice  int                      `json:"expected_price"`
	Actual         models.RecognitionResult `json:"actual"`
	Comparison     *TagComparison           `json:"comparison,omitempty"`
	ProcessingTime time.Duration            `json:"processing_time"`
	Error          string                   `json:"error,omitempty"`
}

// AggregateResults represents aggregated evaluation metrics
type AggregateResults struct {
	TotalRecords int `json:"total_records"`
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`

	PriceAccuracy FieldStats `json:"price_accuracy"`
	NameAccuracy  FieldStats `json:"name_accuracy"`

	OverallAccuracy float64 `json:"overall_accuracy"`

	AverageProcessingTime time.Duration `json:"average_processing_time"`
	TotalProcessingTime   time.Duration `json:"total_processing_time"`

	Results []EvaluationResult `json:"results"`

	EvaluationDate time.Time `json:"evaluation_date"`
	Source         string    `json:"source"`
	Model          string    `json:"model,omitempty"`
}

// FieldStats contains statistics for one compared field
type FieldStats struct {
	ExactMatches  int       `json:"exact_matches"`
	FuzzyMatches  int       `json:"fuzzy_matches"`
	NoMatches     int       `json:"no_matches"`
	MissingFields int       `json:"missing_fields"`
	AverageScore  float64   `json:"average_score"`
	Scores        []float64 `json:"scores"`
}

// AggregateEvaluationResults aggregates multiple evaluation results
func AggregateEvaluationResults(results []EvaluationResult, source, model string) *AggregateResults {
	agg := &AggregateResults{
		TotalRecords:   len(results),
		Results:        results,
		EvaluationDate: time.Now(),
		Source:         source,
		Model:          model,
		PriceAccuracy:  FieldStats{Scores: []float64{}},
		NameAccuracy:   FieldStats{Scores: []float64{}},
	}

	totalOverallScore := 0.0
	var successDuration time.Duration
	for _, result := range results {
		agg.TotalProcessingTime += result.ProcessingTime

		if result.Error != "" {
			agg.FailureCount++
			continue
		}
		agg.SuccessCount++
		successDuration += result.ProcessingTime

		if result.Comparison == nil {
			continue
		}
		aggregateFieldStats(&agg.PriceAccuracy, result.Comparison.PriceMatch)
		// unlabeled names say nothing about the parser
		if result.Comparison.NameMatch.Method != "expected_missing" {
			aggregateFieldStats(&agg.NameAccuracy, result.Comparison.NameMatch)
		}
		totalOverallScore += result.Comparison.OverallScore
	}

	if agg.SuccessCount > 0 {
		agg.PriceAccuracy.AverageScore = calculateAverage(agg.PriceAccuracy.Scores)
		agg.NameAccuracy.AverageScore = calculateAverage(agg.NameAccuracy.Scores)
		agg.OverallAccuracy = totalOverallScore / float64(agg.SuccessCount)
		agg.AverageProcessingTime = successDuration / time.Duration(agg.SuccessCount)
	}

	return agg
}

func aggregateFieldStats(stats *FieldStats, match FieldMatch) {
	stats.Scores = append(stats.Scores, match.Score)

	switch match.Method {
	case "exact":
		stats.ExactMatches++
	case "fuzzy_high", "fuzzy_medium", "substring":
		stats.FuzzyMatches++
	case "no_match":
		stats.NoMatches++
	case "actual_missing", "expected_missing", "both_missing":
		stats.MissingFields++
	}
}

func calculateAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, score := range scores {
		sum += score
	}
	return sum / float64(len(scores))
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// PrintSummary writes a human-readable summary of the evaluation
func (a *AggregateResults) PrintSummary(w io.Writer) {
	rule := strings.Repeat("=", 70)
	dash := strings.Repeat("-", 70)

	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, "PRICE TAG EVALUATION SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Source: %s\n", a.Source)
	if a.Model != "" {
		fmt.Fprintf(w, "Model: %s\n", a.Model)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PROCESSING STATISTICS")
	fmt.Fprintln(w, dash)
	fmt.Fprintf(w, "Total Records: %d\n", a.TotalRecords)
	fmt.Fprintf(w, "Successful: %d (%.1f%%)\n", a.SuccessCount, percent(a.SuccessCount, a.TotalRecords))
	fmt.Fprintf(w, "Failed: %d (%.1f%%)\n", a.FailureCount, percent(a.FailureCount, a.TotalRecords))
	fmt.Fprintf(w, "Average Processing Time: %s\n", a.AverageProcessingTime)
	fmt.Fprintf(w, "Total Processing Time: %s\n", a.TotalProcessingTime)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "FIELD-LEVEL ACCURACY")
	fmt.Fprintln(w, dash)
	printFieldStats(w, "Price", a.PriceAccuracy)
	printFieldStats(w, "Product Name", a.NameAccuracy)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "OVERALL SCORE")
	fmt.Fprintln(w, dash)
	fmt.Fprintf(w, "Overall Accuracy: %.2f%% (%.3f)\n", a.OverallAccuracy*100, a.OverallAccuracy)
	fmt.Fprintln(w, rule)
}

func printFieldStats(w io.Writer, fieldName string, stats FieldStats) {
	fmt.Fprintf(w, "\n%s:\n", fieldName)
	fmt.Fprintf(w, "  Average Score: %.2f%% (%.3f)\n", stats.AverageScore*100, stats.AverageScore)
	fmt.Fprintf(w, "  Exact Matches: %d\n", stats.ExactMatches)
	fmt.Fprintf(w, "  Fuzzy Matches: %d\n", stats.FuzzyMatches)
	fmt.Fprintf(w, "  No Matches: %d\n", stats.NoMatches)
	fmt.Fprintf(w, "  Missing Fields: %d\n", stats.MissingFields)
}

// SaveToJSON saves the aggregate results to a JSON file
func (a *AggregateResults) SaveToJSON(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(a); err != nil {
		return fmt.Errorf("failed to encode results to JSON: %w", err)
	}
	return nil
}
