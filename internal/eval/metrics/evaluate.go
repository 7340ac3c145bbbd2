package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/cartdanawa/pricescan/internal/dispatch"
	"github.com/cartdanawa/pricescan/internal/eval/dataset"
	"github.com/cartdanawa/pricescan/internal/heuristic"
	"github.com/cartdanawa/pricescan/internal/models"
	"github.com/cartdanawa/pricescan/internal/recognition"
)

// Heuristic runs the local parser behind the same interface the scan
// pipeline uses for remote recognition
type Heuristic struct{}

func (Heuristic) Recognize(_ context.Context, p recognition.Payload) (models.RecognitionResult, error) {
	return heuristic.Parse(p.Text), nil
}

// Evaluate recognizes the text of every record and scores it against the
// labels. Records without text are reported as failures.
func Evaluate(ctx context.Context, rec dispatch.Recognizer, records []dataset.PriceTagRecord) []EvaluationResult {
	results := make([]EvaluationResult, 0, len(records))
	for i, record := range records {
		if ctx.Err() != nil {
			break
		}

		result := EvaluationResult{
			ID:            record.ID,
			ExpectedName:  record.ProductName,
			ExpectedPrice: record.Price,
		}
		if !record.HasText() {
			result.Error = "record has no text"
			results = append(results, result)
			continue
		}

		start := time.Now()
		actual, err := rec.Recognize(ctx, recognition.TextPayload(record.Text))
		result.ProcessingTime = time.Since(start)
		if err != nil {
			slog.Warn("Recognition failed", "id", record.ID, "err", err)
			result.Error = err.Error()
			results = append(results, result)
			continue
		}

		result.Actual = actual
		result.Comparison = CompareTag(record.ProductName, record.Price, actual)
		results = append(results, result)

		slog.Debug("Evaluated record",
			"n", i+1,
			"id", record.ID,
			"score", result.Comparison.OverallScore)
	}
	return results
}
