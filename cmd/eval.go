package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cartdanawa/pricescan/internal/dispatch"
	"github.com/cartdanawa/pricescan/internal/eval/dataset"
	"github.com/cartdanawa/pricescan/internal/eval/metrics"
	"github.com/cartdanawa/pricescan/internal/eval/results"
	"github.com/cartdanawa/pricescan/internal/pricetag"
)

func newEvalCmd() *cobra.Command {
	var (
		datasetPath string
		sampleSize  int
		provider    string
		outputDir   string
		outputJSON  string
		cacheDir    string
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Measure recognition accuracy against labeled price tags",
		Long: `Runs the heuristic parser, or an LLM provider with --provider, over a
labeled price tag dataset and reports price and product name accuracy.

Datasets are .parquet or .jsonl files with id, text, product_name and
price columns. An http(s) URL is downloaded into the local cache first.`,
		Example: `  pricescan eval --dataset tags.jsonl
  pricescan eval --dataset tags.parquet --provider gemini --sample 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := dataset.LoadOrDownload(cmd.Context(), datasetPath, dataset.DownloadConfig{
				CacheDir: cacheDir,
				Token:    os.Getenv("DATASET_TOKEN"),
			})
			if err != nil {
				return err
			}
			records, err := loader.LoadSample(sampleSize)
			if err != nil {
				return err
			}
			slog.Info("Loaded dataset", "path", loader.Path(), "records", len(records))

			var (
				rec    dispatch.Recognizer = metrics.Heuristic{}
				source                     = "heuristic"
				model  string
			)
			if provider != "" {
				svc, err := pricetag.NewService(provider)
				if err != nil {
					return err
				}
				rec = pricetag.LocalFor(svc)
				source = provider
				model = svc.Model()
			}

			evalResults := metrics.Evaluate(cmd.Context(), rec, records)
			agg := metrics.AggregateEvaluationResults(evalResults, source, model)
			agg.PrintSummary(cmd.OutOrStdout())

			path, err := results.SaveToYAML(outputDir, source, model, datasetPath, evalResults)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nEvaluation results saved to: %s\n", path)

			if outputJSON != "" {
				if err := agg.SaveToJSON(outputJSON); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path or URL of a parquet or jsonl dataset (required)")
	cmd.Flags().IntVar(&sampleSize, "sample", 0, "Number of records to evaluate (0 for all)")
	cmd.Flags().StringVar(&provider, "provider", "", "Evaluate an LLM provider (gemini, openai or ollama) instead of the heuristic parser")
	cmd.Flags().StringVar(&outputDir, "output", "evals", "Directory for the YAML report")
	cmd.Flags().StringVar(&outputJSON, "output-json", "", "Also write aggregate results as JSON to this path")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", dataset.DefaultCacheDir, "Cache directory for downloaded datasets")

	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}
