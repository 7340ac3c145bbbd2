package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cartdanawa/pricescan/internal/capture"
	"github.com/cartdanawa/pricescan/internal/cart"
	"github.com/cartdanawa/pricescan/internal/dispatch"
	"github.com/cartdanawa/pricescan/internal/pricetag"
	"github.com/cartdanawa/pricescan/internal/scan"
)

func newScanCmd() *cobra.Command {
	var (
		guide     string
		viewport  string
		remoteURL string
		provider  string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Run one scan cycle against a still image",
		Long: `Crops the guide region out of an image, sends it for recognition and
reports whether the tag would be added to the cart.

The guide rectangle is in display coordinates of a viewport the image is
drawn into with cover scaling. Without flags the whole image is used.`,
		Example: `  pricescan scan shelf.jpg
  pricescan scan shelf.jpg --viewport 390,844 --guide 45,300,300,150
  pricescan scan shelf.jpg --remote http://localhost:8888`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			frame, err := capture.DecodeFrame(file, time.Now())
			file.Close()
			if err != nil {
				return err
			}

			snap := capture.Snapshot{Frame: frame}
			if viewport == "" {
				snap.Viewport.Size = frame.Size()
			} else {
				v, err := parseFloats(viewport, 2)
				if err != nil {
					return fmt.Errorf("invalid --viewport: %w", err)
				}
				snap.Viewport.Size = capture.Size{Width: v[0], Height: v[1]}
			}
			if guide == "" {
				snap.Guide = capture.Rect{Width: snap.Viewport.Size.Width, Height: snap.Viewport.Size.Height}
			} else {
				g, err := parseFloats(guide, 4)
				if err != nil {
					return fmt.Errorf("invalid --guide: %w", err)
				}
				snap.Guide = capture.Rect{X: g[0], Y: g[1], Width: g[2], Height: g[3]}
			}

			if remoteURL == "" {
				remoteURL = os.Getenv("RECOGNITION_URL")
			}
			rec, err := remoteRecognizer(remoteURL)
			if err != nil {
				return err
			}
			if rec == nil {
				rec = pricetag.NewLocal(provider)
			}

			frames := capture.NewLatestFrame()
			frames.Set(snap)
			queue := dispatch.New(rec, 0, nil)
			orch := scan.NewOrchestrator(frames, queue, cart.New(), nil, nil)

			return writeOutput(cmd.OutOrStdout(), format, orch.Trigger(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&guide, "guide", "", "Guide rectangle x,y,width,height in viewport coordinates")
	cmd.Flags().StringVar(&viewport, "viewport", "", "Viewport width,height (defaults to the image size)")
	cmd.Flags().StringVar(&remoteURL, "remote", "", "Recognition service base URL (defaults to RECOGNITION_URL)")
	cmd.Flags().StringVar(&provider, "provider", "", "In-process recognition provider when no remote is set")
	cmd.Flags().StringVarP(&format, "output", "o", "json", "Output format (yaml or json)")

	return cmd
}

// parseFloats splits a comma separated list of exactly n numbers
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma separated values, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		out[i] = v
	}
	return out, nil
}
