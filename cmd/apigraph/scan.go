package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/apigraph"
	"github.com/fwojciec/apigraph/pipeline"
)

// Run executes the scan command.
func (c *ScanCmd) Run(deps *Dependencies) error {
	var progress pipeline.ProgressFunc
	if !c.Quiet {
		progress = func(event apigraph.ProgressEvent) {
			switch event.Stage {
			case apigraph.StageScrapeComplete:
				fmt.Fprintf(deps.Stderr, "  found %d candidate URLs\n", event.Total)
			case apigraph.StageURL:
				if event.Err != "" {
					fmt.Fprintf(deps.Stderr, "  [%d/%d] %s: %s\n", event.Completed, event.Total, event.URL, event.Err)
				} else {
					fmt.Fprintf(deps.Stderr, "  [%d/%d] %s\n", event.Completed, event.Total, event.URL)
				}
			case apigraph.StageLinkingStarted:
				fmt.Fprintln(deps.Stderr, "  linking prerequisites")
			}
		}
	}

	report, err := deps.Pipeline.ProcessRoot(deps.Ctx, c.URL, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", apigraph.ErrorMessage(err))
		return err
	}

	encoder := json.NewEncoder(deps.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stderr, "Scanned %d URLs: %d extracted, %d failed, %d skipped\n",
		report.TotalScanned, report.SuccessCount, report.ErrorCount, report.SkippedCount)
	return nil
}
