package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fwojciec/apigraph"
)

// Run executes the augment command. The graph file holds the actions
// from a previous scan (the "results" actions flattened or the full
// report); the command resolves the named action's prerequisites against
// actions extracted from the candidate URLs and prints the merged graph.
func (c *AugmentCmd) Run(deps *Dependencies) error {
	raw, err := os.ReadFile(c.Graph)
	if err != nil {
		return fmt.Errorf("reading graph file: %w", err)
	}

	actions, err := decodeActions(raw)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", apigraph.ErrorMessage(err))
		return err
	}

	result, err := deps.Pipeline.AugmentPrerequisites(deps.Ctx, c.ActionID, actions, c.URL, nil)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", apigraph.ErrorMessage(err))
		return err
	}

	encoder := json.NewEncoder(deps.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// decodeActions accepts either a bare action array or a full scan
// report and returns the flat action collection.
func decodeActions(raw []byte) ([]*apigraph.Action, error) {
	var actions []*apigraph.Action
	if err := json.Unmarshal(raw, &actions); err == nil {
		return actions, nil
	}

	var report apigraph.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, apigraph.Errorf(apigraph.EINVALID, "graph file is neither an action array nor a scan report")
	}
	for _, r := range report.Results {
		actions = append(actions, r.Actions...)
	}
	if len(actions) == 0 {
		return nil, apigraph.Errorf(apigraph.EINVALID, "graph file contains no actions")
	}
	return actions, nil
}
