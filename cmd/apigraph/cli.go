package main

import (
	"context"
	"io"

	"github.com/fwojciec/apigraph/pipeline"
)

// Dependencies holds the services and configuration for command
// execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Pipeline *pipeline.Pipeline
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Scan    ScanCmd    `cmd:"" help:"Scan a documentation site and extract an API action graph"`
	Augment AugmentCmd `cmd:"" help:"Resolve an action's prerequisites from candidate documentation URLs"`
}

// ScanCmd is the "scan" subcommand.
type ScanCmd struct {
	URL       string  `arg:"" help:"Root documentation URL"`
	Model     string  `short:"m" help:"Model selector (defaults to the Gemini flash model)"`
	Browser   bool    `short:"b" help:"Fetch with a headless browser for JavaScript-rendered sites"`
	BatchSize int     `short:"c" help:"Concurrent fetch/extraction batch size (default 5, 2 with --browser)"`
	RPS       float64 `default:"1" help:"Max requests per second per domain"`
	Quiet     bool    `short:"q" help:"Suppress progress output"`
	Extractor string  `default:"trafilatura" enum:"trafilatura,readability" help:"Boilerplate extractor"`
}

// AugmentCmd is the "augment" subcommand.
type AugmentCmd struct {
	Graph    string   `arg:"" help:"Path to a JSON file holding the extracted actions"`
	ActionID string   `arg:"" help:"ID of the action whose prerequisites to resolve"`
	URL      []string `arg:"" help:"Candidate documentation URLs"`
	Model    string   `short:"m" help:"Model selector (defaults to the Gemini flash model)"`
	Browser  bool     `short:"b" help:"Fetch with a headless browser for JavaScript-rendered sites"`
}
