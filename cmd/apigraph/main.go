package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/apigraph"
	"github.com/fwojciec/apigraph/gemini"
	"github.com/fwojciec/apigraph/goquery"
	"github.com/fwojciec/apigraph/htmltomarkdown"
	apihttp "github.com/fwojciec/apigraph/http"
	"github.com/fwojciec/apigraph/link"
	"github.com/fwojciec/apigraph/pipeline"
	"github.com/fwojciec/apigraph/readability"
	"github.com/fwojciec/apigraph/rod"
	apislog "github.com/fwojciec/apigraph/slog"
	"github.com/fwojciec/apigraph/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the CLI with the given arguments.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("apigraph"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'apigraph --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var (
		model     string
		browser   bool
		batchSize int
		rps       = 1.0
		extractor = "trafilatura"
	)
	switch cmd {
	case "scan":
		model, browser, batchSize = cli.Scan.Model, cli.Scan.Browser, cli.Scan.BatchSize
		rps, extractor = cli.Scan.RPS, cli.Scan.Extractor
	case "augment":
		model, browser = cli.Augment.Model, cli.Augment.Browser
	}

	var fetcher apigraph.Fetcher
	if browser {
		browserFetcher, err := rod.NewFetcher(rod.DefaultPagePoolSize)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = browserFetcher
		if batchSize <= 0 {
			batchSize = pipeline.DefaultBrowserBatchSize
		}
	} else {
		fetcher = apihttp.NewFetcher()
	}
	fetcher = apislog.NewLoggingFetcher(fetcher, logger)
	defer fetcher.Close()

	var pageExtractor apigraph.Extractor
	if extractor == "readability" {
		pageExtractor = readability.NewExtractor()
	} else {
		pageExtractor = trafilatura.NewExtractor()
	}

	completer := apislog.NewLoggingCompleter(gemini.NewCompleter(client, model), logger)

	deps.Pipeline = &pipeline.Pipeline{
		Fetcher:   fetcher,
		Links:     goquery.NewLinkExtractor(),
		Completer: completer,
		Linker:    link.NewLinker(completer),
		Extractor: pageExtractor,
		Converter: htmltomarkdown.NewConverter(),
		Structure: goquery.NewStructureClassifier(),
		Sitemap:   apihttp.NewSitemap(nil),
		Limiter:   pipeline.NewDomainLimiter(rps),
		Logger:    logger,
		BatchSize: batchSize,
	}

	return kongCtx.Run(deps)
}
