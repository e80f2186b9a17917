package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/apigraph"
)

// Ensure LoggingCompleter implements apigraph.Completer.
var _ apigraph.Completer = (*LoggingCompleter)(nil)

// LoggingCompleter wraps a Completer with per-call logging. Prompt and
// completion bodies are not logged, only their sizes; pages under
// scan may contain anything.
type LoggingCompleter struct {
	next   apigraph.Completer
	logger *slog.Logger
}

// NewLoggingCompleter creates a new LoggingCompleter.
func NewLoggingCompleter(next apigraph.Completer, logger *slog.Logger) *LoggingCompleter {
	return &LoggingCompleter{next: next, logger: logger}
}

// Complete delegates to the wrapped completer, logging sizes and duration.
func (c *LoggingCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	begin := time.Now()
	completion, err := c.next.Complete(ctx, prompt)
	if err != nil {
		c.logger.Error("complete", "prompt_bytes", len(prompt), "duration", time.Since(begin), "err", err)
		return "", err
	}
	c.logger.Info("complete", "prompt_bytes", len(prompt), "completion_bytes", len(completion), "duration", time.Since(begin))
	return completion, nil
}
