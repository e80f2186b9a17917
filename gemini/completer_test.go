package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/apigraph"
	"github.com/fwojciec/apigraph/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleter_Complete_ReturnsErrorWhenPromptEmpty(t *testing.T) {
	t.Parallel()

	completer := gemini.NewCompleter(nil, "") // nil client ok, rejected before any call

	_, err := completer.Complete(context.Background(), "   ")

	require.Error(t, err)
	assert.Equal(t, apigraph.EINVALID, apigraph.ErrorCode(err))
	assert.Contains(t, apigraph.ErrorMessage(err), "prompt required")
}

func TestBuildConfig_SetsSystemInstruction(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "raw JSON")
}

func TestBuildConfig_SetsTemperature(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.2, *config.Temperature, 0.001)
}
