package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bastiangx/tripserve/pkg/cache"
	"github.com/bastiangx/tripserve/pkg/engine"
	"github.com/bastiangx/tripserve/pkg/lookup"
	"github.com/bastiangx/tripserve/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, limit int, input string) string {
	t.Helper()
	e := engine.New(rules.MustDefault(), lookup.Default(), cache.NewMemory(cache.DefaultTTL))
	var out bytes.Buffer
	h := NewInputHandler(e, limit, strings.NewReader(input), &out)
	require.NoError(t, h.Start(context.Background()))
	return out.String()
}

func TestPrompt(t *testing.T) {
	out := run(t, 0, "flight from Mumbai to De\n")

	assert.Contains(t, out, "flight")
	assert.Contains(t, out, "Mumbai")
	assert.Contains(t, out, "to where")
	assert.Contains(t, out, " 1. ")
	assert.Contains(t, out, "Delhi")
}

func TestPromptLimit(t *testing.T) {
	out := run(t, 2, "book a flight")

	assert.Contains(t, out, "from where")
	assert.Contains(t, out, " 2. ")
	assert.NotContains(t, out, " 3. ")
}

func TestPromptSkipsNoise(t *testing.T) {
	out := run(t, 0, "12345\n\naaaa\nwhat is the weather\n")

	assert.Equal(t, 1, strings.Count(out, "source"), "only the last line reaches the engine")
	assert.Contains(t, out, "fallback_required")
	assert.Contains(t, out, "no suggestions")
}

func TestPromptStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	h := NewInputHandler(nil, 0, strings.NewReader("book a flight\n"), &out)
	require.NoError(t, h.Start(ctx))
	assert.NotContains(t, out.String(), "source")
}
