package server

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bastiangx/tripserve/pkg/cache"
	"github.com/bastiangx/tripserve/pkg/engine"
	"github.com/bastiangx/tripserve/pkg/lookup"
	"github.com/bastiangx/tripserve/pkg/model"
	"github.com/bastiangx/tripserve/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func newTestEngine() *engine.Engine {
	return engine.New(rules.MustDefault(), lookup.Default(), cache.NewMemory(cache.DefaultTTL))
}

// runIPC feeds requests to a server and returns a decoder over its output.
func runIPC(t *testing.T, requests ...any) *msgpack.Decoder {
	t.Helper()
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range requests {
		require.NoError(t, enc.Encode(r))
	}

	srv := NewServerWithIO(newTestEngine(), "test", &in, &out)
	require.NoError(t, srv.Start(context.Background()))

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, "test", ready.Version)
	return dec
}

func TestIPCSuggest(t *testing.T) {
	dec := runIPC(t, SuggestRequest{ID: "req_001", Query: "flight from Mumbai to De"})

	var resp SuggestResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "req_001", resp.ID)
	assert.Equal(t, "flight", resp.Intent)
	assert.Equal(t, "to", resp.NextSlot)
	assert.Equal(t, "rule_based", resp.Source)
	assert.Equal(t, []string{"Mumbai"}, resp.Entities["from"])

	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, resp.Count, len(resp.Suggestions))
	assert.True(t, resp.Suggestions[0].Placeholder)
	assert.Equal(t, uint16(0), resp.Suggestions[0].Rank)
	assert.Equal(t, "Delhi", resp.Suggestions[1].Text)
	assert.Equal(t, uint16(1), resp.Suggestions[1].Rank)
}

func TestIPCSuggestCursorAndLimit(t *testing.T) {
	cur := len("book a flight")
	dec := runIPC(t,
		SuggestRequest{ID: "a", Action: ActionSuggest, Query: "book a flight from Mumbai", Cursor: &cur},
		SuggestRequest{ID: "b", Query: "book a flight", Limit: 2},
	)

	var resp SuggestResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "from", resp.NextSlot)

	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "b", resp.ID)
	require.Len(t, resp.Suggestions, 3)
	assert.Equal(t, uint16(2), resp.Suggestions[2].Rank)
}

func TestIPCNoMatch(t *testing.T) {
	dec := runIPC(t, SuggestRequest{ID: "x", Query: "what is the weather"})

	var resp SuggestResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "fallback_required", resp.Source)
	assert.Empty(t, resp.Suggestions)
	assert.Empty(t, resp.Intent)
	assert.Empty(t, resp.NextSlot)
}

func TestIPCActions(t *testing.T) {
	dec := runIPC(t,
		SuggestRequest{ID: "s", Query: "book a flight"},
		SuggestRequest{ID: "s", Query: "book a flight"},
		SuggestRequest{ID: "h", Action: ActionHealth},
		SuggestRequest{ID: "st", Action: ActionStats},
		SuggestRequest{ID: "c", Action: ActionClearCache},
		SuggestRequest{ID: "st2", Action: ActionStats},
	)

	var sg SuggestResponse
	require.NoError(t, dec.Decode(&sg))
	require.NoError(t, dec.Decode(&sg))
	assert.Equal(t, "cache", sg.Source)

	var status StatusResponse
	require.NoError(t, dec.Decode(&status))
	assert.Equal(t, "h", status.ID)
	assert.Equal(t, "ok", status.Status)

	var stats StatsResponse
	require.NoError(t, dec.Decode(&stats))
	assert.Equal(t, "memory", stats.Cache.Backend)
	assert.Equal(t, int64(1), stats.Cache.Hits)
	assert.Equal(t, 1, stats.Cache.Entries)
	assert.Equal(t, lookup.Default().Len(), stats.Places)
	assert.Equal(t, 8, stats.Limit)

	require.NoError(t, dec.Decode(&status))
	assert.Equal(t, "c", status.ID)

	require.NoError(t, dec.Decode(&stats))
	assert.Equal(t, 0, stats.Cache.Entries)
}

func TestIPCErrors(t *testing.T) {
	dec := runIPC(t,
		SuggestRequest{ID: "u", Action: "reload"},
		SuggestRequest{ID: "l", Query: strings.Repeat("a", MaxQueryLen+1)},
		"not a map",
	)

	var e ErrorResponse
	require.NoError(t, dec.Decode(&e))
	assert.Equal(t, "u", e.ID)
	assert.Equal(t, 400, e.Code)
	assert.Contains(t, e.Error, "reload")

	require.NoError(t, dec.Decode(&e))
	assert.Equal(t, "l", e.ID)
	assert.Contains(t, e.Error, "maximum length")

	require.NoError(t, dec.Decode(&e))
	assert.Equal(t, "invalid request", e.Error)
}

func TestIPCStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var in, out bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&in).Encode(SuggestRequest{ID: "x", Query: "book a flight"}))
	srv := NewServerWithIO(newTestEngine(), "test", &in, &out)
	require.NoError(t, srv.Start(ctx))

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	var next SuggestResponse
	assert.Error(t, dec.Decode(&next), "no request is served after cancel")
}

func TestToWire(t *testing.T) {
	in := []model.Suggestion{
		{Text: "to where", IsPlaceholder: true},
		{Text: "Delhi", Selectable: true},
		{Text: "Dubai", Selectable: true},
		{Text: "Tokyo", Selectable: true},
	}

	out := toWire(in, 0)
	require.Len(t, out, 4)
	assert.Equal(t, []uint16{0, 1, 2, 3}, []uint16{out[0].Rank, out[1].Rank, out[2].Rank, out[3].Rank})

	out = toWire(in, 1)
	require.Len(t, out, 2)
	assert.Equal(t, "Delhi", out[1].Text)

	assert.Empty(t, toWire(nil, 5))
}
