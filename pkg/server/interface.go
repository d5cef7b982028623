/*
Package server exposes the suggestion engine over msgpack IPC and HTTP.

# IPC

The IPC server reads a stream of msgpack maps from stdin and writes one
msgpack map per request to stdout. Logs go to stderr so stdout stays a clean
stream. On start the server writes a ready message:

	{"status": "ready", "v": "0.1.0"}

A suggestion request carries the text typed so far, an optional cursor
position (in characters) and optional context:

	{"id": "req_001", "q": "flight from Mumbai to De", "cur": 24}

The response lists the placeholder first, then the ranked suggestions:

	{"id": "req_001", "s": [{"t": "to where", "p": true, ...}, {"t": "Delhi", "r": 1, ...}],
	 "c": 2, "i": "flight", "n": "to", "src": "rule_based", "t": 145}

Other actions use the same envelope:

	{"id": "h1", "action": "health"}
	{"id": "c1", "action": "clear_cache"}
	{"id": "s1", "action": "stats"}

Errors come back as {"id": ..., "e": message, "c": code}.

# HTTP

The HTTP server wraps the same engine with gin. POST /suggest takes the JSON
request shape and returns the JSON response shape; when the engine finds no
rule it calls the configured fallback service under a timeout.
*/
package server

import "github.com/bastiangx/tripserve/pkg/cache"

// IPC actions.
const (
	ActionSuggest    = "suggest"
	ActionHealth     = "health"
	ActionClearCache = "clear_cache"
	ActionStats      = "stats"
)

// SuggestRequest is the IPC request envelope. An empty Action means suggest.
type SuggestRequest struct {
	ID      string         `msgpack:"id"`
	Action  string         `msgpack:"action,omitempty"`
	Query   string         `msgpack:"q"`
	Cursor  *int           `msgpack:"cur,omitempty"`
	Context map[string]any `msgpack:"ctx,omitempty"`
	Limit   int            `msgpack:"l,omitempty"`
}

// WireSuggestion is one suggestion on the wire. Rank is 1-based among the
// selectable entries and 0 for the placeholder.
type WireSuggestion struct {
	Text        string  `msgpack:"t"`
	EntityType  string  `msgpack:"et"`
	Confidence  float64 `msgpack:"cf"`
	Selectable  bool    `msgpack:"sel"`
	Placeholder bool    `msgpack:"p"`
	Rank        uint16  `msgpack:"r"`
}

// SuggestResponse answers a suggest request. TimeTaken is in microseconds.
type SuggestResponse struct {
	ID          string              `msgpack:"id"`
	Suggestions []WireSuggestion    `msgpack:"s"`
	Count       int                 `msgpack:"c"`
	Intent      string              `msgpack:"i,omitempty"`
	NextSlot    string              `msgpack:"n,omitempty"`
	Entities    map[string][]string `msgpack:"e,omitempty"`
	Source      string              `msgpack:"src"`
	TimeTaken   int64               `msgpack:"t"`
}

// StatusResponse answers health and clear_cache.
type StatusResponse struct {
	ID      string `msgpack:"id,omitempty"`
	Status  string `msgpack:"status"`
	Version string `msgpack:"v,omitempty"`
}

// StatsResponse answers stats.
type StatsResponse struct {
	ID     string      `msgpack:"id"`
	Status string      `msgpack:"status"`
	Cache  cache.Stats `msgpack:"cache"`
	Places int         `msgpack:"places"`
	Limit  int         `msgpack:"limit"`
}

// ErrorResponse holds basic error information for a failed request.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
