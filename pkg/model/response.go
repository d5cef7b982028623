package model

import (
	"encoding/json"
	"strings"
)

// Source tells the caller where a response came from.
type Source string

const (
	SourceRuleBased        Source = "rule_based"
	SourceCache            Source = "cache"
	SourceFallbackRequired Source = "fallback_required"
	// SourceFallback marks a response produced by the external fallback
	// service; the engine itself never emits it.
	SourceFallback Source = "fallback"
)

// Request is a single suggestion request.
type Request struct {
	Query          string         `json:"query" msgpack:"query"`
	CursorPosition *int           `json:"cursor_position" msgpack:"cursor_position"`
	Context        map[string]any `json:"context" msgpack:"context"`
}

// EffectiveQuery returns the text before the cursor. A missing or
// out-of-range cursor means the whole query.
func (r Request) EffectiveQuery() string {
	if r.CursorPosition == nil {
		return r.Query
	}
	runes := []rune(r.Query)
	pos := *r.CursorPosition
	if pos < 0 || pos >= len(runes) {
		return r.Query
	}
	return string(runes[:pos])
}

// Response is the pipeline output. Intent and NextSlot render as JSON null
// when unset.
type Response struct {
	Suggestions []Suggestion        `json:"suggestions" msgpack:"suggestions"`
	Intent      Intent              `json:"-" msgpack:"intent"`
	NextSlot    Slot                `json:"-" msgpack:"next_slot"`
	Entities    map[string][]string `json:"entities,omitempty" msgpack:"entities,omitempty"`
	Source      Source              `json:"source" msgpack:"source"`
	LatencyMS   float64             `json:"latency_ms" msgpack:"latency_ms"`
}

type responseAlias Response

type responseJSON struct {
	responseAlias
	Intent   *string `json:"intent"`
	NextSlot *string `json:"next_slot"`
}

// MarshalJSON implements json.Marshaler.
func (r Response) MarshalJSON() ([]byte, error) {
	out := responseJSON{responseAlias: responseAlias(r)}
	if out.Suggestions == nil {
		out.Suggestions = []Suggestion{}
	}
	if !r.Intent.IsNone() {
		v := string(r.Intent)
		out.Intent = &v
	}
	if r.NextSlot != SlotNone {
		v := string(r.NextSlot)
		out.NextSlot = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Response) UnmarshalJSON(data []byte) error {
	var in responseJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Response(in.responseAlias)
	r.Intent = IntentNone
	if in.Intent != nil && strings.TrimSpace(*in.Intent) != "" {
		r.Intent = Intent(*in.Intent)
	}
	r.NextSlot = SlotNone
	if in.NextSlot != nil {
		r.NextSlot = Slot(*in.NextSlot)
	}
	return nil
}

// EmptyResponse is the answer to a blank query or an unmatched one.
func EmptyResponse(src Source) Response {
	return Response{
		Suggestions: []Suggestion{},
		Intent:      IntentNone,
		NextSlot:    SlotNone,
		Source:      src,
	}
}
