/*
Package engine runs the suggestion pipeline for one request.

A request goes through the response cache, then the intent classifier, the
entity extractor, the slot resolver and the suggestion generator. When no
intent is found the engine tries, in order, an intent named by the request
context, an unfinished intent phrase ("I want to book a") and a query that
starts with a place ("Mumbai to"). If none of them applies the response asks
the caller to use its fallback service; the engine itself never does I/O
beyond the cache.
*/
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/bastiangx/tripserve/internal/metrics"
	"github.com/bastiangx/tripserve/internal/utils"
	"github.com/bastiangx/tripserve/pkg/cache"
	"github.com/bastiangx/tripserve/pkg/entity"
	"github.com/bastiangx/tripserve/pkg/intent"
	"github.com/bastiangx/tripserve/pkg/lookup"
	"github.com/bastiangx/tripserve/pkg/model"
	"github.com/bastiangx/tripserve/pkg/rules"
	"github.com/bastiangx/tripserve/pkg/slot"
	"github.com/bastiangx/tripserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

const (
	contextConfidence    = 0.8
	placePairConfidence  = 0.6
	placeFirstConfidence = 0.5

	contextIntentKey = "intent"
)

// Engine is safe for concurrent use; the cache is its only shared state.
type Engine struct {
	rules      *rules.Compiled
	places     *lookup.Index
	classifier *intent.Classifier
	extractor  *entity.Extractor
	resolver   *slot.Resolver
	generator  *suggest.Generator
	cache      cache.Cache
	limit      int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimit caps the selectable suggestions per response.
func WithLimit(n int) Option {
	return func(e *Engine) { e.limit = n }
}

// New wires the pipeline. places and c may be nil: without places no
// place is ever recognised, without a cache every request is computed.
func New(r *rules.Compiled, places *lookup.Index, c cache.Cache, opts ...Option) *Engine {
	e := &Engine{
		rules:  r,
		places: places,
		cache:  c,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.classifier = intent.NewClassifier(r, places)
	e.extractor = entity.NewExtractor(r, places)
	e.resolver = slot.NewResolver(r)
	e.generator = suggest.NewGenerator(r, places, e.limit)
	return e
}

// Handle answers one request. It never fails: an empty query gets an empty
// rule_based response and an unmatched one a fallback_required response.
func (e *Engine) Handle(ctx context.Context, req model.Request) model.Response {
	start := time.Now()
	query := req.EffectiveQuery()

	if strings.TrimSpace(query) == "" {
		return e.finish(model.EmptyResponse(model.SourceRuleBased), start)
	}

	key := cache.Key(query, req.Context)
	if e.cache != nil {
		if resp, ok := e.cache.Get(ctx, key); ok {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			resp.Source = model.SourceCache
			return e.finish(resp, start)
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	tr := newTrace(query)
	defer tr.log()

	m, ok := e.match(tr, query, req.Context)
	if !ok {
		return e.finish(model.EmptyResponse(model.SourceFallbackRequired), start)
	}
	if !m.Intent.IsNone() {
		metrics.IntentsDetected.WithLabelValues(string(m.Intent)).Inc()
	}

	resp := model.Response{
		Suggestions: e.generator.Generate(m),
		Intent:      m.Intent,
		NextSlot:    m.NextSlot,
		Entities:    m.Entities.Values(),
		Source:      model.SourceRuleBased,
	}
	tr.to(StageSuggestionsGenerated)
	if e.cache != nil {
		e.cache.Put(ctx, key, resp)
	}
	return e.finish(resp, start)
}

func (e *Engine) finish(resp model.Response, start time.Time) model.Response {
	elapsed := time.Since(start)
	resp.LatencyMS = float64(elapsed.Microseconds()) / 1000
	metrics.RequestsTotal.WithLabelValues(string(resp.Source)).Inc()
	metrics.RequestDuration.WithLabelValues(string(resp.Source)).Observe(elapsed.Seconds())
	return resp
}

// Match runs the rule pipeline without the cache. The bool is false when no
// rule applies.
func (e *Engine) Match(query string, reqCtx map[string]any) (model.MatchResult, bool) {
	return e.match(nil, query, reqCtx)
}

func (e *Engine) match(tr *trace, query string, reqCtx map[string]any) (model.MatchResult, bool) {
	if cls, ok := e.classifier.Classify(query); ok {
		return e.matchIntent(tr, query, cls.Intent, cls.Confidence, cls.Text), true
	}
	if in, ok := contextIntent(reqCtx); ok {
		return e.matchIntent(tr, query, in, contextConfidence, ""), true
	}
	if p, ok := e.classifier.Partial(query); ok {
		bag := e.extractor.Extract(query, model.IntentNone)
		tr.to(StageEntitiesExtracted)
		tr.to(StageSlotResolved)
		return model.MatchResult{
			Intent:     model.IntentNone,
			Confidence: p.Confidence,
			Entities:   bag,
			NextSlot:   model.SlotIntent,
			MatchText:  p.Phrase,
			Fragment:   e.extractor.Fragment(query, bag),
		}, true
	}
	if m, ok := e.placeFirst(tr, query); ok {
		return m, true
	}
	tr.to(StageNoMatch)
	return model.MatchResult{}, false
}

func (e *Engine) matchIntent(tr *trace, query string, in model.Intent, conf float64, text string) model.MatchResult {
	tr.to(StageIntentDetected)
	bag := e.extractor.Extract(query, in)
	tr.to(StageEntitiesExtracted)
	next, ok := e.resolver.Resolve(in, bag, query)
	if !ok {
		next = model.SlotNone
	}
	tr.to(StageSlotResolved)
	return model.MatchResult{
		Intent:     in,
		Confidence: conf,
		Entities:   bag,
		NextSlot:   next,
		MatchText:  text,
		Fragment:   e.extractor.Fragment(query, bag),
	}
}

// placeFirst handles a query that opens with a known place, optionally
// behind a from/to word: "Mumbai", "Mumbai to Delhi", "to Goa".
func (e *Engine) placeFirst(tr *trace, query string) (model.MatchResult, bool) {
	bag := e.extractor.Extract(query, model.IntentNone)
	cities := bag.All(model.KindCities)
	toks := utils.Tokenize(query)
	if len(cities) == 0 || len(toks) == 0 {
		return model.MatchResult{}, false
	}

	lead := cities[0].Start == toks[0].Start
	if !lead && len(toks) > 1 && cities[0].Start == toks[1].Start {
		role, ok := e.rules.PlaceRole(toks[0].Lower)
		lead = ok && (role == model.KindFrom || role == model.KindTo)
	}
	if !lead {
		return model.MatchResult{}, false
	}
	tr.to(StageEntitiesExtracted)

	m := model.MatchResult{
		Intent:    model.IntentNone,
		Entities:  bag,
		MatchText: query[cities[0].Start:cities[0].End],
		Fragment:  e.extractor.Fragment(query, bag),
	}
	switch hasFrom, hasTo := bag.Has(model.KindFrom), bag.Has(model.KindTo); {
	case hasFrom && hasTo:
		m.NextSlot, m.Confidence = model.SlotIntent, placePairConfidence
	case hasTo:
		m.NextSlot, m.Confidence = model.SlotFrom, placeFirstConfidence
	default:
		m.NextSlot, m.Confidence = model.SlotTo, placeFirstConfidence
	}
	tr.to(StageSlotResolved)
	return m, true
}

func contextIntent(reqCtx map[string]any) (model.Intent, bool) {
	raw, ok := reqCtx[contextIntentKey].(string)
	if !ok {
		return model.IntentNone, false
	}
	return model.ParseIntent(raw)
}

// ClearCache drops every cached response.
func (e *Engine) ClearCache(ctx context.Context) {
	if e.cache != nil {
		e.cache.Clear(ctx)
	}
}

// CacheStats reports the cache counters.
func (e *Engine) CacheStats() cache.Stats {
	if e.cache == nil {
		return cache.Stats{Backend: "disabled"}
	}
	return e.cache.Stats()
}

// Places returns the place directory in use.
func (e *Engine) Places() *lookup.Index { return e.places }

// Limit returns the selectable suggestion cap.
func (e *Engine) Limit() int { return e.generator.Limit() }

// debugEnabled avoids building traces nobody will read.
func debugEnabled() bool {
	return log.GetLevel() <= log.DebugLevel
}
