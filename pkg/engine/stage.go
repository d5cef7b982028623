package engine

import (
	"strings"

	"github.com/charmbracelet/log"
)

// Stage is a step of the per-request pipeline.
type Stage int

const (
	StageNoIntent Stage = iota
	StageIntentDetected
	StageEntitiesExtracted
	StageSlotResolved
	StageSuggestionsGenerated
	StageNoMatch
)

var stageNames = [...]string{
	StageNoIntent:             "no_intent",
	StageIntentDetected:       "intent_detected",
	StageEntitiesExtracted:    "entities_extracted",
	StageSlotResolved:         "slot_resolved",
	StageSuggestionsGenerated: "suggestions_generated",
	StageNoMatch:              "no_match",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// trace records the stages one request went through. A nil trace records
// nothing.
type trace struct {
	query  string
	stages []Stage
}

func newTrace(query string) *trace {
	if !debugEnabled() {
		return nil
	}
	return &trace{query: query, stages: []Stage{StageNoIntent}}
}

func (t *trace) to(s Stage) {
	if t != nil {
		t.stages = append(t.stages, s)
	}
}

func (t *trace) log() {
	if t == nil {
		return
	}
	names := make([]string, len(t.stages))
	for i, s := range t.stages {
		names[i] = s.String()
	}
	log.Debugf("match %q: %s", t.query, strings.Join(names, " -> "))
}
