package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/tripserve/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCompiles(t *testing.T) {
	c, err := Default().Compile()
	require.NoError(t, err)

	assert.Equal(t, 0.75, c.Threshold())
	assert.Equal(t, model.Intents, c.Priority())
	for _, in := range model.Intents {
		assert.NotEmpty(t, c.Patterns(in), in)
		assert.NotEmpty(t, c.Required(in), in)
	}
	assert.NotEmpty(t, c.EntityRules())
}

// every keyword must name a slot of its own intent
func TestKeywordsBelongToIntent(t *testing.T) {
	r := Default()
	c := MustDefault()
	for in, ir := range r.Intents {
		for s := range ir.Keywords {
			assert.True(t, c.HasSlot(in, s), "%s keyword slot %s", in, s)
		}
	}
}

func TestSlotIndex(t *testing.T) {
	c := MustDefault()

	assert.Equal(t, 0, c.SlotIndex(model.IntentFlight, model.SlotFrom))
	assert.Equal(t, 1, c.SlotIndex(model.IntentFlight, model.SlotTo))
	assert.Equal(t, 4, c.SlotIndex(model.IntentFlight, model.SlotReturn))
	assert.Equal(t, -1, c.SlotIndex(model.IntentFlight, model.SlotCity))
	assert.False(t, c.HasSlot(model.IntentHotel, model.SlotFrom))
}

func TestKeywordSlot(t *testing.T) {
	c := MustDefault()

	testCases := []struct {
		in       model.Intent
		phrase   string
		expected model.Slot
		found    bool
	}{
		{model.IntentFlight, "from", model.SlotFrom, true},
		{model.IntentFlight, "TO", model.SlotTo, true},
		{model.IntentFlight, "on", model.SlotDate, true},
		{model.IntentHotel, "Check  In", model.SlotCheckin, true},
		{model.IntentHotel, "check-out", model.SlotCheckout, true},
		{model.IntentHotel, "in", model.SlotCity, true},
		{model.IntentHotel, "to", model.SlotNone, false},
		{model.IntentTrain, "quota", model.SlotQuota, true},
		{model.IntentHoliday, "in", model.SlotTo, true},
	}
	for _, tc := range testCases {
		t.Run(string(tc.in)+"/"+tc.phrase, func(t *testing.T) {
			got, ok := c.KeywordSlot(tc.in, tc.phrase)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestBoundaryAndRoles(t *testing.T) {
	c := MustDefault()

	assert.True(t, c.IsBoundary("to"))
	assert.True(t, c.IsBoundary("Flight"))
	assert.True(t, c.IsBoundary("check"), "words of multi-word keywords are boundaries")
	assert.False(t, c.IsBoundary("mumbai"))
	assert.False(t, c.IsBoundary("new"))

	role, ok := c.PlaceRole("From")
	assert.True(t, ok)
	assert.Equal(t, model.KindFrom, role)
	_, ok = c.PlaceRole("on")
	assert.False(t, ok)

	assert.True(t, c.IsIntentWord("Hotels"))
	assert.False(t, c.IsIntentWord("book"))
}

func TestVocabulary(t *testing.T) {
	c := MustDefault()

	assert.Equal(t, []string{"economy", "premium economy", "business", "first"}, c.Vocabulary(model.IntentFlight, model.SlotClass))
	assert.Equal(t, "Sleeper", c.Vocabulary(model.IntentTrain, model.SlotClass)[0])
	assert.Contains(t, c.Vocabulary(model.IntentHotel, model.SlotGuests), "family")
	assert.Contains(t, c.Vocabulary(model.IntentFlight, model.SlotAirline), "IndiGo")
	assert.Equal(t, []string{"flight", "hotel", "train", "holiday"}, c.Vocabulary(model.IntentNone, model.SlotIntent))

	assert.Equal(t, "to where", c.Placeholder(model.SlotTo))
	assert.Equal(t, "on which date", c.Placeholder(model.SlotDate))
}

func TestDerive(t *testing.T) {
	c := MustDefault()

	find := func(kind model.Kind, in model.Intent, text string) (string, bool) {
		for _, r := range c.EntityRules() {
			if r.Kind != kind || !r.Applies(in) {
				continue
			}
			if loc := r.Re.FindStringSubmatchIndex(text); loc != nil {
				return r.Derive(text, loc), true
			}
		}
		return "", false
	}

	testCases := []struct {
		kind        model.Kind
		in          model.Intent
		text        string
		expected    string
		description string
	}{
		{model.KindPassengers, model.IntentFlight, "for Two Passengers", "2", "Number word"},
		{model.KindPassengers, model.IntentFlight, "03 adults", "3", "Leading zero"},
		{model.KindGuests, model.IntentHotel, "family of four", "4", "Family phrase"},
		{model.KindNights, model.IntentHoliday, "a week in goa", "7", "Week is seven nights"},
		{model.KindCategory, model.IntentHotel, "a 5 Star hotel", "5-star", "Template value"},
		{model.KindDate, model.IntentFlight, "on 15th JAN", "15th jan", "Matched text is lowercased"},
		{model.KindClass, model.IntentTrain, "in 3 AC", "3AC", "Literal value keeps its case"},
		{model.KindAirline, model.IntentFlight, "on air india express", "Air India Express", "Longest airline first"},
		{model.KindTime, model.IntentFlight, "early Morning", "morning", "Literal value"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got, ok := find(tc.kind, tc.in, tc.text)
			require.True(t, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestApplies(t *testing.T) {
	c := MustDefault()
	for _, r := range c.EntityRules() {
		if r.Kind == model.KindQuota {
			assert.True(t, r.Applies(model.IntentTrain))
			assert.False(t, r.Applies(model.IntentFlight))
			assert.False(t, r.Applies(""))
		}
		if r.Kind == model.KindDate {
			assert.True(t, r.Applies(model.IntentNone), "date rules apply everywhere")
		}
	}
}

func TestCompileErrors(t *testing.T) {
	testCases := []struct {
		mutate      func(r *Rules)
		description string
	}{
		{func(r *Rules) { r.Threshold = 0 }, "Zero threshold"},
		{func(r *Rules) { r.Priority = nil }, "No priority"},
		{func(r *Rules) { delete(r.Intents, model.IntentTrain) }, "Intent without rules"},
		{func(r *Rules) { r.Intents[model.IntentFlight].Patterns[0].Expr = "(" }, "Broken pattern"},
		{func(r *Rules) { r.Intents[model.IntentFlight].Patterns[0].Confidence = 1.5 }, "Confidence out of range"},
		{func(r *Rules) { r.Intents[model.IntentHotel].Keywords[model.SlotFrom] = []string{"from"} }, "Keyword for foreign slot"},
		{func(r *Rules) {
			r.Intents[model.IntentTrain].Optional = append(r.Intents[model.IntentTrain].Optional, SlotSpec{Slot: model.SlotFrom})
		}, "Duplicate slot"},
		{func(r *Rules) { r.Entities = append(r.Entities, EntityRule{Expr: "x"}) }, "Entity rule without kind"},
		{func(r *Rules) { r.Entities = append(r.Entities, EntityRule{Kind: model.KindDate, Expr: "[a-"}) }, "Broken entity rule"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			r := Default()
			tc.mutate(r)
			_, err := r.Compile()
			assert.ErrorIs(t, err, ErrInvalidRules)
		})
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	data := []byte(`threshold: 0.8
placeholders:
  to: "going where"
airlines: [IndiGo, Vistara]
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	c, err := r.Compile()
	require.NoError(t, err)

	assert.Equal(t, 0.8, c.Threshold())
	assert.Equal(t, "going where", c.Placeholder(model.SlotTo))
	assert.Equal(t, "from where", c.Placeholder(model.SlotFrom), "other map entries survive")
	assert.Equal(t, []string{"IndiGo", "Vistara"}, c.Vocabulary(model.IntentFlight, model.SlotAirline))
	assert.Len(t, c.Patterns(model.IntentFlight), 5, "untouched intents keep their tables")
}

func TestLoadEmptyPath(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), r)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: [oops"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}
