package rules

import "github.com/bastiangx/tripserve/pkg/model"

const (
	numExpr     = `(\d{1,2}|one|two|three|four|five|six|seven|eight|nine|ten)`
	monthExpr   = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`
	weekdayExpr = `(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)`
	peopleExpr  = `(?:passengers?|people|persons?|adults?|travell?ers?|pax|tickets?|seats?)`
	guestExpr   = `(?:guests?|people|persons?|adults?|pax)`

	// verb, optional article and up to two modifiers: "book me a business class"
	leadExpr = `\b(?:book|want|need|looking\s+for|search\s+for|find|get|reserve)\s+(?:me\s+)?(?:a\s+|an\s+|the\s+)?(?:[\w-]+\s+){0,2}`
)

var (
	travel    = []model.Intent{model.IntentFlight, model.IntentTrain, model.IntentHoliday, model.IntentNone}
	transport = []model.Intent{model.IntentFlight, model.IntentTrain}
	timed     = []model.Intent{model.IntentFlight, model.IntentTrain, model.IntentNone}
	hotelOnly = []model.Intent{model.IntentHotel}
	stays     = []model.Intent{model.IntentHotel, model.IntentHoliday, model.IntentNone}
)

// Default returns the built-in rule tables.
func Default() *Rules {
	return &Rules{
		Threshold:      0.75,
		CodeConfidence: 0.92,
		Priority:       []model.Intent{model.IntentFlight, model.IntentHotel, model.IntentTrain, model.IntentHoliday},
		Intents: map[model.Intent]*IntentRules{
			model.IntentFlight:  flightRules(),
			model.IntentHotel:   hotelRules(),
			model.IntentTrain:   trainRules(),
			model.IntentHoliday: holidayRules(),
		},
		Partial: PartialRules{
			Endings: []string{
				"want to book a", "need to book a", "looking for a", "search for a",
				"book me a", "want to book", "need to book", "want to", "need to",
				"book me", "book a", "plan a", "want a", "need a", "looking for",
				"book", "want", "need", "plan",
			},
			Starts: []string{"i want", "i need", "i am looking", "i'm looking", "want", "need"},
			IntentWords: []string{
				"flight", "flights", "fly", "flying", "plane",
				"hotel", "hotels", "room", "rooms", "stay", "resort",
				"train", "trains", "railway", "rail",
				"holiday", "holidays", "vacation", "vacations", "package", "honeymoon",
			},
			Confidence: 0.6,
		},
		Entities: entityRules(),
		Stopwords: []string{
			"a", "an", "the", "i", "me", "my", "we", "us", "and", "or", "for", "with", "by", "of",
			"book", "booking", "want", "need", "please", "looking", "search", "find", "get", "plan",
			"flight", "flights", "fly", "flying", "hotel", "hotels", "room", "rooms", "stay",
			"train", "trains", "holiday", "holidays", "vacation", "package", "trip", "ticket", "tickets",
			"today", "tomorrow", "tonight", "morning", "afternoon", "evening", "night",
		},
		PlaceRoles: map[string]model.Kind{
			"from":      model.KindFrom,
			"departing": model.KindFrom,
			"leaving":   model.KindFrom,
			"to":        model.KindTo,
			"towards":   model.KindTo,
			"into":      model.KindTo,
			"in":        model.KindCity,
			"at":        model.KindCity,
			"near":      model.KindCity,
		},
		Placeholders: map[model.Slot]string{
			model.SlotIntent:     "what would you like to book",
			model.SlotFrom:       "from where",
			model.SlotTo:         "to where",
			model.SlotDate:       "on which date",
			model.SlotReturn:     "returning when",
			model.SlotTime:       "at what time",
			model.SlotClass:      "in which class",
			model.SlotAirline:    "with which airline",
			model.SlotPassengers: "for how many passengers",
			model.SlotCity:       "in which city",
			model.SlotCheckin:    "checking in when",
			model.SlotCheckout:   "checking out when",
			model.SlotNights:     "for how many nights",
			model.SlotGuests:     "for how many guests",
			model.SlotRooms:      "how many rooms",
			model.SlotCategory:   "what kind of hotel",
			model.SlotQuota:      "in which quota",
			model.SlotTheme:      "what kind of holiday",
			model.SlotBudget:     "within what budget",
		},
		Vocabulary: map[model.Slot][]string{
			model.SlotIntent:     {"flight", "hotel", "train", "holiday"},
			model.SlotDate:       {"today", "tomorrow", "day after tomorrow", "this weekend", "next week", "next month"},
			model.SlotReturn:     {"tomorrow", "day after tomorrow", "this weekend", "next week", "next month"},
			model.SlotCheckin:    {"today", "tomorrow", "day after tomorrow", "this weekend", "next week"},
			model.SlotCheckout:   {"tomorrow", "day after tomorrow", "this weekend", "next week"},
			model.SlotTime:       {"morning", "afternoon", "evening", "night"},
			model.SlotPassengers: {"1", "2", "3", "4", "5", "6", "7", "8", "9"},
			model.SlotGuests:     {"1", "2", "family", "3", "4", "5", "6", "7", "8", "9"},
			model.SlotNights:     {"1", "2", "3", "4", "5", "6", "7", "8", "9"},
			model.SlotRooms:      {"1", "2", "3", "4", "5", "6", "7", "8", "9"},
			model.SlotCategory:   {"5-star", "4-star", "3-star", "budget", "luxury", "boutique"},
			model.SlotQuota:      {"general", "tatkal", "premium tatkal", "ladies", "senior citizen"},
			model.SlotTheme:      {"beach", "honeymoon", "adventure", "hill station", "wildlife", "pilgrimage", "heritage"},
			model.SlotBudget:     {"under ₹25,000", "under ₹50,000", "under ₹1,00,000", "under ₹2,00,000"},
		},
		Airlines: []string{
			"IndiGo", "Air India", "Air India Express", "SpiceJet", "Vistara", "Akasa Air",
			"GoAir", "Emirates", "Qatar Airways", "Singapore Airlines",
		},
	}
}

func flightRules() *IntentRules {
	return &IntentRules{
		Patterns: []Pattern{
			{Expr: leadExpr + `(?:flights?|plane|air\s*tickets?)\b`, Confidence: 0.95},
			{Expr: `\b(?:flights?|fly|flying)\s+(?:from|to|on|for|between)\b`, Confidence: 0.90},
			{Expr: `\b(?:fly|flying)\b`, Confidence: 0.85},
			{Expr: `\b(?:airport|airfare|boarding\s+pass)\b`, Confidence: 0.80},
			{Expr: `\bflights?\b`, Confidence: 0.78},
		},
		Required: []SlotSpec{
			{Slot: model.SlotFrom},
			{Slot: model.SlotTo},
			{Slot: model.SlotDate},
			{Slot: model.SlotPassengers},
		},
		Optional: []SlotSpec{
			{Slot: model.SlotReturn, Eligible: EligibleRoundTrip},
			{Slot: model.SlotClass, Eligible: EligibleAlways},
			{Slot: model.SlotTime, Eligible: EligibleAlways},
			{Slot: model.SlotAirline, Eligible: EligibleAlways},
		},
		Keywords: map[model.Slot][]string{
			model.SlotFrom:    {"from", "departing", "leaving"},
			model.SlotTo:      {"to", "towards"},
			model.SlotDate:    {"on", "date"},
			model.SlotReturn:  {"return", "returning"},
			model.SlotTime:    {"at", "around"},
			model.SlotClass:   {"class", "cabin"},
			model.SlotAirline: {"airline", "airlines", "carrier"},
		},
		Vocab: map[model.Slot][]string{
			model.SlotClass: {"economy", "premium economy", "business", "first"},
		},
	}
}

func hotelRules() *IntentRules {
	return &IntentRules{
		Patterns: []Pattern{
			{Expr: leadExpr + `(?:hotels?|rooms?|stay|accommodation|resort|suite|lodge)\b`, Confidence: 0.95},
			{Expr: `\b(?:hotels?|rooms?|stay|accommodation|suites?)\s+(?:in|at|near|for|from)\b`, Confidence: 0.90},
			{Expr: `\b(?:check[\s-]?in|check[\s-]?out)\b`, Confidence: 0.85},
			{Expr: `\b(?:lodging|resort|guest\s*house|hostel|homestay)\b`, Confidence: 0.80},
			{Expr: `\bhotels?\b`, Confidence: 0.78},
		},
		Required: []SlotSpec{
			{Slot: model.SlotCity},
			{Slot: model.SlotCheckin},
			{Slot: model.SlotNights, FilledBy: []model.Kind{model.KindNights, model.KindCheckout}},
			{Slot: model.SlotGuests},
		},
		Optional: []SlotSpec{
			{Slot: model.SlotCheckout, Eligible: EligibleNever},
			{Slot: model.SlotRooms, Eligible: EligibleLargeParty},
			{Slot: model.SlotCategory, Eligible: EligibleAlways},
		},
		Keywords: map[model.Slot][]string{
			model.SlotCity:     {"in", "at", "near"},
			model.SlotCheckin:  {"check in", "check-in", "checkin", "from", "on", "arriving"},
			model.SlotCheckout: {"check out", "check-out", "checkout", "till", "until"},
		},
	}
}

func trainRules() *IntentRules {
	return &IntentRules{
		Patterns: []Pattern{
			{Expr: leadExpr + `(?:trains?|railway|rail\s+tickets?)\b`, Confidence: 0.95},
			{Expr: `\b(?:trains?|railway)\s+(?:from|to|on|for|between|tickets?)\b`, Confidence: 0.90},
			{Expr: `\b(?:by\s+train|railway\s+station|tatkal|sleeper|pnr)\b`, Confidence: 0.85},
			{Expr: `\b(?:rail|berth|rajdhani|shatabdi)\b`, Confidence: 0.80},
			{Expr: `\btrains?\b`, Confidence: 0.78},
		},
		Required: []SlotSpec{
			{Slot: model.SlotFrom},
			{Slot: model.SlotTo},
			{Slot: model.SlotDate},
			{Slot: model.SlotClass},
			{Slot: model.SlotPassengers},
		},
		Optional: []SlotSpec{
			{Slot: model.SlotQuota, Eligible: EligibleAlways},
			{Slot: model.SlotTime, Eligible: EligibleAlways},
		},
		Keywords: map[model.Slot][]string{
			model.SlotFrom:  {"from", "departing", "leaving"},
			model.SlotTo:    {"to", "towards"},
			model.SlotDate:  {"on", "date"},
			model.SlotClass: {"class", "coach"},
			model.SlotQuota: {"quota"},
			model.SlotTime:  {"at", "around"},
		},
		Vocab: map[model.Slot][]string{
			model.SlotClass: {"Sleeper", "3AC", "2AC", "1AC", "Chair Car", "General"},
		},
	}
}

func holidayRules() *IntentRules {
	return &IntentRules{
		Patterns: []Pattern{
			{Expr: `\b(?:book|want|need|looking\s+for|search\s+for|find|get|plan)\s+(?:me\s+)?(?:a\s+|an\s+|the\s+)?(?:[\w-]+\s+){0,2}(?:holidays?|vacations?)\b`, Confidence: 0.95},
			{Expr: `\b(?:holiday|vacation)\s+(?:packages?|to|for|in|at)\b`, Confidence: 0.90},
			{Expr: `\b(?:honeymoon|getaway|tour\s+package)\b`, Confidence: 0.85},
			{Expr: `\b(?:sightseeing|itinerary)\b`, Confidence: 0.80},
			{Expr: `\b(?:holidays?|vacations?)\b`, Confidence: 0.78},
		},
		Required: []SlotSpec{
			{Slot: model.SlotTo},
			{Slot: model.SlotDate},
			{Slot: model.SlotNights},
			{Slot: model.SlotPassengers},
		},
		Optional: []SlotSpec{
			{Slot: model.SlotFrom, Eligible: EligibleNever},
			{Slot: model.SlotTheme, Eligible: EligibleAlways},
			{Slot: model.SlotBudget, Eligible: EligibleAlways},
		},
		Keywords: map[model.Slot][]string{
			model.SlotTo:     {"to", "in"},
			model.SlotFrom:   {"from"},
			model.SlotDate:   {"on", "starting"},
			model.SlotBudget: {"under", "below", "within", "budget"},
		},
	}
}

// entityRules is ordered: earlier rules claim their text first.
func entityRules() []EntityRule {
	return []EntityRule{
		// trip type
		{Kind: model.KindTripType, Expr: `\b(?:round[\s-]?trip|return\s+(?:flight|ticket|journey)s?|two[\s-]?way)\b`, Value: "round", Confidence: 0.9, Intents: transport},
		{Kind: model.KindTripType, Expr: `\b(?:returning|coming\s+back)\b`, Value: "round", Confidence: 0.85, Intents: transport},
		{Kind: model.KindTripType, Expr: `\bone[\s-]?way\b`, Value: "one_way", Confidence: 0.9, Intents: transport},

		// dates
		{Kind: model.KindDate, Expr: `\bday\s+after\s+tomorrow\b`, Value: "day after tomorrow", Confidence: 0.95},
		{Kind: model.KindDate, Expr: `\b(?:tomorrow|tmrw|tmr)\b`, Value: "tomorrow", Confidence: 0.95},
		{Kind: model.KindDate, Expr: `\btoday\b`, Value: "today", Confidence: 0.95},
		{Kind: model.KindDate, Expr: `\btonight\b`, Value: "tonight", Confidence: 0.95},
		{Kind: model.KindDate, Expr: `\b(?:this|next)\s+(?:weekend|week|month)\b`, Confidence: 0.9},
		{Kind: model.KindDate, Expr: `\b(?:(?:this|next)\s+)?` + weekdayExpr + `\b`, Confidence: 0.9},
		{Kind: model.KindDate, Expr: `\b\d{1,2}(?:st|nd|rd|th)?\s+(?:of\s+)?` + monthExpr + `\b`, Confidence: 0.9},
		{Kind: model.KindDate, Expr: `\b` + monthExpr + `\s+\d{1,2}(?:st|nd|rd|th)?\b`, Confidence: 0.9},
		{Kind: model.KindDate, Expr: `\b\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?\b`, Confidence: 0.85},

		// counts with a unit word
		{Kind: model.KindPassengers, Expr: `\b` + numExpr + `\s+` + peopleExpr + `\b`, Value: "$1", Transform: "count", Confidence: 0.9, Intents: travel},
		{Kind: model.KindGuests, Expr: `\b` + numExpr + `\s+` + guestExpr + `\b`, Value: "$1", Transform: "count", Confidence: 0.9, Intents: hotelOnly},
		{Kind: model.KindPassengers, Expr: `\bfamily\s+of\s+` + numExpr + `\b`, Value: "$1", Transform: "count", Confidence: 0.85, Intents: travel},
		{Kind: model.KindGuests, Expr: `\bfamily\s+of\s+` + numExpr + `\b`, Value: "$1", Transform: "count", Confidence: 0.85, Intents: hotelOnly},
		{Kind: model.KindNights, Expr: `\b` + numExpr + `[\s-]*nights?\b`, Value: "$1", Transform: "count", Confidence: 0.9, Intents: stays},
		{Kind: model.KindNights, Expr: `\b` + numExpr + `[\s-]*days?\b`, Value: "$1", Transform: "count", Confidence: 0.8, Intents: stays},
		{Kind: model.KindNights, Expr: `\b(?:a|one)\s+week\b|\bweek[\s-]?long\b`, Value: "7", Confidence: 0.8, Intents: stays},
		{Kind: model.KindRooms, Expr: `\b` + numExpr + `\s+rooms?\b`, Value: "$1", Transform: "count", Confidence: 0.9, Intents: hotelOnly},

		// time of day
		{Kind: model.KindTime, Expr: `\b\d{1,2}(?::\d{2})?\s*(?:am|pm)\b`, Confidence: 0.9, Intents: timed},
		{Kind: model.KindTime, Expr: `\b(?:[01]?\d|2[0-3]):[0-5]\d\b`, Confidence: 0.85, Intents: timed},
		{Kind: model.KindTime, Expr: `\b(?:early\s+)?morning\b`, Value: "morning", Confidence: 0.85, Intents: timed},
		{Kind: model.KindTime, Expr: `\bafternoon\b`, Value: "afternoon", Confidence: 0.85, Intents: timed},
		{Kind: model.KindTime, Expr: `\bevening\b`, Value: "evening", Confidence: 0.85, Intents: timed},
		{Kind: model.KindTime, Expr: `\b(?:late\s+)?night\b`, Value: "night", Confidence: 0.85, Intents: timed},

		// hotel category
		{Kind: model.KindCategory, Expr: `\b([1-7])[\s-]?star\b`, Value: "$1-star", Confidence: 0.9, Intents: hotelOnly},
		{Kind: model.KindCategory, Expr: `\b(?:budget|cheap|affordable)\b`, Value: "budget", Confidence: 0.8, Intents: hotelOnly},
		{Kind: model.KindCategory, Expr: `\b(?:luxury|luxurious|premium)\b`, Value: "luxury", Confidence: 0.8, Intents: hotelOnly},
		{Kind: model.KindCategory, Expr: `\bboutique\b`, Value: "boutique", Confidence: 0.8, Intents: hotelOnly},

		// holiday budget
		{Kind: model.KindBudget, Expr: `\b(?:under|below|within|up\s*to|budget\s+of)\s*(?:rs\.?\s*|inr\s*|₹\s*|\$\s*)?\d[\d,]*(?:\s*(?:k|lakhs?))?\b`, Confidence: 0.85, Intents: []model.Intent{model.IntentHoliday}},

		// travel class
		{Kind: model.KindClass, Expr: `\bpremium\s+economy\b`, Value: "premium economy", Confidence: 0.9, Intents: []model.Intent{model.IntentFlight}},
		{Kind: model.KindClass, Expr: `\beconomy(?:\s+class)?\b`, Value: "economy", Confidence: 0.9, Intents: []model.Intent{model.IntentFlight}},
		{Kind: model.KindClass, Expr: `\bbusiness(?:\s+class)?\b`, Value: "business", Confidence: 0.9, Intents: []model.Intent{model.IntentFlight}},
		{Kind: model.KindClass, Expr: `\bfirst\s+class\b`, Value: "first", Confidence: 0.9, Intents: []model.Intent{model.IntentFlight}},
		{Kind: model.KindClass, Expr: `\bnon[\s-]?ac\b`, Value: "Sleeper", Confidence: 0.85, Intents: []model.Intent{model.IntentTrain}},
		{Kind: model.KindClass, Expr: `\b(?:1\s?ac|first\s+ac)\b`, Value: "1AC", Confidence: 0.9, Intents: []model.Intent{model.IntentTrain}},
		{Kind: model.KindClass, Expr: `\b(?:2\s?ac|second\s+ac|two[\s-]tier)\b`, Value: "2AC", Confidence: 0.9, Intents: []model.Intent{model.IntentTrain}},
		{Kind: model.KindClass, Expr: `\b(?:3\s?ac|third\s+ac|three[\s-]tier)\b`, Value: "3AC", Confidence: 0.9, Intents: []model.Intent{model.IntentTrain}},
		{Kind: model.KindClass, Expr: `\bsleeper(?:\s+class)?\b`, Value: "Sleeper", Confidence: 0.9, Intents: []model.Intent{model.IntentTrain}},
		{Kind: model.KindClass, Expr: `\b(?:chair\s+car|cc)\b`, Value: "Chair Car", Confidence: 0.85, Intents: []model.Intent{model.IntentTrain}},
		{Kind: model.KindClass, Expr: `\bgeneral\s+(?:class|compartment)\b`, Value: "General", Confidence: 0.85, Intents: []model.Intent{model.IntentTrain}},
		{Kind: model.KindClass, Expr: `\bac\b`, Value: "AC", Confidence: 0.75, Intents: []model.Intent{model.IntentTrain}},

		// train quota
		{Kind: model.KindQuota, Expr: `\bpremium\s+tatkal\b`, Value: "premium tatkal", Confidence: 0.9, Intents: []model.Intent{model.IntentTrain}},
		{Kind: model.KindQuota, Expr: `\btatkal\b`, Value: "tatkal", Confidence: 0.9, Intents: []model.Intent{model.IntentTrain}},
		{Kind: model.KindQuota, Expr: `\bladies(?:\s+quota)?\b`, Value: "ladies", Confidence: 0.85, Intents: []model.Intent{model.IntentTrain}},
		{Kind: model.KindQuota, Expr: `\bsenior\s+citizens?(?:\s+quota)?\b`, Value: "senior citizen", Confidence: 0.85, Intents: []model.Intent{model.IntentTrain}},
		{Kind: model.KindQuota, Expr: `\bgeneral\s+quota\b`, Value: "general", Confidence: 0.85, Intents: []model.Intent{model.IntentTrain}},

		// holiday theme
		{Kind: model.KindTheme, Expr: `\bhill\s+stations?\b`, Value: "hill station", Confidence: 0.85, Intents: []model.Intent{model.IntentHoliday}},
		{Kind: model.KindTheme, Expr: `\b(beach|honeymoon|adventure|wildlife|pilgrimage|heritage|cruise)\b`, Value: "$1", Confidence: 0.85, Intents: []model.Intent{model.IntentHoliday}},

		// bare numbers only when no unit phrase bound the slot
		{Kind: model.KindPassengers, Expr: `\b(?:for|with)\s+` + numExpr + `\b`, Value: "$1", Transform: "count", Confidence: 0.7, Intents: travel, OnlyIfUnset: true},
		{Kind: model.KindGuests, Expr: `\b(?:for|with)\s+` + numExpr + `\b`, Value: "$1", Transform: "count", Confidence: 0.7, Intents: hotelOnly, OnlyIfUnset: true},
	}
}
