/*
Package model holds the types that flow through the suggestion pipeline.

Every stage reads and writes these types: the classifier produces an Intent,
the extractor fills a Bag of Entity values, the resolver picks the next Slot
and the generator turns a MatchResult into Suggestion values. Transports only
ever see Request and Response.
*/
package model

import "strings"

// Intent is the travel action the user is trying to book.
type Intent string

const (
	IntentNone    Intent = "none"
	IntentFlight  Intent = "flight"
	IntentHotel   Intent = "hotel"
	IntentTrain   Intent = "train"
	IntentHoliday Intent = "holiday"
)

// Intents lists the bookable intents in classifier priority order.
var Intents = []Intent{IntentFlight, IntentHotel, IntentTrain, IntentHoliday}

// IsNone reports whether no intent has been decided.
func (i Intent) IsNone() bool {
	return i == "" || i == IntentNone
}

// ParseIntent maps a free-form name onto a bookable intent.
func ParseIntent(s string) (Intent, bool) {
	name := Intent(strings.ToLower(strings.TrimSpace(s)))
	for _, in := range Intents {
		if in == name {
			return in, true
		}
	}
	return IntentNone, false
}

// Slot names one piece of information an intent asks for.
type Slot string

const (
	SlotNone       Slot = ""
	SlotIntent     Slot = "intent"
	SlotFrom       Slot = "from"
	SlotTo         Slot = "to"
	SlotDate       Slot = "date"
	SlotReturn     Slot = "return"
	SlotTime       Slot = "time"
	SlotClass      Slot = "class"
	SlotAirline    Slot = "airline"
	SlotPassengers Slot = "passengers"
	SlotCity       Slot = "city"
	SlotCheckin    Slot = "checkin"
	SlotCheckout   Slot = "checkout"
	SlotNights     Slot = "nights"
	SlotGuests     Slot = "guests"
	SlotRooms      Slot = "rooms"
	SlotCategory   Slot = "category"
	SlotQuota      Slot = "quota"
	SlotTheme      Slot = "theme"
	SlotBudget     Slot = "budget"
)

// Kind is the entity kind a slot is filled by. Slots and kinds share names,
// with two extra kinds that never act as slots.
type Kind string

const (
	KindFrom       Kind = "from"
	KindTo         Kind = "to"
	KindDate       Kind = "date"
	KindReturn     Kind = "return"
	KindTime       Kind = "time"
	KindClass      Kind = "class"
	KindAirline    Kind = "airline"
	KindPassengers Kind = "passengers"
	KindCity       Kind = "city"
	KindCheckin    Kind = "checkin"
	KindCheckout   Kind = "checkout"
	KindNights     Kind = "nights"
	KindGuests     Kind = "guests"
	KindRooms      Kind = "rooms"
	KindCategory   Kind = "category"
	KindQuota      Kind = "quota"
	KindTheme      Kind = "theme"
	KindBudget     Kind = "budget"

	// KindCities collects every recognised place in text order.
	KindCities Kind = "cities"
	// KindTripType is "round" or "one_way".
	KindTripType Kind = "trip_type"
)

// Kind returns the entity kind that fills the slot.
func (s Slot) Kind() Kind {
	return Kind(s)
}

// IsPlace reports whether the slot is filled by a place name.
func (s Slot) IsPlace() bool {
	return s == SlotFrom || s == SlotTo || s == SlotCity
}
