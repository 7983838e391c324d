package eventlog

import (
	"slices"
	"strings"
	"time"
)

type FilterEventTypeString = string
type FilterKeyString = string
type FilterValString = string

/***** Filter *****/

// Filter selects the events of a dynamic event stream.
//
// Its items are OR-ed. Within an item, the event types are OR-ed and AND-ed with the predicates,
// which are either all OR-ed or all AND-ed. An optional occurred-at window applies to all items.
// The zero Filter matches every event.
type Filter struct {
	items         []FilterItem
	occurredFrom  time.Time
	occurredUntil time.Time
}

func (f Filter) Items() []FilterItem {
	return f.items
}

func (f Filter) OccurredFrom() time.Time {
	return f.occurredFrom
}

func (f Filter) OccurredUntil() time.Time {
	return f.occurredUntil
}

// WithOccurredFrom returns a copy of the filter that only matches events with OccurredAt >= from.
func (f Filter) WithOccurredFrom(from time.Time) Filter {
	f.occurredFrom = from

	return f
}

// WithOccurredUntil returns a copy of the filter that only matches events with OccurredAt <= until.
func (f Filter) WithOccurredUntil(until time.Time) Filter {
	f.occurredUntil = until

	return f
}

// Matches evaluates the filter against an event in process.
// payload maps the top-level keys of the event's payload to their string values.
// SQL engines translate the filter into WHERE clauses instead, with the same semantics.
func (f Filter) Matches(eventType FilterEventTypeString, occurredAt time.Time, payload map[FilterKeyString]FilterValString) bool {
	if !f.occurredFrom.IsZero() && occurredAt.Before(f.occurredFrom) {
		return false
	}

	if !f.occurredUntil.IsZero() && occurredAt.After(f.occurredUntil) {
		return false
	}

	if len(f.items) == 0 {
		return true
	}

	for _, item := range f.items {
		if item.matches(eventType, payload) {
			return true
		}
	}

	return false
}

/***** FilterItem *****/

type FilterItem struct {
	eventTypes             []FilterEventTypeString
	predicates             []FilterPredicate
	allPredicatesMustMatch bool
}

func (fi FilterItem) EventTypes() []FilterEventTypeString {
	return fi.eventTypes
}

func (fi FilterItem) Predicates() []FilterPredicate {
	return fi.predicates
}

func (fi FilterItem) AllPredicatesMustMatch() bool {
	return fi.allPredicatesMustMatch
}

func (fi FilterItem) matches(eventType FilterEventTypeString, payload map[FilterKeyString]FilterValString) bool {
	if len(fi.eventTypes) > 0 && !slices.Contains(fi.eventTypes, eventType) {
		return false
	}

	if len(fi.predicates) == 0 {
		return true
	}

	matchesPredicate := func(p FilterPredicate) bool {
		val, found := payload[p.key]

		return found && val == p.val
	}

	if fi.allPredicatesMustMatch {
		for _, p := range fi.predicates {
			if !matchesPredicate(p) {
				return false
			}
		}

		return true
	}

	return slices.ContainsFunc(fi.predicates, matchesPredicate)
}

/***** FilterPredicate *****/

// FilterPredicate matches events whose payload has the top-level key with exactly the string value.
type FilterPredicate struct {
	key FilterKeyString
	val FilterValString
}

func P(key FilterKeyString, val FilterValString) FilterPredicate {
	return FilterPredicate{key: key, val: val}
}

func (fp FilterPredicate) Key() FilterKeyString {
	return fp.key
}

func (fp FilterPredicate) Val() FilterValString {
	return fp.val
}

/***** FilterBuilder *****/

// FilterBuilder builds a Filter step by step and only allows combinations that are useful
// for event-sourced workflows:
//
//   - (eventType OR eventType...)
//   - (predicate OR predicate...) or (predicate AND predicate...)
//   - (eventTypes AND predicates)
//   - any of the above OR-ed with each other, as separate items
//   - any event at all
type FilterBuilder interface {
	// Matching starts a new FilterItem.
	Matching() EmptyFilterItemBuilder

	// MatchingAnyEvent returns the empty Filter that matches every event.
	MatchingAnyEvent() Filter
}

type EmptyFilterItemBuilder interface {
	// AnyEventTypeOf adds event types, dropping empty and duplicate ones.
	AnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) FilterItemBuilderLackingPredicates

	// AnyPredicateOf adds predicates of which at least one must match, dropping partial and duplicate ones.
	AnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilderLackingEventTypes

	// AllPredicatesOf adds predicates that must all match, dropping partial and duplicate ones.
	AllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilderLackingEventTypes
}

type FilterItemBuilderLackingPredicates interface {
	AndAnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder
	AndAllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder
	CompletedFilterItemBuilder
}

type FilterItemBuilderLackingEventTypes interface {
	AndAnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) CompletedFilterItemBuilder
	CompletedFilterItemBuilder
}

type CompletedFilterItemBuilder interface {
	// OrMatching finalizes the current FilterItem and starts a new one.
	OrMatching() EmptyFilterItemBuilder

	// Finalize returns the Filter with the current FilterItem as its last item.
	Finalize() Filter
}

// filterBuilder implements all the builder interfaces. It is a value type, so every step works on a copy.
type filterBuilder struct {
	filter      Filter
	currentItem FilterItem
}

// BuildEventFilter creates a FilterBuilder which must eventually be finalized with Finalize() or MatchingAnyEvent().
func BuildEventFilter() FilterBuilder {
	return filterBuilder{}
}

func (fb filterBuilder) Matching() EmptyFilterItemBuilder {
	fb.currentItem = FilterItem{}

	return fb
}

func (fb filterBuilder) AnyEventTypeOf(
	eventType FilterEventTypeString,
	eventTypes ...FilterEventTypeString,
) FilterItemBuilderLackingPredicates {

	all := append(slices.Clone(fb.currentItem.eventTypes), eventType)
	fb.currentItem.eventTypes = sanitizeEventTypes(append(all, eventTypes...))

	return fb
}

func (fb filterBuilder) AndAnyEventTypeOf(
	eventType FilterEventTypeString,
	eventTypes ...FilterEventTypeString,
) CompletedFilterItemBuilder {

	return fb.AnyEventTypeOf(eventType, eventTypes...)
}

func (fb filterBuilder) AnyPredicateOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) FilterItemBuilderLackingEventTypes {

	all := append(slices.Clone(fb.currentItem.predicates), predicate)
	fb.currentItem.predicates = sanitizePredicates(append(all, predicates...))

	return fb
}

func (fb filterBuilder) AndAnyPredicateOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterItemBuilder {

	return fb.AnyPredicateOf(predicate, predicates...)
}

func (fb filterBuilder) AllPredicatesOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) FilterItemBuilderLackingEventTypes {

	fb.currentItem.allPredicatesMustMatch = true

	return fb.AnyPredicateOf(predicate, predicates...)
}

func (fb filterBuilder) AndAllPredicatesOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterItemBuilder {

	return fb.AllPredicatesOf(predicate, predicates...)
}

func (fb filterBuilder) OrMatching() EmptyFilterItemBuilder {
	fb.filter.items = append(slices.Clone(fb.filter.items), fb.currentItem)
	fb.currentItem = FilterItem{}

	return fb
}

func (fb filterBuilder) MatchingAnyEvent() Filter {
	return Filter{}
}

func (fb filterBuilder) Finalize() Filter {
	fb.filter.items = append(slices.Clone(fb.filter.items), fb.currentItem)

	return fb.filter
}

// sanitizeEventTypes removes empty entries, then sorts and deduplicates.
func sanitizeEventTypes(eventTypes []FilterEventTypeString) []FilterEventTypeString {
	eventTypes = slices.DeleteFunc(eventTypes, func(e FilterEventTypeString) bool {
		return e == ""
	})
	slices.Sort(eventTypes)

	return slices.Clip(slices.Compact(eventTypes))
}

// sanitizePredicates removes partial entries, then sorts by key and value and deduplicates.
func sanitizePredicates(predicates []FilterPredicate) []FilterPredicate {
	predicates = slices.DeleteFunc(predicates, func(p FilterPredicate) bool {
		return p.key == "" || p.val == ""
	})
	slices.SortFunc(predicates, func(a, b FilterPredicate) int {
		if c := strings.Compare(a.key, b.key); c != 0 {
			return c
		}

		return strings.Compare(a.val, b.val)
	})

	return slices.Clip(slices.Compact(predicates))
}
