// Package zone implements the per-document zone cache spec.md §4.2 (C2)
// describes: given a named span (e.g. an HTML tag), answer whether a hit
// position falls inside it, backed by two companion marker iterators and a
// lazily populated per-document interval cache.
package zone

import (
	"errors"
	"fmt"
	"sort"

	"github.com/manticore-go/ftscore/hitpos"
	"github.com/manticore-go/ftscore/iterator"
	"github.com/manticore-go/ftscore/postinglist"
)

// ErrUnknownZone is returned when a lookup names a zone the cache was
// never given start/end iterators for.
var ErrUnknownZone = errors.New("zone: unknown zone")

// LookupStatus is the three-way result is_in_zone returns, per spec.md
// §4.2.
type LookupStatus int

const (
	// NoDocument means rowID has no markers cached for the zone at all.
	NoDocument LookupStatus = iota
	// NoSpan means rowID is cached but hit falls outside every interval.
	NoSpan
	// Found means hit falls inside the interval at SpanIdx.
	Found
)

// LookupResult is the outcome of IsInZone.
type LookupResult struct {
	Status  LookupStatus
	SpanIdx int
}

// interval is one committed (start, end) span in pos_with_field units.
type interval struct {
	start, end int
}

// entry tracks one zone's companion iterators and its per-document cache.
type entry struct {
	start, end iterator.Stream
	docs       map[int64][]interval
	cachedMax  int64 // one past the highest row ensure has cached; lookups consult only the docs map
	cachedMin  int64
}

// Cache is the zone cache of spec.md §4.2, owned exclusively by one ranker
// (spec.md §3 "Ownership": "The ranker owns ... all zone iterators").
type Cache struct {
	zones map[string]*entry
}

// NewCache returns an empty cache with no registered zones.
func NewCache() *Cache {
	return &Cache{zones: make(map[string]*entry)}
}

// AddZone registers a zone name with its start-marker and end-marker
// iterators. Must be called before any IsInZone/InZone lookup for that
// zone.
func (c *Cache) AddZone(name string, start, end iterator.Stream) {
	c.zones[name] = &entry{start: start, end: end, docs: make(map[int64][]interval)}
}

// IsInZone implements spec.md §4.2's is_in_zone(z, hit) -> {Found(span_idx),
// NoSpan, NoDocument}.
func (c *Cache) IsInZone(zoneName string, rowID int64, hit hitpos.Pos) (LookupResult, error) {
	e, ok := c.zones[zoneName]
	if !ok {
		return LookupResult{}, fmt.Errorf("%w: %q", ErrUnknownZone, zoneName)
	}
	ivs, has := e.ensure(rowID)
	if !has {
		return LookupResult{Status: NoDocument}, nil
	}
	target := int(hit.WithField())
	idx := sort.Search(len(ivs), func(i int) bool { return ivs[i].end >= target })
	if idx < len(ivs) && ivs[idx].start <= target {
		return LookupResult{Status: Found, SpanIdx: idx}, nil
	}
	return LookupResult{Status: NoSpan}, nil
}

// InZone reports only whether rowID has any span in zoneName at all,
// ignoring position — the doc-level test a LimitSpec's Zones restriction
// needs (ast.ZoneChecker). An unknown zone name is treated as "not in
// zone" rather than an error, since LimitSpec restriction failures are
// reported by the compiler, not by the cache.
func (c *Cache) InZone(rowID int64, zoneName string) bool {
	e, ok := c.zones[zoneName]
	if !ok {
		return false
	}
	_, has := e.ensure(rowID)
	return has
}

// Forget drops cached entries for row ids below floor, per spec.md §4.2
// "Cleanup: when the caller advises that no row id below R will be queried
// again, drop cached entries with row id < R."
func (c *Cache) Forget(floor int64) {
	for _, e := range c.zones {
		for row := range e.docs {
			if row < floor {
				delete(e.docs, row)
			}
		}
		if floor > e.cachedMin {
			e.cachedMin = floor
		}
	}
}

// ensure populates e.docs[rowID] on first lookup and returns the cached
// interval list plus whether rowID has any markers at all.
func (e *entry) ensure(rowID int64) ([]interval, bool) {
	if ivs, ok := e.docs[rowID]; ok {
		return ivs, true
	}
	starts := hitsForRow(e.start, rowID)
	ends := hitsForRow(e.end, rowID)
	if len(starts) == 0 && len(ends) == 0 {
		return nil, false
	}
	ivs := collapseFSM(starts, ends)
	e.docs[rowID] = ivs
	if rowID >= e.cachedMax {
		e.cachedMax = rowID + 1
	}
	return ivs, true
}

type markerEvent struct {
	pos     int
	isStart bool
}

// collapseFSM runs the 3-state FSM (begin -> in_span -> out_span) spec.md
// §4.2 describes to collapse nested openings down to left-minimal
// (outermost) intervals.
//
// Worked example S3 (Starts=[1,3,5], Ends=[2,7] -> intervals [(1,2),(3,7)])
// resolves an ambiguity in the prose: a nested opening received while
// already in_span is IGNORED rather than replacing the candidate start,
// matching the left-minimal invariant of spec.md §3 ("nested openings are
// flattened to the outermost") over the bullet's looser wording. An
// unclosed opening pending at end-of-doc is dropped, per the same
// invariant ("unclosed opening at end-of-doc is dropped"), which also
// resolves a second inconsistency against §4.2's "end-of-doc commits any
// open candidate". Closing markers before any opening, and closing
// markers seen while already out_span with no pending candidate, are
// both ignored per the Open Question resolution "commit on first close
// after open, ignore subsequent closes until a new open".
func collapseFSM(starts, ends []postinglist.Hit) []interval {
	events := make([]markerEvent, 0, len(starts)+len(ends))
	for _, h := range starts {
		events = append(events, markerEvent{pos: int(h.Hitpos.WithField()), isStart: true})
	}
	for _, h := range ends {
		events = append(events, markerEvent{pos: int(h.Hitpos.WithField()), isStart: false})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].pos != events[j].pos {
			return events[i].pos < events[j].pos
		}
		return events[i].isStart && !events[j].isStart
	})

	const (
		begin = iota
		inSpan
		outSpan
	)
	state := begin
	candidateOpen := 0
	var out []interval
	for _, e := range events {
		switch state {
		case begin:
			if e.isStart {
				candidateOpen = e.pos
				state = inSpan
			}
		case inSpan:
			if e.isStart {
				continue
			}
			out = append(out, interval{start: candidateOpen, end: e.pos})
			state = outSpan
		case outSpan:
			if e.isStart {
				candidateOpen = e.pos
				state = inSpan
			}
		}
	}
	return out
}

// hitsForRow fetches every hit s has for rowID, mirroring iterator's
// unexported helper of the same shape since it operates purely through
// the exported Stream contract.
func hitsForRow(s iterator.Stream, rowID int64) []postinglist.Hit {
	doc := s.AdvanceTo(rowID)
	if doc.RowID != rowID {
		return nil
	}
	return s.GetHits([]postinglist.Doc{doc, {RowID: postinglist.InvalidRowID}})
}
