package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 4096

// EntryKind distinguishes what was timed.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
	KindEncode
)

// String returns the JSON-facing name of the kind.
func (k EntryKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindQuery:
		return "query"
	case KindEncode:
		return "encode"
	}
	return "unknown"
}

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // "GET /calendar/{slug}", "QueryRowContext", "calendar.Encode"
	StatusCode int    // HTTP status (0 for queries and encodes)
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer for timing entries.
// When full, oldest entries are overwritten. Aggregation happens only in Snapshot.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int
	count   int64
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: size > 0 (non-positive falls back to DefaultRingSize)
// POST: Returns a ready-to-use collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{
		entries: make([]Entry, size),
		size:    size,
	}
}

// Record appends an entry to the ring buffer. A nil collector ignores the call.
// PRE: none
// POST: Entry stored; if buffer full, oldest entry overwritten
func (c *Collector) Record(e Entry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	atomic.AddInt64(&c.count, 1)
}

// Since records an entry of kind for path, timed from start.
func (c *Collector) Since(kind EntryKind, path string, start time.Time) {
	if c == nil {
		return
	}
	c.Record(Entry{
		Kind:       kind,
		Path:       path,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
		Timestamp:  start,
	})
}

// TotalRecorded returns the total number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	if c == nil {
		return 0
	}
	return atomic.LoadInt64(&c.count)
}

// KindStats aggregates one entry kind.
type KindStats struct {
	Count int     `json:"count"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	MaxMs float64 `json:"max_ms"`
}

// PathStat aggregates timing for a single path.
type PathStat struct {
	Kind  string  `json:"kind"`
	Path  string  `json:"path"`
	Count int     `json:"count"`
	AvgMs float64 `json:"avg_ms"`
	MaxMs float64 `json:"max_ms"`
}

// Snapshot holds aggregated performance data computed on read.
type Snapshot struct {
	TotalRecorded int64                `json:"total_recorded"`
	Kinds         map[string]KindStats `json:"kinds"`
	Slowest       []PathStat           `json:"slowest"`
}

// Snapshot computes aggregated stats for entries newer than since.
// PRE: topN >= 0
// POST: Returns per-kind percentiles and the topN slowest paths by average
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	if c == nil {
		return Snapshot{Kinds: map[string]KindStats{}, Slowest: []PathStat{}}
	}
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	durations := make(map[EntryKind][]float64)
	type key struct {
		kind EntryKind
		path string
	}
	totals := make(map[key]*PathStat)
	sums := make(map[key]float64)

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		durations[e.Kind] = append(durations[e.Kind], e.DurationMs)
		k := key{e.Kind, e.Path}
		s, ok := totals[k]
		if !ok {
			s = &PathStat{Kind: e.Kind.String(), Path: e.Path}
			totals[k] = s
		}
		s.Count++
		sums[k] += e.DurationMs
		if e.DurationMs > s.MaxMs {
			s.MaxMs = e.DurationMs
		}
	}

	snap := Snapshot{
		TotalRecorded: c.TotalRecorded(),
		Kinds:         make(map[string]KindStats),
	}
	for kind, ds := range durations {
		sort.Float64s(ds)
		snap.Kinds[kind.String()] = KindStats{
			Count: len(ds),
			P50Ms: percentile(ds, 50),
			P95Ms: percentile(ds, 95),
			MaxMs: ds[len(ds)-1],
		}
	}

	list := make([]PathStat, 0, len(totals))
	for k, s := range totals {
		s.AvgMs = sums[k] / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Path < list[j].Path
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if len(list) > topN {
		list = list[:topN]
	}
	snap.Slowest = list
	return snap
}

// percentile returns the p-th percentile from a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
