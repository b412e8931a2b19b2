package observability

import "sync"

type observe struct {
	Kind    string
	Source  string
	Method  string
	Route   string
	Status  int
	CacheMs float64
	DBMs    float64
	DurMs   float64
	OK      bool
}

// Inmem keeps the last max observations plus running cache counters.
type Inmem struct {
	mu     sync.Mutex
	last   []*observe
	max    int
	totals struct {
		cacheHits, cacheMiss int
	}
}

func NewInmem(max int) *Inmem {
	return &Inmem{max: max}
}

func (m *Inmem) push(v *observe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = append(m.last, v)
	if len(m.last) > m.max {
		m.last = m.last[len(m.last)-m.max:]
	}
}

func (m *Inmem) ObserveLookup(source string, cacheMs, dbMs float64) {
	m.push(&observe{Kind: "lookup", Source: source, CacheMs: cacheMs, DBMs: dbMs})
}

func (m *Inmem) ObservePlacement(dbMs float64, ok bool) {
	m.push(&observe{Kind: "placement", DBMs: dbMs, OK: ok})
}

func (m *Inmem) ObserveStatusChange(dbMs float64, ok bool) {
	m.push(&observe{Kind: "status", DBMs: dbMs, OK: ok})
}

func (m *Inmem) ObserveHTTP(method, route string, status int, durMs float64) {
	m.push(&observe{Kind: "http", Method: method, Route: route, Status: status, DurMs: durMs})
}

func (m *Inmem) IncCacheHit() {
	m.mu.Lock()
	m.totals.cacheHits++
	m.mu.Unlock()
}

func (m *Inmem) IncCacheMiss() {
	m.mu.Lock()
	m.totals.cacheMiss++
	m.mu.Unlock()
}

func (m *Inmem) CacheTotals() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals.cacheHits, m.totals.cacheMiss
}
