package observability

// Metrics receives timing and cache events from the services and the
// HTTP layer. Implementations must be safe for concurrent use.
type Metrics interface {
	// ObserveLookup records a cache-aside read and where it was served from.
	ObserveLookup(source string, cacheMs, dbMs float64)
	// ObservePlacement records an order placement commit attempt.
	ObservePlacement(dbMs float64, ok bool)
	// ObserveStatusChange records an order status transition attempt.
	ObserveStatusChange(dbMs float64, ok bool)
	ObserveHTTP(method, route string, status int, durMs float64)
	IncCacheHit()
	IncCacheMiss()
}

const (
	SourceCache = "cache"
	SourceDB    = "db"
)

type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) ObserveLookup(string, float64, float64)   {}
func (Noop) ObservePlacement(float64, bool)           {}
func (Noop) ObserveStatusChange(float64, bool)        {}
func (Noop) ObserveHTTP(string, string, int, float64) {}
func (Noop) IncCacheHit()                             {}
func (Noop) IncCacheMiss()                            {}
