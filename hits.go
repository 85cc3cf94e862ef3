package elastic

// SearchHit is one scored, materialized search result.
type SearchHit[T any] struct {
	ID         string
	Index      string
	Version    int64
	Score      float64
	SortValues []any
	Highlights map[string][]string
	InnerHits  map[string][]SearchDocument
	// Content is the mapped instance; nil when the raw hit carried no
	// document payload.
	Content *T
}

// SearchHits is an ordered hit collection with response-level metadata.
// TotalHits is copied verbatim from the response and may exceed len(Hits).
type SearchHits[T any] struct {
	TotalHits         int64
	TotalHitsRelation string
	MaxScore          float64
	Hits              []SearchHit[T]
	Aggregations      map[string]any
	Suggest           map[string]any
}

// SearchScrollHits is a SearchHits plus the opaque scroll token needed to
// resume a scrolling search. The token passes through unchanged.
type SearchScrollHits[T any] struct {
	SearchHits[T]
	ScrollID string
}
