package elastic

import (
	"fmt"
	"time"
)

// ReadHit materializes a single raw hit. A hit without a document payload
// still yields a SearchHit with populated metadata and a nil Content.
func ReadHit[T any](c *Converter, raw SearchDocument) (SearchHit[T], error) {
	start := time.Now()
	hit, err := readHit[T](c, raw)
	c.obs.observe("read_hit", start, err)
	return hit, err
}

// ReadHits materializes a raw response into a typed hit collection. The
// output sequence length always equals the raw hit count and keeps its order;
// the total hit count is copied verbatim even when the backend reports an
// approximate or capped value.
func ReadHits[T any](c *Converter, resp SearchResponse) (SearchHits[T], error) {
	start := time.Now()
	hits, err := readHits[T](c, resp)
	c.obs.observe("read_hits", start, err)
	return hits, err
}

// ReadScrollHits is ReadHits plus pass-through of the opaque scroll token.
// A response without a token is a caller contract violation.
func ReadScrollHits[T any](c *Converter, resp SearchResponse) (SearchScrollHits[T], error) {
	start := time.Now()
	scroll, err := readScrollHits[T](c, resp)
	c.obs.observe("read_scroll", start, err)
	return scroll, err
}

func readHit[T any](c *Converter, raw SearchDocument) (SearchHit[T], error) {
	content, err := mapDocument[T](c, raw.Document)
	if err != nil {
		return SearchHit[T]{}, err
	}
	id := raw.ID
	if id == "" {
		if v, ok := raw.Get(IDField); ok {
			id, _ = v.(string)
		}
	}
	return SearchHit[T]{
		ID:         id,
		Index:      raw.Index,
		Version:    raw.Version,
		Score:      raw.Score,
		SortValues: raw.SortValues,
		Highlights: raw.Highlights,
		InnerHits:  raw.InnerHits,
		Content:    content,
	}, nil
}

func readHits[T any](c *Converter, resp SearchResponse) (SearchHits[T], error) {
	hits := make([]SearchHit[T], len(resp.Documents))
	for i := range resp.Documents {
		hit, err := readHit[T](c, resp.Documents[i])
		if err != nil {
			return SearchHits[T]{}, err
		}
		hits[i] = hit
	}
	return SearchHits[T]{
		TotalHits:         resp.TotalHits,
		TotalHitsRelation: resp.TotalHitsRelation,
		MaxScore:          resp.MaxScore,
		Hits:              hits,
		Aggregations:      resp.Aggregations,
		Suggest:           resp.Suggest,
	}, nil
}

func readScrollHits[T any](c *Converter, resp SearchResponse) (SearchScrollHits[T], error) {
	if resp.ScrollID == "" {
		return SearchScrollHits[T]{}, fmt.Errorf("%w: search response carries no scroll id", ErrInvalidArgument)
	}
	hits, err := readHits[T](c, resp)
	if err != nil {
		return SearchScrollHits[T]{}, err
	}
	return SearchScrollHits[T]{SearchHits: hits, ScrollID: resp.ScrollID}, nil
}
