package elastic

import (
	"errors"
	"testing"
)

func personSearchDoc(id, lastName string, score float64) SearchDocument {
	doc := NewDocument()
	doc.Put("last_name", lastName)
	return SearchDocument{
		Document: doc,
		ID:       id,
		Index:    "people",
		Score:    score,
	}
}

func TestReadHit_MapsContentAndMetadata(t *testing.T) {
	conv := newTestConverter(t)
	raw := personSearchDoc("p-1", "Smith", 2.5)
	raw.Version = 3
	raw.SortValues = []any{"Smith"}
	raw.Highlights = map[string][]string{"last_name": {"<em>Smith</em>"}}

	hit, err := ReadHit[testPerson](conv, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit.ID != "p-1" || hit.Index != "people" || hit.Version != 3 || hit.Score != 2.5 {
		t.Errorf("unexpected metadata: %+v", hit)
	}
	if hit.Content == nil || hit.Content.LastName != "Smith" {
		t.Errorf("unexpected content: %+v", hit.Content)
	}
	if len(hit.Highlights["last_name"]) != 1 {
		t.Errorf("unexpected highlights: %v", hit.Highlights)
	}
}

func TestReadHit_NoPayloadYieldsNilContent(t *testing.T) {
	conv := newTestConverter(t)
	raw := SearchDocument{ID: "p-1", Index: "people", Score: 1.0}

	hit, err := ReadHit[testPerson](conv, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit.Content != nil {
		t.Errorf("expected nil content, got %+v", hit.Content)
	}
	if hit.ID != "p-1" || hit.Score != 1.0 {
		t.Errorf("metadata must survive without payload: %+v", hit)
	}
}

func TestReadHit_IDFallsBackToDocumentField(t *testing.T) {
	conv := newTestConverter(t)
	doc := NewDocument()
	doc.Put(IDField, "from-doc")
	doc.Put("last_name", "Smith")

	hit, err := ReadHit[testPerson](conv, SearchDocument{Document: doc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit.ID != "from-doc" {
		t.Errorf("ID = %q, want from-doc", hit.ID)
	}
}

func TestReadHits_TotalsVerbatim(t *testing.T) {
	conv := newTestConverter(t)
	resp := SearchResponse{
		TotalHits:         1000, // backend-reported, intentionally > len(hits)
		TotalHitsRelation: "gte",
		MaxScore:          4.2,
		Documents: []SearchDocument{
			personSearchDoc("p-1", "Smith", 4.2),
			personSearchDoc("p-2", "Jones", 1.1),
		},
		Aggregations: map[string]any{"by_city": map[string]any{}},
	}

	hits, err := ReadHits[testPerson](conv, resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.TotalHits != 1000 || hits.TotalHitsRelation != "gte" {
		t.Errorf("totals not copied verbatim: %+v", hits)
	}
	if len(hits.Hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits.Hits))
	}
	if hits.Hits[0].Content.LastName != "Smith" || hits.Hits[1].Content.LastName != "Jones" {
		t.Errorf("hit order not preserved: %+v", hits.Hits)
	}
	if hits.MaxScore != 4.2 {
		t.Errorf("MaxScore = %v", hits.MaxScore)
	}
	if _, ok := hits.Aggregations["by_city"]; !ok {
		t.Error("aggregations must pass through")
	}
}

func TestReadHits_Empty(t *testing.T) {
	conv := newTestConverter(t)
	hits, err := ReadHits[testPerson](conv, SearchResponse{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits.Hits) != 0 || hits.TotalHits != 0 {
		t.Errorf("unexpected hits: %+v", hits)
	}
}

func TestReadHits_ConversionErrorPropagates(t *testing.T) {
	conv := newTestConverter(t)
	bad := NewDocument()
	bad.Put("tags", "not a sequence")

	_, err := ReadHits[testPerson](conv, SearchResponse{
		Documents: []SearchDocument{{Document: bad}},
	})
	if !errors.Is(err, ErrConversion) {
		t.Fatalf("expected ErrConversion, got %v", err)
	}
}

func TestReadScrollHits_PassesToken(t *testing.T) {
	conv := newTestConverter(t)
	resp := SearchResponse{
		TotalHits: 1,
		ScrollID:  "scroll-42",
		Documents: []SearchDocument{personSearchDoc("p-1", "Smith", 1.0)},
	}

	scroll, err := ReadScrollHits[testPerson](conv, resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scroll.ScrollID != "scroll-42" {
		t.Errorf("ScrollID = %q", scroll.ScrollID)
	}
	if len(scroll.Hits) != 1 {
		t.Errorf("expected 1 hit, got %d", len(scroll.Hits))
	}
}

func TestReadScrollHits_MissingToken(t *testing.T) {
	conv := newTestConverter(t)
	_, err := ReadScrollHits[testPerson](conv, SearchResponse{TotalHits: 1})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
