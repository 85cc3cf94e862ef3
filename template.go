package elastic

import (
	"context"
	"fmt"
	"time"
)

// Backend is the document-retrieval collaborator: it supplies raw documents
// and raw search responses and persists documents the mapper produces. The
// mapper never initiates retrieval on its own.
//
// GetDocument returns ErrNotFound for missing documents; MultiGet returns an
// empty Document in place of each missing id.
type Backend interface {
	GetDocument(ctx context.Context, index, id string) (Document, error)
	MultiGet(ctx context.Context, index string, ids []string) ([]Document, error)
	IndexDocument(ctx context.Context, index, id string, doc Document) error
	DeleteDocument(ctx context.Context, index, id string) error

	Search(ctx context.Context, index string, q *CriteriaQuery) (SearchResponse, error)
	OpenScroll(ctx context.Context, index string, q *CriteriaQuery, keepAlive time.Duration) (SearchResponse, error)
	ContinueScroll(ctx context.Context, scrollID string, keepAlive time.Duration) (SearchResponse, error)
	ClearScroll(ctx context.Context, scrollID string) error
}

// Template combines a Backend with a Converter into typed document
// operations.
type Template struct {
	backend Backend
	conv    *Converter
}

// NewTemplate creates a Template.
func NewTemplate(backend Backend, conv *Converter) (*Template, error) {
	if backend == nil || conv == nil {
		return nil, fmt.Errorf("%w: backend and converter must not be nil", ErrInvalidArgument)
	}
	return &Template{backend: backend, conv: conv}, nil
}

// Converter returns the template's converter.
func (t *Template) Converter() *Converter { return t.conv }

// Get retrieves a document by id and maps it to T. Returns ErrNotFound when
// the document does not exist.
func Get[T any](ctx context.Context, t *Template, index, id string) (*T, error) {
	doc, err := t.backend.GetDocument(ctx, index, id)
	if err != nil {
		return nil, err
	}
	return MapDocument[T](t.conv, doc)
}

// MultiGet retrieves several documents by id, preserving order and length.
// Missing documents yield nil entries.
func MultiGet[T any](ctx context.Context, t *Template, index string, ids []string) ([]*T, error) {
	docs, err := t.backend.MultiGet(ctx, index, ids)
	if err != nil {
		return nil, err
	}
	return MapDocuments[T](t.conv, docs)
}

// Search rewrites the criteria query against T's metadata, executes it, and
// materializes the response into typed hits.
func Search[T any](ctx context.Context, t *Template, index string, q *CriteriaQuery) (SearchHits[T], error) {
	var sample T
	if err := t.conv.UpdateQuery(q, &sample); err != nil {
		return SearchHits[T]{}, err
	}
	resp, err := t.backend.Search(ctx, index, q)
	if err != nil {
		return SearchHits[T]{}, err
	}
	return ReadHits[T](t.conv, resp)
}

// SearchStartScroll opens a scrolling search and materializes the first page.
func SearchStartScroll[T any](ctx context.Context, t *Template, index string, q *CriteriaQuery, keepAlive time.Duration) (SearchScrollHits[T], error) {
	var sample T
	if err := t.conv.UpdateQuery(q, &sample); err != nil {
		return SearchScrollHits[T]{}, err
	}
	resp, err := t.backend.OpenScroll(ctx, index, q, keepAlive)
	if err != nil {
		return SearchScrollHits[T]{}, err
	}
	return ReadScrollHits[T](t.conv, resp)
}

// SearchContinueScroll materializes the next page of a scrolling search.
func SearchContinueScroll[T any](ctx context.Context, t *Template, scrollID string, keepAlive time.Duration) (SearchScrollHits[T], error) {
	resp, err := t.backend.ContinueScroll(ctx, scrollID, keepAlive)
	if err != nil {
		return SearchScrollHits[T]{}, err
	}
	return ReadScrollHits[T](t.conv, resp)
}

// ClearScroll releases a scroll cursor.
func (t *Template) ClearScroll(ctx context.Context, scrollID string) error {
	return t.backend.ClearScroll(ctx, scrollID)
}

// Save maps an entity to a document and indexes it under its identifier.
// The entity must have a non-zero identifier property.
func (t *Template) Save(ctx context.Context, index string, entity any) (string, error) {
	doc, err := t.conv.MapObject(entity)
	if err != nil {
		return "", err
	}
	idv, ok := doc.Get(IDField)
	if !ok {
		return "", fmt.Errorf("%w: entity has no identifier", ErrInvalidArgument)
	}
	id, _ := idv.(string)
	if id == "" {
		return "", fmt.Errorf("%w: entity has no identifier", ErrInvalidArgument)
	}
	if err := t.backend.IndexDocument(ctx, index, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a document by id.
func (t *Template) Delete(ctx context.Context, index, id string) error {
	return t.backend.DeleteDocument(ctx, index, id)
}
