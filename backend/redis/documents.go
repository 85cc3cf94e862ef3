package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	elastic "github.com/spaisey/spring-data-elasticsearch"
)

// GetDocument fetches one document. Missing keys map to elastic.ErrNotFound.
func (s *Store) GetDocument(ctx context.Context, index, id string) (elastic.Document, error) {
	cmd := s.b().Get().Key(s.key(index, id)).Build()
	raw, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return elastic.Document{}, fmt.Errorf("%w: document %s/%s", elastic.ErrNotFound, index, id)
		}
		return elastic.Document{}, &Error{Op: OpGet, Err: err}
	}
	return decodeDocument(raw, index, id)
}

// MultiGet fetches several documents in one round trip. The result has one
// entry per id, in order; missing ids yield empty documents.
func (s *Store) MultiGet(ctx context.Context, index string, ids []string) ([]elastic.Document, error) {
	if len(ids) == 0 {
		return []elastic.Document{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(index, id)
	}

	cmd := s.b().Mget().Key(keys...).Build()
	msgs, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &Error{Op: OpMGet, Err: err}
	}

	docs := make([]elastic.Document, len(ids))
	for i, msg := range msgs {
		raw, err := msg.ToString()
		if err != nil {
			// nil reply: document absent
			docs[i] = elastic.NewDocument()
			continue
		}
		doc, err := decodeDocument(raw, index, ids[i])
		if err != nil {
			return nil, err
		}
		docs[i] = doc
	}
	return docs, nil
}

// IndexDocument stores a document as a JSON string, replacing any previous
// version.
func (s *Store) IndexDocument(ctx context.Context, index, id string, doc elastic.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", index, id, err)
	}

	cmd := s.b().Set().Key(s.key(index, id)).Value(string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &Error{Op: OpSet, Err: err}
	}
	s.logger.Debug("indexed document",
		zap.String("index", index),
		zap.String("id", id),
		zap.Int("bytes", len(data)))
	return nil
}

// DeleteDocument removes a document. Deleting a missing document is not an
// error.
func (s *Store) DeleteDocument(ctx context.Context, index, id string) error {
	cmd := s.b().Del().Key(s.key(index, id)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &Error{Op: OpDel, Err: err}
	}
	return nil
}

func decodeDocument(raw, index, id string) (elastic.Document, error) {
	var doc elastic.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return elastic.Document{}, fmt.Errorf("decode document %s/%s: %w", index, id, err)
	}
	return doc, nil
}
