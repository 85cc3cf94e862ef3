package redis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	elastic "github.com/spaisey/spring-data-elasticsearch"
)

// Search loads all documents of an index and filters them in memory against
// the query's criteria tree. Every match scores 1; TotalHits is the match
// count before paging.
func (s *Store) Search(ctx context.Context, index string, q *elastic.CriteriaQuery) (elastic.SearchResponse, error) {
	if q == nil {
		return elastic.SearchResponse{}, fmt.Errorf("%w: query must not be nil", elastic.ErrInvalidArgument)
	}
	matched, err := s.runQuery(ctx, index, q)
	if err != nil {
		return elastic.SearchResponse{}, err
	}

	resp := elastic.SearchResponse{
		TotalHits:         int64(len(matched)),
		TotalHitsRelation: "eq",
		MaxScore:          maxScore(matched),
		Documents:         window(matched, q.From, q.Size),
	}
	s.logger.Debug("search",
		zap.String("index", index),
		zap.Int64("total", resp.TotalHits),
		zap.Int("page", len(resp.Documents)))
	return resp, nil
}

// OpenScroll runs the query and keeps the full match list in memory behind an
// opaque token. keepAlive is accepted for interface parity and ignored;
// cursors live until ClearScroll or process exit.
func (s *Store) OpenScroll(ctx context.Context, index string, q *elastic.CriteriaQuery, _ time.Duration) (elastic.SearchResponse, error) {
	if q == nil {
		return elastic.SearchResponse{}, fmt.Errorf("%w: query must not be nil", elastic.ErrInvalidArgument)
	}
	matched, err := s.runQuery(ctx, index, q)
	if err != nil {
		return elastic.SearchResponse{}, err
	}

	size := q.Size
	if size <= 0 {
		size = 10
	}

	s.mu.Lock()
	s.seq++
	token := fmt.Sprintf("scroll-%d", s.seq)
	st := &scrollState{docs: matched, size: size}
	s.scrolls[token] = st
	page := st.next()
	s.mu.Unlock()

	return elastic.SearchResponse{
		TotalHits:         int64(len(matched)),
		TotalHitsRelation: "eq",
		MaxScore:          maxScore(matched),
		ScrollID:          token,
		Documents:         page,
	}, nil
}

// ContinueScroll returns the next page of an open cursor. Unknown tokens map
// to elastic.ErrInvalidArgument.
func (s *Store) ContinueScroll(_ context.Context, scrollID string, _ time.Duration) (elastic.SearchResponse, error) {
	s.mu.Lock()
	st, ok := s.scrolls[scrollID]
	if !ok {
		s.mu.Unlock()
		return elastic.SearchResponse{}, fmt.Errorf("%w: unknown scroll id %q", elastic.ErrInvalidArgument, scrollID)
	}
	page := st.next()
	total := int64(len(st.docs))
	s.mu.Unlock()

	return elastic.SearchResponse{
		TotalHits:         total,
		TotalHitsRelation: "eq",
		ScrollID:          scrollID,
		Documents:         page,
	}, nil
}

// ClearScroll drops a cursor. Clearing an unknown token is not an error.
func (s *Store) ClearScroll(_ context.Context, scrollID string) error {
	s.mu.Lock()
	delete(s.scrolls, scrollID)
	s.mu.Unlock()
	return nil
}

type scrollState struct {
	docs   []elastic.SearchDocument
	offset int
	size   int
}

func (st *scrollState) next() []elastic.SearchDocument {
	if st.offset >= len(st.docs) {
		return []elastic.SearchDocument{}
	}
	end := st.offset + st.size
	if end > len(st.docs) {
		end = len(st.docs)
	}
	page := st.docs[st.offset:end]
	st.offset = end
	return page
}

func (s *Store) runQuery(ctx context.Context, index string, q *elastic.CriteriaQuery) ([]elastic.SearchDocument, error) {
	ids, err := s.scanIDs(ctx, index)
	if err != nil {
		return nil, err
	}
	docs, err := s.MultiGet(ctx, index, ids)
	if err != nil {
		return nil, err
	}

	matched := make([]elastic.SearchDocument, 0, len(docs))
	for i, doc := range docs {
		if doc.IsEmpty() {
			// key vanished between SCAN and MGET
			continue
		}
		if !matchCriteria(q.Criteria, doc) {
			continue
		}
		matched = append(matched, elastic.SearchDocument{
			Document: doc,
			ID:       ids[i],
			Index:    index,
			Score:    1.0,
		})
	}
	return matched, nil
}

// scanIDs walks the keyspace of one index and returns the document ids in
// sorted order, so result pages are deterministic.
func (s *Store) scanIDs(ctx context.Context, index string) ([]string, error) {
	prefix := s.key(index, "")
	pattern := prefix + "*"

	var ids []string
	var cursor uint64
	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(256).Build()
		entry, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &Error{Op: OpScan, Err: err}
		}
		for _, k := range entry.Elements {
			ids = append(ids, strings.TrimPrefix(k, prefix))
		}
		cursor = entry.Cursor
		if cursor == 0 {
			break
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func maxScore(docs []elastic.SearchDocument) float64 {
	if len(docs) == 0 {
		return 0
	}
	return 1.0
}

func window(docs []elastic.SearchDocument, from, size int) []elastic.SearchDocument {
	if from < 0 {
		from = 0
	}
	if from >= len(docs) {
		return []elastic.SearchDocument{}
	}
	end := len(docs)
	if size > 0 && from+size < end {
		end = from + size
	}
	return docs[from:end]
}
