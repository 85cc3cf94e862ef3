// Package redis implements elastic.Backend on Redis via rueidis. Documents
// are stored as JSON strings keyed "{prefix}:{index}:{id}"; search filters
// documents against the rewritten criteria tree. It is a reference
// collaborator for the mapper, not a full search engine: every hit scores 1
// and scroll cursors live in process memory.
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	elastic "github.com/spaisey/spring-data-elasticsearch"
)

// Compile-time check: Store implements elastic.Backend.
var _ elastic.Backend = (*Store)(nil)

const defaultKeyPrefix = "es"

// Config holds connection parameters for the store.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string      // defaults to "es"
	Logger    *zap.Logger // defaults to zap.NewNop()
}

// Store implements elastic.Backend via rueidis.
type Store struct {
	client rueidis.Client
	prefix string
	logger *zap.Logger

	mu      sync.Mutex
	scrolls map[string]*scrollState
	seq     uint64
}

// New creates a Redis store via rueidis.
func New(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s := newStore(client)
	if cfg.KeyPrefix != "" {
		s.prefix = cfg.KeyPrefix
	}
	if cfg.Logger != nil {
		s.logger = cfg.Logger
	}
	return s, nil
}

// NewStoreForTest creates a Store with the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client) *Store {
	return newStore(c)
}

func newStore(c rueidis.Client) *Store {
	return &Store{
		client:  c,
		prefix:  defaultKeyPrefix,
		logger:  zap.NewNop(),
		scrolls: map[string]*scrollState{},
	}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.b().Ping().Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// key builds the storage key for a document.
func (s *Store) key(index, id string) string {
	return s.prefix + ":" + index + ":" + id
}
