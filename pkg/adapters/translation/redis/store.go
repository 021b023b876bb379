package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/lattice/pkg/ports"
)

// Store implements ports.TranslationStore using Redis.
// Each language is a hash "<prefix><lang>"; a set "<prefix>index" lists languages.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ ports.TranslationStore = (*Store)(nil)

type Option func(*Store)

// WithTTL sets the expiration of a table, refreshed on every Save.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "lattice:translation:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(lang string) string {
	return s.prefix + lang
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Load retrieves the table of a language.
func (s *Store) Load(ctx context.Context, lang string) (map[string]string, error) {
	table, err := s.client.HGetAll(ctx, s.key(lang)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: %s", ports.ErrTableNotFound, lang)
	}
	return table, nil
}

// Save merges entries into the hash of a language.
func (s *Store) Save(ctx context.Context, lang string, entries map[string]string) error {
	if lang == "" {
		return fmt.Errorf("language cannot be empty")
	}
	if len(entries) == 0 {
		return nil
	}
	values := make(map[string]any, len(entries))
	for k, v := range entries {
		values[k] = v
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(lang), values)
	pipe.SAdd(ctx, s.indexKey(), lang)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(lang), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Languages lists languages whose table still exists. Index entries of
// expired tables are pruned.
func (s *Store) Languages(ctx context.Context) ([]string, error) {
	members, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list languages: %w", err)
	}
	langs := make([]string, 0, len(members))
	for _, lang := range members {
		n, err := s.client.Exists(ctx, s.key(lang)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check table %s: %w", lang, err)
		}
		if n == 0 {
			if err := s.client.SRem(ctx, s.indexKey(), lang).Err(); err != nil {
				return nil, fmt.Errorf("failed to prune expired table %s: %w", lang, err)
			}
			continue
		}
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs, nil
}

// Delete removes the table of a language.
func (s *Store) Delete(ctx context.Context, lang string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(lang))
	pipe.SRem(ctx, s.indexKey(), lang)
	_, err := pipe.Exec(ctx)
	return err
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
