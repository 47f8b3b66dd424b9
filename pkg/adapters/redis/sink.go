package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/typeguard/pkg/ports"
	"github.com/aretw0/typeguard/pkg/violation"
	backend "github.com/redis/go-redis/v9"
)

// Sink implements ports.ReportSink using Redis. Reports are stored as JSON
// strings and indexed in a sorted set scored by creation time.
type Sink struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	maxLen int64
}

type Option func(*Sink)

// WithTTL sets the expiration for reports.
func WithTTL(ttl time.Duration) Option {
	return func(s *Sink) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for reports.
func WithPrefix(prefix string) Option {
	return func(s *Sink) {
		s.prefix = prefix
	}
}

// WithMaxLen keeps only the newest n reports. Zero means unbounded.
func WithMaxLen(n int64) Option {
	return func(s *Sink) {
		s.maxLen = n
	}
}

// New creates a new Redis sink with options.
func New(address, password string, db int, opts ...Option) *Sink {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis sink from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Sink {
	sink := &Sink{
		client: client,
		prefix: "typeguard:report:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(sink)
	}

	return sink
}

func (s *Sink) key(id string) string {
	return s.prefix + id
}

func (s *Sink) indexKey() string {
	return s.prefix + "index"
}

// Record persists the report to Redis.
func (s *Sink) Record(ctx context.Context, report violation.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(report.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(report.CreatedAt.UnixMicro()),
		Member: report.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	if s.maxLen > 0 {
		return s.trim(ctx)
	}
	return nil
}

// trim drops the oldest reports beyond maxLen.
func (s *Sink) trim(ctx context.Context) error {
	evicted, err := s.client.ZRange(ctx, s.indexKey(), 0, -(s.maxLen + 1)).Result()
	if err != nil {
		return fmt.Errorf("failed to trim reports: %w", err)
	}
	if len(evicted) == 0 {
		return nil
	}
	return s.remove(ctx, evicted...)
}

func (s *Sink) remove(ctx context.Context, ids ...string) error {
	keys := make([]string, len(ids))
	members := make([]any, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
		members[i] = id
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, keys...)
	pipe.ZRem(ctx, s.indexKey(), members...)
	_, err := pipe.Exec(ctx)
	return err
}

// Load retrieves the report from Redis.
func (s *Sink) Load(ctx context.Context, id string) (violation.Report, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return violation.Report{}, ports.ErrReportNotFound
		}
		return violation.Report{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var report violation.Report
	if err := json.Unmarshal([]byte(val), &report); err != nil {
		return violation.Report{}, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return report, nil
}

// Recent returns up to limit reports, newest first.
// Index entries whose report expired are removed lazily.
func (s *Sink) Recent(ctx context.Context, limit int) ([]violation.Report, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	if len(ids) == 0 {
		return []violation.Report{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}

	reports := make([]violation.Report, 0, len(ids))
	var expired []any
	for i, val := range vals {
		str, ok := val.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		if limit > 0 && len(reports) == limit {
			continue
		}
		var report violation.Report
		if err := json.Unmarshal([]byte(str), &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report %s: %w", ids[i], err)
		}
		reports = append(reports, report)
	}

	if len(expired) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), expired...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune expired reports: %w", err)
		}
	}
	return reports, nil
}

// Delete removes the report.
func (s *Sink) Delete(ctx context.Context, id string) error {
	return s.remove(ctx, id)
}

// Close closes the redis client.
func (s *Sink) Close() error {
	return s.client.Close()
}

// Ping checks that the server is reachable.
func (s *Sink) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}
	return nil
}
