package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/typeguard/internal/config"
	"github.com/aretw0/typeguard/pkg/adapters/file"
	httpAdapter "github.com/aretw0/typeguard/pkg/adapters/http"
	"github.com/aretw0/typeguard/pkg/adapters/memory"
	"github.com/aretw0/typeguard/pkg/adapters/redis"
	"github.com/aretw0/typeguard/pkg/checker"
	"github.com/aretw0/typeguard/pkg/observability"
	"github.com/aretw0/typeguard/pkg/persistence/middleware"
	"github.com/aretw0/typeguard/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// OpenLoader returns the signature library in dir, or nil when dir is empty.
func OpenLoader(dir string) ports.SignatureLoader {
	if dir == "" {
		return nil
	}
	return file.NewLoader(dir)
}

// OpenSink builds the report sink selected by cfg. The returned close func
// is never nil. A nil sink means reports are not kept.
func OpenSink(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.ReportSink, func() error, error) {
	sink, closeSink, err := openBackend(ctx, cfg, logger)
	if err != nil || sink == nil {
		return sink, closeSink, err
	}
	mws, err := sinkMiddlewares(cfg)
	if err != nil {
		_ = closeSink()
		return nil, func() error { return nil }, err
	}
	return middleware.Chain(sink, mws...), closeSink, nil
}

func openBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.ReportSink, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Sink {
	case config.SinkNone:
		return nil, noop, nil
	case config.SinkMemory:
		logger.Debug("Report sink: memory", "limit", cfg.ReportLimit)
		return memory.NewSink(memory.WithLimit(cfg.ReportLimit)), noop, nil
	case config.SinkFile:
		logger.Debug("Report sink: file", "dir", cfg.ReportsDir)
		return file.NewSink(cfg.ReportsDir), noop, nil
	case config.SinkRedis:
		opts := []redis.Option{
			redis.WithTTL(cfg.ReportTTL),
			redis.WithMaxLen(int64(cfg.ReportLimit)),
		}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		sink := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := sink.Ping(ctx); err != nil {
			_ = sink.Close()
			return nil, noop, err
		}
		logger.Debug("Report sink: redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		return sink, sink.Close, nil
	}
	return nil, noop, fmt.Errorf("%w: sink %q", config.ErrInvalidConfig, cfg.Sink)
}

// sinkMiddlewares redacts before it encrypts.
func sinkMiddlewares(cfg config.Config) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		mw, err := middleware.NewRedactMiddleware(cfg.Redact)
		if err != nil {
			return nil, fmt.Errorf("%w: redact pattern: %v", config.ErrInvalidConfig, err)
		}
		mws = append(mws, mw)
	}
	if cfg.ReportKey != "" {
		active, err := decodeKey(cfg.ReportKey)
		if err != nil {
			return nil, err
		}
		enc := middleware.EncryptionConfig{ActiveKey: active}
		for _, k := range cfg.ReportFallbackKeys {
			fallback, err := decodeKey(k)
			if err != nil {
				return nil, err
			}
			enc.FallbackKeys = append(enc.FallbackKeys, fallback)
		}
		mw, err := middleware.NewEncryptionMiddleware(enc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
		}
		mws = append(mws, mw)
	}
	return mws, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: report key is not base64: %v", config.ErrInvalidConfig, err)
	}
	return key, nil
}

// Stack is the checking core wired with its backends, shared by the serve
// and mcp commands.
type Stack struct {
	Checker  *checker.Checker
	Loader   ports.SignatureLoader
	Sink     ports.ReportSink
	Streams  *httpAdapter.StreamManager
	Registry *prometheus.Registry
	Logger   *slog.Logger

	closeSink func() error
}

// NewStack builds the stack described by cfg.
func NewStack(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Stack, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	sink, closeSink, err := OpenSink(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	s := &Stack{
		Loader:    OpenLoader(cfg.Signatures),
		Sink:      sink,
		Streams:   httpAdapter.NewStreamManager(),
		Registry:  reg,
		Logger:    logger,
		closeSink: closeSink,
	}

	opts := []checker.Option{
		checker.WithLogger(logger),
		checker.WithHooks(metrics.Hooks()),
		checker.WithHooks(observability.LogHooks(logger)),
		checker.WithHooks(s.Streams.Hooks()),
	}
	if s.Loader != nil {
		opts = append(opts, checker.WithLoader(s.Loader))
	}
	if sink != nil {
		opts = append(opts, checker.WithHooks(observability.SinkHooks(sink, logger)))
	}
	s.Checker = checker.New(opts...)
	return s, nil
}

// Handler returns the HTTP API for the stack.
func (s *Stack) Handler() http.Handler {
	opts := []httpAdapter.Option{
		httpAdapter.WithStreams(s.Streams),
		httpAdapter.WithGatherer(s.Registry),
		httpAdapter.WithLogger(s.Logger),
	}
	if s.Sink != nil {
		opts = append(opts, httpAdapter.WithSink(s.Sink))
	}
	return httpAdapter.NewHandler(s.Checker, opts...)
}

// Close releases the sink.
func (s *Stack) Close() error {
	return s.closeSink()
}
