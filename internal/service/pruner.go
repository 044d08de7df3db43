package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/initcareer/init-web/config"
	"github.com/initcareer/init-web/internal/observability/metrics"
)

// ExpiredRowPruner deletes up to batchSize expired rows and reports how many went.
type ExpiredRowPruner interface {
	DeleteExpired(ctx context.Context, batchSize int) (int64, error)
}

// StoragePrunerOptions groups dependencies for StoragePruner.
type StoragePrunerOptions struct {
	Repo    ExpiredRowPruner    // Required
	Config  config.PrunerConfig // Required
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// StoragePruner periodically removes expired session-tier rows from Postgres.
// Redis and the in-memory store expire keys on their own.
type StoragePruner struct {
	repo    ExpiredRowPruner
	config  config.PrunerConfig
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewStoragePruner constructs a new StoragePruner.
func NewStoragePruner(opts StoragePrunerOptions) (*StoragePruner, error) {
	if opts.Repo == nil {
		return nil, errors.New("storage pruner repository is required")
	}
	cfg := opts.Config
	cfg.Sanitize()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "storage_pruner")
	logger.Debug("StoragePruner initialized", "interval", cfg.Interval, "batch_size", cfg.BatchSize)

	return &StoragePruner{repo: opts.Repo, config: cfg, logger: logger, metrics: opts.Metrics}, nil
}

// Run prunes once after a short jitter and then on every interval until ctx is cancelled.
// Returns nil on graceful shutdown.
func (p *StoragePruner) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "starting storage pruner", "interval", p.config.Interval)

	p.waitWithJitter(ctx)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	if _, err := p.RunOnce(ctx); err != nil && !isContextCancellation(err) {
		p.logger.ErrorContext(ctx, "initial prune failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.InfoContext(ctx, "storage pruner stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.RunOnce(ctx); err != nil && !isContextCancellation(err) {
				p.logger.ErrorContext(ctx, "prune failed", "error", err)
			}
		}
	}
}

// RunOnce deletes expired rows batch by batch until a short batch signals the end.
func (p *StoragePruner) RunOnce(ctx context.Context) (int64, error) {
	var total int64
	for {
		n, err := p.repo.DeleteExpired(ctx, p.config.BatchSize)
		total += n
		if err != nil {
			err = fmt.Errorf("delete expired storage rows: %w", err)
			p.metrics.PrunerRun(total, suppressContextCancellation(err))
			return total, err
		}
		if n < int64(p.config.BatchSize) {
			break
		}
		if ctx.Err() != nil {
			p.metrics.PrunerRun(total, nil)
			return total, ctx.Err()
		}
	}

	if total > 0 {
		p.logger.InfoContext(ctx, "pruned expired storage rows", "count", total)
	}
	p.metrics.PrunerRun(total, nil)
	return total, nil
}

// waitWithJitter delays up to 10% of the interval so replicas do not prune in lockstep.
func (p *StoragePruner) waitWithJitter(ctx context.Context) {
	maxJitter := int64(p.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		p.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}
	jitter := time.Duration(int64(binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter))) // #nosec G115 - bounded by maxJitter

	timer := time.NewTimer(jitter)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func isContextCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func suppressContextCancellation(err error) error {
	if isContextCancellation(err) {
		return nil
	}
	return err
}
