package pg

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ConnectionConfig holds PostgreSQL connection configuration
type ConnectionConfig struct {
	URI             string        `yaml:"uri" env:"MONCFG_PG_URI"`
	MaxConns        int32         `yaml:"maxConns" env:"MONCFG_PG_MAX_CONNS"`
	MinConns        int32         `yaml:"minConns" env:"MONCFG_PG_MIN_CONNS"`
	MaxConnLifetime time.Duration `yaml:"maxConnLifetime"`
	MaxConnIdleTime time.Duration `yaml:"maxConnIdleTime"`
	ConnectTimeout  time.Duration `yaml:"connectTimeout"`
	// RetryBudget bounds the total time spent retrying the initial connection
	RetryBudget time.Duration `yaml:"retryBudget" env:"MONCFG_PG_RETRY_BUDGET"`
}

// DefaultConnectionConfig returns production-ready defaults
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxConns:        10,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 15 * time.Minute,
		ConnectTimeout:  5 * time.Second,
		RetryBudget:     30 * time.Second,
	}
}

// connect opens a pool and pings it, retrying transient failures with exponential backoff
func connect(ctx context.Context, cfg ConnectionConfig) (*pgxpool.Pool, error) {
	conf, err := pgxpool.ParseConfig(cfg.URI)
	if err != nil {
		return nil, errors.WithMessage(err, "parse config")
	}
	if cfg.MaxConns > 0 {
		conf.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		conf.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		conf.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		conf.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.ConnectTimeout > 0 {
		conf.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = cfg.RetryBudget

	var pool *pgxpool.Pool
	attempt := 0
	op := func() error {
		attempt++
		p, err := pgxpool.NewWithConfig(ctx, conf)
		if err != nil {
			return errors.WithMessage(err, "create pool")
		}
		if err = p.Ping(ctx); err != nil {
			p.Close()
			klog.V(2).Infof("postgres ping attempt %d failed: %v", attempt, err)
			return errors.WithMessage(err, "ping")
		}
		pool = p
		return nil
	}
	if err = backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	klog.Infof("postgres connection established to %s after %d attempt(s)", conf.ConnConfig.Host, attempt)
	return pool, nil
}
