package postgres

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	DefaultMaxConns       = 4
	DefaultConnectTimeout = 5 * time.Second
)

// PostgresDB owns a lazily created pgx connection pool.
type PostgresDB struct {
	cfg    *config.DatabaseConfig
	logger *log.Log

	poolMu sync.Mutex
	pool   *pgxpool.Pool
}

// NewPostgresDB creates an adapter for cfg. No connection is made until Connect.
func NewPostgresDB(cfg *config.DatabaseConfig, logger *log.Log) *PostgresDB {
	if logger == nil {
		logger = log.NewNop()
	}
	return &PostgresDB{cfg: cfg, logger: logger.With(log.Component("postgres"))}
}

// BuildDSN returns cfg.URL when set, otherwise a postgresql:// URL assembled from the parts.
func BuildDSN(cfg *config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	if cfg.Port > 0 {
		host = host + ":" + strconv.Itoa(cfg.Port)
	}

	dsn := url.URL{
		Scheme: "postgresql",
		Host:   host,
		Path:   "/" + cfg.Database,
	}
	if cfg.Username != "" {
		dsn.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	if cfg.SSLMode != "" {
		dsn.RawQuery = url.Values{"sslmode": {cfg.SSLMode}}.Encode()
	}
	return dsn.String()
}

// Connect establishes the pool and pings the server. Calling it again reuses the pool.
func (p *PostgresDB) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	p.poolMu.Lock()
	defer p.poolMu.Unlock()

	if p.pool != nil {
		return p.pool, nil
	}

	poolCfg, err := pgxpool.ParseConfig(BuildDSN(p.cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	poolCfg.MaxConns = DefaultMaxConns
	if p.cfg.MaxConns > 0 {
		poolCfg.MaxConns = p.cfg.MaxConns
	}
	poolCfg.ConnConfig.ConnectTimeout = DefaultConnectTimeout
	if p.cfg.Timeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = p.cfg.Timeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	p.pool = pool
	p.logger.Info("Connected to PostgreSQL", log.String("database", p.cfg.Database))
	return pool, nil
}

// Close closes the pool if it was opened.
func (p *PostgresDB) Close() {
	p.poolMu.Lock()
	defer p.poolMu.Unlock()

	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
}
