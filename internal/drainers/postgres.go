package drainers

import (
	"context"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duragraph/mdf/internal/mdf"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresConfig holds connection parameters for a Postgres drainer,
// grounded on the teacher's persistence/postgres.Config.
type PostgresConfig struct {
	Host, User, Password, Database, SSLMode string
	Port                                    int
}

func (c PostgresConfig) dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

func (c PostgresConfig) migrateURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// Postgres persists every terminal token as a row in mdf_results. Grounded
// on the teacher's persistence/postgres pool construction (MaxConns 25 /
// MinConns 5, ping-on-open), with golang-migrate applying the schema at
// startup instead of assuming it pre-exists.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres opens a pool against cfg, applies pending migrations, and
// returns a ready Drainer.
func NewPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("drainers: parsing postgres config: %w", err)
	}
	poolCfg.MaxConns = 25
	poolCfg.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("drainers: opening postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("drainers: pinging postgres: %w", err)
	}

	if err := migrateUp(cfg.migrateURL()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("drainers: migrating postgres: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func migrateUp(databaseURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func (p *Postgres) Accept(ctx context.Context, nodeID mdf.NodeId, tok mdf.Token) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO mdf_results (node_id, value) VALUES ($1, $2)`,
		int(nodeID), fmt.Sprintf("%v", tok.Value()))
	return err
}

// Close releases the connection pool.
func (p *Postgres) Close() { p.pool.Close() }
