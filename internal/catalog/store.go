package catalog

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/mvandervelden/invoice-engine/internal/common"
)

// Store loads reference data from a relational database. Postgres DSNs
// get a pgx pool; anything else is treated as a sqlite path, which keeps
// local development free of external services.
type Store struct {
	db           *sql.DB
	pool         *pgxpool.Pool
	queryTimeout time.Duration
	logger       *slog.Logger
}

func OpenStore(ctx context.Context, dsn string, queryTimeout time.Duration, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}

	s := &Store{queryTimeout: queryTimeout, logger: logger}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		logger.Info("connecting to database", "dialect", "postgres")
		pc, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, common.NewAppError("DATABASE_ERROR", "parsing postgres dsn", err)
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "invoice-engine"
		pool, err := pgxpool.NewWithConfig(ctx, pc)
		if err != nil {
			return nil, common.NewAppError("DATABASE_ERROR", "connecting to postgres", err)
		}
		s.pool = pool
		s.db = stdlib.OpenDBFromPool(pool)
	} else {
		logger.Info("connecting to database", "dialect", "sqlite")
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, common.NewAppError("DATABASE_ERROR", "opening sqlite database", err)
		}
		s.db = db
	}

	if err := s.db.PingContext(ctx); err != nil {
		s.Close()
		return nil, common.NewAppError("DATABASE_ERROR", "pinging database", err)
	}
	logger.Info("successfully connected to database")
	return s, nil
}

// Close releases the underlying connections.
func (s *Store) Close() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("failed to close database", "error", err)
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// Load reads all four reference tables into one immutable Catalog.
func (s *Store) Load(ctx context.Context) (*Catalog, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	c := &Catalog{}
	if err := s.loadSuppliers(ctx, c); err != nil {
		return nil, err
	}
	if err := s.loadCompanies(ctx, c); err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, c); err != nil {
		return nil, err
	}
	if err := s.loadCurrencies(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("catalog.load.ok",
		"suppliers", len(c.Suppliers),
		"companies", len(c.Companies),
		"items", len(c.Items),
		"currencies", len(c.Currencies),
	)
	return c, nil
}

func (s *Store) loadSuppliers(ctx context.Context, c *Catalog) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(tax_id, ''), COALESCE(country, '') FROM suppliers ORDER BY name`)
	if err != nil {
		return common.NewAppError("DATABASE_ERROR", "querying suppliers", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sup Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.TaxID, &sup.Country); err != nil {
			return common.NewAppError("DATABASE_ERROR", "scanning supplier row", err)
		}
		c.Suppliers = append(c.Suppliers, sup)
	}
	return rows.Err()
}

func (s *Store) loadCompanies(ctx context.Context, c *Catalog) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(country, '') FROM companies ORDER BY name`)
	if err != nil {
		return common.NewAppError("DATABASE_ERROR", "querying companies", err)
	}
	defer rows.Close()
	for rows.Next() {
		var co Company
		if err := rows.Scan(&co.ID, &co.Name, &co.Country); err != nil {
			return common.NewAppError("DATABASE_ERROR", "scanning company row", err)
		}
		c.Companies = append(c.Companies, co)
	}
	return rows.Err()
}

func (s *Store) loadItems(ctx context.Context, c *Catalog) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(uom, '') FROM items ORDER BY name`)
	if err != nil {
		return common.NewAppError("DATABASE_ERROR", "querying items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.UOM); err != nil {
			return common.NewAppError("DATABASE_ERROR", "scanning item row", err)
		}
		c.Items = append(c.Items, it)
	}
	return rows.Err()
}

func (s *Store) loadCurrencies(ctx context.Context, c *Catalog) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, COALESCE(symbol, '') FROM currencies ORDER BY code`)
	if err != nil {
		return common.NewAppError("DATABASE_ERROR", "querying currencies", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cur Currency
		if err := rows.Scan(&cur.Code, &cur.Symbol); err != nil {
			return common.NewAppError("DATABASE_ERROR", "scanning currency row", err)
		}
		c.Currencies = append(c.Currencies, cur)
	}
	return rows.Err()
}
