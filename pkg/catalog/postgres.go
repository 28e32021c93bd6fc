package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matst80/store-locator/pkg/geo"
	"github.com/matst80/store-locator/pkg/stores"
	"github.com/pkg/errors"
)

const selectStores = `SELECT id, name, address, phone, hours, latitude, longitude, products
  FROM stores
 WHERE country = $1
 ORDER BY position, id`

// Querier is the part of *pgxpool.Pool the provider needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PostgresProvider struct {
	db      Querier
	country string
}

func NewPostgresProvider(db Querier, country string) *PostgresProvider {
	return &PostgresProvider{db: db, country: country}
}

func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse database url")
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create pgx pool")
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return pool, nil
}

func (p *PostgresProvider) Load(ctx context.Context) ([]stores.Store, error) {
	rows, err := p.db.Query(ctx, selectStores, p.country)
	if err != nil {
		return nil, errors.Wrap(err, "query stores")
	}
	return scanStores(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

func scanStores(rows rowScanner) ([]stores.Store, error) {
	defer rows.Close()
	all := []stores.Store{}
	for rows.Next() {
		var (
			s        stores.Store
			lat, lng float64
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.Hours, &lat, &lng, &s.Products); err != nil {
			return nil, errors.Wrap(err, "scan store")
		}
		s.Location = &geo.Location{Latitude: lat, Longitude: lng}
		all = append(all, s)
	}
	return all, errors.Wrap(rows.Err(), "iterate stores")
}
