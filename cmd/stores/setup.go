package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matst80/store-locator/pkg/cache"
	"github.com/matst80/store-locator/pkg/catalog"
	"github.com/matst80/store-locator/pkg/common"
	"github.com/matst80/store-locator/pkg/config"
	"github.com/matst80/store-locator/pkg/location"
	"github.com/matst80/store-locator/pkg/logger"
	"github.com/matst80/store-locator/pkg/storage"
)

func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if cfg.Redis.Addr == "" {
		logger.Get().Info("no redis configured, using in-memory cache")
		return cache.NewMemoryCache(), nil
	}
	rc := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, "storelocator:"+cfg.Country)
	if err := rc.Ping(ctx); err != nil {
		rc.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
	}
	return rc, nil
}

// newProvider returns the configured catalog source and, for postgres, the
// pool to close on shutdown.
func newProvider(ctx context.Context, cfg *config.Config, ds *storage.DiskStorage) (catalog.Provider, *pgxpool.Pool, error) {
	switch cfg.CatalogStore {
	case "disk":
		return catalog.NewDiskProvider(ds), nil, nil
	case "postgres":
		pool, err := catalog.Connect(ctx, cfg.DatabaseUrl)
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewPostgresProvider(pool, cfg.Country), pool, nil
	default:
		return catalog.NewStaticProvider(), nil, nil
	}
}

func loadPostalCodes(ctx context.Context, cfg *config.Config, ds *storage.DiskStorage) *location.PostalCodeIndex {
	if !ds.Exists(cfg.Geo.PostalCodeFile) {
		logger.Get().Infof("no postal code file %s for %s", cfg.Geo.PostalCodeFile, cfg.Country)
		return nil
	}
	f, err := ds.Open(cfg.Geo.PostalCodeFile)
	if err != nil {
		logger.Get().Warnf("could not open postal codes: %v", err)
		return nil
	}
	defer f.Close()
	idx, err := location.LoadPostalCodeIndex(ctx, f, location.PostalCodeCSVConfigFor(cfg.Country), cfg.Geo.PostalPrefixLen)
	if err != nil {
		logger.Get().Warnf("could not parse postal codes: %v", err)
		return nil
	}
	logger.Get().Infof("loaded %d postal codes", idx.Len())
	return idx
}

// buildResolver orders the location sources from most to least precise.
// Sources that are not configured are left out.
func buildResolver(cfg *config.Config, ds *storage.DiskStorage, c cache.Cache, sessions *location.SessionStore, geoIP *location.GeoIPResolver) *location.ChainResolver {
	steps := []location.Step{
		{Name: "query", Resolver: location.QueryResolver{}},
		{Name: "session", Resolver: &location.SessionResolver{Store: sessions}},
		{Name: "cookie", Resolver: location.CookieResolver{}},
	}
	if idx := loadPostalCodes(context.Background(), cfg, ds); idx != nil {
		steps = append(steps, location.Step{Name: "postal", Resolver: &location.PostalCodeResolver{Index: idx}})
	}
	if cfg.Geo.MapsApiKey != "" {
		client, err := location.NewMapsGeocoder(cfg.Geo.MapsApiKey)
		if err != nil {
			logger.Get().Warnf("geocoding disabled: %v", err)
		} else {
			steps = append(steps, location.Step{Name: "geocode", Resolver: location.NewGeocodeResolver(client, c, cfg.Country)})
		}
	}
	if geoIP != nil {
		steps = append(steps, location.Step{Name: "geoip", Resolver: geoIP})
	}
	chain := location.NewChainResolver(steps...)
	logger.Get().Infof("location sources: %v", chain.Steps())
	return chain
}

func closeHook(name string, fn func() error) common.ShutdownHook {
	return func(ctx context.Context) error {
		logger.Get().Infof("closing %s", name)
		return fn()
	}
}
