package main

import (
	"context"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/matst80/store-locator/pkg/auth"
	"github.com/matst80/store-locator/pkg/catalog"
	"github.com/matst80/store-locator/pkg/common"
	"github.com/matst80/store-locator/pkg/config"
	"github.com/matst80/store-locator/pkg/location"
	"github.com/matst80/store-locator/pkg/logger"
	"github.com/matst80/store-locator/pkg/server"
	"github.com/matst80/store-locator/pkg/storage"
	"github.com/matst80/store-locator/pkg/tracking"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger.Init(cfg.Development)
	log := logger.Get()
	log.Infof("starting store locator %s", cfg)

	ctx := context.Background()
	ds := storage.NewDiskStorage(cfg.Country, cfg.DataFolder)
	hooks := []common.ShutdownHook{}

	c, err := newCache(ctx, cfg)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	hooks = append(hooks, closeHook("cache", c.Close))

	provider, pool, err := newProvider(ctx, cfg, ds)
	if err != nil {
		log.Fatalf("catalog provider: %v", err)
	}
	if pool != nil {
		hooks = append(hooks, closeHook("postgres", func() error {
			pool.Close()
			return nil
		}))
	}
	stores := catalog.New(provider)
	if err = stores.Reload(ctx); err != nil {
		log.Fatalf("failed to load stores: %v", err)
	}

	srv := &server.Server{
		Catalog:              stores,
		Sessions:             location.NewSessionStore(c, nil),
		Uploads:              catalog.NewDiskProvider(ds),
		DefaultMaxDistanceKm: cfg.Geo.DefaultMaxKm,
		DefaultMaxResults:    cfg.Geo.DefaultMaxResult,
	}

	if db, err := location.OpenGeoIP(ds.GetSharedFileName(cfg.Geo.GeoIPPath)); err != nil {
		log.Warnf("geoip disabled: %v", err)
	} else {
		srv.GeoIP = &location.GeoIPResolver{DB: db, AllowOverride: cfg.Geo.AllowIpOverride}
		hooks = append(hooks, closeHook("geoip", db.Close))
	}
	srv.Resolver = buildResolver(cfg, ds, c, srv.Sessions, srv.GeoIP)

	if cfg.RabbitUrl != "" {
		trk, err := tracking.NewRabbitTracking(cfg.RabbitUrl, cfg.Country)
		if err != nil {
			log.Errorf("tracking disabled: %v", err)
		} else {
			srv.Tracking = trk
			hooks = append(hooks, closeHook("tracking", trk.Close))
		}

		conn, err := amqp.Dial(cfg.RabbitUrl)
		if err != nil {
			log.Errorf("catalog change notifications disabled: %v", err)
		} else {
			changes, err := catalog.NewRabbitChanges(conn, cfg.Country, cfg.InstanceId)
			if err == nil {
				err = changes.Listen(stores)
			}
			if err != nil {
				log.Errorf("catalog change notifications disabled: %v", err)
			} else {
				srv.Changes = changes
			}
			hooks = append(hooks, closeHook("rabbit", conn.Close))
		}
	} else {
		log.Info("no rabbit url configured, tracking disabled")
	}
	unsubscribe := srv.TrackLocationChanges()
	hooks = append(hooks, closeHook("location tracking", func() error {
		unsubscribe()
		return nil
	}))

	if cfg.TokenHash != "" || cfg.ApiKey != "" {
		if srv.Auth, err = auth.NewAdminAuth(cfg.TokenHash, cfg.ApiKey); err != nil {
			log.Fatalf("admin auth: %v", err)
		}
	} else {
		log.Warn("no admin secrets configured, catalog upload disabled")
	}
	hooks = append(hooks, func(ctx context.Context) error {
		logger.Sync()
		return nil
	})

	debug := http.NewServeMux()
	debug.Handle("/metrics", promhttp.Handler())
	debug.HandleFunc("/debug/pprof/", pprof.Index)
	debug.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debug.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debug.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debug.HandleFunc("/debug/pprof/trace", pprof.Trace)

	timeouts := common.LoadTimeoutConfig(common.TimeoutConfig{
		ReadHeader: 5 * time.Second,
		Read:       15 * time.Second,
		Write:      30 * time.Second,
		Idle:       60 * time.Second,
		Shutdown:   15 * time.Second,
		Hook:       5 * time.Second,
	})
	common.RunServersWithShutdown([]common.NamedServer{
		{Name: "store locator", Server: common.NewServerWithTimeouts(&http.Server{Addr: cfg.Listen, Handler: srv.Handler()}, timeouts)},
		{Name: "debug", Server: &http.Server{Addr: cfg.DebugListen, Handler: debug, ReadHeaderTimeout: timeouts.ReadHeader}},
	}, timeouts.Shutdown, timeouts.Hook, hooks...)
}
