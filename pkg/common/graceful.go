package common

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/matst80/store-locator/pkg/logger"
)

// ShutdownHook runs after a termination signal and before the servers shut
// down. Errors are logged and shutdown continues.
type ShutdownHook func(ctx context.Context) error

// NamedServer pairs a server with the name used in log lines.
type NamedServer struct {
	Name   string
	Server *http.Server
}

// RunServerWithShutdown starts server and blocks until SIGINT or SIGTERM, then
// runs hooks in order and shuts the server down within shutdownTimeout.
//
//	server := &http.Server{Addr: ":8080", Handler: mux}
//	common.RunServerWithShutdown(server, "store locator", 15*time.Second, 5*time.Second, closeHook)
func RunServerWithShutdown(server *http.Server, name string, shutdownTimeout, hookTimeout time.Duration, hooks ...ShutdownHook) {
	RunServersWithShutdown([]NamedServer{{Name: name, Server: server}}, shutdownTimeout, hookTimeout, hooks...)
}

// RunServersWithShutdown is RunServerWithShutdown for several listeners, e.g.
// the public API and the debug/metrics server.
func RunServersWithShutdown(servers []NamedServer, shutdownTimeout, hookTimeout time.Duration, hooks ...ShutdownHook) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)
	Serve(stop, servers, shutdownTimeout, hookTimeout, hooks...)
}

// Serve starts servers and shuts them down when stop fires.
func Serve(stop <-chan os.Signal, servers []NamedServer, shutdownTimeout, hookTimeout time.Duration, hooks ...ShutdownHook) {
	log := logger.Get()
	if hookTimeout <= 0 {
		hookTimeout = 5 * time.Second
	}

	for _, s := range servers {
		go func(s NamedServer) {
			log.Infof("starting %s on %s", s.Name, s.Server.Addr)
			if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("%s listen error: %v", s.Name, err)
			}
		}(s)
	}

	<-stop
	log.Infof("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	runHooks(ctx, hookTimeout, hooks)

	for _, s := range servers {
		if err := s.Server.Shutdown(ctx); err != nil {
			log.Errorf("graceful shutdown of %s failed: %v", s.Name, err)
		} else {
			log.Infof("%s shutdown complete", s.Name)
		}
	}
}

func runHooks(ctx context.Context, hookTimeout time.Duration, hooks []ShutdownHook) {
	log := logger.Get()
	for i, h := range hooks {
		if h == nil {
			continue
		}
		hCtx, hCancel := context.WithTimeout(ctx, hookTimeout)
		if err := h(hCtx); err != nil {
			log.Warnf("shutdown hook %d failed: %v", i, err)
		}
		if errors.Is(hCtx.Err(), context.DeadlineExceeded) {
			log.Warnf("shutdown hook %d timed out", i)
		}
		hCancel()
	}
}

// TimeoutConfig holds server and shutdown timeouts.
type TimeoutConfig struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
	Shutdown   time.Duration
	Hook       time.Duration
}

// LoadTimeoutConfig overrides defaults with whole seconds read from
// READ_HEADER_TIMEOUT, READ_TIMEOUT, WRITE_TIMEOUT, IDLE_TIMEOUT,
// SHUTDOWN_TIMEOUT and HOOK_TIMEOUT. Unparsable or non positive values keep
// the default.
func LoadTimeoutConfig(defaults TimeoutConfig) TimeoutConfig {
	apply := func(curr *time.Duration, env string) {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*curr = time.Duration(n) * time.Second
			}
		}
	}
	apply(&defaults.ReadHeader, "READ_HEADER_TIMEOUT")
	apply(&defaults.Read, "READ_TIMEOUT")
	apply(&defaults.Write, "WRITE_TIMEOUT")
	apply(&defaults.Idle, "IDLE_TIMEOUT")
	apply(&defaults.Shutdown, "SHUTDOWN_TIMEOUT")
	apply(&defaults.Hook, "HOOK_TIMEOUT")
	return defaults
}

// NewServerWithTimeouts applies cfg to base, creating a server when base is nil.
func NewServerWithTimeouts(base *http.Server, cfg TimeoutConfig) *http.Server {
	if base == nil {
		base = &http.Server{}
	}
	base.ReadHeaderTimeout = cfg.ReadHeader
	base.ReadTimeout = cfg.Read
	base.WriteTimeout = cfg.Write
	base.IdleTimeout = cfg.Idle
	return base
}
