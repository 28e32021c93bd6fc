package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/matst80/store-locator/pkg/logger"
	"github.com/matst80/store-locator/pkg/stores"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ErrInvalidStore = errors.New("catalog: invalid store")

var (
	catalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storelocator_catalog_stores",
		Help: "Number of stores in the active catalog",
	})
	catalogReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storelocator_catalog_reloads_total",
		Help: "Catalog reloads by outcome",
	}, []string{"outcome"})
)

// Provider loads the full store catalog from its backing source.
type Provider interface {
	Load(ctx context.Context) ([]stores.Store, error)
}

type snapshot struct {
	stores   []stores.Store
	products *productTrie
	loaded   time.Time
}

// Catalog serves an immutable snapshot of the stores. Readers never lock,
// Reload publishes a new slice and never mutates the old one.
type Catalog struct {
	provider Provider
	current  atomic.Pointer[snapshot]
}

func New(provider Provider) *Catalog {
	c := &Catalog{provider: provider}
	c.current.Store(&snapshot{stores: []stores.Store{}, products: newProductTrie(nil)})
	return c
}

// Stores returns the active snapshot. Callers must treat it as read only.
func (c *Catalog) Stores() []stores.Store {
	return c.current.Load().stores
}

// Products suggests product names starting with prefix, either the whole
// name or one of its words. An empty prefix lists every product.
func (c *Catalog) Products(prefix string, limit int) []string {
	found := c.current.Load().products.match(prefix)
	if limit > 0 && len(found) > limit {
		return found[:limit]
	}
	return found
}

func (c *Catalog) Loaded() time.Time {
	return c.current.Load().loaded
}

// Reload replaces the snapshot with the provider's content. On failure the
// previous snapshot stays active.
func (c *Catalog) Reload(ctx context.Context) error {
	loaded, err := c.provider.Load(ctx)
	if err == nil {
		err = Validate(loaded)
	}
	if err != nil {
		catalogReloads.WithLabelValues("failed").Inc()
		return err
	}
	c.Replace(loaded)
	catalogReloads.WithLabelValues("ok").Inc()
	logger.Get().Infof("catalog loaded with %d stores", len(loaded))
	return nil
}

// Replace publishes an already validated list.
func (c *Catalog) Replace(all []stores.Store) {
	cp := make([]stores.Store, len(all))
	copy(cp, all)
	c.current.Store(&snapshot{stores: cp, products: newProductTrie(cp), loaded: time.Now()})
	catalogSize.Set(float64(len(cp)))
}

// Validate checks ids are present and unique and every store has a valid location.
func Validate(all []stores.Store) error {
	seen := make(map[string]struct{}, len(all))
	for i, s := range all {
		if s.ID == "" {
			return fmt.Errorf("%w: store %d (%s) has no id", ErrInvalidStore, i, s.Name)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidStore, s.ID)
		}
		seen[s.ID] = struct{}{}
		if s.Location == nil {
			return fmt.Errorf("%w: store %s has no location", ErrInvalidStore, s.ID)
		}
		if err := s.Location.Validate(); err != nil {
			return fmt.Errorf("%w: store %s: %w", ErrInvalidStore, s.ID, err)
		}
	}
	return nil
}
