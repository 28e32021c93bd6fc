package location

import (
	"context"
	"errors"
	"net/http"

	"github.com/matst80/store-locator/pkg/geo"
	"github.com/matst80/store-locator/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ErrLocationUnavailable means no resolver could place the request.
	ErrLocationUnavailable = errors.New("location: unavailable")
	// ErrInvalidLocation means the caller supplied a coordinate that is not usable.
	ErrInvalidLocation = errors.New("location: invalid coordinate")
)

var resolvedBySource = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storelocator_location_resolved_total",
	Help: "Resolved request locations by source",
}, []string{"source"})

// Resolver places a request on the map. A nil location with a nil error
// means the resolver has nothing to say and the next one should be tried.
type Resolver interface {
	Resolve(ctx context.Context, r *http.Request) (*geo.Location, error)
}

type ResolverFunc func(ctx context.Context, r *http.Request) (*geo.Location, error)

func (f ResolverFunc) Resolve(ctx context.Context, r *http.Request) (*geo.Location, error) {
	return f(ctx, r)
}

// Step is a named resolver in a chain.
type Step struct {
	Name     string
	Resolver Resolver
}

// ChainResolver asks each step in order and returns the first location.
// Invalid input stops the chain, other resolver errors are logged and skipped.
type ChainResolver struct {
	steps []Step
}

func NewChainResolver(steps ...Step) *ChainResolver {
	kept := make([]Step, 0, len(steps))
	for _, s := range steps {
		if s.Resolver != nil {
			kept = append(kept, s)
		}
	}
	return &ChainResolver{steps: kept}
}

func (c *ChainResolver) Resolve(ctx context.Context, r *http.Request) (*geo.Location, error) {
	loc, _, err := c.ResolveSource(ctx, r)
	return loc, err
}

// ResolveSource also reports which step produced the location.
func (c *ChainResolver) ResolveSource(ctx context.Context, r *http.Request) (*geo.Location, string, error) {
	for _, step := range c.steps {
		loc, err := step.Resolver.Resolve(ctx, r)
		if err != nil {
			if errors.Is(err, ErrInvalidLocation) {
				return nil, step.Name, err
			}
			logger.Get().Debugf("%s location lookup failed: %v", step.Name, err)
			continue
		}
		if loc == nil {
			continue
		}
		if err := loc.Validate(); err != nil {
			logger.Get().Warnf("%s returned an invalid location %v: %v", step.Name, loc, err)
			continue
		}
		resolvedBySource.WithLabelValues(step.Name).Inc()
		return loc, step.Name, nil
	}
	resolvedBySource.WithLabelValues("none").Inc()
	return nil, "", ErrLocationUnavailable
}

func (c *ChainResolver) Steps() []string {
	names := make([]string, len(c.steps))
	for i, s := range c.steps {
		names[i] = s.Name
	}
	return names
}
