package stores

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/matst80/store-locator/pkg/geo"
)

const (
	DefaultMaxDistanceKm = 25.0
	DefaultMaxResults    = 5
	// productCandidatePool is how many nearby stores are ranked before the
	// product filter narrows them down.
	productCandidatePool = 20
)

var ErrInvalidInput = errors.New("stores: origin location is required")

// DistanceKm is the haversine distance in kilometers.
func DistanceKm(a, b geo.Location) float64 {
	return geo.DistanceKm(a, b)
}

// FormatDistance renders distances under a kilometer as whole meters and
// anything else as kilometers with one decimal.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1fkm", km)
}

func checkOrigin(origin *geo.Location) error {
	if origin == nil {
		return ErrInvalidInput
	}
	if err := origin.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// FindNearby ranks the stores within maxDistanceKm of origin by distance and
// returns at most maxResults of them. Stores at equal distance keep their
// catalog order. Stores without a location are skipped.
func FindNearby(origin *geo.Location, all []Store, maxDistanceKm float64, maxResults int) ([]RankedStore, error) {
	if err := checkOrigin(origin); err != nil {
		return nil, err
	}
	if maxResults <= 0 {
		return []RankedStore{}, nil
	}

	ranked := make([]RankedStore, 0, len(all))
	for _, s := range all {
		if s.Location == nil {
			continue
		}
		d := origin.DistanceTo(*s.Location)
		if !(d <= maxDistanceKm) {
			continue
		}
		ranked = append(ranked, RankedStore{Store: s, Distance: d})
	}

	slices.SortStableFunc(ranked, func(a, b RankedStore) int {
		if a.Distance < b.Distance {
			return -1
		} else if a.Distance > b.Distance {
			return 1
		}
		return 0
	})

	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	for i := range ranked {
		ranked[i].DistanceText = FormatDistance(ranked[i].Distance)
	}
	return ranked, nil
}

// FindWithProduct is FindNearby restricted to stores carrying productName.
func FindWithProduct(origin *geo.Location, all []Store, productName string, maxDistanceKm float64, maxResults int) ([]RankedStore, error) {
	nearby, err := FindNearby(origin, all, maxDistanceKm, max(productCandidatePool, maxResults))
	if err != nil {
		return nil, err
	}
	if maxResults <= 0 {
		return []RankedStore{}, nil
	}

	matching := make([]RankedStore, 0, min(len(nearby), maxResults))
	for _, s := range nearby {
		if !s.Carries(productName) {
			continue
		}
		matching = append(matching, s)
		if len(matching) == maxResults {
			break
		}
	}
	return matching, nil
}
