package stores

import (
	"strings"

	"github.com/matst80/store-locator/pkg/geo"
)

type Store struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Address  string        `json:"address"`
	Phone    string        `json:"phone"`
	Hours    string        `json:"hours"`
	Location *geo.Location `json:"location"`
	Products []string      `json:"products"`
}

// Carries reports whether any product name contains product, ignoring case.
func (s *Store) Carries(product string) bool {
	needle := strings.ToLower(product)
	for _, p := range s.Products {
		if strings.Contains(strings.ToLower(p), needle) {
			return true
		}
	}
	return false
}

type RankedStore struct {
	Store
	Distance     float64 `json:"distance"`
	DistanceText string  `json:"distanceText"`
}
