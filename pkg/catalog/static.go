package catalog

import (
	"context"

	"github.com/matst80/store-locator/pkg/stores"
)

// StaticProvider serves a fixed list, the reference stores by default.
type StaticProvider struct {
	Stores []stores.Store
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{Stores: stores.ReferenceStores()}
}

func (p *StaticProvider) Load(_ context.Context) ([]stores.Store, error) {
	return p.Stores, nil
}
