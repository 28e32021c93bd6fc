package location

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/matst80/store-locator/pkg/cache"
	"github.com/matst80/store-locator/pkg/geo"
	pkgerrors "github.com/pkg/errors"
	"googlemaps.github.io/maps"
)

var errNoGeocodeResult = errors.New("location: address not found")

// Geocoder is satisfied by *maps.Client.
type Geocoder interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

func NewMapsGeocoder(apiKey string) (*maps.Client, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "create maps client")
	}
	return c, nil
}

// GeocodeResolver turns the address query parameter into a coordinate.
// Successful lookups are cached per normalized address.
type GeocodeResolver struct {
	Geocoder   Geocoder
	Region     string
	Cache      *cache.Helper[geo.Location]
	Expiration time.Duration
	Timeout    time.Duration
}

func NewGeocodeResolver(g Geocoder, c cache.Cache, region string) *GeocodeResolver {
	return &GeocodeResolver{
		Geocoder:   g,
		Region:     region,
		Cache:      cache.NewHelper[geo.Location](c),
		Expiration: 7 * 24 * time.Hour,
		Timeout:    5 * time.Second,
	}
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func (g *GeocodeResolver) Resolve(ctx context.Context, r *http.Request) (*geo.Location, error) {
	address := normalizeAddress(r.URL.Query().Get("address"))
	if address == "" || g.Geocoder == nil {
		return nil, nil
	}
	var loc geo.Location
	err := g.Cache.Handle(ctx, "geocode:"+g.Region+":"+address, &loc, func(ctx context.Context) (geo.Location, error) {
		return g.geocode(ctx, address)
	}, g.Expiration)
	if errors.Is(err, errNoGeocodeResult) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (g *GeocodeResolver) geocode(ctx context.Context, address string) (geo.Location, error) {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}
	results, err := g.Geocoder.Geocode(ctx, &maps.GeocodingRequest{
		Address: address,
		Region:  g.Region,
	})
	if err != nil {
		return geo.Location{}, pkgerrors.Wrapf(err, "geocode %q", address)
	}
	if len(results) == 0 {
		return geo.Location{}, errNoGeocodeResult
	}
	ll := results[0].Geometry.Location
	return geo.Location{Latitude: ll.Lat, Longitude: ll.Lng}, nil
}
