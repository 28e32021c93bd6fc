package location

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matst80/store-locator/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

type fakeGeocoder struct {
	calls   int
	results []maps.GeocodingResult
	err     error
	last    *maps.GeocodingRequest
}

func (f *fakeGeocoder) Geocode(_ context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	f.calls++
	f.last = r
	return f.results, f.err
}

func TestGeocodeResolverCaches(t *testing.T) {
	g := &fakeGeocoder{results: []maps.GeocodingResult{{
		FormattedAddress: "2885 Argentia Rd, Mississauga, ON",
		Geometry:         maps.AddressGeometry{Location: maps.LatLng{Lat: 43.589, Lng: -79.6441}},
	}}}
	res := NewGeocodeResolver(g, cache.NewMemoryCache(), "ca")

	for _, q := range []string{"2885+Argentia+Rd", "2885++ARGENTIA+rd"} {
		r := httptest.NewRequest(http.MethodGet, "/?address="+q, nil)
		loc, err := res.Resolve(context.Background(), r)
		require.NoError(t, err)
		require.NotNil(t, loc)
		assert.Equal(t, 43.589, loc.Latitude)
	}
	assert.Equal(t, 1, g.calls)
	assert.Equal(t, "ca", g.last.Region)
	assert.Equal(t, "2885 argentia rd", g.last.Address)
}

func TestGeocodeResolverNoResult(t *testing.T) {
	g := &fakeGeocoder{}
	res := NewGeocodeResolver(g, cache.NewMemoryCache(), "ca")
	loc, err := res.Resolve(context.Background(), httptest.NewRequest(http.MethodGet, "/?address=nowhere", nil))
	assert.NoError(t, err)
	assert.Nil(t, loc)

	loc, err = res.Resolve(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NoError(t, err)
	assert.Nil(t, loc)
	assert.Equal(t, 1, g.calls)
}

func TestGeocodeResolverError(t *testing.T) {
	g := &fakeGeocoder{err: errors.New("OVER_QUERY_LIMIT")}
	res := NewGeocodeResolver(g, cache.NewMemoryCache(), "ca")
	_, err := res.Resolve(context.Background(), httptest.NewRequest(http.MethodGet, "/?address=x", nil))
	assert.Error(t, err)
}
