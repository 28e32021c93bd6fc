package location

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/matst80/store-locator/pkg/geo"
	"github.com/oschwald/geoip2-golang/v2"
	"github.com/pkg/errors"
)

// CityReader is the lookup side of *geoip2.Reader.
type CityReader interface {
	City(ip netip.Addr) (*geoip2.City, error)
}

func OpenGeoIP(path string) (*geoip2.Reader, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open geoip database %s", path)
	}
	return db, nil
}

// ClientIP returns the caller address, preferring proxy headers over
// RemoteAddr. With allowOverride an ?ip= parameter wins, for debugging.
func ClientIP(r *http.Request, allowOverride bool) (netip.Addr, error) {
	rawIP := ""
	if allowOverride {
		rawIP = r.URL.Query().Get("ip")
	}

	if rawIP == "" {
		for _, h := range []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"} {
			if v := r.Header.Get(h); v != "" {
				if idx := strings.IndexByte(v, ','); idx >= 0 {
					v = v[:idx]
				}
				rawIP = strings.TrimSpace(v)
				break
			}
		}
	}

	if rawIP == "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			rawIP = host
		} else {
			rawIP = r.RemoteAddr
		}
	}

	addr, err := netip.ParseAddr(rawIP)
	if err != nil {
		return netip.Addr{}, errors.Wrapf(err, "parse client ip %q", rawIP)
	}
	return addr.Unmap(), nil
}

type GeoIPResolver struct {
	DB            CityReader
	AllowOverride bool
}

func (g *GeoIPResolver) Lookup(r *http.Request) (netip.Addr, *geoip2.City, error) {
	ip, err := ClientIP(r, g.AllowOverride)
	if err != nil {
		return netip.Addr{}, nil, err
	}
	rec, err := g.DB.City(ip)
	if err != nil {
		return ip, nil, errors.Wrapf(err, "geoip lookup %s", ip)
	}
	return ip, rec, nil
}

func (g *GeoIPResolver) Resolve(_ context.Context, r *http.Request) (*geo.Location, error) {
	if g.DB == nil {
		return nil, nil
	}
	_, rec, err := g.Lookup(r)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.Location.HasCoordinates() || rec.Location.Latitude == nil || rec.Location.Longitude == nil {
		return nil, nil
	}
	return &geo.Location{Latitude: *rec.Location.Latitude, Longitude: *rec.Location.Longitude}, nil
}
