package location

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/matst80/store-locator/pkg/geo"
)

const LocationCookieName = "location"

// QueryResolver reads lat and lng (or lon) from the query string. A pair
// that is present but unusable is reported as ErrInvalidLocation.
type QueryResolver struct{}

func (QueryResolver) Resolve(_ context.Context, r *http.Request) (*geo.Location, error) {
	q := r.URL.Query()
	lat := q.Get("lat")
	lng := q.Get("lng")
	if lng == "" {
		lng = q.Get("lon")
	}
	if lat == "" && lng == "" {
		return nil, nil
	}
	if lat == "" || lng == "" {
		return nil, fmt.Errorf("%w: both lat and lng are required", ErrInvalidLocation)
	}
	loc, err := geo.ParseLocation(lat, lng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLocation, err)
	}
	return loc, nil
}

// cookieParts splits the location cookie. Browsers cannot send a raw ';'
// in a cookie value so both an escaped ';' and '|' are accepted.
func cookieParts(r *http.Request) []string {
	c, err := r.Cookie(LocationCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	value, err := url.QueryUnescape(c.Value)
	if err != nil {
		value = c.Value
	}
	return strings.Split(strings.ReplaceAll(value, ";", "|"), "|")
}

func cookieZip(r *http.Request) string {
	parts := cookieParts(r)
	if len(parts) >= 3 {
		return strings.TrimSpace(parts[2])
	}
	return ""
}

// CookieResolver reads the "lat|lng[|zip]" location cookie. Broken cookies
// are ignored.
type CookieResolver struct{}

func (CookieResolver) Resolve(_ context.Context, r *http.Request) (*geo.Location, error) {
	parts := cookieParts(r)
	if len(parts) < 2 {
		return nil, nil
	}
	loc, err := geo.ParseLocation(parts[0], parts[1])
	if err != nil {
		return nil, nil
	}
	return loc, nil
}

// LocationCookie formats the cookie value CookieResolver reads.
func LocationCookie(loc geo.Location, zip string) *http.Cookie {
	value := fmt.Sprintf("%.6f|%.6f", loc.Latitude, loc.Longitude)
	if zip != "" {
		value += "|" + NormalizePostalCode(zip)
	}
	return &http.Cookie{
		Name:     LocationCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(DefaultMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	}
}
