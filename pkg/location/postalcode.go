package location

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/matst80/store-locator/pkg/geo"
)

// PostalCodeIndex maps normalized postal codes to a coordinate. It is built
// once at startup and only read afterwards.
type PostalCodeIndex struct {
	codes map[string]geo.Location
	// prefixLen enables a fallback on the leading part of the code, the
	// Canadian forward sortation area uses 3.
	prefixLen int
}

func NewPostalCodeIndex(prefixLen int) *PostalCodeIndex {
	return &PostalCodeIndex{codes: make(map[string]geo.Location), prefixLen: prefixLen}
}

// LoadPostalCodeIndex streams a CSV into a new index. The first row for a
// code wins.
func LoadPostalCodeIndex(ctx context.Context, r io.Reader, cfg PostalCodeCSVConfig, prefixLen int) (*PostalCodeIndex, error) {
	idx := NewPostalCodeIndex(prefixLen)
	err := StreamPostalCodeLocations(ctx, r, cfg, func(p PostalCodeLocation) error {
		idx.Add(p.PostalCode, p.Location)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func (i *PostalCodeIndex) Add(code string, loc geo.Location) {
	code = NormalizePostalCode(code)
	if _, exists := i.codes[code]; !exists {
		i.codes[code] = loc
	}
	if i.prefixLen > 0 && len(code) > i.prefixLen {
		prefix := code[:i.prefixLen]
		if _, exists := i.codes[prefix]; !exists {
			i.codes[prefix] = loc
		}
	}
}

func (i *PostalCodeIndex) Len() int {
	return len(i.codes)
}

func (i *PostalCodeIndex) Lookup(code string) (geo.Location, bool) {
	code = NormalizePostalCode(code)
	if code == "" {
		return geo.Location{}, false
	}
	if loc, ok := i.codes[code]; ok {
		return loc, true
	}
	if i.prefixLen > 0 && len(code) > i.prefixLen {
		loc, ok := i.codes[code[:i.prefixLen]]
		return loc, ok
	}
	return geo.Location{}, false
}

// PostalCodeResolver resolves the zip query parameter, falling back to the
// zip stored as third part of the location cookie.
type PostalCodeResolver struct {
	Index *PostalCodeIndex
}

func (p *PostalCodeResolver) Resolve(_ context.Context, r *http.Request) (*geo.Location, error) {
	if p.Index == nil {
		return nil, nil
	}
	code := strings.TrimSpace(r.URL.Query().Get("zip"))
	if code == "" {
		code = cookieZip(r)
	}
	if loc, ok := p.Index.Lookup(code); ok {
		return &loc, nil
	}
	return nil, nil
}
