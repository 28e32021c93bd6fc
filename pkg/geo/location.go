package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusKm is the mean earth radius used by the haversine distance.
const EarthRadiusKm = 6371.0

var (
	ErrLatitudeRange  = errors.New("geo: latitude must be within [-90, 90]")
	ErrLongitudeRange = errors.New("geo: longitude must be within [-180, 180]")
	ErrBadCoordinate  = errors.New("geo: coordinate is not a number")
)

// Location is a point in decimal degrees.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

func (loc Location) Validate() error {
	if math.IsNaN(loc.Latitude) || loc.Latitude < -90 || loc.Latitude > 90 {
		return fmt.Errorf("%w: %v", ErrLatitudeRange, loc.Latitude)
	}
	if math.IsNaN(loc.Longitude) || loc.Longitude < -180 || loc.Longitude > 180 {
		return fmt.Errorf("%w: %v", ErrLongitudeRange, loc.Longitude)
	}
	return nil
}

func (loc Location) String() string {
	return fmt.Sprintf("%.6f,%.6f", loc.Latitude, loc.Longitude)
}

// DistanceTo returns the great-circle distance to other in kilometers.
func (loc Location) DistanceTo(other Location) float64 {
	return DistanceKm(loc, other)
}

// DistanceKm computes the haversine distance between a and b in kilometers.
func DistanceKm(a, b Location) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push h past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// ParseCoordinate parses s and checks that it lies within [min, max].
// A decimal comma is accepted.
func ParseCoordinate(s string, min, max float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %q", ErrBadCoordinate, s)
	}
	if v < min || v > max {
		return 0, strconv.ErrRange
	}
	return v, nil
}

// ParseLocation parses a latitude / longitude pair.
func ParseLocation(lat, lng string) (*Location, error) {
	latitude, err := ParseCoordinate(lat, -90, 90)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("%w: %s", ErrLatitudeRange, lat)
		}
		return nil, err
	}
	longitude, err := ParseCoordinate(lng, -180, 180)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("%w: %s", ErrLongitudeRange, lng)
		}
		return nil, err
	}
	return &Location{Latitude: latitude, Longitude: longitude}, nil
}
