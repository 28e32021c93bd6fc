package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gorilla/schema"
	"github.com/matst80/store-locator/pkg/stores"
)

const maxResultsLimit = 50

var ErrBadRequest = errors.New("bad request")

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// StoreRequest holds the ranking parameters of a query string. The origin is
// resolved separately by the location chain.
type StoreRequest struct {
	MaxDistance float64 `schema:"maxDistance"`
	MaxResults  int     `schema:"maxResults"`
	Product     string  `schema:"product"`
	Message     string  `schema:"message"`
}

func (s *Server) StoreRequestFromHttp(r *http.Request) (*StoreRequest, error) {
	result := &StoreRequest{}
	if err := decoder.Decode(result, r.URL.Query()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	result.Product = strings.TrimSpace(result.Product)
	result.Message = strings.TrimSpace(result.Message)

	if result.MaxDistance < 0 || math.IsNaN(result.MaxDistance) || math.IsInf(result.MaxDistance, 0) {
		return nil, fmt.Errorf("%w: maxDistance must be a positive number", ErrBadRequest)
	}
	if result.MaxDistance == 0 {
		result.MaxDistance = s.maxDistance()
	}
	if result.MaxResults < 0 || result.MaxResults > maxResultsLimit {
		return nil, fmt.Errorf("%w: maxResults must be between 1 and %d", ErrBadRequest, maxResultsLimit)
	}
	if result.MaxResults == 0 {
		result.MaxResults = s.maxResults()
	}
	return result, nil
}

func (s *Server) maxDistance() float64 {
	if s.DefaultMaxDistanceKm > 0 {
		return s.DefaultMaxDistanceKm
	}
	return stores.DefaultMaxDistanceKm
}

func (s *Server) maxResults() int {
	if s.DefaultMaxResults > 0 {
		return s.DefaultMaxResults
	}
	return stores.DefaultMaxResults
}

// LocationReport is the body of POST /api/location. A report without
// coordinates only records the browser permission.
type LocationReport struct {
	Latitude   *float64 `json:"lat"`
	Longitude  *float64 `json:"lng"`
	Accuracy   float64  `json:"accuracy"`
	Permission string   `json:"permission"`
	Zip        string   `json:"zip"`
}

func (l *LocationReport) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

type ProductRequest struct {
	Prefix string `schema:"prefix"`
	Limit  int    `schema:"limit"`
}

func ProductRequestFromHttp(r *http.Request) (*ProductRequest, error) {
	result := &ProductRequest{Limit: 10}
	if err := decoder.Decode(result, r.URL.Query()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if result.Limit < 0 || result.Limit > maxResultsLimit {
		return nil, fmt.Errorf("%w: limit must be between 0 and %d", ErrBadRequest, maxResultsLimit)
	}
	return result, nil
}
