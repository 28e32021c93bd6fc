package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/matst80/store-locator/pkg/auth"
	"github.com/matst80/store-locator/pkg/catalog"
	"github.com/matst80/store-locator/pkg/common"
	"github.com/matst80/store-locator/pkg/common/jsoncompat"
	"github.com/matst80/store-locator/pkg/geo"
	"github.com/matst80/store-locator/pkg/location"
	"github.com/matst80/store-locator/pkg/logger"
	"github.com/matst80/store-locator/pkg/stores"
	"github.com/matst80/store-locator/pkg/tracking"
)

const catalogMaxAge = 5 * time.Minute

// ChangeNotifier tells other instances that the catalog was replaced.
type ChangeNotifier interface {
	NotifyStoresChanged(ctx context.Context, count int) error
}

type Server struct {
	Catalog  *catalog.Catalog
	Resolver *location.ChainResolver
	Sessions *location.SessionStore
	GeoIP    *location.GeoIPResolver
	Tracking tracking.Tracking
	Uploads  *catalog.DiskProvider
	Changes  ChangeNotifier
	Auth     *auth.AdminAuth

	DefaultMaxDistanceKm float64
	DefaultMaxResults    int
}

type StoresResponse struct {
	Origin  *geo.Location        `json:"origin"`
	Source  string               `json:"source"`
	Product string               `json:"product,omitempty"`
	Stores  []stores.RankedStore `json:"stores"`
}

type QueryResponse struct {
	Message       string               `json:"message"`
	Product       string               `json:"product,omitempty"`
	LocationQuery bool                 `json:"locationQuery"`
	NeedsLocation bool                 `json:"needsLocation"`
	Source        string               `json:"source,omitempty"`
	Stores        []stores.RankedStore `json:"stores"`
}

type LocationResponse struct {
	Location *geo.Location `json:"location"`
	Source   string        `json:"source"`
}

func (s *Server) tracking() tracking.Tracking {
	if s.Tracking == nil {
		return tracking.Noop{}
	}
	return s.Tracking
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, stores.ErrInvalidInput),
		errors.Is(err, location.ErrInvalidLocation),
		errors.Is(err, location.ErrLocationUnavailable),
		errors.Is(err, catalog.ErrInvalidStore):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// jsonHandler writes the error status for fn's error. Client errors are not
// passed on to the shared handler log.
func (s *Server) jsonHandler(fn func(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error) http.HandlerFunc {
	return common.JsonHandler(s.tracking(), func(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
		err := fn(w, r, sessionId, enc)
		if err == nil {
			return nil
		}
		code := statusCode(err)
		http.Error(w, err.Error(), code)
		if code < http.StatusInternalServerError {
			return nil
		}
		return err
	})
}

func (s *Server) origin(r *http.Request) (*geo.Location, string, error) {
	loc, source, err := s.Resolver.ResolveSource(r.Context(), r)
	if errors.Is(err, location.ErrLocationUnavailable) {
		noLocation.Inc()
	}
	return loc, source, err
}

func (s *Server) track(sessionId string, query tracking.StoreQuery, ranked []stores.RankedStore) {
	storeQueries.WithLabelValues(query.Kind).Inc()
	query.Results = len(ranked)
	if len(ranked) == 0 {
		emptyResults.WithLabelValues(query.Kind).Inc()
	} else {
		query.ClosestId = ranked[0].ID
	}
	s.tracking().TrackStoreQuery(sessionId, query)
}

func (s *Server) GetStores(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	common.PublicHeaders(w, r, catalogMaxAge)
	w.WriteHeader(http.StatusOK)
	return enc.Encode(s.Catalog.Stores())
}

// SuggestProducts completes product names for the search box.
func (s *Server) SuggestProducts(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	req, err := ProductRequestFromHttp(r)
	if err != nil {
		return err
	}
	common.PublicHeaders(w, r, catalogMaxAge)
	w.WriteHeader(http.StatusOK)
	return enc.Encode(s.Catalog.Products(req.Prefix, req.Limit))
}

func (s *Server) ClosestStores(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	common.NoCacheHeaders(w, r)
	req, err := s.StoreRequestFromHttp(r)
	if err != nil {
		return err
	}
	origin, source, err := s.origin(r)
	if err != nil {
		return err
	}
	ranked, err := stores.FindNearby(origin, s.Catalog.Stores(), req.MaxDistance, req.MaxResults)
	if err != nil {
		return err
	}
	s.track(sessionId, tracking.StoreQuery{
		Kind:          "nearby",
		Source:        source,
		MaxDistanceKm: req.MaxDistance,
		MaxResults:    req.MaxResults,
	}, ranked)

	w.WriteHeader(http.StatusOK)
	return enc.Encode(StoresResponse{Origin: origin, Source: source, Stores: ranked})
}

func (s *Server) StoresWithProduct(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	common.NoCacheHeaders(w, r)
	req, err := s.StoreRequestFromHttp(r)
	if err != nil {
		return err
	}
	if req.Product == "" {
		return fmt.Errorf("%w: product is required", ErrBadRequest)
	}
	origin, source, err := s.origin(r)
	if err != nil {
		return err
	}
	ranked, err := stores.FindWithProduct(origin, s.Catalog.Stores(), req.Product, req.MaxDistance, req.MaxResults)
	if err != nil {
		return err
	}
	s.track(sessionId, tracking.StoreQuery{
		Kind:          "product",
		Product:       req.Product,
		Source:        source,
		MaxDistanceKm: req.MaxDistance,
		MaxResults:    req.MaxResults,
	}, ranked)

	w.WriteHeader(http.StatusOK)
	return enc.Encode(StoresResponse{Origin: origin, Source: source, Product: req.Product, Stores: ranked})
}

// StoreQuery answers a chat message. Without a resolvable origin the answer
// asks the shopper to share a location instead of failing.
func (s *Server) StoreQuery(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	common.NoCacheHeaders(w, r)
	req, err := s.StoreRequestFromHttp(r)
	if err != nil {
		return err
	}
	product := req.Product
	if product == "" {
		product = stores.ExtractProduct(req.Message)
	}
	res := QueryResponse{
		Product:       product,
		LocationQuery: stores.IsLocationQuery(req.Message),
		Stores:        []stores.RankedStore{},
	}

	origin, source, err := s.origin(r)
	if errors.Is(err, location.ErrLocationUnavailable) {
		res.Message = stores.EnableLocationPrompt
		res.NeedsLocation = true
		w.WriteHeader(http.StatusOK)
		return enc.Encode(res)
	}
	if err != nil {
		return err
	}
	res.Source = source

	query := tracking.StoreQuery{
		Kind:          "chat",
		Product:       product,
		Source:        source,
		MaxDistanceKm: req.MaxDistance,
		MaxResults:    req.MaxResults,
	}
	if product != "" {
		res.Stores, err = stores.FindWithProduct(origin, s.Catalog.Stores(), product, req.MaxDistance, req.MaxResults)
		if err != nil {
			return err
		}
		res.Message = stores.FormatStoreResponse(product, res.Stores)
	} else {
		res.Stores, err = stores.FindNearby(origin, s.Catalog.Stores(), req.MaxDistance, req.MaxResults)
		if err != nil {
			return err
		}
		res.Message = stores.FormatNearbyResponse(res.Stores)
	}
	s.track(sessionId, query, res.Stores)

	w.WriteHeader(http.StatusOK)
	return enc.Encode(res)
}

func (s *Server) GetLocation(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	common.NoCacheHeaders(w, r)
	loc, source, err := s.origin(r)
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusOK)
	return enc.Encode(LocationResponse{Location: loc, Source: source})
}

func (s *Server) LocationStatus(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	common.NoCacheHeaders(w, r)
	status, err := s.Sessions.Status(r.Context(), sessionId)
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusOK)
	return enc.Encode(status)
}

// ReportLocation stores a device position, or only the permission when the
// body carries no coordinates.
func (s *Server) ReportLocation(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	common.NoCacheHeaders(w, r)
	report := LocationReport{}
	if err := jsoncompat.NewDecoder(r.Body).Decode(&report); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	var status location.Status
	var err error
	if report.HasCoordinates() {
		loc := geo.Location{Latitude: *report.Latitude, Longitude: *report.Longitude}
		status, err = s.Sessions.Report(r.Context(), sessionId, loc, report.Accuracy)
		if err != nil {
			return err
		}
		http.SetCookie(w, location.LocationCookie(loc, report.Zip))
	} else {
		permission := location.ParsePermission(report.Permission)
		if permission == location.PermissionUnknown {
			return fmt.Errorf("%w: coordinates or permission required", ErrBadRequest)
		}
		status, err = s.Sessions.SetPermission(r.Context(), sessionId, permission)
		if err != nil {
			return err
		}
	}
	w.WriteHeader(http.StatusOK)
	return enc.Encode(status)
}

func (s *Server) DisableLocation(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	common.NoCacheHeaders(w, r)
	status, err := s.Sessions.Disable(r.Context(), sessionId)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{Name: location.LocationCookieName, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusOK)
	return enc.Encode(status)
}

// TrackLocationChanges forwards permission changes to tracking until the
// returned func is called.
func (s *Server) TrackLocationChanges() (unsubscribe func()) {
	trk := s.tracking()
	return s.Sessions.Notifier().Subscribe(func(change location.StatusChange) {
		if change.Kind != location.PermissionChanged {
			return
		}
		ev := tracking.LocationChange{
			Permission: string(change.Status.Permission),
			Enabled:    change.Status.Enabled,
		}
		if change.Status.Location != nil {
			ev.Accuracy = change.Status.Location.Accuracy
		}
		trk.TrackLocation(change.SessionId, ev)
	})
}

func (s *Server) Lookup(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	common.NoCacheHeaders(w, r)
	ip, rec, err := s.GeoIP.Lookup(r)
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusOK)
	return enc.Encode(map[string]any{
		"ip":   ip.String(),
		"city": rec,
	})
}

// UploadStores replaces the catalog file, publishes the new list and tells
// the other instances to reload.
func (s *Server) UploadStores(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	common.NoCacheHeaders(w, r)
	all, err := s.Uploads.Save(r.Body)
	if err != nil {
		return err
	}
	s.Catalog.Replace(all)
	catalogUploads.Inc()
	logger.Get().Infof("catalog replaced by %s with %d stores", auth.RoleFromContext(r.Context()), len(all))

	if s.Changes != nil {
		if err = s.Changes.NotifyStoresChanged(r.Context(), len(all)); err != nil {
			logger.Get().Errorf("failed to publish catalog change: %v", err)
		}
	}
	w.WriteHeader(http.StatusOK)
	return enc.Encode(map[string]int{"count": len(all)})
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) Handler() *http.ServeMux {
	srv := http.NewServeMux()
	srv.HandleFunc("/health", s.Health)
	srv.HandleFunc("OPTIONS /api/", common.RespondToOptions)

	srv.HandleFunc("GET /api/stores", s.jsonHandler(s.GetStores))
	srv.HandleFunc("GET /api/products", s.jsonHandler(s.SuggestProducts))
	srv.HandleFunc("GET /api/closest-stores", s.jsonHandler(s.ClosestStores))
	srv.HandleFunc("GET /api/stores-with-product", s.jsonHandler(s.StoresWithProduct))
	srv.HandleFunc("GET /api/store-query", s.jsonHandler(s.StoreQuery))
	srv.HandleFunc("GET /api/location", s.jsonHandler(s.GetLocation))

	if s.Sessions != nil {
		srv.HandleFunc("GET /api/location/status", s.jsonHandler(s.LocationStatus))
		srv.HandleFunc("POST /api/location", s.jsonHandler(s.ReportLocation))
		srv.HandleFunc("DELETE /api/location", s.jsonHandler(s.DisableLocation))
	}
	if s.GeoIP != nil && s.GeoIP.DB != nil {
		srv.HandleFunc("GET /api/lookup", s.jsonHandler(s.Lookup))
	}
	if s.Auth != nil && s.Uploads != nil {
		srv.HandleFunc("OPTIONS /admin/", common.RespondToOptions)
		srv.HandleFunc("PUT /admin/stores", s.Auth.Middleware(s.jsonHandler(s.UploadStores)))
	}
	return srv
}
