package location

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/matst80/store-locator/pkg/cache"
	"github.com/matst80/store-locator/pkg/common"
	"github.com/matst80/store-locator/pkg/geo"
)

// DefaultMaxAge is how long a reported position is trusted.
const DefaultMaxAge = 5 * time.Minute

const sessionStateTTL = 30 * 24 * time.Hour

type sessionState struct {
	Permission Permission        `json:"permission"`
	Enabled    bool              `json:"enabled"`
	Location   *ReportedLocation `json:"location,omitempty"`
}

// SessionStore keeps the reported position and permission per session.
// Permission outlives the position, which expires after MaxAge.
type SessionStore struct {
	cache    cache.Cache
	notifier *Notifier
	MaxAge   time.Duration
	now      func() time.Time
}

func NewSessionStore(c cache.Cache, notifier *Notifier) *SessionStore {
	if notifier == nil {
		notifier = NewNotifier()
	}
	return &SessionStore{cache: c, notifier: notifier, MaxAge: DefaultMaxAge, now: time.Now}
}

func (s *SessionStore) Notifier() *Notifier {
	return s.notifier
}

func stateKey(sessionId string) string {
	return "location:" + sessionId
}

func (s *SessionStore) load(ctx context.Context, sessionId string) (sessionState, error) {
	state := sessionState{Permission: PermissionUnknown}
	err := s.cache.Get(ctx, stateKey(sessionId), &state)
	if errors.Is(err, cache.ErrCacheMiss) {
		return sessionState{Permission: PermissionUnknown}, nil
	}
	return state, err
}

func (s *SessionStore) save(ctx context.Context, sessionId string, state sessionState) error {
	return s.cache.Set(ctx, stateKey(sessionId), state, sessionStateTTL)
}

func (s *SessionStore) fresh(loc *ReportedLocation) bool {
	return loc != nil && s.now().Sub(loc.Timestamp) < s.MaxAge
}

func (s *SessionStore) status(state sessionState) Status {
	loc := state.Location
	if !s.fresh(loc) {
		loc = nil
	}
	enabled := state.Enabled && loc != nil && state.Permission == PermissionGranted
	return NewStatus(state.Permission, enabled, loc)
}

// Report stores a device position and grants permission for the session.
func (s *SessionStore) Report(ctx context.Context, sessionId string, loc geo.Location, accuracy float64) (Status, error) {
	if err := loc.Validate(); err != nil {
		return Status{}, fmt.Errorf("%w: %w", ErrInvalidLocation, err)
	}
	if accuracy < 0 {
		return Status{}, fmt.Errorf("%w: negative accuracy", ErrInvalidLocation)
	}
	state := sessionState{
		Permission: PermissionGranted,
		Enabled:    true,
		Location:   &ReportedLocation{Location: loc, Accuracy: accuracy, Timestamp: s.now()},
	}
	if err := s.save(ctx, sessionId, state); err != nil {
		return Status{}, err
	}
	status := s.status(state)
	s.notifier.Notify(StatusChange{SessionId: sessionId, Kind: LocationUpdated, Status: status})
	s.notifier.Notify(StatusChange{SessionId: sessionId, Kind: PermissionChanged, Status: status})
	return status, nil
}

// SetPermission records a permission state without a position, e.g. the
// browser answered "denied" or the prompt is still open.
func (s *SessionStore) SetPermission(ctx context.Context, sessionId string, permission Permission) (Status, error) {
	state, err := s.load(ctx, sessionId)
	if err != nil {
		return Status{}, err
	}
	state.Permission = permission
	if permission != PermissionGranted {
		state.Enabled = false
		state.Location = nil
	}
	if err = s.save(ctx, sessionId, state); err != nil {
		return Status{}, err
	}
	status := s.status(state)
	s.notifier.Notify(StatusChange{SessionId: sessionId, Kind: PermissionChanged, Status: status})
	return status, nil
}

func (s *SessionStore) Deny(ctx context.Context, sessionId string) (Status, error) {
	return s.SetPermission(ctx, sessionId, PermissionDenied)
}

// Disable forgets the position but keeps the permission.
func (s *SessionStore) Disable(ctx context.Context, sessionId string) (Status, error) {
	state, err := s.load(ctx, sessionId)
	if err != nil {
		return Status{}, err
	}
	state.Enabled = false
	state.Location = nil
	if err = s.save(ctx, sessionId, state); err != nil {
		return Status{}, err
	}
	status := s.status(state)
	s.notifier.Notify(StatusChange{SessionId: sessionId, Kind: PermissionChanged, Status: status})
	return status, nil
}

func (s *SessionStore) Status(ctx context.Context, sessionId string) (Status, error) {
	state, err := s.load(ctx, sessionId)
	if err != nil {
		return Status{}, err
	}
	return s.status(state), nil
}

// Location returns the session's position while it is fresh and enabled.
func (s *SessionStore) Location(ctx context.Context, sessionId string) (*geo.Location, error) {
	status, err := s.Status(ctx, sessionId)
	if err != nil || !status.Enabled {
		return nil, err
	}
	loc := status.Location.Location
	return &loc, nil
}

// SessionResolver resolves the position reported for the request's session.
type SessionResolver struct {
	Store *SessionStore
}

func (sr *SessionResolver) Resolve(ctx context.Context, r *http.Request) (*geo.Location, error) {
	c, err := r.Cookie(common.SessionCookieName)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	return sr.Store.Location(ctx, c.Value)
}
