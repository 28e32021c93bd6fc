package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matst80/store-locator/pkg/cache"
	"github.com/matst80/store-locator/pkg/common"
	"github.com/matst80/store-locator/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mississauga = geo.Location{Latitude: 43.5890, Longitude: -79.6441}

func newTestStore() (*SessionStore, *time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessionStore(cache.NewMemoryCache(), NewNotifier())
	s.now = func() time.Time { return now }
	return s, &now
}

func TestSessionStatusUnknown(t *testing.T) {
	s, _ := newTestStore()
	status, err := s.Status(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, PermissionUnknown, status.Permission)
	assert.False(t, status.Enabled)
	assert.Nil(t, status.Location)
	assert.Equal(t, "Location Unknown", status.StatusText)
}

func TestSessionReport(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	status, err := s.Report(ctx, "s1", mississauga, 100)
	require.NoError(t, err)
	assert.True(t, status.Enabled)
	assert.Equal(t, PermissionGranted, status.Permission)
	assert.Equal(t, "Location Active", status.StatusText)
	require.NotNil(t, status.Location)
	assert.Equal(t, 100.0, status.Location.Accuracy)

	loc, err := s.Location(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, &mississauga, loc)
}

func TestSessionReportInvalid(t *testing.T) {
	s, _ := newTestStore()
	_, err := s.Report(context.Background(), "s1", geo.Location{Latitude: 91}, 10)
	assert.ErrorIs(t, err, ErrInvalidLocation)
	_, err = s.Report(context.Background(), "s1", mississauga, -1)
	assert.ErrorIs(t, err, ErrInvalidLocation)
}

func TestSessionLocationExpires(t *testing.T) {
	s, now := newTestStore()
	ctx := context.Background()
	_, err := s.Report(ctx, "s1", mississauga, 10)
	require.NoError(t, err)

	*now = now.Add(DefaultMaxAge - time.Second)
	loc, err := s.Location(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, loc)

	*now = now.Add(2 * time.Second)
	loc, err = s.Location(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, loc)

	status, err := s.Status(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Location Available", status.StatusText)
}

func TestSessionDenyAndDisable(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	_, err := s.Report(ctx, "s1", mississauga, 10)
	require.NoError(t, err)

	status, err := s.Disable(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, status.Enabled)
	assert.Equal(t, PermissionGranted, status.Permission)
	assert.Equal(t, "Location Available", status.StatusText)

	status, err = s.Deny(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Location Denied", status.StatusText)
	loc, err := s.Location(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, loc)

	status, err = s.SetPermission(ctx, "s2", PermissionPrompt)
	require.NoError(t, err)
	assert.Equal(t, "Location Pending", status.StatusText)
}

func TestSessionNotifications(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	var changes []StatusChange
	unsubscribe := s.Notifier().Subscribe(func(c StatusChange) {
		changes = append(changes, c)
	})

	_, err := s.Report(ctx, "s1", mississauga, 10)
	require.NoError(t, err)
	_, err = s.Deny(ctx, "s1")
	require.NoError(t, err)

	require.Len(t, changes, 3)
	assert.Equal(t, LocationUpdated, changes[0].Kind)
	assert.Equal(t, PermissionChanged, changes[1].Kind)
	assert.Equal(t, PermissionDenied, changes[2].Status.Permission)

	unsubscribe()
	_, err = s.Disable(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, changes, 3)
}

func TestSessionResolver(t *testing.T) {
	s, _ := newTestStore()
	_, err := s.Report(context.Background(), "s1", mississauga, 10)
	require.NoError(t, err)
	res := &SessionResolver{Store: s}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: "s1"})
	loc, err := res.Resolve(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, &mississauga, loc)

	loc, err = res.Resolve(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NoError(t, err)
	assert.Nil(t, loc)
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Location Active", StatusText(PermissionGranted, true))
	assert.Equal(t, "Location Available", StatusText(PermissionGranted, false))
	assert.Equal(t, "Location Denied", StatusText(PermissionDenied, false))
	assert.Equal(t, "Location Pending", StatusText(PermissionPrompt, false))
	assert.Equal(t, "Location Unknown", StatusText(Permission("weird"), true))
	assert.Equal(t, PermissionUnknown, ParsePermission("weird"))
	assert.Equal(t, PermissionDenied, ParsePermission("denied"))
}
