package tracking

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu     sync.Mutex
	events []any
	fail   bool
}

func (c *collector) send(_ context.Context, event any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broker down")
	}
	c.events = append(c.events, event)
	return nil
}

func TestQueuedTrackingDeliversOnClose(t *testing.T) {
	c := &collector{}
	trk := NewQueuedTracking("ca", c.send)

	r := httptest.NewRequest(http.MethodGet, "/api/stores", nil)
	r.Header.Set("X-Real-Ip", "10.1.2.3")
	r.Header.Set("Accept-Language", "en-CA")
	trk.TrackSession("s1", r)
	trk.TrackStoreQuery("s1", StoreQuery{Kind: "product", Product: "aero", Results: 3})
	trk.TrackLocation("s1", LocationChange{Permission: "granted", Enabled: true})
	require.NoError(t, trk.Close())

	require.Len(t, c.events, 3)
	session, ok := c.events[0].(Session)
	require.True(t, ok)
	assert.Equal(t, "10.1.2.3", session.Ip)
	assert.Equal(t, "en-CA", session.Language)
	assert.Equal(t, "ca", session.Country)

	query, ok := c.events[1].(StoreQueryEvent)
	require.True(t, ok)
	assert.Equal(t, EventStoreQuery, query.Event)
	assert.Equal(t, "aero", query.Product)

	loc, ok := c.events[2].(LocationEvent)
	require.True(t, ok)
	assert.Equal(t, "granted", loc.Permission)
}

func TestQueuedTrackingSurvivesSendErrors(t *testing.T) {
	c := &collector{fail: true}
	trk := NewQueuedTracking("ca", c.send)
	trk.TrackStoreQuery("s1", StoreQuery{Kind: "nearby"})
	assert.NoError(t, trk.Close())
	assert.Empty(t, c.events)
}
