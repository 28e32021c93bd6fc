package messaging

import (
	"errors"
	"testing"
	"time"

	"github.com/matst80/store-locator/pkg/common/jsoncompat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func TestGetName(t *testing.T) {
	assert.Equal(t, "ca_stores_changed", GetName("ca", StoresChanged))
	assert.Equal(t, "global_tracking", GetName("global", Tracking))
}

func TestEncode(t *testing.T) {
	changed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	msg, err := Encode(StoresChangedEvent{Country: "ca", Count: 6, Changed: changed})
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)

	var back StoresChangedEvent
	require.NoError(t, jsoncompat.Unmarshal(msg.Body, &back))
	assert.Equal(t, "ca", back.Country)
	assert.Equal(t, 6, back.Count)
	assert.True(t, changed.Equal(back.Changed))
}

func TestSettle(t *testing.T) {
	ok := &fakeAck{}
	settle(ok, nil)
	assert.True(t, ok.acked)
	assert.False(t, ok.nacked)

	failed := &fakeAck{}
	settle(failed, errors.New("bad payload"))
	assert.False(t, failed.acked)
	assert.True(t, failed.nacked)
	assert.False(t, failed.requeued)
}
