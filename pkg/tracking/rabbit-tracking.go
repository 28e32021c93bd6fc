package tracking

import (
	"context"
	"net/http"
	"time"

	"github.com/matst80/store-locator/pkg/common"
	"github.com/matst80/store-locator/pkg/logger"
	"github.com/matst80/store-locator/pkg/messaging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"
)

const trackingPrefix = "global"

var (
	trackedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storelocator_tracking_events_total",
		Help: "Tracking events by outcome",
	}, []string{"outcome"})
)

// SendFunc delivers one tracking event.
type SendFunc func(ctx context.Context, event any) error

// QueuedTracking batches events on a queue and sends them from a background
// worker so request handlers never wait on the broker.
type QueuedTracking struct {
	country string
	queue   *common.QueueHandler[any]
	send    SendFunc
	closer  func() error
}

func NewQueuedTracking(country string, send SendFunc) *QueuedTracking {
	t := &QueuedTracking{country: country, send: send}
	t.queue = common.NewQueueHandlerWithInterval(t.flush, 50, 500*time.Millisecond)
	return t
}

// NewRabbitTracking publishes events on the global tracking topic.
func NewRabbitTracking(url, country string) (*QueuedTracking, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err = messaging.DefineTopic(ch, trackingPrefix, messaging.Tracking); err != nil {
		conn.Close()
		return nil, err
	}
	t := NewQueuedTracking(country, func(ctx context.Context, event any) error {
		return messaging.SendChange(ctx, conn, trackingPrefix, messaging.Tracking, event)
	})
	t.closer = conn.Close
	return t, nil
}

func (t *QueuedTracking) flush(events []any) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, e := range events {
		if err := t.send(ctx, e); err != nil {
			trackedEvents.WithLabelValues("failed").Inc()
			logger.Get().Warnf("error sending tracking event: %v", err)
			continue
		}
		trackedEvents.WithLabelValues("sent").Inc()
	}
}

// Close drains the queue before closing the broker connection.
func (t *QueuedTracking) Close() error {
	t.queue.Close()
	if t.closer != nil {
		return t.closer()
	}
	return nil
}

func (t *QueuedTracking) base(sessionId string, event uint16) *BaseEvent {
	return &BaseEvent{Event: event, SessionId: sessionId, Country: t.country, Context: "b2c"}
}

func (t *QueuedTracking) TrackSession(sessionId string, r *http.Request) {
	t.queue.Add(Session{
		BaseEvent:    t.base(sessionId, EventSession),
		Language:     r.Header.Get("Accept-Language"),
		UserAgent:    r.UserAgent(),
		Ip:           clientIp(r),
		PragmaHeader: r.Header.Get("Pragma"),
	})
}

func (t *QueuedTracking) TrackStoreQuery(sessionId string, query StoreQuery) {
	t.queue.Add(StoreQueryEvent{
		BaseEvent:  t.base(sessionId, EventStoreQuery),
		StoreQuery: query,
	})
}

func (t *QueuedTracking) TrackLocation(sessionId string, change LocationChange) {
	t.queue.Add(LocationEvent{
		BaseEvent:      t.base(sessionId, EventLocation),
		LocationChange: change,
	})
}
