package catalog

import (
	"context"
	"time"

	"github.com/matst80/store-locator/pkg/common/jsoncompat"
	"github.com/matst80/store-locator/pkg/logger"
	"github.com/matst80/store-locator/pkg/messaging"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitChanges announces and receives catalog replacements for one country.
type RabbitChanges struct {
	conn    *amqp.Connection
	country string
	source  string
}

func NewRabbitChanges(conn *amqp.Connection, country, source string) (*RabbitChanges, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "open channel")
	}
	defer ch.Close()
	if err = messaging.DefineTopic(ch, country, messaging.StoresChanged); err != nil {
		return nil, err
	}
	return &RabbitChanges{conn: conn, country: country, source: source}, nil
}

func (r *RabbitChanges) NotifyStoresChanged(ctx context.Context, count int) error {
	return messaging.SendChange(ctx, r.conn, r.country, messaging.StoresChanged, messaging.StoresChangedEvent{
		Country: r.country,
		Count:   count,
		Source:  r.source,
		Changed: time.Now(),
	})
}

// Listen reloads c whenever another instance announces a change. Own
// announcements are ignored since the catalog was already replaced locally.
func (r *RabbitChanges) Listen(c *Catalog) error {
	ch, err := r.conn.Channel()
	if err != nil {
		return errors.Wrap(err, "open channel")
	}
	return messaging.ListenToTopic(ch, r.country, messaging.StoresChanged, func(d amqp.Delivery) error {
		return r.handle(d.Body, c)
	})
}

func (r *RabbitChanges) handle(body []byte, c *Catalog) error {
	var event messaging.StoresChangedEvent
	if err := jsoncompat.Unmarshal(body, &event); err != nil {
		return errors.Wrap(err, "decode stores changed")
	}
	if event.Source != "" && event.Source == r.source {
		return nil
	}
	logger.Get().Infof("stores changed for %s (%d stores), reloading", event.Country, event.Count)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return c.Reload(ctx)
}
