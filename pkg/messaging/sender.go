package messaging

import (
	"context"
	"fmt"

	"github.com/matst80/store-locator/pkg/common/jsoncompat"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefineTopic declares the durable topic exchange and queue for topic.
func DefineTopic(ch *amqp.Channel, prefix string, topic ChangeTopic) error {
	name := GetName(prefix, topic)
	if err := ch.ExchangeDeclare(
		name,    // name
		"topic", // type
		true,    // durable
		false,   // auto-delete
		false,   // internal
		false,   // noWait
		nil,     // arguments
	); err != nil {
		return errors.Wrapf(err, "declare exchange %s", name)
	}
	if _, err := ch.QueueDeclare(
		name,  // name of the queue
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // noWait
		nil,   // arguments
	); err != nil {
		return errors.Wrapf(err, "declare queue %s", name)
	}
	return nil
}

func GetName(prefix string, topic ChangeTopic) string {
	return fmt.Sprintf("%s_%s", prefix, topic)
}

// Encode marshals data into a JSON publishing.
func Encode[V any](data V) (amqp.Publishing, error) {
	bytes, err := jsoncompat.Marshal(data)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType: "application/json",
		Body:        bytes,
	}, nil
}

func SendChange[V any](ctx context.Context, c *amqp.Connection, prefix string, topic ChangeTopic, data V) error {
	msg, err := Encode(data)
	if err != nil {
		return errors.Wrap(err, "encode change")
	}
	ch, err := c.Channel()
	if err != nil {
		return errors.Wrap(err, "open channel")
	}
	defer ch.Close()
	name := GetName(prefix, topic)
	return errors.Wrapf(ch.PublishWithContext(ctx,
		name,
		name,
		false,
		false,
		msg,
	), "publish %s", name)
}
