package messaging

import (
	"github.com/matst80/store-locator/pkg/logger"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

func DeclareBindAndConsume(ch *amqp.Channel, prefix string, topic ChangeTopic) (<-chan amqp.Delivery, error) {
	name := GetName(prefix, topic)
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, errors.Wrap(err, "declare consumer queue")
	}
	if err = ch.QueueBind(q.Name, name, name, false, nil); err != nil {
		return nil, errors.Wrapf(err, "bind %s", name)
	}
	return ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
}

// ListenToTopic consumes topic in a goroutine. Deliveries handled without
// error are acked, failing ones are nacked without requeue and consumption
// continues.
func ListenToTopic(ch *amqp.Channel, prefix string, topic ChangeTopic, handler func(amqp.Delivery) error) error {
	msgs, err := DeclareBindAndConsume(ch, prefix, topic)
	if err != nil {
		return err
	}
	go Consume(msgs, handler)
	return nil
}

// Acknowledger is the part of amqp.Delivery that Consume settles.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Consume runs handler for every delivery until msgs is closed.
func Consume(msgs <-chan amqp.Delivery, handler func(amqp.Delivery) error) {
	for d := range msgs {
		settle(&d, handler(d))
	}
	logger.Get().Infof("consumer channel closed")
}

func settle(d Acknowledger, err error) {
	log := logger.Get()
	if err != nil {
		log.Errorf("error processing message: %v", err)
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Warnf("nack failed: %v", nackErr)
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		log.Warnf("ack failed: %v", ackErr)
	}
}
