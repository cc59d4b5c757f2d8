package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const doorQueueName = "gate.unlock"

// AMQPDoor actuates the gate by publishing unlock commands to the
// durable gate.unlock queue, which the hardware bridge at the entrance
// consumes and translates into servo commands.  It satisfies the
// admission DoorController interface.  A publish failure is reported to
// the caller so the validator can emit door_error; the consumed
// admission credit is the caller's concern and is never rolled back
// here.
type AMQPDoor struct {
	url string
}

// NewAMQPDoor builds a door controller against the configured broker.
func NewAMQPDoor() *AMQPDoor { return &AMQPDoor{url: BrokerURL()} }

// Unlock publishes a DoorUnlockCommand for the given room.  Each call
// dials a short-lived connection; gate traffic is a few messages per
// minute, so connection reuse is not worth the reconnect bookkeeping.
func (d *AMQPDoor) Unlock(ctx context.Context, room string) error {
	conn, err := amqp.Dial(d.url)
	if err != nil {
		log.Printf("door: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("door: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(doorQueueName, true, false, false, false, nil); err != nil {
		log.Printf("door: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(DoorUnlockCommand{
		Room:        room,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", doorQueueName, false, false, pub); err != nil {
		log.Printf("door: publish failed: %v", err)
		return err
	}
	return nil
}
