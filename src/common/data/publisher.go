package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/multierr"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/types"
)

// amqpChannel is the part of *amqp.Channel the publisher needs.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RecordPublisher sends each flattened record as a JSON message on a queue.
type RecordPublisher struct {
	conn    io.Closer
	channel amqpChannel
	queue   string
}

// NewRecordPublisher declares queue and takes ownership of conn and channel.
// If the declare fails both are closed before returning.
func NewRecordPublisher(conn io.Closer, channel amqpChannel, queue string) (*RecordPublisher, error) {
	_, err := channel.QueueDeclare(
		queue,
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		err = fmt.Errorf("declare queue %s: %w", queue, err)
		return nil, multierr.Append(err, multierr.Append(channel.Close(), conn.Close()))
	}

	return &RecordPublisher{conn: conn, channel: channel, queue: queue}, nil
}

// Publish sends records in order and returns how many were accepted before
// the first failure.
func (p *RecordPublisher) Publish(ctx context.Context, records []types.TrainData) (int, error) {
	for i, record := range records {
		body, err := json.Marshal(record)
		if err != nil {
			return i, fmt.Errorf("encode record %d: %w", i, err)
		}

		err = p.channel.PublishWithContext(ctx,
			"",
			p.queue,
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        body,
			},
		)
		if err != nil {
			return i, fmt.Errorf("publish record %d to %s: %w", i, p.queue, err)
		}
	}

	return len(records), nil
}

func (p *RecordPublisher) Close() error {
	return multierr.Append(p.channel.Close(), p.conn.Close())
}
