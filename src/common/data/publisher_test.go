package data

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/types"
)

type fakeChannel struct {
	declareErr error
	publishErr error
	failAfter  int
	closeErr   error

	declared  []string
	published []amqp.Publishing
	keys      []string
	closed    bool
}

func (c *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	c.declared = append(c.declared, name)
	return amqp.Queue{Name: name}, c.declareErr
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.publishErr != nil && len(c.published) >= c.failAfter {
		return c.publishErr
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return c.closeErr
}

type fakeConn struct {
	closeErr error
	closed   bool
}

func (c *fakeConn) Close() error {
	c.closed = true
	return c.closeErr
}

func TestRecordPublisher_Publish(t *testing.T) {
	channel := &fakeChannel{}
	publisher, err := NewRecordPublisher(&fakeConn{}, channel, "traindata")
	require.NoError(t, err)
	assert.Equal(t, []string{"traindata"}, channel.declared)

	records := []types.TrainData{
		sampleTrainData("A1", "2023-10-01", "1000", "0", "1005"),
		sampleTrainData("B2", "2023-10-02", "2350", "None", "None"),
	}
	n, err := publisher.Publish(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, channel.published, 2)
	assert.Equal(t, []string{"traindata", "traindata"}, channel.keys)

	msg := channel.published[0]
	assert.Equal(t, "application/json", msg.ContentType)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Len(t, body, len(types.TrainDataColumns))
	for _, column := range types.TrainDataColumns {
		assert.Contains(t, body, column)
	}
	assert.Equal(t, "A1", body[types.ColServiceUid])
	assert.Equal(t, "not-present", body[types.ColOriginWorkingTime])
	assert.Equal(t, "", body[types.ColCancelReasonCode])

	value, ok := body[types.ColCancelReasonLongText]
	assert.True(t, ok)
	assert.Nil(t, value, "null column is sent as JSON null")
}

func TestRecordPublisher_PublishStopsAtFirstFailure(t *testing.T) {
	cause := errors.New("channel closed")
	channel := &fakeChannel{publishErr: cause, failAfter: 1}
	publisher, err := NewRecordPublisher(&fakeConn{}, channel, "traindata")
	require.NoError(t, err)

	records := []types.TrainData{
		sampleTrainData("A1", "2023-10-01", "1000", "0", "1005"),
		sampleTrainData("B2", "2023-10-02", "2350", "None", "None"),
		sampleTrainData("C3", "2023-10-03", "0010", "1", "None"),
	}
	n, err := publisher.Publish(context.Background(), records)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, n)
}

func TestNewRecordPublisher_DeclareFailureClosesEverything(t *testing.T) {
	declareErr := errors.New("access refused")
	channelErr := errors.New("channel already closed")
	connErr := errors.New("connection already closed")

	channel := &fakeChannel{declareErr: declareErr, closeErr: channelErr}
	conn := &fakeConn{closeErr: connErr}

	publisher, err := NewRecordPublisher(conn, channel, "traindata")
	assert.Nil(t, publisher)
	assert.ErrorIs(t, err, declareErr)
	assert.ErrorIs(t, err, channelErr)
	assert.ErrorIs(t, err, connErr)
	assert.True(t, channel.closed)
	assert.True(t, conn.closed)
}

func TestRecordPublisher_Close(t *testing.T) {
	channel := &fakeChannel{}
	conn := &fakeConn{}
	publisher, err := NewRecordPublisher(conn, channel, "traindata")
	require.NoError(t, err)

	require.NoError(t, publisher.Close())
	assert.True(t, channel.closed)
	assert.True(t, conn.closed)
}
