package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewKafkaPublisher(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "attendance.checked_in")
	assert.Error(t, err)

	p, err := NewKafkaPublisher([]string{"127.0.0.1:9092"}, "attendance.checked_in")
	require.NoError(t, err)
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.Equal(t, "attendance.checked_in", p.topic)
}

func TestPublishCheckIn(t *testing.T) {
	now := time.Date(2026, 3, 2, 18, 31, 0, 0, time.UTC)
	fw := &fakeWriter{}
	p := &KafkaPublisher{writer: fw, topic: "attendance.checked_in", now: func() time.Time { return now }}

	at := time.Date(2026, 3, 2, 18, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	err := p.PublishCheckIn(context.Background(), models.CheckIn{
		EventID: "E1", RegistrationID: "r1", CheckInTime: at, CheckedInBy: "op-1",
	})
	require.NoError(t, err)
	require.Len(t, fw.msgs, 1)

	msg := fw.msgs[0]
	assert.Equal(t, "attendance.checked_in", msg.Topic)
	assert.Equal(t, []byte("E1"), msg.Key)
	assert.Equal(t, now, msg.Time)

	var got CheckedIn
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "r1", got.RegistrationID)
	assert.Equal(t, "op-1", got.CheckedInBy)
	assert.True(t, got.CheckInTime.Equal(at))
	assert.Equal(t, time.UTC, got.CheckInTime.Location())

	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}

func TestPublishCheckIn_WriterError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("leader not available")}, now: time.Now}
	err := p.PublishCheckIn(context.Background(), models.CheckIn{EventID: "E1"})
	assert.ErrorContains(t, err, "leader not available")
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishCheckIn(context.Background(), models.CheckIn{}))
	assert.NoError(t, p.Close())
}
