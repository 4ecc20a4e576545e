package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Ramsey-B/fern/pkg/errors"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})
}

func TestNewProducerValidation(t *testing.T) {
	_, err := NewProducer(ProducerConfig{Topic: "t"}, testLogger())
	assert.Error(t, err)

	_, err = NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}}, testLogger())
	assert.Error(t, err)

	producer, err := NewProducer(DefaultProducerConfig(), testLogger())
	require.NoError(t, err)
	assert.NotNil(t, producer)
}

func TestNewMergeEvent(t *testing.T) {
	t.Run("completed", func(t *testing.T) {
		event := NewMergeEvent([]string{"name"}, 3, 3, 1500*time.Millisecond, nil)
		assert.Equal(t, EventMergeCompleted, event.Type)
		assert.Equal(t, 3, event.MergedRowCount)
		assert.Equal(t, int64(1500), event.DurationMs)
		assert.Nil(t, event.Error)
		assert.Len(t, event.EventID, 36)
	})

	t.Run("failed with merge error", func(t *testing.T) {
		mergeErr := apperrors.NewMergeError(apperrors.KindTypeMismatch, "expected a number").AddField("amount").AddRow(4)
		event := NewMergeEvent([]string{"amount"}, 10, 10, time.Second, mergeErr)

		assert.Equal(t, EventMergeFailed, event.Type)
		assert.Equal(t, 0, event.MergedRowCount)
		require.NotNil(t, event.Error)
		assert.Equal(t, "TypeMismatch", event.Error.Kind)
		assert.Equal(t, "amount", event.Error.Field)
		require.NotNil(t, event.Error.RowIndex)
		assert.Equal(t, 4, *event.Error.RowIndex)
		assert.Equal(t, "expected a number", event.Error.Message)
	})

	t.Run("failed with plain error", func(t *testing.T) {
		event := NewMergeEvent(nil, 0, 0, 0, errors.New("boom"))
		assert.Equal(t, "Unknown", event.Error.Kind)
		assert.Nil(t, event.Error.RowIndex)
	})
}

func TestPublishMergeEvent(t *testing.T) {
	writer := &fakeWriter{}
	producer := newProducer(writer, DefaultProducerConfig(), testLogger())

	event := NewMergeEvent([]string{"name"}, 1, 1, 0, nil)
	event.RequestID = "req-1"
	event.TraceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	event.SpanID = "00f067aa0ba902b7"

	require.NoError(t, producer.PublishMergeEvent(context.Background(), event))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, []byte(EventMergeCompleted), msg.Key)

	headers := make([]Header, 0, len(msg.Headers))
	for _, h := range msg.Headers {
		headers = append(headers, Header{Key: h.Key, Value: h.Value})
	}
	extracted := ExtractHeaders(headers)
	assert.Equal(t, EventMergeCompleted, extracted.EventType)
	assert.Equal(t, "req-1", extracted.RequestID)
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", extracted.TraceParent)

	parsed, err := ParseMergeEvent(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, parsed.EventID)
	assert.Equal(t, []string{"name"}, parsed.TargetFields)

	require.NoError(t, producer.Close())
	assert.True(t, writer.closed)
}

func TestPublishMergeEventWriteError(t *testing.T) {
	producer := newProducer(&fakeWriter{err: errors.New("broker down")}, DefaultProducerConfig(), testLogger())
	err := producer.PublishMergeEvent(context.Background(), NewMergeEvent(nil, 0, 0, 0, nil))
	assert.ErrorContains(t, err, "broker down")
}
