package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Ramsey-B/fern/pkg/errors"
)

const (
	EventMergeCompleted = "merge.completed"
	EventMergeFailed    = "merge.failed"
)

// MergeEvent reports the outcome of one merge. Row data is never included.
type MergeEvent struct {
	EventID        string           `json:"event_id"`
	Type           string           `json:"type"`
	RequestID      string           `json:"request_id,omitempty"`
	Timestamp      time.Time        `json:"timestamp"`
	TargetFields   []string         `json:"target_fields"`
	SourceRowCount int              `json:"source_row_count"`
	MergedRowCount int              `json:"merged_row_count"`
	DurationMs     int64            `json:"duration_ms"`
	Error          *MergeEventError `json:"error,omitempty"`

	// Tracing
	TraceID string `json:"trace_id,omitempty"`
	SpanID  string `json:"span_id,omitempty"`
}

type MergeEventError struct {
	Kind     string `json:"kind"`
	Field    string `json:"field,omitempty"`
	RowIndex *int   `json:"row_index,omitempty"`
	Message  string `json:"message"`
}

// NewMergeEvent builds a completed or failed event depending on err.
func NewMergeEvent(targetFields []string, sourceRows, mergedRows int, duration time.Duration, err error) *MergeEvent {
	event := &MergeEvent{
		EventID:        uuid.NewString(),
		Type:           EventMergeCompleted,
		Timestamp:      time.Now().UTC(),
		TargetFields:   targetFields,
		SourceRowCount: sourceRows,
		MergedRowCount: mergedRows,
		DurationMs:     duration.Milliseconds(),
	}

	if err == nil {
		return event
	}

	event.Type = EventMergeFailed
	event.MergedRowCount = 0
	event.Error = &MergeEventError{Kind: "Unknown", Message: err.Error()}

	if mergeErr, ok := apperrors.AsMergeError(err); ok {
		event.Error.Kind = string(mergeErr.Kind)
		event.Error.Field = mergeErr.Field
		event.Error.Message = mergeErr.Message
		if row, ok := mergeErr.RowIndex(); ok {
			event.Error.RowIndex = &row
		}
	}

	return event
}

// ToJSON serializes the MergeEvent to JSON bytes
func (e *MergeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ParseMergeEvent parses a raw Kafka message into a MergeEvent
func ParseMergeEvent(data []byte) (*MergeEvent, error) {
	var event MergeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// MessageHeaders contains Kafka message headers for efficient filtering
type MessageHeaders struct {
	EventType   string
	RequestID   string
	TraceParent string
}

// ToKafkaHeaders converts MessageHeaders to a slice of header key-value pairs
func (h *MessageHeaders) ToKafkaHeaders() []Header {
	headers := make([]Header, 0, 3)

	if h.EventType != "" {
		headers = append(headers, Header{Key: "event_type", Value: []byte(h.EventType)})
	}
	if h.RequestID != "" {
		headers = append(headers, Header{Key: "request_id", Value: []byte(h.RequestID)})
	}
	if h.TraceParent != "" {
		headers = append(headers, Header{Key: "traceparent", Value: []byte(h.TraceParent)})
	}

	return headers
}

// Header represents a Kafka message header
type Header struct {
	Key   string
	Value []byte
}

// ExtractHeaders extracts MessageHeaders from Kafka headers
func ExtractHeaders(headers []Header) MessageHeaders {
	var mh MessageHeaders
	for _, h := range headers {
		switch h.Key {
		case "event_type":
			mh.EventType = string(h.Value)
		case "request_id":
			mh.RequestID = string(h.Value)
		case "traceparent":
			mh.TraceParent = string(h.Value)
		}
	}
	return mh
}
