package domain

import (
	"context"
	"time"
)

// Result statuses.
const (
	StatusResolved = "resolved"
	StatusFailed   = "failed"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// GeocodeRequest is the JSON payload published to the source topic.
type GeocodeRequest struct {
	ID       string `json:"id,omitempty"`
	Location string `json:"location"`
}

// ResultError describes why a request could not be resolved.
type ResultError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// GeocodeResult is the JSON payload published to the sink topic.
type GeocodeResult struct {
	ID         string       `json:"id"`
	Location   string       `json:"location"`
	Status     string       `json:"status"`
	Geocode    *Geocode     `json:"geocode,omitempty"`
	Error      *ResultError `json:"error,omitempty"`
	ResolvedAt time.Time    `json:"resolved_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
