package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// errEmptyLocation rejects requests that carry nothing to resolve.
var errEmptyLocation = errors.New("location is empty")

// ParseGeocodeRequest deserializes a RawEvent's value into a GeocodeRequest.
// The request ID falls back to the message key, then to a hash of the
// message coordinates, so every result can be correlated.
func ParseGeocodeRequest(raw RawEvent) (GeocodeRequest, error) {
	var req GeocodeRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return GeocodeRequest{}, fmt.Errorf("parse geocode request: %w", err)
	}
	if strings.TrimSpace(req.Location) == "" {
		return GeocodeRequest{}, fmt.Errorf("parse geocode request: %w", errEmptyLocation)
	}

	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	if req.ID == "" {
		req.ID = generateID(raw.Topic, raw.Partition, raw.Offset, req.Location)
	}
	return req, nil
}

// generateID returns a deterministic identifier for a keyless request so
// replays of the same offset produce the same result key.
func generateID(topic string, partition int, offset int64, location string) string {
	parts := []string{topic, strconv.Itoa(partition), strconv.FormatInt(offset, 10), location}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:16]
}

// SerializeGeocodeResult marshals a GeocodeResult into an OutputEvent keyed by
// request ID.
func SerializeGeocodeResult(result GeocodeResult) (OutputEvent, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize geocode result: %w", err)
	}
	return OutputEvent{
		Key:   []byte(result.ID),
		Value: data,
		Headers: map[string]string{
			"status":      result.Status,
			"resolved_at": result.ResolvedAt.Format(time.RFC3339),
		},
	}, nil
}

// SerializeGeocodeRequest marshals a GeocodeRequest into an OutputEvent for
// producers feeding the source topic. The key is the request ID when set.
func SerializeGeocodeRequest(req GeocodeRequest) (OutputEvent, error) {
	if strings.TrimSpace(req.Location) == "" {
		return OutputEvent{}, fmt.Errorf("serialize geocode request: %w", errEmptyLocation)
	}
	data, err := json.Marshal(req)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize geocode request: %w", err)
	}
	var key []byte
	if req.ID != "" {
		key = []byte(req.ID)
	}
	return OutputEvent{Key: key, Value: data}, nil
}
