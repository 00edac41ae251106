package domain

import (
	"context"
	"log/slog"
)

// ResolveRequest resolves a request through geocoder and always returns a
// result: resolution failures are reported in the result rather than as an
// error so the stream keeps one output per request.
func ResolveRequest(ctx context.Context, req GeocodeRequest, geocoder Geocoder, logger *slog.Logger) GeocodeResult {
	result := GeocodeResult{
		ID:       req.ID,
		Location: req.Location,
	}

	geocode, err := geocoder.Resolve(ctx, req.Location)
	result.ResolvedAt = clock.Now().UTC()
	if err != nil {
		kind := ErrorKind(err)
		logger.Warn("geocoding failed",
			"request_id", req.ID,
			"location", req.Location,
			"kind", kind,
			"error", err,
		)
		result.Status = StatusFailed
		result.Error = &ResultError{Kind: kind, Message: err.Error()}
		return result
	}

	result.Status = StatusResolved
	result.Geocode = &geocode
	return result
}
