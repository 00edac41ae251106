package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/geocoding-service/internal/domain"
)

// GeocodeTransformer implements Transformer by resolving each request
// through a domain.Geocoder.
type GeocodeTransformer struct {
	geocoder domain.Geocoder
	timeout  time.Duration
	logger   *slog.Logger
}

// NewTransformer creates a GeocodeTransformer. A positive timeout bounds each
// lookup; zero leaves the deadline to the caller's context.
func NewTransformer(geocoder domain.Geocoder, timeout time.Duration, logger *slog.Logger) *GeocodeTransformer {
	return &GeocodeTransformer{
		geocoder: geocoder,
		timeout:  timeout,
		logger:   logger,
	}
}

// Transform parses the request and resolves it. Only unparsable requests
// return an error; failed lookups become failed results.
func (t *GeocodeTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseGeocodeRequest(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	result := domain.ResolveRequest(ctx, req, t.geocoder, t.logger)
	return domain.SerializeGeocodeResult(result)
}
