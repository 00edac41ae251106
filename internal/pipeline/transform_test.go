package pipeline_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/geocoding-service/internal/domain"
	"github.com/couchcryptid/geocoding-service/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocoder struct {
	results map[string]domain.Geocode
	err     error
	// deadline records whether the last call carried a context deadline.
	deadline bool
}

func (s *stubGeocoder) Resolve(ctx context.Context, location string) (domain.Geocode, error) {
	_, s.deadline = ctx.Deadline()
	if s.err != nil {
		return domain.Geocode{}, s.err
	}
	g, ok := s.results[location]
	if !ok {
		return domain.Geocode{}, &domain.NoResultError{Location: location}
	}
	return g, nil
}

func freezeClock(t *testing.T) clockwork.Clock {
	t.Helper()
	c := clockwork.NewFakeClockAt(time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC))
	domain.SetClock(c)
	t.Cleanup(func() { domain.SetClock(nil) })
	return c
}

func TestGeocodeTransformer_Transform(t *testing.T) {
	clk := freezeClock(t)
	geocoder := &stubGeocoder{results: map[string]domain.Geocode{
		"Berlin": {Name: "Berlin", Latitude: 52.5170365, Longitude: 13.3888599},
	}}

	cases := []struct {
		name    string
		value   string
		want    domain.GeocodeResult
		wantErr bool
	}{
		{
			name:  "resolved",
			value: `{"id":"req-1","location":"Berlin"}`,
			want: domain.GeocodeResult{
				ID:         "req-1",
				Location:   "Berlin",
				Status:     domain.StatusResolved,
				Geocode:    &domain.Geocode{Name: "Berlin", Latitude: 52.5170365, Longitude: 13.3888599},
				ResolvedAt: clk.Now(),
			},
		},
		{
			name:  "no result becomes failed result",
			value: `{"id":"req-2","location":"Xyzzyville"}`,
			want: domain.GeocodeResult{
				ID:       "req-2",
				Location: "Xyzzyville",
				Status:   domain.StatusFailed,
				Error: &domain.ResultError{
					Kind:    domain.KindNoResult,
					Message: `no geocoding results for "Xyzzyville"`,
				},
				ResolvedAt: clk.Now(),
			},
		},
		{
			name:    "invalid json",
			value:   `not json`,
			wantErr: true,
		},
		{
			name:    "empty location",
			value:   `{"id":"req-3","location":""}`,
			wantErr: true,
		},
	}

	tfm := pipeline.NewTransformer(geocoder, 0, slog.Default())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := tfm.Transform(context.Background(), domain.RawEvent{Value: []byte(tc.value)})
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []byte(tc.want.ID), out.Key)
			assert.Equal(t, tc.want.Status, out.Headers["status"])

			var got domain.GeocodeResult
			require.NoError(t, json.Unmarshal(out.Value, &got))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGeocodeTransformer_AppliesTimeout(t *testing.T) {
	geocoder := &stubGeocoder{results: map[string]domain.Geocode{"Oslo": {Name: "Oslo"}}}

	_, err := pipeline.NewTransformer(geocoder, time.Second, slog.Default()).
		Transform(context.Background(), domain.RawEvent{Value: []byte(`{"location":"Oslo"}`)})
	require.NoError(t, err)
	assert.True(t, geocoder.deadline)

	_, err = pipeline.NewTransformer(geocoder, 0, slog.Default()).
		Transform(context.Background(), domain.RawEvent{Value: []byte(`{"location":"Oslo"}`)})
	require.NoError(t, err)
	assert.False(t, geocoder.deadline)
}
