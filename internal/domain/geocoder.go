package domain

import (
	"context"
	"fmt"
)

// Geocode is a place name resolved to WGS-84 coordinates.
type Geocode struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewGeocode validates the coordinate ranges and builds a Geocode.
func NewGeocode(name string, lat, lon float64) (Geocode, error) {
	if lat < -90 || lat > 90 {
		return Geocode{}, &MalformedResultError{Field: "lat", Reason: fmt.Sprintf("out of range: %g", lat)}
	}
	if lon < -180 || lon > 180 {
		return Geocode{}, &MalformedResultError{Field: "lon", Reason: fmt.Sprintf("out of range: %g", lon)}
	}
	return Geocode{Name: name, Latitude: lat, Longitude: lon}, nil
}

// Geocoder resolves free-text locations to coordinates.
type Geocoder interface {
	// Resolve returns the first match for location. Errors are one of the
	// typed errors in this package.
	Resolve(ctx context.Context, location string) (Geocode, error)
}
