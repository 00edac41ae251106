package nominatim

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/geocoding-service/internal/domain"
)

var errNotArray = errors.New("response is not a JSON array")

// decimalPattern matches plain decimal numbers with an optional exponent.
// ParseFloat alone would also accept hex floats, underscores and "Inf".
var decimalPattern = regexp.MustCompile(`^[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?$`)

// place is the first element of a search response, kept as raw fields so
// each one can be type-checked on its own.
type place map[string]json.RawMessage

// parseFirstResult decodes a search response body and extracts the first
// place into a Geocode.
func parseFirstResult(location string, body []byte) (domain.Geocode, error) {
	var results []json.RawMessage
	if err := json.Unmarshal(body, &results); err != nil {
		return domain.Geocode{}, &domain.ParseError{Err: err}
	}
	if results == nil {
		// "null" decodes without error but is not an array.
		return domain.Geocode{}, &domain.ParseError{Err: errNotArray}
	}
	if len(results) == 0 {
		return domain.Geocode{}, &domain.NoResultError{Location: location}
	}

	var first place
	if err := json.Unmarshal(results[0], &first); err != nil || first == nil {
		return domain.Geocode{}, &domain.MalformedResultError{Field: "[0]", Reason: "is not an object", Err: err}
	}

	name, err := first.text("name")
	if err != nil {
		return domain.Geocode{}, err
	}
	if name == "" {
		// Address-level matches may carry an empty name.
		if display, derr := first.text("display_name"); derr == nil {
			name = display
		}
	}

	lat, err := first.coordinate("lat")
	if err != nil {
		return domain.Geocode{}, err
	}
	lon, err := first.coordinate("lon")
	if err != nil {
		return domain.Geocode{}, err
	}

	return domain.NewGeocode(name, lat, lon)
}

func (p place) text(field string) (string, error) {
	raw, ok := p[field]
	if !ok {
		return "", &domain.MalformedResultError{Field: field, Reason: "is missing"}
	}
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		return "", &domain.MalformedResultError{Field: field, Reason: "is not a string"}
	}
	return s, nil
}

// coordinate accepts a JSON number or a string holding a decimal number.
func (p place) coordinate(field string) (float64, error) {
	raw, ok := p[field]
	if !ok {
		return 0, &domain.MalformedResultError{Field: field, Reason: "is missing"}
	}
	if isNull(raw) {
		return 0, &domain.MalformedResultError{Field: field, Reason: "is not a number"}
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0, &domain.MalformedResultError{Field: field, Reason: "is not a number"}
		}
		s = strings.TrimSpace(s)
		if !decimalPattern.MatchString(s) {
			return 0, &domain.MalformedResultError{Field: field, Reason: "is not a decimal number"}
		}
		v, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, &domain.MalformedResultError{Field: field, Reason: "is not a number", Err: err}
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &domain.MalformedResultError{Field: field, Reason: "is not a finite number"}
	}
	return v, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
