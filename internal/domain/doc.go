// Package domain models forward geocoding: free-text place names resolved to
// WGS-84 coordinates by a Nominatim-compatible search service.
//
// # Upstream Conventions
//
// Search request:
//
//	GET <base-url>?format=json&limit=1&q=<location>
//
// The service answers with a JSON array of places ordered by relevance. Only
// the first element is consulted. Nominatim encodes coordinates as decimal
// strings ("52.5170365"); other compatible services emit JSON numbers, so both
// are accepted.
//
//	[{"name":"Berlin","lat":"52.5170365","lon":"13.3888599", ...}]
//
// An empty array means the query matched nothing and is reported as
// [NoResultError], never as a zero-valued [Geocode].
//
// # Error Taxonomy
//
//	TransportError        no HTTP response (refused, DNS, timeout, cancelled)
//	RemoteError           non-2xx status, body not parsed
//	ParseError            body is not a JSON array
//	NoResultError         empty array
//	MalformedResultError  first element lacks name/lat/lon or has bad values
//
// [ErrorKind] maps each to a stable label used by metrics and by failed
// stream results.
//
// # Stream Messages
//
// Requests arrive as {"id","location"} on the source topic. Every parsable
// request yields exactly one [GeocodeResult] on the sink topic, with status
// "resolved" or "failed". Requests without an id use the message key, then a
// SHA-256 of topic|partition|offset|location.
package domain
