// Package fetcher retrieves the component list from the upstream
// status-page API.
//
// This package is internal to edgewatch. It wraps a pooled HTTP client
// with the error discipline the watch loop relies on: every failure mode
// (network error, non-2xx status, non-JSON content, parse error) is
// logged and collapses to an empty component list, so one bad poll can
// never crash the loop. HTTP 429 responses are honored by sleeping the
// advertised Retry-After hint before returning.
package fetcher
