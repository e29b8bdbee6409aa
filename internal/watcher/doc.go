// Package watcher orchestrates the poll-compare-notify loop.
//
// This package is internal to edgewatch and ties the other components
// together: each cycle fetches the component feed, matches configured
// targets against it, and for every changed status emits one
// notification and one state save. The loop is single-threaded and
// designed never to exit on its own — every per-cycle failure, up to
// and including a panic, is logged and survived. Only context
// cancellation stops it.
package watcher
