// Package notifier delivers status-change alerts to a Slack incoming
// webhook.
//
// This package is internal to edgewatch. The webhook is the program's
// only external signal, and its failure modes are deliberately
// self-contained: a missing URL, a rejected request, or a transport
// error is logged and swallowed, never retried and never surfaced to
// the watch loop.
package notifier
