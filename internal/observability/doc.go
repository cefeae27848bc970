// Package observability builds the process logger and the HTTP access log.
//
// Every component receives a *zap.Logger through its constructor; this
// package only decides how that logger is configured and adds the
// per-request fields (request ID, status, latency) at the edge.
package observability
