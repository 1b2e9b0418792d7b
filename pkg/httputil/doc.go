// Package httputil provides the HTTP plumbing shared by collaborator
// clients.
//
// # Overview
//
// Two pieces of infrastructure live here:
//
//   - [Cache]: file-based response caching with TTL
//   - [Retry]: bounded retry with exponential backoff
//
// # Caching
//
// [Cache] stores JSON-marshalable values under ~/.cache/intentflow/ keyed
// by SHA-256 of the caller's key string. Conversation and turn-history
// fetches use it so repeated CLI invocations against the same
// conversation don't hammer the backend.
//
// # Retry
//
// [Retry] re-runs an operation only when its error is wrapped in
// [RetryableError]. Clients wrap connection failures and 5xx statuses;
// 4xx responses and decode errors fail immediately.
package httputil
