// Package ratelimit provides outbound request pacing on top of
// go.uber.org/ratelimit's leaky-bucket limiter.
//
// The crawl is strictly sequential, so pacing is the only throttling
// mechanism: every metadata call and every file fetch takes from its pacer
// before going out on the wire.
package ratelimit
