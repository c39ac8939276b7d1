// Package storage manages the flat output directory of downloaded images.
//
// Deduplication is name based: a file whose sanitized name already exists on
// disk is treated as a completed prior download and skipped. Writes go
// through a temporary file and an atomic rename so interrupted downloads do
// not leave truncated images behind.
package storage
