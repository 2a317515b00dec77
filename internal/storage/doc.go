// Package storage persists the month record and the day snapshot.
//
// Artifacts are addressed by key (hijri-month.json, hijri.json) in a Store,
// either files in a data directory (default ~/.local/share/hijri-month/) or
// Redis strings under a key prefix. Records are written as 2-space indented
// JSON and always fully overwritten. A stored record that cannot be decoded
// or fails validation is reported as ErrCorrupt and treated as absent.
package storage
