// Package lookup holds the static Hijri month tables.
//
// It maps every accepted spelling of a month name to the canonical spelling used by
// the ACJU calendar, renders canonical names in Arabic, and carries the versioned seed
// of known month start dates used as a last-resort fallback. Unknown names always pass
// through unchanged so that callers never fail on an unrecognized month.
package lookup
