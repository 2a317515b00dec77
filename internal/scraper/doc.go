// Package scraper extracts raw Hijri calendar signals from the ACJU calendar page.
//
// The page has changed structure across versions, so extraction runs an ordered chain
// of strategies over the parsed DOM: dedicated element IDs first, then heading text,
// then patterns in the full body text. Each field is taken from the first strategy
// that finds it. Strategies never fail and never compute dates; a field nobody finds
// is reported as absent and left to the normalizer.
package scraper
