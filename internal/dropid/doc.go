// Package dropid computes deterministic identity fingerprints for product
// drops.
//
// Two differently-worded posts about the same physical drop must produce the
// same fingerprint, so the title is reduced to a slug with state-indicating
// phrasing ("Coming Soon", "Available Now", weekday teasers) stripped before
// it is combined with the normalized brand, category, and a coarse price
// bucket. Listings missing a brand or usable title degrade to a URL-derived
// fingerprint. Fingerprinting never fails; the worst input still hashes.
package dropid
