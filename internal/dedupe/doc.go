// Package dedupe is the sole authority on whether a product drop may be
// posted again.
//
// The store keeps one record per fingerprint and enforces the release-state
// transition rules: a limited-edition drop is allowed exactly one "upcoming"
// announcement and one later "now live" post, while every other repeat is
// blocked. Ordinary items get a single admission ever. The decision and the
// record mutation happen inside the same critical section (Admit), so two
// near-simultaneous submissions for the same fingerprint cannot both win;
// IsDuplicate is a read-only preview of the same rule.
//
// Records past their retention window are evicted by CleanupOldEntries, with
// limited-edition records held materially longer because days can pass
// between a drop's announcement and its release. The map can be exported to
// and imported from a JSON snapshot to survive process restarts.
package dedupe
