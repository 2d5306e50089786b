package dropid

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"dropwatch/internal/product"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// statePhrases are multi-word marketing phrases removed before tokenization.
var statePhrases = []string{
	"coming soon",
	"available now",
	"now live",
	"now available",
	"just dropped",
	"in stock",
	"out of stock",
	"sold out",
	"on sale",
	"pre order",
	"pre-order",
}

// stateWords are single tokens that indicate release phase or timing rather
// than product identity.
var stateWords = map[string]struct{}{
	"drop": {}, "drops": {}, "dropping": {}, "dropped": {},
	"release": {}, "releases": {}, "releasing": {}, "released": {},
	"launch": {}, "launches": {}, "launching": {}, "launched": {},
	"restock": {}, "restocks": {}, "restocked": {}, "restocking": {},
	"preorder": {}, "preorders": {},
	"live": {}, "soon": {}, "now": {}, "today": {}, "tonight": {}, "tomorrow": {},
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
}

// Fingerprint returns the deterministic dedup key for an item. Identical drops
// described with different release-state phrasing collide; missing fields
// degrade to a URL-derived key rather than failing.
func Fingerprint(item *product.Item) string {
	if item == nil {
		return digest("empty")
	}

	brand := normalizeField(item.Brand)
	slug := TitleSlug(item.Title)

	if brand == "" || slug == "" {
		if url := normalizeURL(item.URL); url != "" {
			return digest("url|" + url)
		}
	}

	category := normalizeField(item.Category)
	if category == "" {
		category = "unknown"
	}
	if brand == "" {
		brand = "unknown"
	}
	if slug == "" {
		slug = "untitled"
	}

	return digest(strings.Join([]string{brand, category, PriceBucket(item.Price), slug}, "|"))
}

// TitleSlug reduces a listing title to its identity tokens: lowercased,
// state phrases and timing words removed, joined with hyphens.
func TitleSlug(title string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))
	if lowered == "" {
		return ""
	}
	for _, phrase := range statePhrases {
		lowered = strings.ReplaceAll(lowered, phrase, " ")
	}

	raw := tokenSplitPattern.Split(lowered, -1)
	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		if token == "" {
			continue
		}
		if _, ok := stateWords[token]; ok {
			continue
		}
		tokens = append(tokens, token)
	}
	return strings.Join(tokens, "-")
}

// PriceBucket maps a price onto a coarse $25 bucket so minor price drift
// between sources does not split a drop's identity.
func PriceBucket(price float64) string {
	if price <= 0 {
		return "p-unknown"
	}
	return "p" + strconv.Itoa(int(price/25))
}

func normalizeField(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	return strings.Join(strings.Fields(lowered), " ")
}

func normalizeURL(value string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	trimmed = strings.TrimPrefix(trimmed, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	trimmed = strings.TrimPrefix(trimmed, "www.")
	// Query strings carry tracking parameters that vary per post.
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSuffix(trimmed, "/")
}

func digest(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])[:16]
}
