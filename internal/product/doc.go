// Package product defines the product listing record flowing through the
// dedupe and scoring pipeline.
//
// Items arrive from external discovery sources with unreliable fields.
// Normalize fills defaults instead of failing: a missing release state means
// the item is already purchasable, a missing ID gets a generated one, and an
// unrecognized release state is logged and coerced to live. Downstream code
// can therefore rely on every field holding a usable value.
package product
