// Package config loads, normalizes, and validates dropwatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and centralizes every knob the CLI and daemon
// need: state directories, dedupe retention windows, the cleanup schedule, and
// the curated scoring tables (brand tiers, scarcity keywords, source
// reliability, category multipliers).
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, lowercased lookup keys, and clear validation errors.
package config
