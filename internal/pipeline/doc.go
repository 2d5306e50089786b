// Package pipeline orchestrates the intake flow: normalize incoming items,
// score them against the configured tables, and admit them into the posting
// queue through the dedupe store. It also owns dedupe state persistence and
// the scheduled retention sweep.
package pipeline
