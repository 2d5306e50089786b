// Command dropwatch ingests product drop listings, scores them, and manages
// the posting queue and its dedupe state.
package main
