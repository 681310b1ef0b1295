// Package loader orchestrates progressive library loads.
//
// A load walks the state machine
//
//	idle -> validating -> (replaying|scanning) -> streaming -> completed|failed
//
// and delivers results over an unbuffered channel: one producer goroutine
// per load, back-pressured by the consumer, checking for cancellation at
// every emission point. A fresh durable cache short-circuits the scan
// entirely; otherwise sources are validated, catalog files enumerated,
// and each book assembled (cover, annotations) before it is emitted.
// Per-file failures surface as error events and never stop the stream;
// only source validation failures are fatal.
//
// The loader never retains state across loads except through the cache
// store handle it is given. Concurrent loads are not serialized here;
// callers run one load at a time.
package loader
