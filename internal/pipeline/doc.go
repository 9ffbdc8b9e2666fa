// Package pipeline implements the asynchronous labeling pipeline: the batch
// publisher that moves uploaded tasks onto the work queue, the consumer that
// labels them and records results, and the sweeper that recovers tasks stuck
// in processing after a crash.
//
// The pipeline is built around two pieces of shared state: the task store
// (authoritative task lifecycle) and the durable work queue (delivery). All
// coordination between publisher and consumer flows through those two; the
// processes never talk to each other directly, so either side can restart or
// scale independently.
package pipeline
