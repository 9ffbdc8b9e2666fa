// Package queue defines the wire contracts and broker interfaces of the
// durable work queue: the work-request message consumers label from, the
// in-process result record, and the publish/receive/acknowledge protocol.
// Broker implementations live under internal/platform.
package queue
