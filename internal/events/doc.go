// Package events provides types and interfaces for broadcasting pipeline
// lifecycle events.
//
// Services and the consumer emit events without knowing which handlers will
// process them, enabling loose coupling between the pipeline core and any
// notification surface (websockets, audit logging, metrics). Broadcasting is
// fire-and-forget: a failing or missing handler never affects the task
// lifecycle that triggered the event.
package events
