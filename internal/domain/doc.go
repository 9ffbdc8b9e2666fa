// Package domain contains the core business entities, value objects, and
// domain logic of the application: labeling projects, work items (tasks)
// and their lifecycle state machine, label payloads, annotators, and client
// feedback. It represents the heart of the system, independent of any
// specific infrastructure or delivery mechanism.
package domain
