// Package postgres provides PostgreSQL-backed implementations of the store
// interfaces and of the durable work queue broker. All implementations accept
// a store.DBTX so they can run against either a connection pool or a caller-
// managed transaction.
package postgres
