// Package postgres provides PostgreSQL-backed implementations of the
// store interfaces. Each store accepts a store.DBTX so it can run its
// queries against either a connection pool or a transaction; WithTx
// returns a transaction-scoped copy.
package postgres
