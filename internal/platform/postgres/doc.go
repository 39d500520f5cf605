// Package postgres provides PostgreSQL implementations of the store
// interfaces. All implementations work over store.DBTX so they run
// identically on a plain connection or inside a caller-managed
// transaction, and they translate driver errors into the sentinel
// errors defined in the store package.
package postgres
