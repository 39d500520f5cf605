// Package store defines the persistence interfaces for the learning-progress
// system, the shared DBTX abstraction over *sql.DB / *sql.Tx, the sentinel
// errors every implementation maps to, and the RunInTransaction helper that
// gives services atomic commit/rollback semantics.
package store
