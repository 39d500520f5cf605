// Package domain contains the core entities of the learning-progress
// system: users with their engagement state (points, streak), the
// achievement catalog and unlock records, and flashcards with their
// per-user spaced-repetition progress.
//
// Entities validate themselves; persistence and orchestration live in
// the store and service packages.
package domain
