// Package gamification implements the engagement ledger and the
// achievement engine: per-user points, calendar-day streaks, and a
// static achievement catalog unlocked by streak and point thresholds or
// by explicit domain events. All mutations run under row-level user
// locks inside transactions so concurrent events for the same user
// serialize cleanly.
package gamification
