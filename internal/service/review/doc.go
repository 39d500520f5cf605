// Package review coordinates flashcard reviews: it advances the
// spaced-repetition schedule, pays the review point reward, and grants
// the flashcard achievements, all inside one transaction per review.
package review
