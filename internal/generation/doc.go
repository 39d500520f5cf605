// Package generation defines the boundary interface for LLM-backed
// answer generation. Concrete implementations live under
// internal/platform; the core only depends on this package.
package generation
