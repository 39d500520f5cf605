// Package retrieval implements a lexical retrieval engine over a
// structured reference document. The document is chunked into
// fixed-size word windows at startup; queries are scored by token
// containment with a chapter-title fallback when nothing matches.
package retrieval
