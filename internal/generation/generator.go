package generation

import "context"

// Generator defines the interface for producing grounded answers from a
// query and retrieved document context. It is the boundary between the
// application core and external LLM services.
type Generator interface {
	// GenerateAnswer produces an answer to the query using only the
	// supplied document context. An empty context means the document had
	// nothing relevant; implementations should say so rather than invent
	// an answer.
	GenerateAnswer(ctx context.Context, query, documentContext string) (string, error)
}
