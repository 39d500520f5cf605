package retrieval

// Chapter is one chapter of the knowledge-base document: its own prose
// plus named sections.
type Chapter struct {
	Content  []string            `json:"content"`
	Sections map[string][]string `json:"sections"`

	// SectionTitles lists the section names in document order. Sources
	// that cannot recover an order may leave it empty; the index then
	// falls back to sorted titles.
	SectionTitles []string `json:"-"`
}

// DocumentSource supplies the document the index is built from.
// Implementations load it from disk or elsewhere; the index never cares.
type DocumentSource interface {
	// GetContent returns the document's full text as a list of passages.
	GetContent() []string

	// GetChapters returns the document's chapter structure, keyed by
	// chapter title. Used for the title-match fallback when full-text
	// search finds nothing.
	GetChapters() map[string]Chapter

	// GetChapterTitles returns the chapter titles in document order.
	// May return nil when the source has no inherent order.
	GetChapterTitles() []string
}
