package retrieval

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"
)

// Common retrieval errors
var (
	// ErrEmptyDocument indicates the source document has no content to index.
	ErrEmptyDocument = errors.New("document has no content to index")
)

// avgWordChars is the assumed average word length used to convert the
// configured character budget into a per-chunk word count.
const avgWordChars = 5

// contextResultCount is how many top chunks GenerateContext stitches
// together, and how many fallback blocks it collects at most.
const contextResultCount = 3

// Result is one scored chunk returned by Search.
type Result struct {
	Content string
	Score   int
}

// Index is an immutable in-memory lexical index over a document. Build
// it once at startup; concurrent searches are safe because nothing
// mutates after construction.
type Index struct {
	chunks        []string
	lowered       []string
	chapters      map[string]Chapter
	chapterTitles []string
	logger        *slog.Logger
}

// BuildIndex chunks the source document into fixed-size word windows
// and prepares them for scoring. chunkChars is the approximate
// character budget per chunk.
func BuildIndex(source DocumentSource, chunkChars int, log *slog.Logger) (*Index, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: nil source", ErrEmptyDocument)
	}
	if log == nil {
		log = slog.Default()
	}
	if chunkChars <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkChars)
	}

	text := strings.Join(source.GetContent(), "\n")
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, ErrEmptyDocument
	}

	chunkWords := chunkChars / avgWordChars
	if chunkWords < 1 {
		chunkWords = 1
	}

	var chunks []string
	for start := 0; start < len(words); start += chunkWords {
		end := start + chunkWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}

	lowered := make([]string, len(chunks))
	for i, c := range chunks {
		lowered[i] = strings.ToLower(c)
	}

	log.Info("retrieval index built",
		slog.Int("chunks", len(chunks)),
		slog.Int("chunk_words", chunkWords))

	chapters := source.GetChapters()

	return &Index{
		chunks:        chunks,
		lowered:       lowered,
		chapters:      chapters,
		chapterTitles: orderedTitles(source.GetChapterTitles(), len(chapters)),
		logger:        log.With(slog.String("component", "retrieval_index")),
	}, nil
}

// orderedTitles returns the source-supplied title order when it covers
// the whole map, nil otherwise so the caller sorts instead.
func orderedTitles(titles []string, want int) []string {
	if len(titles) == want {
		return titles
	}
	return nil
}

// tokenize splits a query into lowercase alphanumeric runs. Duplicates
// are kept: a term the user repeats counts once per occurrence.
func tokenize(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Search scores every chunk by how many query tokens it contains and
// returns the k best matches. Chunks matching no token are excluded, so
// an unrelated query yields an empty result rather than arbitrary text.
func (idx *Index) Search(query string, k int) []Result {
	if idx == nil || k <= 0 {
		return nil
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	var results []Result
	for i, chunk := range idx.lowered {
		score := 0
		for _, tok := range tokens {
			if strings.Contains(chunk, tok) {
				score++
			}
		}
		if score > 0 {
			results = append(results, Result{Content: idx.chunks[i], Score: score})
		}
	}

	// Stable sort keeps document order among equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}

	return results
}

// GenerateContext assembles the grounding context for a query: the top
// search results joined by blank lines, falling back to chapters and
// sections whose titles mention a query word when full-text search
// comes up empty. Returns "" when nothing in the document relates to
// the query.
func (idx *Index) GenerateContext(query string) string {
	if idx == nil {
		return ""
	}

	results := idx.Search(query, contextResultCount)
	if len(results) > 0 {
		parts := make([]string, len(results))
		for i, r := range results {
			parts[i] = r.Content
		}
		return strings.Join(parts, "\n\n")
	}

	return idx.titleFallback(query)
}

// titleFallback matches query words against chapter and section titles.
// Chapters are visited in document order, falling back to sorted titles
// when the source supplies none. A matching chapter contributes its own
// prose and its sections are still scanned afterwards, so a section
// match inside a matching chapter is collected too.
func (idx *Index) titleFallback(query string) string {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return ""
	}

	titles := idx.chapterTitles
	if titles == nil {
		titles = make([]string, 0, len(idx.chapters))
		for title := range idx.chapters {
			titles = append(titles, title)
		}
		sort.Strings(titles)
	}

	var blocks []string
	for _, title := range titles {
		if len(blocks) >= contextResultCount {
			break
		}
		chapter := idx.chapters[title]

		if titleMatches(title, words) {
			blocks = append(blocks, strings.Join(chapter.Content, "\n"))
		}

		sectionTitles := orderedTitles(chapter.SectionTitles, len(chapter.Sections))
		if sectionTitles == nil {
			sectionTitles = make([]string, 0, len(chapter.Sections))
			for s := range chapter.Sections {
				sectionTitles = append(sectionTitles, s)
			}
			sort.Strings(sectionTitles)
		}

		for _, s := range sectionTitles {
			if len(blocks) >= contextResultCount {
				break
			}
			if titleMatches(s, words) {
				blocks = append(blocks, strings.Join(chapter.Sections[s], "\n"))
			}
		}
	}

	return strings.Join(blocks, "\n\n")
}

// titleMatches reports whether any query word appears in the title.
func titleMatches(title string, words []string) bool {
	lowered := strings.ToLower(title)
	for _, w := range words {
		if strings.Contains(lowered, w) {
			return true
		}
	}
	return false
}
