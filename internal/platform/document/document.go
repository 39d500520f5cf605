// Package document loads the knowledge-base document the retrieval
// engine indexes. The on-disk format is a single JSON file with the
// full passage list plus the chapter structure.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/phrazzld/mediqa-api/internal/retrieval"
)

// fileDocument is the JSON shape of the document file. Chapters stay
// raw so decoding can keep the file's key order, which a plain map
// unmarshal would discard.
type fileDocument struct {
	Content  []string        `json:"content"`
	Chapters json.RawMessage `json:"chapters"`
}

// Source is a retrieval.DocumentSource backed by a JSON file loaded
// once at startup.
type Source struct {
	content       []string
	chapters      map[string]retrieval.Chapter
	chapterTitles []string
}

// Ensure Source implements retrieval.DocumentSource interface
var _ retrieval.DocumentSource = (*Source)(nil)

// Load reads and parses the document file at path.
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document file: %w", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing document file %s: %w", path, err)
	}

	chapters, titles, err := decodeChapters(doc.Chapters)
	if err != nil {
		return nil, fmt.Errorf("parsing document file %s: %w", path, err)
	}

	return &Source{
		content:       doc.Content,
		chapters:      chapters,
		chapterTitles: titles,
	}, nil
}

// decodeChapters walks the chapters object token by token so the titles
// come back in the order the file lists them.
func decodeChapters(raw json.RawMessage) (map[string]retrieval.Chapter, []string, error) {
	chapters := make(map[string]retrieval.Chapter)
	var titles []string

	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return chapters, titles, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, err
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		title, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("chapter title is not a string: %v", tok)
		}

		var ch struct {
			Content  []string        `json:"content"`
			Sections json.RawMessage `json:"sections"`
		}
		if err := dec.Decode(&ch); err != nil {
			return nil, nil, fmt.Errorf("chapter %q: %w", title, err)
		}

		sections, sectionTitles, err := decodeSections(ch.Sections)
		if err != nil {
			return nil, nil, fmt.Errorf("chapter %q: %w", title, err)
		}

		chapters[title] = retrieval.Chapter{
			Content:       ch.Content,
			Sections:      sections,
			SectionTitles: sectionTitles,
		}
		titles = append(titles, title)
	}

	return chapters, titles, nil
}

// decodeSections does the same ordered walk for one chapter's sections.
func decodeSections(raw json.RawMessage) (map[string][]string, []string, error) {
	sections := make(map[string][]string)
	var titles []string

	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return sections, titles, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, err
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		title, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("section title is not a string: %v", tok)
		}

		var content []string
		if err := dec.Decode(&content); err != nil {
			return nil, nil, fmt.Errorf("section %q: %w", title, err)
		}

		sections[title] = content
		titles = append(titles, title)
	}

	return sections, titles, nil
}

// expectDelim consumes one token and checks it is the given delimiter.
func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// GetContent implements retrieval.DocumentSource.GetContent
func (s *Source) GetContent() []string {
	return s.content
}

// GetChapters implements retrieval.DocumentSource.GetChapters
func (s *Source) GetChapters() map[string]retrieval.Chapter {
	return s.chapters
}

// GetChapterTitles implements retrieval.DocumentSource.GetChapterTitles
func (s *Source) GetChapterTitles() []string {
	return s.chapterTitles
}
