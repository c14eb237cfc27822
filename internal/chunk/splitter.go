package chunk

import (
	"fmt"
	"strings"
)

// Chunk is one window of a document's text. Start and End are rune offsets
// into the source text; consecutive chunks overlap by the splitter's
// configured overlap.
type Chunk struct {
	Text  string
	Index int
	Start int
	End   int
}

// Splitter cuts text into fixed-size overlapping windows. Sizes are in
// runes so multi-byte text chunks evenly.
type Splitter struct {
	Size    int
	Overlap int
}

// NewSplitter validates the window parameters. Overlap must leave the
// window moving forward.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", overlap, size)
	}
	return &Splitter{Size: size, Overlap: overlap}, nil
}

// Split cuts text into chunks. Each window prefers to end at a paragraph
// boundary, then a newline, then a sentence end, before falling back to a
// hard cut at the size limit. Whitespace-only input yields no chunks.
func (s *Splitter) Split(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	var chunks []Chunk
	start := 0

	for start < len(runes) {
		end := start + s.Size
		if end >= len(runes) {
			chunks = append(chunks, Chunk{
				Text:  string(runes[start:]),
				Index: len(chunks),
				Start: start,
				End:   len(runes),
			})
			break
		}

		window := string(runes[start:end])
		cut := end
		if boundary := strings.LastIndex(window, "\n\n"); boundary > 0 {
			cut = start + runeLen(window[:boundary+2])
		} else if boundary := strings.LastIndex(window, "\n"); boundary > 0 {
			cut = start + runeLen(window[:boundary+1])
		} else if boundary := strings.LastIndex(window, ". "); boundary > 0 {
			cut = start + runeLen(window[:boundary+2])
		}
		// A boundary in the front half of the window would emit a sliver
		// and stall the overlap; hard-cut instead.
		if cut-start < s.Size/2 {
			cut = end
		}

		chunks = append(chunks, Chunk{
			Text:  string(runes[start:cut]),
			Index: len(chunks),
			Start: start,
			End:   cut,
		})

		next := cut - s.Overlap
		if next <= start {
			// Overlap would stall the window; force progress.
			next = start + 1
		}
		start = next
	}

	return chunks
}

func runeLen(s string) int {
	return len([]rune(s))
}
