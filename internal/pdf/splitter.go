package pdf

import "strings"

// Splitter cuts text into fixed-size character windows with overlap so that
// semantic context is not severed at chunk boundaries. Boundaries are
// deterministic for identical input and configuration.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Piece is one split result with the rune offset where it starts in the
// source text.
type Piece struct {
	Text   string
	Offset int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split produces overlapping pieces of at most chunkSize runes. Windows
// prefer to end at a paragraph break, then a line break, then a space,
// falling back to a hard cut when no separator exists in the window tail.
func (s *Splitter) Split(text string) []Piece {
	runes := []rune(text)
	if len(strings.TrimSpace(text)) == 0 {
		return nil
	}
	if len(runes) <= s.chunkSize {
		return []Piece{{Text: strings.TrimSpace(text), Offset: 0}}
	}

	var pieces []Piece
	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = s.breakpoint(runes, start, end)
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			pieces = append(pieces, Piece{Text: piece, Offset: start})
		}

		if end == len(runes) {
			break
		}
		next := end - s.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return pieces
}

// breakpoint searches the last quarter of the window for the best separator
// to end the chunk on.
func (s *Splitter) breakpoint(runes []rune, start, end int) int {
	windowStart := end - s.chunkSize/4
	if windowStart < start+1 {
		windowStart = start + 1
	}
	window := string(runes[windowStart:end])

	for _, sep := range []string{"\n\n", "\n", " "} {
		if i := strings.LastIndex(window, sep); i >= 0 {
			cut := windowStart + len([]rune(window[:i])) + len([]rune(sep))
			if cut > start {
				return cut
			}
		}
	}
	return end
}
