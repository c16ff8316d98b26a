package kb

import "strings"

// chunk splitting prefers natural boundaries in this order before falling
// back to hard cuts.
var chunkSeparators = []string{"\n\n", "\n", ". ", " "}

// ChunkText splits text into windows of at most size characters with roughly
// overlap characters carried between neighbours, preferring paragraph and
// sentence boundaries. Text at or under size is returned whole.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = 750
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	if len(text) <= size {
		return []string{text}
	}

	pieces := splitRecursive(text, size, chunkSeparators)

	// merge pieces into windows, carrying the overlap tail forward; a window
	// never exceeds size, so the tail is dropped when it would not fit
	// alongside the next piece
	var chunks []string
	var current strings.Builder
	for _, piece := range pieces {
		if current.Len() > 0 && current.Len()+len(piece) > size {
			chunk := current.String()
			chunks = append(chunks, chunk)
			current.Reset()
			if overlap > 0 && len(chunk) > overlap && overlap+len(piece) <= size {
				current.WriteString(chunk[len(chunk)-overlap:])
			}
		}
		current.WriteString(piece)
	}
	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// splitRecursive breaks text on the first separator that helps, recursing
// with the remaining separators on any piece still over size. Separators are
// kept attached to the preceding piece so rejoining loses nothing.
func splitRecursive(text string, size int, separators []string) []string {
	if len(text) <= size {
		return []string{text}
	}
	if len(separators) == 0 {
		// hard cut
		var out []string
		for len(text) > size {
			out = append(out, text[:size])
			text = text[size:]
		}
		if text != "" {
			out = append(out, text)
		}
		return out
	}

	sep := separators[0]
	parts := strings.SplitAfter(text, sep)
	if len(parts) == 1 {
		return splitRecursive(text, size, separators[1:])
	}

	var out []string
	for _, part := range parts {
		if len(part) > size {
			out = append(out, splitRecursive(part, size, separators[1:])...)
		} else if part != "" {
			out = append(out, part)
		}
	}
	return out
}
