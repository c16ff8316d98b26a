package kb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkTextShortReturnsWhole(t *testing.T) {
	chunks := ChunkText("short text", 750, 150)
	require.Equal(t, []string{"short text"}, chunks)
}

func TestChunkTextRespectsSize(t *testing.T) {
	text := strings.Repeat("Paragraph one is here.\n\nParagraph two follows along.\n\n", 40)
	chunks := ChunkText(text, 200, 40)

	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		require.LessOrEqual(t, len(c), 200, "chunk %d too large", i)
	}
}

func TestChunkTextNeverExceedsSizeWithWideOverlap(t *testing.T) {
	// pieces near the window size leave no room for the overlap tail; the
	// tail is dropped rather than letting a window grow past size
	sentence := strings.Repeat("wide piece ", 8) // 88 chars
	text := strings.TrimSpace(strings.Repeat(sentence+". ", 10))
	chunks := ChunkText(text, 100, 50)

	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		require.LessOrEqual(t, len(c), 100, "chunk %d too large", i)
	}
}

func TestChunkTextPrefersParagraphBoundaries(t *testing.T) {
	para := strings.Repeat("word ", 30)
	text := strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para)
	chunks := ChunkText(text, 170, 0)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		// no chunk starts mid-word when paragraph breaks are available
		require.False(t, strings.HasPrefix(c, "ord "), "chunk split mid-word: %q", c[:10])
	}
}

func TestChunkTextOverlapCarriesTail(t *testing.T) {
	text := strings.Repeat("alpha bravo charlie delta. ", 30)
	chunks := ChunkText(text, 120, 30)

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-30:]
		require.True(t, strings.HasPrefix(chunks[i], tail), "chunk %d missing overlap tail", i)
	}
}

func TestChunkTextHardCutWithoutSeparators(t *testing.T) {
	text := strings.Repeat("x", 500)
	chunks := ChunkText(text, 100, 0)

	require.Equal(t, 5, len(chunks))
	for _, c := range chunks {
		require.LessOrEqual(t, len(c), 100)
	}
	require.Equal(t, text, strings.Join(chunks, ""))
}
