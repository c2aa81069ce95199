package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkSize  int
		overlap    int
		wantChunks int
	}{
		{"short text stays whole", "hello world", 100, 10, 1},
		{"exact fit stays whole", strings.Repeat("a", 100), 100, 10, 1},
		{"splits with overlap", strings.Repeat("a", 250), 100, 20, 3},
		{"overlap larger than chunk falls back", strings.Repeat("a", 200), 50, 60, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.chunkSize, tt.overlap)
			assert.Len(t, chunks, tt.wantChunks)
			for _, chunk := range chunks {
				assert.LessOrEqual(t, len(chunk), tt.chunkSize)
			}
		})
	}
}

func TestSplitTextOverlapPreservesBoundaryContext(t *testing.T) {
	text := strings.Repeat("x", 80) + strings.Repeat("y", 80)
	chunks := SplitText(text, 100, 20)

	// The tail of a chunk reappears at the head of the next one.
	last := chunks[0][len(chunks[0])-20:]
	assert.Equal(t, last, chunks[1][:20])
}

func TestSplitTextHandlesMultibyteRunes(t *testing.T) {
	text := strings.Repeat("日", 150)
	chunks := SplitText(text, 100, 10)

	// Chunking happens at rune boundaries, never mid-codepoint.
	for _, chunk := range chunks {
		assert.True(t, strings.HasPrefix(chunk, "日"))
		assert.NotContains(t, chunk, "�")
	}
}
