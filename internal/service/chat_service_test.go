package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"adaptive-rag-be/internal/constant"

	"github.com/stretchr/testify/assert"
)

func TestClipTitle(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{
			name:     "short question kept as is",
			question: "what is pgvector?",
			want:     "what is pgvector?",
		},
		{
			name:     "long ascii question clipped to the limit",
			question: strings.Repeat("a", constant.MaxChatTitleLength+10),
			want:     strings.Repeat("a", constant.MaxChatTitleLength),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clipTitle(tt.question))
		})
	}
}

func TestClipTitleNeverSplitsMultibyteRune(t *testing.T) {
	question := strings.Repeat("日", constant.MaxChatTitleLength+5)

	got := clipTitle(question)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, constant.MaxChatTitleLength, utf8.RuneCountInString(got))
	assert.NotContains(t, got, "�")
}
