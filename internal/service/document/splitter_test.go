package document

import (
	"fmt"
	"strings"
	"testing"
)

func TestSplitWords(t *testing.T) {
	words := make([]string, 25)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	text := strings.Join(words, " ")

	tests := []struct {
		name    string
		length  int
		overlap int
		want    int
	}{
		{name: "no overlap", length: 10, overlap: 0, want: 3},
		{name: "with overlap", length: 10, overlap: 5, want: 4},
		{name: "single chunk", length: 100, overlap: 20, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := splitWords(text, tt.length, tt.overlap)
			if len(chunks) != tt.want {
				t.Fatalf("expected %d chunks, got %d", tt.want, len(chunks))
			}
			// First chunk always starts at the first word.
			if !strings.HasPrefix(chunks[0], "w0 ") {
				t.Fatalf("first chunk does not start at w0: %q", chunks[0])
			}
			// Last chunk always ends at the final word.
			if !strings.HasSuffix(chunks[len(chunks)-1], "w24") {
				t.Fatalf("last chunk does not end at w24: %q", chunks[len(chunks)-1])
			}
		})
	}
}

func TestSplitWordsOverlapSharesTail(t *testing.T) {
	text := "a b c d e f g h"
	chunks := splitWords(text, 4, 2)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if chunks[0] != "a b c d" {
		t.Fatalf("unexpected first chunk: %q", chunks[0])
	}
	if chunks[1] != "c d e f" {
		t.Fatalf("expected 2-word overlap, got %q", chunks[1])
	}
}

func TestSplitWordsEmptyInput(t *testing.T) {
	if chunks := splitWords("   \n\t ", 10, 2); chunks != nil {
		t.Fatalf("expected nil for blank input, got %v", chunks)
	}
}
