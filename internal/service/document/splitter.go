package document

import "strings"

// splitWords cuts text into overlapping word-window chunks. Each chunk holds
// up to length words and consecutive chunks share overlap words.
func splitWords(text string, length, overlap int) []string {
	if length <= 0 {
		return nil
	}
	if overlap >= length {
		overlap = length / 2
	}
	if overlap < 0 {
		overlap = 0
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := length - overlap
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + length
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
