package rag

import (
	"fmt"
	"strings"

	"ragchat/internal/models"
)

// refusalPhrase is the fixed fallback the generator must use when the context
// is insufficient. Tests and clients rely on the exact wording.
const refusalPhrase = "I cannot answer this question based on the provided context."

const promptRules = `Rules:
1. Only use information from the provided documents and chat history.
- If insufficient information, reply: "` + refusalPhrase + `"
- Then briefly explain why.
2. Resolve unclear references (e.g., "he", "she", "it") from chat history. If still ambiguous, state uncertainty.
3. Do not fabricate facts beyond reasonable inference.
4. For dates/durations, use the current date unless another date is specified.
5. Provide a comprehensive, numbered, step-by-step guide that preserves all enumerated steps found in the context. Do not omit steps. Maintain the original order when possible and include field names and button/icon actions exactly as stated.
6. After answering, ask 1-2 relevant follow-up questions based on the documents that the user has not yet asked.
- Examples: "Do you also want me to check...?", "Would you like me to explain how this relates to...?"

Answering Process:
1. Search documents for relevant facts.
2. Check chat history for missing context or references.
3. Provide the most accurate answer possible.
4. If unsure, explain uncertainty.
5. End with proactive follow-up questions.`

// buildSystemPrompt assembles the grounded instruction block: current date for
// relative-time reasoning, the full text of every retrieved passage, and the
// behavioral rules. History and the question follow as regular chat messages.
func buildSystemPrompt(currentDate string, passages []models.Passage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current date: %s\n\n", currentDate)

	b.WriteString("Context Documents:\n")
	for _, p := range passages {
		b.WriteString(p.Content)
		b.WriteString("\n\n")
	}

	b.WriteString(promptRules)
	return b.String()
}
