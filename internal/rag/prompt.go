package rag

import (
	"fmt"
	"strings"

	"github.com/vkotliar/gavel/internal/model"
)

// systemPrompt frames every generation call. Answers must come from
// the supplied sources, with [Source N] markers attributing each claim.
const systemPrompt = `You are a legal research assistant answering questions about an International Criminal Court trial judgment.

RULES:
1. Answer ONLY from the numbered sources provided. Do not use outside knowledge of the case.
2. Cite sources inline using the exact form [Source N] after each claim they support.
3. If the sources do not contain the answer, say so explicitly instead of speculating.
4. Quote paragraph numbers and page ranges when the sources provide them.
5. Use precise legal language; do not editorialize about guilt beyond what the judgment states.`

// contextFreeNotice replaces the sources block when retrieval returned
// nothing; the model is told to be explicit about the missing grounding.
const contextFreeNotice = `No judgment excerpts were retrieved for this question. State clearly that the answer is not grounded in the judgment text and keep the response brief.`

// buildPrompt assembles conversation history, numbered sources and the
// question into a single user prompt.
func buildPrompt(history []model.ConversationTurn, contexts []model.SearchResult, query string) string {
	var b strings.Builder

	if len(history) > 0 {
		b.WriteString("Previous conversation:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", turn.Query, turn.Response)
		}
		b.WriteString("\n")
	}

	if len(contexts) == 0 {
		b.WriteString(contextFreeNotice)
		b.WriteString("\n")
	} else {
		b.WriteString("Sources from the judgment:\n\n")
		for i, res := range contexts {
			fmt.Fprintf(&b, "[Source %d — %s, pp. %d–%d]\n%s\n\n",
				i+1, res.Chunk.Section, res.Chunk.PageStart, res.Chunk.PageEnd, res.Chunk.Content)
		}
	}

	fmt.Fprintf(&b, "\nQuestion: %s", query)
	return b.String()
}
