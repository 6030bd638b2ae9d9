package llm

import (
	"strings"

	"github.com/voxdocs/voxdocs/domain/entities"
)

// buildPrompt renders the retrieved passages and the question into a
// stuff-style answering prompt.
func buildPrompt(query string, passages []entities.DocumentSegment) string {
	var b strings.Builder
	b.WriteString("Use the following pieces of context to answer the question at the end. ")
	b.WriteString("If you don't know the answer, just say that you don't know, don't try to make up an answer.\n\n")
	for _, passage := range passages {
		b.WriteString(passage.Text)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(query)
	b.WriteString("\nHelpful Answer:")
	return b.String()
}
