package services

import (
	"strings"
	"text/template"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

const personaPreamble = `You are a senior university professor and research mentor.
Guide the student with patience and clarity: teach the concept, explain why it holds,
and encourage critical thinking. Stay grounded in the supplied material and say so
when it does not cover the question.`

var (
	answerPrompt = template.Must(template.New("answer").Parse(personaPreamble + `

{{.History}}

Context from research documents:
{{.Context}}

Student's current question: {{.Query}}

Your response should:
- Build on the previous conversation when it is relevant
- Explain the reasoning behind the answer, with examples where helpful
- Cite the sources you rely on by their [Source: ...] label

Response:`))

	generalPrompt = template.Must(template.New("general").Parse(personaPreamble + `

No uploaded documents matched this question, so answer from general knowledge.

{{.History}}

Student's message: {{.Query}}

Response:`))

	summarizePrompt = template.Must(template.New("summarize").Parse(personaPreamble + `

Research materials:
{{.Context}}

Topic to summarize: {{.Query}}

Write a well-structured summary that highlights the key concepts and why they matter.

Summary:`))

	comparePrompt = template.Must(template.New("compare").Parse(personaPreamble + `

Research materials, grouped by document:
{{.Context}}

Comparison topic: {{.Query}}

Identify the key similarities and differences between the documents and explain
their significance.

Analysis:`))

	extractPrompt = template.Must(template.New("extract").Parse(personaPreamble + `

Research materials:
{{.Context}}

Focus area: {{.Query}}

Extract the most important points, organised logically, with a short note on why
each one matters.

Key points:`))

	timelinePrompt = template.Must(template.New("timeline").Parse(personaPreamble + `

Research materials:
{{.Context}}

Timeline topic: {{.Query}}

Lay out the events or stages in chronological order and explain how each one leads
to the next.

Timeline:`))
)

// promptData is the input to every prompt template
type promptData struct {
	Context string
	Query   string
	History string
}

func renderPrompt(t *template.Template, data promptData) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// formatConversation renders the last domain.HistoryWindow messages of a
// conversation for inclusion in a prompt.
func formatConversation(history []domain.ConversationMessage) string {
	if len(history) == 0 {
		return "This is the start of a new conversation."
	}
	if len(history) > domain.HistoryWindow {
		history = history[len(history)-domain.HistoryWindow:]
	}

	lines := make([]string, 0, len(history)+1)
	lines = append(lines, "Previous Conversation:")
	for _, msg := range history {
		role := "Assistant"
		if msg.Role == domain.RoleUser {
			role = "Student"
		}
		lines = append(lines, role+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}
