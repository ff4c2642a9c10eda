package prompt

import (
	"strings"

	"github.com/kailas-cloud/coderag/internal/domain/conversation"
)

const (
	// CompactHistory is how many recent messages the task templates render.
	CompactHistory = 3
	// PreviewLength bounds each message body in compact history.
	PreviewLength = 200
	// FullHistory is how many recent messages BuildRAG renders.
	FullHistory = 5
	// SmallTalkHistory is how many messages GeneralMessages forwards by default.
	SmallTalkHistory = 5
	// ChatHistory is how many messages ChatMessages forwards by default.
	ChatHistory = 10
)

// Compose renders the prompt for task. Every template starts with Preamble and
// ends with an "## Instructions" block. Only the generation template renders
// history, as a compact preview of the last CompactHistory messages.
func Compose(task TaskType, context, query string, history []conversation.Message) string {
	var b strings.Builder
	b.WriteString(Preamble)
	b.WriteString("\n")

	analysis := AnalyzeContext(context)

	switch task {
	case TaskDebugging:
		b.WriteString(debuggingTask + "\n\n")
		section(&b, "Project Context Analysis", analysis)
		section(&b, "Relevant Code from Project", context)
		section(&b, "Error Information", query)
		b.WriteString(debuggingInstructions)
	case TaskArchitecture:
		b.WriteString(architectureTask + "\n\n")
		section(&b, "Project Context Analysis", analysis)
		section(&b, "Relevant Code from Project", context)
		section(&b, "Architecture Request", query)
		b.WriteString(architectureInstructions)
	case TaskReview:
		b.WriteString(reviewTask + "\n\n")
		section(&b, "Project Context Analysis", analysis)
		section(&b, "Existing Codebase Context", context)
		section(&b, "Code to Review", query)
		b.WriteString(reviewInstructions)
	default:
		if instr := focusInstructions[detectFocus(query)]; instr != "" {
			b.WriteString(instr + "\n\n")
		}
		section(&b, "Project Context Analysis", analysis)
		section(&b, "Relevant Code from Project", context)
		section(&b, "Recent Conversation", renderHistory(history, CompactHistory, PreviewLength))
		section(&b, "Current Request", "User: "+query)
		b.WriteString(generationInstructions)
	}
	return b.String()
}

// BuildRAG renders the plain RAG prompt with the last FullHistory messages at
// full length.
func BuildRAG(system, context, query string, history []conversation.Message) string {
	var b strings.Builder
	b.WriteString(system)
	b.WriteString("\n===== RELEVANT CODE FROM PROJECT =====\n")
	b.WriteString(context)
	b.WriteString("\n======================================\n\n")
	b.WriteString("===== CONVERSATION HISTORY =====\n")
	b.WriteString(renderHistory(history, FullHistory, 0))
	b.WriteString("=================================\n\n")
	b.WriteString("Current Question:\nUser: ")
	b.WriteString(query)
	b.WriteString("\n\n")
	b.WriteString(ragInstructions)
	b.WriteString("\n")
	return b.String()
}

// GeneralMessages builds the message list for a code-assistant message that
// does not need retrieval: SmallTalkSystem, the last limit history messages,
// then message.
func GeneralMessages(history []conversation.Message, message string, limit int) []conversation.Message {
	return messages(SmallTalkSystem, history, message, limit)
}

// ChatMessages builds the message list for general chat.
func ChatMessages(history []conversation.Message, message string, limit int) []conversation.Message {
	return messages(GeneralChatSystem, history, message, limit)
}

func messages(system string, history []conversation.Message, message string, limit int) []conversation.Message {
	recent := conversation.Last(history, limit)
	out := make([]conversation.Message, 0, len(recent)+2)
	out = append(out, conversation.Message{Role: conversation.RoleSystem, Content: system})
	for _, m := range recent {
		out = append(out, conversation.Message{Role: m.Role, Content: m.Content})
	}
	return append(out, conversation.Message{Role: conversation.RoleUser, Content: message})
}

// renderHistory renders the last n messages as "User:"/"Assistant:" lines.
// A positive preview truncates each body and marks it with "...".
func renderHistory(history []conversation.Message, n, preview int) string {
	var b strings.Builder
	for _, m := range conversation.Last(history, n) {
		body := m.Content
		if preview > 0 {
			body = truncate(body, preview) + "..."
		}
		b.WriteString(m.Label())
		b.WriteString(": ")
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	return b.String()
}

func section(b *strings.Builder, title, body string) {
	b.WriteString("## ")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n\n")
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
