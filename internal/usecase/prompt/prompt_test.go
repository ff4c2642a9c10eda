package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/conversation"
	"github.com/kailas-cloud/coderag/internal/domain/search/result"
)

func TestDetectTask(t *testing.T) {
	tests := []struct {
		query string
		want  TaskType
	}{
		{"Why does this throw an exception?", TaskDebugging},
		{"the login flow is not working", TaskDebugging},
		{"How should I structure the modules?", TaskArchitecture},
		{"please review my handler", TaskReview},
		{"is this a security risk", TaskReview},
		{"write a handler for uploads", TaskGeneration},
		{"", TaskGeneration},
		// debugging outranks architecture
		{"fix the design of the cache", TaskDebugging},
		// architecture outranks review
		{"review and refactor this", TaskArchitecture},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectTask(tt.query))
		})
	}
}

func TestCompose_SharedFrame(t *testing.T) {
	for _, task := range []TaskType{TaskDebugging, TaskArchitecture, TaskReview, TaskGeneration} {
		t.Run(string(task), func(t *testing.T) {
			p := Compose(task, "ctx body", "the query", nil)
			assert.True(t, strings.HasPrefix(p, Preamble))
			assert.Contains(t, p, "## Instructions")
			assert.Contains(t, p, "ctx body")
			assert.Contains(t, p, "the query")
			assert.Contains(t, p, "## Project Context Analysis")
		})
	}
}

func TestCompose_TaskSections(t *testing.T) {
	assert.Contains(t, Compose(TaskDebugging, "", "q", nil), "## Error Information\nq")
	assert.Contains(t, Compose(TaskArchitecture, "", "q", nil), "## Architecture Request\nq")
	review := Compose(TaskReview, "c", "q", nil)
	assert.Contains(t, review, "## Existing Codebase Context\nc")
	assert.Contains(t, review, "## Code to Review\nq")
}

func TestCompose_GenerationFocus(t *testing.T) {
	assert.Contains(t, Compose(TaskGeneration, "", "implement caching", nil), "## Code Generation Task")
	assert.Contains(t, Compose(TaskGeneration, "", "explain the router", nil), "## Code Explanation Task")
	assert.NotContains(t, Compose(TaskGeneration, "", "hello", nil), "Task\nFocus on:")
}

func TestCompose_GenerationHistoryPreview(t *testing.T) {
	long := strings.Repeat("a", 300)
	history := []conversation.Message{
		{Role: conversation.RoleUser, Content: "first"},
		{Role: conversation.RoleAssistant, Content: "second"},
		{Role: conversation.RoleUser, Content: long},
		{Role: conversation.RoleAssistant, Content: "fourth"},
	}

	p := Compose(TaskGeneration, "", "write tests", history)

	assert.NotContains(t, p, "User: first")
	assert.Contains(t, p, "Assistant: second...")
	assert.Contains(t, p, "User: "+strings.Repeat("a", 200)+"...\n")
	assert.NotContains(t, p, strings.Repeat("a", 201))
	assert.Contains(t, p, "Assistant: fourth...")
	assert.Contains(t, p, "## Current Request\nUser: write tests")
}

func TestCompose_NonGenerationIgnoresHistory(t *testing.T) {
	history := []conversation.Message{{Role: conversation.RoleUser, Content: "earlier message"}}
	assert.NotContains(t, Compose(TaskDebugging, "", "fix it", history), "earlier message")
}

func TestBuildRAG_FullHistory(t *testing.T) {
	long := strings.Repeat("b", 300)
	var history []conversation.Message
	for i := range 6 {
		history = append(history, conversation.Message{Role: conversation.RoleUser, Content: string(rune('0'+i)) + long})
	}

	p := BuildRAG(CodeAssistantSystem, "ctx", "q", history)

	assert.True(t, strings.HasPrefix(p, CodeAssistantSystem))
	assert.NotContains(t, p, "User: 0")
	assert.Contains(t, p, "User: 1"+long+"\n")
	assert.Contains(t, p, "User: 5"+long+"\n")
	assert.Contains(t, p, "===== RELEVANT CODE FROM PROJECT =====\nctx\n")
	assert.Contains(t, p, "Current Question:\nUser: q")
	assert.Contains(t, p, "Instructions: Answer based on the provided code context.")
}

func TestGeneralMessages(t *testing.T) {
	var history []conversation.Message
	for i := range 8 {
		role := conversation.RoleUser
		if i%2 == 1 {
			role = conversation.RoleAssistant
		}
		history = append(history, conversation.Message{Role: role, Content: string(rune('a' + i))})
	}

	msgs := GeneralMessages(history, "now", SmallTalkHistory)

	require.Len(t, msgs, 7)
	assert.Equal(t, conversation.RoleSystem, msgs[0].Role)
	assert.Equal(t, SmallTalkSystem, msgs[0].Content)
	assert.Equal(t, "d", msgs[1].Content)
	assert.Equal(t, conversation.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "h", msgs[5].Content)
	assert.Equal(t, conversation.Message{Role: conversation.RoleUser, Content: "now"}, msgs[6])
}

func TestChatMessages_EmptyHistory(t *testing.T) {
	msgs := ChatMessages(nil, "hello", ChatHistory)
	require.Len(t, msgs, 2)
	assert.Equal(t, GeneralChatSystem, msgs[0].Content)
	assert.Equal(t, "hello", msgs[1].Content)
}

func TestFormatContext_Empty(t *testing.T) {
	assert.Equal(t, NoContext, FormatContext(nil))
}

func TestFormatContext_Headers(t *testing.T) {
	full := result.New("a", chunk.Chunk{
		Content: "func Serve() {}",
		Metadata: chunk.Metadata{
			chunk.KeyFilename:     "server.go",
			chunk.KeyStartLine:    10,
			chunk.KeyEndLine:      12,
			chunk.KeyClassName:    "Server",
			chunk.KeyFunctionName: "Serve",
		},
	}, 0.1234)
	bare := result.New("b", chunk.Chunk{Content: "notes", Metadata: chunk.Metadata{}}, 0.5)

	out := FormatContext([]result.Result{full, bare})

	rule := strings.Repeat("=", 50)
	assert.Contains(t, out, rule+"\nFile: server.go | Lines: 10-12 | Class: Server | Function: Serve | Similarity: 0.877\n"+rule+"\nfunc Serve() {}\n")
	assert.Contains(t, out, "File: Unknown file | Similarity: 0.500\n")
	assert.Less(t, strings.Index(out, "server.go"), strings.Index(out, "Unknown file"))
}

func TestFormatContext_PartialLineRange(t *testing.T) {
	r := result.New("a", chunk.Chunk{
		Content:  "x",
		Metadata: chunk.Metadata{chunk.KeyFilename: "a.py", chunk.KeyStartLine: 3},
	}, 0)

	assert.NotContains(t, FormatContext([]result.Result{r}), "Lines:")
}

func TestAnalyzeContext(t *testing.T) {
	ctx := "package main\n\nimport \"github.com/redis/rueidis\"\n\nfunc TestX(t *testing.T) {}\n// middleware for the router\n"

	out := AnalyzeContext(ctx)

	assert.Contains(t, out, "**Languages**: Python, Go")
	assert.Contains(t, out, "**Databases**: Redis")
	assert.Contains(t, out, "REST API")
	assert.Contains(t, out, "Middleware Pattern")
	assert.Contains(t, out, "**Testing**: go test")
}

func TestAnalyzeContext_Nothing(t *testing.T) {
	assert.Equal(t, "**Context**: General code analysis", AnalyzeContext("plain words"))
}
