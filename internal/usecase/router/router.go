// Package router decides whether a chat message needs project context.
//
// The decision is a lexical heuristic and is best-effort: a false negative
// sends a project question to general conversation, a false positive costs an
// unnecessary retrieval.
package router

import "strings"

// casualMaxWords is the longest message still treated as small talk.
const casualMaxWords = 3

var casualPatterns = []string{
	"hi", "hello", "hey", "good morning", "good afternoon", "good evening",
	"how are you", "what's up", "thanks", "thank you", "bye", "goodbye",
	"ok", "okay", "yes", "no", "sure", "great", "awesome", "cool",
}

var projectKeywords = []string{
	"project", "code", "api", "endpoint", "backend", "frontend", "docker",
	"fastapi", "streamlit", "chromadb", "groq", "rag", "database",
	"deployment", "container", "service", "function", "class", "method",
	"error", "bug", "fix", "implement", "create", "add", "modify", "update",
	"architecture", "structure", "design", "pattern", "configuration",
	"troubleshoot", "debug", "optimize", "performance",
}

var selfReferences = []string{
	"this project", "my project", "our project", "this code", "my code",
}

// Route is the outcome of routing a message.
type Route string

// Routes.
const (
	RouteProject Route = "project"
	RouteGeneral Route = "general"
)

// NeedsProjectContext reports whether message should go through retrieval.
// Matching is by case-insensitive substring, so "hi" also matches inside
// longer words; the word limit keeps that from misrouting real questions.
func NeedsProjectContext(message string) bool {
	lower := strings.ToLower(strings.TrimSpace(message))

	if len(strings.Fields(message)) <= casualMaxWords && containsAny(lower, casualPatterns) {
		return false
	}
	if containsAny(lower, projectKeywords) {
		return true
	}
	return containsAny(lower, selfReferences)
}

// Classify returns the route for message.
func Classify(message string) Route {
	if NeedsProjectContext(message) {
		return RouteProject
	}
	return RouteGeneral
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
