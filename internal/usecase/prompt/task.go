// Package prompt selects a task-specific instruction template and renders the
// prompt sent to the generator.
package prompt

import "strings"

// TaskType is the kind of help a query asks for.
type TaskType string

// Task types, in detection priority order.
const (
	TaskDebugging    TaskType = "debugging"
	TaskArchitecture TaskType = "architecture"
	TaskReview       TaskType = "review"
	TaskGeneration   TaskType = "generation"
)

type taskRule struct {
	task     TaskType
	keywords []string
}

// taskRules is evaluated in order; the first rule with a matching keyword wins.
var taskRules = []taskRule{
	{TaskDebugging, []string{
		"error", "bug", "issue", "problem", "fix", "debug",
		"exception", "traceback", "fails", "broken", "not working",
	}},
	{TaskArchitecture, []string{
		"architecture", "design", "pattern", "structure", "organize",
		"scalable", "performance", "optimize", "refactor", "improve",
	}},
	{TaskReview, []string{
		"review", "check", "validate", "best practice", "code quality",
		"security", "vulnerability", "clean up",
	}},
}

// DetectTask classifies query by keyword scan. Queries matching nothing are
// generation tasks.
func DetectTask(query string) TaskType {
	lower := strings.ToLower(query)
	for _, r := range taskRules {
		if containsAny(lower, r.keywords) {
			return r.task
		}
	}
	return TaskGeneration
}

// focus is the sub-task the generation template emphasizes.
type focus string

const (
	focusNone        focus = ""
	focusGeneration  focus = "generation"
	focusDebugging   focus = "debugging"
	focusReview      focus = "review"
	focusExplanation focus = "explanation"
)

var focusRules = []struct {
	focus    focus
	keywords []string
}{
	{focusGeneration, []string{"create", "generate", "write", "implement", "build"}},
	{focusDebugging, []string{"fix", "debug", "error", "bug", "issue", "problem"}},
	{focusReview, []string{"review", "improve", "optimize", "refactor"}},
	{focusExplanation, []string{"explain", "how", "what", "why", "understand"}},
}

func detectFocus(query string) focus {
	lower := strings.ToLower(query)
	for _, r := range focusRules {
		if containsAny(lower, r.keywords) {
			return r.focus
		}
	}
	return focusNone
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
