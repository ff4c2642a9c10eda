package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeedsProjectContext(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"greeting", "hi", false},
		{"greeting with punctuation", "Hello there!", false},
		{"thanks", "thank you", false},
		{"bug question", "how do I fix this bug in my API", true},
		{"keyword only", "where is the database configured", true},
		{"code mention", "walk me through this code", true},
		{"short but technical", "fix it", true},
		{"short casual wins over keyword", "ok cool code", false},
		{"general question", "what is the weather like today", false},
		{"empty", "", false},
		{"mixed case", "Explain the ARCHITECTURE please", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsProjectContext(tt.message))
		})
	}
}

func TestNeedsProjectContext_Idempotent(t *testing.T) {
	msg := "how does the service handle errors"
	assert.Equal(t, NeedsProjectContext(msg), NeedsProjectContext(msg))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, RouteGeneral, Classify("hey"))
	assert.Equal(t, RouteProject, Classify("debug the endpoint"))
}
